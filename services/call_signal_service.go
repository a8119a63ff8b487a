package services

import (
	"context"
	"log"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/ws"
)

// UserInfoGetter, görünen ad çözümlemesi için minimal interface.
type UserInfoGetter interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ChatParticipantLister, arama-sonu bildirimlerinin alıcılarını bulmak
// için minimal interface.
type ChatParticipantLister interface {
	GetParticipants(ctx context.Context, chatID string) ([]models.ChatParticipant, error)
}

// CallSignalService, arama sinyalleşme event'lerini işler.
//
// Sunucu burada medya taşımaz; görevleri şunlardır:
// 1. call:request'i hedefin user room'una iletmek (hedef offline ise
//    arayana anında red dönmek)
// 2. Çalan aramaları PendingCallTable'da takip etmek
// 3. accept/reject/end cevaplarını ilgili taraflara yönlendirmek
// 4. Bağlantı kopunca kopanın başlattığı çalan aramaları temizlemek
//
// Tüm handler'lar Hub callback'i olarak çağrılır — bloklamadan çalışır,
// hata durumunda log'lar ve event'i düşürür (sinyal katmanında retry yok,
// client kendi timeout/retry mantığını uygular).
type CallSignalService interface {
	HandleRequest(callerID string, data ws.CallRequestData)
	HandleAccept(calleeID string, data ws.CallAcceptData)
	HandleReject(calleeID string, data ws.CallRejectData)
	HandleEnd(userID string, data ws.CallEndData)
	HandleStatusUpdate(userID string, data ws.CallStatusUpdateData)
	HandleDisconnect(userID, connID string)
}

type callSignalService struct {
	presence      PresenceService
	peers         PeerRegistry
	pending       PendingCallTable
	users         UserInfoGetter
	chats         ChatParticipantLister
	notifications NotificationService
	publisher     ws.EventPublisher
}

// NewCallSignalService, yeni bir CallSignalService oluşturur.
func NewCallSignalService(
	presence PresenceService,
	peers PeerRegistry,
	pending PendingCallTable,
	users UserInfoGetter,
	chats ChatParticipantLister,
	notifications NotificationService,
	publisher ws.EventPublisher,
) CallSignalService {
	return &callSignalService{
		presence:      presence,
		peers:         peers,
		pending:       pending,
		users:         users,
		chats:         chats,
		notifications: notifications,
		publisher:     publisher,
	}
}

// ─── call:request ───

// HandleRequest, gelen aramayı hedefe iletir.
// Hedef ulaşılamaz durumdaysa — offline ya da henüz peer kimliği
// kaydetmemişse — arama hiç kurulmaz: arayana anında call:rejected döner,
// pending kaydı açılmaz, hedefe hiçbir şey gitmez. Peer kaydı olmayan bir
// hedefe çaldırmak kabul anında boş from_peer_id ile sonuçlanırdı.
func (s *callSignalService) HandleRequest(callerID string, data ws.CallRequestData) {
	if data.CallID == "" || data.To == "" {
		log.Printf("[signal] dropping malformed call request from %s", callerID)
		return
	}

	if _, registered := s.peers.PeerID(data.To); !registered || !s.presence.IsOnline(data.To) {
		log.Printf("[signal] call %s rejected: target %s not reachable", data.CallID, data.To)
		s.publisher.BroadcastToUser(callerID, ws.Event{
			Op:   ws.OpCallRejected,
			Data: ws.CallRejectedData{CallID: data.CallID, Reason: "user not online"},
		})
		return
	}

	// From alanı payload'dan değil bağlantı kimliğinden: kimse başkası
	// adına arama başlatamaz
	data.From = callerID
	if peerID, ok := s.peers.PeerID(callerID); ok {
		data.FromPeerID = peerID
	}
	if data.FromName == "" {
		data.FromName = s.resolveName(callerID)
	}

	s.pending.Add(PendingCall{
		CallID:   data.CallID,
		ChatID:   data.ChatID,
		CallerID: callerID,
		CalleeID: data.To,
		Type:     data.Type,
	})

	s.publisher.BroadcastToUser(data.To, ws.Event{
		Op:   ws.OpCallRequest,
		Data: data,
	})

	log.Printf("[signal] call %s: %s ringing %s (%s)", data.CallID, callerID, data.To, data.Type)
}

// ─── call:accept ───

// HandleAccept, kabulü arayana iletir.
// İki koruma var:
// - BeginAccept kilidi: aynı aramanın eşzamanlı çifte accept'i tek işlenir
// - Pending kaydı yoksa (zaten kabul edilmiş, reddedilmiş ya da arayan
//   vazgeçmiş) event sessizce düşer — geç gelen accept yanlış taraf
//   bağlamaz
func (s *callSignalService) HandleAccept(calleeID string, data ws.CallAcceptData) {
	if data.CallID == "" {
		return
	}

	if !s.pending.BeginAccept(data.CallID) {
		log.Printf("[signal] call %s accept already in progress, skipping", data.CallID)
		return
	}
	defer s.pending.EndAccept(data.CallID)

	call, ok := s.pending.Get(data.CallID)
	if !ok {
		log.Printf("[signal] call %s accept ignored: no pending call", data.CallID)
		return
	}
	if call.CalleeID != calleeID {
		log.Printf("[signal] call %s accept ignored: user %s is not the callee", data.CallID, calleeID)
		return
	}

	s.pending.Delete(data.CallID)

	data.From = calleeID
	if peerID, ok := s.peers.PeerID(calleeID); ok {
		data.FromPeerID = peerID
	}

	s.publisher.BroadcastToUser(call.CallerID, ws.Event{
		Op:   ws.OpCallAccepted,
		Data: data,
	})

	log.Printf("[signal] call %s accepted by %s", data.CallID, calleeID)
}

// ─── call:reject ───

// HandleReject, reddi arayana iletir. Pending kaydı yoksa no-op —
// tekrarlanan reject zararsızdır.
func (s *callSignalService) HandleReject(calleeID string, data ws.CallRejectData) {
	if data.CallID == "" {
		return
	}

	call, ok := s.pending.Delete(data.CallID)
	if !ok {
		return
	}
	if call.CalleeID != calleeID {
		// Yarış: kayıt silindi ama reddeden taraf callee değildi.
		// Kaydı geri koymuyoruz — arama zaten tutarlı şekilde kapanıyor.
		log.Printf("[signal] call %s rejected by non-callee %s", data.CallID, calleeID)
	}

	s.publisher.BroadcastToUser(call.CallerID, ws.Event{
		Op:   ws.OpCallRejected,
		Data: ws.CallRejectedData{CallID: data.CallID, Reason: "rejected"},
	})

	log.Printf("[signal] call %s rejected by %s", data.CallID, calleeID)
}

// ─── call:end ───

// HandleEnd, arama bitişini sohbetin diğer katılımcılarına duyurur.
//
// Bitiren taraf kendi call:ended'ını almaz (kendi UI'ını zaten kapattı).
// Dağıtım chat room'a gider: o an sohbeti açık tutan herkes — aramada
// olsun olmasın — arama kartının kapandığını görür. Sohbeti açık olmayan
// üyeler için kalıcı bildirim yazılır; bildirim hatası sinyali durdurmaz.
func (s *callSignalService) HandleEnd(userID string, data ws.CallEndData) {
	if data.CallID == "" {
		return
	}

	pendingCall, wasPending := s.pending.Delete(data.CallID)

	data.From = userID
	if data.EndedBy == "" {
		data.EndedBy = userID
	}
	if data.FromName == "" {
		data.FromName = s.resolveName(userID)
	}
	if data.ChatID == "" && wasPending {
		data.ChatID = pendingCall.ChatID
	}

	if data.ChatID != "" {
		s.publisher.BroadcastToChatExcept(data.ChatID, userID, ws.Event{
			Op:   ws.OpCallEnded,
			Data: data,
		})
	}

	// Cevaplanmadan kapanan arama: callee'nin çalan UI'ı da kapanmalı —
	// callee sohbeti açık tutmuyor olabilir, user room'una da gönder
	if wasPending && pendingCall.CalleeID != userID {
		s.publisher.BroadcastToUser(pendingCall.CalleeID, ws.Event{
			Op:   ws.OpCallEnded,
			Data: ws.CallEndedData{CallID: data.CallID},
		})
	}

	s.notifyCallEnded(userID, data, pendingCall, wasPending)

	log.Printf("[signal] call %s ended by %s", data.CallID, userID)
}

// notifyCallEnded, arama bitişini kalıcı bildirime çevirir (best-effort).
func (s *callSignalService) notifyCallEnded(enderID string, data ws.CallEndData, pendingCall PendingCall, wasPending bool) {
	if data.ChatID == "" {
		return
	}

	ctx := context.Background()

	// Cevapsız arama: yalnızca callee'ye "missed" bildirimi
	if wasPending {
		message := data.FromName + " sizi aradı"
		if err := s.notifications.Notify(ctx, pendingCall.CalleeID, models.NotificationCallMissed, message, &data.ChatID, &data.CallID); err != nil {
			log.Printf("[signal] failed to notify missed call %s: %v", data.CallID, err)
		}
		return
	}

	participants, err := s.chats.GetParticipants(ctx, data.ChatID)
	if err != nil {
		log.Printf("[signal] failed to load chat participants for call %s: %v", data.CallID, err)
		return
	}

	for _, p := range participants {
		if p.UserID == enderID {
			continue
		}
		message := "Arama sona erdi"
		if err := s.notifications.Notify(ctx, p.UserID, models.NotificationCallEnded, message, &data.ChatID, &data.CallID); err != nil {
			log.Printf("[signal] failed to notify call end to %s: %v", p.UserID, err)
		}
	}
}

// ─── call:status-update ───

// HandleStatusUpdate, mikrofon/kamera durumunu sohbete iletir.
// Sunucu durum tutmaz — saf relay. Gönderen kendi update'ini almaz.
func (s *callSignalService) HandleStatusUpdate(userID string, data ws.CallStatusUpdateData) {
	if data.CallID == "" || data.ChatID == "" {
		return
	}

	data.UserID = userID

	s.publisher.BroadcastToChatExcept(data.ChatID, userID, ws.Event{
		Op:   ws.OpCallStatusUpdate,
		Data: data,
	})
}

// ─── Disconnect Temizliği ───

// HandleDisconnect, bağlantı kopunca kullanıcının sinyal state'ini temizler.
//
// Temizlik kapsamı:
// - Presence kaydı (bayat bağlantı için Unregister no-op'tur)
// - Peer eşlemesi
// - Kopanın BAŞLATTIĞI çalan aramalar: callee'lere call:ended gider,
//   çalan UI kapanır. Kopanın callee olduğu aramalara dokunulmaz —
//   arayan tarafta zaman aşımı/vazgeçme kararı client'ındır.
func (s *callSignalService) HandleDisconnect(userID, connID string) {
	s.presence.Unregister(userID, connID)

	// Kullanıcı başka bir bağlantıyla hâlâ online ise peer kaydı ve
	// çalan aramalar ona aittir, dokunma
	if s.presence.IsOnline(userID) {
		return
	}

	s.peers.Unregister(userID)

	removed := s.pending.DeleteByCaller(userID)
	for _, call := range removed {
		s.publisher.BroadcastToUser(call.CalleeID, ws.Event{
			Op:   ws.OpCallEnded,
			Data: ws.CallEndedData{CallID: call.CallID},
		})
		log.Printf("[signal] call %s cancelled: caller %s disconnected", call.CallID, userID)
	}
}

// resolveName, kullanıcının görünen adını çözer.
// DB'ye ulaşılamazsa userID ile devam edilir — sinyal adsız da akar.
func (s *callSignalService) resolveName(userID string) string {
	user, err := s.users.GetByID(context.Background(), userID)
	if err != nil {
		return userID
	}
	return user.Name()
}
