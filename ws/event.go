// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları ve odaları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// İki adresleme primitifi vardır (fan-out):
// - User room: Bir kullanıcının TÜM eşzamanlı bağlantıları (tab'lar).
//   Kişiye özel teslimat için kullanılır (call:request, call:accepted, notification).
// - Chat room: O an bir sohbeti görüntüleyen tüm bağlantılar, kimlikten
//   bağımsız. Sohbet genelinde broadcast için kullanılır (call:ended,
//   call:status-update, chat:force-leave).
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op: Event türü — "call:request", "user_online" vb.
// Data: Event'e özgü payload.
// Seq: Her outbound event'e verilen artan sayı — frontend eksik event
// tespiti için takip eder.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpIdentify     = "identify"      // Presence kaydını (yeniden) kur
	OpPeerRegister = "peer:register" // Media-relay peer identity bildirimi
	OpChatOpen     = "chat:open"     // Sohbet görünümü açıldı → chat room'a katıl
	OpChatClose    = "chat:close"    // Sohbet görünümü kapandı → chat room'dan ayrıl
)

// Arama signaling operasyonları — hem Client → Server hem Server → Client.
//
// Akış:
// 1. Caller: call:request → Server pending entry + hedefin user room'una relay
// 2. Callee: call:accept → Server pending çöz → Caller: call:accepted (peer id ile)
// 3. Media relay bağlantısı taraflar arasında bağımsız kurulur
// 4. Either: call:end → Server chat room'a call:ended + bildirimler
const (
	OpCallRequest      = "call:request"
	OpCallAccept       = "call:accept"
	OpCallReject       = "call:reject"
	OpCallEnd          = "call:end"
	OpCallStatusUpdate = "call:status-update"
)

// Server → Client operasyonları
const (
	OpReady          = "ready"            // Bağlantı kurulduğunda ilk event — online snapshot
	OpCallAccepted   = "call:accepted"    // Arama kabul edildi (caller'a)
	OpCallRejected   = "call:rejected"    // Arama reddedildi / hedef ulaşılamaz (caller'a)
	OpCallEnded      = "call:ended"       // Arama bitti (chat room'a)
	OpCallStarted    = "call:started"     // Kalıcı kayıt oluştu (katılımcılara)
	OpCallUpdated    = "call:updated"     // Kalıcı kayıt güncellendi (katılımcılara)
	OpCallEvent      = "call:event"       // Audit event relay (chat room'a)
	OpUserOnline     = "user_online"      // Kullanıcı çevrimiçi oldu (broadcast)
	OpUserOffline    = "user_offline"     // Kullanıcı çevrimdışı oldu (broadcast)
	OpNotification   = "notification"     // Bildirim (user room'a, best-effort)
	OpChatForceLeave = "chat:force-leave" // Gruptan çıkarıldın — room'dan düşürüldün
)

// ReadyData, bağlantı kurulduğunda client'a gönderilen ilk event'in payload'ı.
// Frontend online kullanıcıları Set'e atar (presence indicator için).
type ReadyData struct {
	ConnID        string   `json:"conn_id"`
	OnlineUserIDs []string `json:"online_user_ids"`
}

// PresenceData, user_online / user_offline payload'ı.
type PresenceData struct {
	UserID string `json:"user_id"`
}

// PeerRegisterData, peer:register event'inin Client → Server payload'ı.
// PeerID client tarafında her relay oturumu için yeniden üretilir
// (identity + timestamp + random suffix) — hızlı reconnect'lerde bile
// çakışmaz, eski oturumun peer id'si adreslenemez hale gelir.
type PeerRegisterData struct {
	PeerID string `json:"peer_id"`
	UserID string `json:"user_id"`
}

// ChatRoomData, chat:open / chat:close payload'ı.
type ChatRoomData struct {
	ChatID string `json:"chat_id"`
}

// ChatForceLeaveData, chat:force-leave payload'ı (Server → Client).
type ChatForceLeaveData struct {
	ChatID string `json:"chat_id"`
}

// CallRequestData, call:request payload'ı. Client → Server gelir,
// server validate edip aynı şekle hedefin user room'una relay eder.
type CallRequestData struct {
	CallID     string `json:"call_id"`
	ChatID     string `json:"chat_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Type       string `json:"type"` // "audio" | "video"
	FromPeerID string `json:"from_peer_id"`
	FromName   string `json:"from_name,omitempty"`
}

// CallAcceptData, call:accept payload'ı (Client → Server).
// Server → Client call:accepted aynı şekli taşır; FromPeerID kabul eden
// tarafın çözümlenmiş peer id'sidir — caller outbound aramayı bununla yapar.
type CallAcceptData struct {
	CallID     string `json:"call_id"`
	From       string `json:"from"`
	FromPeerID string `json:"from_peer_id,omitempty"`
}

// CallRejectData, call:reject payload'ı (Client → Server).
type CallRejectData struct {
	CallID string `json:"call_id"`
	From   string `json:"from"`
}

// CallRejectedData, call:rejected payload'ı (Server → Client).
// Reason "user not online" ise hedef hiç ulaşılabilir değildi —
// UI bunu insan reddiyle aynı şekilde gösterir.
type CallRejectedData struct {
	CallID string `json:"call_id"`
	Reason string `json:"reason,omitempty"`
}

// CallEndData, call:end payload'ı (Client → Server).
type CallEndData struct {
	CallID   string `json:"call_id"`
	ChatID   string `json:"chat_id"`
	From     string `json:"from"`
	EndedBy  string `json:"ended_by"`
	FromName string `json:"from_name,omitempty"`
}

// CallEndedData, call:ended payload'ı (Server → chat room).
type CallEndedData struct {
	CallID string `json:"call_id"`
}

// CallStatusUpdateData, call:status-update payload'ı.
// Stateless relay — server persist etmez, ack beklenmez.
type CallStatusUpdateData struct {
	CallID string `json:"call_id"`
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id"`
	Mic    bool   `json:"mic"`
	Camera bool   `json:"camera"`
}
