package peer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/logit-app/rtc/ws"
)

// Signaler, sunucuya sinyal event'i göndermek için minimal interface.
// WS bağlantısını saran client transport'u bunu karşılar.
type Signaler interface {
	Send(op string, data any) error
}

// MediaConn, karşı tarafla kurulmuş (veya kurulmakta olan) medya
// bağlantısını temsil eder.
type MediaConn interface {
	RemotePeerID() string
	Answer(stream MediaStream) error
	Close() error
}

// Relay, dışarıya medya bağlantısı açma soyutlaması.
// Doğrudan peer-to-peer yol da, NAT arkasında kalınca düşülen aracılı
// yol da bu interface'in arkasındadır.
type Relay interface {
	Dial(ctx context.Context, remotePeerID string, stream MediaStream) (MediaConn, error)
}

const (
	// bindWaitAttempts × bindWaitInterval: Kabulden sonra arayanın medya
	// bağlantısının gelmesi için tanınan toplam süre. Süre dolarsa arama
	// medyasız bırakılmaz — hata dönülür ve arama kapatılır.
	bindWaitAttempts = 20
	bindWaitInterval = 100 * time.Millisecond
)

var (
	// ErrCallInProgress: Zaten çalan/aktif bir arama varken yeni arama denendi.
	ErrCallInProgress = errors.New("a call is already in progress")

	// ErrNoSuchCall: Bilinmeyen callID ile accept/end denendi.
	ErrNoSuchCall = errors.New("no such call")

	// ErrBindTimeout: Kabulden sonra arayanın medya bağlantısı süresinde gelmedi.
	ErrBindTimeout = errors.New("timed out waiting for remote media connection")
)

// outgoingCall, bizim başlattığımız ve henüz cevaplanmamış arama.
type outgoingCall struct {
	callID string
	chatID string
	to     string
	kind   string
}

// Manager, client tarafı arama yaşam döngüsünü yönetir.
//
// Gelen aramada sıralama garanti değildir: arayan, callee'nin accept'ini
// aldığı anda medya bağlantısını açar ve bu bağlantı callee'ye accept'in
// işlenmesi bitmeden ulaşabilir. Manager bu erken bağlantıyı park eder;
// accept tamamlanınca parktaki bağlantı beklemeden cevaplanır. Bağlantı
// geç kalırsa sınırlı süre beklenir (bindWaitAttempts × bindWaitInterval),
// süre dolunca arama hatayla kapatılır.
//
// Kapanış kuralı: hangi yoldan kapanırsa kapansın (end, reject, karşı
// tarafın end'i, hata) yerel medya koşulsuz durdurulur — mikrofon/kamera
// ışığı yanık kalmaz.
type Manager struct {
	userID string
	peerID string

	signaler Signaler
	session  *MediaSession
	relay    Relay

	mu sync.Mutex

	outgoing *outgoingCall
	incoming map[string]ws.CallRequestData

	// accepted: Accept'i tamamlanmış aramalar; gelen medya bağlantısının
	// park mı edileceğine burada karar verilir.
	accepted map[string]bool

	// bindings: callID → gelen MediaConn'un teslim kanalı (buffered 1).
	bindings map[string]chan MediaConn

	// parked: Accept'ten önce gelen bağlantılar, remote peer ID ile.
	parked map[string]MediaConn

	conns map[string]MediaConn

	// AutoAccept: Gelen aramayı sormadan kabul eder. Uçtan uca testlerde
	// kullanılır; normal çalışmada kapalıdır.
	AutoAccept bool

	// OnIncoming: Gelen arama UI'a bu callback ile bildirilir.
	OnIncoming func(data ws.CallRequestData)

	// OnEnded: Arama herhangi bir sebeple kapandığında çağrılır.
	OnEnded func(callID string)
}

// NewManager, yeni bir Manager oluşturur. peerID oturum başına üretilir.
func NewManager(userID string, signaler Signaler, source MediaSource, relay Relay) *Manager {
	return &Manager{
		userID:   userID,
		peerID:   NewPeerID(userID),
		signaler: signaler,
		session:  NewMediaSession(source),
		relay:    relay,
		incoming: make(map[string]ws.CallRequestData),
		accepted: make(map[string]bool),
		bindings: make(map[string]chan MediaConn),
		parked:   make(map[string]MediaConn),
		conns:    make(map[string]MediaConn),
	}
}

// PeerID, bu oturumun peer kimliğini döner.
func (m *Manager) PeerID() string {
	return m.peerID
}

// Register, peer kimliğini sunucuya bildirir. Bağlantı kurulunca ve her
// reconnect'te çağrılmalıdır.
func (m *Manager) Register() error {
	return m.signaler.Send(ws.OpPeerRegister, ws.PeerRegisterData{
		PeerID: m.peerID,
		UserID: m.userID,
	})
}

// ─── Arama Başlatma ───

// StartCall, yeni bir arama başlatır.
//
// Önce medya alınır: kullanıcı izni reddederse arama hiç kurulmaz —
// sinyal gönderilmez, retry yapılmaz. Çalan bir arama varken ikinci
// StartCall bastırılır (çift tıklama koruması).
func (m *Manager) StartCall(ctx context.Context, callID, chatID, targetUserID, kind string) error {
	m.mu.Lock()
	if m.outgoing != nil {
		m.mu.Unlock()
		return ErrCallInProgress
	}
	// Yer tut: medya alınırken ikinci StartCall girmesin
	m.outgoing = &outgoingCall{callID: callID, chatID: chatID, to: targetUserID, kind: kind}
	m.mu.Unlock()

	if _, err := m.session.AcquireOrReuse(ctx, kind); err != nil {
		m.mu.Lock()
		m.outgoing = nil
		m.mu.Unlock()
		m.session.Teardown()
		return fmt.Errorf("failed to acquire media: %w", err)
	}

	err := m.signaler.Send(ws.OpCallRequest, ws.CallRequestData{
		CallID:     callID,
		ChatID:     chatID,
		From:       m.userID,
		To:         targetUserID,
		Type:       kind,
		FromPeerID: m.peerID,
	})
	if err != nil {
		m.mu.Lock()
		m.outgoing = nil
		m.mu.Unlock()
		m.session.Teardown()
		return err
	}

	log.Printf("[call] ringing %s (call %s, %s)", targetUserID, callID, kind)
	return nil
}

// HandleAccepted, karşı tarafın kabulünü işler: callee'nin peer ID'si
// artık bilinir, medya bağlantısı buradan açılır.
func (m *Manager) HandleAccepted(ctx context.Context, data ws.CallAcceptData) error {
	m.mu.Lock()
	if m.outgoing == nil || m.outgoing.callID != data.CallID {
		m.mu.Unlock()
		return ErrNoSuchCall
	}
	call := m.outgoing
	m.outgoing = nil
	m.mu.Unlock()

	stream, err := m.session.AcquireOrReuse(ctx, call.kind)
	if err != nil {
		m.endWithError(call.callID, call.chatID)
		return fmt.Errorf("failed to acquire media: %w", err)
	}

	conn, err := m.relay.Dial(ctx, data.FromPeerID, stream)
	if err != nil {
		m.endWithError(call.callID, call.chatID)
		return fmt.Errorf("failed to dial peer: %w", err)
	}

	m.mu.Lock()
	m.conns[call.callID] = conn
	m.mu.Unlock()

	log.Printf("[call] call %s connected to peer %s", call.callID, data.FromPeerID)
	return nil
}

// HandleRejected, aramanın reddini işler. Medya koşulsuz bırakılır.
func (m *Manager) HandleRejected(data ws.CallRejectedData) {
	m.mu.Lock()
	if m.outgoing != nil && m.outgoing.callID == data.CallID {
		m.outgoing = nil
	}
	m.mu.Unlock()

	m.session.Teardown()
	log.Printf("[call] call %s rejected: %s", data.CallID, data.Reason)

	if m.OnEnded != nil {
		m.OnEnded(data.CallID)
	}
}

// ─── Gelen Arama ───

// HandleIncoming, sunucudan gelen call:request'i işler.
// Aynı arama için tekrarlanan request (arayanın retry'ı) bastırılır.
// AutoAccept açıksa arama sorulmadan kabul edilir.
func (m *Manager) HandleIncoming(data ws.CallRequestData) {
	m.mu.Lock()
	if _, exists := m.incoming[data.CallID]; exists {
		m.mu.Unlock()
		return
	}
	m.incoming[data.CallID] = data
	autoAccept := m.AutoAccept
	m.mu.Unlock()

	log.Printf("[call] incoming call %s from %s (%s)", data.CallID, data.From, data.Type)

	if autoAccept {
		go func() {
			if err := m.Accept(context.Background(), data.CallID); err != nil {
				log.Printf("[call] auto-accept of call %s failed: %v", data.CallID, err)
			}
		}()
		return
	}

	if m.OnIncoming != nil {
		m.OnIncoming(data)
	}
}

// Accept, çalan aramayı kabul eder.
//
// Akış:
// 1. Medya al — başarısızsa arama reddedilir, retry yok
// 2. Aramayı accepted işaretle ve teslim kanalını aç
// 3. call:accept gönder (kendi peer ID'mizle)
// 4. Arayanın bağlantısı park'ta bekliyorsa hemen cevapla; değilse
//    sınırlı süre bekle
func (m *Manager) Accept(ctx context.Context, callID string) error {
	m.mu.Lock()
	req, ok := m.incoming[callID]
	if !ok {
		m.mu.Unlock()
		return ErrNoSuchCall
	}
	m.mu.Unlock()

	stream, err := m.session.AcquireOrReuse(ctx, req.Type)
	if err != nil {
		m.cleanupCall(callID)
		m.session.Teardown()
		_ = m.signaler.Send(ws.OpCallReject, ws.CallRejectData{CallID: callID, From: m.userID})
		return fmt.Errorf("failed to acquire media: %w", err)
	}

	m.mu.Lock()
	m.accepted[callID] = true
	binding := make(chan MediaConn, 1)
	m.bindings[callID] = binding

	// Park kontrolü: arayanın bağlantısı accept'ten önce geldiyse
	// beklemeye hiç girilmez
	var conn MediaConn
	if parked, ok := m.parked[req.FromPeerID]; ok {
		conn = parked
		delete(m.parked, req.FromPeerID)
	}
	m.mu.Unlock()

	if err := m.signaler.Send(ws.OpCallAccept, ws.CallAcceptData{
		CallID:     callID,
		From:       m.userID,
		FromPeerID: m.peerID,
	}); err != nil {
		m.cleanupCall(callID)
		m.session.Teardown()
		return err
	}

	if conn == nil {
		conn, err = m.waitForConn(binding)
		if err != nil {
			m.cleanupCall(callID)
			m.session.Teardown()
			_ = m.signaler.Send(ws.OpCallEnd, ws.CallEndData{CallID: callID, ChatID: req.ChatID, From: m.userID, EndedBy: m.userID})
			return err
		}
	}

	if err := conn.Answer(stream); err != nil {
		_ = conn.Close()
		m.cleanupCall(callID)
		m.session.Teardown()
		return fmt.Errorf("failed to answer peer connection: %w", err)
	}

	m.mu.Lock()
	delete(m.incoming, callID)
	m.conns[callID] = conn
	m.mu.Unlock()

	log.Printf("[call] call %s accepted, connected to peer %s", callID, conn.RemotePeerID())
	return nil
}

// Reject, çalan aramayı reddeder. Arayanın erkenden açtığı park'taki
// bağlantı varsa kapatılır.
func (m *Manager) Reject(callID string) error {
	m.mu.Lock()
	_, ok := m.incoming[callID]
	m.mu.Unlock()

	if !ok {
		return ErrNoSuchCall
	}
	m.cleanupCall(callID)
	return m.signaler.Send(ws.OpCallReject, ws.CallRejectData{CallID: callID, From: m.userID})
}

// waitForConn, arayanın medya bağlantısını sınırlı süre bekler.
func (m *Manager) waitForConn(binding chan MediaConn) (MediaConn, error) {
	for i := 0; i < bindWaitAttempts; i++ {
		select {
		case conn := <-binding:
			return conn, nil
		case <-time.After(bindWaitInterval):
		}
	}
	return nil, ErrBindTimeout
}

// HandleConnection, relay'den gelen inbound medya bağlantısını yönlendirir.
// Bağlantının ait olduğu arama accept edilmişse teslim kanalına verilir;
// henüz edilmemişse (ya da hiç tanınmıyorsa) remote peer ID ile park edilir.
func (m *Manager) HandleConnection(conn MediaConn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for callID, req := range m.incoming {
		if req.FromPeerID != conn.RemotePeerID() {
			continue
		}
		if m.accepted[callID] {
			if binding, ok := m.bindings[callID]; ok {
				select {
				case binding <- conn:
				default:
					// Kanal dolu: aynı peer'dan ikinci bağlantı — eskisi geçerli
					go conn.Close()
				}
				return
			}
		}
		break
	}

	m.parked[conn.RemotePeerID()] = conn
}

// ─── Kapanış ───

// End, aktif ya da çalan aramayı bitirir.
// Sinyal hatası olsa bile yerel kaynaklar koşulsuz bırakılır.
func (m *Manager) End(callID, chatID string) error {
	m.mu.Lock()
	conn := m.conns[callID]
	delete(m.conns, callID)
	if m.outgoing != nil && m.outgoing.callID == callID {
		m.outgoing = nil
	}
	m.mu.Unlock()

	err := m.signaler.Send(ws.OpCallEnd, ws.CallEndData{
		CallID:  callID,
		ChatID:  chatID,
		From:    m.userID,
		EndedBy: m.userID,
	})

	if conn != nil {
		_ = conn.Close()
	}
	m.cleanupCall(callID)
	m.session.Teardown()

	if m.OnEnded != nil {
		m.OnEnded(callID)
	}
	return err
}

// HandleEnded, karşı tarafın bitirdiği aramayı kapatır.
func (m *Manager) HandleEnded(callID string) {
	m.mu.Lock()
	conn := m.conns[callID]
	delete(m.conns, callID)
	if m.outgoing != nil && m.outgoing.callID == callID {
		m.outgoing = nil
	}
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	m.cleanupCall(callID)
	m.session.Teardown()

	log.Printf("[call] call %s ended by remote", callID)

	if m.OnEnded != nil {
		m.OnEnded(callID)
	}
}

// endWithError, kurulamayan aramayı sinyalle kapatır ve kaynakları bırakır.
func (m *Manager) endWithError(callID, chatID string) {
	_ = m.signaler.Send(ws.OpCallEnd, ws.CallEndData{
		CallID:  callID,
		ChatID:  chatID,
		From:    m.userID,
		EndedBy: m.userID,
	})
	m.cleanupCall(callID)
	m.session.Teardown()

	if m.OnEnded != nil {
		m.OnEnded(callID)
	}
}

// cleanupCall, aramanın geçici kayıtlarını temizler.
// Park'ta ya da teslim kanalında bekleyen yarım bağlantılar da burada
// kapatılır — kapanan bir aramanın açık soket bırakmaması gerekir.
func (m *Manager) cleanupCall(callID string) {
	m.mu.Lock()

	var orphans []MediaConn
	if req, ok := m.incoming[callID]; ok {
		if conn, ok := m.parked[req.FromPeerID]; ok {
			orphans = append(orphans, conn)
			delete(m.parked, req.FromPeerID)
		}
	}
	if binding, ok := m.bindings[callID]; ok {
		select {
		case conn := <-binding:
			orphans = append(orphans, conn)
		default:
		}
		delete(m.bindings, callID)
	}
	delete(m.incoming, callID)
	delete(m.accepted, callID)
	m.mu.Unlock()

	for _, conn := range orphans {
		_ = conn.Close()
	}
}
