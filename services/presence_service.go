package services

import (
	"log"
	"sync"

	"github.com/logit-app/rtc/ws"
)

// PresenceService, kullanıcı↔bağlantı eşlemesini ve online/offline
// yayınlarını yönetir.
//
// Kayıt 1:1'dir: her kullanıcının TEK aktif bağlantısı vardır, her
// bağlantı tek kullanıcıya aittir. Aynı kullanıcı yeni bir bağlantıyla
// kayıt olursa yeni kayıt eskisinin yerini alır (newest wins) —
// reconnect'te bayat kayıt bırakmamak için.
//
// Hub'daki user room çoklu tab tutabilir; sinyal hedeflemesi için
// geçerli bağlantı ise buradaki kayıttır.
type PresenceService interface {
	Register(userID, connID string)
	Unregister(userID, connID string)
	IsOnline(userID string) bool
	ConnID(userID string) (string, bool)
	OnlineUserIDs() []string
	BulkStatus(userIDs []string) map[string]bool
}

type presenceService struct {
	mu sync.RWMutex

	// byUser: userID → aktif connID. byConn tersi — iki yönlü tutulur
	// ki eski bağlantının geç gelen disconnect'i yeni kaydı silmesin.
	byUser map[string]string
	byConn map[string]string

	publisher ws.EventPublisher
}

// NewPresenceService, yeni bir PresenceService oluşturur.
func NewPresenceService(publisher ws.EventPublisher) PresenceService {
	return &presenceService{
		byUser:    make(map[string]string),
		byConn:    make(map[string]string),
		publisher: publisher,
	}
}

// Register, kullanıcıyı verilen bağlantıyla online kaydeder.
// Offline→online geçişinde diğer herkese user_online yayınlanır;
// aynı kullanıcının yeniden kaydı (reconnect) yayın üretmez.
func (s *presenceService) Register(userID, connID string) {
	s.mu.Lock()

	wasOnline := false
	if oldConn, ok := s.byUser[userID]; ok {
		wasOnline = true
		delete(s.byConn, oldConn)
	}
	s.byUser[userID] = connID
	s.byConn[connID] = userID

	s.mu.Unlock()

	if wasOnline {
		log.Printf("[presence] user %s re-registered on conn %s", userID, connID)
		return
	}

	log.Printf("[presence] user %s online (conn %s)", userID, connID)
	s.publisher.BroadcastToAllExcept(userID, ws.Event{
		Op:   ws.OpUserOnline,
		Data: ws.PresenceData{UserID: userID},
	})
}

// Unregister, bağlantı koptuğunda kaydı kaldırır.
// Yalnızca hâlâ geçerli olan bağlantı için çalışır: kullanıcı yeni bir
// bağlantıyla yeniden kayıt olduysa eski bağlantının kopuşu yok sayılır,
// kullanıcı offline yayınlanmaz.
func (s *presenceService) Unregister(userID, connID string) {
	s.mu.Lock()

	current, ok := s.byUser[userID]
	if !ok || current != connID {
		s.mu.Unlock()
		return
	}
	delete(s.byUser, userID)
	delete(s.byConn, connID)

	s.mu.Unlock()

	log.Printf("[presence] user %s offline", userID)
	s.publisher.BroadcastToAllExcept(userID, ws.Event{
		Op:   ws.OpUserOffline,
		Data: ws.PresenceData{UserID: userID},
	})
}

// IsOnline, kullanıcının aktif bağlantısı olup olmadığını döner.
func (s *presenceService) IsOnline(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byUser[userID]
	return ok
}

// ConnID, kullanıcının aktif bağlantı ID'sini döner.
func (s *presenceService) ConnID(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	connID, ok := s.byUser[userID]
	return connID, ok
}

// OnlineUserIDs, o an online olan tüm kullanıcıları döner.
func (s *presenceService) OnlineUserIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.byUser))
	for userID := range s.byUser {
		ids = append(ids, userID)
	}
	return ids
}

// BulkStatus, verilen kullanıcı listesinin online durumlarını tek seferde
// döner (arkadaş listesi gibi toplu sorgular için).
func (s *presenceService) BulkStatus(userIDs []string) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		_, ok := s.byUser[id]
		statuses[id] = ok
	}
	return statuses
}
