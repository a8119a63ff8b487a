package services

import (
	"log"
	"sync"
)

// PeerRegistry, kullanıcı↔peer ID eşlemesini tutar.
//
// Peer ID, client'ın medya oturumu için ürettiği geçici kimliktir;
// her oturumda değişir. Kalıcı userID ile geçici peer ID arasındaki
// köprü burasıdır: sinyal event'leri userID ile hedeflenir, medya
// bağlantısı peer ID ile kurulur.
type PeerRegistry interface {
	Register(userID, peerID string)
	Unregister(userID string)
	PeerID(userID string) (string, bool)
	UserID(peerID string) (string, bool)
}

type peerRegistry struct {
	mu sync.RWMutex

	byUser map[string]string
	byPeer map[string]string
}

// NewPeerRegistry, yeni bir PeerRegistry oluşturur.
func NewPeerRegistry() PeerRegistry {
	return &peerRegistry{
		byUser: make(map[string]string),
		byPeer: make(map[string]string),
	}
}

// Register, kullanıcının güncel peer ID'sini kaydeder.
// Önceki kayıt varsa yenisi onun yerini alır (newest wins) — client
// medya oturumunu yeniden kurduğunda eski peer ID geçersizdir.
func (r *peerRegistry) Register(userID, peerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[userID]; ok {
		delete(r.byPeer, old)
	}
	r.byUser[userID] = peerID
	r.byPeer[peerID] = userID

	log.Printf("[peer] registered peer %s for user %s", peerID, userID)
}

// Unregister, kullanıcının peer kaydını kaldırır (disconnect temizliği).
func (r *peerRegistry) Unregister(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if peerID, ok := r.byUser[userID]; ok {
		delete(r.byPeer, peerID)
		delete(r.byUser, userID)
	}
}

// PeerID, kullanıcının güncel peer ID'sini döner.
func (r *peerRegistry) PeerID(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peerID, ok := r.byUser[userID]
	return peerID, ok
}

// UserID, peer ID'nin hangi kullanıcıya ait olduğunu döner.
func (r *peerRegistry) UserID(peerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.byPeer[peerID]
	return userID, ok
}
