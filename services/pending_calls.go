package services

import (
	"sync"
	"time"
)

// PendingCall, henüz cevaplanmamış (çalan) bir aramanın kaydıdır.
type PendingCall struct {
	CallID    string
	ChatID    string
	CallerID  string
	CalleeID  string
	Type      string
	CreatedAt time.Time
}

// PendingCallTable, çalmakta olan aramaların in-memory tablosudur.
//
// Kayıt call:request'te açılır; accept/reject/end ya da arayanın
// disconnect'i ile kapanır. Sunucu tarafında zaman aşımı yoktur —
// cevapsız arama, arayan vazgeçene ya da bağlantısı kopana kadar kayıtlı
// kalır.
//
// BeginAccept/EndAccept çifti, aynı aramanın iki kez kabul işlenmesini
// engeller: çifte accept event'i (çift tıklama, retry) geldiğinde ikinci
// BeginAccept false döner ve işlenmeden atlanır.
type PendingCallTable interface {
	Add(call PendingCall)
	Get(callID string) (PendingCall, bool)
	Delete(callID string) (PendingCall, bool)
	DeleteByCaller(callerID string) []PendingCall
	BeginAccept(callID string) bool
	EndAccept(callID string)
}

type pendingCallTable struct {
	mu sync.Mutex

	calls map[string]PendingCall

	// processing: Şu anda accept'i işlenmekte olan aramalar.
	processing map[string]bool
}

// NewPendingCallTable, yeni bir PendingCallTable oluşturur.
func NewPendingCallTable() PendingCallTable {
	return &pendingCallTable{
		calls:      make(map[string]PendingCall),
		processing: make(map[string]bool),
	}
}

// Add, çalan aramayı tabloya ekler.
func (t *pendingCallTable) Add(call PendingCall) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now()
	}
	t.calls[call.CallID] = call
}

// Get, aramayı silmeden döner.
func (t *pendingCallTable) Get(callID string) (PendingCall, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	call, ok := t.calls[callID]
	return call, ok
}

// Delete, aramayı tablodan kaldırır ve kaldırılan kaydı döner.
func (t *pendingCallTable) Delete(callID string) (PendingCall, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	call, ok := t.calls[callID]
	if ok {
		delete(t.calls, callID)
	}
	return call, ok
}

// DeleteByCaller, bir kullanıcının başlattığı tüm bekleyen aramaları
// kaldırır ve kaldırılanları döner (disconnect temizliği için).
func (t *pendingCallTable) DeleteByCaller(callerID string) []PendingCall {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []PendingCall
	for id, call := range t.calls {
		if call.CallerID == callerID {
			removed = append(removed, call)
			delete(t.calls, id)
		}
	}
	return removed
}

// BeginAccept, arama için accept işleme kilidini alır.
// Zaten işlenmekteyse false döner — çağıran event'i atlamalıdır.
func (t *pendingCallTable) BeginAccept(callID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.processing[callID] {
		return false
	}
	t.processing[callID] = true
	return true
}

// EndAccept, accept işleme kilidini bırakır.
func (t *pendingCallTable) EndAccept(callID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.processing, callID)
}
