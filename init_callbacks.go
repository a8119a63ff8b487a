// Package main — WebSocket Hub callback wire-up.
//
// Hub ws paketinde yaşıyor ama sinyal kararları service katmanında.
// Hub'ın service'lere bağımlı olmasını istemiyoruz (Dependency
// Inversion); main package wire-up noktasıdır, tüm katmanları burada
// birbirine bağlarız.
//
// Connect/disconnect callback'leri Hub tarafında `go callback()` ile
// çağrılır — Hub'ın mutex Lock'u ile broadcast RLock'u çakışmaz.
package main

import (
	"github.com/logit-app/rtc/ws"
)

// registerHubCallbacks, tüm Hub callback'lerini register eder.
func registerHubCallbacks(hub *ws.Hub, svcs *Services) {
	// ─── Presence ───

	// Bağlantı açıldığında kullanıcı online kaydedilir; aynı kullanıcının
	// yeni bağlantısı eskisinin yerini alır (newest wins).
	hub.OnClientConnect(func(userID, connID string) {
		svcs.Presence.Register(userID, connID)
	})

	// identify, reconnect sonrası presence kaydını tazeler.
	hub.OnIdentify(func(userID, connID string) {
		svcs.Presence.Register(userID, connID)
	})

	// Disconnect temizliği tek noktadan: presence, peer eşlemesi ve
	// kopanın başlattığı çalan aramalar.
	hub.OnClientDisconnect(func(userID, connID string) {
		svcs.CallSignal.HandleDisconnect(userID, connID)
	})

	// ─── Peer Eşlemesi ───

	hub.OnPeerRegister(func(userID string, data ws.PeerRegisterData) {
		// Payload'daki user_id'ye güvenilmez — bağlantının kimliği esas
		svcs.Peers.Register(userID, data.PeerID)
	})

	// ─── Arama Sinyalleri ───

	hub.OnCallRequest(func(userID string, data ws.CallRequestData) {
		svcs.CallSignal.HandleRequest(userID, data)
	})

	hub.OnCallAccept(func(userID string, data ws.CallAcceptData) {
		svcs.CallSignal.HandleAccept(userID, data)
	})

	hub.OnCallReject(func(userID string, data ws.CallRejectData) {
		svcs.CallSignal.HandleReject(userID, data)
	})

	hub.OnCallEnd(func(userID string, data ws.CallEndData) {
		svcs.CallSignal.HandleEnd(userID, data)
	})

	hub.OnCallStatusUpdate(func(userID string, data ws.CallStatusUpdateData) {
		svcs.CallSignal.HandleStatusUpdate(userID, data)
	})
}
