// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
//
// Sıralama kuralı: Presence, PeerRegistry ve PendingCallTable
// CallSignalService'den ÖNCE oluşturulmalı — signal service hepsine
// bağımlıdır.
package main

import (
	"github.com/logit-app/rtc/config"
	"github.com/logit-app/rtc/services"
	"github.com/logit-app/rtc/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth         services.AuthService
	Presence     services.PresenceService
	Peers        services.PeerRegistry
	Pending      services.PendingCallTable
	Notification services.NotificationService
	CallSignal   services.CallSignalService
	CallLog      services.CallLogService
	RelayToken   services.RelayTokenService
}

// initServices, tüm service'leri oluşturur.
func initServices(repos *Repositories, hub ws.EventPublisher, cfg *config.Config) *Services {
	authService := services.NewAuthService(cfg.JWT.Secret)
	presenceService := services.NewPresenceService(hub)
	peerRegistry := services.NewPeerRegistry()
	pendingCalls := services.NewPendingCallTable()

	notificationService := services.NewNotificationService(repos.Notification, hub)

	callSignalService := services.NewCallSignalService(
		presenceService,
		peerRegistry,
		pendingCalls,
		repos.User,
		repos.Chat,
		notificationService,
		hub,
	)

	callLogService := services.NewCallLogService(repos.Call, repos.Chat, hub)
	relayTokenService := services.NewRelayTokenService(repos.Chat, peerRegistry, cfg.Relay)

	return &Services{
		Auth:         authService,
		Presence:     presenceService,
		Peers:        peerRegistry,
		Pending:      pendingCalls,
		Notification: notificationService,
		CallSignal:   callSignalService,
		CallLog:      callLogService,
		RelayToken:   relayTokenService,
	}
}
