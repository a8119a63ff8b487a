// Package main — Handler katmanı başlatma.
package main

import (
	"github.com/logit-app/rtc/handlers"
	"github.com/logit-app/rtc/ws"
)

// Handlers, tüm HTTP handler instance'larını tutan container struct.
type Handlers struct {
	CallLog      *handlers.CallLogHandler
	Notification *handlers.NotificationHandler
	Chat         *handlers.ChatHandler
	Presence     *handlers.PresenceHandler
	WS           *ws.Handler
}

// initHandlers, service'lerden tüm handler'ları oluşturur.
func initHandlers(svcs *Services, repos *Repositories, hub *ws.Hub) *Handlers {
	return &Handlers{
		CallLog:      handlers.NewCallLogHandler(svcs.CallLog, svcs.RelayToken),
		Notification: handlers.NewNotificationHandler(svcs.Notification),
		Chat:         handlers.NewChatHandler(repos.Chat, hub),
		Presence:     handlers.NewPresenceHandler(svcs.Presence),
		WS:           ws.NewHandler(hub, svcs.Auth),
	}
}
