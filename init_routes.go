// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// Route sıralama kuralı: literal path'ler parametrik path'lerden önce
// tanımlanmalı, yoksa Go router literal kelimeyi parametre sanır.
package main

import (
	"net/http"

	"github.com/logit-app/rtc/middleware"
	"github.com/logit-app/rtc/pkg"
	"github.com/logit-app/rtc/repository"
	"github.com/logit-app/rtc/services"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	userRepo repository.UserRepository,
) {
	authMw := middleware.NewAuthMiddleware(authService, userRepo)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}

	// ─── Health ───
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// ─── WebSocket ───
	// Token query parametresi ile gelir; auth middleware'dan geçmez.
	mux.HandleFunc("GET /ws", h.WS.ServeWS)

	// ─── Calls ───
	mux.Handle("POST /api/calls/log", auth(h.CallLog.CreateLog))
	mux.Handle("PATCH /api/calls/log/{callId}", auth(h.CallLog.UpdateLog))
	mux.Handle("GET /api/calls/history", auth(h.CallLog.History))
	mux.Handle("POST /api/calls/event", auth(h.CallLog.Event))
	mux.Handle("POST /api/calls/token", auth(h.CallLog.Token))

	// ─── Presence ───
	mux.Handle("GET /api/presence/online", auth(h.Presence.Online))
	mux.Handle("GET /api/presence/status", auth(h.Presence.BulkStatus))

	// ─── Chats ───
	mux.Handle("GET /api/chats/{chatId}/participants", auth(h.Chat.Participants))
	mux.Handle("POST /api/chats/{chatId}/force-leave", auth(h.Chat.ForceLeave))

	// ─── Notifications ───
	mux.Handle("GET /api/notifications", auth(h.Notification.List))
	mux.Handle("POST /api/notifications/{id}/read", auth(h.Notification.MarkRead))
}
