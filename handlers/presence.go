package handlers

import (
	"net/http"
	"strings"

	"github.com/logit-app/rtc/pkg"
	"github.com/logit-app/rtc/services"
)

// PresenceHandler, online durum sorgu endpoint'lerini yönetir.
type PresenceHandler struct {
	presence services.PresenceService
}

// NewPresenceHandler, yeni bir PresenceHandler oluşturur.
func NewPresenceHandler(presence services.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// Online godoc
// GET /api/presence/online
// O an online olan tüm kullanıcı ID'lerini döner.
func (h *PresenceHandler) Online(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, h.presence.OnlineUserIDs())
}

// BulkStatus godoc
// GET /api/presence/status?user_ids=a,b,c
// Verilen kullanıcıların online durumlarını tek istekte döner —
// arkadaş listesi render'ı için kullanıcı başına istek atmaya gerek kalmaz.
func (h *PresenceHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("user_ids")
	if raw == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user_ids is required")
		return
	}

	userIDs := strings.Split(raw, ",")
	if len(userIDs) > 200 {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "too many user_ids (max 200)")
		return
	}

	pkg.JSON(w, http.StatusOK, h.presence.BulkStatus(userIDs))
}
