package handlers

import (
	"net/http"
	"strconv"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
	"github.com/logit-app/rtc/services"
)

// NotificationHandler, bildirim endpoint'lerini yönetir.
type NotificationHandler struct {
	notificationService services.NotificationService
}

// NewNotificationHandler, yeni bir NotificationHandler oluşturur.
func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List godoc
// GET /api/notifications?limit={n}
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifications, err := h.notificationService.List(r.Context(), user.ID, limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, notifications)
}

// MarkRead godoc
// POST /api/notifications/{id}/read
// Sadece bildirimin sahibi okundu işaretleyebilir.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), id, user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}
