package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
	"github.com/logit-app/rtc/repository"
)

// RoomEjector, bir kullanıcının chat room bağlantılarını düşürmek için
// minimal interface (ws.Hub karşılar).
type RoomEjector interface {
	ForceLeaveChat(chatID, userID string)
}

// ChatHandler, sohbet odası endpoint'lerini yönetir.
type ChatHandler struct {
	chatRepo repository.ChatRepository
	ejector  RoomEjector
}

// NewChatHandler, yeni bir ChatHandler oluşturur.
func NewChatHandler(chatRepo repository.ChatRepository, ejector RoomEjector) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo, ejector: ejector}
}

// Participants godoc
// GET /api/chats/{chatId}/participants
func (h *ChatHandler) Participants(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	chatID := r.PathValue("chatId")
	if chatID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "chatId is required")
		return
	}

	isMember, err := h.chatRepo.IsParticipant(r.Context(), chatID, user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	if !isMember {
		pkg.ErrorWithMessage(w, http.StatusForbidden, "not a participant of this chat")
		return
	}

	participants, err := h.chatRepo.GetParticipants(r.Context(), chatID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, participants)
}

// ForceLeave godoc
// POST /api/chats/{chatId}/force-leave
// Request: { "user_id": "..." }
//
// Gruptan çıkarılan üyenin açık bağlantıları chat room'dan düşürülür ve
// her birine chat:force-leave gönderilir — üyelikten çıkarılan kullanıcı
// sohbet broadcast'lerini almaya devam edemez. Üyelik kaydının kendisini
// çağıran sistem (hesap/sohbet servisi) siler; burası canlı oturum
// tarafını kapatır.
func (h *ChatHandler) ForceLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	chatID := r.PathValue("chatId")
	if chatID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "chatId is required")
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user_id is required")
		return
	}

	// Çağıran sohbetin üyesi olmalı (kendini düşürmek serbest)
	if user.ID != req.UserID {
		isMember, err := h.chatRepo.IsParticipant(r.Context(), chatID, user.ID)
		if err != nil {
			pkg.Error(w, err)
			return
		}
		if !isMember {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "not a participant of this chat")
			return
		}
	}

	h.ejector.ForceLeaveChat(chatID, req.UserID)
	pkg.JSON(w, http.StatusOK, map[string]string{"status": "left"})
}
