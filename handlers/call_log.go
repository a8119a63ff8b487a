package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
	"github.com/logit-app/rtc/services"
)

// CallLogHandler, arama geçmişi ve relay token endpoint'lerini yönetir.
type CallLogHandler struct {
	callLogService services.CallLogService
	relayService   services.RelayTokenService
}

// NewCallLogHandler, yeni bir CallLogHandler oluşturur.
func NewCallLogHandler(callLogService services.CallLogService, relayService services.RelayTokenService) *CallLogHandler {
	return &CallLogHandler{
		callLogService: callLogService,
		relayService:   relayService,
	}
}

// CreateLog godoc
// POST /api/calls/log
// Yeni arama kaydı açar; sohbete call:started yayınlanır.
func (h *CallLogHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateCallLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	call, err := h.callLogService.CreateCallLog(r.Context(), user.ID, req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, call)
}

// UpdateLog godoc
// PATCH /api/calls/log/{callId}
// Aramanın bitiş/durum alanlarını günceller; sonlanmış kayıt değişmez.
func (h *CallLogHandler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	callID := r.PathValue("callId")
	if callID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "callId is required")
		return
	}

	var req models.UpdateCallLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	call, err := h.callLogService.UpdateCallLog(r.Context(), user.ID, callID, req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, call)
}

// History godoc
// GET /api/calls/history?chat_id={id}&page={n}&limit={n}
// chat_id boş ise kullanıcının tüm aramaları listelenir.
func (h *CallLogHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	chatID := r.URL.Query().Get("chat_id")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.callLogService.GetCallHistory(r.Context(), user.ID, chatID, page, limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, history)
}

// Event godoc
// POST /api/calls/event
// Arama içi olayı (join/leave/mute...) audit kaydına yazar ve sohbete iletir.
func (h *CallLogHandler) Event(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CallEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.callLogService.EmitCallEvent(r.Context(), user.ID, req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// Token godoc
// POST /api/calls/token
// Medya relay'ine (NAT arkasında kalan çiftler için) katılım token'ı üretir.
func (h *CallLogHandler) Token(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.RelayTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.relayService.GenerateToken(r.Context(), user.ID, user.Username, req.CallID, req.ChatID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, resp)
}
