package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
	"github.com/logit-app/rtc/repository"
	"github.com/logit-app/rtc/ws"
)

// ChatMembershipChecker, arama kaydı yazan kullanıcının sohbet üyeliğini
// doğrulamak için minimal interface.
type ChatMembershipChecker interface {
	IsParticipant(ctx context.Context, chatID, userID string) (bool, error)
}

// CallLogService, arama geçmişi kayıtlarını yönetir.
//
// Sıralama kuralı: önce persist, sonra broadcast. Yazma başarısız olursa
// sohbete hiçbir event gitmez — kalıcı kayıt ile canlı görünüm asla
// çelişmez. Update broadcast'i de istekten değil DB'deki kayıttan
// beslenir: client gönderdiği chat_id ile başka bir sohbete event
// enjekte edemez.
type CallLogService interface {
	CreateCallLog(ctx context.Context, userID string, req models.CreateCallLogRequest) (*models.Call, error)
	UpdateCallLog(ctx context.Context, userID, callID string, req models.UpdateCallLogRequest) (*models.Call, error)
	GetCallHistory(ctx context.Context, userID, chatID string, page, limit int) (*models.CallHistoryPage, error)
	EmitCallEvent(ctx context.Context, userID string, req models.CallEventRequest) error
}

type callLogService struct {
	callRepo    repository.CallRepository
	chatChecker ChatMembershipChecker
	publisher   ws.EventPublisher
}

// NewCallLogService, yeni bir CallLogService oluşturur.
func NewCallLogService(
	callRepo repository.CallRepository,
	chatChecker ChatMembershipChecker,
	publisher ws.EventPublisher,
) CallLogService {
	return &callLogService{
		callRepo:    callRepo,
		chatChecker: chatChecker,
		publisher:   publisher,
	}
}

// CreateCallLog, yeni arama kaydını açar ve sohbete call:started yayınlar.
func (s *callLogService) CreateCallLog(ctx context.Context, userID string, req models.CreateCallLogRequest) (*models.Call, error) {
	if req.ChatID == "" || len(req.Participants) == 0 {
		return nil, fmt.Errorf("%w: chat_id and participants are required", pkg.ErrBadRequest)
	}
	if req.Type != models.CallTypeAudio && req.Type != models.CallTypeVideo {
		return nil, fmt.Errorf("%w: invalid call type", pkg.ErrBadRequest)
	}
	// Kaydı yazan kullanıcı katılımcı listesinde olmalı
	if !slices.Contains(req.Participants, userID) {
		return nil, fmt.Errorf("%w: caller must be a call participant", pkg.ErrBadRequest)
	}

	isMember, err := s.chatChecker.IsParticipant(ctx, req.ChatID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("%w: not a participant of this chat", pkg.ErrForbidden)
	}

	call := &models.Call{
		ID:           req.CallID,
		Type:         req.Type,
		ChatID:       req.ChatID,
		Participants: req.Participants,
		StartedAt:    time.Now(),
		Status:       models.CallStatusActive,
	}
	if call.ID == "" {
		call.ID = uuid.NewString()
	}

	if err := s.callRepo.Create(ctx, call); err != nil {
		log.Printf("[call-log] failed to create call log %s: %v", call.ID, err)
		return nil, err
	}

	// Katılımcıların user room'larına: sohbeti o an açık tutmayan taraf da
	// arama kartını görür
	for _, participantID := range call.Participants {
		s.publisher.BroadcastToUser(participantID, ws.Event{
			Op:   ws.OpCallStarted,
			Data: call,
		})
	}

	log.Printf("[call-log] call %s started in chat %s (%s)", call.ID, call.ChatID, call.Type)
	return call, nil
}

// UpdateCallLog, aramanın bitiş/durum alanlarını günceller.
// Sonlanmış kayıt değişmezdir: çift taraflı end yarışında ilk yazan
// kazanır, ikinci deneme hata alır.
func (s *callLogService) UpdateCallLog(ctx context.Context, userID, callID string, req models.UpdateCallLogRequest) (*models.Call, error) {
	call, err := s.callRepo.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(call.Participants, userID) {
		return nil, fmt.Errorf("%w: not a participant of this call", pkg.ErrForbidden)
	}

	if call.Status != models.CallStatusActive {
		return nil, fmt.Errorf("%w: call already ended", pkg.ErrBadRequest)
	}

	if req.Status != nil {
		if *req.Status != models.CallStatusEnded && *req.Status != models.CallStatusMissed {
			return nil, fmt.Errorf("%w: invalid call status", pkg.ErrBadRequest)
		}
		call.Status = *req.Status

		now := time.Now()
		call.EndedAt = &now
		duration := int64(now.Sub(call.StartedAt).Seconds())
		call.Duration = &duration
	}
	if req.EndedBy != nil {
		call.EndedBy = req.EndedBy
	}

	if err := s.callRepo.Update(ctx, call); err != nil {
		log.Printf("[call-log] failed to update call log %s: %v", callID, err)
		return nil, err
	}

	// Alıcı listesi DB'deki kayıttan: istek gövdesiyle başka bir sohbetin
	// kullanıcılarına event enjekte edilemez
	for _, participantID := range call.Participants {
		s.publisher.BroadcastToUser(participantID, ws.Event{
			Op:   ws.OpCallUpdated,
			Data: call,
		})
	}

	return call, nil
}

// GetCallHistory, kullanıcının arama geçmişini sayfalı döner.
// chatID boş ise tüm sohbetlerdeki aramalar listelenir.
func (s *callLogService) GetCallHistory(ctx context.Context, userID, chatID string, page, limit int) (*models.CallHistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if chatID != "" {
		isMember, err := s.chatChecker.IsParticipant(ctx, chatID, userID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, fmt.Errorf("%w: not a participant of this chat", pkg.ErrForbidden)
		}
	}

	return s.callRepo.History(ctx, userID, chatID, page, limit)
}

// EmitCallEvent, arama içi olayı (join/leave/mute...) audit kaydına yazar
// ve sohbete canlı iletir. Kayıt yazılamazsa event iletilmez.
func (s *callLogService) EmitCallEvent(ctx context.Context, userID string, req models.CallEventRequest) error {
	if req.CallID == "" || req.ChatID == "" {
		return fmt.Errorf("%w: call_id and chat_id are required", pkg.ErrBadRequest)
	}
	// Audit tablosu append-only: bilinmeyen tür bir kez girerse silinemez
	if !req.Type.Valid() {
		return fmt.Errorf("%w: invalid call event type", pkg.ErrBadRequest)
	}

	isMember, err := s.chatChecker.IsParticipant(ctx, req.ChatID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("%w: not a participant of this chat", pkg.ErrForbidden)
	}

	event := &models.CallEvent{
		ID:        uuid.NewString(),
		CallID:    req.CallID,
		Type:      req.Type,
		UserID:    userID,
		Data:      req.Data,
		Timestamp: time.Now(),
	}

	if err := s.callRepo.CreateEvent(ctx, event); err != nil {
		log.Printf("[call-log] failed to record call event for call %s: %v", req.CallID, err)
		return err
	}

	s.publisher.BroadcastToChat(req.ChatID, ws.Event{
		Op:   ws.OpCallEvent,
		Data: event,
	})
	return nil
}
