package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/repository"
	"github.com/logit-app/rtc/ws"
)

// NotificationService, kalıcı bildirimleri yönetir.
//
// Bildirim her zaman DB'ye yazılır; kullanıcı online ise ek olarak
// WS üzerinden anında iletilir. Canlı iletim best-effort'tur — offline
// kullanıcı bildirimi sonraki GET /api/notifications'ta görür.
type NotificationService interface {
	Notify(ctx context.Context, userID string, notifType models.NotificationType, message string, chatID, callID *string) error
	List(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	publisher ws.EventPublisher
}

// NewNotificationService, yeni bir NotificationService oluşturur.
func NewNotificationService(repo repository.NotificationRepository, publisher ws.EventPublisher) NotificationService {
	return &notificationService{repo: repo, publisher: publisher}
}

// Notify, bildirimi kaydeder ve kullanıcının tüm bağlantılarına push eder.
func (s *notificationService) Notify(ctx context.Context, userID string, notifType models.NotificationType, message string, chatID, callID *string) error {
	notification := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      notifType,
		Message:   message,
		ChatID:    chatID,
		CallID:    callID,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		log.Printf("[notification] failed to persist notification for user %s: %v", userID, err)
		return err
	}

	s.publisher.BroadcastToUser(userID, ws.Event{
		Op:   ws.OpNotification,
		Data: notification,
	})
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}
