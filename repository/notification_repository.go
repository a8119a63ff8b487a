package repository

import (
	"context"

	"github.com/logit-app/rtc/models"
)

// NotificationRepository, bildirim kayıtları için interface.
//
// Canlı teslimat hub üzerinden yapılır (best-effort); DB kaydı her durumda
// yazılır — offline kullanıcı bir sonraki açılışta listeden okur.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}
