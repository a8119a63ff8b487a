package repository

import (
	"context"

	"github.com/logit-app/rtc/models"
)

// ChatRepository, sohbet üyeliği lookup'ları için interface.
//
// Sohbet CRUD'u platformun ana servisine aittir — signaling çekirdeği
// sadece okur: call:end fan-out'u için katılımcı listesi, display name
// fallback'i için üyelik bilgisi.
type ChatRepository interface {
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	GetParticipants(ctx context.Context, chatID string) ([]models.ChatParticipant, error)
	IsParticipant(ctx context.Context, chatID, userID string) (bool, error)
}
