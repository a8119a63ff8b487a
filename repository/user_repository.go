package repository

import (
	"context"

	"github.com/logit-app/rtc/models"
)

// UserRepository, kullanıcı lookup'ları için interface.
// Kullanıcı CRUD'u ana serviste — burada sadece display name çözümleme
// için GetByID gerekir.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
