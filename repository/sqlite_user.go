package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
)

// sqliteUserRepo, UserRepository interface'inin SQLite implementasyonu.
type sqliteUserRepo struct {
	db *sql.DB
}

// NewSQLiteUserRepo, constructor — interface döner.
func NewSQLiteUserRepo(db *sql.DB) UserRepository {
	return &sqliteUserRepo{db: db}
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	var displayName, avatarURL sql.NullString

	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, display_name, avatar_url, created_at FROM users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.Username, &displayName, &avatarURL, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user not found", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if displayName.Valid {
		s := displayName.String
		user.DisplayName = &s
	}
	if avatarURL.Valid {
		s := avatarURL.String
		user.AvatarURL = &s
	}
	return &user, nil
}
