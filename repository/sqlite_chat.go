package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
)

// sqliteChatRepo, ChatRepository interface'inin SQLite implementasyonu.
type sqliteChatRepo struct {
	db *sql.DB
}

// NewSQLiteChatRepo, constructor — interface döner.
func NewSQLiteChatRepo(db *sql.DB) ChatRepository {
	return &sqliteChatRepo{db: db}
}

func (r *sqliteChatRepo) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	var name sql.NullString

	err := r.db.QueryRowContext(ctx,
		"SELECT id, type, name, created_at FROM chats WHERE id = ?", id,
	).Scan(&chat.ID, &chat.Type, &name, &chat.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: chat not found", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	if name.Valid {
		s := name.String
		chat.Name = &s
	}
	return &chat, nil
}

// GetParticipants, sohbet üyelerini kullanıcı bilgisiyle JOIN'leyerek döner —
// call:end display name fallback'i tek sorguda çözülür.
func (r *sqliteChatRepo) GetParticipants(ctx context.Context, chatID string) ([]models.ChatParticipant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cp.chat_id, cp.user_id, u.username, u.display_name
		 FROM chat_participants cp
		 JOIN users u ON u.id = cp.user_id
		 WHERE cp.chat_id = ?`, chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat participants: %w", err)
	}
	defer rows.Close()

	participants := []models.ChatParticipant{}
	for rows.Next() {
		var p models.ChatParticipant
		var displayName sql.NullString
		if err := rows.Scan(&p.ChatID, &p.UserID, &p.Username, &displayName); err != nil {
			return nil, fmt.Errorf("failed to scan chat participant: %w", err)
		}
		if displayName.Valid {
			s := displayName.String
			p.DisplayName = &s
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat participants: %w", err)
	}
	return participants, nil
}

func (r *sqliteChatRepo) IsParticipant(ctx context.Context, chatID, userID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chat_participants WHERE chat_id = ? AND user_id = ?",
		chatID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check chat membership: %w", err)
	}
	return count > 0, nil
}
