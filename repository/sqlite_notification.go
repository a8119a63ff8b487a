package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
)

// sqliteNotificationRepo, NotificationRepository'nin SQLite implementasyonu.
type sqliteNotificationRepo struct {
	db *sql.DB
}

// NewSQLiteNotificationRepo, constructor — interface döner.
func NewSQLiteNotificationRepo(db *sql.DB) NotificationRepository {
	return &sqliteNotificationRepo{db: db}
}

func (r *sqliteNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	var chatID, callID any
	if n.ChatID != nil {
		chatID = *n.ChatID
	}
	if n.CallID != nil {
		callID = *n.CallID
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, message, chat_id, call_id, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Type, n.Message, chatID, callID, n.Read, n.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *sqliteNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, message, chat_id, call_id, read, created_at
		 FROM notifications WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var chatID, callID sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message,
			&chatID, &callID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if chatID.Valid {
			s := chatID.String
			n.ChatID = &s
		}
		if callID.Valid {
			s := callID.String
			n.CallID = &s
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead, bildirimi okundu işaretler. userID kontrolü sahiplik doğrular —
// başka kullanıcının bildirimi işaretlenemez.
func (r *sqliteNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check mark read result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: notification not found", pkg.ErrNotFound)
	}
	return nil
}
