package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/logit-app/rtc/database"
	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
)

// sqliteCallRepo, CallRepository interface'inin SQLite implementasyonu.
type sqliteCallRepo struct {
	db *sql.DB
}

// NewSQLiteCallRepo, constructor — interface döner.
func NewSQLiteCallRepo(db *sql.DB) CallRepository {
	return &sqliteCallRepo{db: db}
}

// Create, arama kaydını ve katılımcı satırlarını tek transaction'da yazar.
// Katılımcı insert'i yarıda kalırsa call satırı da geri alınır —
// katılımcısız arama kaydı oluşamaz.
func (r *sqliteCallRepo) Create(ctx context.Context, call *models.Call) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO calls (id, type, chat_id, started_at, status)
			 VALUES (?, ?, ?, ?, ?)`,
			call.ID, call.Type, call.ChatID, call.StartedAt, call.Status,
		); err != nil {
			return fmt.Errorf("failed to insert call: %w", err)
		}

		for _, userID := range call.Participants {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO call_participants (call_id, user_id) VALUES (?, ?)",
				call.ID, userID,
			); err != nil {
				return fmt.Errorf("failed to insert call participant: %w", err)
			}
		}
		return nil
	})
}

// GetByID, bir arama kaydını katılımcıları ile birlikte döner.
func (r *sqliteCallRepo) GetByID(ctx context.Context, id string) (*models.Call, error) {
	var call models.Call
	var endedAt sql.NullTime
	var endedBy sql.NullString
	var duration sql.NullInt64

	err := r.db.QueryRowContext(ctx,
		`SELECT id, type, chat_id, started_at, ended_at, ended_by, status, duration
		 FROM calls WHERE id = ?`, id,
	).Scan(&call.ID, &call.Type, &call.ChatID, &call.StartedAt,
		&endedAt, &endedBy, &call.Status, &duration)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: call not found", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get call: %w", err)
	}

	if endedAt.Valid {
		t := endedAt.Time
		call.EndedAt = &t
	}
	if endedBy.Valid {
		s := endedBy.String
		call.EndedBy = &s
	}
	if duration.Valid {
		d := duration.Int64
		call.Duration = &d
	}

	participants, err := r.loadParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	call.Participants = participants

	return &call, nil
}

// Update, kaydın mutable alanlarını yazar. Partial update mantığı
// service katmanındadır — repo her zaman tam satırı yazar.
func (r *sqliteCallRepo) Update(ctx context.Context, call *models.Call) error {
	var endedAt any
	if call.EndedAt != nil {
		endedAt = *call.EndedAt
	}
	var endedBy any
	if call.EndedBy != nil {
		endedBy = *call.EndedBy
	}
	var duration any
	if call.Duration != nil {
		duration = *call.Duration
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE calls SET ended_at = ?, ended_by = ?, status = ?, duration = ?
		 WHERE id = ?`,
		endedAt, endedBy, call.Status, duration, call.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update call: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: call not found", pkg.ErrNotFound)
	}
	return nil
}

// History, kullanıcının katıldığı aramaları yeniden eskiye sıralı döner.
// chatID boş değilse sadece o sohbetin aramaları gelir.
// idx_call_participants_user + idx_calls_chat_created index'leri kullanılır.
func (r *sqliteCallRepo) History(ctx context.Context, userID, chatID string, page, limit int) (*models.CallHistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	where := "cp.user_id = ?"
	args := []any{userID}
	if chatID != "" {
		where += " AND c.chat_id = ?"
		args = append(args, chatID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM calls c
		JOIN call_participants cp ON cp.call_id = c.id WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count call history: %w", err)
	}

	query := `SELECT c.id, c.type, c.chat_id, c.started_at, c.ended_at, c.ended_by, c.status, c.duration
		FROM calls c
		JOIN call_participants cp ON cp.call_id = c.id
		WHERE ` + where + `
		ORDER BY c.created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query call history: %w", err)
	}
	defer rows.Close()

	calls := []models.Call{}
	for rows.Next() {
		var call models.Call
		var endedAt sql.NullTime
		var endedBy sql.NullString
		var duration sql.NullInt64

		if err := rows.Scan(&call.ID, &call.Type, &call.ChatID, &call.StartedAt,
			&endedAt, &endedBy, &call.Status, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan call row: %w", err)
		}
		if endedAt.Valid {
			t := endedAt.Time
			call.EndedAt = &t
		}
		if endedBy.Valid {
			s := endedBy.String
			call.EndedBy = &s
		}
		if duration.Valid {
			d := duration.Int64
			call.Duration = &d
		}
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating call history: %w", err)
	}

	// Katılımcıları batch yükle (N+1 önleme)
	if len(calls) > 0 {
		ids := make([]string, len(calls))
		for i, c := range calls {
			ids[i] = c.ID
		}
		byCall, err := r.loadParticipantsBatch(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range calls {
			calls[i].Participants = byCall[calls[i].ID]
		}
	}

	return &models.CallHistoryPage{
		Calls:      calls,
		Page:       page,
		Limit:      limit,
		TotalCount: total,
	}, nil
}

// CreateEvent, append-only audit kaydı yazar.
func (r *sqliteCallRepo) CreateEvent(ctx context.Context, event *models.CallEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	var data any
	if event.Data != nil {
		data = *event.Data
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO call_events (id, call_id, type, user_id, data, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.CallID, event.Type, event.UserID, data, event.Timestamp,
	); err != nil {
		return fmt.Errorf("failed to insert call event: %w", err)
	}
	return nil
}

// ListEvents, bir aramanın audit event'lerini zaman sıralı döner.
func (r *sqliteCallRepo) ListEvents(ctx context.Context, callID string) ([]models.CallEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, call_id, type, user_id, data, timestamp
		 FROM call_events WHERE call_id = ? ORDER BY timestamp ASC`, callID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query call events: %w", err)
	}
	defer rows.Close()

	events := []models.CallEvent{}
	for rows.Next() {
		var ev models.CallEvent
		var data sql.NullString
		if err := rows.Scan(&ev.ID, &ev.CallID, &ev.Type, &ev.UserID, &data, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan call event: %w", err)
		}
		if data.Valid {
			s := data.String
			ev.Data = &s
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating call events: %w", err)
	}
	return events, nil
}

// loadParticipants, tek aramanın katılımcı ID'lerini döner.
func (r *sqliteCallRepo) loadParticipants(ctx context.Context, callID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM call_participants WHERE call_id = ?", callID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query call participants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return ids, nil
}

// loadParticipantsBatch, birden fazla aramanın katılımcılarını tek
// sorguda yükler.
func (r *sqliteCallRepo) loadParticipantsBatch(ctx context.Context, callIDs []string) (map[string][]string, error) {
	placeholders := ""
	args := make([]any, len(callIDs))
	for i, id := range callIDs {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT call_id, user_id FROM call_participants WHERE call_id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to batch query participants: %w", err)
	}
	defer rows.Close()

	byCall := make(map[string][]string)
	for rows.Next() {
		var callID, userID string
		if err := rows.Scan(&callID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		byCall[callID] = append(byCall[callID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return byCall, nil
}
