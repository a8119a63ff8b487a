package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logit-app/rtc/database"
	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
)

// setupDB, geçici dosyada gerçek bir SQLite açar ve temel satırları seed'ler.
// users ve chats normalde ana servis tarafından yazılır; testte elle eklenir.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	seed := []string{
		`INSERT INTO users (id, username) VALUES ('alice', 'alice'), ('bob', 'bob')`,
		`INSERT INTO users (id, username, display_name) VALUES ('carol', 'carol', 'Carol C')`,
		`INSERT INTO chats (id, type) VALUES ('chat-1', 'direct'), ('chat-2', 'group')`,
		`INSERT INTO chat_participants (chat_id, user_id) VALUES
			('chat-1', 'alice'), ('chat-1', 'bob'),
			('chat-2', 'alice'), ('chat-2', 'carol')`,
	}
	for _, stmt := range seed {
		_, err := db.Conn.Exec(stmt)
		require.NoError(t, err)
	}
	return db.Conn
}

func newCall(id, chatID string, participants []string, startedAt time.Time) *models.Call {
	return &models.Call{
		ID:           id,
		Type:         models.CallTypeAudio,
		ChatID:       chatID,
		Participants: participants,
		StartedAt:    startedAt,
		Status:       models.CallStatusActive,
	}
}

func TestCallRepoCreateAndGet(t *testing.T) {
	repo := NewSQLiteCallRepo(setupDB(t))
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Create(ctx, newCall("c1", "chat-1", []string{"alice", "bob"}, started)))

	call, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CallTypeAudio, call.Type)
	assert.Equal(t, "chat-1", call.ChatID)
	assert.Equal(t, models.CallStatusActive, call.Status)
	assert.ElementsMatch(t, []string{"alice", "bob"}, call.Participants)
	assert.Nil(t, call.EndedAt)
	assert.Nil(t, call.Duration)
}

func TestCallRepoGetNotFound(t *testing.T) {
	repo := NewSQLiteCallRepo(setupDB(t))

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestCallRepoUpdate(t *testing.T) {
	repo := NewSQLiteCallRepo(setupDB(t))
	ctx := context.Background()

	started := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, newCall("c1", "chat-1", []string{"alice", "bob"}, started)))

	call, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	endedBy := "bob"
	duration := int64(60)
	call.Status = models.CallStatusEnded
	call.EndedAt = &now
	call.EndedBy = &endedBy
	call.Duration = &duration
	require.NoError(t, repo.Update(ctx, call))

	stored, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusEnded, stored.Status)
	require.NotNil(t, stored.EndedAt)
	require.NotNil(t, stored.EndedBy)
	assert.Equal(t, "bob", *stored.EndedBy)
	require.NotNil(t, stored.Duration)
	assert.Equal(t, int64(60), *stored.Duration)

	// Olmayan kayıt için ErrNotFound
	ghost := newCall("ghost", "chat-1", nil, started)
	assert.ErrorIs(t, repo.Update(ctx, ghost), pkg.ErrNotFound)
}

func TestCallRepoHistoryFilterAndPagination(t *testing.T) {
	repo := NewSQLiteCallRepo(setupDB(t))
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, newCall("c1", "chat-1", []string{"alice", "bob"}, base)))
	require.NoError(t, repo.Create(ctx, newCall("c2", "chat-1", []string{"alice", "bob"}, base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, newCall("c3", "chat-2", []string{"alice", "carol"}, base.Add(2*time.Minute))))

	// Tüm sohbetler: alice üç aramada da var
	page, err := repo.History(ctx, "alice", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Len(t, page.Calls, 2)

	second, err := repo.History(ctx, "alice", "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, second.Calls, 1)

	// Sohbet filtresi
	filtered, err := repo.History(ctx, "alice", "chat-2", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.TotalCount)
	require.Len(t, filtered.Calls, 1)
	assert.Equal(t, "c3", filtered.Calls[0].ID)
	assert.ElementsMatch(t, []string{"alice", "carol"}, filtered.Calls[0].Participants)

	// Bob chat-2'de hiç aramada yok
	empty, err := repo.History(ctx, "bob", "chat-2", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalCount)
	assert.Empty(t, empty.Calls)
}

func TestCallRepoEvents(t *testing.T) {
	repo := NewSQLiteCallRepo(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCall("c1", "chat-1", []string{"alice", "bob"}, time.Now().UTC())))

	detail := `{"device":"headset"}`
	events := []*models.CallEvent{
		{ID: "e1", CallID: "c1", Type: models.CallEventStart, UserID: "alice", Timestamp: time.Now().UTC().Add(-2 * time.Second)},
		{ID: "e2", CallID: "c1", Type: models.CallEventMute, UserID: "bob", Data: &detail, Timestamp: time.Now().UTC()},
	}
	for _, ev := range events {
		require.NoError(t, repo.CreateEvent(ctx, ev))
	}

	stored, err := repo.ListEvents(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "e1", stored[0].ID, "event'ler zaman sıralı gelmeli")
	assert.Equal(t, models.CallEventMute, stored[1].Type)
	require.NotNil(t, stored[1].Data)
	assert.Equal(t, detail, *stored[1].Data)
}

func TestChatRepoParticipants(t *testing.T) {
	conn := setupDB(t)
	repo := NewSQLiteChatRepo(conn)
	ctx := context.Background()

	ok, err := repo.IsParticipant(ctx, "chat-1", "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsParticipant(ctx, "chat-1", "carol")
	require.NoError(t, err)
	assert.False(t, ok)

	participants, err := repo.GetParticipants(ctx, "chat-2")
	require.NoError(t, err)
	require.Len(t, participants, 2)

	// display_name JOIN ile gelmeli
	for _, p := range participants {
		if p.UserID == "carol" {
			require.NotNil(t, p.DisplayName)
			assert.Equal(t, "Carol C", *p.DisplayName)
		}
	}
}

func TestNotificationRepoRoundtrip(t *testing.T) {
	repo := NewSQLiteNotificationRepo(setupDB(t))
	ctx := context.Background()

	chatID := "chat-1"
	callID := "c1"
	require.NoError(t, repo.Create(ctx, &models.Notification{
		ID:      "n1",
		UserID:  "bob",
		Type:    models.NotificationCallMissed,
		Message: "alice sizi aradı",
		ChatID:  &chatID,
		CallID:  &callID,
	}))

	list, err := repo.ListByUser(ctx, "bob", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationCallMissed, list[0].Type)
	assert.False(t, list[0].Read)

	// Sadece sahibi okundu işaretleyebilir
	assert.ErrorIs(t, repo.MarkRead(ctx, "n1", "alice"), pkg.ErrNotFound)
	require.NoError(t, repo.MarkRead(ctx, "n1", "bob"))

	list, err = repo.ListByUser(ctx, "bob", 10)
	require.NoError(t, err)
	assert.True(t, list[0].Read)
}
