package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
	"github.com/logit-app/rtc/ws"
)

// ─── Fake'ler ───

type fakeCallRepo struct {
	calls      map[string]*models.Call
	events     []models.CallEvent
	failCreate bool
	failUpdate bool
	failEvent  bool
}

func newFakeCallRepo() *fakeCallRepo {
	return &fakeCallRepo{calls: make(map[string]*models.Call)}
}

func (r *fakeCallRepo) Create(_ context.Context, call *models.Call) error {
	if r.failCreate {
		return errors.New("disk full")
	}
	stored := *call
	r.calls[call.ID] = &stored
	return nil
}

func (r *fakeCallRepo) GetByID(_ context.Context, id string) (*models.Call, error) {
	call, ok := r.calls[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	copied := *call
	return &copied, nil
}

func (r *fakeCallRepo) Update(_ context.Context, call *models.Call) error {
	if r.failUpdate {
		return errors.New("disk full")
	}
	if _, ok := r.calls[call.ID]; !ok {
		return pkg.ErrNotFound
	}
	stored := *call
	r.calls[call.ID] = &stored
	return nil
}

func (r *fakeCallRepo) History(_ context.Context, _, _ string, page, limit int) (*models.CallHistoryPage, error) {
	var calls []models.Call
	for _, c := range r.calls {
		calls = append(calls, *c)
	}
	return &models.CallHistoryPage{Calls: calls, Page: page, Limit: limit, TotalCount: len(calls)}, nil
}

func (r *fakeCallRepo) CreateEvent(_ context.Context, event *models.CallEvent) error {
	if r.failEvent {
		return errors.New("disk full")
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeCallRepo) ListEvents(_ context.Context, callID string) ([]models.CallEvent, error) {
	var out []models.CallEvent
	for _, e := range r.events {
		if e.CallID == callID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeChatChecker struct {
	members map[string]bool // "chatID:userID" → üye mi
}

func (f *fakeChatChecker) IsParticipant(_ context.Context, chatID, userID string) (bool, error) {
	return f.members[chatID+":"+userID], nil
}

func newLogFixture() (*fakeCallRepo, *fakePublisher, CallLogService) {
	repo := newFakeCallRepo()
	pub := newFakePublisher()
	checker := &fakeChatChecker{members: map[string]bool{
		"chat-1:alice": true,
		"chat-1:bob":   true,
	}}
	return repo, pub, NewCallLogService(repo, checker, pub)
}

// ─── Create ───

func TestCreateCallLogBroadcastsAfterPersist(t *testing.T) {
	repo, pub, svc := newLogFixture()

	call, err := svc.CreateCallLog(context.Background(), "alice", models.CreateCallLogRequest{
		CallID:       "c1",
		ChatID:       "chat-1",
		Type:         models.CallTypeAudio,
		Participants: []string{"alice", "bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusActive, call.Status)
	assert.False(t, call.StartedAt.IsZero())

	_, ok := repo.calls["c1"]
	assert.True(t, ok)

	started := pub.withOp(ws.OpCallStarted)
	require.Len(t, started, 2, "her katılımcının user room'una gitmeli")
	targets := []string{started[0].Target, started[1].Target}
	assert.ElementsMatch(t, []string{"alice", "bob"}, targets)
}

func TestCreateCallLogPersistFailureWithholdsBroadcast(t *testing.T) {
	repo, pub, svc := newLogFixture()
	repo.failCreate = true

	_, err := svc.CreateCallLog(context.Background(), "alice", models.CreateCallLogRequest{
		CallID:       "c1",
		ChatID:       "chat-1",
		Type:         models.CallTypeAudio,
		Participants: []string{"alice", "bob"},
	})
	require.Error(t, err)
	assert.Empty(t, pub.all(), "yazılamayan kayıt için event gitmemeli")
}

func TestCreateCallLogValidation(t *testing.T) {
	_, _, svc := newLogFixture()

	// Kaydı yazan katılımcı listesinde değil
	_, err := svc.CreateCallLog(context.Background(), "alice", models.CreateCallLogRequest{
		CallID:       "c1",
		ChatID:       "chat-1",
		Type:         models.CallTypeAudio,
		Participants: []string{"bob"},
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Sohbetin üyesi olmayan kullanıcı
	_, err = svc.CreateCallLog(context.Background(), "mallory", models.CreateCallLogRequest{
		CallID:       "c1",
		ChatID:       "chat-1",
		Type:         models.CallTypeAudio,
		Participants: []string{"mallory"},
	})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

// ─── Update ───

func TestUpdateCallLogEndsCall(t *testing.T) {
	repo, pub, svc := newLogFixture()

	_, err := svc.CreateCallLog(context.Background(), "alice", models.CreateCallLogRequest{
		CallID:       "c1",
		ChatID:       "chat-1",
		Type:         models.CallTypeVideo,
		Participants: []string{"alice", "bob"},
	})
	require.NoError(t, err)

	// Süre hesabı için başlangıcı geriye çek
	repo.calls["c1"].StartedAt = time.Now().Add(-90 * time.Second)
	pub.reset()

	ended := models.CallStatusEnded
	endedBy := "bob"
	call, err := svc.UpdateCallLog(context.Background(), "bob", "c1", models.UpdateCallLogRequest{
		Status:  &ended,
		EndedBy: &endedBy,
	})
	require.NoError(t, err)

	assert.Equal(t, models.CallStatusEnded, call.Status)
	require.NotNil(t, call.EndedAt)
	require.NotNil(t, call.Duration)
	assert.InDelta(t, 90, *call.Duration, 2)
	require.NotNil(t, call.EndedBy)
	assert.Equal(t, "bob", *call.EndedBy)

	updated := pub.withOp(ws.OpCallUpdated)
	require.Len(t, updated, 2)
	assert.ElementsMatch(t, []string{"alice", "bob"}, []string{updated[0].Target, updated[1].Target},
		"alıcılar DB'deki kayıttan gelmeli")
}

func TestUpdateCallLogImmutableOnceEnded(t *testing.T) {
	repo, pub, svc := newLogFixture()

	_, err := svc.CreateCallLog(context.Background(), "alice", models.CreateCallLogRequest{
		CallID:       "c1",
		ChatID:       "chat-1",
		Type:         models.CallTypeAudio,
		Participants: []string{"alice", "bob"},
	})
	require.NoError(t, err)

	ended := models.CallStatusEnded
	_, err = svc.UpdateCallLog(context.Background(), "alice", "c1", models.UpdateCallLogRequest{Status: &ended})
	require.NoError(t, err)

	firstEndedAt := *repo.calls["c1"].EndedAt
	pub.reset()

	// İkinci kapatma (çift taraflı end yarışı): kayıt değişmez, event gitmez
	missed := models.CallStatusMissed
	_, err = svc.UpdateCallLog(context.Background(), "bob", "c1", models.UpdateCallLogRequest{Status: &missed})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
	assert.Equal(t, models.CallStatusEnded, repo.calls["c1"].Status)
	assert.Equal(t, firstEndedAt, *repo.calls["c1"].EndedAt)
	assert.Empty(t, pub.all())
}

func TestUpdateCallLogNonParticipantForbidden(t *testing.T) {
	_, _, svc := newLogFixture()

	_, err := svc.CreateCallLog(context.Background(), "alice", models.CreateCallLogRequest{
		CallID:       "c1",
		ChatID:       "chat-1",
		Type:         models.CallTypeAudio,
		Participants: []string{"alice", "bob"},
	})
	require.NoError(t, err)

	ended := models.CallStatusEnded
	_, err = svc.UpdateCallLog(context.Background(), "mallory", "c1", models.UpdateCallLogRequest{Status: &ended})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

// ─── Event Audit ───

func TestEmitCallEventPersistsThenRelays(t *testing.T) {
	repo, pub, svc := newLogFixture()

	err := svc.EmitCallEvent(context.Background(), "alice", models.CallEventRequest{
		CallID: "c1",
		ChatID: "chat-1",
		Type:   models.CallEventMute,
	})
	require.NoError(t, err)

	require.Len(t, repo.events, 1)
	assert.Equal(t, "alice", repo.events[0].UserID)
	assert.False(t, repo.events[0].Timestamp.IsZero())

	relayed := pub.withOp(ws.OpCallEvent)
	require.Len(t, relayed, 1)
	assert.Equal(t, "chat-1", relayed[0].Target)
}

func TestEmitCallEventRejectsUnknownType(t *testing.T) {
	repo, pub, svc := newLogFixture()

	err := svc.EmitCallEvent(context.Background(), "alice", models.CallEventRequest{
		CallID: "c1",
		ChatID: "chat-1",
		Type:   "reboot",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
	assert.Empty(t, repo.events, "bilinmeyen tür audit tablosuna yazılmamalı")
	assert.Empty(t, pub.all())
}

func TestEmitCallEventPersistFailureWithholdsRelay(t *testing.T) {
	repo, pub, svc := newLogFixture()
	repo.failEvent = true

	err := svc.EmitCallEvent(context.Background(), "alice", models.CallEventRequest{
		CallID: "c1",
		ChatID: "chat-1",
		Type:   models.CallEventJoin,
	})
	require.Error(t, err)
	assert.Empty(t, pub.all())
}
