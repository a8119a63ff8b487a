package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logit-app/rtc/ws"
)

func TestPresenceRegisterBroadcastsOnlineOnce(t *testing.T) {
	pub := newFakePublisher()
	presence := NewPresenceService(pub)

	presence.Register("alice", "conn-1")

	events := pub.withOp(ws.OpUserOnline)
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].Exclude, "kullanıcı kendi online event'ini almamalı")

	// Reconnect: yeni bağlantı kaydı yeni broadcast üretmez
	presence.Register("alice", "conn-2")
	assert.Len(t, pub.withOp(ws.OpUserOnline), 1)
	assert.True(t, presence.IsOnline("alice"))
}

func TestPresenceNewestConnectionWins(t *testing.T) {
	pub := newFakePublisher()
	presence := NewPresenceService(pub)

	presence.Register("alice", "conn-1")
	presence.Register("alice", "conn-2")

	connID, ok := presence.ConnID("alice")
	require.True(t, ok)
	assert.Equal(t, "conn-2", connID)

	// Eski bağlantının geç gelen kopuşu kullanıcıyı offline yapmamalı
	presence.Unregister("alice", "conn-1")
	assert.True(t, presence.IsOnline("alice"))
	assert.Empty(t, pub.withOp(ws.OpUserOffline))

	// Geçerli bağlantının kopuşu offline yapar
	presence.Unregister("alice", "conn-2")
	assert.False(t, presence.IsOnline("alice"))

	offline := pub.withOp(ws.OpUserOffline)
	require.Len(t, offline, 1)
	assert.Equal(t, "alice", offline[0].Exclude)
}

func TestPresenceUnregisterUnknownIsNoop(t *testing.T) {
	pub := newFakePublisher()
	presence := NewPresenceService(pub)

	presence.Unregister("ghost", "conn-x")
	assert.Empty(t, pub.all())
}

func TestPresenceBulkStatus(t *testing.T) {
	pub := newFakePublisher()
	presence := NewPresenceService(pub)

	presence.Register("alice", "conn-1")
	presence.Register("bob", "conn-2")

	statuses := presence.BulkStatus([]string{"alice", "bob", "carol"})
	assert.Equal(t, map[string]bool{
		"alice": true,
		"bob":   true,
		"carol": false,
	}, statuses)

	assert.ElementsMatch(t, []string{"alice", "bob"}, presence.OnlineUserIDs())
}
