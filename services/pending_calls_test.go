package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingCallTableAddGetDelete(t *testing.T) {
	table := NewPendingCallTable()

	table.Add(PendingCall{CallID: "c1", CallerID: "alice", CalleeID: "bob", ChatID: "chat-1", Type: "audio"})

	call, ok := table.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", call.CallerID)
	assert.False(t, call.CreatedAt.IsZero())

	deleted, ok := table.Delete("c1")
	require.True(t, ok)
	assert.Equal(t, "bob", deleted.CalleeID)

	_, ok = table.Get("c1")
	assert.False(t, ok)

	_, ok = table.Delete("c1")
	assert.False(t, ok)
}

func TestPendingCallTableAcceptGuard(t *testing.T) {
	table := NewPendingCallTable()

	require.True(t, table.BeginAccept("c1"))
	assert.False(t, table.BeginAccept("c1"), "işleme devam ederken ikinci accept kilidi alınamamalı")

	table.EndAccept("c1")
	assert.True(t, table.BeginAccept("c1"), "kilit bırakılınca tekrar alınabilmeli")
}

func TestPendingCallTableDeleteByCaller(t *testing.T) {
	table := NewPendingCallTable()

	table.Add(PendingCall{CallID: "c1", CallerID: "alice", CalleeID: "bob"})
	table.Add(PendingCall{CallID: "c2", CallerID: "alice", CalleeID: "carol"})
	table.Add(PendingCall{CallID: "c3", CallerID: "bob", CalleeID: "alice"})

	removed := table.DeleteByCaller("alice")
	assert.Len(t, removed, 2)

	// Alice'in callee olduğu arama yerinde kalmalı
	_, ok := table.Get("c3")
	assert.True(t, ok)
}
