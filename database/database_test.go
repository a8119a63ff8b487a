package database

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Migrations() SQL dosyalarını kök seviyede göstermeli — embed root'u
// geçilirse ReadDir(".") yalnızca migrations/ klasörünü görür ve hiçbir
// migration çalışmaz.
func TestMigrationsFSListsSQLFilesAtRoot(t *testing.T) {
	entries, err := fs.ReadDir(Migrations(), ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		assert.False(t, entry.IsDir())
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"),
			"unexpected non-sql entry %q", entry.Name())
	}
}

func TestNewAppliesEmbeddedMigrations(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"), Migrations())
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Conn.Query(
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	tables := make(map[string]bool)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables[name] = true
	}
	require.NoError(t, rows.Err())

	for _, want := range []string{
		"users", "chats", "chat_participants",
		"calls", "call_participants", "call_events",
		"notifications", "schema_migrations",
	} {
		assert.True(t, tables[want], "missing table %s", want)
	}
}

// İkinci açılış uygulanmış migration'ları atlamalı.
func TestNewIsIdempotentAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := New(path, Migrations())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path, Migrations())
	require.NoError(t, err)
	defer db.Close()

	var applied int
	require.NoError(t, db.Conn.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations").Scan(&applied))

	entries, err := fs.ReadDir(Migrations(), ".")
	require.NoError(t, err)
	assert.Equal(t, len(entries), applied)
}
