package db

import (
	"context"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSqliteHDb(t *testing.T) *HDb {
	t.Helper()
	hdb, err := NewHDb("sqlite3", filepath.Join(t.TempDir(), "haru.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = hdb.Close() })
	return hdb
}

func TestNewHDbUnknownDriver(t *testing.T) {
	_, err := NewHDb("oracle", "whatever")
	assert.ErrorContains(t, err, `no schema registered for driver "oracle"`)
}

func TestLoadDDLTableOrder(t *testing.T) {
	for driver, loader := range ddlLoaders {
		t.Run(driver, func(t *testing.T) {
			var tables []string
			for _, stmt := range loader.LoadDDL() {
				for _, name := range []string{"users", "chat_sessions", "chat_messages"} {
					if containsCreateTable(stmt, name) {
						tables = append(tables, name)
					}
				}
			}
			assert.Equal(t, []string{"users", "chat_sessions", "chat_messages"}, tables)
		})
	}
}

func containsCreateTable(stmt, table string) bool {
	prefix := "CREATE TABLE IF NOT EXISTS " + table + " "
	return len(stmt) >= len(prefix) && stmt[:len(prefix)] == prefix
}

func TestMigrateIsIdempotent(t *testing.T) {
	hdb := newSqliteHDb(t)
	ctx := context.Background()

	require.NoError(t, hdb.Migrate(ctx))
	require.NoError(t, hdb.Migrate(ctx))

	var tables []string
	require.NoError(t, hdb.Select(&tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`))
	assert.Equal(t, []string{"chat_messages", "chat_sessions", "users"}, tables)
}

func TestMigrateCascadesDeletes(t *testing.T) {
	hdb := newSqliteHDb(t)
	ctx := context.Background()
	require.NoError(t, hdb.Migrate(ctx))

	hdb.MustExec(`INSERT INTO users (username, email, password_hash) VALUES ('haru', 'haru@example.com', 'x')`)
	hdb.MustExec(`INSERT INTO chat_sessions (user_id) VALUES (1)`)
	hdb.MustExec(`INSERT INTO chat_messages (session_id, role, content) VALUES (1, 'user', 'hi')`)

	var title string
	require.NoError(t, hdb.Get(&title, `SELECT title FROM chat_sessions WHERE id = 1`))
	assert.Equal(t, "New chat", title)

	hdb.MustExec(`DELETE FROM users WHERE id = 1`)

	var sessions, messages int
	require.NoError(t, hdb.Get(&sessions, `SELECT COUNT(*) FROM chat_sessions`))
	require.NoError(t, hdb.Get(&messages, `SELECT COUNT(*) FROM chat_messages`))
	assert.Zero(t, sessions)
	assert.Zero(t, messages)
}
