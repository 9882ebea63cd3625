package db

import (
	"github.com/jmoiron/sqlx"
)

type PgDDLLoader struct {
}

func init() {
	ddlLoaders["postgres"] = &PgDDLLoader{} // Pg driver isn't have constant for driver name. So we also hardcode here
	ddlLoaders["sqlite3"] = &SqliteDDLLoader{}
}

func (d *PgDDLLoader) Configure(*sqlx.DB) {}

func (d *PgDDLLoader) LoadDDL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id               SERIAL PRIMARY KEY,
			username         VARCHAR(50)  NOT NULL UNIQUE,
			email            VARCHAR(100) NOT NULL UNIQUE,
			password_hash    VARCHAR(255) NOT NULL,
			nickname         VARCHAR(50),
			avatar           VARCHAR(255),
			default_provider VARCHAR(20)  NOT NULL DEFAULT 'gemini',
			default_model    VARCHAR(50)  NOT NULL DEFAULT 'gemini-2.5-flash',
			temperature      DOUBLE PRECISION NOT NULL DEFAULT 0.7,
			gemini_api_key   VARCHAR(255),
			openai_api_key   VARCHAR(255),
			is_active        BOOLEAN      NOT NULL DEFAULT TRUE,
			is_admin         BOOLEAN      NOT NULL DEFAULT FALSE,
			created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			last_login_at    TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id            SERIAL PRIMARY KEY,
			user_id       INTEGER      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title         VARCHAR(200) NOT NULL DEFAULT 'New chat',
			provider      VARCHAR(20)  NOT NULL DEFAULT 'gemini',
			model         VARCHAR(50)  NOT NULL DEFAULT 'gemini-2.5-flash',
			message_count INTEGER      NOT NULL DEFAULT 0,
			total_tokens  INTEGER      NOT NULL DEFAULT 0,
			is_archived   BOOLEAN      NOT NULL DEFAULT FALSE,
			is_pinned     BOOLEAN      NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_sessions_user_id ON chat_sessions(user_id)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id                SERIAL PRIMARY KEY,
			session_id        INTEGER     NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
			role              VARCHAR(20) NOT NULL,
			content           TEXT        NOT NULL,
			thinking_content  TEXT,
			prompt_tokens     INTEGER     NOT NULL DEFAULT 0,
			completion_tokens INTEGER     NOT NULL DEFAULT 0,
			total_tokens      INTEGER     NOT NULL DEFAULT 0,
			model             VARCHAR(50),
			provider          VARCHAR(20),
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id ON chat_messages(session_id)`,
	}
}

// SqliteDDLLoader serves local development and tests. Foreign keys are a
// per-connection pragma in SQLite, so the pool is pinned to one connection.
type SqliteDDLLoader struct {
}

func (d *SqliteDDLLoader) Configure(db *sqlx.DB) {
	db.SetMaxOpenConns(1)
}

func (d *SqliteDDLLoader) LoadDDL() []string {
	return []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS users (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			username         VARCHAR(50)  NOT NULL UNIQUE,
			email            VARCHAR(100) NOT NULL UNIQUE,
			password_hash    VARCHAR(255) NOT NULL,
			nickname         VARCHAR(50),
			avatar           VARCHAR(255),
			default_provider VARCHAR(20)  NOT NULL DEFAULT 'gemini',
			default_model    VARCHAR(50)  NOT NULL DEFAULT 'gemini-2.5-flash',
			temperature      REAL         NOT NULL DEFAULT 0.7,
			gemini_api_key   VARCHAR(255),
			openai_api_key   VARCHAR(255),
			is_active        BOOLEAN      NOT NULL DEFAULT 1,
			is_admin         BOOLEAN      NOT NULL DEFAULT 0,
			created_at       TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at    TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       INTEGER      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title         VARCHAR(200) NOT NULL DEFAULT 'New chat',
			provider      VARCHAR(20)  NOT NULL DEFAULT 'gemini',
			model         VARCHAR(50)  NOT NULL DEFAULT 'gemini-2.5-flash',
			message_count INTEGER      NOT NULL DEFAULT 0,
			total_tokens  INTEGER      NOT NULL DEFAULT 0,
			is_archived   BOOLEAN      NOT NULL DEFAULT 0,
			is_pinned     BOOLEAN      NOT NULL DEFAULT 0,
			created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_sessions_user_id ON chat_sessions(user_id)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id        INTEGER     NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
			role              VARCHAR(20) NOT NULL,
			content           TEXT        NOT NULL,
			thinking_content  TEXT,
			prompt_tokens     INTEGER     NOT NULL DEFAULT 0,
			completion_tokens INTEGER     NOT NULL DEFAULT 0,
			total_tokens      INTEGER     NOT NULL DEFAULT 0,
			model             VARCHAR(50),
			provider          VARCHAR(20),
			created_at        TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id ON chat_messages(session_id)`,
	}
}
