package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"HaruChat/be/internal/db"
)

const (
	sessionColumns = `id, user_id, title, provider, model, message_count, total_tokens,
		is_archived, is_pinned, created_at, updated_at`
	messageColumns = `id, session_id, role, content, thinking_content, prompt_tokens,
		completion_tokens, total_tokens, model, provider, created_at`
)

type RepositoryImpl struct {
	db *db.HDb
}

func NewRepositoryImpl(db *db.HDb) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) List(ctx context.Context, userID int, includeArchived bool, limit, offset int) ([]Session, error) {
	query := "SELECT " + sessionColumns + " FROM chat_sessions WHERE user_id = ?"
	if !includeArchived {
		query += " AND is_archived = ?"
	}
	query += " ORDER BY is_pinned DESC, updated_at DESC, id DESC LIMIT ? OFFSET ?"

	args := []any{userID}
	if !includeArchived {
		args = append(args, false)
	}
	args = append(args, limit, offset)

	sessions := []Session{}
	err := r.db.SelectContext(ctx, &sessions, r.db.Rebind(query), args...)
	return sessions, err
}

// Search matches titles case-insensitively, archived sessions included.
func (r *RepositoryImpl) Search(ctx context.Context, userID int, query string, limit int) ([]Session, error) {
	sessions := []Session{}
	err := r.db.SelectContext(ctx, &sessions, r.db.Rebind(
		"SELECT "+sessionColumns+` FROM chat_sessions
		WHERE user_id = ? AND LOWER(title) LIKE ?
		ORDER BY updated_at DESC, id DESC LIMIT ?`),
		userID, "%"+strings.ToLower(query)+"%", limit,
	)
	return sessions, err
}

func (r *RepositoryImpl) Get(ctx context.Context, userID, sessionID int) (*Session, error) {
	var s Session
	err := r.db.GetContext(ctx, &s, r.db.Rebind(
		"SELECT "+sessionColumns+" FROM chat_sessions WHERE id = ? AND user_id = ?"), sessionID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, s *Session) error {
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	return r.db.QueryRowxContext(ctx, r.db.Rebind(`INSERT INTO chat_sessions
		(user_id, title, provider, model, message_count, total_tokens, is_archived, is_pinned, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, 0, ?, ?, ?, ?)
		RETURNING id`),
		s.UserID, s.Title, s.Provider, s.Model, s.IsArchived, s.IsPinned, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
}

func (r *RepositoryImpl) Update(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE chat_sessions
		SET title = ?, is_archived = ?, is_pinned = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`),
		s.Title, s.IsArchived, s.IsPinned, s.UpdatedAt, s.ID, s.UserID,
	)
	return affectedOr(res, err, ErrSessionNotFound)
}

func (r *RepositoryImpl) Delete(ctx context.Context, userID, sessionID int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM chat_sessions WHERE id = ? AND user_id = ?"), sessionID, userID)
	return affectedOr(res, err, ErrSessionNotFound)
}

func (r *RepositoryImpl) Messages(ctx context.Context, sessionID, limit, offset int) ([]Message, error) {
	messages := []Message{}
	err := r.db.SelectContext(ctx, &messages, r.db.Rebind(
		"SELECT "+messageColumns+" FROM chat_messages WHERE session_id = ? ORDER BY created_at, id LIMIT ? OFFSET ?"),
		sessionID, limit, offset,
	)
	return messages, err
}

func (r *RepositoryImpl) AllMessages(ctx context.Context, sessionID int) ([]Message, error) {
	messages := []Message{}
	err := r.db.SelectContext(ctx, &messages, r.db.Rebind(
		"SELECT "+messageColumns+" FROM chat_messages WHERE session_id = ? ORDER BY created_at, id"),
		sessionID,
	)
	return messages, err
}

// CreateMessage stores the message and bumps the session counters in one
// transaction.
func (r *RepositoryImpl) CreateMessage(ctx context.Context, m *Message) error {
	m.CreatedAt = time.Now().UTC()

	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, tx.Rebind(`INSERT INTO chat_messages
			(session_id, role, content, thinking_content, prompt_tokens, completion_tokens,
			 total_tokens, model, provider, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`),
			m.SessionID, m.Role, m.Content, m.ThinkingContent, m.PromptTokens, m.CompletionTokens,
			m.TotalTokens, m.Model, m.Provider, m.CreatedAt,
		).Scan(&m.ID)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE chat_sessions
			SET message_count = message_count + 1, total_tokens = total_tokens + ?, updated_at = ?
			WHERE id = ?`),
			m.TotalTokens, m.CreatedAt, m.SessionID,
		)
		return affectedOr(res, err, ErrSessionNotFound)
	})
}

func (r *RepositoryImpl) DeleteMessage(ctx context.Context, sessionID, messageID int) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		var tokens int
		err := tx.GetContext(ctx, &tokens, tx.Rebind(
			"SELECT total_tokens FROM chat_messages WHERE id = ? AND session_id = ?"), messageID, sessionID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMessageNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE chat_sessions
			SET message_count = message_count - 1, total_tokens = total_tokens - ?
			WHERE id = ?`), tokens, sessionID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, tx.Rebind("DELETE FROM chat_messages WHERE id = ?"), messageID)
		return err
	})
}

func (r *RepositoryImpl) ClearMessages(ctx context.Context, sessionID int) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM chat_messages WHERE session_id = ?"), sessionID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE chat_sessions
			SET message_count = 0, total_tokens = 0, updated_at = ?
			WHERE id = ?`), time.Now().UTC(), sessionID)
		return affectedOr(res, err, ErrSessionNotFound)
	})
}

func (r *RepositoryImpl) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func affectedOr(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
