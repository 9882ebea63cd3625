package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"HaruChat/be/internal/db"
)

const userColumns = `id, username, email, password_hash, nickname, avatar, default_provider, default_model,
	temperature, gemini_api_key, openai_api_key, is_active, is_admin, created_at, updated_at, last_login_at`

type RepositoryImpl struct {
	db *db.HDb
}

func NewRepositoryImpl(db *db.HDb) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) getOne(ctx context.Context, where string, arg any) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, r.db.Rebind("SELECT "+userColumns+" FROM users WHERE "+where), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *RepositoryImpl) GetById(ctx context.Context, id int) (*User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *RepositoryImpl) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *RepositoryImpl) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *RepositoryImpl) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	query := r.db.Rebind(`INSERT INTO users
		(username, email, password_hash, nickname, avatar, default_provider, default_model,
		 temperature, is_active, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	return r.db.QueryRowxContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Nickname, user.Avatar,
		user.DefaultProvider, user.DefaultModel, user.Temperature, user.IsActive, user.IsAdmin,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
}

func (r *RepositoryImpl) Update(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`UPDATE users SET
		password_hash = ?, nickname = ?, avatar = ?, default_provider = ?, default_model = ?,
		temperature = ?, gemini_api_key = ?, openai_api_key = ?, is_active = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		user.PasswordHash, user.Nickname, user.Avatar, user.DefaultProvider, user.DefaultModel,
		user.Temperature, user.GeminiAPIKey, user.OpenAIAPIKey, user.IsActive, user.UpdatedAt,
		user.ID,
	)
	return affectedOrNotFound(res, err)
}

func (r *RepositoryImpl) UpdateLastLogin(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE users SET last_login_at = ? WHERE id = ?"), time.Now().UTC(), id)
	return affectedOrNotFound(res, err)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM users WHERE id = ?"), id)
	return affectedOrNotFound(res, err)
}

func (r *RepositoryImpl) Stats(ctx context.Context, id int) (*Stats, error) {
	var stats Stats
	query := r.db.Rebind(`SELECT
		(SELECT COUNT(*) FROM chat_sessions WHERE user_id = ?) AS session_count,
		(SELECT COUNT(*) FROM chat_messages m JOIN chat_sessions s ON s.id = m.session_id WHERE s.user_id = ?) AS message_count,
		(SELECT COALESCE(SUM(total_tokens), 0) FROM chat_sessions WHERE user_id = ?) AS total_tokens`)
	if err := r.db.GetContext(ctx, &stats, query, id, id, id); err != nil {
		return nil, err
	}
	return &stats, nil
}

func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
