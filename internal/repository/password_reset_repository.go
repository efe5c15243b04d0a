package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PasswordReset is a pending reset link. Only the SHA-256 of the token sent
// by e-mail is stored.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type PasswordResetRepository interface {
	// Replace drops every pending reset of the user and stores reset.
	Replace(ctx context.Context, reset *PasswordReset) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*PasswordReset, error)
	Delete(ctx context.Context, id string) error
}

type pgPasswordResetRepository struct {
	db DBTX
}

func (r *pgPasswordResetRepository) Replace(ctx context.Context, reset *PasswordReset) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, reset.UserID); err != nil {
		return err
	}
	if reset.ID == "" {
		reset.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		reset.ID, reset.UserID, reset.TokenHash, reset.ExpiresAt,
	).Scan(&reset.CreatedAt)
}

func (r *pgPasswordResetRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*PasswordReset, error) {
	p := &PasswordReset{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM password_reset_tokens WHERE token_hash = $1`, tokenHash,
	).Scan(&p.ID, &p.UserID, &p.TokenHash, &p.ExpiresAt, &p.CreatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgPasswordResetRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE id = $1`, id)
	return err
}
