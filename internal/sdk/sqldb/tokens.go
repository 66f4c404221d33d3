package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

// ---------------------------------------------
// Auth Token Operations
// ---------------------------------------------

// GetOrCreateAuthToken returns the user's token, inserting the candidate key
// only when no row exists yet. The upsert makes concurrent logins converge on
// a single key instead of racing the lookup.
func (s *service) GetOrCreateAuthToken(ctx context.Context, userID, key string) (models.AuthToken, error) {
	const query = `
		INSERT INTO auth_tokens (key, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING key, user_id, created_at
	`

	var t models.AuthToken
	err := s.db.QueryRowContext(ctx, query, key, userID).Scan(&t.Key, &t.UserID, &t.CreatedAt)
	if err != nil {
		if terr := translateConstraint(err); terr != nil {
			return models.AuthToken{}, terr
		}
		return models.AuthToken{}, fmt.Errorf("getting or creating auth token: %w", err)
	}
	return t, nil
}

// GetAuthTokenByKey resolves a bearer key to its token row.
func (s *service) GetAuthTokenByKey(ctx context.Context, key string) (models.AuthToken, error) {
	const query = `SELECT key, user_id, created_at FROM auth_tokens WHERE key = $1`

	var t models.AuthToken
	err := s.db.QueryRowContext(ctx, query, key).Scan(&t.Key, &t.UserID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AuthToken{}, ErrDBNotFound
		}
		return models.AuthToken{}, fmt.Errorf("getting auth token: %w", err)
	}
	return t, nil
}

// DeleteAuthTokenForUser revokes the user's bearer token.
func (s *service) DeleteAuthTokenForUser(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting auth token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDBNotFound
	}
	return nil
}

// ---------------------------------------------
// Session Operations
// ---------------------------------------------

// CreateSession inserts a new browser session.
func (s *service) CreateSession(ctx context.Context, ns models.NewSession) (models.Session, error) {
	const query = `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, created_at, expires_at
	`

	var sess models.Session
	err := s.db.QueryRowContext(ctx, query, ns.ID, ns.UserID, ns.ExpiresAt).
		Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if terr := translateConstraint(err); terr != nil {
			return models.Session{}, terr
		}
		return models.Session{}, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// GetSession retrieves a session by ID.
func (s *service) GetSession(ctx context.Context, sessionID string) (models.Session, error) {
	const query = `SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1`

	var sess models.Session
	err := s.db.QueryRowContext(ctx, query, sessionID).
		Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrDBNotFound
		}
		return models.Session{}, fmt.Errorf("getting session: %w", err)
	}
	return sess, nil
}

// DeleteSession removes a session.
func (s *service) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// ---------------------------------------------
// Password Reset Operations
// ---------------------------------------------

// CreatePasswordResetToken inserts a new reset token.
func (s *service) CreatePasswordResetToken(ctx context.Context, nt models.NewPasswordResetToken) (models.PasswordResetToken, error) {
	const query = `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, token, expires_at, used_at, created_at
	`

	var t models.PasswordResetToken
	var usedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, uuid.NewString(), nt.UserID, nt.Token, nt.ExpiresAt).
		Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if err != nil {
		if terr := translateConstraint(err); terr != nil {
			return models.PasswordResetToken{}, terr
		}
		return models.PasswordResetToken{}, fmt.Errorf("creating reset token: %w", err)
	}
	t.UsedAt = TimePtr(usedAt)
	return t, nil
}

// GetPasswordResetToken retrieves a reset token by its value.
func (s *service) GetPasswordResetToken(ctx context.Context, token string) (models.PasswordResetToken, error) {
	const query = `
		SELECT id, user_id, token, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`

	var t models.PasswordResetToken
	var usedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, token).
		Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PasswordResetToken{}, ErrDBNotFound
		}
		return models.PasswordResetToken{}, fmt.Errorf("getting reset token: %w", err)
	}
	t.UsedAt = TimePtr(usedAt)
	return t, nil
}

// MarkPasswordResetTokenUsed stamps a reset token as consumed.
func (s *service) MarkPasswordResetTokenUsed(ctx context.Context, tokenID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used_at = CURRENT_TIMESTAMP WHERE id = $1`, tokenID)
	if err != nil {
		return fmt.Errorf("marking reset token used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDBNotFound
	}
	return nil
}
