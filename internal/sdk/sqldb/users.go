package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

const userColumns = `
	id,
	username,
	email,
	password,
	first_name,
	last_name,
	is_active,
	is_staff,
	is_superuser,
	date_joined,
	last_login
`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	var lastLogin sql.NullTime
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Password,
		&u.FirstName,
		&u.LastName,
		&u.IsActive,
		&u.IsStaff,
		&u.IsSuperuser,
		&u.DateJoined,
		&lastLogin,
	)
	if err != nil {
		return models.User{}, err
	}
	u.LastLogin = TimePtr(lastLogin)
	return u, nil
}

func (s *service) getUserWhere(ctx context.Context, clause string, arg any) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + clause

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *service) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	return s.getUserWhere(ctx, `id = $1`, userID)
}

// GetUserByUsername retrieves a user by their exact username.
func (s *service) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getUserWhere(ctx, `username = $1`, username)
}

// GetUserByUsernameFold retrieves a user by username, case-insensitively.
func (s *service) GetUserByUsernameFold(ctx context.Context, username string) (models.User, error) {
	return s.getUserWhere(ctx, `LOWER(username) = LOWER($1)`, username)
}

// GetUserByEmailFold retrieves a user by email, case-insensitively.
func (s *service) GetUserByEmailFold(ctx context.Context, email string) (models.User, error) {
	return s.getUserWhere(ctx, `LOWER(email) = LOWER($1)`, email)
}

// CreateUser inserts a new user.
func (s *service) CreateUser(ctx context.Context, nu models.NewUser) (models.User, error) {
	query := `
		INSERT INTO users (id, username, email, password, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		nu.Username,
		nu.Email,
		nu.Password,
		nu.FirstName,
		nu.LastName,
	))
	if err != nil {
		if terr := translateConstraint(err); terr != nil {
			return models.User{}, terr
		}
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// ListUsers retrieves all users, newest first.
func (s *service) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY date_joined DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// UpdateUserAccount applies the allow-listed account patch.
func (s *service) UpdateUserAccount(ctx context.Context, userID string, patch models.AccountPatch) (models.User, error) {
	query := `
		UPDATE users SET
			username   = COALESCE($2, username),
			email      = COALESCE($3, email),
			first_name = COALESCE($4, first_name),
			last_name  = COALESCE($5, last_name)
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		userID,
		NullString(patch.Username),
		NullString(patch.Email),
		NullString(patch.FirstName),
		NullString(patch.LastName),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		if terr := translateConstraint(err); terr != nil {
			return models.User{}, terr
		}
		return models.User{}, fmt.Errorf("updating user account: %w", err)
	}
	return user, nil
}

// UpdateUserPassword replaces the stored password hash.
func (s *service) UpdateUserPassword(ctx context.Context, userID string, hash []byte) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET password = $2 WHERE id = $1`, userID, hash)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
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

// SetUserActive flips the active flag and returns the updated user.
func (s *service) SetUserActive(ctx context.Context, userID string, active bool) (models.User, error) {
	query := `UPDATE users SET is_active = $2 WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query, userID, active))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("setting user active: %w", err)
	}
	return user, nil
}

// TouchLastLogin stamps the user's last login time.
func (s *service) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("touching last login: %w", err)
	}
	return nil
}

// UsernameTaken reports whether another user already holds the username,
// case-insensitively.
func (s *service) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username) = LOWER($1) AND id <> $2)`,
		username, excludeUserID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("checking username: %w", err)
	}
	return taken, nil
}

// EmailTaken reports whether another user already holds the email,
// case-insensitively.
func (s *service) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2)`,
		email, excludeUserID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return taken, nil
}
