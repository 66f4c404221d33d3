package app

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
)

// errCredentials is the single failure outcome of credential resolution.
// Callers must not distinguish "no such account" from "bad password".
var errCredentials = errors.New("credential resolution failed")

// resolveCredentials locates the account for a login identifier and verifies
// the password. The identifier may be a username or, when it contains "@",
// an email address; both lookups are case-insensitive.
//
// Resolution order:
//  1. exact username
//  2. case-insensitive username
//  3. case-insensitive email, when the identifier contains "@"
//  4. a last-chance lookup that verifies the trimmed password against the
//     stored hash and checks the active flag directly
//
// Step 4 re-checks an account steps 1-3 may already have rejected; it exists
// for passwords submitted with surrounding whitespace. A password that trims
// to empty never authenticates there.
func (a *App) resolveCredentials(ctx context.Context, identifier, password string) (models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return models.User{}, errCredentials
	}

	if user, err := a.db.GetUserByUsername(ctx, identifier); err == nil {
		if authenticate(user, password) {
			return user, nil
		}
	} else if !errors.Is(err, sqldb.ErrDBNotFound) {
		return models.User{}, err
	}

	if user, err := a.db.GetUserByUsernameFold(ctx, identifier); err == nil {
		if authenticate(user, password) {
			return user, nil
		}
	} else if !errors.Is(err, sqldb.ErrDBNotFound) {
		return models.User{}, err
	}

	if strings.Contains(identifier, "@") {
		if user, err := a.db.GetUserByEmailFold(ctx, identifier); err == nil {
			if authenticate(user, password) {
				return user, nil
			}
		} else if !errors.Is(err, sqldb.ErrDBNotFound) {
			return models.User{}, err
		}
	}

	return a.fallbackResolve(ctx, identifier, password)
}

// fallbackResolve verifies the trimmed password hash directly instead of
// going through authenticate.
func (a *App) fallbackResolve(ctx context.Context, identifier, password string) (models.User, error) {
	user, err := a.db.GetUserByUsernameFold(ctx, identifier)
	if errors.Is(err, sqldb.ErrDBNotFound) && strings.Contains(identifier, "@") {
		user, err = a.db.GetUserByEmailFold(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return models.User{}, errCredentials
		}
		return models.User{}, err
	}

	trimmed := strings.TrimSpace(password)
	if trimmed == "" {
		return models.User{}, errCredentials
	}
	if bcrypt.CompareHashAndPassword(user.Password, []byte(trimmed)) != nil {
		return models.User{}, errCredentials
	}
	if !user.IsActive {
		return models.User{}, errCredentials
	}
	return user, nil
}

// authenticate is the primary password check: hash match plus active flag.
func authenticate(user models.User, password string) bool {
	if bcrypt.CompareHashAndPassword(user.Password, []byte(password)) != nil {
		return false
	}
	return user.IsActive
}
