// Package session signs and verifies session cookies.
//
// The browser cookie carries a signed JWT whose subject is the session row
// ID. The database row is authoritative: a cookie that verifies but points
// at a deleted or expired row is still a dead session.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCookie  = errors.New("invalid session cookie")
	ErrExpiredCookie  = errors.New("session cookie has expired")
	ErrMissingCookie  = errors.New("session cookie not found")
	ErrMissingSecret  = errors.New("session secret not configured")
)

const (
	// CookieName is the name of the browser session cookie.
	CookieName = "sessionid"

	issuer = "alumni-partner-db"
)

// CookieService signs session IDs into browser cookies.
type CookieService struct {
	SecretKey []byte
	TTL       time.Duration
}

// NewCookieService creates a cookie signer with the given secret and lifetime.
func NewCookieService(secret string, ttl time.Duration) *CookieService {
	return &CookieService{
		SecretKey: []byte(secret),
		TTL:       ttl,
	}
}

// Sign wraps a session ID in a signed JWT suitable for a cookie value.
func (cs *CookieService) Sign(sessionID string) (string, error) {
	if len(cs.SecretKey) == 0 {
		return "", ErrMissingSecret
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(now.Add(cs.TTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(cs.SecretKey)
}

// Parse verifies a cookie value and returns the session ID it carries.
func (cs *CookieService) Parse(cookieValue string) (string, error) {
	if cookieValue == "" {
		return "", ErrMissingCookie
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
	)

	_, err := parser.ParseWithClaims(cookieValue, claims, func(t *jwt.Token) (interface{}, error) {
		return cs.SecretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredCookie
		}
		return "", ErrInvalidCookie
	}

	if claims.Subject == "" {
		return "", ErrInvalidCookie
	}
	return claims.Subject, nil
}
