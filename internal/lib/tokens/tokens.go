// Package tokens issues and verifies the two signed token types the service
// relies on: short-lived access tokens and longer-lived email-confirmation
// tokens. Both share one HS256 secret; they differ only in the "kind" claim
// and their validity window. Tokens are stateless — validity is derived from
// the signature and claims alone, nothing is stored server-side.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindConfirm Kind = "confirm"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrMissingSubject = errors.New("token has no subject")
	ErrWrongTokenKind = errors.New("wrong token kind")
)

type Manager struct {
	secret          []byte
	accessTokenTTL  time.Duration
	confirmTokenTTL time.Duration
}

// New builds a Manager. Both TTLs are injectable so tests can pass a
// negative window and get an already-expired token.
func New(secret string, accessTokenTTL, confirmTokenTTL time.Duration) *Manager {
	return &Manager{
		secret:          []byte(secret),
		accessTokenTTL:  accessTokenTTL,
		confirmTokenTTL: confirmTokenTTL,
	}
}

func (m *Manager) NewAccessToken(email string) (string, error) {
	return m.newToken(email, KindAccess, m.accessTokenTTL)
}

func (m *Manager) NewConfirmToken(email string) (string, error) {
	return m.newToken(email, KindConfirm, m.confirmTokenTTL)
}

func (m *Manager) newToken(email string, kind Kind, ttl time.Duration) (string, error) {
	const op = "tokens.newToken"

	claims := jwt.MapClaims{
		"sub":  email,
		"kind": string(kind),
		"exp":  time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// * Subject verifies tokenStr and returns its subject email. The declared
// kind must equal expected — an access token presented where a confirm token
// is expected fails, and vice versa, even if signature and expiry are fine.
func (m *Manager) Subject(tokenStr string, expected Kind) (string, error) {
	claims := jwt.MapClaims{}

	parsedToken, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	if !parsedToken.Valid {
		return "", ErrTokenInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrMissingSubject
	}

	if kind, ok := claims["kind"].(string); !ok || kind != string(expected) {
		return "", ErrWrongTokenKind
	}

	return sub, nil
}
