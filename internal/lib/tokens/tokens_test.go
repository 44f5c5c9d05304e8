package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return New("test-secret", 30*time.Minute, 24*time.Hour)
}

func TestSubject_AccessRoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestManager()

	tok, err := m.NewAccessToken("a@x.com")
	require.NoError(t, err)

	sub, err := m.Subject(tok, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sub)
}

func TestSubject_ConfirmRoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestManager()

	tok, err := m.NewConfirmToken("a@x.com")
	require.NoError(t, err)

	sub, err := m.Subject(tok, KindConfirm)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sub)
}

func TestSubject_KindCrossingFails(t *testing.T) {
	t.Parallel()

	m := newTestManager()

	access, err := m.NewAccessToken("a@x.com")
	require.NoError(t, err)
	confirm, err := m.NewConfirmToken("a@x.com")
	require.NoError(t, err)

	_, err = m.Subject(access, KindConfirm)
	assert.ErrorIs(t, err, ErrWrongTokenKind)

	_, err = m.Subject(confirm, KindAccess)
	assert.ErrorIs(t, err, ErrWrongTokenKind)
}

func TestSubject_Expired(t *testing.T) {
	t.Parallel()

	m := New("test-secret", -1*time.Minute, -1*time.Minute)

	tok, err := m.NewAccessToken("a@x.com")
	require.NoError(t, err)

	_, err = m.Subject(tok, KindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSubject_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestManager().NewAccessToken("a@x.com")
	require.NoError(t, err)

	other := New("other-secret", 30*time.Minute, 24*time.Hour)

	_, err = other.Subject(tok, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSubject_Malformed(t *testing.T) {
	t.Parallel()

	_, err := newTestManager().Subject("not.a.token", KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSubject_MissingSubject(t *testing.T) {
	t.Parallel()

	m := newTestManager()

	claims := jwt.MapClaims{
		"kind": string(KindAccess),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Subject(tok, KindAccess)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestSubject_MissingKind(t *testing.T) {
	t.Parallel()

	m := newTestManager()

	claims := jwt.MapClaims{
		"sub": "a@x.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Subject(tok, KindAccess)
	assert.ErrorIs(t, err, ErrWrongTokenKind)
}

func TestSubject_RejectsNonHMAC(t *testing.T) {
	t.Parallel()

	m := newTestManager()

	claims := jwt.MapClaims{
		"sub":  "a@x.com",
		"kind": string(KindAccess),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Subject(tok, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
