package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_service/internal/lib/passhash"
	"social_service/internal/lib/tokens"
	"social_service/internal/models"
	"social_service/internal/storage"
)

// fakeDirectory backs both UserSaver and UserProvider with an in-memory map,
// enforcing email uniqueness the way the database unique index does.
type fakeDirectory struct {
	users  map[string]models.User
	nextID int64

	saveErr error
	getErr  error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: map[string]models.User{}, nextID: 1}
}

func (f *fakeDirectory) SaveUser(ctx context.Context, email string, passHash []byte) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	if _, ok := f.users[email]; ok {
		return 0, storage.ErrUserExists
	}

	id := f.nextID
	f.nextID++
	f.users[email] = models.User{ID: id, Email: email, PassHash: passHash}

	return id, nil
}

func (f *fakeDirectory) User(ctx context.Context, email string) (models.User, error) {
	if f.getErr != nil {
		return models.User{}, f.getErr
	}

	u, ok := f.users[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (f *fakeDirectory) SetConfirmed(ctx context.Context, email string) error {
	if u, ok := f.users[email]; ok {
		u.Confirmed = true
		f.users[email] = u
	}

	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuth(dir *fakeDirectory) *Auth {
	return New(discardLogger(), dir, dir, tokens.New("test-secret", 30*time.Minute, 24*time.Hour))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	a := newTestAuth(dir)

	_, _, err := a.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	_, _, err = a.Register(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Len(t, dir.users, 1)
}

func TestRegister_StoresOnlyHash(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	a := newTestAuth(dir)

	_, _, err := a.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	u := dir.users["a@x.com"]
	assert.NotContains(t, string(u.PassHash), "pw")
	assert.True(t, passhash.Verify("pw", u.PassHash))
	assert.False(t, u.Confirmed)
}

func TestLogin_UserNotFound(t *testing.T) {
	t.Parallel()

	a := newTestAuth(newFakeDirectory())

	_, err := a.Login(context.Background(), "ghost@x.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_BadPassword(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	a := newTestAuth(dir)

	_, confirmToken, err := a.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	require.NoError(t, a.Confirm(context.Background(), confirmToken))

	_, err = a.Login(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// a failed login must not touch the confirmed flag
	assert.True(t, dir.users["a@x.com"].Confirmed)
}

func TestLogin_NotConfirmed(t *testing.T) {
	t.Parallel()

	a := newTestAuth(newFakeDirectory())

	_, _, err := a.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	_, err = a.Login(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)
}

func TestConfirm_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	tm := tokens.New("test-secret", 30*time.Minute, 24*time.Hour)
	dir := newFakeDirectory()
	a := New(discardLogger(), dir, dir, tm)

	_, _, err := a.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	accessToken, err := tm.NewAccessToken("a@x.com")
	require.NoError(t, err)

	err = a.Confirm(context.Background(), accessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, dir.users["a@x.com"].Confirmed)
}

func TestConfirm_ExpiredToken(t *testing.T) {
	t.Parallel()

	tm := tokens.New("test-secret", 30*time.Minute, -1*time.Minute)
	dir := newFakeDirectory()
	a := New(discardLogger(), dir, dir, tm)

	_, confirmToken, err := a.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	err = a.Confirm(context.Background(), confirmToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirm_ReplayIsHarmless(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	a := newTestAuth(dir)

	_, confirmToken, err := a.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, a.Confirm(context.Background(), confirmToken))
	require.NoError(t, a.Confirm(context.Background(), confirmToken))
	assert.True(t, dir.users["a@x.com"].Confirmed)
}

func TestAuthorize_RejectsConfirmToken(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	a := newTestAuth(dir)

	_, confirmToken, err := a.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	_, err = a.Authorize(context.Background(), confirmToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthorize_UnknownSubject(t *testing.T) {
	t.Parallel()

	tm := tokens.New("test-secret", 30*time.Minute, 24*time.Hour)
	a := New(discardLogger(), newFakeDirectory(), newFakeDirectory(), tm)

	tok, err := tm.NewAccessToken("ghost@x.com")
	require.NoError(t, err)

	_, err = a.Authorize(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterConfirmLoginAuthorize(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	a := newTestAuth(dir)

	id, confirmToken, err := a.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, a.Confirm(context.Background(), confirmToken))

	accessToken, err := a.Login(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)

	user, err := a.Authorize(context.Background(), accessToken)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
}
