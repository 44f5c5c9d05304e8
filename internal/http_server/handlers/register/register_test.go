package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_service/internal/auth"
	"social_service/internal/lib/tokens"
	"social_service/internal/models"
	"social_service/internal/storage"
)

type fakeDirectory struct {
	users  map[string]models.User
	nextID int64
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: map[string]models.User{}, nextID: 1}
}

func (f *fakeDirectory) SaveUser(ctx context.Context, email string, passHash []byte) (int64, error) {
	if _, ok := f.users[email]; ok {
		return 0, storage.ErrUserExists
	}

	id := f.nextID
	f.nextID++
	f.users[email] = models.User{ID: id, Email: email, PassHash: passHash}

	return id, nil
}

func (f *fakeDirectory) User(ctx context.Context, email string) (models.User, error) {
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

type fakePublisher struct {
	sent []models.EmailMessage
	err  error
}

func (f *fakePublisher) SendMessage(ctx context.Context, msg models.EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandler(pub *fakePublisher) http.HandlerFunc {
	dir := newFakeDirectory()
	tm := tokens.New("test-secret", 30*time.Minute, 24*time.Hour)
	authService := auth.New(discardLogger(), dir, dir, tm)

	return New(discardLogger(), validator.New(), authService, pub, "http://localhost:8080")
}

func post(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	handler := newHandler(pub)

	rec := post(t, handler, `{"email": "a@x.com", "password": "pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, int64(1), got.UserID)
	assert.Contains(t, got.ConfirmationURL, "/confirm?token=")

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "a@x.com", pub.sent[0].Email)
	assert.Equal(t, got.ConfirmationURL, pub.sent[0].Link)
}

func TestRegister_DuplicateConflict(t *testing.T) {
	t.Parallel()

	handler := newHandler(&fakePublisher{})

	rec := post(t, handler, `{"email": "a@x.com", "password": "pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = post(t, handler, `{"email": "a@x.com", "password": "other"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_InvalidEmail(t *testing.T) {
	t.Parallel()

	handler := newHandler(&fakePublisher{})

	rec := post(t, handler, `{"email": "not-an-email", "password": "pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_MalformedBody(t *testing.T) {
	t.Parallel()

	handler := newHandler(&fakePublisher{})

	rec := post(t, handler, `{"email": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
