package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "social_service/internal/lib/logger"
	"social_service/internal/lib/passhash"
	"social_service/internal/lib/tokens"
	"social_service/internal/models"
	"social_service/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid token")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	tokens      *tokens.Manager
}

type UserSaver interface {
	SaveUser(ctx context.Context, email string, passHash []byte) (uid int64, err error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
	SetConfirmed(ctx context.Context, email string) error
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	tokenManager *tokens.Manager,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		tokens:      tokenManager,
	}
}

// * Register creates an unconfirmed account and returns its id together with
// a confirmation token. Delivering the token (email link) is the caller's
// job. A duplicate email, including one lost to a concurrent registration,
// surfaces as ErrUserExists via the storage unique constraint.
func (a *Auth) Register(ctx context.Context, email, password string) (int64, string, error) {
	const op = "auth.Register"

	log := a.log.With(
		slog.String("op", op),
		sl.Email(email),
	)

	log.Info("registering new user")

	passHash, err := passhash.Hash(password)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, email, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")

			return 0, "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))

		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	confirmToken, err := a.tokens.NewConfirmToken(email)
	if err != nil {
		log.Error("failed to generate confirm token", sl.Err(err))
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("uid", id))

	return id, confirmToken, nil
}

// * Confirm redeems a confirmation token and marks the account confirmed.
// Re-confirming an already-confirmed account is harmless; a live token may
// be redeemed again before its natural expiry with no further effect.
func (a *Auth) Confirm(ctx context.Context, token string) error {
	const op = "auth.Confirm"

	log := a.log.With(slog.String("op", op))

	email, err := a.tokens.Subject(token, tokens.KindConfirm)
	if err != nil {
		log.Warn("confirm token rejected", sl.Err(err))

		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if err := a.usrProvider.SetConfirmed(ctx, email); err != nil {
		log.Error("failed to set confirmed", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("email confirmed", sl.Email(email))

	return nil
}

// * ResendConfirmation mints a fresh confirmation token for an unconfirmed
// account. Returns an empty token when the account is already confirmed so
// the caller can skip sending without revealing account state.
func (a *Auth) ResendConfirmation(ctx context.Context, email string) (string, error) {
	const op = "auth.ResendConfirmation"

	log := a.log.With(
		slog.String("op", op),
		sl.Email(email),
	)

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if user.Confirmed {
		log.Info("email already confirmed, nothing to resend")
		return "", nil
	}

	token, err := a.tokens.NewConfirmToken(email)
	if err != nil {
		log.Error("failed to generate confirm token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// * Login checks credentials and confirmation state, then mints an access
// token. Confirmation is gated here and only here: once an access token is
// out, its holder is trusted for the token's validity window.
func (a *Auth) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		sl.Email(email),
	)

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !passhash.Verify(password, user.PassHash) {
		log.Info("invalid credentials")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !user.Confirmed {
		log.Info("email not confirmed")
		return "", fmt.Errorf("%s: %w", op, ErrEmailNotConfirmed)
	}

	accessToken, err := a.tokens.NewAccessToken(email)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))

	return accessToken, nil
}

// * Authorize resolves an access token to its account. The confirmed flag is
// not re-checked; account-state changes after issuance do not revoke a
// token.
func (a *Auth) Authorize(ctx context.Context, token string) (models.User, error) {
	const op = "auth.Authorize"

	log := a.log.With(slog.String("op", op))

	email, err := a.tokens.Subject(token, tokens.KindAccess)
	if err != nil {
		log.Warn("access token rejected", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("token subject unknown", sl.Email(email))
			return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
