// Package authenticate resolves the Authorization header to an account and
// stores it in the request context. Any failure, whatever the internal
// reason, answers 401 with one generic message.
package authenticate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	resp "social_service/internal/lib/api/response"
	sl "social_service/internal/lib/logger"
	"social_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ctxKey struct{}

type Authorizer interface {
	Authorize(ctx context.Context, token string) (models.User, error)
}

func New(log *slog.Logger, authService Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authenticate.New"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := bearerToken(r)
			if !ok {
				log.Warn("missing bearer token")

				unauthorized(w, r)

				return
			}

			user, err := authService.Authorize(r.Context(), token)
			if err != nil {
				// the reason stays in the logs; the response never says
				// whether signature, expiry, kind, or subject failed
				log.Warn("authorization failed", sl.Err(err))

				unauthorized(w, r)

				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// * UserFromContext returns the account stored by the middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(models.User)
	return user, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	return strings.TrimPrefix(header, prefix), true
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error("cannot authenticate"))
}
