package resendConfirmation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"social_service/internal/auth"
	resp "social_service/internal/lib/api/response"
	"social_service/internal/lib/confirmation"
	sl "social_service/internal/lib/logger"
	"social_service/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type Response struct {
	resp.Response
}

// New resends the confirmation email. The endpoint answers OK for any
// syntactically valid email — unknown and already-confirmed accounts are
// indistinguishable from unconfirmed ones, which keeps the endpoint useless
// for enumeration.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
	msgSender confirmation.Publisher,
	baseURL string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.resendConfirmation.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		confirmToken, err := authService.ResendConfirmation(ctx, req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				ResponseOK(w, r)

				return
			}

			log.Error("failed to prepare confirmation resend", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		if confirmToken != "" {
			err := confirmation.SendConfirmationEmail(ctx, log, msgSender, baseURL, confirmToken, req.Email)
			if err != nil {
				log.Error("Failed to queue confirmation email", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))

				return
			}
		}

		log.Info("Confirmation email resend handled")

		ResponseOK(w, r)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Response{
		Response: resp.OK(),
	})
}
