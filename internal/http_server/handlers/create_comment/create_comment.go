package createComment

import (
	"errors"
	"log/slog"
	"net/http"

	resp "social_service/internal/lib/api/response"
	sl "social_service/internal/lib/logger"
	"social_service/internal/middleware/authenticate"
	"social_service/internal/models"
	"social_service/internal/posts"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	PostID int64  `json:"post_id" validate:"required"`
	Body   string `json:"body" validate:"required"`
}

type Response struct {
	resp.Response
	Comment models.Comment `json:"comment"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	postService *posts.Posts,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.createComment.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := authenticate.UserFromContext(r.Context())
		if !ok {
			log.Error("no authenticated user in context")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("cannot authenticate"))

			return
		}

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

		comment, err := postService.CreateComment(r.Context(), user.ID, req.PostID, req.Body)
		if err != nil {
			if errors.Is(err, posts.ErrPostNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("No post present"))

				return
			}

			log.Error("failed to create comment", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: resp.OK(),
			Comment:  comment,
		})
	}
}
