package listComments

import (
	"log/slog"
	"net/http"
	"strconv"

	resp "social_service/internal/lib/api/response"
	sl "social_service/internal/lib/logger"
	"social_service/internal/models"
	"social_service/internal/posts"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Comments []models.Comment `json:"comments"`
}

func New(
	log *slog.Logger,
	postService *posts.Posts,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.listComments.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		postID, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid post id"))

			return
		}

		comments, err := postService.Comments(r.Context(), postID)
		if err != nil {
			log.Error("failed to list comments", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Comments: comments,
		})
	}
}
