package listPosts

import (
	"log/slog"
	"net/http"

	resp "social_service/internal/lib/api/response"
	sl "social_service/internal/lib/logger"
	"social_service/internal/models"
	"social_service/internal/posts"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Posts []models.PostWithLikes `json:"posts"`
}

func New(
	log *slog.Logger,
	postService *posts.Posts,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.listPosts.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sorting := r.URL.Query().Get("sorting")
		switch sorting {
		case "", "new", "old", "most_likes":
		default:
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("unknown sorting"))

			return
		}

		list, err := postService.Posts(r.Context(), sorting)
		if err != nil {
			log.Error("failed to list posts", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Posts:    list,
		})
	}
}
