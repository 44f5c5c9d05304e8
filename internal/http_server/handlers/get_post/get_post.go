package getPost

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	resp "social_service/internal/lib/api/response"
	sl "social_service/internal/lib/logger"
	"social_service/internal/posts"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	posts.PostWithComments
}

func New(
	log *slog.Logger,
	postService *posts.Posts,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.getPost.New"

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

		post, err := postService.PostWithComments(r.Context(), postID)
		if err != nil {
			if errors.Is(err, posts.ErrPostNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Post not present"))

				return
			}

			log.Error("failed to get post", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response:         resp.OK(),
			PostWithComments: post,
		})
	}
}
