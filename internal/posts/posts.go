package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sl "social_service/internal/lib/logger"
	"social_service/internal/models"
	"social_service/internal/storage"
)

var ErrPostNotFound = errors.New("post not found")

const imageGenTimeout = 2 * time.Minute

type Posts struct {
	log      *slog.Logger
	storage  Storage
	imageGen ImageGenerator
}

type Storage interface {
	SavePost(ctx context.Context, userID int64, body string) (int64, error)
	Post(ctx context.Context, postID int64) (models.PostWithLikes, error)
	Posts(ctx context.Context, orderBy string) ([]models.PostWithLikes, error)
	SetPostImageURL(ctx context.Context, postID int64, imageURL string) error
	SaveComment(ctx context.Context, postID, userID int64, body string) (int64, error)
	Comments(ctx context.Context, postID int64) ([]models.Comment, error)
	SaveLike(ctx context.Context, postID, userID int64) (int64, error)
}

type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type PostWithComments struct {
	Post     models.PostWithLikes `json:"post"`
	Comments []models.Comment     `json:"comments"`
}

func New(log *slog.Logger, storage Storage, imageGen ImageGenerator) *Posts {
	return &Posts{
		log:      log,
		storage:  storage,
		imageGen: imageGen,
	}
}

// * CreatePost saves the post and, when prompt is non-empty, kicks off image
// generation in the background. The response never waits on the image; a
// failed generation only logs and the post stays without one.
func (p *Posts) CreatePost(ctx context.Context, userID int64, body, prompt string) (models.Post, error) {
	const op = "posts.CreatePost"

	log := p.log.With(slog.String("op", op))

	id, err := p.storage.SavePost(ctx, userID, body)
	if err != nil {
		log.Error("failed to save post", sl.Err(err))
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("post created", slog.Int64("post_id", id))

	if prompt != "" {
		go p.generateAndAttachImage(id, prompt)
	}

	return models.Post{ID: id, UserID: userID, Body: body}, nil
}

func (p *Posts) generateAndAttachImage(postID int64, prompt string) {
	const op = "posts.generateAndAttachImage"

	log := p.log.With(
		slog.String("op", op),
		slog.Int64("post_id", postID),
	)

	// detached from the request: the post is already committed
	ctx, cancel := context.WithTimeout(context.Background(), imageGenTimeout)
	defer cancel()

	imageURL, err := p.imageGen.Generate(ctx, prompt)
	if err != nil {
		log.Error("image generation failed", sl.Err(err))
		return
	}

	if err := p.storage.SetPostImageURL(ctx, postID, imageURL); err != nil {
		log.Error("failed to attach image to post", sl.Err(err))
		return
	}

	log.Info("image attached to post")
}

func (p *Posts) Posts(ctx context.Context, sorting string) ([]models.PostWithLikes, error) {
	const op = "posts.Posts"

	list, err := p.storage.Posts(ctx, sorting)
	if err != nil {
		p.log.Error("failed to list posts", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (p *Posts) PostWithComments(ctx context.Context, postID int64) (PostWithComments, error) {
	const op = "posts.PostWithComments"

	post, err := p.storage.Post(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return PostWithComments{}, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}

		return PostWithComments{}, fmt.Errorf("%s: %w", op, err)
	}

	comments, err := p.storage.Comments(ctx, postID)
	if err != nil {
		return PostWithComments{}, fmt.Errorf("%s: %w", op, err)
	}

	return PostWithComments{Post: post, Comments: comments}, nil
}

func (p *Posts) CreateComment(ctx context.Context, userID, postID int64, body string) (models.Comment, error) {
	const op = "posts.CreateComment"

	if _, err := p.storage.Post(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return models.Comment{}, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}

		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := p.storage.SaveComment(ctx, postID, userID, body)
	if err != nil {
		p.log.Error("failed to save comment", slog.String("op", op), sl.Err(err))
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Comment{ID: id, PostID: postID, UserID: userID, Body: body}, nil
}

func (p *Posts) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	const op = "posts.Comments"

	comments, err := p.storage.Comments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return comments, nil
}

func (p *Posts) LikePost(ctx context.Context, userID, postID int64) (models.Like, error) {
	const op = "posts.LikePost"

	if _, err := p.storage.Post(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return models.Like{}, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}

		return models.Like{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := p.storage.SaveLike(ctx, postID, userID)
	if err != nil {
		p.log.Error("failed to save like", slog.String("op", op), sl.Err(err))
		return models.Like{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Like{ID: id, PostID: postID, UserID: userID}, nil
}
