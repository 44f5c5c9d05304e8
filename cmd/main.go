package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social_service/internal/auth"
	"social_service/internal/config"
	"social_service/internal/http_server/handlers/confirm"
	createComment "social_service/internal/http_server/handlers/create_comment"
	createPost "social_service/internal/http_server/handlers/create_post"
	getPost "social_service/internal/http_server/handlers/get_post"
	likePost "social_service/internal/http_server/handlers/like_post"
	listComments "social_service/internal/http_server/handlers/list_comments"
	listPosts "social_service/internal/http_server/handlers/list_posts"
	"social_service/internal/http_server/handlers/login"
	"social_service/internal/http_server/handlers/register"
	resendConfirmation "social_service/internal/http_server/handlers/resend_confirmation"
	"social_service/internal/imagegen"
	"social_service/internal/lib/tokens"
	"social_service/internal/middleware/authenticate"
	"social_service/internal/middleware/correlation"
	rateLimit "social_service/internal/middleware/ratelimit"
	"social_service/internal/posts"
	"social_service/internal/rabbitmq"
	"social_service/internal/storage/postgres"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting social service", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer msgBroker.Close()

	tokenManager := tokens.New(cfg.Tokens.Secret, cfg.Tokens.AccessTokenTTL, cfg.Tokens.ConfirmTokenTTL)

	authService := auth.New(log, storage, storage, tokenManager)
	postService := posts.New(log, storage, imagegen.New(cfg.ImageAPI.URL, cfg.ImageAPI.APIKey))

	router := setupRouter(log, authService, postService, msgBroker, cfg.HTTPServer.BaseURL)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	log *slog.Logger,
	authService *auth.Auth,
	postService *posts.Posts,
	msgBroker *rabbitmq.RabbitMQClient,
	baseURL string,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(correlation.New())
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	validate := validator.New()

	r.With(rateLimit.Register()).Post("/register",
		register.New(log, validate, authService, msgBroker, baseURL),
	)
	r.With(rateLimit.Login()).Post("/login",
		login.New(log, validate, authService),
	)
	r.With(rateLimit.Confirm()).Get("/confirm",
		confirm.New(log, authService),
	)
	r.With(rateLimit.ResendConfirmationEmail()).Post("/confirm/resend",
		resendConfirmation.New(log, validate, authService, msgBroker, baseURL),
	)

	r.Get("/post", listPosts.New(log, postService))
	r.Get("/post/{postID}", getPost.New(log, postService))
	r.Get("/post/{postID}/comments", listComments.New(log, postService))

	r.Group(func(r chi.Router) {
		r.Use(authenticate.New(log, authService))

		r.Post("/post", createPost.New(log, validate, postService))
		r.Post("/comment", createComment.New(log, validate, postService))
		r.Post("/like", likePost.New(log, validate, postService))
	})

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
