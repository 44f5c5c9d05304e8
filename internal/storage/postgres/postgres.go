package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social_service/internal/config"
	"social_service/internal/models"
	"social_service/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) SaveUser(ctx context.Context, email string, passHash []byte) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, email, string(passHash)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT id, email, password_hash, confirmed
		FROM users
		WHERE email = $1;
	`

	row := r.pool.QueryRow(ctx, query, email)

	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PassHash,
		&u.Confirmed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, err
}

func (r *PostgresRepo) SetConfirmed(ctx context.Context, email string) error {
	query := `UPDATE users SET confirmed = TRUE WHERE email = $1`

	_, err := r.pool.Exec(ctx, query, email)

	return err
}

func (r *PostgresRepo) SavePost(ctx context.Context, userID int64, body string) (int64, error) {
	const op = "storage.postgres.SavePost"

	query := `
		INSERT INTO posts (user_id, body)
		VALUES ($1, $2)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, userID, body).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to save post: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) Post(ctx context.Context, postID int64) (models.PostWithLikes, error) {
	query := `
		SELECT p.id, p.user_id, p.body, COALESCE(p.image_url, ''), COUNT(l.id) AS likes
		FROM posts p
		LEFT JOIN likes l ON l.post_id = p.id
		WHERE p.id = $1
		GROUP BY p.id;
	`

	row := r.pool.QueryRow(ctx, query, postID)

	var p models.PostWithLikes
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Body,
		&p.ImageURL,
		&p.Likes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PostWithLikes{}, storage.ErrPostNotFound
		}

		return models.PostWithLikes{}, err
	}

	return p, nil
}

func (r *PostgresRepo) Posts(ctx context.Context, orderBy string) ([]models.PostWithLikes, error) {
	const op = "storage.postgres.Posts"

	query := `
		SELECT p.id, p.user_id, p.body, COALESCE(p.image_url, ''), COUNT(l.id) AS likes
		FROM posts p
		LEFT JOIN likes l ON l.post_id = p.id
		GROUP BY p.id
	`

	switch orderBy {
	case "old":
		query += ` ORDER BY p.id ASC;`
	case "most_likes":
		query += ` ORDER BY likes DESC;`
	default:
		query += ` ORDER BY p.id DESC;`
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	posts := []models.PostWithLikes{}

	for rows.Next() {
		var p models.PostWithLikes

		if err := rows.Scan(&p.ID, &p.UserID, &p.Body, &p.ImageURL, &p.Likes); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		posts = append(posts, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return posts, nil
}

func (r *PostgresRepo) SetPostImageURL(ctx context.Context, postID int64, imageURL string) error {
	query := `UPDATE posts SET image_url = $1 WHERE id = $2`

	_, err := r.pool.Exec(ctx, query, imageURL, postID)

	return err
}

func (r *PostgresRepo) SaveComment(ctx context.Context, postID, userID int64, body string) (int64, error) {
	const op = "storage.postgres.SaveComment"

	query := `
		INSERT INTO comments (post_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, postID, userID, body).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to save comment: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	const op = "storage.postgres.Comments"

	query := `
		SELECT id, post_id, user_id, body
		FROM comments
		WHERE post_id = $1
		ORDER BY id;
	`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	comments := []models.Comment{}

	for rows.Next() {
		var c models.Comment

		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Body); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		comments = append(comments, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return comments, nil
}

func (r *PostgresRepo) SaveLike(ctx context.Context, postID, userID int64) (int64, error) {
	const op = "storage.postgres.SaveLike"

	query := `
		INSERT INTO likes (post_id, user_id)
		VALUES ($1, $2)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, postID, userID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to save like: %w", op, err)
	}

	return id, nil
}

// * isUniqueViolation reports whether err is a postgres unique constraint
// violation (code 23505), however deeply pgx wrapped it.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

// * dsn builds the connection string from config.
func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
