package models

import "time"

type User struct {
	ID        int64
	Email     string
	PassHash  []byte
	Confirmed bool
}

type Post struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url,omitempty"`
}

// * PostWithLikes is a Post joined with its like count.
type PostWithLikes struct {
	Post
	Likes int64 `json:"likes"`
}

type Comment struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"post_id"`
	UserID int64  `json:"user_id"`
	Body   string `json:"body"`
}

type Like struct {
	ID     int64 `json:"id"`
	PostID int64 `json:"post_id"`
	UserID int64 `json:"user_id"`
}

type EmailMessage struct {
	Email   string    `json:"to"`
	Subject string    `json:"subject"`
	Link    string    `json:"link"`
	SentAt  time.Time `json:"sent_at"`
}
