// Package tweets manages posts. Mutations require an authenticated author
// check and emit one audit event each.
package tweets

import "time"

// Tweet is a single post. AuthorID references a live user at creation time;
// the row is soft-deleted, never removed.
type Tweet struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	AuthorID  int64      `json:"author_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// TweetRequest is the create/update payload. Content is capped at 200
// characters.
type TweetRequest struct {
	Content  string `json:"content" validate:"required,max=200"`
	AuthorID int64  `json:"author_id" validate:"required,gt=0"`
}
