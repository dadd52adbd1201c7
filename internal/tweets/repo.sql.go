package tweets

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists tweets. As with users, reads run on the pool and
// writes run on the caller's transaction.
type Repository interface {
	List(ctx context.Context) ([]Tweet, error)
	GetByID(ctx context.Context, id int64) (Tweet, error)
	Insert(ctx context.Context, tx pgx.Tx, t *Tweet) error
	Update(ctx context.Context, tx pgx.Tx, t *Tweet) error
	SoftDelete(ctx context.Context, tx pgx.Tx, id int64) (bool, error)
	AuthorExists(ctx context.Context, tx pgx.Tx, authorID int64) (bool, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var ErrTweetNotFound = errors.New("tweet not found")

const tweetColumns = `id, content, author_id, created_at, updated_at, deleted_at`

func (r *PGRepository) List(ctx context.Context) ([]Tweet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tweetColumns+`
		FROM tweets
		WHERE deleted_at IS NULL
		ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("tweets: list: %w", err)
	}
	defer rows.Close()

	var out []Tweet
	for rows.Next() {
		var t Tweet
		if err := rows.Scan(&t.ID, &t.Content, &t.AuthorID, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt); err != nil {
			return nil, fmt.Errorf("tweets: scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (Tweet, error) {
	var t Tweet
	err := r.pool.QueryRow(ctx, `
		SELECT `+tweetColumns+`
		FROM tweets
		WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&t.ID, &t.Content, &t.AuthorID, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tweet{}, ErrTweetNotFound
	}
	if err != nil {
		return Tweet{}, fmt.Errorf("tweets: get %d: %w", id, err)
	}
	return t, nil
}

func (r *PGRepository) Insert(ctx context.Context, tx pgx.Tx, t *Tweet) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO tweets (content, author_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`,
		t.Content, t.AuthorID).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("tweets: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) Update(ctx context.Context, tx pgx.Tx, t *Tweet) error {
	err := tx.QueryRow(ctx, `
		UPDATE tweets
		SET content = $2, author_id = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`,
		t.ID, t.Content, t.AuthorID).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTweetNotFound
	}
	if err != nil {
		return fmt.Errorf("tweets: update %d: %w", t.ID, err)
	}
	return nil
}

func (r *PGRepository) SoftDelete(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE tweets
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("tweets: delete %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// AuthorExists reports whether authorID is a live user. Checked on the write
// transaction so a concurrent user deletion cannot slip a tweet past it.
func (r *PGRepository) AuthorExists(ctx context.Context, tx pgx.Tx, authorID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE id = $1 AND deleted_at IS NULL
		)`, authorID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("tweets: author check %d: %w", authorID, err)
	}
	return exists, nil
}
