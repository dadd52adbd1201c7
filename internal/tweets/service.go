package tweets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chirper/chirper/internal/audit"
	"github.com/chirper/chirper/internal/platform/db"
)

// ErrAuthorNotFound is returned when the payload names a missing or deleted
// author.
var ErrAuthorNotFound = errors.New("author not found")

// EventRecorder writes an audit event on the caller's transaction.
type EventRecorder interface {
	Record(ctx context.Context, q audit.Querier, eventType audit.EventType, entityType string, entityID int64) (audit.Event, error)
}

type txRunner func(ctx context.Context, fn func(pgx.Tx) error) error

type Service struct {
	repo     Repository
	recorder EventRecorder
	inTx     txRunner
}

func NewService(pool *pgxpool.Pool, repo Repository, recorder EventRecorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		inTx: func(ctx context.Context, fn func(pgx.Tx) error) error {
			return db.WithTx(ctx, pool, fn)
		},
	}
}

func (s *Service) List(ctx context.Context) ([]Tweet, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Tweet, error) {
	return s.repo.GetByID(ctx, id)
}

// Create inserts the tweet and records a TWEET_CREATED event attributed to
// the request identity. The author named in the payload must be a live user.
func (s *Service) Create(ctx context.Context, req TweetRequest) (Tweet, error) {
	t := Tweet{Content: req.Content, AuthorID: req.AuthorID}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.requireAuthor(ctx, tx, req.AuthorID); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, tx, &t); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, tx, audit.EventTweetCreated, audit.EntityTypeTweet, t.ID)
		return err
	})
	if err != nil {
		return Tweet{}, err
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, id int64, req TweetRequest) (Tweet, error) {
	t := Tweet{ID: id, Content: req.Content, AuthorID: req.AuthorID}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.requireAuthor(ctx, tx, req.AuthorID); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, &t); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, tx, audit.EventTweetUpdated, audit.EntityTypeTweet, id)
		return err
	})
	if err != nil {
		return Tweet{}, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		deleted, err := s.repo.SoftDelete(ctx, tx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrTweetNotFound
		}
		_, err = s.recorder.Record(ctx, tx, audit.EventTweetDeleted, audit.EntityTypeTweet, id)
		return err
	})
}

func (s *Service) requireAuthor(ctx context.Context, tx pgx.Tx, authorID int64) error {
	exists, err := s.repo.AuthorExists(ctx, tx, authorID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAuthorNotFound
	}
	return nil
}
