package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/chirper/chirper/internal/audit"
	"github.com/chirper/chirper/internal/platform/db"
)

// defaultRole is granted to every new account so fresh users can read and
// write tweets without an admin touching the role graph first.
const defaultRole = "basic"

// bcrypt encodes the salt in the first 29 characters of the hash; we store
// it separately as well for tooling that wants the salt on its own.
const bcryptSaltLen = 29

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

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a user, seeds their credential, grants the default role
// and records a USER_CREATED event, all in one transaction.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	hash, salt, err := hashPassword(req.Password)
	if err != nil {
		return User{}, err
	}

	u := User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Handle:    req.Handle,
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.repo.Insert(ctx, tx, &u); err != nil {
			return err
		}
		if err := s.repo.InsertCredential(ctx, tx, u.ID, req.Username, hash, salt); err != nil {
			return err
		}
		roleID, ok, err := s.repo.RoleIDByName(ctx, tx, defaultRole)
		if err != nil {
			return err
		}
		if ok {
			if err := s.repo.AssignRole(ctx, tx, u.ID, roleID); err != nil {
				return err
			}
		}
		_, err = s.recorder.Record(ctx, tx, audit.EventUserCreated, audit.EntityTypeUser, u.ID)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Update rewrites the profile and credential username; a non-empty password
// rotates the stored hash. Exactly one USER_UPDATED event is recorded.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest) (User, error) {
	var hash, salt *string
	if req.Password != "" {
		h, sa, err := hashPassword(req.Password)
		if err != nil {
			return User{}, err
		}
		hash, salt = &h, &sa
	}

	u := User{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Handle:    req.Handle,
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.repo.Update(ctx, tx, &u); err != nil {
			return err
		}
		if err := s.repo.UpdateCredential(ctx, tx, id, req.Username, hash, salt); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, tx, audit.EventUserUpdated, audit.EntityTypeUser, id)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Delete soft-deletes the account and records a USER_DELETED event. The row
// survives so past audit events keep a valid actor.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		deleted, err := s.repo.SoftDelete(ctx, tx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrUserNotFound
		}
		_, err = s.recorder.Record(ctx, tx, audit.EventUserDeleted, audit.EntityTypeUser, id)
		return err
	})
}

func hashPassword(password string) (hash, salt string, err error) {
	raw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("users: hash password: %w", err)
	}
	h := string(raw)
	return h, h[:bcryptSaltLen], nil
}
