package rbac

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Service orchestrates permission-graph operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service backed by the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ResolveActions returns the deduplicated, alphabetically ordered union of
// actions reachable from every role assigned to the user. A user with no
// roles gets an empty set. The result always reflects the current graph;
// nothing is cached between calls.
func (s *Service) ResolveActions(ctx context.Context, userID int64) ([]string, error) {
	actions, err := s.repo.PermittedActionsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actions == nil {
		actions = []string{}
	}
	return actions, nil
}

// ListRoles returns all roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// ListScopes returns all scopes ordered by name.
func (s *Service) ListScopes(ctx context.Context) ([]Scope, error) {
	return s.repo.ListScopes(ctx)
}

// ListActions returns all permitted actions ordered by name.
func (s *Service) ListActions(ctx context.Context) ([]PermittedAction, error) {
	return s.repo.ListActions(ctx)
}

// AssignRole grants a role to a user. Already-assigned roles are a no-op, so
// repeated grants cannot double-count actions.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	if userID <= 0 || roleID <= 0 {
		return fmt.Errorf("rbac: user and role ids must be positive")
	}
	return s.repo.AssignRole(ctx, userID, roleID)
}

// RemoveRole revokes a role from a user. Returns ErrNotFound when no
// assignment existed.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	removed, err := s.repo.RemoveRole(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// CheckIntegrity collects counts of dangling graph rows. The three checks
// are independent and run concurrently.
func (s *Service) CheckIntegrity(ctx context.Context) (IntegrityReport, error) {
	var report IntegrityReport
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.ScopesWithoutActions, err = s.repo.CountScopesWithoutActions(ctx)
		return err
	})
	g.Go(func() (err error) {
		report.RolesWithoutScopes, err = s.repo.CountRolesWithoutScopes(ctx)
		return err
	})
	g.Go(func() (err error) {
		report.OrphanedCredentials, err = s.repo.CountOrphanedCredentials(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return IntegrityReport{}, err
	}
	return report, nil
}
