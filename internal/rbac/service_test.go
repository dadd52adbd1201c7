package rbac

import (
	"context"
	"errors"
	"testing"
)

type stubGraphRepo struct {
	actionsByUser map[int64][]string
	assignments   map[[2]int64]bool
	orphanScopes  int64
	orphanRoles   int64
	orphanCreds   int64
	err           error
}

func (s *stubGraphRepo) PermittedActionsByUserID(ctx context.Context, userID int64) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.actionsByUser[userID], nil
}

func (s *stubGraphRepo) ListRoles(ctx context.Context) ([]Role, error) {
	return nil, s.err
}

func (s *stubGraphRepo) ListScopes(ctx context.Context) ([]Scope, error) {
	return nil, s.err
}

func (s *stubGraphRepo) ListActions(ctx context.Context) ([]PermittedAction, error) {
	return nil, s.err
}

func (s *stubGraphRepo) AssignRole(ctx context.Context, userID, roleID int64) error {
	if s.assignments == nil {
		s.assignments = make(map[[2]int64]bool)
	}
	s.assignments[[2]int64{userID, roleID}] = true
	return s.err
}

func (s *stubGraphRepo) RemoveRole(ctx context.Context, userID, roleID int64) (int64, error) {
	if s.assignments[[2]int64{userID, roleID}] {
		delete(s.assignments, [2]int64{userID, roleID})
		return 1, nil
	}
	return 0, nil
}

func (s *stubGraphRepo) CountScopesWithoutActions(ctx context.Context) (int64, error) {
	return s.orphanScopes, s.err
}

func (s *stubGraphRepo) CountRolesWithoutScopes(ctx context.Context) (int64, error) {
	return s.orphanRoles, s.err
}

func (s *stubGraphRepo) CountOrphanedCredentials(ctx context.Context) (int64, error) {
	return s.orphanCreds, s.err
}

func TestResolveActionsEmptyForRolelessUser(t *testing.T) {
	service := NewService(&stubGraphRepo{actionsByUser: map[int64][]string{}})
	actions, err := service.ResolveActions(context.Background(), 99)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if actions == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(actions) != 0 {
		t.Fatalf("expected no actions, got %v", actions)
	}
}

func TestResolveActionsReturnsOrderedSet(t *testing.T) {
	// The repository query carries the DISTINCT + ORDER BY contract; the
	// service must pass the result through untouched.
	service := NewService(&stubGraphRepo{actionsByUser: map[int64][]string{
		7: {"tweet:read", "tweet:write"},
	}})
	actions, err := service.ResolveActions(context.Background(), 7)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(actions) != 2 || actions[0] != "tweet:read" || actions[1] != "tweet:write" {
		t.Fatalf("unexpected actions %v", actions)
	}
}

func TestResolveActionsPropagatesError(t *testing.T) {
	service := NewService(&stubGraphRepo{err: errors.New("query failed")})
	if _, err := service.ResolveActions(context.Background(), 7); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAssignAndRemoveRole(t *testing.T) {
	repo := &stubGraphRepo{}
	service := NewService(repo)

	if err := service.AssignRole(context.Background(), 7, 1); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := service.RemoveRole(context.Background(), 7, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := service.RemoveRole(context.Background(), 7, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second removal, got %v", err)
	}
}

func TestAssignRoleValidatesIDs(t *testing.T) {
	service := NewService(&stubGraphRepo{})
	if err := service.AssignRole(context.Background(), 0, 1); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestCheckIntegrity(t *testing.T) {
	service := NewService(&stubGraphRepo{orphanScopes: 2, orphanRoles: 1})
	report, err := service.CheckIntegrity(context.Background())
	if err != nil {
		t.Fatalf("integrity: %v", err)
	}
	if report.Clean() {
		t.Fatalf("expected dirty report, got %+v", report)
	}
	if report.ScopesWithoutActions != 2 || report.RolesWithoutScopes != 1 || report.OrphanedCredentials != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	clean, err := NewService(&stubGraphRepo{}).CheckIntegrity(context.Background())
	if err != nil {
		t.Fatalf("integrity: %v", err)
	}
	if !clean.Clean() {
		t.Fatalf("expected clean report, got %+v", clean)
	}
}
