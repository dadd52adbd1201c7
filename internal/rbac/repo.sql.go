package rbac

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations over the permission graph.
type Repository interface {
	PermittedActionsByUserID(ctx context.Context, userID int64) ([]string, error)
	ListRoles(ctx context.Context) ([]Role, error)
	ListScopes(ctx context.Context) ([]Scope, error)
	ListActions(ctx context.Context) ([]PermittedAction, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) (int64, error)
	CountScopesWithoutActions(ctx context.Context) (int64, error)
	CountRolesWithoutScopes(ctx context.Context) (int64, error)
	CountOrphanedCredentials(ctx context.Context) (int64, error)
}

// PGRepository implements Repository over PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// PermittedActionsByUserID traverses user → roles → scopes → actions in a
// single query. DISTINCT collapses actions reachable via multiple paths and
// the result comes back in ascending order.
func (r *PGRepository) PermittedActionsByUserID(ctx context.Context, userID int64) ([]string, error) {
	const query = `
		SELECT DISTINCT pa.name
		FROM permitted_actions pa
		JOIN scopes_to_permitted_actions stpa ON stpa.permitted_action_id = pa.id
		JOIN roles_to_scopes rts ON rts.scope_id = stpa.scope_id
		JOIN user_to_roles utr ON utr.role_id = rts.role_id
		WHERE utr.user_id = $1
		ORDER BY pa.name`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: resolve actions: %w", err)
	}
	defer rows.Close()
	actions := []string{}
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return actions, nil
}

// ListRoles returns all roles ordered by name.
func (r *PGRepository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ListScopes returns all scopes ordered by name.
func (r *PGRepository) ListScopes(ctx context.Context) ([]Scope, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM scopes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var scopes []Scope
	for rows.Next() {
		var scope Scope
		if err := rows.Scan(&scope.ID, &scope.Name); err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	return scopes, rows.Err()
}

// ListActions returns all permitted actions ordered by name.
func (r *PGRepository) ListActions(ctx context.Context) ([]PermittedAction, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM permitted_actions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var actions []PermittedAction
	for rows.Next() {
		var action PermittedAction
		if err := rows.Scan(&action.ID, &action.Name); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// AssignRole links a user to a role. Re-assigning is a no-op.
func (r *PGRepository) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_to_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, roleID)
	return err
}

// RemoveRole unlinks a user from a role, returning affected row count.
func (r *PGRepository) RemoveRole(ctx context.Context, userID, roleID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM user_to_roles WHERE user_id = $1 AND role_id = $2`,
		userID, roleID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountScopesWithoutActions finds scopes no longer granting anything.
func (r *PGRepository) CountScopesWithoutActions(ctx context.Context) (int64, error) {
	const query = `
		SELECT count(*) FROM scopes s
		WHERE NOT EXISTS (
			SELECT 1 FROM scopes_to_permitted_actions stpa WHERE stpa.scope_id = s.id
		)`
	return r.countQuery(ctx, query)
}

// CountRolesWithoutScopes finds roles no longer granting anything.
func (r *PGRepository) CountRolesWithoutScopes(ctx context.Context) (int64, error) {
	const query = `
		SELECT count(*) FROM roles ro
		WHERE NOT EXISTS (
			SELECT 1 FROM roles_to_scopes rts WHERE rts.role_id = ro.id
		)`
	return r.countQuery(ctx, query)
}

// CountOrphanedCredentials finds credential rows whose user was soft-deleted.
func (r *PGRepository) CountOrphanedCredentials(ctx context.Context) (int64, error) {
	const query = `
		SELECT count(*) FROM user_credentials uc
		JOIN users u ON u.id = uc.user_id
		WHERE u.deleted_at IS NOT NULL`
	return r.countQuery(ctx, query)
}

func (r *PGRepository) countQuery(ctx context.Context, query string) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

var _ Repository = (*PGRepository)(nil)
