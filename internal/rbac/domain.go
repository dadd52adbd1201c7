// Package rbac resolves the role → scope → permitted-action graph.
package rbac

// Role is a named grouping of scopes, assignable to users.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Scope is a named grouping of permitted actions.
type Scope struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PermittedAction is an atomic capability, e.g. "tweet:write".
type PermittedAction struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Core permitted actions seeded into the graph.
const (
	ActionTweetRead  = "tweet:read"
	ActionTweetWrite = "tweet:write"
	ActionUserRead   = "user:read"
	ActionUserWrite  = "user:write"
	ActionRBACAdmin  = "rbac:admin"
	ActionAuditRead  = "audit:read"
)

// IntegrityReport summarizes dangling rows in the permission graph.
type IntegrityReport struct {
	ScopesWithoutActions int64
	RolesWithoutScopes   int64
	OrphanedCredentials  int64
}

// Clean reports whether the graph has no dangling rows.
func (r IntegrityReport) Clean() bool {
	return r.ScopesWithoutActions == 0 && r.RolesWithoutScopes == 0 && r.OrphanedCredentials == 0
}
