package storage

import "github.com/poiesic/recallit/core"

// Scope carries the identity under which repository operations run.
// Request handlers construct a scope from the authenticated user, so
// repositories never return another user's records. Background tasks
// that must read rows regardless of owner use PrivilegedScope.
type Scope struct {
	UserId     core.ID
	privileged bool
}

// NewScope returns a scope bound to the given user.
func NewScope(userID core.ID) Scope {
	return Scope{UserId: userID}
}

// PrivilegedScope returns a scope that bypasses owner checks. It is
// reserved for internal pipelines operating on rows they created; it
// must never be built from request input.
func PrivilegedScope() Scope {
	return Scope{privileged: true}
}

// Privileged reports whether the scope bypasses owner checks.
func (s Scope) Privileged() bool {
	return s.privileged
}

// CanAccess reports whether a record owned by ownerID is visible
// under this scope.
func (s Scope) CanAccess(ownerID core.ID) bool {
	return s.privileged || s.UserId == ownerID
}
