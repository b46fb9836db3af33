// api/rbac/evaluator.go
package rbac

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/supplysight/sentinel/cache"
	"github.com/supplysight/sentinel/config"
	logger "github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/model"
)

const permissionKeyPrefix = "user_permissions_"

// defaultPrivilegedRoles are the coarse roles that require MFA when the
// deployment does not override authz.privilegedRoles.
var defaultPrivilegedRoles = map[string]struct{}{
	model.RoleAdmin:           {},
	model.RoleSecurityAdmin:   {},
	model.RoleComplianceAdmin: {},
}

func isPrivilegedRole(role string) bool {
	if configured := config.GetStringSlice("authz.privilegedRoles"); len(configured) > 0 {
		for _, r := range configured {
			if r == role {
				return true
			}
		}
		return false
	}
	_, ok := defaultPrivilegedRoles[role]
	return ok
}

// Evaluator answers authorization questions with a stable precedence rule,
// backed by the object cache to bound the cost of repeated checks. It is
// stateless aside from the cache it delegates to; every call is a single
// atomic decision.
//
// All failure paths resolve to deny. No error ever crosses the public API:
// an authorization check must never crash a request path, and when in
// doubt the evaluator denies rather than allows.
type Evaluator struct {
	directory Directory
	cache     *cache.ObjectCache
	ttl       time.Duration
}

// NewEvaluator builds an evaluator over the given directory and cache.
// permissionTTL bounds the staleness of cached permission sets; zero falls
// back to the cache's default TTL.
func NewEvaluator(directory Directory, objectCache *cache.ObjectCache, permissionTTL time.Duration) *Evaluator {
	return &Evaluator{
		directory: directory,
		cache:     objectCache,
		ttl:       permissionTTL,
	}
}

// HasPermission reports whether the user may perform an action at
// requiredLevel on resource, given the caller-supplied evaluation context.
// False is the uniform "access denied" signal; callers must not infer the
// reason from this call alone.
func (e *Evaluator) HasPermission(ctx context.Context, userID, resource string, requiredLevel model.PermissionLevel, evalCtx map[string]interface{}) bool {
	permissions := e.GetUserPermissions(ctx, userID)

	// Unconditioned wildcard grants short-circuit everything else.
	for _, p := range permissions {
		if p.IsWildcard() && len(p.Conditions) == 0 && p.Level.Satisfies(requiredLevel) {
			return true
		}
	}

	// Narrow to permissions covering the resource. Conditioned wildcards
	// participate here so their conditions are enforced like any other
	// grant's.
	var matching []model.Permission
	for _, p := range permissions {
		if p.IsWildcard() || p.Matches(resource) {
			matching = append(matching, p)
		}
	}
	if len(matching) == 0 {
		return false
	}

	for _, p := range matching {
		if p.Level.Satisfies(requiredLevel) && p.ConditionsMet(evalCtx) {
			return true
		}
	}
	return false
}

// GetUserPermissions returns the user's normalized permission set,
// consulting the cache first. On a miss it performs the two dependent
// directory lookups (user then persona), normalizes the result, appends
// role-synthesized grants, and caches the sequence. Callers must treat the
// returned slice as read-only.
//
// Any lookup failure degrades to an empty set rather than propagating:
// deny-all beats crashing the caller.
func (e *Evaluator) GetUserPermissions(ctx context.Context, userID string) []model.Permission {
	if userID == "" {
		return nil
	}

	key := permissionKeyPrefix + userID
	if cached, ok := cache.GetAs[[]model.Permission](e.cache, key); ok {
		return cached
	}

	user, err := e.directory.GetUser(ctx, userID)
	if err != nil {
		logger.Warn("Permission lookup failed, denying all",
			zap.Error(err),
			zap.String("userID", userID))
		return nil
	}

	var raw []model.RawPermission
	if user.PersonaID != "" {
		raw, err = e.directory.GetPersonaPermissions(ctx, user.PersonaID)
		if err != nil {
			logger.Warn("Persona lookup failed, denying all",
				zap.Error(err),
				zap.String("userID", userID),
				zap.String("personaID", user.PersonaID))
			return nil
		}
	}

	permissions := NormalizePermissions(raw)
	permissions = append(permissions, RolePermissions(user.Role)...)

	e.cache.Set(key, permissions, e.ttl)

	logger.Debug("Permission set loaded",
		zap.String("userID", userID),
		zap.String("personaID", user.PersonaID),
		zap.String("role", user.Role),
		zap.Int("permissions", len(permissions)))

	return permissions
}

// UserHasRole reports whether the user's coarse role equals requiredRole.
// Role reads go straight to the directory; they are assumed infrequent
// enough not to warrant caching.
func (e *Evaluator) UserHasRole(ctx context.Context, userID, requiredRole string) bool {
	user, err := e.directory.GetUser(ctx, userID)
	if err != nil {
		return false
	}
	return user.Role == requiredRole
}

// UserRequiresMFA reports whether the user's role is privileged enough to
// mandate multi-factor authentication.
func (e *Evaluator) UserRequiresMFA(ctx context.Context, userID string) bool {
	user, err := e.directory.GetUser(ctx, userID)
	if err != nil {
		return false
	}
	return isPrivilegedRole(user.Role)
}

// InvalidateCache drops the cached permission set for the user. Every code
// path that mutates a user's persona or role must call this synchronously
// after the mutation commits; the evaluator never invalidates proactively,
// so staleness is otherwise bounded only by the cache TTL.
func (e *Evaluator) InvalidateCache(userID string) {
	e.cache.Remove(permissionKeyPrefix + userID)
}

// InvalidatePersona drops the cached permission set of every user assigned
// to the persona. Used when a persona's declared permissions change.
func (e *Evaluator) InvalidatePersona(ctx context.Context, personaID string) {
	userIDs, err := e.directory.ListUserIDsByPersona(ctx, personaID)
	if err != nil {
		logger.Error("Failed to list users for persona invalidation",
			zap.Error(err),
			zap.String("personaID", personaID))
		return
	}
	for _, id := range userIDs {
		e.InvalidateCache(id)
	}
}

// CacheStats exposes the underlying cache diagnostics.
func (e *Evaluator) CacheStats() cache.Stats {
	return e.cache.Stats()
}
