// Package auth - routing.go implements the post-login route resolver: given a
// user's admin-ness and the path they were bounced away from before
// authenticating, decide where the SPA should land them.
package auth

import "strings"

// Area is one of the two top-level route partitions.
type Area string

const (
	AreaAdmin   Area = "admin"
	AreaTrainer Area = "trainer"
)

// Prefix returns the route prefix for the area, trailing slash included.
func (a Area) Prefix() string {
	if a == AreaAdmin {
		return "/admin/"
	}
	return "/trainer/"
}

// deniedReturnPaths are paths that must never be echoed back as a post-login
// destination. Kept as a single table so the loop-prevention policy is
// auditable in one place.
var deniedReturnPaths = map[string]bool{
	"/login":     true,
	"/forbidden": true,
}

// AreaFor returns the area a user belongs to.
func AreaFor(isAdmin bool) Area {
	if isAdmin {
		return AreaAdmin
	}
	return AreaTrainer
}

// DefaultRouteFor returns the landing path used when no return path is
// available or the return path is disallowed.
func DefaultRouteFor(isAdmin bool) string {
	return AreaFor(isAdmin).Prefix() + "workspaces"
}

// ResolvePostLoginPath computes where to send a user after login. A "from"
// path is honored only when it is not a denied auth/error page and its area
// prefix matches the user's area; anything else falls back to the default
// route. Pure and deterministic.
func ResolvePostLoginPath(isAdmin bool, from string) string {
	if from == "" {
		return DefaultRouteFor(isAdmin)
	}
	if deniedReturnPaths[from] {
		return DefaultRouteFor(isAdmin)
	}
	if !strings.HasPrefix(from, AreaFor(isAdmin).Prefix()) {
		return DefaultRouteFor(isAdmin)
	}
	return from
}
