// Package guard decides what a route renders based on auth state. It is a
// pure function of the state so navigation logic stays testable.
package guard

// RouteKind classifies a route by its auth requirement.
type RouteKind int

const (
	// RouteProtected requires a signed-in user.
	RouteProtected RouteKind = iota
	// RouteAuth is the sign-in and sign-up flow, for signed-out users only.
	RouteAuth
	// RouteOpen renders regardless of auth state.
	RouteOpen
)

// Decision is the guard outcome.
type Decision int

const (
	// Wait holds rendering until the session restore finishes.
	Wait Decision = iota
	// Allow renders the route.
	Allow
	// RedirectSignIn sends a signed-out user to the auth flow.
	RedirectSignIn
	// RedirectHome sends a signed-in user away from the auth flow.
	RedirectHome
)

// Decide resolves what the route should do. While the initial session
// restore is loading, everything but open routes waits so the user is not
// bounced to sign-in and back.
func Decide(kind RouteKind, signedIn, loading bool) Decision {
	if kind == RouteOpen {
		return Allow
	}
	if loading {
		return Wait
	}
	switch kind {
	case RouteProtected:
		if !signedIn {
			return RedirectSignIn
		}
	case RouteAuth:
		if signedIn {
			return RedirectHome
		}
	}
	return Allow
}
