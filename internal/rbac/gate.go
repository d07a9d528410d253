package rbac

import (
	"net/url"
	"strings"

	"github.com/finboard/finboard/internal/session"
)

const (
	// LoginPath is where unauthenticated requests are sent.
	LoginPath = "/login"
	// DefaultLandingPath is where users without a capability are sent.
	DefaultLandingPath = "/dashboard"
	// NextParam carries the originally requested location through login.
	NextParam = "next"
)

// AuthenticationGate decides on a request for requested given state.
func AuthenticationGate(state session.State, requested string) Decision {
	if state.Loading {
		return Decision{Kind: DecisionPending}
	}
	if !state.IsAuthenticated() {
		return Decision{Kind: DecisionRedirect, Location: LoginLocation(requested)}
	}
	return Decision{Kind: DecisionAllow}
}

// CapabilityGate decides whether state holds required. It assumes a resolved,
// authenticated session.
func CapabilityGate(required Capability, state session.State) Decision {
	if !required.GrantedBy(state) {
		return Decision{Kind: DecisionRedirect, Location: DefaultLandingPath}
	}
	return Decision{Kind: DecisionAllow}
}

// LoginLocation builds the login URL that returns to requested afterwards.
func LoginLocation(requested string) string {
	next := SafeNext(requested)
	if next == DefaultLandingPath {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{NextParam: {next}}.Encode()
}

// SafeNext returns raw when it is a local absolute path and the default
// landing path otherwise. Login pages never redirect back to themselves.
func SafeNext(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return DefaultLandingPath
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return DefaultLandingPath
	}
	if u.Path == LoginPath || u.Path == "/logout" {
		return DefaultLandingPath
	}
	return raw
}
