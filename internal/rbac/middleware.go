package rbac

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/finboard/finboard/internal/session"
)

// DenialObserver counts gate denials.
type DenialObserver interface {
	ObserveGuardDenial(gate, decision string)
}

// Middleware adapts the gates to HTTP handlers. The request context must
// carry the bootstrapped session.Manager.
type Middleware struct {
	Logger   *slog.Logger
	Observer DenialObserver
	// Pending renders the placeholder for unresolved sessions. Defaults to a
	// minimal self-refreshing page.
	Pending http.Handler
}

// RequireAuthenticated applies the authentication gate.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := m.state(r)
			decision := AuthenticationGate(state, r.URL.RequestURI())
			if m.enforce(w, r, "authentication", decision) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireCapability applies the capability gate. Used without
// RequireAuthenticated it applies the authentication gate first.
func (m Middleware) RequireCapability(required Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := m.state(r)
			if !m.enforce(w, r, "authentication", AuthenticationGate(state, r.URL.RequestURI())) {
				return
			}
			if m.enforce(w, r, "capability_"+required.String(), CapabilityGate(required, state)) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

func (m Middleware) state(r *http.Request) session.State {
	mgr := session.FromContext(r.Context())
	if mgr == nil {
		m.logger().ErrorContext(r.Context(), "rbac: no session manager in request context", slog.String("path", r.URL.Path))
		return session.State{Loading: true}
	}
	return mgr.State()
}

func (m Middleware) enforce(w http.ResponseWriter, r *http.Request, gate string, d Decision) bool {
	if d.Allowed() {
		return true
	}
	m.logger().DebugContext(r.Context(), "rbac: request denied",
		slog.String("gate", gate),
		slog.String("decision", d.Kind.String()),
		slog.String("path", r.URL.Path),
		slog.String("location", d.Location))
	if m.Observer != nil {
		m.Observer.ObserveGuardDenial(gate, d.Kind.String())
	}
	switch d.Kind {
	case DecisionRedirect:
		http.Redirect(w, r, d.Location, http.StatusSeeOther)
	case DecisionPending:
		w.Header().Set("Retry-After", "1")
		if m.Pending != nil {
			m.Pending.ServeHTTP(w, r)
			return false
		}
		writePending(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	}
	return false
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func writePending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = fmt.Fprintf(w, `<!doctype html><meta http-equiv="refresh" content="1;url=%s"><p>در حال بارگذاری...</p>`,
		html.EscapeString(r.URL.RequestURI()))
}
