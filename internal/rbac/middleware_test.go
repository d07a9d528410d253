package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/auth"
	"github.com/finboard/finboard/internal/session"
)

type mapStore map[string]string

func (m mapStore) Set(k, v string) { m[k] = v }
func (m mapStore) Lookup(k string) (string, bool) {
	v, ok := m[k]
	return v, ok
}
func (m mapStore) Delete(k string) { delete(m, k) }

type denials struct{ seen []string }

func (d *denials) ObserveGuardDenial(gate, decision string) {
	d.seen = append(d.seen, gate+":"+decision)
}

func managerFor(t *testing.T, role auth.Role, bootstrap bool) *session.Manager {
	t.Helper()
	store := mapStore{}
	if role != 0 {
		raw, err := auth.EncodeProfile(auth.Profile{ID: 1, Username: "u", Role: role})
		require.NoError(t, err)
		store[session.KeyAccessToken] = "t"
		store[session.KeyUser] = raw
	}
	m := session.New(store, nil, nil)
	if bootstrap {
		m.Bootstrap(context.Background())
	}
	return m
}

func serve(h http.Handler, m *session.Manager, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if m != nil {
		req = req.WithContext(session.ContextWithManager(req.Context(), m))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func TestRequireAuthenticated(t *testing.T) {
	obs := &denials{}
	mw := Middleware{Observer: obs}
	h := mw.RequireAuthenticated()(okHandler)

	rec := serve(h, managerFor(t, 0, true), "/accounts")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Faccounts", rec.Header().Get("Location"))

	rec = serve(h, managerFor(t, auth.RoleAccounting, false), "/accounts")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `http-equiv="refresh"`)

	rec = serve(h, managerFor(t, auth.RoleAccounting, true), "/accounts")
	assert.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, []string{"authentication:redirect", "authentication:pending"}, obs.seen)
}

func TestRequireCapability(t *testing.T) {
	obs := &denials{}
	mw := Middleware{Observer: obs}
	h := mw.RequireCapability(CapabilityManagement)(okHandler)

	rec := serve(h, managerFor(t, auth.RoleAccounting, true), "/users")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DefaultLandingPath, rec.Header().Get("Location"))

	rec = serve(h, managerFor(t, auth.RoleManagement, true), "/users")
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = serve(h, managerFor(t, 0, true), "/users")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fusers", rec.Header().Get("Location"))

	assert.Equal(t, []string{"capability_management:redirect", "authentication:redirect"}, obs.seen)

	acc := mw.RequireCapability(CapabilityAccounting)(okHandler)
	assert.Equal(t, http.StatusTeapot, serve(acc, managerFor(t, auth.RoleAccounting, true), "/accounts").Code)
}

func TestMissingManagerIsPending(t *testing.T) {
	var rendered bool
	mw := Middleware{Pending: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rendered = true
		w.WriteHeader(http.StatusServiceUnavailable)
	})}
	rec := serve(mw.RequireAuthenticated()(okHandler), nil, "/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, rendered)
}
