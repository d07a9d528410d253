package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/auth"
	"github.com/finboard/finboard/internal/session"
	"github.com/finboard/finboard/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err, "Templates should parse without error")
	for _, name := range []string{
		"pages/login.html",
		"pages/dashboard.html",
		"pages/accounts.html",
		"pages/overdue_accounts.html",
		"pages/discrepancies.html",
		"pages/follow_ups.html",
		"pages/checks.html",
		"pages/ongoing_debts.html",
		"pages/placeholder.html",
		"pages/profile.html",
		"pages/pending.html",
		"pages/error.html",
	} {
		assert.True(t, engine.Has(name), name)
	}
	assert.False(t, engine.Has("pages/missing.html"))
}

func TestRenderAnonymousLayout(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.RenderStatus(rr, http.StatusTeapot, "pages/error.html", TemplateData{Title: "یافت نشد"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, `dir="rtl"`)
	assert.Contains(t, body, "یافت نشد")
	assert.NotContains(t, body, `action="/logout"`)
}

func TestRenderSignedInLayout(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	user := &auth.Profile{ID: 1, Username: "acc", FullName: "Sara", Role: auth.RoleAccounting}
	data := TemplateData{
		Title:       "placeholder",
		CSRFToken:   "tok",
		CurrentPath: "/tasks",
		User:        user,
		Nav:         Navigation(session.State{User: user}),
		Flash:       &shared.FlashMessage{Kind: "success", Message: "saved"},
		Data:        struct{ Heading string }{Heading: "لیست کارها"},
	}
	rr := httptest.NewRecorder()
	require.NoError(t, engine.Render(rr, "pages/placeholder.html", data))

	body := rr.Body.String()
	assert.Contains(t, body, `action="/logout"`)
	assert.Contains(t, body, `value="tok"`)
	assert.Contains(t, body, "Sara")
	assert.Contains(t, body, "saved")
	assert.Contains(t, body, `href="/accounts"`)
	assert.NotContains(t, body, `href="/users"`)
	assert.Regexp(t, `href="/tasks" class="active"`, body)
}

func TestRenderFailureWritesNothing(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	// accounts.html expects list data; a string has no Stats field.
	err = engine.Render(rr, "pages/accounts.html", TemplateData{Data: "oops"})
	assert.Error(t, err)
	assert.Zero(t, rr.Body.Len())

	assert.Error(t, engine.Render(rr, "pages/missing.html", TemplateData{}))

	var nilEngine *Engine
	assert.Error(t, nilEngine.Render(rr, "pages/login.html", TemplateData{}))
}

func TestNavigationFollowsCapabilities(t *testing.T) {
	paths := func(items []NavItem) string {
		var out []string
		for _, it := range items {
			out = append(out, it.Path)
		}
		return strings.Join(out, ",")
	}

	assert.Empty(t, Navigation(session.State{}))

	acc := Navigation(session.State{User: &auth.Profile{Role: auth.RoleAccounting}})
	assert.Equal(t, "/accounts,/overdue-accounts,/discrepancies,/follow-ups,/inventory-stats,/tasks,/payable-checks,/receivable-checks,/ongoing-debts", paths(acc))

	mgmt := Navigation(session.State{User: &auth.Profile{Role: auth.RoleManagement}})
	assert.True(t, strings.HasPrefix(paths(mgmt), "/dashboard,/users,/accounts"))
	assert.Len(t, mgmt, 11)
}

func TestNavActive(t *testing.T) {
	assert.True(t, navActive("/accounts", "/accounts"))
	assert.True(t, navActive("/accounts/7", "/accounts"))
	assert.False(t, navActive("/accounts-archive", "/accounts"))
}
