// Package financialhttp serves the dashboard and the financial list pages.
package financialhttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finboard/finboard/internal/financial"
	"github.com/finboard/finboard/internal/rbac"
	"github.com/finboard/finboard/internal/session"
	"github.com/finboard/finboard/internal/shared"
	"github.com/finboard/finboard/internal/view"
)

// Reader is the data the pages display. *financial.Service implements it.
type Reader interface {
	Summary(ctx context.Context, v financial.Viewer) (financial.Summary, error)
	Accounts(ctx context.Context, v financial.Viewer) ([]financial.Account, error)
	OverdueAccounts(ctx context.Context, v financial.Viewer) ([]financial.OverdueAccount, error)
	Discrepancies(ctx context.Context, v financial.Viewer) ([]financial.Discrepancy, error)
	FollowUps(ctx context.Context, v financial.Viewer) ([]financial.FollowUp, error)
	PayableChecks(ctx context.Context, v financial.Viewer) ([]financial.PayableCheck, error)
	ReceivableChecks(ctx context.Context, v financial.Viewer) ([]financial.ReceivableCheck, error)
	OngoingDebts(ctx context.Context, v financial.Viewer) ([]financial.OngoingDebt, error)
}

var _ Reader = (*financial.Service)(nil)

// Handler exposes the financial pages.
type Handler struct {
	logger    *slog.Logger
	reader    Reader
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     rbac.Middleware
	now       func() time.Time
}

// NewHandler constructs the financial HTTP handler.
func NewHandler(logger *slog.Logger, reader Reader, templates *view.Engine, csrf *shared.CSRFManager, guard rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		reader:    reader,
		templates: templates,
		csrf:      csrf,
		guard:     guard,
		now:       time.Now,
	}
}

// MountRoutes registers the pages. Every route requires a signed-in user;
// capability gates follow the navigation menu.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuthenticated())
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, rbac.DefaultLandingPath, http.StatusSeeOther)
		})
		r.Get("/dashboard", h.dashboard)

		r.Group(func(r chi.Router) {
			r.Use(h.guard.RequireCapability(rbac.CapabilityManagement))
			r.Get("/users", h.placeholder(titleUsers))
		})

		r.Group(func(r chi.Router) {
			r.Use(h.guard.RequireCapability(rbac.CapabilityAccounting))
			r.Get("/accounts", h.accounts)
			r.Get("/overdue-accounts", h.overdueAccounts)
			r.Get("/discrepancies", h.discrepancies)
			r.Get("/follow-ups", h.followUps)
			r.Get("/checks", h.checks(""))
			r.Get("/payable-checks", h.checks(tabPayable))
			r.Get("/receivable-checks", h.checks(tabReceivable))
			r.Get("/ongoing-debts", h.ongoingDebts)
			r.Get("/inventory-stats", h.placeholder(titleInventory))
			r.Get("/tasks", h.placeholder(titleTasks))
		})
	})
}

// viewer resolves the signed-in user and credential, redirecting to login
// when either is missing.
func (h *Handler) viewer(w http.ResponseWriter, r *http.Request) (financial.Viewer, bool) {
	mgr := session.FromContext(r.Context())
	if mgr == nil {
		h.logger.ErrorContext(r.Context(), "session manager missing", slog.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return financial.Viewer{}, false
	}
	user := mgr.User()
	access, ok := mgr.AccessToken()
	if user == nil || !ok {
		http.Redirect(w, r, rbac.LoginLocation(r.URL.RequestURI()), http.StatusSeeOther)
		return financial.Viewer{}, false
	}
	return financial.Viewer{UserID: user.ID, Access: access}, true
}

func (h *Handler) today() financial.Date {
	return financial.Today(h.now())
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, payload any, pageErr string) {
	data, err := view.Page(r, h.csrf, title)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "prepare page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	data.Error = pageErr
	data.Data = payload
	if err := h.templates.RenderStatus(w, status, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "render page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// fail renders name with the generic backend error and status 502.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, name, title string, payload any, err error) {
	h.logger.WarnContext(r.Context(), "financial backend call failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	h.render(w, r, http.StatusBadGateway, name, title, payload, msgLoadFailed)
}

type placeholderPage struct {
	Heading string
}

func (h *Handler) placeholder(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusOK, "pages/placeholder.html", title, placeholderPage{Heading: title}, "")
	}
}
