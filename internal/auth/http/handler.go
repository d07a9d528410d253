// Package authhttp serves the login, logout, profile and session state
// endpoints.
package authhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/finboard/finboard/internal/audit"
	"github.com/finboard/finboard/internal/auth"
	"github.com/finboard/finboard/internal/platform/backend"
	"github.com/finboard/finboard/internal/platform/httpx"
	"github.com/finboard/finboard/internal/rbac"
	"github.com/finboard/finboard/internal/session"
	"github.com/finboard/finboard/internal/shared"
	"github.com/finboard/finboard/internal/view"
)

const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// SessionObserver counts login and logout outcomes.
type SessionObserver interface {
	ObserveLogin(outcome string)
	ObserveLogout(outcome string)
}

// CacheInvalidator drops cached backend data for a user.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID int64) error
}

// Config carries the handler's collaborators. Only Templates, Sessions and
// CSRF are required.
type Config struct {
	Logger    *slog.Logger
	Templates *view.Engine
	Sessions  *shared.SessionManager
	CSRF      *shared.CSRFManager
	Audit     audit.Recorder
	Metrics   SessionObserver
	Cache     CacheInvalidator
	// Guard protects the profile routes.
	Guard rbac.Middleware
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	sessions  *shared.SessionManager
	csrf      *shared.CSRFManager
	audit     audit.Recorder
	metrics   SessionObserver
	cache     CacheInvalidator
	guard     rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Audit
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Handler{
		logger:    logger,
		templates: cfg.Templates,
		sessions:  cfg.Sessions,
		csrf:      cfg.CSRF,
		audit:     recorder,
		metrics:   cfg.Metrics,
		cache:     cfg.Cache,
		guard:     cfg.Guard,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.With(httprate.Limit(loginRateLimit, loginRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(h.loginLimited),
	)).Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.sessionState)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuthenticated())
		r.Get("/profile", h.showProfile)
		r.Post("/profile", h.updateProfile)
		r.Post("/profile/password", h.changePassword)
	})
}

func (h *Handler) manager(w http.ResponseWriter, r *http.Request) *session.Manager {
	mgr := session.FromContext(r.Context())
	if mgr == nil {
		h.logger.ErrorContext(r.Context(), "session manager missing", slog.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
	return mgr
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data view.TemplateData) {
	if err := h.templates.RenderStatus(w, status, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "render page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) pageFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "prepare page", slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) addFlash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}

func (h *Handler) observeLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveLogin(outcome)
	}
}

func (h *Handler) observeLogout(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveLogout(outcome)
	}
}

func (h *Handler) record(r *http.Request, e audit.SessionEvent) {
	e.RemoteAddr = r.RemoteAddr
	e.UserAgent = r.UserAgent()
	h.audit.Record(r.Context(), e)
}

// validationMessages maps validator failures to form field messages.
func validationMessages(err error, messages map[string]string) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["general"] = msgInvalidInput
		return out
	}
	for _, fe := range verrs {
		key := fe.Field()
		if msg, ok := messages[key+"."+fe.Tag()]; ok {
			out[key] = msg
			continue
		}
		out[key] = msgInvalidInput
	}
	return out
}

// backendMessage returns the text to show for a failed backend call and the
// status to render with. Rejections carry the server's own message.
func backendMessage(err error) (string, int) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		if msg := apiErr.DisplayMessage(); msg != "" {
			return msg, http.StatusBadRequest
		}
		return msgInvalidInput, http.StatusBadRequest
	}
	return msgBackendUnavailable, http.StatusBadGateway
}

func (h *Handler) sessionState(w http.ResponseWriter, r *http.Request) {
	mgr := session.FromContext(r.Context())
	if mgr == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Session Unavailable", "")
		return
	}
	state := mgr.State()
	httpx.JSON(w, http.StatusOK, sessionResponse{
		User:                state.User,
		Loading:             state.Loading,
		IsAuthenticated:     state.IsAuthenticated(),
		HasManagementAccess: state.HasManagementAccess(),
		HasAccountingAccess: state.HasAccountingAccess(),
	})
}

type sessionResponse struct {
	User                *auth.Profile `json:"user"`
	Loading             bool          `json:"loading"`
	IsAuthenticated     bool          `json:"is_authenticated"`
	HasManagementAccess bool          `json:"has_management_access"`
	HasAccountingAccess bool          `json:"has_accounting_access"`
}
