package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	authhttp "github.com/finboard/finboard/internal/auth/http"
	financialhttp "github.com/finboard/finboard/internal/financial/http"
	"github.com/finboard/finboard/internal/observability"
	"github.com/finboard/finboard/internal/rbac"
	"github.com/finboard/finboard/internal/session"
	"github.com/finboard/finboard/internal/shared"
	"github.com/finboard/finboard/internal/view"
	"github.com/finboard/finboard/jobs"
	"github.com/finboard/finboard/web"
)

const (
	titleNotFound = "صفحه پیدا نشد"
	titlePending  = "در حال بارگیری"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	Sessions         *session.Factory
	CSRFManager      *shared.CSRFManager
	Guard            rbac.Middleware
	AuthHandler      *authhttp.Handler
	FinancialHandler *financialhttp.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewGuard builds the access-control middleware, rendering the loading page
// for sessions that are still bootstrapping.
func NewGuard(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, metrics *observability.Metrics) rbac.Middleware {
	guard := rbac.Middleware{Logger: logger}
	if metrics != nil {
		guard.Observer = metrics
	}
	if templates != nil {
		guard.Pending = renderPage(logger, templates, csrf, http.StatusServiceUnavailable, "pages/pending.html", titlePending)
	}
	return guard
}

// NewRouter constructs the chi router with the middleware stack and routes.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(web.StaticFiles())))
	r.Handle("/static/*", staticCacheHandler(fileServer))

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			Sessions:       params.Sessions,
			CSRFManager:    params.CSRFManager,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(r)
		}
		if params.FinancialHandler != nil {
			params.FinancialHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.Guard.RequireCapability(rbac.CapabilityManagement))
				params.JobHandler.MountRoutes(r)
			})
		}
		if params.Templates != nil {
			r.NotFound(renderPage(params.Logger, params.Templates, params.CSRFManager, http.StatusNotFound, "pages/error.html", titleNotFound).ServeHTTP)
		}
	})

	return r
}

func renderPage(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, status int, name, title string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		data, err := view.Page(r, csrf, title)
		if err != nil {
			logger.ErrorContext(r.Context(), "prepare page", slog.String("template", name), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err := templates.RenderStatus(w, status, name, data); err != nil {
			logger.ErrorContext(r.Context(), "render page", slog.String("template", name), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for one hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
