package authhttp

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/finboard/finboard/internal/audit"
	"github.com/finboard/finboard/internal/auth"
	"github.com/finboard/finboard/internal/rbac"
	"github.com/finboard/finboard/internal/shared"
	"github.com/finboard/finboard/internal/view"
)

type loginForm struct {
	Username string `validate:"required,max=150"`
	Password string `validate:"required"`
	Next     string `validate:"-"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form loginForm, errs map[string]string) {
	form.Password = ""
	data, err := view.Page(r, h.csrf, titleLogin)
	if err != nil {
		h.pageFailed(w, r, err)
		return
	}
	data.Data = loginPageData{Form: form, Errors: errs}
	h.render(w, r, status, "pages/login.html", data)
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	mgr := h.manager(w, r)
	if mgr == nil {
		return
	}
	next := r.URL.Query().Get(rbac.NextParam)
	if mgr.IsAuthenticated() {
		http.Redirect(w, r, rbac.SafeNext(next), http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginForm{Next: next}, nil)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	mgr := h.manager(w, r)
	if mgr == nil {
		return
	}

	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue(rbac.NextParam),
	}
	if err := h.validator.Struct(form); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, form, validationMessages(err, loginMessages))
		return
	}

	if err := mgr.Login(r.Context(), form.Username, form.Password); err != nil {
		var authErr *auth.AuthenticationError
		if errors.As(err, &authErr) {
			h.observeLogin(audit.OutcomeRejected)
			h.record(r, audit.NewSessionEvent(audit.KindLogin, form.Username, audit.OutcomeRejected))
			h.renderLogin(w, r, http.StatusBadRequest, form, map[string]string{"general": authErr.Message})
			return
		}
		h.logger.WarnContext(r.Context(), "login failed", slog.String("username", form.Username), slog.Any("error", err))
		h.observeLogin(audit.OutcomeError)
		h.record(r, audit.NewSessionEvent(audit.KindLogin, form.Username, audit.OutcomeError))
		h.renderLogin(w, r, http.StatusBadGateway, form, map[string]string{"general": msgBackendUnavailable})
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Renew(sess)
	} else {
		h.logger.ErrorContext(r.Context(), "session missing during login")
	}
	h.addFlash(r, "success", msgWelcome)

	event := audit.NewSessionEvent(audit.KindLogin, form.Username, audit.OutcomeSuccess)
	if user := mgr.User(); user != nil {
		event.Role = user.Role.String()
	}
	h.observeLogin(audit.OutcomeSuccess)
	h.record(r, event)
	http.Redirect(w, r, rbac.SafeNext(form.Next), http.StatusSeeOther)
}

func (h *Handler) loginLimited(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Next:     r.PostFormValue(rbac.NextParam),
	}
	h.renderLogin(w, r, http.StatusTooManyRequests, form, map[string]string{"general": msgTooManyAttempts})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	mgr := h.manager(w, r)
	if mgr == nil {
		return
	}
	user := mgr.User()
	result := mgr.Logout(r.Context())
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess)
	}

	outcome := result.Outcome.String()
	h.observeLogout(outcome)
	if user != nil {
		if h.cache != nil {
			if err := h.cache.Invalidate(r.Context(), user.ID); err != nil {
				h.logger.WarnContext(r.Context(), "invalidate financial cache", slog.Int64("user_id", user.ID), slog.Any("error", err))
			}
		}
		event := audit.NewSessionEvent(audit.KindLogout, user.Username, outcome)
		event.Role = user.Role.String()
		h.record(r, event)
	}
	http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
}
