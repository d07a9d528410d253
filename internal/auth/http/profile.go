package authhttp

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/finboard/finboard/internal/auth"
	"github.com/finboard/finboard/internal/rbac"
	"github.com/finboard/finboard/internal/session"
	"github.com/finboard/finboard/internal/view"
)

type profileForm struct {
	Email       string `validate:"omitempty,email"`
	FullName    string `validate:"max=150"`
	PhoneNumber string `validate:"max=20"`
}

type passwordForm struct {
	OldPassword     string `validate:"required"`
	NewPassword     string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

type profilePageData struct {
	Profile        auth.Profile
	Form           profileForm
	Errors         map[string]string
	PasswordErrors map[string]string
}

func formFromProfile(p auth.Profile) profileForm {
	return profileForm{Email: p.Email, FullName: p.FullName, PhoneNumber: p.PhoneNumber}
}

func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, status int, page profilePageData, pageErr string) {
	data, err := view.Page(r, h.csrf, titleProfile)
	if err != nil {
		h.pageFailed(w, r, err)
		return
	}
	data.Error = pageErr
	data.Data = page
	h.render(w, r, status, "pages/profile.html", data)
}

// current returns the signed-in profile or redirects to login.
func (h *Handler) current(w http.ResponseWriter, r *http.Request, mgr *session.Manager) (auth.Profile, bool) {
	user := mgr.User()
	if user == nil {
		http.Redirect(w, r, rbac.LoginLocation(r.URL.RequestURI()), http.StatusSeeOther)
		return auth.Profile{}, false
	}
	return *user, true
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	mgr := h.manager(w, r)
	if mgr == nil {
		return
	}
	profile, err := mgr.ReloadProfile(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			http.Redirect(w, r, rbac.LoginLocation(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		h.logger.WarnContext(r.Context(), "reload profile", slog.Any("error", err))
		cached, ok := h.current(w, r, mgr)
		if !ok {
			return
		}
		h.renderProfile(w, r, http.StatusBadGateway, profilePageData{Profile: cached, Form: formFromProfile(cached)}, msgBackendUnavailable)
		return
	}
	h.renderProfile(w, r, http.StatusOK, profilePageData{Profile: profile, Form: formFromProfile(profile)}, "")
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	mgr := h.manager(w, r)
	if mgr == nil {
		return
	}
	profile, ok := h.current(w, r, mgr)
	if !ok {
		return
	}

	form := profileForm{
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		FullName:    strings.TrimSpace(r.PostFormValue("full_name")),
		PhoneNumber: strings.TrimSpace(r.PostFormValue("phone_number")),
	}
	page := profilePageData{Profile: profile, Form: form}
	if err := h.validator.Struct(form); err != nil {
		page.Errors = validationMessages(err, profileMessages)
		h.renderProfile(w, r, http.StatusBadRequest, page, "")
		return
	}

	patch := auth.ProfilePatch{Email: &form.Email, FullName: &form.FullName, PhoneNumber: &form.PhoneNumber}
	if _, err := mgr.UpdateProfile(r.Context(), patch); err != nil {
		h.logger.WarnContext(r.Context(), "update profile", slog.Any("error", err))
		msg, status := backendMessage(err)
		page.Errors = map[string]string{"general": msg}
		h.renderProfile(w, r, status, page, "")
		return
	}
	h.addFlash(r, "success", msgProfileUpdated)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	mgr := h.manager(w, r)
	if mgr == nil {
		return
	}
	profile, ok := h.current(w, r, mgr)
	if !ok {
		return
	}

	form := passwordForm{
		OldPassword:     r.PostFormValue("old_password"),
		NewPassword:     r.PostFormValue("new_password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	page := profilePageData{Profile: profile, Form: formFromProfile(profile)}
	if err := h.validator.Struct(form); err != nil {
		page.PasswordErrors = validationMessages(err, passwordMessages)
		h.renderProfile(w, r, http.StatusBadRequest, page, "")
		return
	}

	req := auth.PasswordChange{
		OldPassword:     form.OldPassword,
		NewPassword:     form.NewPassword,
		ConfirmPassword: form.ConfirmPassword,
	}
	if err := mgr.ChangePassword(r.Context(), req); err != nil {
		h.logger.WarnContext(r.Context(), "change password", slog.Any("error", err))
		msg, status := backendMessage(err)
		page.PasswordErrors = map[string]string{"general": msg}
		h.renderProfile(w, r, status, page, "")
		return
	}
	h.addFlash(r, "success", msgPasswordChanged)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
