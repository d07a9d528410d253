package devapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/finboard/finboard/internal/auth"
	"github.com/finboard/finboard/internal/financial"
	"github.com/finboard/finboard/internal/platform/httpx"
)

// Backend messages, matching the wording of the real service.
const (
	msgBadCredentials     = "نام کاربری یا رمز عبور اشتباه است."
	msgInactiveAccount    = "حساب کاربری غیرفعال است."
	msgCredentialsMissing = "نام کاربری و رمز عبور الزامی است."
	msgLoggedOut          = "با موفقیت خارج شدید."
	msgLogoutFailed       = "خطا در خروج"
	msgPasswordChanged    = "رمز عبور با موفقیت تغییر کرد."
	msgPasswordMismatch   = "رمز عبور جدید و تایید آن مطابقت ندارد."
	msgWrongOldPassword   = "رمز عبور فعلی اشتباه است."
	msgFieldRequired      = "This field is required."
	msgNotAuthenticated   = "Authentication credentials were not provided."
	msgTokenNotValid      = "Given token not valid for any token type"
	msgPermissionDenied   = "You do not have permission to perform this action."
	msgMalformedBody      = "JSON parse error"
)

// Options tunes a Server.
type Options struct {
	Logger *slog.Logger
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
	Users      []DemoUser
}

// Server serves the backend REST contract from memory.
type Server struct {
	logger *slog.Logger
	users  *directory
	tokens *tokenIssuer

	mu   sync.RWMutex
	data Dataset
}

type userIDKey struct{}

// NewServer seeds the users and the sample dataset.
func NewServer(cfg Config, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Users == nil {
		opts.Users = DemoUsers
	}
	if cfg.SigningKey == "" {
		return nil, errors.New("devapi: signing key must be provided")
	}
	now := opts.Now()
	users, err := newDirectory(opts.Users, opts.BcryptCost, now)
	if err != nil {
		return nil, err
	}
	tokens := newTokenIssuer(cfg.SigningKey, cfg.AccessTTL, cfg.RefreshTTL)
	tokens.now = opts.Now

	var authorID int64
	var authorName string
	if admin, ok := users.Get(1); ok {
		authorID, authorName = admin.ID, admin.DisplayName()
	}
	return &Server{
		logger: opts.Logger,
		users:  users,
		tokens: tokens,
		data:   SampleDataset(now, authorID, authorName),
	}, nil
}

// SetDataset replaces the served financial records.
func (s *Server) SetDataset(d Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = d
}

func (s *Server) dataset() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Routes returns the API mounted under /api.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login/", s.login)
			r.Post("/logout/", s.logout)
			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Get("/profile/", s.profile)
				r.Patch("/profile/", s.updateProfile)
				r.Put("/profile/", s.updateProfile)
				r.Post("/change-password/", s.changePassword)
			})
		})
		r.Route("/financial", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Use(s.requireAccounting)
			r.Get("/summary/", s.summary)
			r.Get("/accounts/", listHandler(s, func(d Dataset) any { return d.Accounts }))
			r.Get("/overdue-accounts/", listHandler(s, func(d Dataset) any { return d.OverdueAccounts }))
			r.Get("/discrepancies/", listHandler(s, func(d Dataset) any { return d.Discrepancies }))
			r.Get("/follow-ups/", listHandler(s, func(d Dataset) any { return d.FollowUps }))
			r.Get("/payable-checks/", listHandler(s, func(d Dataset) any { return d.PayableChecks }))
			r.Get("/receivable-checks/", listHandler(s, func(d Dataset) any { return d.ReceivableChecks }))
			r.Get("/ongoing-debts/", listHandler(s, func(d Dataset) any { return d.OngoingDebts }))
		})
	})
	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Refresh string       `json:"refresh"`
	Access  string       `json:"access"`
	User    auth.Profile `json:"user"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, detail(msgMalformedBody))
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.JSON(w, http.StatusBadRequest, nonFieldErrors(msgCredentialsMissing))
		return
	}
	profile, err := s.users.Authenticate(req.Username, req.Password)
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, nonFieldErrors(msgBadCredentials))
		return
	}
	if !profile.IsActive {
		httpx.JSON(w, http.StatusBadRequest, nonFieldErrors(msgInactiveAccount))
		return
	}
	access, refresh, err := s.tokens.Issue(profile.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "issue tokens", slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{Refresh: refresh, Access: access, User: profile})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": msgLogoutFailed})
		return
	}
	if req.Refresh != "" {
		claims, err := s.tokens.Parse(req.Refresh, tokenRefresh)
		if err != nil {
			httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": msgLogoutFailed})
			return
		}
		s.tokens.Blacklist(claims)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": msgLoggedOut})
}

// profileView is the narrow profile payload: no is_active, no date_joined.
type profileView struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	Role        auth.Role `json:"role"`
}

func newProfileView(p auth.Profile) profileView {
	return profileView{
		ID:          p.ID,
		Username:    p.Username,
		Email:       p.Email,
		FullName:    p.FullName,
		PhoneNumber: p.PhoneNumber,
		Role:        p.Role,
	}
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	p, ok := s.users.Get(currentUserID(r.Context()))
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, tokenNotValid())
		return
	}
	httpx.JSON(w, http.StatusOK, newProfileView(p))
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch auth.ProfilePatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.JSON(w, http.StatusBadRequest, detail(msgMalformedBody))
		return
	}
	p, ok := s.users.Update(currentUserID(r.Context()), patch)
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, tokenNotValid())
		return
	}
	httpx.JSON(w, http.StatusOK, newProfileView(p))
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req auth.PasswordChange
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, detail(msgMalformedBody))
		return
	}
	missing := map[string][]string{}
	for field, value := range map[string]string{
		"old_password":     req.OldPassword,
		"new_password":     req.NewPassword,
		"confirm_password": req.ConfirmPassword,
	} {
		if value == "" {
			missing[field] = []string{msgFieldRequired}
		}
	}
	if len(missing) > 0 {
		httpx.JSON(w, http.StatusBadRequest, missing)
		return
	}
	id := currentUserID(r.Context())
	if !s.users.CheckPassword(id, req.OldPassword) {
		httpx.JSON(w, http.StatusBadRequest, map[string][]string{"old_password": {msgWrongOldPassword}})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		httpx.JSON(w, http.StatusBadRequest, nonFieldErrors(msgPasswordMismatch))
		return
	}
	if err := s.users.SetPassword(id, req.NewPassword); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string][]string{"new_password": {err.Error()}})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": msgPasswordChanged})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, s.dataset().Summary())
}

type page struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// listHandler answers with a bare array, or with a paginated envelope when
// the request carries ?paginated=1.
func listHandler(s *Server, pick func(Dataset) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := pick(s.dataset())
		if r.URL.Query().Get("paginated") == "1" {
			httpx.JSON(w, http.StatusOK, page{Count: count(items), Results: items})
			return
		}
		httpx.JSON(w, http.StatusOK, items)
	}
}

func count(items any) int {
	switch v := items.(type) {
	case []financial.Account:
		return len(v)
	case []financial.OverdueAccount:
		return len(v)
	case []financial.Discrepancy:
		return len(v)
	case []financial.FollowUp:
		return len(v)
	case []financial.PayableCheck:
		return len(v)
	case []financial.ReceivableCheck:
		return len(v)
	case []financial.OngoingDebt:
		return len(v)
	default:
		return 0
	}
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			httpx.JSON(w, http.StatusUnauthorized, detail(msgNotAuthenticated))
			return
		}
		claims, err := s.tokens.Parse(strings.TrimSpace(raw), tokenAccess)
		if err != nil {
			httpx.JSON(w, http.StatusUnauthorized, tokenNotValid())
			return
		}
		id, err := claims.UserID()
		if err != nil {
			httpx.JSON(w, http.StatusUnauthorized, tokenNotValid())
			return
		}
		if _, ok := s.users.Get(id); !ok {
			httpx.JSON(w, http.StatusUnauthorized, tokenNotValid())
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAccounting(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.users.Get(currentUserID(r.Context()))
		if !ok || !p.Role.HasAccountingAccess() {
			httpx.JSON(w, http.StatusForbidden, detail(msgPermissionDenied))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUserID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey{}).(int64)
	return id
}

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

func nonFieldErrors(msg string) map[string][]string {
	return map[string][]string{"non_field_errors": {msg}}
}

func tokenNotValid() map[string]string {
	return map[string]string{"detail": msgTokenNotValid, "code": "token_not_valid"}
}
