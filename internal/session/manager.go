// Package session owns the authenticated-user state machine: bootstrap from
// the persisted store, login, logout and capability queries.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/finboard/finboard/internal/auth"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// State is the observable session snapshot.
type State struct {
	User    *auth.Profile `json:"user"`
	Loading bool          `json:"loading"`
}

// IsAuthenticated reports whether a user is signed in.
func (s State) IsAuthenticated() bool {
	return s.User != nil
}

// HasManagementAccess reports the management capability of the current user.
func (s State) HasManagementAccess() bool {
	return s.User != nil && s.User.Role.HasManagementAccess()
}

// HasAccountingAccess reports the accounting capability of the current user.
func (s State) HasAccountingAccess() bool {
	return s.User != nil && s.User.Role.HasAccountingAccess()
}

// LogoutOutcome describes what happened to the remote logout call.
type LogoutOutcome int

const (
	// LogoutRemoteOK means the backend revoked the refresh credential.
	LogoutRemoteOK LogoutOutcome = iota
	// LogoutRemoteSkipped means no refresh credential was held.
	LogoutRemoteSkipped
	// LogoutRemoteFailed means the backend call failed and was ignored.
	LogoutRemoteFailed
)

func (o LogoutOutcome) String() string {
	switch o {
	case LogoutRemoteOK:
		return "ok"
	case LogoutRemoteSkipped:
		return "skipped"
	case LogoutRemoteFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LogoutResult reports the remote part of a logout. Local teardown always
// happens, so the result is informational.
type LogoutResult struct {
	Outcome LogoutOutcome
	Err     error
}

// Manager drives one browser session over its Store.
type Manager struct {
	mu      sync.Mutex
	store   Store
	gateway auth.Gateway
	logger  *slog.Logger
	state   State
}

// New constructs a Manager in the bootstrapping state.
func New(store Store, gateway auth.Gateway, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:   store,
		gateway: gateway,
		logger:  logger,
		state:   State{Loading: true},
	}
}

// Bootstrap restores the session from the store. An access credential and a
// decodable profile are required; anything less clears all keys. The refresh
// credential is optional and nothing is verified against the backend.
func (m *Manager) Bootstrap(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	access, hasAccess := m.store.Lookup(KeyAccessToken)
	raw, hasUser := m.store.Lookup(KeyUser)
	if hasAccess && access != "" && hasUser {
		profile, err := auth.DecodeProfile(raw)
		if err == nil {
			m.state = State{User: &profile}
			return m.snapshot()
		}
		m.logger.WarnContext(ctx, "discarding corrupt session", slog.Any("error", err))
	} else if hasAccess || hasUser {
		m.logger.WarnContext(ctx, "discarding incomplete session",
			slog.Bool("access_token", hasAccess), slog.Bool("user", hasUser))
	}
	Clear(m.store)
	m.state = State{}
	return m.snapshot()
}

// Login authenticates against the backend and persists the credentials. On
// failure the state is unchanged and the gateway error is returned as is.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.gateway.Login(ctx, username, password)
	if err != nil {
		return err
	}
	encoded, err := auth.EncodeProfile(res.Profile)
	if err != nil {
		return fmt.Errorf("session: encode profile: %w", err)
	}
	m.store.Set(KeyAccessToken, res.Credentials.Access)
	if res.Credentials.Refresh != "" {
		m.store.Set(KeyRefreshToken, res.Credentials.Refresh)
	} else {
		m.store.Delete(KeyRefreshToken)
	}
	m.store.Set(KeyUser, encoded)

	profile := res.Profile
	m.state = State{User: &profile}
	return nil
}

// Logout revokes the refresh credential on a best-effort basis, then clears
// the store and drops the user regardless of the remote outcome.
func (m *Manager) Logout(ctx context.Context) LogoutResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := LogoutResult{Outcome: LogoutRemoteSkipped}
	if refresh, ok := m.store.Lookup(KeyRefreshToken); ok && refresh != "" {
		if err := m.gateway.Logout(ctx, refresh); err != nil {
			m.logger.WarnContext(ctx, "remote logout failed", slog.Any("error", err))
			result = LogoutResult{Outcome: LogoutRemoteFailed, Err: err}
		} else {
			result.Outcome = LogoutRemoteOK
		}
	}
	Clear(m.store)
	m.state = State{}
	return result
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// User returns a copy of the current profile, or nil.
func (m *Manager) User() *auth.Profile {
	return m.State().User
}

// IsAuthenticated reports whether a user is signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.State().IsAuthenticated()
}

// HasManagementAccess is false when unauthenticated.
func (m *Manager) HasManagementAccess() bool {
	return m.State().HasManagementAccess()
}

// HasAccountingAccess is false when unauthenticated.
func (m *Manager) HasAccountingAccess() bool {
	return m.State().HasAccountingAccess()
}

// AccessToken returns the persisted access credential of a signed-in user.
func (m *Manager) AccessToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken()
}

// ReloadProfile refreshes the user snapshot from the backend.
func (m *Manager) ReloadProfile(ctx context.Context) (auth.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	access, ok := m.accessToken()
	if !ok {
		return auth.Profile{}, ErrNotAuthenticated
	}
	fetched, err := m.gateway.FetchProfile(ctx, access)
	if err != nil {
		return auth.Profile{}, err
	}
	return m.replaceUser(fetched)
}

// UpdateProfile applies patch on the backend and stores the result.
func (m *Manager) UpdateProfile(ctx context.Context, patch auth.ProfilePatch) (auth.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	access, ok := m.accessToken()
	if !ok {
		return auth.Profile{}, ErrNotAuthenticated
	}
	updated, err := m.gateway.UpdateProfile(ctx, access, patch)
	if err != nil {
		return auth.Profile{}, err
	}
	return m.replaceUser(updated)
}

// ChangePassword forwards a password change for the signed-in user.
func (m *Manager) ChangePassword(ctx context.Context, req auth.PasswordChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	access, ok := m.accessToken()
	if !ok {
		return ErrNotAuthenticated
	}
	return m.gateway.ChangePassword(ctx, access, req)
}

func (m *Manager) accessToken() (string, bool) {
	if m.state.User == nil {
		return "", false
	}
	access, ok := m.store.Lookup(KeyAccessToken)
	if !ok || access == "" {
		return "", false
	}
	return access, true
}

func (m *Manager) replaceUser(fetched auth.Profile) (auth.Profile, error) {
	merged := auth.MergeProfile(*m.state.User, fetched)
	encoded, err := auth.EncodeProfile(merged)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("session: encode profile: %w", err)
	}
	m.store.Set(KeyUser, encoded)
	m.state = State{User: &merged}
	return merged, nil
}

func (m *Manager) snapshot() State {
	out := State{Loading: m.state.Loading}
	if m.state.User != nil {
		u := *m.state.User
		out.User = &u
	}
	return out
}

// Factory opens managers that share one gateway and logger. It is built once
// at process start and injected where sessions are needed.
type Factory struct {
	gateway auth.Gateway
	logger  *slog.Logger
}

// NewFactory constructs a Factory.
func NewFactory(gateway auth.Gateway, logger *slog.Logger) *Factory {
	return &Factory{gateway: gateway, logger: logger}
}

// Open returns a bootstrapping Manager over store.
func (f *Factory) Open(store Store) *Manager {
	return New(store, f.gateway, f.logger)
}
