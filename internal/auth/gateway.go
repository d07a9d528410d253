// Package auth wraps the backend authentication endpoints and defines the user
// profile and role model.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/finboard/finboard/internal/platform/backend"
)

// Gateway is the contract the session manager depends on.
type Gateway interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
	Logout(ctx context.Context, refresh string) error
	FetchProfile(ctx context.Context, access string) (Profile, error)
	UpdateProfile(ctx context.Context, access string, patch ProfilePatch) (Profile, error)
	ChangePassword(ctx context.Context, access string, req PasswordChange) error
}

// HTTPGateway implements Gateway over the backend REST API.
type HTTPGateway struct {
	client *backend.Client
}

// NewGateway constructs an HTTPGateway.
func NewGateway(client *backend.Client) *HTTPGateway {
	return &HTTPGateway{client: client}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string  `json:"access"`
	Refresh string  `json:"refresh"`
	User    Profile `json:"user"`
}

// Login exchanges credentials for a token pair and profile. Rejections become
// *AuthenticationError, unreachable backends *backend.NetworkError.
func (g *HTTPGateway) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var resp loginResponse
	err := g.client.Do(ctx, backend.Request{
		Op:     "auth.login",
		Method: http.MethodPost,
		Path:   "/auth/login/",
		Body:   loginRequest{Username: username, Password: password},
	}, &resp)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			msg := apiErr.Message
			if msg == "" {
				msg = DefaultLoginFailureMessage
			}
			return LoginResult{}, &AuthenticationError{Message: msg, Status: apiErr.Status}
		}
		return LoginResult{}, err
	}
	if resp.Access == "" {
		return LoginResult{}, errors.New("auth: login response missing access token")
	}
	if err := resp.User.Validate(); err != nil {
		return LoginResult{}, fmt.Errorf("auth: login response: %w", err)
	}
	return LoginResult{
		Credentials: Credentials{Access: resp.Access, Refresh: resp.Refresh},
		Profile:     resp.User,
	}, nil
}

// Logout revokes the refresh credential.
func (g *HTTPGateway) Logout(ctx context.Context, refresh string) error {
	return g.client.Do(ctx, backend.Request{
		Op:     "auth.logout",
		Method: http.MethodPost,
		Path:   "/auth/logout/",
		Body:   map[string]string{"refresh": refresh},
	}, nil)
}

// FetchProfile loads the current user's profile.
func (g *HTTPGateway) FetchProfile(ctx context.Context, access string) (Profile, error) {
	var p Profile
	err := g.client.Do(ctx, backend.Request{
		Op:     "auth.profile",
		Method: http.MethodGet,
		Path:   "/auth/profile/",
		Token:  access,
	}, &p)
	if err != nil {
		return Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("auth: profile response: %w", err)
	}
	return p, nil
}

// UpdateProfile patches the editable fields and returns the stored profile.
// The profile endpoint omits is_active and date_joined; see MergeProfile.
func (g *HTTPGateway) UpdateProfile(ctx context.Context, access string, patch ProfilePatch) (Profile, error) {
	var p Profile
	err := g.client.Do(ctx, backend.Request{
		Op:     "auth.profile_update",
		Method: http.MethodPatch,
		Path:   "/auth/profile/",
		Token:  access,
		Body:   patch,
	}, &p)
	if err != nil {
		return Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("auth: profile response: %w", err)
	}
	return p, nil
}

// ChangePassword updates the password of the current user.
func (g *HTTPGateway) ChangePassword(ctx context.Context, access string, req PasswordChange) error {
	return g.client.Do(ctx, backend.Request{
		Op:     "auth.change_password",
		Method: http.MethodPost,
		Path:   "/auth/change-password/",
		Token:  access,
		Body:   req,
	}, nil)
}

var _ Gateway = (*HTTPGateway)(nil)
