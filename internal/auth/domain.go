package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownRole is returned when a role string is outside the closed set.
var ErrUnknownRole = errors.New("auth: unknown role")

// Role is the closed set of dashboard roles.
type Role int

const (
	// RoleManagement has full visibility.
	RoleManagement Role = iota + 1
	// RoleAccounting is scoped to financial operations.
	RoleAccounting
)

// ParseRole maps the backend wire value to a Role.
func ParseRole(raw string) (Role, error) {
	switch raw {
	case "management":
		return RoleManagement, nil
	case "accounting":
		return RoleAccounting, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

// String returns the wire value.
func (r Role) String() string {
	switch r {
	case RoleManagement:
		return "management"
	case RoleAccounting:
		return "accounting"
	default:
		return "unknown"
	}
}

// Label returns the localized display name.
func (r Role) Label() string {
	switch r {
	case RoleManagement:
		return "مدیریت"
	case RoleAccounting:
		return "حسابداری"
	default:
		return ""
	}
}

// HasManagementAccess reports whether the role grants management capability.
func (r Role) HasManagementAccess() bool {
	switch r {
	case RoleManagement:
		return true
	case RoleAccounting:
		return false
	default:
		return false
	}
}

// HasAccountingAccess reports whether the role grants accounting capability.
// Management implies accounting.
func (r Role) HasAccountingAccess() bool {
	switch r {
	case RoleManagement, RoleAccounting:
		return true
	default:
		return false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleManagement, RoleAccounting:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleManagement, RoleAccounting:
		return []byte(r.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Profile is the authenticated user snapshot. Values are never mutated in
// place; updates produce a new Profile.
type Profile struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	Role        Role      `json:"role"`
	IsActive    bool      `json:"is_active"`
	DateJoined  time.Time `json:"date_joined"`
}

// DisplayName prefers the full name and falls back to the username.
func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}

// EncodeProfile serializes a profile for the persisted store.
func EncodeProfile(p Profile) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeProfile parses a serialized profile. A missing or unknown role is an
// error.
func DecodeProfile(raw string) (Profile, error) {
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the invariants a profile must hold to back a session.
func (p Profile) Validate() error {
	if !p.Role.Valid() {
		return fmt.Errorf("%w: missing", ErrUnknownRole)
	}
	return nil
}

// MergeProfile returns fetched completed with the fields the profile endpoint
// does not serialize. A zero DateJoined marks such a narrow payload.
func MergeProfile(base, fetched Profile) Profile {
	if fetched.DateJoined.IsZero() {
		fetched.IsActive = base.IsActive
		fetched.DateJoined = base.DateJoined
	}
	return fetched
}

// Credentials is the opaque token pair issued at login.
type Credentials struct {
	Access  string
	Refresh string
}

// LoginResult is what the backend returns for a successful login.
type LoginResult struct {
	Credentials Credentials
	Profile     Profile
}

// ProfilePatch carries the editable profile fields; nil fields are untouched.
type ProfilePatch struct {
	Email       *string `json:"email,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// PasswordChange is the change-password request body.
type PasswordChange struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}
