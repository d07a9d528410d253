package devapi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/finboard/finboard/internal/auth"
)

var errBadCredentials = errors.New("devapi: bad credentials")

type user struct {
	profile auth.Profile
	hash    []byte
}

// DemoUser seeds the directory.
type DemoUser struct {
	Username string
	Password string
	Email    string
	FullName string
	Role     auth.Role
}

// DemoUsers are the accounts available in the stub.
var DemoUsers = []DemoUser{
	{Username: "admin", Password: "admin123", Email: "admin@example.com", FullName: "مدیر سیستم", Role: auth.RoleManagement},
	{Username: "accounting", Password: "acc123", Email: "accounting@example.com", FullName: "حسابدار ارشد", Role: auth.RoleAccounting},
}

// directory holds users with bcrypt password hashes.
type directory struct {
	mu     sync.RWMutex
	byID   map[int64]*user
	byName map[string]*user
	cost   int
}

func newDirectory(seed []DemoUser, cost int, joined time.Time) (*directory, error) {
	d := &directory{
		byID:   make(map[int64]*user, len(seed)),
		byName: make(map[string]*user, len(seed)),
		cost:   cost,
	}
	for i, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("devapi: hash password of %s: %w", s.Username, err)
		}
		u := &user{
			profile: auth.Profile{
				ID:         int64(i + 1),
				Username:   s.Username,
				Email:      s.Email,
				FullName:   s.FullName,
				Role:       s.Role,
				IsActive:   true,
				DateJoined: joined,
			},
			hash: hash,
		}
		d.byID[u.profile.ID] = u
		d.byName[s.Username] = u
	}
	return d, nil
}

// Authenticate checks username and password.
func (d *directory) Authenticate(username, password string) (auth.Profile, error) {
	d.mu.RLock()
	u, ok := d.byName[username]
	d.mu.RUnlock()
	if !ok {
		return auth.Profile{}, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return auth.Profile{}, errBadCredentials
	}
	return u.profile, nil
}

// Get returns the profile of id.
func (d *directory) Get(id int64) (auth.Profile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byID[id]
	if !ok {
		return auth.Profile{}, false
	}
	return u.profile, true
}

// Update applies the non-nil fields of patch.
func (d *directory) Update(id int64, patch auth.ProfilePatch) (auth.Profile, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.byID[id]
	if !ok {
		return auth.Profile{}, false
	}
	if patch.Email != nil {
		u.profile.Email = *patch.Email
	}
	if patch.FullName != nil {
		u.profile.FullName = *patch.FullName
	}
	if patch.PhoneNumber != nil {
		u.profile.PhoneNumber = *patch.PhoneNumber
	}
	return u.profile, true
}

// CheckPassword verifies the current password of id.
func (d *directory) CheckPassword(id int64, password string) bool {
	d.mu.RLock()
	u, ok := d.byID[id]
	d.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(u.hash, []byte(password)) == nil
}

// SetPassword replaces the password hash of id.
func (d *directory) SetPassword(id int64, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return fmt.Errorf("devapi: hash password: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.byID[id]
	if !ok {
		return errBadCredentials
	}
	u.hash = hash
	return nil
}
