package devapi

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

var (
	errTokenInvalid     = errors.New("devapi: token invalid")
	errTokenBlacklisted = errors.New("devapi: token blacklisted")
)

type tokenClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// tokenIssuer signs HS256 access and refresh tokens and keeps the refresh
// blacklist.
type tokenIssuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	mu          sync.Mutex
	blacklisted map[string]time.Time
}

func newTokenIssuer(key string, accessTTL, refreshTTL time.Duration) *tokenIssuer {
	return &tokenIssuer{
		key:         []byte(key),
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		now:         time.Now,
		blacklisted: make(map[string]time.Time),
	}
}

// Issue returns a fresh access and refresh token for userID.
func (t *tokenIssuer) Issue(userID int64) (access, refresh string, err error) {
	access, err = t.sign(userID, tokenAccess, t.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = t.sign(userID, tokenRefresh, t.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (t *tokenIssuer) sign(userID int64, kind string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := tokenClaims{
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("devapi: sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Parse verifies raw as a token of kind and returns its claims.
func (t *tokenIssuer) Parse(raw, kind string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.key, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errTokenInvalid, err)
	}
	if claims.TokenType != kind {
		return nil, fmt.Errorf("%w: want %s token", errTokenInvalid, kind)
	}
	if kind == tokenRefresh && t.isBlacklisted(claims.ID) {
		return nil, errTokenBlacklisted
	}
	return claims, nil
}

// UserID returns the subject of c.
func (c *tokenClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q", errTokenInvalid, c.Subject)
	}
	return id, nil
}

// Blacklist revokes a refresh token until it would have expired anyway.
func (t *tokenIssuer) Blacklist(c *tokenClaims) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for id, exp := range t.blacklisted {
		if !exp.After(now) {
			delete(t.blacklisted, id)
		}
	}
	exp := now.Add(t.refreshTTL)
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	t.blacklisted[c.ID] = exp
}

func (t *tokenIssuer) isBlacklisted(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.blacklisted[id]
	return ok
}
