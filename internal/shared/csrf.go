package shared

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const (
	// CSRFSessionKey is the session key holding the per-session nonce.
	CSRFSessionKey = "csrf_nonce"
	// CSRFFormField is the form field name carrying the CSRF token.
	CSRFFormField = "csrf_token"
	// CSRFHeader carries the token for non-form requests.
	CSRFHeader = "X-CSRF-Token"
)

var (
	// ErrCSRFTokenMissing means the request or the session lacks a token.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch means the token was not issued for this session.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// CSRFManager issues and verifies CSRF tokens bound to a session. The session
// stores a random nonce; pages receive its HMAC under the server secret.
type CSRFManager struct {
	secret []byte
	random io.Reader
}

// CSRFOption customises a CSRFManager.
type CSRFOption func(*CSRFManager)

// WithNonceSource replaces crypto/rand as the source of session nonces.
func WithNonceSource(r io.Reader) CSRFOption {
	return func(m *CSRFManager) {
		m.random = r
	}
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string, opts ...CSRFOption) *CSRFManager {
	m := &CSRFManager{secret: []byte(secret), random: rand.Reader}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureToken returns the token for sess, creating the nonce on first use.
func (m *CSRFManager) EnsureToken(sess *Session) (string, error) {
	if sess == nil {
		return "", ErrSessionMissing
	}
	nonce := sess.Get(CSRFSessionKey)
	if nonce == "" {
		buf := make([]byte, 32)
		if _, err := io.ReadFull(m.random, buf); err != nil {
			return "", fmt.Errorf("csrf nonce: %w", err)
		}
		nonce = base64.RawURLEncoding.EncodeToString(buf)
		sess.Set(CSRFSessionKey, nonce)
	}
	return m.sign(nonce), nil
}

// VerifyToken checks a submitted token against the session nonce.
func (m *CSRFManager) VerifyToken(sess *Session, token string) error {
	if sess == nil {
		return ErrCSRFTokenMissing
	}
	nonce := sess.Get(CSRFSessionKey)
	if nonce == "" || token == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(m.sign(nonce)), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) sign(nonce string) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
