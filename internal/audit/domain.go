// Package audit records sign-in activity: login successes and failures and
// logouts, delivered asynchronously to Postgres.
package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventKind distinguishes session events.
type EventKind string

const (
	KindLogin  EventKind = "login"
	KindLogout EventKind = "logout"
)

// Outcome values shared with the login and logout metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeOK       = "ok"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// SessionEvent is one audited session transition.
type SessionEvent struct {
	ID         uuid.UUID `json:"id"`
	Kind       EventKind `json:"kind"`
	Username   string    `json:"username"`
	Role       string    `json:"role,omitempty"`
	Outcome    string    `json:"outcome"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ErrInvalidEvent is returned for events missing required fields.
var ErrInvalidEvent = errors.New("audit: invalid session event")

// NewSessionEvent stamps an event with a fresh id and the current time.
func NewSessionEvent(kind EventKind, username, outcome string) SessionEvent {
	return SessionEvent{
		ID:         uuid.New(),
		Kind:       kind,
		Username:   username,
		Outcome:    outcome,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks the fields the store requires.
func (e SessionEvent) Validate() error {
	if e.ID == uuid.Nil || e.Kind == "" || e.Outcome == "" || e.OccurredAt.IsZero() {
		return ErrInvalidEvent
	}
	return nil
}
