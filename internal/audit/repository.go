package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finboard/finboard/internal/platform/db"
)

const uniqueViolation = "23505"

// Schema creates the session_events table.
const Schema = `
CREATE TABLE IF NOT EXISTS session_events (
	id          UUID PRIMARY KEY,
	kind        TEXT NOT NULL,
	username    TEXT NOT NULL,
	role        TEXT,
	outcome     TEXT NOT NULL,
	remote_addr TEXT,
	user_agent  TEXT,
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS session_events_username_idx ON session_events (username, occurred_at DESC);
`

const insertEvent = `INSERT INTO session_events (id, kind, username, role, outcome, remote_addr, user_agent, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const purgeEvents = `DELETE FROM session_events WHERE occurred_at < $1`

// Execer is the subset of pgx used to write events.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository stores session events in Postgres.
type Repository struct {
	db Execer
}

// NewRepository constructs a Repository over a pool or transaction.
func NewRepository(db Execer) *Repository {
	return &Repository{db: db}
}

// Insert stores e and reports whether a row was written. A duplicate id means
// an earlier delivery already stored the event; that is not an error.
func (r *Repository) Insert(ctx context.Context, e SessionEvent) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	_, err := r.db.Exec(ctx, insertEvent,
		e.ID,
		string(e.Kind),
		e.Username,
		optionalText(e.Role),
		e.Outcome,
		optionalText(e.RemoteAddr),
		optionalText(e.UserAgent),
		pgtype.Timestamptz{Time: e.OccurredAt.UTC(), Valid: true},
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, fmt.Errorf("audit: insert session event: %w", err)
	}
	return true, nil
}

// PurgeBefore deletes events older than cutoff and returns the number removed.
func (r *Repository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, purgeEvents, pgtype.Timestamptz{Time: cutoff.UTC(), Valid: true})
	if err != nil {
		return 0, fmt.Errorf("audit: purge session events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// EnsureSchema creates the table and index in one transaction.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, Schema)
		return err
	})
}

func optionalText(v string) pgtype.Text {
	return pgtype.Text{String: v, Valid: v != ""}
}
