package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/finboard/finboard/internal/audit"
	jobmetrics "github.com/finboard/finboard/internal/jobs"
)

// EventStore persists session events.
type EventStore interface {
	Insert(ctx context.Context, e audit.SessionEvent) (bool, error)
}

// SessionAuditJob writes queued session events to the store.
type SessionAuditJob struct {
	Store   EventStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewSessionAuditJob wires dependencies for the audit handler.
func NewSessionAuditJob(store EventStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionAuditJob {
	return &SessionAuditJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes TaskSessionAudit tasks. Malformed payloads are not retried.
func (j *SessionAuditJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("session audit: handler not configured")
	}
	tracker := j.Metrics.Track(TaskSessionAudit)
	defer func() {
		err = tracker.End(err)
	}()

	e, decodeErr := DecodeSessionAudit(t)
	if decodeErr != nil {
		j.logger().Warn("drop malformed session audit", slog.Any("error", decodeErr))
		return fmt.Errorf("%v: %w", decodeErr, asynq.SkipRetry)
	}

	stored, err := j.Store.Insert(ctx, e)
	if err != nil {
		j.logger().Error("store session audit", slog.String("event_id", e.ID.String()), slog.Any("error", err))
		return err
	}
	if !stored {
		j.Metrics.AddDuplicate(TaskSessionAudit)
		j.logger().Debug("session audit already stored", slog.String("event_id", e.ID.String()))
	}
	return nil
}

// TaskHandler exposes the job for worker registration.
func (j *SessionAuditJob) TaskHandler() TaskHandler {
	return TaskHandler{Type: TaskSessionAudit, Handler: j.Handle}
}

func (j *SessionAuditJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
