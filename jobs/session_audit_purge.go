package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/finboard/finboard/internal/jobs"
)

// EventPurger removes old session events.
type EventPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionAuditPurgeJob enforces the audit retention window.
type SessionAuditPurgeJob struct {
	Store     EventPurger
	Retention time.Duration
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	now       func() time.Time
}

// NewSessionAuditPurgeJob wires dependencies for the purge handler.
func NewSessionAuditPurgeJob(store EventPurger, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionAuditPurgeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionAuditPurgeJob{Store: store, Retention: retention, Logger: logger, Metrics: metrics, now: time.Now}
}

// Handle processes TaskSessionAuditPurge tasks.
func (j *SessionAuditPurgeJob) Handle(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("session audit purge: handler not configured")
	}
	if j.Retention <= 0 {
		return nil
	}
	tracker := j.Metrics.Track(TaskSessionAuditPurge)
	defer func() {
		err = tracker.End(err)
	}()

	cutoff := j.now().Add(-j.Retention)
	removed, err := j.Store.PurgeBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	j.Metrics.AddPurged(removed)
	j.Logger.Info("session audit purged", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
	return nil
}

// TaskHandler exposes the job for worker registration.
func (j *SessionAuditPurgeJob) TaskHandler() TaskHandler {
	return TaskHandler{Type: TaskSessionAuditPurge, Handler: j.Handle}
}

// Cron schedules the purge daily.
func (j *SessionAuditPurgeJob) Cron() CronRegistration {
	return CronRegistration{Spec: SessionAuditPurgeSpec, Task: NewSessionAuditPurgeTask()}
}
