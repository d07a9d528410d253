package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/finboard/finboard/internal/audit"
)

const (
	// QueueAudit carries session audit events.
	QueueAudit = "audit"
	// TaskSessionAudit stores one audit.SessionEvent.
	TaskSessionAudit = "session:audit"
	// TaskSessionAuditPurge deletes events past the retention window.
	TaskSessionAuditPurge = "session:audit:purge"
	// SessionAuditPurgeSpec runs the purge once a day.
	SessionAuditPurgeSpec = "@daily"

	sessionAuditMaxRetry = 10
	sessionAuditTimeout  = 10 * time.Second
	sessionAuditRetain   = time.Hour
)

// NewSessionAuditTask wraps e in an Asynq task. The event id doubles as the
// task id so a repeated enqueue of the same event is rejected by the queue.
func NewSessionAuditTask(e audit.SessionEvent) (*asynq.Task, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("jobs: encode session audit: %w", err)
	}
	return asynq.NewTask(TaskSessionAudit, data,
		asynq.Queue(QueueAudit),
		asynq.TaskID(e.ID.String()),
		asynq.MaxRetry(sessionAuditMaxRetry),
		asynq.Timeout(sessionAuditTimeout),
		asynq.Retention(sessionAuditRetain),
	), nil
}

// DecodeSessionAudit extracts the event carried by t.
func DecodeSessionAudit(t *asynq.Task) (audit.SessionEvent, error) {
	var e audit.SessionEvent
	if err := json.Unmarshal(t.Payload(), &e); err != nil {
		return audit.SessionEvent{}, err
	}
	return e, e.Validate()
}

// NewSessionAuditPurgeTask builds the periodic retention task.
func NewSessionAuditPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionAuditPurge, nil, asynq.Queue(QueueAudit), asynq.MaxRetry(3))
}
