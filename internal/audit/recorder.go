package audit

import (
	"context"
	"log/slog"
	"time"
)

// Recorder accepts session events without blocking the caller on failure.
type Recorder interface {
	Record(ctx context.Context, e SessionEvent)
}

// Enqueuer hands events to the background queue.
type Enqueuer interface {
	EnqueueSessionAudit(ctx context.Context, e SessionEvent) error
}

// QueueRecorder enqueues events; failures are logged and dropped.
type QueueRecorder struct {
	queue   Enqueuer
	logger  *slog.Logger
	timeout time.Duration
}

// NewQueueRecorder constructs a QueueRecorder.
func NewQueueRecorder(queue Enqueuer, logger *slog.Logger) *QueueRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueRecorder{queue: queue, logger: logger, timeout: 2 * time.Second}
}

// Record enqueues e with a short deadline detached from request cancellation.
func (r *QueueRecorder) Record(ctx context.Context, e SessionEvent) {
	if r == nil || r.queue == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.queue.EnqueueSessionAudit(ctx, e); err != nil {
		r.logger.WarnContext(ctx, "enqueue session audit",
			slog.String("kind", string(e.Kind)),
			slog.String("outcome", e.Outcome),
			slog.Any("error", err))
	}
}

// NopRecorder discards events.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, SessionEvent) {}

var (
	_ Recorder = (*QueueRecorder)(nil)
	_ Recorder = NopRecorder{}
)
