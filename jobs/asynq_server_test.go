package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/audit"
)

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Queue: QueueAudit}, nil
}

func (s *stubEnqueuer) Close() error { return nil }

func TestClientEnqueueSessionAudit(t *testing.T) {
	stub := &stubEnqueuer{}
	client := &Client{client: stub}
	e := audit.NewSessionEvent(audit.KindLogout, "admin", audit.OutcomeOK)

	require.NoError(t, client.EnqueueSessionAudit(context.Background(), e))
	require.Len(t, stub.tasks, 1)
	assert.Equal(t, TaskSessionAudit, stub.tasks[0].Type())
}

func TestClientTreatsTaskIDConflictAsSuccess(t *testing.T) {
	client := &Client{client: &stubEnqueuer{err: asynq.ErrTaskIDConflict}}
	e := audit.NewSessionEvent(audit.KindLogin, "admin", audit.OutcomeSuccess)
	assert.NoError(t, client.EnqueueSessionAudit(context.Background(), e))
}

func TestClientReturnsEnqueueError(t *testing.T) {
	boom := errors.New("redis down")
	client := &Client{client: &stubEnqueuer{err: boom}}
	e := audit.NewSessionEvent(audit.KindLogin, "admin", audit.OutcomeSuccess)
	assert.ErrorIs(t, client.EnqueueSessionAudit(context.Background(), e), boom)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	assert.Error(t, err)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func serveHealth(t *testing.T, inspector QueueInspector) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Route("/jobs", NewHandler(inspector, nil).MountRoutes)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return rr
}

func TestHealthReportsQueueDepth(t *testing.T) {
	rr := serveHealth(t, stubInspector{info: &asynq.QueueInfo{Queue: QueueAudit, Pending: 3, Retry: 1, Processed: 9}})
	require.Equal(t, http.StatusOK, rr.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, queueHealth{Queue: QueueAudit, Pending: 3, Retry: 1, Processed: 9}, body)
}

func TestHealthMissingQueueIsEmpty(t *testing.T) {
	rr := serveHealth(t, stubInspector{err: asynq.ErrQueueNotFound})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"pending":0`)
}

func TestHealthInspectorFailure(t *testing.T) {
	rr := serveHealth(t, stubInspector{err: errors.New("dial tcp: refused")})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHealthWithoutInspector(t *testing.T) {
	rr := serveHealth(t, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
