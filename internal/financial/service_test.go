package financial

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/platform/backend"
)

type countingBackend struct {
	calls  atomic.Int32
	status int
	delay  time.Duration
}

func (b *countingBackend) handler(w http.ResponseWriter, r *http.Request) {
	b.calls.Add(1)
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	if b.status != 0 {
		w.WriteHeader(b.status)
		return
	}
	_, _ = w.Write([]byte(accountsJSON))
}

func newTestService(t *testing.T, ttl time.Duration) (*Service, *countingBackend, *miniredis.Miniredis) {
	t.Helper()
	cb := &countingBackend{}
	srv := httptest.NewServer(http.HandlerFunc(cb.handler))
	t.Cleanup(srv.Close)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	svc := NewService(NewClient(backend.NewClient(srv.URL, 2*time.Second)), NewCache(rdb, ttl), nil)
	return svc, cb, mr
}

func TestServiceCachesPerUser(t *testing.T) {
	svc, cb, mr := newTestService(t, time.Minute)
	ctx := context.Background()
	alice := Viewer{UserID: 1, Access: "a"}

	first, err := svc.Accounts(ctx, alice)
	require.NoError(t, err)
	second, err := svc.Accounts(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int32(1), cb.calls.Load())
	require.Len(t, second, 1)
	assert.True(t, first[0].Balance.Equal(second[0].Balance))
	assert.True(t, mr.Exists("financial:accounts:1:1"))

	_, err = svc.Accounts(ctx, Viewer{UserID: 2, Access: "b"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), cb.calls.Load())

	require.NoError(t, svc.Invalidate(ctx, 1))
	_, err = svc.Accounts(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int32(3), cb.calls.Load())
	assert.True(t, mr.Exists("financial:accounts:1:2"))
}

func TestServiceZeroTTLDisablesCache(t *testing.T) {
	svc, cb, mr := newTestService(t, 0)
	ctx := context.Background()
	v := Viewer{UserID: 1, Access: "a"}

	for i := 0; i < 2; i++ {
		_, err := svc.Accounts(ctx, v)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), cb.calls.Load())
	assert.Empty(t, mr.Keys())
}

func TestServiceBackendErrorIsNotCached(t *testing.T) {
	svc, cb, mr := newTestService(t, time.Minute)
	cb.status = http.StatusBadGateway
	ctx := context.Background()

	_, err := svc.Accounts(ctx, Viewer{UserID: 1, Access: "a"})
	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.False(t, mr.Exists("financial:accounts:1:1"))
}

func TestServiceFallsBackWhenRedisIsDown(t *testing.T) {
	svc, cb, mr := newTestService(t, time.Minute)
	mr.Close()

	accounts, err := svc.Accounts(context.Background(), Viewer{UserID: 1, Access: "a"})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, int32(1), cb.calls.Load())
}

func TestServiceCollapsesConcurrentReads(t *testing.T) {
	svc, cb, _ := newTestService(t, 0)
	cb.delay = 100 * time.Millisecond
	v := Viewer{UserID: 1, Access: "a"}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Accounts(context.Background(), v)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, cb.calls.Load(), int32(5))
}

func TestServiceHonoursCallerContext(t *testing.T) {
	svc, cb, _ := newTestService(t, 0)
	cb.delay = 200 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Accounts(ctx, Viewer{UserID: 1, Access: "a"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
