package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/session"
)

var _ session.Store = (*Session)(nil)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "finboard_session", time.Hour, false), mr
}

func roundTrip(t *testing.T, sm *SessionManager, cookies []*http.Cookie) *Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return sess
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	sess := roundTrip(t, sm, nil)
	sess.Set("access_token", "t1")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sess.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	assert.True(t, mr.Exists("session:"+sess.ID))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL("session:"+sess.ID).Seconds(), 1)

	loaded := roundTrip(t, sm, cookies)
	assert.False(t, loaded.IsNew())
	v, ok := loaded.Lookup("access_token")
	assert.True(t, ok)
	assert.Equal(t, "t1", v)
	_, ok = loaded.Lookup("user")
	assert.False(t, ok)
}

func TestReadOnlyRequestsSlideExpiry(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	sess := roundTrip(t, sm, nil)
	sess.Set("access_token", "t1")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookies := rec.Result().Cookies()

	for i := 0; i < 3; i++ {
		mr.FastForward(40 * time.Minute)
		loaded := roundTrip(t, sm, cookies)
		require.False(t, loaded.IsNew(), "request %d", i)
		v, ok := loaded.Lookup("access_token")
		require.True(t, ok)
		assert.Equal(t, "t1", v)

		rec = httptest.NewRecorder()
		require.NoError(t, sm.Commit(ctx, rec, loaded))
		assert.InDelta(t, time.Hour.Seconds(), mr.TTL("session:"+sess.ID).Seconds(), 1)
		refreshed := rec.Result().Cookies()
		require.Len(t, refreshed, 1)
		assert.Equal(t, sess.ID, refreshed[0].Value)
		assert.Equal(t, int(time.Hour.Seconds()), refreshed[0].MaxAge)
	}

	mr.FastForward(61 * time.Minute)
	assert.True(t, roundTrip(t, sm, cookies).IsNew())
}

func TestZeroTTLNeverExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := NewSessionManager(client, "finboard_session", 0, false)
	ctx := context.Background()

	sess := roundTrip(t, sm, nil)
	sess.Set("access_token", "t1")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	assert.Zero(t, mr.TTL("session:"+sess.ID))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, persistentCookieAge, cookies[0].MaxAge)

	mr.FastForward(365 * 24 * time.Hour)
	assert.False(t, roundTrip(t, sm, cookies).IsNew())
}

func TestAnonymousSessionIsNotStored(t *testing.T) {
	sm, mr := newTestManager(t)
	sess := roundTrip(t, sm, nil)
	session.Clear(sess)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rec, sess))
	assert.Empty(t, rec.Result().Cookies())
	assert.Empty(t, mr.Keys())
}

func TestDeleteOfAbsentKeyKeepsSessionClean(t *testing.T) {
	sess := &Session{values: map[string]string{"a": "1"}}
	sess.Delete("missing")
	assert.False(t, sess.dirty)
	sess.Delete("a")
	assert.True(t, sess.dirty)
	sess.dirty = false
	sess.Set("b", "2")
	sess.dirty = false
	sess.Set("b", "2")
	assert.False(t, sess.dirty)
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	sm, _ := newTestManager(t)
	stale := "8a7c31a4-64c8-4f1c-9d0b-7f1f6d7d1f00"
	sess := roundTrip(t, sm, []*http.Cookie{{Name: "finboard_session", Value: stale}})
	assert.True(t, sess.IsNew())
	assert.NotEqual(t, stale, sess.ID)

	garbage := roundTrip(t, sm, []*http.Cookie{{Name: "finboard_session", Value: "../../etc"}})
	assert.True(t, garbage.IsNew())
}

func TestCorruptPayloadStartsFreshSession(t *testing.T) {
	sm, mr := newTestManager(t)
	id := "8a7c31a4-64c8-4f1c-9d0b-7f1f6d7d1f00"
	require.NoError(t, mr.Set("session:"+id, "{broken"))

	sess := roundTrip(t, sm, []*http.Cookie{{Name: "finboard_session", Value: id}})
	assert.True(t, sess.IsNew())
}

func TestDestroyRemovesSessionAndCookie(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()
	sess := roundTrip(t, sm, nil)
	sess.Set("k", "v")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	sm.Destroy(sess)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	assert.False(t, mr.Exists("session:"+sess.ID))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRenewMovesSessionToNewID(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()
	sess := roundTrip(t, sm, nil)
	sess.Set("k", "v")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))
	oldID := sess.ID

	loaded := roundTrip(t, sm, []*http.Cookie{{Name: "finboard_session", Value: oldID}})
	sm.Renew(loaded)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), loaded))

	assert.NotEqual(t, oldID, loaded.ID)
	assert.False(t, mr.Exists("session:"+oldID))
	assert.True(t, mr.Exists("session:"+loaded.ID))
	assert.Equal(t, "v", loaded.Get("k"))
}

func TestFlashSurvivesUntilPopped(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()
	sess := roundTrip(t, sm, nil)
	sess.AddFlash(FlashMessage{Kind: "success", Message: "ذخیره شد"})
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	next := roundTrip(t, sm, rec.Result().Cookies())
	flash := next.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "ذخیره شد", flash.Message)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), next))

	after := roundTrip(t, sm, rec.Result().Cookies())
	assert.Nil(t, after.PopFlash())
}

func TestSessionContextRoundTrip(t *testing.T) {
	sess := &Session{ID: "x"}
	ctx := ContextWithSession(context.Background(), sess)
	assert.Same(t, sess, SessionFromContext(ctx))
	assert.Nil(t, SessionFromContext(context.Background()))
}
