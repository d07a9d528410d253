package financial

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Viewer identifies whose data is read and with which credential.
type Viewer struct {
	UserID int64
	Access string
}

// Service serves the financial pages: backend reads behind a per-user cache,
// with concurrent identical reads collapsed into one.
type Service struct {
	client *Client
	cache  *Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewService constructs a Service. cache may be nil.
func NewService(client *Client, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, cache: cache, logger: logger}
}

// Summary returns the dashboard aggregates.
func (s *Service) Summary(ctx context.Context, v Viewer) (Summary, error) {
	return load(ctx, s, v, ResourceSummary, s.client.Summary)
}

// Accounts returns customer accounts.
func (s *Service) Accounts(ctx context.Context, v Viewer) ([]Account, error) {
	return load(ctx, s, v, ResourceAccounts, s.client.Accounts)
}

// OverdueAccounts returns overdue balances.
func (s *Service) OverdueAccounts(ctx context.Context, v Viewer) ([]OverdueAccount, error) {
	return load(ctx, s, v, ResourceOverdueAccounts, s.client.OverdueAccounts)
}

// Discrepancies returns reported discrepancies.
func (s *Service) Discrepancies(ctx context.Context, v Viewer) ([]Discrepancy, error) {
	return load(ctx, s, v, ResourceDiscrepancies, s.client.Discrepancies)
}

// FollowUps returns customer follow-ups.
func (s *Service) FollowUps(ctx context.Context, v Viewer) ([]FollowUp, error) {
	return load(ctx, s, v, ResourceFollowUps, s.client.FollowUps)
}

// PayableChecks returns issued checks.
func (s *Service) PayableChecks(ctx context.Context, v Viewer) ([]PayableCheck, error) {
	return load(ctx, s, v, ResourcePayableChecks, s.client.PayableChecks)
}

// ReceivableChecks returns received checks.
func (s *Service) ReceivableChecks(ctx context.Context, v Viewer) ([]ReceivableCheck, error) {
	return load(ctx, s, v, ResourceReceivableChecks, s.client.ReceivableChecks)
}

// OngoingDebts returns debts to creditors.
func (s *Service) OngoingDebts(ctx context.Context, v Viewer) ([]OngoingDebt, error) {
	return load(ctx, s, v, ResourceOngoingDebts, s.client.OngoingDebts)
}

// Invalidate drops the cached data of a user, e.g. at logout.
func (s *Service) Invalidate(ctx context.Context, userID int64) error {
	return s.cache.Invalidate(ctx, userID)
}

// load reads resource through the cache and the singleflight group. Cache
// failures degrade to a direct backend read; backend failures are returned
// unchanged.
func load[T any](ctx context.Context, s *Service, v Viewer, resource Resource, fetch func(context.Context, string) (T, error)) (T, error) {
	var zero T
	flightKey := string(resource) + ":" + strconv.FormatInt(v.UserID, 10)
	val, err, _ := doFlight(ctx, &s.group, flightKey, func(ctx context.Context) (any, error) {
		return readThrough(ctx, s, v, resource, func(ctx context.Context) (T, error) {
			return fetch(ctx, v.Access)
		})
	})
	if err != nil {
		return zero, err
	}
	out, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("financial: %s: unexpected result %T", resource, val)
	}
	return out, nil
}

func readThrough[T any](ctx context.Context, s *Service, v Viewer, resource Resource, fetch func(context.Context) (T, error)) (T, error) {
	if !s.cache.Enabled() {
		return fetch(ctx)
	}
	var (
		fetched bool
		value   T
		loadErr error
	)
	loader := func(ctx context.Context) (any, error) {
		fetched = true
		value, loadErr = fetch(ctx)
		return value, loadErr
	}

	key, err := s.cache.BuildKey(ctx, v.UserID, resource)
	if err == nil {
		var out T
		if err = s.cache.FetchJSON(ctx, key, &out, loader); err == nil {
			return out, nil
		}
	}
	if loadErr != nil {
		return value, loadErr
	}
	s.logger.WarnContext(ctx, "financial cache unavailable",
		slog.String("resource", string(resource)), slog.Any("error", err))
	if fetched {
		return value, nil
	}
	return fetch(ctx)
}

// doFlight runs fn once per key among concurrent callers while honouring the
// caller's context.
func doFlight(ctx context.Context, group *singleflight.Group, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	resultChan := group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
