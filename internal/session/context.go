package session

import "context"

type managerKey struct{}

// ContextWithManager stores the request's Manager in ctx.
func ContextWithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext returns the Manager stored in ctx, if any.
func FromContext(ctx context.Context) *Manager {
	if ctx == nil {
		return nil
	}
	m, _ := ctx.Value(managerKey{}).(*Manager)
	return m
}
