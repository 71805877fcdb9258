package config

import "context"

type providersContextKeyType struct{}

var providersKey = providersContextKeyType{}

// WithProviders binds per-provider OAuth options into request-scoped
// context. The sequence does this before authentication so strategies
// can read registrations specific to the current request.
func WithProviders(ctx context.Context, p Providers) context.Context {
	return context.WithValue(ctx, providersKey, p)
}

// ProvidersFromContext extracts bound provider options, if any.
func ProvidersFromContext(ctx context.Context) (Providers, bool) {
	p, ok := ctx.Value(providersKey).(Providers)
	return p, ok
}
