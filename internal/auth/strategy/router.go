package strategy

import (
	"context"
	"net/http"

	"passport-login/internal/auth"
)

// ProviderNameParam is the query parameter carrying an explicit
// provider name. The sequence copies the provider path parameter here
// so routing can read it uniformly.
const ProviderNameParam = "oauth2-provider-name"

// GenericProviderName is the marker that selects the generic oauth2
// strategy rather than a provider-specific one.
const GenericProviderName = "oauth2"

// Router decides which strategy handles a request. An explicit
// provider name reroutes to the "oauth2-<name>" registration; otherwise
// the request's bound default strategy runs.
type Router struct {
	registry *Registry
}

func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

func (ro *Router) Authenticate(
	ctx context.Context,
	r *http.Request,
	fallback Strategy,
) (*auth.UserProfile, *auth.Redirect, error) {

	name := r.URL.Query().Get(ProviderNameParam)
	if name != "" && name != GenericProviderName {
		s, err := ro.registry.Get(GenericProviderName + "-" + name)
		if err != nil {
			return nil, nil, err
		}
		return s.Authenticate(ctx, r)
	}

	return fallback.Authenticate(ctx, r)
}
