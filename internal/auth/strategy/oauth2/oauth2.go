package oauth2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	xoauth2 "golang.org/x/oauth2"

	"passport-login/internal/auth"
	"passport-login/internal/auth/strategy"
	"passport-login/internal/config"
	"passport-login/internal/model"
)

var _ strategy.Strategy = (*Strategy)(nil)

// Strategy implements the generic OAuth2 code flow against an
// explicitly configured authorization/token/userinfo endpoint triple.
// Provider-specific strategies (google, facebook) override the profile
// fetch; everything else is this flow.
type Strategy struct {
	name       string
	opts       config.OAuth2Options
	identities model.IdentityStore
}

// New builds a generic strategy registered under the given name
// ("oauth2" for the default binding, "oauth2-<provider>" for
// extensions).
func New(name string, opts config.OAuth2Options, identities model.IdentityStore) *Strategy {
	return &Strategy{
		name:       name,
		opts:       opts,
		identities: identities,
	}
}

func (s *Strategy) Name() string {
	return s.name
}

// Authenticate runs the callback half of the code flow. Without a code
// parameter it instructs a redirect to the provider's authorization
// URL, preserving the caller's state parameter.
func (s *Strategy) Authenticate(
	ctx context.Context,
	r *http.Request,
) (*auth.UserProfile, *auth.Redirect, error) {

	cfg, userInfoURL := s.configFor(ctx)

	code := r.URL.Query().Get("code")
	if code == "" {
		state := r.URL.Query().Get("state")
		return nil, auth.NewRedirect(cfg.AuthCodeURL(state)), nil
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: token exchange failed: %w", auth.ErrProvider, err)
	}

	profile, err := fetchProfile(ctx, cfg, token, userInfoURL)
	if err != nil {
		return nil, nil, err
	}
	profile.Provider = s.name

	user, err := s.identities.FindOrCreateUser(ctx, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve user for %s login: %w", s.name, err)
	}

	return auth.MapProfile(user), nil, nil
}

// configFor prefers options bound into request-scoped context by the
// sequence over the startup registration.
func (s *Strategy) configFor(ctx context.Context) (*xoauth2.Config, string) {
	opts := s.opts
	if bound, ok := config.ProvidersFromContext(ctx); ok && bound.OAuth2.ClientID != "" {
		opts = bound.OAuth2
	}

	return &xoauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.CallbackURL,
		Scopes:       opts.Scopes,
		Endpoint: xoauth2.Endpoint{
			AuthURL:  opts.AuthURL,
			TokenURL: opts.TokenURL,
		},
	}, opts.UserInfoURL
}

// fetchProfile retrieves the provider's userinfo document with the
// exchanged token and normalizes it.
func fetchProfile(
	ctx context.Context,
	cfg *xoauth2.Config,
	token *xoauth2.Token,
	userInfoURL string,
) (model.ProviderProfile, error) {

	if userInfoURL == "" {
		return model.ProviderProfile{}, errors.New("userinfo url not configured")
	}

	resp, err := cfg.Client(ctx, token).Get(userInfoURL)
	if err != nil {
		return model.ProviderProfile{}, fmt.Errorf("%w: userinfo request failed: %w", auth.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.ProviderProfile{}, fmt.Errorf("%w: userinfo returned %d", auth.ErrProvider, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ProviderProfile{}, fmt.Errorf("%w: userinfo read failed: %w", auth.ErrProvider, err)
	}

	var payload struct {
		ID    string `json:"id"`
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Login string `json:"login"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.ProviderProfile{}, fmt.Errorf("%w: userinfo parse failed: %w", auth.ErrProvider, err)
	}

	providerUserID := payload.ID
	if providerUserID == "" {
		providerUserID = payload.Sub
	}
	if providerUserID == "" {
		return model.ProviderProfile{}, fmt.Errorf("%w: userinfo missing subject", auth.ErrProvider)
	}

	credentials, _ := json.Marshal(map[string]string{
		"accessToken": token.AccessToken,
		"tokenType":   token.TokenType,
	})

	return model.ProviderProfile{
		ProviderUserID: providerUserID,
		Email:          payload.Email,
		Name:           payload.Name,
		Username:       payload.Login,
		AuthScheme:     "oauth2",
		Raw:            raw,
		Credentials:    credentials,
	}, nil
}
