package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	xoauth2 "golang.org/x/oauth2"
	fboauth2 "golang.org/x/oauth2/facebook"

	"passport-login/internal/auth"
	"passport-login/internal/auth/strategy"
	"passport-login/internal/config"
	"passport-login/internal/model"
)

const strategyName = "oauth2-facebook"

const graphProfileURL = "https://graph.facebook.com/v19.0/me"

var defaultProfileFields = []string{"id", "name", "email"}

var _ strategy.Strategy = (*Strategy)(nil)

// Strategy authenticates against Facebook: code exchange plus a Graph
// API profile fetch with explicit field selection.
type Strategy struct {
	oauthConfig   *xoauth2.Config
	profileFields []string
	identities    model.IdentityStore
}

func New(opts config.OAuth2Options, identities model.IdentityStore) *Strategy {
	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = []string{"email"}
	}

	return &Strategy{
		oauthConfig: &xoauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.CallbackURL,
			Endpoint:     fboauth2.Endpoint,
			Scopes:       scopes,
		},
		profileFields: defaultProfileFields,
		identities:    identities,
	}
}

func (s *Strategy) Name() string {
	return strategyName
}

func (s *Strategy) Authenticate(
	ctx context.Context,
	r *http.Request,
) (*auth.UserProfile, *auth.Redirect, error) {

	code := r.URL.Query().Get("code")
	if code == "" {
		state := r.URL.Query().Get("state")
		return nil, auth.NewRedirect(s.oauthConfig.AuthCodeURL(state)), nil
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: facebook token exchange failed: %w", auth.ErrProvider, err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.identities.FindOrCreateUser(ctx, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve user for facebook login: %w", err)
	}

	return auth.MapProfile(user), nil, nil
}

func (s *Strategy) fetchProfile(ctx context.Context, token *xoauth2.Token) (model.ProviderProfile, error) {
	q := url.Values{}
	q.Set("fields", strings.Join(s.profileFields, ","))

	resp, err := s.oauthConfig.Client(ctx, token).Get(graphProfileURL + "?" + q.Encode())
	if err != nil {
		return model.ProviderProfile{}, fmt.Errorf("%w: facebook profile request failed: %w", auth.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.ProviderProfile{}, fmt.Errorf("%w: facebook profile returned %d", auth.ErrProvider, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ProviderProfile{}, fmt.Errorf("%w: facebook profile read failed: %w", auth.ErrProvider, err)
	}

	var payload struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.ProviderProfile{}, fmt.Errorf("%w: facebook profile parse failed: %w", auth.ErrProvider, err)
	}

	if payload.ID == "" {
		return model.ProviderProfile{}, fmt.Errorf("%w: facebook profile missing id", auth.ErrProvider)
	}

	credentials, _ := json.Marshal(map[string]string{
		"accessToken": token.AccessToken,
		"tokenType":   token.TokenType,
	})

	return model.ProviderProfile{
		Provider:       strategyName,
		ProviderUserID: payload.ID,
		Email:          payload.Email,
		Name:           payload.Name,
		AuthScheme:     "oauth2",
		Raw:            raw,
		Credentials:    credentials,
	}, nil
}
