package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	xoauth2 "golang.org/x/oauth2"

	"passport-login/internal/auth"
	"passport-login/internal/auth/strategy"
	"passport-login/internal/config"
	"passport-login/internal/model"
)

const strategyName = "oauth2-google"

const issuerURL = "https://accounts.google.com"

var _ strategy.Strategy = (*Strategy)(nil)

// Strategy authenticates against Google via OIDC: the code exchange
// yields an id_token, which is verified and mined for identity claims
// instead of a separate userinfo round-trip.
type Strategy struct {
	oauthConfig *xoauth2.Config
	verifier    *oidc.IDTokenVerifier
	identities  model.IdentityStore
}

func New(
	ctx context.Context,
	opts config.OAuth2Options,
	identities model.IdentityStore,
) (*Strategy, error) {

	if opts.ClientID == "" || opts.ClientSecret == "" || opts.CallbackURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: opts.ClientID,
	})

	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauthCfg := &xoauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.CallbackURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       scopes,
	}

	return &Strategy{
		oauthConfig: oauthCfg,
		verifier:    verifier,
		identities:  identities,
	}, nil
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
		return nil, auth.NewRedirect(s.oauthConfig.AuthCodeURL(state, xoauth2.AccessTypeOnline)), nil
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: google token exchange failed: %w", auth.ErrProvider, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, nil, fmt.Errorf("%w: google did not return id_token", auth.ErrProvider)
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: google id_token verification failed: %w", auth.ErrProvider, err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, nil, fmt.Errorf("%w: google id_token claims parse failed: %w", auth.ErrProvider, err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, nil, fmt.Errorf("%w: google id_token missing required claims", auth.ErrProvider)
	}

	raw, _ := json.Marshal(claims)
	credentials, _ := json.Marshal(map[string]string{
		"accessToken": token.AccessToken,
		"tokenType":   token.TokenType,
	})

	user, err := s.identities.FindOrCreateUser(ctx, model.ProviderProfile{
		Provider:       strategyName,
		ProviderUserID: claims.Subject,
		Email:          claims.Email,
		Name:           claims.Name,
		AuthScheme:     "oauth2",
		Raw:            raw,
		Credentials:    credentials,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve user for google login: %w", err)
	}

	return auth.MapProfile(user), nil, nil
}
