package strategy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passport-login/internal/auth"
)

// stubStrategy records whether it ran and returns a fixed profile.
type stubStrategy struct {
	name   string
	called bool
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Authenticate(ctx context.Context, r *http.Request) (*auth.UserProfile, *auth.Redirect, error) {
	s.called = true
	return &auth.UserProfile{SecurityID: s.name}, nil, nil
}

func TestRegistry_Get(t *testing.T) {
	known := &stubStrategy{name: "oauth2-google"}
	registry := NewRegistry(known)

	got, err := registry.Get("oauth2-google")
	require.NoError(t, err)
	assert.Equal(t, known, got)

	_, err = registry.Get("oauth2-unknown")
	assert.ErrorIs(t, err, auth.ErrProviderNotFound)
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubStrategy{name: "oauth2-linkedin"})

	_, err := registry.Get("oauth2-linkedin")
	assert.NoError(t, err)
}

func TestRouter_Authenticate(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantCalled string // which strategy should run
		wantErr    error
	}{
		{
			name:       "no provider name falls through to default",
			query:      "",
			wantCalled: "default",
		},
		{
			name:       "generic marker falls through to default",
			query:      ProviderNameParam + "=oauth2",
			wantCalled: "default",
		},
		{
			name:       "explicit provider reroutes to extension",
			query:      ProviderNameParam + "=google",
			wantCalled: "oauth2-google",
		},
		{
			name:    "unregistered provider fails",
			query:   ProviderNameParam + "=linkedin",
			wantErr: auth.ErrProviderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			googleStrategy := &stubStrategy{name: "oauth2-google"}
			fallback := &stubStrategy{name: "default"}
			router := NewRouter(NewRegistry(googleStrategy))

			r := httptest.NewRequest(http.MethodGet, "/login?"+tt.query, nil)

			profile, redirect, err := router.Authenticate(context.Background(), r, fallback)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, googleStrategy.called)
				assert.False(t, fallback.called)
				return
			}

			require.NoError(t, err)
			assert.Nil(t, redirect)
			require.NotNil(t, profile)
			assert.Equal(t, tt.wantCalled, profile.SecurityID)
		})
	}
}
