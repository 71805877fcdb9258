package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passport-login/internal/auth/strategy"
	"passport-login/internal/auth/strategy/local"
	"passport-login/internal/config"
	"passport-login/internal/logger"
	"passport-login/internal/middleware"
	"passport-login/internal/model"
	"passport-login/internal/sequence"
	"passport-login/internal/session"
	"passport-login/internal/token"
)

// memUserStore is an in-memory model.UserStore with the same
// duplicate-email semantics as the Postgres repository.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
	creds map[string]model.UserCredentials // by email
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		users: make(map[string]model.User),
		creds: make(map[string]model.UserCredentials),
	}
}

func (m *memUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := m.users[key]; ok {
		return model.User{}, model.ErrDuplicate
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	m.users[key] = user
	return user, nil
}

func (m *memUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (m *memUserStore) FindByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (m *memUserStore) CreateCredentials(ctx context.Context, creds model.UserCredentials) (model.UserCredentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == creds.UserID {
			key := strings.ToLower(u.Email)
			if _, ok := m.creds[key]; ok {
				return model.UserCredentials{}, model.ErrDuplicate
			}
			creds.ID = uuid.New()
			m.creds[key] = creds
			return creds, nil
		}
	}
	return model.UserCredentials{}, model.ErrNotFound
}

func (m *memUserStore) CredentialsByEmail(ctx context.Context, email string) (model.UserCredentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.creds[strings.ToLower(email)]
	if !ok {
		return model.UserCredentials{}, model.ErrNotFound
	}
	return c, nil
}

type testApp struct {
	engine       *gin.Engine
	users        *memUserStore
	sessionStore *session.MemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := newMemUserStore()
	sessionStore := session.NewMemoryStore()
	tokens := token.NewJWT("testsecret")
	log := logger.New(8)

	localStrategy := local.New(users)
	oauthStrategy := providerStub{}
	registry := strategy.NewRegistry(localStrategy, oauthStrategy)
	seq := sequence.New(strategy.NewRouter(registry), config.Providers{}, log)

	h := NewHandler(users, sessionStore, tokens, time.Hour, log)
	authMiddleware := middleware.NewAuthMiddleware(sessionStore)

	engine := gin.New()
	engine.POST("/signup", h.Signup)
	engine.POST("/login", seq.Authenticate(localStrategy), h.FinishLogin)
	engine.POST("/auth/logout", h.Logout)
	engine.GET("/auth/thirdparty/:provider",
		h.PrepareState, seq.Authenticate(oauthStrategy), h.FinishLogin)
	engine.GET("/auth/thirdparty/:provider/callback",
		h.ValidateState, seq.Authenticate(oauthStrategy), h.FinishLogin)

	web := engine.Group("/auth")
	web.Use(middleware.GinRequireAuth(authMiddleware))
	web.GET("/account", h.Account)

	api := engine.Group("/api")
	api.Use(middleware.GinRequireToken(tokens))
	api.GET("/me", h.Me)

	return &testApp{engine: engine, users: users, sessionStore: sessionStore}
}

func (a *testApp) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, r)
	return w
}

func formRequest(path string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func signupForm(email, password, name string) url.Values {
	return url.Values{
		"email":    {email},
		"password": {password},
		"name":     {name},
	}
}

func TestSignup_CreatesUserAndRedirects(t *testing.T) {
	app := newTestApp(t)

	w := app.do(formRequest("/signup", signupForm("a@b.com", "secret123", "A")))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	user, err := app.users.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "A", user.Name)

	creds, err := app.users.CredentialsByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, creds.UserID)
	assert.NotEqual(t, "secret123", creds.PasswordHash)
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	app := newTestApp(t)

	w := app.do(formRequest("/signup", signupForm("a@b.com", "secret123", "A")))
	require.Equal(t, http.StatusFound, w.Code)

	w = app.do(formRequest("/signup", signupForm("a@b.com", "othersecret", "A2")))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "user already exists")

	// no second record
	app.users.mu.Lock()
	defer app.users.mu.Unlock()
	assert.Len(t, app.users.users, 1)
	assert.Len(t, app.users.creds, 1)
}

func TestSignup_RejectsInvalidPayload(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing email", signupForm("", "secret123", "A")},
		{"bad email", signupForm("not-an-email", "secret123", "A")},
		{"short password", signupForm("a@b.com", "short", "A")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(formRequest("/signup", tt.form))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogin_PopulatesSessionWithSecurityID(t *testing.T) {
	app := newTestApp(t)

	require.Equal(t, http.StatusFound,
		app.do(formRequest("/signup", signupForm("a@b.com", "secret123", "A"))).Code)

	user, err := app.users.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)

	w := app.do(formRequest("/login", url.Values{
		"email":    {"a@b.com"},
		"password": {"secret123"},
	}))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/account", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	var sessionID string
	for _, c := range cookies {
		if c.Name == session.CookieName {
			sessionID = c.Value
		}
	}
	require.NotEmpty(t, sessionID, "login must issue a session cookie")

	sess, err := app.sessionStore.Get(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, user.ID.String(), sess.Profile.SecurityID)
	assert.Equal(t, "a@b.com", sess.Profile.Profile.Email)
}

func TestLogin_WrongCredentialsUnauthorized(t *testing.T) {
	app := newTestApp(t)

	require.Equal(t, http.StatusFound,
		app.do(formRequest("/signup", signupForm("a@b.com", "secret123", "A"))).Code)

	tests := []struct {
		name string
		form url.Values
	}{
		{"wrong password", url.Values{"email": {"a@b.com"}, "password": {"wrong-password"}}},
		{"unknown user", url.Values{"email": {"nobody@b.com"}, "password": {"secret123"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(formRequest("/login", tt.form))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAccount_RequiresSession(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/auth/account", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccount_ReturnsSessionProfile(t *testing.T) {
	app := newTestApp(t)

	require.Equal(t, http.StatusFound,
		app.do(formRequest("/signup", signupForm("a@b.com", "secret123", "A"))).Code)

	login := app.do(formRequest("/login", url.Values{
		"email":    {"a@b.com"},
		"password": {"secret123"},
	}))
	require.Equal(t, http.StatusFound, login.Code)

	r := httptest.NewRequest(http.MethodGet, "/auth/account", nil)
	for _, c := range login.Result().Cookies() {
		r.AddCookie(c)
	}

	w := app.do(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@b.com")
	assert.Contains(t, w.Body.String(), "securityId")
}

func TestLogin_JSONClientGetsToken(t *testing.T) {
	app := newTestApp(t)

	require.Equal(t, http.StatusFound,
		app.do(formRequest("/signup", signupForm("a@b.com", "secret123", "A"))).Code)

	r := formRequest("/login", url.Values{
		"email":    {"a@b.com"},
		"password": {"secret123"},
	})
	r.Header.Set("Accept", "application/json")

	w := app.do(r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Token)

	// the token works against the API surface
	me := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	me.Header.Set("Authorization", "Bearer "+payload.Token)

	w = app.do(me)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@b.com")
}

func TestMe_RejectsMissingOrBadToken(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.Header.Set("Authorization", "Bearer not.a.token")
	w = app.do(r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_DeletesSession(t *testing.T) {
	app := newTestApp(t)

	require.Equal(t, http.StatusFound,
		app.do(formRequest("/signup", signupForm("a@b.com", "secret123", "A"))).Code)

	login := app.do(formRequest("/login", url.Values{
		"email":    {"a@b.com"},
		"password": {"secret123"},
	}))
	require.Equal(t, http.StatusFound, login.Code)

	var sessionID string
	logout := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	for _, c := range login.Result().Cookies() {
		if c.Name == session.CookieName {
			sessionID = c.Value
			logout.AddCookie(c)
		}
	}
	require.NotEmpty(t, sessionID)

	w := app.do(logout)
	assert.Equal(t, http.StatusNoContent, w.Code)

	sess, err := app.sessionStore.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Nil(t, sess)

	// idempotent
	w = app.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
