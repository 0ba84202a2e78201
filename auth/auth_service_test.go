package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-enrollment-client/auth"
	"github.com/jrsteele09/go-enrollment-client/httpclient"
	apperrors "github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/jrsteele09/go-enrollment-client/storage/repofake"
	"github.com/jrsteele09/go-enrollment-client/token"
	"github.com/jrsteele09/go-enrollment-client/token/refresh"
	"github.com/jrsteele09/go-enrollment-client/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testIdentifier = "ana@school.edu"
	testPassword   = "password123"
)

type fakeRedirector struct {
	mu         sync.Mutex
	logins     []string
	dashboards []users.RoleType
}

func (f *fakeRedirector) RedirectToLogin(message string, showToast bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, message)
}

func (f *fakeRedirector) RedirectToDashboard(role users.RoleType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dashboards = append(f.dashboards, role)
}

func (f *fakeRedirector) Logins() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.logins...)
}

func (f *fakeRedirector) Dashboards() []users.RoleType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]users.RoleType{}, f.dashboards...)
}

// testFixture holds all test dependencies
type testFixture struct {
	server       *httptest.Server
	repo         *repofake.FakeStorageRepo
	store        *token.Store
	redirector   *fakeRedirector
	service      *auth.Service
	refreshToken string // Token handed out by the refresh endpoint; empty means 401
	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32
}

func testProfile() *users.Profile {
	return &users.Profile{
		ID:        "u-1",
		FirstName: "Ana",
		LastName:  "Reyes",
		Email:     testIdentifier,
		Role:      users.RoleStudent,
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "u-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{
		repo:       repofake.NewFakeStorageRepo(),
		redirector: &fakeRedirector{},
	}
	loginToken := signedToken(t, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds auth.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Identifier != testIdentifier || creds.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "opaque", Path: "/", HttpOnly: true, MaxAge: 3600})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"accessToken": loginToken, "user": testProfile()},
		})
	})
	mux.HandleFunc("POST /api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if f.refreshToken == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": f.refreshToken})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "", Path: "/", MaxAge: -1})
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	log := zerolog.Nop()
	jar, err := httpclient.NewCookieJar(context.Background(), f.repo, log)
	require.NoError(t, err)

	f.store = token.NewStore(f.repo, log)
	raw, err := httpclient.New(f.server.URL+"/api", &http.Client{Jar: jar}, log)
	require.NoError(t, err)
	coordinator := refresh.New(raw, f.store, f.redirector, "", log)
	f.store.OnClear(coordinator.Forget)

	transport := httpclient.Chain(http.DefaultTransport,
		httpclient.AuthInterceptor(f.store, coordinator, f.server.URL+"/api", []string{"/auth/login", "/auth/refresh-token", "/auth/logout"}, log))
	api, err := httpclient.New(f.server.URL+"/api", &http.Client{Transport: transport, Jar: jar}, log)
	require.NoError(t, err)

	f.service = auth.NewService(api, f.store, coordinator, f.redirector, auth.Paths{}, log)
	return f
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	profile, err := f.service.Login(ctx, auth.Credentials{Identifier: "  " + testIdentifier + " ", Password: testPassword})

	require.NoError(t, err)
	require.Equal(t, testProfile(), profile)
	require.True(t, f.service.IsAuthenticated(ctx))
	require.Equal(t, testProfile(), f.service.CurrentUser(ctx))
	require.Equal(t, []users.RoleType{users.RoleStudent}, f.redirector.Dashboards())

	role, err := f.repo.Get(ctx, token.UserRoleKey)
	require.NoError(t, err)
	require.Equal(t, "student", role)

	_, err = f.repo.Get(ctx, httpclient.CookieStorageKey)
	require.NoError(t, err, "refresh cookie should be persisted")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	_, err := f.service.Login(ctx, auth.Credentials{Identifier: testIdentifier, Password: "wrong"})

	var httpErr *httpclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Status)
	require.Equal(t, "Invalid credentials", httpErr.Message)
	require.Equal(t, int32(0), f.refreshCalls.Load(), "a rejected login must not trigger a refresh")
	require.False(t, f.service.IsAuthenticated(ctx))
	require.Empty(t, f.redirector.Dashboards())
	require.Empty(t, f.redirector.Logins())
}

func TestLogin_ValidatesCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds auth.Credentials
		want  error
	}{
		{name: "blank identifier", creds: auth.Credentials{Identifier: "   ", Password: "x"}, want: auth.MissingIdentifierErr},
		{name: "empty password", creds: auth.Credentials{Identifier: "2021-0042"}, want: auth.MissingPasswordErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			_, err := f.service.Login(context.Background(), tt.creds)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin_InvalidResponse(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"accessToken":"abc"}}`))
	}))
	t.Cleanup(srv.Close)

	store := token.NewStore(repofake.NewFakeStorageRepo(), zerolog.Nop())
	client, err := httpclient.New(srv.URL, &http.Client{}, zerolog.Nop())
	require.NoError(t, err)
	redirector := &fakeRedirector{}
	service := auth.NewService(client, store, nil, redirector, auth.Paths{}, zerolog.Nop())

	_, err = service.Login(ctx, auth.Credentials{Identifier: testIdentifier, Password: testPassword})

	require.ErrorIs(t, err, apperrors.ErrInvalidLoginResponse)
	require.False(t, store.IsAuthenticated(ctx))
	require.Empty(t, redirector.Dashboards())
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	_, err := f.service.Login(ctx, auth.Credentials{Identifier: testIdentifier, Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx))

	require.Equal(t, int32(1), f.logoutCalls.Load())
	require.False(t, f.service.IsAuthenticated(ctx))
	require.Nil(t, f.service.CurrentUser(ctx))
	require.Equal(t, []string{auth.MessageLoggedOut}, f.redirector.Logins())
	_, err = f.repo.Get(ctx, httpclient.CookieStorageKey)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLogout_BackendUnreachable(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	_, err := f.service.Login(ctx, auth.Credentials{Identifier: testIdentifier, Password: testPassword})
	require.NoError(t, err)
	f.server.Close()

	require.NoError(t, f.service.Logout(ctx))

	require.False(t, f.service.IsAuthenticated(ctx))
	_, err = f.repo.Get(ctx, token.AccessTokenKey)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, []string{auth.MessageLoggedOut}, f.redirector.Logins())
}

func TestRestore(t *testing.T) {
	t.Run("no stored profile", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Restore(context.Background())
		require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
		require.Equal(t, int32(0), f.refreshCalls.Load())
	})

	t.Run("valid token", func(t *testing.T) {
		ctx := context.Background()
		f := setupTestFixture(t)
		require.NoError(t, f.store.Establish(ctx, signedToken(t, time.Now().Add(time.Hour)), testProfile()))

		profile, err := f.service.Restore(ctx)

		require.NoError(t, err)
		require.Equal(t, testProfile(), profile)
		require.Equal(t, int32(0), f.refreshCalls.Load())
	})

	t.Run("expired token is refreshed", func(t *testing.T) {
		ctx := context.Background()
		f := setupTestFixture(t)
		fresh := signedToken(t, time.Now().Add(time.Hour))
		f.refreshToken = fresh
		require.NoError(t, f.store.Establish(ctx, signedToken(t, time.Now().Add(-time.Minute)), testProfile()))

		profile, err := f.service.Restore(ctx)

		require.NoError(t, err)
		require.Equal(t, testProfile(), profile)
		require.Equal(t, int32(1), f.refreshCalls.Load())
		require.Equal(t, fresh, f.store.AccessToken(ctx))
	})

	t.Run("refresh rejected", func(t *testing.T) {
		ctx := context.Background()
		f := setupTestFixture(t)
		require.NoError(t, f.store.Establish(ctx, "not-a-jwt", testProfile()))

		_, err := f.service.Restore(ctx)

		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
		require.False(t, f.service.IsAuthenticated(ctx))
		require.Equal(t, []string{refresh.MessageSessionExpired}, f.redirector.Logins())
	})
}
