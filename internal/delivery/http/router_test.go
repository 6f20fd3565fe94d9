package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"cfpportal/internal/adapters/metrics"
	"cfpportal/internal/delivery/http/controllers"
	"cfpportal/internal/delivery/http/helpers"
	"cfpportal/internal/delivery/http/middleware"
	"cfpportal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rejectingAuth treats every session as invalid.
type rejectingAuth struct{}

func (rejectingAuth) BeginLogin() (string, string, error) { return "https://idp/auth", "st", nil }

func (rejectingAuth) CompleteLogin(ctx context.Context, code, state, expected string) (*domain.LoginResult, error) {
	return nil, domain.ErrInvalidLoginState
}

func (rejectingAuth) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	return nil, domain.ErrUnauthorized
}

func (rejectingAuth) Logout(ctx context.Context, token, redirect string) (string, error) {
	return redirect, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	shell, err := controllers.LoadShell("")
	require.NoError(t, err)
	auth := rejectingAuth{}
	return NewRouter(Controllers{
		Auth:          controllers.NewAuthController(logger, auth, nil, "http://localhost:8080", false, time.Hour),
		Summit:        controllers.NewSummitController(logger, nil, controllers.ClientConfig{ClientID: "cfp"}),
		Profile:       controllers.NewProfileController(logger, nil, nil),
		Presentations: controllers.NewPresentationController(logger, nil),
		Preferences:   controllers.NewPreferencesController(false),
		Pages:         controllers.NewPageController(logger, shell, nil, nil, nil, nil),
	}, RouterConfig{
		Logger:         logger,
		Auth:           auth,
		Metrics:        metrics.New(),
		AllowedOrigins: []string{"https://cfp.example.org"},
	})
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name         string
		method       string
		path         string
		wantStatus   int
		wantCode     string
		wantLoginFor string
	}{
		{name: "public config", method: http.MethodGet, path: "/api/v1/config", wantStatus: http.StatusOK},
		{name: "member api needs a session", method: http.MethodGet, path: "/api/v1/speakers/me", wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{name: "presentation writes need a session", method: http.MethodPut, path: "/api/v1/presentations/5", wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{name: "unknown api route", method: http.MethodGet, path: "/api/v1/nope", wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "page redirects to login", method: http.MethodGet, path: "/app/presentations/5/summary?x=1", wantStatus: http.StatusFound, wantLoginFor: "/app/presentations/5/summary?x=1"},
		{name: "app root redirects to login", method: http.MethodGet, path: "/app", wantStatus: http.StatusFound, wantLoginFor: "/app"},
		{name: "landing page", method: http.MethodGet, path: "/", wantStatus: http.StatusOK},
		{name: "not found page", method: http.MethodGet, path: "/404", wantStatus: http.StatusNotFound},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, path: "/api/v1/presentations", wantStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://test"+tt.path, nil)
			req.Header.Set("Origin", "https://cfp.example.org")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
			assert.Equal(t, "https://cfp.example.org", rr.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			}
			if tt.wantLoginFor != "" {
				assert.Empty(t, rr.Body.String())
				loc, err := url.Parse(rr.Header().Get("Location"))
				require.NoError(t, err)
				assert.Equal(t, middleware.LoginPath, loc.Path)
				assert.Equal(t, tt.wantLoginFor, loc.Query().Get("BackUrl"))
			}
		})
	}
}
