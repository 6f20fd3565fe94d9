package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cfpportal/internal/delivery/http/middleware"
	"cfpportal/internal/domain"
)

// DefaultBackURL is where a completed login lands without a remembered page.
const DefaultBackURL = "/app"

// LoginStateStore remembers the OAuth2 state and the page to return to
// between /auth/login and /auth/callback.
type LoginStateStore interface {
	Save(w http.ResponseWriter, r *http.Request, state, backURL string) error
	Pop(w http.ResponseWriter, r *http.Request) (state, backURL string, err error)
}

// AuthController runs the browser side of the OIDC login flow.
type AuthController struct {
	Logger        *slog.Logger
	Service       domain.AuthService
	States        LoginStateStore
	AppBaseURL    string
	SecureCookies bool
	SessionMaxAge time.Duration
}

// NewAuthController creates an AuthController.
func NewAuthController(logger *slog.Logger, svc domain.AuthService, states LoginStateStore, appBaseURL string, secureCookies bool, sessionMaxAge time.Duration) *AuthController {
	return &AuthController{
		Logger:        logger,
		Service:       svc,
		States:        states,
		AppBaseURL:    strings.TrimSuffix(appBaseURL, "/"),
		SecureCookies: secureCookies,
		SessionMaxAge: sessionMaxAge,
	}
}

// SafeBackURL returns raw when it is a same-origin relative path and
// DefaultBackURL otherwise.
func SafeBackURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\\\r\n") {
		return DefaultBackURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return DefaultBackURL
	}
	if strings.HasPrefix(u.Path, "/auth/") {
		return DefaultBackURL
	}
	return raw
}

// Login godoc
// @Summary Start login
// @Description Redirects to the identity provider. BackUrl is the relative page to return to once logged in.
// @Tags auth
// @Param BackUrl query string false "Relative URL to return to"
// @Success 302 "Redirect to the identity provider"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [get]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	back := SafeBackURL(r.URL.Query().Get("BackUrl"))
	authURL, state, err := c.Service.BeginLogin()
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if err := c.States.Save(w, r, state, back); err != nil {
		c.fail(w, r, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback godoc
// @Summary Complete login
// @Description Identity provider redirect target. Opens a session and redirects to the remembered page.
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth2 state"
// @Success 302 "Redirect to the remembered page"
// @Router /auth/callback [get]
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expected, back, popErr := c.States.Pop(w, r)
	if providerErr := q.Get("error"); providerErr != "" {
		c.Logger.WarnContext(r.Context(), "identity provider returned an error", "error", providerErr, "description", q.Get("error_description"))
		redirectToError(w, r, "login_denied")
		return
	}
	if popErr != nil {
		c.fail(w, r, popErr)
		return
	}

	result, err := c.Service.CompleteLogin(r.Context(), q.Get("code"), q.Get("state"), expected)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	http.SetCookie(w, c.sessionCookie(result.SessionToken, int(c.SessionMaxAge/time.Second)))
	http.Redirect(w, r, SafeBackURL(back), http.StatusFound)
}

// Logout godoc
// @Summary Log out
// @Description Ends the session and redirects to the identity provider end-session endpoint.
// @Tags auth
// @Success 302 "Redirect to the identity provider"
// @Router /auth/logout [get]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	target, err := c.Service.Logout(r.Context(), middleware.SessionToken(r), c.AppBaseURL+"/")
	http.SetCookie(w, c.sessionCookie("", -1))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (c *AuthController) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c *AuthController) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := "login_failed"
	switch {
	case errors.Is(err, domain.ErrInvalidLoginState):
		code = "invalid_state"
	case errors.Is(err, domain.ErrUnauthorized):
		code = "unauthorized"
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	redirectToError(w, r, code)
}

func redirectToError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/error?"+url.Values{"code": {code}}.Encode(), http.StatusFound)
}
