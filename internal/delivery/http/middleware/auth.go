package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	h "cfpportal/internal/delivery/http/helpers"
	"cfpportal/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

const (
	// SessionCookieName holds the signed session token.
	SessionCookieName = "cfp_session"
	// BackURLFragmentHeader lets clients send the URL fragment, which
	// browsers never include in requests.
	BackURLFragmentHeader = "X-Back-Url-Fragment"
	// LoginPath is where unauthenticated page requests are sent.
	LoginPath = "/auth/login"
)

// SetPrincipal returns a context carrying the authenticated caller.
func SetPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Principal)
	return p, ok && p != nil
}

// SessionToken returns the session cookie value of r.
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func authenticate(r *http.Request, auth domain.AuthService) (*domain.Principal, error) {
	token := SessionToken(r)
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	return auth.Authenticate(r.Context(), token)
}

// LoginRedirectURL returns the login URL that brings the user back to r.
func LoginRedirectURL(r *http.Request) string {
	back := r.URL.Path
	if r.URL.RawQuery != "" {
		back += "?" + r.URL.RawQuery
	}
	if frag := strings.TrimPrefix(r.Header.Get(BackURLFragmentHeader), "#"); frag != "" {
		back += "#" + frag
	}
	return LoginPath + "?" + url.Values{"BackUrl": {back}}.Encode()
}

// RequireSession guards page routes. Unauthenticated requests get a single
// redirect to the login flow with an empty body; authenticated ones carry
// the Principal in their context.
func RequireSession(auth domain.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authenticate(r, auth)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthorized) {
					logger.ErrorContext(r.Context(), "session lookup failed", "path", r.URL.Path, "err", err)
				}
				w.Header().Set("Location", LoginRedirectURL(r))
				w.WriteHeader(http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetPrincipal(r.Context(), p)))
		})
	}
}

// RequireAPISession guards JSON routes, answering 401 instead of redirecting.
func RequireAPISession(auth domain.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authenticate(r, auth)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired session")
					return
				}
				h.WriteServiceError(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetPrincipal(r.Context(), p)))
		})
	}
}

// OptionalSession attaches the Principal when the session is valid and
// otherwise passes the request through untouched.
func OptionalSession(auth domain.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, err := authenticate(r, auth); err == nil {
				r = r.WithContext(SetPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}
