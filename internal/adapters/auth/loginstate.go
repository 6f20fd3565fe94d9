package auth

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"cfpportal/internal/domain"
)

const (
	// LoginCookieName is the cookie that carries the in-flight login.
	LoginCookieName = "cfp_login"

	stateKey   = "oidc_state"
	backURLKey = "back_url"

	loginStateMaxAge = 600
)

// LoginStateStore keeps the OAuth2 state and the post-login destination in
// a signed, encrypted cookie between /auth/login and /auth/callback.
type LoginStateStore struct {
	store *sessions.CookieStore
}

// NewLoginStateStore returns a LoginStateStore keyed from secret, which must
// be at least 32 bytes.
func NewLoginStateStore(secret []byte, secure bool) (*LoginStateStore, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}
	store := sessions.NewCookieStore(secret, secret[:32])
	store.Options = &sessions.Options{
		Path:     "/auth",
		MaxAge:   loginStateMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &LoginStateStore{store: store}, nil
}

// Save remembers state and backURL for the callback.
func (s *LoginStateStore) Save(w http.ResponseWriter, r *http.Request, state, backURL string) error {
	session, err := s.store.New(r, LoginCookieName)
	if session == nil {
		return fmt.Errorf("get login session: %w", err)
	}
	session.Values[stateKey] = state
	session.Values[backURLKey] = backURL
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save login session: %w", err)
	}
	return nil
}

// Pop returns the remembered state and backURL and clears the cookie. It
// returns domain.ErrInvalidLoginState when no login is in flight.
func (s *LoginStateStore) Pop(w http.ResponseWriter, r *http.Request) (state, backURL string, err error) {
	session, err := s.store.Get(r, LoginCookieName)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrInvalidLoginState, err)
	}
	state, ok := session.Values[stateKey].(string)
	if !ok || state == "" {
		return "", "", domain.ErrInvalidLoginState
	}
	backURL, _ = session.Values[backURLKey].(string)

	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return "", "", fmt.Errorf("clear login session: %w", err)
	}
	return state, backURL, nil
}
