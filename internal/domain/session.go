package domain

import (
	"context"
	"time"
)

// Session is a logged-in browser session. Tokens are held in clear in
// memory; repositories seal them at rest.
type Session struct {
	ID           string
	MemberID     int64
	AccessToken  string
	RefreshToken string
	IDToken      string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSession returns a Session for the given member and tokens. ID is set by the caller.
func NewSession(id string, memberID int64, token *AuthToken, now time.Time) *Session {
	return &Session{
		ID:           id,
		MemberID:     memberID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      token.IDToken,
		ExpiresAt:    token.Expiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Expired reports whether the access token expires within leeway of now.
func (s *Session) Expired(now time.Time, leeway time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(s.ExpiresAt)
}

// SessionRepository stores sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	UpdateTokens(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// TokenSealer encrypts secrets before they are persisted.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// AuthToken is the OAuth2 token set returned by the identity provider.
type AuthToken struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       time.Time
}

// Identity holds the verified ID token claims.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// AuthGateway is the OAuth2/OpenID Connect identity provider.
type AuthGateway interface {
	// AuthCodeURL returns the provider login URL for the given state.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for tokens and the verified identity.
	Exchange(ctx context.Context, code string) (*AuthToken, *Identity, error)
	// Refresh obtains a new token set from a refresh token.
	Refresh(ctx context.Context, refreshToken string) (*AuthToken, error)
	// LogoutURL returns the provider end-session URL.
	LogoutURL(idTokenHint, postLogoutRedirect string) string
}

// TokenIssuer issues the signed session cookie value.
type TokenIssuer interface {
	Issue(sessionID string, memberID int64, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session cookie value and returns the session ID.
type TokenVerifier interface {
	Verify(token string) (sessionID string, err error)
}

// Principal is the authenticated caller of a request.
type Principal struct {
	SessionID   string
	MemberID    int64
	AccessToken string
}

// LoginResult is returned once the authorization code has been exchanged.
type LoginResult struct {
	SessionToken string
	Session      *Session
	Member       *Member
}

// AuthService runs the login flow and resolves sessions.
type AuthService interface {
	// BeginLogin returns the provider URL and the state to remember.
	BeginLogin() (authURL, state string, err error)
	// CompleteLogin checks state against expectedState and opens a session.
	CompleteLogin(ctx context.Context, code, state, expectedState string) (*LoginResult, error)
	// Authenticate resolves a session cookie value, refreshing tokens if needed.
	Authenticate(ctx context.Context, sessionToken string) (*Principal, error)
	// Logout ends the session and returns the provider end-session URL.
	Logout(ctx context.Context, sessionToken, postLogoutRedirect string) (string, error)
}
