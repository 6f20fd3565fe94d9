package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"cfpportal/internal/adapters/metrics"
	"cfpportal/internal/domain"
)

// refreshLeeway is how close to expiry an access token is refreshed.
const refreshLeeway = 30 * time.Second

// AuthConfig tunes session lifetimes.
type AuthConfig struct {
	SessionMaxAge time.Duration
}

type authService struct {
	gateway  domain.AuthGateway
	sessions domain.SessionRepository
	api      domain.SummitAPI
	issuer   domain.TokenIssuer
	verifier domain.TokenVerifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	maxAge   time.Duration
	now      func() time.Time
	refresh  singleflight.Group
}

// NewAuthService creates an AuthService backed by the identity provider and the session store.
func NewAuthService(
	gateway domain.AuthGateway,
	sessions domain.SessionRepository,
	api domain.SummitAPI,
	issuer domain.TokenIssuer,
	verifier domain.TokenVerifier,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg AuthConfig,
) domain.AuthService {
	if cfg.SessionMaxAge <= 0 {
		cfg.SessionMaxAge = 24 * time.Hour
	}
	return &authService{
		gateway:  gateway,
		sessions: sessions,
		api:      api,
		issuer:   issuer,
		verifier: verifier,
		metrics:  m,
		logger:   logger,
		maxAge:   cfg.SessionMaxAge,
		now:      time.Now,
	}
}

func (s *authService) BeginLogin() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)
	return s.gateway.AuthCodeURL(state), state, nil
}

func (s *authService) CompleteLogin(ctx context.Context, code, state, expectedState string) (*domain.LoginResult, error) {
	res, err := s.completeLogin(ctx, code, state, expectedState)
	if err != nil {
		s.metrics.ObserveLogin("failure")
		return nil, err
	}
	s.metrics.ObserveLogin("success")
	return res, nil
}

func (s *authService) completeLogin(ctx context.Context, code, state, expectedState string) (*domain.LoginResult, error) {
	if state == "" || expectedState == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expectedState)) != 1 {
		return nil, domain.ErrInvalidLoginState
	}
	if code == "" {
		return nil, fmt.Errorf("missing authorization code: %w", domain.ErrInvalidInput)
	}

	token, identity, err := s.gateway.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	member, err := s.api.GetMember(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	now := s.now()
	session := domain.NewSession(uuid.NewString(), member.ID, token, now)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sessionToken, err := s.issuer.Issue(session.ID, member.ID, s.maxAge)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.InfoContext(ctx, "member logged in", "member_id", member.ID, "subject", identity.Subject)
	return &domain.LoginResult{SessionToken: sessionToken, Session: session, Member: member}, nil
}

func (s *authService) Authenticate(ctx context.Context, sessionToken string) (*domain.Principal, error) {
	sessionID, err := s.verifier.Verify(sessionToken)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := s.now()
	if session.Expired(now, refreshLeeway) {
		session, err = s.refreshSession(ctx, session)
		if err != nil {
			return nil, err
		}
	}
	return &domain.Principal{
		SessionID:   session.ID,
		MemberID:    session.MemberID,
		AccessToken: session.AccessToken,
	}, nil
}

// refreshSession exchanges the refresh token once per session even when
// several requests find the access token expired at the same time. The
// shared exchange outlives the cancellation of whichever request started it.
func (s *authService) refreshSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	ctx = context.WithoutCancel(ctx)
	v, err, _ := s.refresh.Do(session.ID, func() (any, error) {
		if session.RefreshToken == "" {
			return nil, fmt.Errorf("session %s has no refresh token: %w", session.ID, domain.ErrUnauthorized)
		}
		token, err := s.gateway.Refresh(ctx, session.RefreshToken)
		if err != nil {
			s.logger.WarnContext(ctx, "token refresh failed", "session_id", session.ID, "err", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
		updated := *session
		updated.AccessToken = token.AccessToken
		updated.RefreshToken = token.RefreshToken
		if token.IDToken != "" {
			updated.IDToken = token.IDToken
		}
		updated.ExpiresAt = token.Expiry
		updated.UpdatedAt = s.now()
		if err := s.sessions.UpdateTokens(ctx, &updated); err != nil {
			return nil, fmt.Errorf("failed to store refreshed tokens: %w", err)
		}
		return &updated, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Session), nil
}

func (s *authService) Logout(ctx context.Context, sessionToken, postLogoutRedirect string) (string, error) {
	sessionID, err := s.verifier.Verify(sessionToken)
	if err != nil {
		return s.gateway.LogoutURL("", postLogoutRedirect), nil
	}
	idToken := ""
	session, err := s.sessions.GetByID(ctx, sessionID)
	switch {
	case err == nil:
		idToken = session.IDToken
	case !errors.Is(err, domain.ErrNotFound):
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return "", fmt.Errorf("failed to delete session: %w", err)
	}
	return s.gateway.LogoutURL(idToken, postLogoutRedirect), nil
}

// PurgeExpiredSessions deletes sessions idle for longer than maxAge.
func PurgeExpiredSessions(ctx context.Context, repo domain.SessionRepository, maxAge time.Duration, logger *slog.Logger) {
	n, err := repo.DeleteExpired(ctx, time.Now().Add(-maxAge))
	if err != nil {
		logger.ErrorContext(ctx, "failed to purge sessions", "err", err)
		return
	}
	if n > 0 {
		logger.InfoContext(ctx, "purged expired sessions", "count", n)
	}
}
