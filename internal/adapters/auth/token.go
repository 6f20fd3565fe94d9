package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cfpportal/internal/domain"
)

const sessionIssuer = "cfp-portal"

type sessionClaims struct {
	jwt.RegisteredClaims
	MemberID int64 `json:"member_id"`
}

// SessionTokens signs and verifies the session cookie value. The session
// id is the subject; the cookie never carries provider tokens.
type SessionTokens struct {
	secret []byte
	now    func() time.Time
}

// NewSessionTokens returns a TokenIssuer and TokenVerifier that use HS256
// with the given secret.
func NewSessionTokens(secret string) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), now: time.Now}
}

var (
	_ domain.TokenIssuer   = (*SessionTokens)(nil)
	_ domain.TokenVerifier = (*SessionTokens)(nil)
)

func (s *SessionTokens) Issue(sessionID string, memberID int64, expiry time.Duration) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id is required")
	}
	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		MemberID: memberID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *SessionTokens) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", domain.ErrUnauthorized
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return claims.Subject, nil
}
