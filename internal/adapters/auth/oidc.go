package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"cfpportal/internal/domain"
)

// OIDCConfig holds identity provider configuration.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// DefaultScopes is used when no scopes are configured.
var DefaultScopes = []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess}

type oidcGateway struct {
	provider      *oidc.Provider
	oauth2Config  oauth2.Config
	verifier      *oidc.IDTokenVerifier
	endSessionURL string
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewOIDCGateway discovers the provider at cfg.Issuer and returns a
// domain.AuthGateway. httpClient may be nil.
func NewOIDCGateway(ctx context.Context, cfg OIDCConfig, httpClient *http.Client, logger *slog.Logger) (domain.AuthGateway, error) {
	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("create OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	var discovery struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&discovery); err != nil {
		return nil, fmt.Errorf("read provider metadata: %w", err)
	}
	if discovery.EndSessionEndpoint == "" {
		discovery.EndSessionEndpoint = strings.TrimSuffix(cfg.Issuer, "/") + "/oauth2/end-session"
	}

	g := &oidcGateway{
		provider: provider,
		oauth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		verifier:      provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		endSessionURL: discovery.EndSessionEndpoint,
		httpClient:    httpClient,
		logger:        logger.With("component", "oidc"),
	}
	g.logger.Info("OIDC provider initialized", "issuer", cfg.Issuer)
	return g, nil
}

func (g *oidcGateway) clientContext(ctx context.Context) context.Context {
	if g.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

func (g *oidcGateway) AuthCodeURL(state string) string {
	return g.oauth2Config.AuthCodeURL(state)
}

func (g *oidcGateway) Exchange(ctx context.Context, code string) (*domain.AuthToken, *domain.Identity, error) {
	ctx = g.clientContext(ctx)
	token, err := g.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, nil, fmt.Errorf("no id_token in token response")
	}
	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, nil, fmt.Errorf("verify ID token: %w", err)
	}
	var identity domain.Identity
	if err := idToken.Claims(&identity); err != nil {
		return nil, nil, fmt.Errorf("extract claims: %w", err)
	}

	g.logger.Debug("ID token verified", "subject", identity.Subject)
	return toAuthToken(token, rawIDToken), &identity, nil
}

func (g *oidcGateway) Refresh(ctx context.Context, refreshToken string) (*domain.AuthToken, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token: %w", domain.ErrUnauthorized)
	}
	ctx = g.clientContext(ctx)
	expired := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Unix(1, 0)}
	token, err := g.oauth2Config.TokenSource(ctx, expired).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	idToken, _ := token.Extra("id_token").(string)
	out := toAuthToken(token, idToken)
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}
	return out, nil
}

func (g *oidcGateway) LogoutURL(idTokenHint, postLogoutRedirect string) string {
	q := url.Values{}
	q.Set("client_id", g.oauth2Config.ClientID)
	if idTokenHint != "" {
		q.Set("id_token_hint", idTokenHint)
	}
	if postLogoutRedirect != "" {
		q.Set("post_logout_redirect_uri", postLogoutRedirect)
	}
	return g.endSessionURL + "?" + q.Encode()
}

func toAuthToken(t *oauth2.Token, idToken string) *domain.AuthToken {
	return &domain.AuthToken{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		IDToken:      idToken,
		Expiry:       t.Expiry,
	}
}
