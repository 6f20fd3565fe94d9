package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"cfpportal/config"
	_ "cfpportal/docs"
	"cfpportal/internal/adapters/auth"
	"cfpportal/internal/adapters/cache"
	"cfpportal/internal/adapters/email"
	"cfpportal/internal/adapters/metrics"
	"cfpportal/internal/adapters/summitapi"
	httpdelivery "cfpportal/internal/delivery/http"
	"cfpportal/internal/delivery/http/controllers"
	"cfpportal/internal/delivery/http/middleware"
	"cfpportal/internal/domain"
	"cfpportal/internal/repository/postgres"
	"cfpportal/internal/services"
)

const (
	shutdownTimeout = 15 * time.Second
	purgeInterval   = time.Hour
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := config.NewLogger(cfg)
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply the session store schema before serving")
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	if migrateOnStart {
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var redisClient *redis.Client
	var summitCache domain.SummitCache
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		summitCache = cache.NewRedis(redisClient, "cfp:")
	} else {
		summitCache = cache.NewMemory()
	}

	m := metrics.New()
	upstream := &http.Client{Timeout: cfg.RequestTimeout}
	api := summitapi.NewHTTPClient(cfg.APIBaseURL, upstream, m)

	gateway, err := auth.NewOIDCGateway(ctx, auth.OIDCConfig{
		Issuer:       cfg.IDPBaseURL,
		ClientID:     cfg.OAuth2ClientID,
		ClientSecret: cfg.OAuth2ClientSecret,
		RedirectURL:  cfg.RedirectURL(),
		Scopes:       cfg.Scopes,
	}, upstream, logger)
	if err != nil {
		return err
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}, logger)
	if err != nil {
		return err
	}

	tokens := auth.NewSessionTokens(cfg.SessionSecret)
	sessions := postgres.NewSessionRepository(db, auth.NewSecretboxSealer(cfg.SessionSecret))
	loginStates, err := auth.NewLoginStateStore([]byte(cfg.SessionSecret), cfg.IsProduction())
	if err != nil {
		return err
	}

	authService := services.NewAuthService(gateway, sessions, api, tokens, tokens, m, logger,
		services.AuthConfig{SessionMaxAge: cfg.SessionMaxAge})
	summitService := services.NewSummitService(api, summitCache, cfg.SummitCacheTTL, logger)
	profileService := services.NewProfileService(api)
	affiliationService := services.NewAffiliationService(api)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	presentationService := services.NewPresentationService(api, summitService, emailService, logger)

	var rateLimitClient redis.UniversalClient
	if redisClient != nil {
		rateLimitClient = redisClient
	}
	rateLimit, err := middleware.NewRateLimiter(cfg.RateLimit, cfg.TrustProxy, rateLimitClient, logger)
	if err != nil {
		return err
	}

	shell, err := controllers.LoadShell(cfg.FrontendDir)
	if err != nil {
		return err
	}
	var static http.Handler
	if cfg.FrontendDir != "" {
		static = http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.FrontendDir)))
	}

	secure := cfg.IsProduction()
	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth: controllers.NewAuthController(logger, authService, loginStates, cfg.AppBaseURL, secure, cfg.SessionMaxAge),
		Summit: controllers.NewSummitController(logger, summitService, controllers.ClientConfig{
			IDPBaseURL:        cfg.IDPBaseURL,
			APIBaseURL:        cfg.APIBaseURL,
			ClientID:          cfg.OAuth2ClientID,
			Scopes:            cfg.Scopes,
			AppClientName:     cfg.AppClientName,
			ExclusiveSections: cfg.ExclusiveSections,
		}),
		Profile:       controllers.NewProfileController(logger, profileService, affiliationService),
		Presentations: controllers.NewPresentationController(logger, presentationService),
		Preferences:   controllers.NewPreferencesController(secure),
		Pages:         controllers.NewPageController(logger, shell, summitService, profileService, presentationService, static),
	}, httpdelivery.RouterConfig{
		Logger:         logger,
		Auth:           authService,
		Metrics:        m,
		RateLimit:      rateLimit,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go purgeSessions(ctx, sessions, cfg.SessionMaxAge, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func purgeSessions(ctx context.Context, repo domain.SessionRepository, maxAge time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		services.PurgeExpiredSessions(ctx, repo, maxAge, logger)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
