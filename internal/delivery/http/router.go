package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"cfpportal/internal/adapters/metrics"
	"cfpportal/internal/delivery/http/controllers"
	"cfpportal/internal/delivery/http/helpers"
	"cfpportal/internal/delivery/http/middleware"
	"cfpportal/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth          *controllers.AuthController
	Summit        *controllers.SummitController
	Profile       *controllers.ProfileController
	Presentations *controllers.PresentationController
	Preferences   *controllers.PreferencesController
	Pages         *controllers.PageController
}

// RouterConfig holds what the middleware chain needs.
type RouterConfig struct {
	Logger         *slog.Logger
	Auth           domain.AuthService
	Metrics        *metrics.Metrics
	RateLimit      func(http.Handler) http.Handler
	AllowedOrigins []string
}

// NewRouter initializes the HTTP router with all application routes and
// wraps it in the middleware chain.
func NewRouter(c Controllers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	rateLimit := cfg.RateLimit
	if rateLimit == nil {
		rateLimit = func(next http.Handler) http.Handler { return next }
	}
	requireAPI := middleware.RequireAPISession(cfg.Auth, cfg.Logger)
	requirePage := middleware.RequireSession(cfg.Auth, cfg.Logger)
	optional := middleware.OptionalSession(cfg.Auth)

	public := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, rateLimit(h))
	}
	private := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, rateLimit(requireAPI(h)))
	}
	page := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, requirePage(h))
	}

	// Public API
	public("GET /api/v1/config", c.Summit.GetConfig)
	public("GET /api/v1/summit", c.Summit.GetSummit)
	public("GET /api/v1/summit/header", c.Summit.GetHeader)
	public("GET /api/v1/selection-plans", c.Summit.ListSelectionPlans)
	public("GET /api/v1/preferences", c.Preferences.Get)
	public("PUT /api/v1/preferences/language", c.Preferences.SetLanguage)

	// Member API
	private("GET /api/v1/members/me", c.Profile.GetMember)
	private("GET /api/v1/speakers/me", c.Profile.GetSpeaker)
	private("PUT /api/v1/speakers/me", c.Profile.SaveSpeaker)
	private("POST /api/v1/members/me/affiliations", c.Profile.AddAffiliation)
	private("PUT /api/v1/members/me/affiliations/{id}", c.Profile.SaveAffiliation)
	private("DELETE /api/v1/members/me/affiliations/{id}", c.Profile.DeleteAffiliation)
	private("GET /api/v1/selection-plans/{id}/presentations", c.Presentations.ListForSelectionPlan)
	private("POST /api/v1/presentations", c.Presentations.Create)
	private("GET /api/v1/presentations/{id}", c.Presentations.Get)
	private("PUT /api/v1/presentations/{id}", c.Presentations.Update)
	private("PUT /api/v1/presentations/{id}/completed", c.Presentations.Complete)
	private("DELETE /api/v1/presentations/{id}", c.Presentations.Delete)
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	})

	// Auth
	mux.HandleFunc("GET /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /auth/callback", c.Auth.Callback)
	mux.HandleFunc("GET /auth/logout", c.Auth.Logout)

	// Pages
	mux.Handle("GET /{$}", optional(http.HandlerFunc(c.Pages.Home)))
	mux.HandleFunc("GET /error", c.Pages.Error)
	mux.HandleFunc("GET /404", c.Pages.NotFound)
	page("GET /app", c.Pages.App)
	page("GET /app/{$}", c.Pages.App)
	page("GET /app/profile", c.Pages.Profile)
	page("GET /app/selection-plans", c.Pages.SelectionPlans)
	page("GET /app/selection-plans/{id}", c.Pages.SelectionPlans)
	page("GET /app/presentations/{id}", c.Pages.PresentationRoot)
	page("GET /app/presentations/{id}/{rest...}", c.Pages.PresentationStep)
	mux.HandleFunc("/", c.Pages.Fallback)

	// Operations
	mux.Handle("GET /metrics", cfg.Metrics.Handler())
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = middleware.Metrics(cfg.Metrics, mux)
	handler = middleware.Language(handler)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	return middleware.LoggingMiddleware(cfg.Logger, handler)
}
