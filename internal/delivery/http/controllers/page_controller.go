package controllers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cfpportal/internal/delivery/http/middleware"
	"cfpportal/internal/domain"
)

//go:embed templates/shell.html
var shellFS embed.FS

const shellFile = "index.html"

// editSteps are the page steps of the presentation form. The first
// segment after the presentation id must be one of them.
var editSteps = map[string]bool{
	domain.StepSummary:  true,
	domain.StepTags:     true,
	domain.StepSpeakers: true,
	domain.StepReview:   true,
	domain.StepPreview:  true,
	domain.StepThankYou: true,
}

// PageData is rendered into the application shell.
type PageData struct {
	Lang   string
	Title  string
	Page   string
	Header *domain.SummitHeader
}

// LoadShell parses index.html from frontendDir, falling back to the
// embedded shell when the directory is unset or has no index.html.
func LoadShell(frontendDir string) (*template.Template, error) {
	if frontendDir != "" {
		path := filepath.Join(frontendDir, shellFile)
		if _, err := os.Stat(path); err == nil {
			t, err := template.ParseFiles(path)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			return t, nil
		}
	}
	t, err := template.ParseFS(shellFS, "templates/shell.html")
	if err != nil {
		return nil, fmt.Errorf("parse embedded shell: %w", err)
	}
	return t, nil
}

// PageController serves the browser application pages and applies the
// navigation rules of the presentation layout.
type PageController struct {
	Logger        *slog.Logger
	Shell         *template.Template
	Summits       domain.SummitService
	Profiles      domain.ProfileService
	Presentations domain.PresentationService
	Static        http.Handler
	now           func() time.Time
}

// NewPageController creates a PageController. static may be nil.
func NewPageController(logger *slog.Logger, shell *template.Template, summits domain.SummitService, profiles domain.ProfileService, presentations domain.PresentationService, static http.Handler) *PageController {
	return &PageController{
		Logger:        logger,
		Shell:         shell,
		Summits:       summits,
		Profiles:      profiles,
		Presentations: presentations,
		Static:        static,
		now:           time.Now,
	}
}

// Home sends logged members to their selection plans and shows the landing
// page to everybody else.
func (c *PageController) Home(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, "/app/selection-plans", http.StatusFound)
		return
	}
	c.render(w, r, http.StatusOK, "landing")
}

// Fallback serves static assets and redirects anything else to /404.
func (c *PageController) Fallback(w http.ResponseWriter, r *http.Request) {
	if c.Static != nil && strings.HasPrefix(r.URL.Path, "/static/") {
		c.Static.ServeHTTP(w, r)
		return
	}
	http.Redirect(w, r, "/404", http.StatusFound)
}

// App redirects the bare application root to the selection plans.
func (c *PageController) App(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/app/selection-plans", http.StatusFound)
}

// Profile serves the speaker profile page.
func (c *PageController) Profile(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "profile")
}

// SelectionPlans serves the selection plan pages; members without a speaker
// profile are sent to fill it in first.
func (c *PageController) SelectionPlans(w http.ResponseWriter, r *http.Request) {
	if !c.requireSpeaker(w, r) {
		return
	}
	c.render(w, r, http.StatusOK, "selection-plans")
}

// PresentationRoot redirects to the first form step.
func (c *PageController) PresentationRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, presentationURL(r.PathValue("id"), domain.StepSummary), http.StatusFound)
}

// PresentationStep serves a step of the presentation form. A presentation
// that can no longer be edited only shows its preview, and editing needs a
// speaker profile.
func (c *PageController) PresentationStep(w http.ResponseWriter, r *http.Request) {
	rawID := r.PathValue("id")
	step, _, _ := strings.Cut(r.PathValue("rest"), "/")
	if !editSteps[step] {
		http.Redirect(w, r, presentationURL(rawID, domain.StepSummary), http.StatusFound)
		return
	}

	if rawID != "new" {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			http.Redirect(w, r, "/404", http.StatusFound)
			return
		}
		p, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, middleware.LoginRedirectURL(r), http.StatusFound)
			return
		}
		view, err := c.Presentations.Get(r.Context(), p.AccessToken, id)
		if err != nil {
			c.redirectOnError(w, r, err)
			return
		}
		if !view.CanEdit && step != domain.StepPreview {
			http.Redirect(w, r, presentationURL(rawID, domain.StepPreview), http.StatusFound)
			return
		}
	}

	if !c.requireSpeaker(w, r) {
		return
	}
	c.render(w, r, http.StatusOK, "presentation-"+step)
}

// Error serves the error page.
func (c *PageController) Error(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "error")
}

// NotFound serves the not found page.
func (c *PageController) NotFound(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusNotFound, "not-found")
}

func presentationURL(id, step string) string {
	return "/app/presentations/" + id + "/" + step
}

// requireSpeaker redirects to the profile page when the member has no
// speaker profile. It reports whether the request may proceed.
func (c *PageController) requireSpeaker(w http.ResponseWriter, r *http.Request) bool {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.LoginRedirectURL(r), http.StatusFound)
		return false
	}
	speaker, err := c.Profiles.GetSpeaker(r.Context(), p.AccessToken)
	if err != nil {
		c.redirectOnError(w, r, err)
		return false
	}
	if speaker == nil {
		http.Redirect(w, r, "/app/profile", http.StatusFound)
		return false
	}
	return true
}

func (c *PageController) redirectOnError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Redirect(w, r, "/404", http.StatusFound)
	case errors.Is(err, domain.ErrUnauthorized):
		http.Redirect(w, r, middleware.LoginRedirectURL(r), http.StatusFound)
	case r.Context().Err() != nil:
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		redirectToError(w, r, "upstream")
	}
}

func (c *PageController) render(w http.ResponseWriter, r *http.Request, status int, page string) {
	data := PageData{
		Lang:   middleware.LanguageFromContext(r.Context()).String(),
		Title:  "Call for Presentations",
		Page:   page,
		Header: &domain.SummitHeader{},
	}
	if c.Summits != nil {
		header, err := c.Summits.Header(r.Context(), c.now())
		if err != nil {
			c.Logger.WarnContext(r.Context(), "page header unavailable", "err", err)
		} else {
			data.Header = header
			data.Title += header.Title
		}
	}

	var buf bytes.Buffer
	if err := c.Shell.Execute(&buf, data); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
