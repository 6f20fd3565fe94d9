package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"cfpportal/internal/delivery/http/middleware"
	"cfpportal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPageController(t *testing.T, profiles *fakeProfileService, presentations *fakePresentationService) *PageController {
	t.Helper()
	shell, err := LoadShell("")
	require.NoError(t, err)
	summits := &fakeSummitService{header: &domain.SummitHeader{Title: ": Main OpenInfra", Subtitle: "Accepting submissions"}}
	return NewPageController(testLogger(), shell, summits, profiles, presentations, nil)
}

func TestPageController_PresentationStep(t *testing.T) {
	speaker := &domain.Speaker{ID: 7}
	editable := &domain.PresentationView{Presentation: &domain.Presentation{ID: 5}, CanEdit: true}
	locked := &domain.PresentationView{Presentation: &domain.Presentation{ID: 5}, CanEdit: false}

	tests := []struct {
		name         string
		id           string
		rest         string
		loggedIn     bool
		speaker      *domain.Speaker
		view         *domain.PresentationView
		svcErr       error
		wantStatus   int
		wantLocation string
	}{
		{name: "editable step", id: "5", rest: "tags", loggedIn: true, speaker: speaker, view: editable, wantStatus: http.StatusOK},
		{name: "locked goes to preview", id: "5", rest: "summary", loggedIn: true, speaker: speaker, view: locked, wantStatus: http.StatusFound, wantLocation: "/app/presentations/5/preview"},
		{name: "locked preview is served", id: "5", rest: "preview", loggedIn: true, speaker: speaker, view: locked, wantStatus: http.StatusOK},
		{name: "no speaker profile", id: "5", rest: "summary", loggedIn: true, view: editable, wantStatus: http.StatusFound, wantLocation: "/app/profile"},
		{name: "new presentation", id: "new", rest: "summary", loggedIn: true, speaker: speaker, wantStatus: http.StatusOK},
		{name: "speaker sub route", id: "5", rest: "speakers/new", loggedIn: true, speaker: speaker, view: editable, wantStatus: http.StatusOK},
		{name: "unknown step", id: "5", rest: "whatever", loggedIn: true, speaker: speaker, view: editable, wantStatus: http.StatusFound, wantLocation: "/app/presentations/5/summary"},
		{name: "bad id", id: "abc", rest: "summary", loggedIn: true, speaker: speaker, wantStatus: http.StatusFound, wantLocation: "/404"},
		{name: "missing presentation", id: "5", rest: "summary", loggedIn: true, speaker: speaker, svcErr: domain.ErrNotFound, wantStatus: http.StatusFound, wantLocation: "/404"},
		{name: "upstream failure", id: "5", rest: "summary", loggedIn: true, speaker: speaker, svcErr: errors.New("boom"), wantStatus: http.StatusFound, wantLocation: "/error?code=upstream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presentations := &fakePresentationService{view: tt.view, err: tt.svcErr}
			ctrl := newPageController(t, &fakeProfileService{speaker: tt.speaker}, presentations)

			req := httptest.NewRequest(http.MethodGet, "http://test/app/presentations/"+tt.id+"/"+tt.rest, nil)
			req.SetPathValue("id", tt.id)
			req.SetPathValue("rest", tt.rest)
			if tt.loggedIn {
				req = withPrincipal(req)
			}
			rr := httptest.NewRecorder()
			ctrl.PresentationStep(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rr.Header().Get("Location"))
				return
			}
			assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rr.Body.String(), "Call for Presentations: Main OpenInfra")
		})
	}
}

func TestPageController_PresentationStep_unauthorizedUpstream(t *testing.T) {
	presentations := &fakePresentationService{err: domain.ErrUnauthorized}
	ctrl := newPageController(t, &fakeProfileService{speaker: &domain.Speaker{ID: 7}}, presentations)

	req := httptest.NewRequest(http.MethodGet, "http://test/app/presentations/5/tags", nil)
	req.SetPathValue("id", "5")
	req.SetPathValue("rest", "tags")
	rr := httptest.NewRecorder()
	ctrl.PresentationStep(rr, withPrincipal(req))

	require.Equal(t, http.StatusFound, rr.Code)
	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, middleware.LoginPath, loc.Path)
	assert.Equal(t, "/app/presentations/5/tags", loc.Query().Get("BackUrl"))
}

func TestPageController_SelectionPlans(t *testing.T) {
	tests := []struct {
		name         string
		speaker      *domain.Speaker
		wantStatus   int
		wantLocation string
	}{
		{"with profile", &domain.Speaker{ID: 7}, http.StatusOK, ""},
		{"without profile", nil, http.StatusFound, "/app/profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newPageController(t, &fakeProfileService{speaker: tt.speaker}, &fakePresentationService{})
			rr := httptest.NewRecorder()
			ctrl.SelectionPlans(rr, withPrincipal(httptest.NewRequest(http.MethodGet, "http://test/app/selection-plans", nil)))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantLocation, rr.Header().Get("Location"))
		})
	}
}

func TestPageController_Home(t *testing.T) {
	ctrl := newPageController(t, &fakeProfileService{}, &fakePresentationService{})

	rr := httptest.NewRecorder()
	ctrl.Home(rr, withPrincipal(httptest.NewRequest(http.MethodGet, "http://test/", nil)))
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/app/selection-plans", rr.Header().Get("Location"))

	rr = httptest.NewRecorder()
	ctrl.Home(rr, httptest.NewRequest(http.MethodGet, "http://test/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data-page="landing"`)
	assert.Contains(t, rr.Body.String(), `lang="en"`)
}

func TestPageController_NotFoundAndFallback(t *testing.T) {
	static := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	shell, err := LoadShell("")
	require.NoError(t, err)
	ctrl := NewPageController(testLogger(), shell, nil, &fakeProfileService{}, &fakePresentationService{}, static)

	rr := httptest.NewRecorder()
	ctrl.NotFound(rr, httptest.NewRequest(http.MethodGet, "http://test/404", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "<title>Call for Presentations</title>")

	rr = httptest.NewRecorder()
	ctrl.Fallback(rr, httptest.NewRequest(http.MethodGet, "http://test/static/app.js", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	rr = httptest.NewRecorder()
	ctrl.Fallback(rr, httptest.NewRequest(http.MethodGet, "http://test/nowhere", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/404", rr.Header().Get("Location"))
}

func TestLoadShell_frontendDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(`<html lang="{{.Lang}}"><body>{{.Page}}</body></html>`), 0o600))

	shell, err := LoadShell(dir)
	require.NoError(t, err)
	ctrl := NewPageController(testLogger(), shell, nil, &fakeProfileService{}, &fakePresentationService{}, nil)
	rr := httptest.NewRecorder()
	ctrl.Error(rr, httptest.NewRequest(http.MethodGet, "http://test/error", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `<html lang="en"><body>error</body></html>`, rr.Body.String())

	_, err = LoadShell(t.TempDir())
	require.NoError(t, err, "falls back to the embedded shell")
}
