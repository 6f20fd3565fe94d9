package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"cfpportal/internal/delivery/http/helpers"
	"cfpportal/internal/delivery/http/middleware"
	"cfpportal/internal/domain"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func withPrincipal(r *http.Request) *http.Request {
	return r.WithContext(middleware.SetPrincipal(r.Context(), &domain.Principal{SessionID: "s1", MemberID: 42, AccessToken: "tok"}))
}

func decodeEnvelope(t *testing.T, body io.Reader, data any) *helpers.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&raw))
	if data != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Error
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	beginURL      string
	beginState    string
	beginErr      error
	completeErr   error
	gotExpected   string
	gotCode       string
	logoutURL     string
	logoutErr     error
	logoutToken   string
	logoutReturns string
}

func (f *fakeAuthService) BeginLogin() (string, string, error) {
	return f.beginURL, f.beginState, f.beginErr
}

func (f *fakeAuthService) CompleteLogin(ctx context.Context, code, state, expected string) (*domain.LoginResult, error) {
	f.gotCode, f.gotExpected = code, expected
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &domain.LoginResult{SessionToken: "session-jwt"}, nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	return nil, domain.ErrUnauthorized
}

func (f *fakeAuthService) Logout(ctx context.Context, token, redirect string) (string, error) {
	f.logoutToken, f.logoutReturns = token, redirect
	return f.logoutURL, f.logoutErr
}

// fakeLoginStates implements LoginStateStore in memory.
type fakeLoginStates struct {
	state, backURL string
	saveErr        error
	popErr         error
}

func (f *fakeLoginStates) Save(w http.ResponseWriter, r *http.Request, state, backURL string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state, f.backURL = state, backURL
	return nil
}

func (f *fakeLoginStates) Pop(w http.ResponseWriter, r *http.Request) (string, string, error) {
	if f.popErr != nil {
		return "", "", f.popErr
	}
	return f.state, f.backURL, nil
}

// fakeSummitService implements domain.SummitService.
type fakeSummitService struct {
	summit  *domain.Summit
	header  *domain.SummitHeader
	plans   []*domain.SelectionPlan
	err     error
	gotPlan int64
}

func (f *fakeSummitService) CurrentSummit(ctx context.Context) (*domain.Summit, error) {
	return f.summit, f.err
}

func (f *fakeSummitService) Header(ctx context.Context, now time.Time) (*domain.SummitHeader, error) {
	return f.header, f.err
}

func (f *fakeSummitService) SelectionPlans(ctx context.Context, planID int64) ([]*domain.SelectionPlan, error) {
	f.gotPlan = planID
	return f.plans, f.err
}

// fakeProfileService implements domain.ProfileService.
type fakeProfileService struct {
	member   *domain.Member
	speaker  *domain.Speaker
	err      error
	gotToken string
	saved    *domain.Speaker
}

func (f *fakeProfileService) GetMember(ctx context.Context, token string) (*domain.Member, error) {
	f.gotToken = token
	return f.member, f.err
}

func (f *fakeProfileService) GetSpeaker(ctx context.Context, token string) (*domain.Speaker, error) {
	f.gotToken = token
	return f.speaker, f.err
}

func (f *fakeProfileService) SaveSpeaker(ctx context.Context, token string, s *domain.Speaker) (*domain.Speaker, error) {
	f.gotToken = token
	f.saved = s
	if f.err != nil {
		return nil, f.err
	}
	out := *s
	out.ID = 7
	return &out, nil
}

// fakeAffiliationService implements domain.AffiliationService.
type fakeAffiliationService struct {
	err       error
	got       *domain.Affiliation
	deletedID int64
}

func (f *fakeAffiliationService) Add(ctx context.Context, token string, a *domain.Affiliation) (*domain.Affiliation, error) {
	f.got = a
	if f.err != nil {
		return nil, f.err
	}
	out := *a
	out.ID = 11
	return &out, nil
}

func (f *fakeAffiliationService) Save(ctx context.Context, token string, a *domain.Affiliation) (*domain.Affiliation, error) {
	f.got = a
	if f.err != nil {
		return nil, f.err
	}
	return a, nil
}

func (f *fakeAffiliationService) Delete(ctx context.Context, token string, id int64) error {
	f.deletedID = id
	return f.err
}

// fakePresentationService implements domain.PresentationService.
type fakePresentationService struct {
	view      *domain.PresentationView
	lists     *domain.PresentationLists
	err       error
	got       *domain.Presentation
	gotID     int64
	gotToken  string
	deletedID int64
}

func (f *fakePresentationService) ListForSelectionPlan(ctx context.Context, token string, planID int64) (*domain.PresentationLists, error) {
	f.gotID, f.gotToken = planID, token
	return f.lists, f.err
}

func (f *fakePresentationService) Get(ctx context.Context, token string, id int64) (*domain.PresentationView, error) {
	f.gotID, f.gotToken = id, token
	return f.view, f.err
}

func (f *fakePresentationService) Create(ctx context.Context, token string, p *domain.Presentation) (*domain.PresentationView, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &domain.PresentationView{Presentation: p, CanEdit: true}, nil
}

func (f *fakePresentationService) Update(ctx context.Context, token string, p *domain.Presentation) (*domain.PresentationView, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &domain.PresentationView{Presentation: p, CanEdit: true}, nil
}

func (f *fakePresentationService) Complete(ctx context.Context, token string, id int64) (*domain.PresentationView, error) {
	f.gotID = id
	return f.view, f.err
}

func (f *fakePresentationService) Delete(ctx context.Context, token string, id int64) error {
	f.deletedID = id
	return f.err
}
