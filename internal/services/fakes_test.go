package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"cfpportal/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSummitAPI implements domain.SummitAPI for tests.
type fakeSummitAPI struct {
	mu sync.Mutex

	summit        *domain.Summit
	summitCalls   int
	member        *domain.Member
	speaker       *domain.Speaker
	speakerErr    error
	presentations map[int64]*domain.Presentation
	byRole        map[domain.PresentationRole][]*domain.Presentation
	listErr       map[domain.PresentationRole]error

	createdSpeaker *domain.Speaker
	updatedSpeaker *domain.Speaker
	entity         map[string]any
	entityID       int64
	deletedAff     int64
	created        *domain.Presentation
	updated        *domain.Presentation
	completed      int64
	deleted        int64
	tokens         []string
}

func (f *fakeSummitAPI) seen(token string) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
}

func (f *fakeSummitAPI) GetCurrentSummit(ctx context.Context) (*domain.Summit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summitCalls++
	if f.summit == nil {
		return nil, domain.ErrNotFound
	}
	return f.summit, nil
}

func (f *fakeSummitAPI) GetMember(ctx context.Context, token string) (*domain.Member, error) {
	f.seen(token)
	if f.member == nil {
		return nil, domain.ErrUnauthorized
	}
	return f.member, nil
}

func (f *fakeSummitAPI) GetSpeaker(ctx context.Context, token string) (*domain.Speaker, error) {
	f.seen(token)
	if f.speakerErr != nil {
		return nil, f.speakerErr
	}
	if f.speaker == nil {
		return nil, domain.ErrNotFound
	}
	return f.speaker, nil
}

func (f *fakeSummitAPI) CreateSpeaker(ctx context.Context, token string, s *domain.Speaker) (*domain.Speaker, error) {
	f.createdSpeaker = s
	out := *s
	out.ID = 100
	return &out, nil
}

func (f *fakeSummitAPI) UpdateSpeaker(ctx context.Context, token string, s *domain.Speaker) (*domain.Speaker, error) {
	f.updatedSpeaker = s
	return s, nil
}

func (f *fakeSummitAPI) AddAffiliation(ctx context.Context, token string, entity map[string]any) (*domain.Affiliation, error) {
	f.entity = entity
	return &domain.Affiliation{ID: 9}, nil
}

func (f *fakeSummitAPI) SaveAffiliation(ctx context.Context, token string, id int64, entity map[string]any) (*domain.Affiliation, error) {
	f.entity = entity
	f.entityID = id
	return &domain.Affiliation{ID: id}, nil
}

func (f *fakeSummitAPI) DeleteAffiliation(ctx context.Context, token string, id int64) error {
	f.deletedAff = id
	return nil
}

func (f *fakeSummitAPI) ListPresentations(ctx context.Context, token string, role domain.PresentationRole, planID int64) ([]*domain.Presentation, error) {
	f.seen(token)
	if err := f.listErr[role]; err != nil {
		return nil, err
	}
	return f.byRole[role], nil
}

func (f *fakeSummitAPI) GetPresentation(ctx context.Context, token string, summitID, id int64) (*domain.Presentation, error) {
	f.seen(token)
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.presentations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeSummitAPI) CreatePresentation(ctx context.Context, token string, summitID int64, p *domain.Presentation) (*domain.Presentation, error) {
	f.created = p
	out := *p
	out.ID = 77
	out.CreatorID = 42
	out.Progress = domain.ProgressSummary
	return &out, nil
}

func (f *fakeSummitAPI) UpdatePresentation(ctx context.Context, token string, summitID int64, p *domain.Presentation) (*domain.Presentation, error) {
	f.updated = p
	return p, nil
}

func (f *fakeSummitAPI) CompletePresentation(ctx context.Context, token string, summitID, id int64) (*domain.Presentation, error) {
	f.completed = id
	p := *f.presentations[id]
	p.Progress = domain.ProgressComplete
	return &p, nil
}

func (f *fakeSummitAPI) DeletePresentation(ctx context.Context, token string, summitID, id int64) error {
	f.deleted = id
	return nil
}

// fakeEmailService records sent notifications.
type fakeEmailService struct {
	sent []*domain.PresentationSubmittedEmailData
	err  error
}

func (f *fakeEmailService) SendPresentationSubmitted(ctx context.Context, data *domain.PresentationSubmittedEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}

// fixedSummitService serves a fixed summit.
type fixedSummitService struct {
	summit *domain.Summit
}

func (f *fixedSummitService) CurrentSummit(ctx context.Context) (*domain.Summit, error) {
	return f.summit, nil
}

func (f *fixedSummitService) Header(ctx context.Context, now time.Time) (*domain.SummitHeader, error) {
	return BuildHeader(f.summit, now), nil
}

func (f *fixedSummitService) SelectionPlans(ctx context.Context, planID int64) ([]*domain.SelectionPlan, error) {
	return domain.AvailableSelectionPlans(f.summit, planID), nil
}
