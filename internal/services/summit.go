package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cfpportal/internal/domain"
)

const (
	currentSummitKey = "summit:current"

	// DefaultSummitLogo is shown when the summit has no logo of its own.
	DefaultSummitLogo = "https://object-storage-ca-ymq-1.vexxhost.net/swift/v1/6e4619c416ff4bd19e1c087f27a43eea/www-assets-prod/Uploads/arrows.svg"

	submissionClosed = "SUBMISSION IS CLOSED"
	headerTimeLayout = "Jan 2 3:04 pm"
)

type summitService struct {
	api    domain.SummitAPI
	cache  domain.SummitCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewSummitService returns a SummitService that caches the current summit
// for ttl. cache may be nil.
func NewSummitService(api domain.SummitAPI, cache domain.SummitCache, ttl time.Duration, logger *slog.Logger) domain.SummitService {
	return &summitService{api: api, cache: cache, ttl: ttl, logger: logger}
}

func (s *summitService) CurrentSummit(ctx context.Context) (*domain.Summit, error) {
	if s.cache != nil && s.ttl > 0 {
		var cached domain.Summit
		ok, err := s.cache.Get(ctx, currentSummitKey, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "summit cache read failed", "err", err)
		}
		if ok {
			return &cached, nil
		}
	}

	summit, err := s.api.GetCurrentSummit(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load current summit: %w", err)
	}
	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, currentSummitKey, summit, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "summit cache write failed", "err", err)
		}
	}
	return summit, nil
}

func (s *summitService) Header(ctx context.Context, now time.Time) (*domain.SummitHeader, error) {
	summit, err := s.CurrentSummit(ctx)
	if err != nil {
		return nil, err
	}
	return BuildHeader(summit, now), nil
}

// BuildHeader derives the page header of summit at now.
func BuildHeader(summit *domain.Summit, now time.Time) *domain.SummitHeader {
	h := &domain.SummitHeader{
		Logo:     summit.Logo,
		SummitID: summit.ID,
	}
	if h.Logo == "" {
		h.Logo = DefaultSummitLogo
	}

	plan := domain.CurrentSelectionPlan(summit, now)
	if plan == nil {
		h.Title = ": " + summit.Name
		h.Subtitle = submissionClosed
		return h
	}

	loc := summit.Location()
	end := plan.SubmissionEnd(loc)
	h.SubmissionsOpen = true
	h.CurrentPlan = plan
	h.SubmissionEndsAt = &end
	h.Title = strings.TrimSpace(fmt.Sprintf(": %s %s", plan.Name, summit.Name))
	h.Subtitle = fmt.Sprintf("Accepting submissions until %s (%s)", end.Format(headerTimeLayout), loc.String())
	return h
}

func (s *summitService) SelectionPlans(ctx context.Context, planID int64) ([]*domain.SelectionPlan, error) {
	summit, err := s.CurrentSummit(ctx)
	if err != nil {
		return nil, err
	}
	return domain.AvailableSelectionPlans(summit, planID), nil
}
