package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"cfpportal/internal/domain"
)

type presentationService struct {
	api     domain.SummitAPI
	summits domain.SummitService
	email   domain.EmailService
	logger  *slog.Logger
	now     func() time.Time
}

// NewPresentationService returns a PresentationService. Every result carries
// flags derived at the time of the call.
func NewPresentationService(api domain.SummitAPI, summits domain.SummitService, email domain.EmailService, logger *slog.Logger) domain.PresentationService {
	return &presentationService{api: api, summits: summits, email: email, logger: logger, now: time.Now}
}

func (s *presentationService) speaker(ctx context.Context, accessToken string) (*domain.Speaker, error) {
	sp, err := s.api.GetSpeaker(ctx, accessToken)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return sp, err
}

// ListForSelectionPlan loads the three role listings and the speaker in parallel.
func (s *presentationService) ListForSelectionPlan(ctx context.Context, accessToken string, planID int64) (*domain.PresentationLists, error) {
	summit, err := s.summits.CurrentSummit(ctx)
	if err != nil {
		return nil, err
	}
	plan := summit.SelectionPlanByID(planID)
	if plan == nil {
		return nil, fmt.Errorf("selection plan %d: %w", planID, domain.ErrNotFound)
	}

	var speaker *domain.Speaker
	byRole := make([][]*domain.Presentation, len(domain.PresentationRoles))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sp, err := s.speaker(gctx, accessToken)
		if err != nil {
			return fmt.Errorf("failed to load speaker: %w", err)
		}
		speaker = sp
		return nil
	})
	for i, role := range domain.PresentationRoles {
		g.Go(func() error {
			list, err := s.api.ListPresentations(gctx, accessToken, role, planID)
			if err != nil {
				return fmt.Errorf("failed to list %s presentations: %w", role, err)
			}
			byRole[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	views := func(list []*domain.Presentation) []*domain.PresentationView {
		out := make([]*domain.PresentationView, 0, len(list))
		for _, p := range list {
			out = append(out, domain.NewPresentationModel(p, summit, plan, speaker).View(now))
		}
		return out
	}
	lists := &domain.PresentationLists{
		SelectionPlanID: planID,
		Created:         views(byRole[0]),
		Speaker:         views(byRole[1]),
		Moderator:       views(byRole[2]),
	}
	lists.CanSubmit = plan.IsOpen(now) &&
		(plan.MaxSubmissionAllowedPerUser <= 0 || len(lists.Created) < plan.MaxSubmissionAllowedPerUser)
	return lists, nil
}

// load fetches a presentation together with the speaker and wraps them in a model.
func (s *presentationService) load(ctx context.Context, accessToken string, presentationID int64) (*domain.PresentationModel, *domain.Summit, *domain.Speaker, error) {
	if presentationID <= 0 {
		return nil, nil, nil, fmt.Errorf("presentation id is required: %w", domain.ErrInvalidInput)
	}
	summit, err := s.summits.CurrentSummit(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		presentation *domain.Presentation
		speaker      *domain.Speaker
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.api.GetPresentation(gctx, accessToken, summit.ID, presentationID)
		if err != nil {
			return fmt.Errorf("failed to load presentation %d: %w", presentationID, err)
		}
		presentation = p
		return nil
	})
	g.Go(func() error {
		sp, err := s.speaker(gctx, accessToken)
		if err != nil {
			return fmt.Errorf("failed to load speaker: %w", err)
		}
		speaker = sp
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return domain.NewPresentationModel(presentation, summit, nil, speaker), summit, speaker, nil
}

func (s *presentationService) Get(ctx context.Context, accessToken string, presentationID int64) (*domain.PresentationView, error) {
	model, _, _, err := s.load(ctx, accessToken, presentationID)
	if err != nil {
		return nil, err
	}
	return model.View(s.now()), nil
}

func (s *presentationService) Create(ctx context.Context, accessToken string, p *domain.Presentation) (*domain.PresentationView, error) {
	if p == nil {
		return nil, fmt.Errorf("presentation is nil: %w", domain.ErrInvalidInput)
	}
	if verr := p.Validate(); verr != nil {
		return nil, verr
	}
	summit, err := s.summits.CurrentSummit(ctx)
	if err != nil {
		return nil, err
	}
	plan := summit.SelectionPlanByID(p.SelectionPlanID)
	if plan == nil {
		return nil, domain.NewValidationError(map[string]string{"selection_plan_id": "selection plan does not belong to the current summit"})
	}
	now := s.now()
	if !plan.IsOpen(now) {
		return nil, fmt.Errorf("selection plan %d is closed: %w", plan.ID, domain.ErrPresentationLocked)
	}

	p.ID = 0
	created, err := s.api.CreatePresentation(ctx, accessToken, summit.ID, p)
	if err != nil {
		return nil, err
	}
	speaker, err := s.speaker(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load speaker: %w", err)
	}
	return domain.NewPresentationModel(created, summit, plan, speaker).View(now), nil
}

// Update saves one form step. Presentations that are no longer editable are refused.
func (s *presentationService) Update(ctx context.Context, accessToken string, p *domain.Presentation) (*domain.PresentationView, error) {
	if p == nil {
		return nil, fmt.Errorf("presentation is nil: %w", domain.ErrInvalidInput)
	}
	model, summit, speaker, err := s.load(ctx, accessToken, p.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !model.CanEdit(now) {
		return nil, fmt.Errorf("presentation %d: %w", p.ID, domain.ErrPresentationLocked)
	}
	if p.SelectionPlanID == 0 {
		p.SelectionPlanID = model.Presentation().SelectionPlanID
	}
	if p.SelectionPlanID != model.Presentation().SelectionPlanID {
		return nil, domain.NewValidationError(map[string]string{"selection_plan_id": "selection plan cannot be changed"})
	}
	if verr := p.Validate(); verr != nil {
		return nil, verr
	}

	updated, err := s.api.UpdatePresentation(ctx, accessToken, summit.ID, p)
	if err != nil {
		return nil, err
	}
	return domain.NewPresentationModel(updated, summit, model.SelectionPlan(), speaker).View(now), nil
}

// Complete marks the presentation as submitted and notifies the speaker.
// A failed notification does not fail the submission.
func (s *presentationService) Complete(ctx context.Context, accessToken string, presentationID int64) (*domain.PresentationView, error) {
	model, summit, speaker, err := s.load(ctx, accessToken, presentationID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !model.CanEdit(now) {
		return nil, fmt.Errorf("presentation %d: %w", presentationID, domain.ErrPresentationLocked)
	}

	completed, err := s.api.CompletePresentation(ctx, accessToken, summit.ID, presentationID)
	if err != nil {
		return nil, err
	}
	done := domain.NewPresentationModel(completed, summit, model.SelectionPlan(), speaker)

	if s.email != nil {
		if err := s.notifySubmitted(ctx, accessToken, done, summit, speaker); err != nil {
			s.logger.ErrorContext(ctx, "failed to send submission email", "presentation_id", presentationID, "err", err)
		}
	}
	return done.View(now), nil
}

func (s *presentationService) notifySubmitted(ctx context.Context, accessToken string, model *domain.PresentationModel, summit *domain.Summit, speaker *domain.Speaker) error {
	data := &domain.PresentationSubmittedEmailData{
		PresentationID:    model.Presentation().ID,
		PresentationTitle: model.Presentation().Title,
		SummitName:        summit.Name,
	}
	if plan := model.SelectionPlan(); plan != nil {
		data.SelectionPlanName = plan.Name
		loc := summit.Location()
		data.SubmissionEndsAt = fmt.Sprintf("%s (%s)", plan.SubmissionEnd(loc).Format(headerTimeLayout), loc.String())
	}
	if speaker != nil && speaker.Email != "" {
		data.Email = speaker.Email
		data.FirstName = speaker.FirstName
	} else {
		member, err := s.api.GetMember(ctx, accessToken)
		if err != nil {
			return fmt.Errorf("failed to load member: %w", err)
		}
		data.Email = member.Email
		data.FirstName = member.FirstName
	}
	return s.email.SendPresentationSubmitted(ctx, data)
}

func (s *presentationService) Delete(ctx context.Context, accessToken string, presentationID int64) error {
	model, summit, _, err := s.load(ctx, accessToken, presentationID)
	if err != nil {
		return err
	}
	if !model.CanEdit(s.now()) {
		return fmt.Errorf("presentation %d: %w", presentationID, domain.ErrPresentationLocked)
	}
	return s.api.DeletePresentation(ctx, accessToken, summit.ID, presentationID)
}
