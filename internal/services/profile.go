package services

import (
	"context"
	"errors"
	"fmt"

	"cfpportal/internal/domain"
)

type profileService struct {
	api domain.SummitAPI
}

// NewProfileService returns a ProfileService backed by the Summit API.
func NewProfileService(api domain.SummitAPI) domain.ProfileService {
	return &profileService{api: api}
}

func (s *profileService) GetMember(ctx context.Context, accessToken string) (*domain.Member, error) {
	return s.api.GetMember(ctx, accessToken)
}

func (s *profileService) GetSpeaker(ctx context.Context, accessToken string) (*domain.Speaker, error) {
	speaker, err := s.api.GetSpeaker(ctx, accessToken)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load speaker: %w", err)
	}
	return speaker, nil
}

// SaveSpeaker creates the profile the first time it is saved and updates it afterwards.
func (s *profileService) SaveSpeaker(ctx context.Context, accessToken string, speaker *domain.Speaker) (*domain.Speaker, error) {
	if speaker == nil {
		return nil, fmt.Errorf("speaker is nil: %w", domain.ErrInvalidInput)
	}
	if verr := speaker.Validate(); verr != nil {
		return nil, verr
	}
	if speaker.ID == 0 {
		return s.api.CreateSpeaker(ctx, accessToken, speaker)
	}
	return s.api.UpdateSpeaker(ctx, accessToken, speaker)
}

type affiliationService struct {
	api domain.SummitAPI
}

// NewAffiliationService returns an AffiliationService that normalizes
// affiliations before sending them to the Summit API.
func NewAffiliationService(api domain.SummitAPI) domain.AffiliationService {
	return &affiliationService{api: api}
}

func affiliationEntity(a *domain.Affiliation) (map[string]any, error) {
	if a == nil {
		return nil, fmt.Errorf("affiliation is nil: %w", domain.ErrInvalidInput)
	}
	fields := map[string]string{}
	if a.Organization == nil || a.Organization.Name == "" {
		fields["organization_name"] = "organization is required"
	}
	if a.EndDate != 0 && a.EndDate < a.StartDate {
		fields["end_date"] = "end date must be after start date"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}
	raw, err := a.Entity()
	if err != nil {
		return nil, err
	}
	entity := domain.NormalizeEntity(raw)
	delete(entity, "id")
	return entity, nil
}

func (s *affiliationService) Add(ctx context.Context, accessToken string, a *domain.Affiliation) (*domain.Affiliation, error) {
	entity, err := affiliationEntity(a)
	if err != nil {
		return nil, err
	}
	return s.api.AddAffiliation(ctx, accessToken, entity)
}

func (s *affiliationService) Save(ctx context.Context, accessToken string, a *domain.Affiliation) (*domain.Affiliation, error) {
	if a == nil || a.ID <= 0 {
		return nil, fmt.Errorf("affiliation id is required: %w", domain.ErrInvalidInput)
	}
	entity, err := affiliationEntity(a)
	if err != nil {
		return nil, err
	}
	return s.api.SaveAffiliation(ctx, accessToken, a.ID, entity)
}

func (s *affiliationService) Delete(ctx context.Context, accessToken string, affiliationID int64) error {
	if affiliationID <= 0 {
		return fmt.Errorf("affiliation id is required: %w", domain.ErrInvalidInput)
	}
	return s.api.DeleteAffiliation(ctx, accessToken, affiliationID)
}
