package domain

import "context"

// SummitAPI is the Summit REST backend. Every authenticated call takes the
// member's OAuth2 access token.
type SummitAPI interface {
	GetCurrentSummit(ctx context.Context) (*Summit, error)

	GetMember(ctx context.Context, accessToken string) (*Member, error)
	GetSpeaker(ctx context.Context, accessToken string) (*Speaker, error)
	CreateSpeaker(ctx context.Context, accessToken string, s *Speaker) (*Speaker, error)
	UpdateSpeaker(ctx context.Context, accessToken string, s *Speaker) (*Speaker, error)

	AddAffiliation(ctx context.Context, accessToken string, entity map[string]any) (*Affiliation, error)
	SaveAffiliation(ctx context.Context, accessToken string, affiliationID int64, entity map[string]any) (*Affiliation, error)
	DeleteAffiliation(ctx context.Context, accessToken string, affiliationID int64) error

	ListPresentations(ctx context.Context, accessToken string, role PresentationRole, selectionPlanID int64) ([]*Presentation, error)
	GetPresentation(ctx context.Context, accessToken string, summitID, presentationID int64) (*Presentation, error)
	CreatePresentation(ctx context.Context, accessToken string, summitID int64, p *Presentation) (*Presentation, error)
	UpdatePresentation(ctx context.Context, accessToken string, summitID int64, p *Presentation) (*Presentation, error)
	CompletePresentation(ctx context.Context, accessToken string, summitID, presentationID int64) (*Presentation, error)
	DeletePresentation(ctx context.Context, accessToken string, summitID, presentationID int64) error
}
