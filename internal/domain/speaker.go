package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// Member is the IDP-backed account behind a speaker.
// swagger:model Member
type Member struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Pic       string `json:"pic"`
}

// Organization is referenced by affiliations.
type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Affiliation is a member's organisational association. Dates are epoch
// seconds; a zero EndDate means the affiliation is ongoing.
// swagger:model Affiliation
type Affiliation struct {
	ID           int64         `json:"id,omitempty"`
	OwnerID      int64         `json:"owner_id,omitempty"`
	Organization *Organization `json:"organization"`
	JobTitle     string        `json:"job_title"`
	StartDate    int64         `json:"start_date"`
	EndDate      int64         `json:"end_date"`
	IsCurrent    bool          `json:"is_current"`
}

// Entity returns the affiliation as the raw key/value form the Summit API
// accepts, before normalisation.
func (a *Affiliation) Entity() (map[string]any, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode affiliation: %w", err)
	}
	entity := map[string]any{}
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("decode affiliation: %w", err)
	}
	return entity, nil
}

// PresentationLink is one of the speaker's previous talks.
type PresentationLink struct {
	ID    int64  `json:"id,omitempty"`
	Link  string `json:"link"`
	Title string `json:"title"`
}

// Speaker is the speaker profile of the logged member.
// swagger:model Speaker
type Speaker struct {
	ID                     int64              `json:"id"`
	MemberID               int64              `json:"member_id"`
	Member                 *Member            `json:"member,omitempty"`
	Title                  string             `json:"title"`
	FirstName              string             `json:"first_name"`
	LastName               string             `json:"last_name"`
	Email                  string             `json:"email"`
	Twitter                string             `json:"twitter"`
	IRC                    string             `json:"irc"`
	Country                string             `json:"country"`
	Bio                    string             `json:"bio"`
	Pic                    string             `json:"pic"`
	AvailableForBureau     bool               `json:"available_for_bureau"`
	WillingToPresentVideo  bool               `json:"willing_to_present_video"`
	WillingToTravel        bool               `json:"willing_to_travel"`
	FundedTravel           bool               `json:"funded_travel"`
	OrgHasCloud            *int               `json:"org_has_cloud"`
	Languages              []string           `json:"languages"`
	AreasOfExpertise       []string           `json:"areas_of_expertise"`
	OtherPresentationLinks []PresentationLink `json:"other_presentation_links"`
	TravelPreferences      []string           `json:"travel_preferences"`
	OrganizationalRoles    []int64            `json:"organizational_roles"`
	OtherOrganizationRole  string             `json:"other_organizational_rol,omitempty"`
	Affiliations           []*Affiliation     `json:"affiliations,omitempty"`
}

// Validate returns field-keyed errors for the speaker form.
func (s *Speaker) Validate() *ValidationError {
	fields := map[string]string{}
	if s.FirstName == "" {
		fields["first_name"] = "first name is required"
	}
	if s.LastName == "" {
		fields["last_name"] = "last name is required"
	}
	if s.Bio == "" {
		fields["bio"] = "bio is required"
	}
	if len(s.AreasOfExpertise) > MaxAreasOfExpertise {
		fields["areas_of_expertise"] = fmt.Sprintf("at most %d areas of expertise", MaxAreasOfExpertise)
	}
	if s.OrgHasCloud == nil {
		fields["org_has_cloud"] = "please select an option"
	}
	if len(fields) == 0 {
		return nil
	}
	return NewValidationError(fields)
}

// MaxAreasOfExpertise bounds the free-text expertise list.
const MaxAreasOfExpertise = 5

// ProfileService manages the logged member's speaker profile.
type ProfileService interface {
	GetMember(ctx context.Context, accessToken string) (*Member, error)
	// GetSpeaker returns (nil, nil) when the member has no speaker profile yet.
	GetSpeaker(ctx context.Context, accessToken string) (*Speaker, error)
	SaveSpeaker(ctx context.Context, accessToken string, speaker *Speaker) (*Speaker, error)
}

// AffiliationService manages the logged member's affiliations.
type AffiliationService interface {
	Add(ctx context.Context, accessToken string, a *Affiliation) (*Affiliation, error)
	Save(ctx context.Context, accessToken string, a *Affiliation) (*Affiliation, error)
	Delete(ctx context.Context, accessToken string, affiliationID int64) error
}
