package domain

import (
	"context"
	"strings"
	"time"
)

// Presentation progress as tracked by the Summit API.
const (
	ProgressNew      = 0
	ProgressSummary  = 1
	ProgressTags     = 2
	ProgressSpeakers = 3
	ProgressComplete = 4
)

// Edit steps of the presentation form, in order.
const (
	StepSummary  = "summary"
	StepTags     = "tags"
	StepSpeakers = "speakers"
	StepReview   = "review"
	StepPreview  = "preview"
	StepThankYou = "thank-you"
)

// Derived presentation statuses.
const (
	StatusNew          = "NEW"
	StatusInProgress   = "IN PROGRESS"
	StatusReceived     = "RECEIVED"
	StatusNotSubmitted = "NOT SUBMITTED"
	StatusAccepted     = "ACCEPTED"
	StatusRejected     = "REJECTED"
	StatusAlternate    = "ALTERNATE"
)

// PresentationRole is the relation between the logged speaker and a presentation.
type PresentationRole string

const (
	RoleCreator   PresentationRole = "creator"
	RoleSpeaker   PresentationRole = "speaker"
	RoleModerator PresentationRole = "moderator"
)

// PresentationRoles lists the roles in the order they are displayed.
var PresentationRoles = []PresentationRole{RoleCreator, RoleSpeaker, RoleModerator}

// PresentationSpeaker is a speaker reference embedded in a presentation.
type PresentationSpeaker struct {
	ID        int64  `json:"id"`
	MemberID  int64  `json:"member_id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Pic       string `json:"pic,omitempty"`
}

// Presentation is a speaker's submitted talk.
// swagger:model Presentation
type Presentation struct {
	ID                      int64                  `json:"id"`
	Title                   string                 `json:"title"`
	Description             string                 `json:"description"`
	SocialDescription       string                 `json:"social_description,omitempty"`
	AttendeesExpectedLearnt string                 `json:"attendees_expected_learnt,omitempty"`
	Level                   string                 `json:"level,omitempty"`
	TypeID                  int64                  `json:"type_id,omitempty"`
	TrackID                 int64                  `json:"track_id,omitempty"`
	SelectionPlanID         int64                  `json:"selection_plan_id"`
	CreatorID               int64                  `json:"creator_id,omitempty"`
	Speakers                []*PresentationSpeaker `json:"speakers,omitempty"`
	Moderator               *PresentationSpeaker   `json:"moderator,omitempty"`
	Status                  string                 `json:"status,omitempty"`
	Progress                int                    `json:"progress"`
	IsPublished             bool                   `json:"is_published"`
	SelectionStatus         string                 `json:"selection_status,omitempty"`
	Tags                    []string               `json:"tags,omitempty"`
	Links                   []string               `json:"links,omitempty"`
}

// Validate returns field-keyed errors for the summary step.
func (p *Presentation) Validate() *ValidationError {
	fields := map[string]string{}
	if strings.TrimSpace(p.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(p.Description) == "" {
		fields["description"] = "abstract is required"
	}
	if p.SelectionPlanID <= 0 {
		fields["selection_plan_id"] = "selection plan is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return NewValidationError(fields)
}

// PresentationModel derives editability and status of a presentation from
// its selection plan window and selection outcome. It holds no clock: every
// predicate takes the instant to evaluate at, so results are never stale.
type PresentationModel struct {
	presentation  *Presentation
	summit        *Summit
	selectionPlan *SelectionPlan
	speaker       *Speaker
}

// NewPresentationModel builds the model. When plan is nil it is looked up in
// the summit by the presentation's selection plan id.
func NewPresentationModel(p *Presentation, summit *Summit, plan *SelectionPlan, speaker *Speaker) *PresentationModel {
	if p == nil {
		p = &Presentation{}
	}
	if plan == nil {
		plan = summit.SelectionPlanByID(p.SelectionPlanID)
	}
	return &PresentationModel{
		presentation:  p,
		summit:        summit,
		selectionPlan: plan,
		speaker:       speaker,
	}
}

// Presentation returns the wrapped entity.
func (m *PresentationModel) Presentation() *Presentation { return m.presentation }

// SelectionPlan returns the plan the presentation belongs to, if known.
func (m *PresentationModel) SelectionPlan() *SelectionPlan { return m.selectionPlan }

// IsNew reports whether the presentation has not been created yet.
func (m *PresentationModel) IsNew() bool { return m.presentation.ID == 0 }

// IsWithinWindow reports whether the selection plan accepts submissions at now.
func (m *PresentationModel) IsWithinWindow(now time.Time) bool {
	return m.selectionPlan.IsOpen(now)
}

// IsCompleted reports whether every form step has been submitted.
func (m *PresentationModel) IsCompleted() bool {
	return m.presentation.Progress >= ProgressComplete
}

// IsFinalized reports whether a later stage (publication or track chair
// selection) has locked the presentation.
func (m *PresentationModel) IsFinalized() bool {
	if m.presentation.IsPublished {
		return true
	}
	switch strings.ToLower(m.presentation.SelectionStatus) {
	case "accepted", "rejected", "alternate":
		return true
	}
	return false
}

// CanEdit reports whether the presentation may still be modified at now.
func (m *PresentationModel) CanEdit(now time.Time) bool {
	return m.IsWithinWindow(now) && !m.IsFinalized()
}

// IsCreator reports whether the logged speaker created the presentation.
func (m *PresentationModel) IsCreator() bool {
	if m.speaker == nil {
		return false
	}
	if m.IsNew() {
		return true
	}
	return m.presentation.CreatorID != 0 && m.presentation.CreatorID == m.speaker.MemberID
}

// Status returns the status label shown in presentation lists.
func (m *PresentationModel) Status(now time.Time) string {
	if m.IsNew() {
		return StatusNew
	}
	switch strings.ToLower(m.presentation.SelectionStatus) {
	case "accepted":
		return StatusAccepted
	case "rejected":
		return StatusRejected
	case "alternate":
		return StatusAlternate
	}
	if m.IsCompleted() || strings.EqualFold(m.presentation.Status, "received") {
		return StatusReceived
	}
	if !m.IsWithinWindow(now) {
		return StatusNotSubmitted
	}
	return StatusInProgress
}

// NextStep returns the form step a speaker resumes editing at.
func (m *PresentationModel) NextStep() string {
	switch m.presentation.Progress {
	case ProgressNew:
		return StepSummary
	case ProgressSummary:
		return StepTags
	case ProgressTags:
		return StepSpeakers
	default:
		return StepReview
	}
}

// PresentationView is a presentation with its derived flags as sent to clients.
// swagger:model PresentationView
type PresentationView struct {
	*Presentation
	CanEdit       bool   `json:"can_edit"`
	IsCompleted   bool   `json:"is_completed"`
	IsCreator     bool   `json:"is_creator"`
	DerivedStatus string `json:"derived_status"`
	NextStep      string `json:"next_step"`
	WithinWindow  bool   `json:"within_window"`
	SelectionPlan string `json:"selection_plan_name,omitempty"`
}

// View evaluates the model at now.
func (m *PresentationModel) View(now time.Time) *PresentationView {
	v := &PresentationView{
		Presentation:  m.presentation,
		CanEdit:       m.CanEdit(now),
		IsCompleted:   m.IsCompleted(),
		IsCreator:     m.IsCreator(),
		DerivedStatus: m.Status(now),
		NextStep:      m.NextStep(),
		WithinWindow:  m.IsWithinWindow(now),
	}
	if m.selectionPlan != nil {
		v.SelectionPlan = m.selectionPlan.Name
	}
	return v
}

// PresentationLists groups the logged speaker's presentations for one plan.
// swagger:model PresentationLists
type PresentationLists struct {
	SelectionPlanID int64               `json:"selection_plan_id"`
	Created         []*PresentationView `json:"created"`
	Speaker         []*PresentationView `json:"speaker"`
	Moderator       []*PresentationView `json:"moderator"`
	CanSubmit       bool                `json:"can_submit"`
}

// PresentationService manages the logged speaker's presentations.
type PresentationService interface {
	ListForSelectionPlan(ctx context.Context, accessToken string, planID int64) (*PresentationLists, error)
	Get(ctx context.Context, accessToken string, presentationID int64) (*PresentationView, error)
	Create(ctx context.Context, accessToken string, p *Presentation) (*PresentationView, error)
	Update(ctx context.Context, accessToken string, p *Presentation) (*PresentationView, error)
	Complete(ctx context.Context, accessToken string, presentationID int64) (*PresentationView, error)
	Delete(ctx context.Context, accessToken string, presentationID int64) error
}
