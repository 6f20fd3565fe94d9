package domain

import (
	"context"
	"sort"
	"time"
	_ "time/tzdata" // summit time zones must resolve in minimal containers
)

// Summit is a conference as exposed by the Summit API.
// swagger:model Summit
type Summit struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Logo           string           `json:"logo"`
	TimeZoneID     string           `json:"time_zone_id"`
	StartDate      int64            `json:"start_date"`
	EndDate        int64            `json:"end_date"`
	SelectionPlans []*SelectionPlan `json:"selection_plans"`
}

// SelectionPlan is a submission window of a summit. Dates are epoch seconds.
// swagger:model SelectionPlan
type SelectionPlan struct {
	ID                          int64  `json:"id"`
	Name                        string `json:"name"`
	IsEnabled                   bool   `json:"is_enabled"`
	SubmissionBeginDate         int64  `json:"submission_begin_date"`
	SubmissionEndDate           int64  `json:"submission_end_date"`
	MaxSubmissionAllowedPerUser int    `json:"max_submission_allowed_per_user"`
	SummitID                    int64  `json:"summit_id"`
}

// IsOpen reports whether now falls inside the submission window, bounds
// included. A plan without both bounds is never open.
func (p *SelectionPlan) IsOpen(now time.Time) bool {
	if p == nil || p.SubmissionBeginDate == 0 || p.SubmissionEndDate == 0 {
		return false
	}
	ts := now.Unix()
	return ts >= p.SubmissionBeginDate && ts <= p.SubmissionEndDate
}

// SubmissionEnd returns the end of the window as a time in loc.
func (p *SelectionPlan) SubmissionEnd(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(p.SubmissionEndDate, 0).In(loc)
}

// SelectionPlanByID returns the summit's plan with the given id, or nil.
func (s *Summit) SelectionPlanByID(id int64) *SelectionPlan {
	if s == nil {
		return nil
	}
	for _, sp := range s.SelectionPlans {
		if sp.ID == id {
			return sp
		}
	}
	return nil
}

// Location resolves the summit time zone, falling back to UTC.
func (s *Summit) Location() *time.Location {
	if s == nil || s.TimeZoneID == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.TimeZoneID)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AvailableSelectionPlans returns the plans a speaker may browse. When planID
// is positive only plans with that id are returned, whatever their enabled
// flag; otherwise every enabled plan is returned. The result is ordered by
// submission begin date and never aliases the summit's slice.
func AvailableSelectionPlans(summit *Summit, planID int64) []*SelectionPlan {
	plans := []*SelectionPlan{}
	if summit == nil {
		return plans
	}
	for _, sp := range summit.SelectionPlans {
		if sp == nil {
			continue
		}
		if planID > 0 {
			if sp.ID == planID {
				plans = append(plans, sp)
			}
			continue
		}
		if sp.IsEnabled {
			plans = append(plans, sp)
		}
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].SubmissionBeginDate < plans[j].SubmissionBeginDate
	})
	return plans
}

// CurrentSelectionPlan returns the earliest-starting enabled plan whose
// window contains now, or nil when submissions are closed.
func CurrentSelectionPlan(summit *Summit, now time.Time) *SelectionPlan {
	for _, sp := range AvailableSelectionPlans(summit, 0) {
		if sp.IsOpen(now) {
			return sp
		}
	}
	return nil
}

// SummitHeader is the title block shown on every page.
// swagger:model SummitHeader
type SummitHeader struct {
	Logo             string         `json:"logo"`
	Title            string         `json:"title"`
	Subtitle         string         `json:"subtitle"`
	SubmissionsOpen  bool           `json:"submissions_open"`
	CurrentPlan      *SelectionPlan `json:"current_selection_plan"`
	SummitID         int64          `json:"summit_id"`
	SubmissionEndsAt *time.Time     `json:"submission_ends_at,omitempty"`
}

// SummitCache stores JSON-serialisable values for a bounded time.
type SummitCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// SummitService exposes public summit data and selection plan browsing.
type SummitService interface {
	CurrentSummit(ctx context.Context) (*Summit, error)
	Header(ctx context.Context, now time.Time) (*SummitHeader, error)
	SelectionPlans(ctx context.Context, planID int64) ([]*SelectionPlan, error)
}
