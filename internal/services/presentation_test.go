package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfpportal/internal/domain"
)

// At now=1500 plan 1 (Main) is open and plan 3 (Late) has not started.
var presentationNow = time.Unix(1500, 0)

func newPresentationService(api *fakeSummitAPI, email domain.EmailService) *presentationService {
	svc := NewPresentationService(api, &fixedSummitService{summit: testSummit()}, email, discardLogger()).(*presentationService)
	svc.now = func() time.Time { return presentationNow }
	return svc
}

func TestPresentationService_ListForSelectionPlan(t *testing.T) {
	api := &fakeSummitAPI{
		speaker: &domain.Speaker{ID: 5, MemberID: 42},
		byRole: map[domain.PresentationRole][]*domain.Presentation{
			domain.RoleCreator: {
				{ID: 1, SelectionPlanID: 1, CreatorID: 42, Progress: domain.ProgressComplete},
				{ID: 2, SelectionPlanID: 1, CreatorID: 42, SelectionStatus: "accepted"},
			},
			domain.RoleSpeaker:   {{ID: 3, SelectionPlanID: 1, CreatorID: 7}},
			domain.RoleModerator: nil,
		},
	}
	svc := newPresentationService(api, nil)

	lists, err := svc.ListForSelectionPlan(context.Background(), "tok", 1)
	require.NoError(t, err)
	require.Len(t, lists.Created, 2)
	require.Len(t, lists.Speaker, 1)
	assert.Empty(t, lists.Moderator)
	assert.NotNil(t, lists.Moderator)
	assert.True(t, lists.CanSubmit)

	assert.True(t, lists.Created[0].CanEdit, "completed presentations stay editable while the window is open")
	assert.Equal(t, domain.StatusReceived, lists.Created[0].DerivedStatus)
	assert.True(t, lists.Created[0].IsCreator)
	assert.False(t, lists.Created[1].CanEdit)
	assert.Equal(t, domain.StatusAccepted, lists.Created[1].DerivedStatus)
	assert.False(t, lists.Speaker[0].IsCreator)
	assert.Equal(t, "Main", lists.Speaker[0].SelectionPlan)
	assert.Len(t, api.tokens, 4)
}

func TestPresentationService_ListForSelectionPlan_closedAndLimits(t *testing.T) {
	summit := testSummit()
	summit.SelectionPlans[1].MaxSubmissionAllowedPerUser = 1
	api := &fakeSummitAPI{byRole: map[domain.PresentationRole][]*domain.Presentation{
		domain.RoleCreator: {{ID: 1, SelectionPlanID: 1}},
	}}
	svc := NewPresentationService(api, &fixedSummitService{summit: summit}, nil, discardLogger()).(*presentationService)
	svc.now = func() time.Time { return presentationNow }

	lists, err := svc.ListForSelectionPlan(context.Background(), "tok", 1)
	require.NoError(t, err)
	assert.False(t, lists.CanSubmit, "submission limit reached")

	lists, err = svc.ListForSelectionPlan(context.Background(), "tok", 3)
	require.NoError(t, err)
	assert.False(t, lists.CanSubmit, "window not open yet")
}

func TestPresentationService_ListForSelectionPlan_errors(t *testing.T) {
	t.Run("unknown plan", func(t *testing.T) {
		_, err := newPresentationService(&fakeSummitAPI{}, nil).ListForSelectionPlan(context.Background(), "tok", 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("one role fails", func(t *testing.T) {
		api := &fakeSummitAPI{listErr: map[domain.PresentationRole]error{domain.RoleModerator: domain.ErrUnauthorized}}
		_, err := newPresentationService(api, nil).ListForSelectionPlan(context.Background(), "tok", 1)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestPresentationService_Get(t *testing.T) {
	api := &fakeSummitAPI{
		speaker:       &domain.Speaker{ID: 5, MemberID: 42},
		presentations: map[int64]*domain.Presentation{10: {ID: 10, SelectionPlanID: 1, CreatorID: 42, Progress: domain.ProgressTags}},
	}
	view, err := newPresentationService(api, nil).Get(context.Background(), "tok", 10)
	require.NoError(t, err)
	assert.True(t, view.CanEdit)
	assert.Equal(t, domain.StepSpeakers, view.NextStep)
	assert.Equal(t, domain.StatusInProgress, view.DerivedStatus)

	_, err = newPresentationService(api, nil).Get(context.Background(), "tok", 11)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPresentationService_Create(t *testing.T) {
	tests := []struct {
		name      string
		p         *domain.Presentation
		wantErr   error
		wantField string
	}{
		{name: "ok", p: &domain.Presentation{Title: "T", Description: "D", SelectionPlanID: 1}},
		{name: "missing title", p: &domain.Presentation{Description: "D", SelectionPlanID: 1}, wantErr: domain.ErrInvalidInput, wantField: "title"},
		{name: "unknown plan", p: &domain.Presentation{Title: "T", Description: "D", SelectionPlanID: 99}, wantErr: domain.ErrInvalidInput, wantField: "selection_plan_id"},
		{name: "closed plan", p: &domain.Presentation{Title: "T", Description: "D", SelectionPlanID: 3}, wantErr: domain.ErrPresentationLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSummitAPI{speaker: &domain.Speaker{ID: 5, MemberID: 42}}
			view, err := newPresentationService(api, nil).Create(context.Background(), "tok", tt.p)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantField != "" {
					var verr *domain.ValidationError
					require.True(t, errors.As(err, &verr))
					assert.Contains(t, verr.Fields, tt.wantField)
				}
				assert.Nil(t, api.created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(77), view.ID)
			assert.True(t, view.IsCreator)
			assert.Equal(t, domain.StepTags, view.NextStep)
		})
	}
}

func TestPresentationService_Update_locked(t *testing.T) {
	tests := []struct {
		name    string
		stored  *domain.Presentation
		wantErr error
	}{
		{name: "editable", stored: &domain.Presentation{ID: 10, SelectionPlanID: 1}},
		{name: "published", stored: &domain.Presentation{ID: 10, SelectionPlanID: 1, IsPublished: true}, wantErr: domain.ErrPresentationLocked},
		{name: "rejected", stored: &domain.Presentation{ID: 10, SelectionPlanID: 1, SelectionStatus: "rejected"}, wantErr: domain.ErrPresentationLocked},
		{name: "window closed", stored: &domain.Presentation{ID: 10, SelectionPlanID: 3}, wantErr: domain.ErrPresentationLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSummitAPI{presentations: map[int64]*domain.Presentation{10: tt.stored}}
			_, err := newPresentationService(api, nil).Update(context.Background(), "tok",
				&domain.Presentation{ID: 10, Title: "New", Description: "D"})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, api.updated)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, api.updated)
			assert.Equal(t, int64(1), api.updated.SelectionPlanID)
		})
	}
}

func TestPresentationService_Update_cannotMovePlan(t *testing.T) {
	api := &fakeSummitAPI{presentations: map[int64]*domain.Presentation{10: {ID: 10, SelectionPlanID: 1}}}
	_, err := newPresentationService(api, nil).Update(context.Background(), "tok",
		&domain.Presentation{ID: 10, Title: "T", Description: "D", SelectionPlanID: 3})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPresentationService_Complete_sendsEmail(t *testing.T) {
	email := &fakeEmailService{}
	api := &fakeSummitAPI{
		speaker:       &domain.Speaker{ID: 5, MemberID: 42, Email: "ada@example.org", FirstName: "Ada"},
		presentations: map[int64]*domain.Presentation{10: {ID: 10, Title: "Talk", SelectionPlanID: 1, Progress: domain.ProgressSpeakers}},
	}
	view, err := newPresentationService(api, email).Complete(context.Background(), "tok", 10)
	require.NoError(t, err)
	assert.True(t, view.IsCompleted)
	assert.Equal(t, int64(10), api.completed)

	require.Len(t, email.sent, 1)
	sent := email.sent[0]
	assert.Equal(t, "ada@example.org", sent.Email)
	assert.Equal(t, "Talk", sent.PresentationTitle)
	assert.Equal(t, "Main", sent.SelectionPlanName)
	assert.Equal(t, "OpenInfra Summit", sent.SummitName)
}

func TestPresentationService_Complete_emailFailureIsNotFatal(t *testing.T) {
	email := &fakeEmailService{err: errors.New("smtp down")}
	api := &fakeSummitAPI{
		member:        &domain.Member{ID: 42, Email: "m@example.org"},
		presentations: map[int64]*domain.Presentation{10: {ID: 10, SelectionPlanID: 1}},
	}
	_, err := newPresentationService(api, email).Complete(context.Background(), "tok", 10)
	require.NoError(t, err)
	require.Len(t, email.sent, 1)
	assert.Equal(t, "m@example.org", email.sent[0].Email, "falls back to the member email")
}

func TestPresentationService_Delete(t *testing.T) {
	api := &fakeSummitAPI{presentations: map[int64]*domain.Presentation{
		10: {ID: 10, SelectionPlanID: 1},
		11: {ID: 11, SelectionPlanID: 1, SelectionStatus: "alternate"},
	}}
	svc := newPresentationService(api, nil)

	require.NoError(t, svc.Delete(context.Background(), "tok", 10))
	assert.Equal(t, int64(10), api.deleted)

	require.ErrorIs(t, svc.Delete(context.Background(), "tok", 11), domain.ErrPresentationLocked)
	require.ErrorIs(t, svc.Delete(context.Background(), "tok", 0), domain.ErrInvalidInput)
}
