package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cfpportal/internal/delivery/http/helpers"
	"cfpportal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresentationController_ListForSelectionPlan(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		svc        *fakePresentationService
		wantStatus int
		wantCode   string
	}{
		{
			name: "success",
			id:   "4",
			svc: &fakePresentationService{lists: &domain.PresentationLists{
				SelectionPlanID: 4,
				Created:         []*domain.PresentationView{{Presentation: &domain.Presentation{ID: 1}, CanEdit: true}},
				Speaker:         []*domain.PresentationView{},
				Moderator:       []*domain.PresentationView{},
				CanSubmit:       true,
			}},
			wantStatus: http.StatusOK,
		},
		{name: "unknown plan", id: "9", svc: &fakePresentationService{err: domain.ErrNotFound}, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "invalid id", id: "0", svc: &fakePresentationService{}, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewPresentationController(testLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodGet, "http://test/api/v1/selection-plans/"+tt.id+"/presentations", nil)
			req.SetPathValue("id", tt.id)
			rr := httptest.NewRecorder()
			ctrl.ListForSelectionPlan(rr, withPrincipal(req))

			require.Equal(t, tt.wantStatus, rr.Code)
			var lists domain.PresentationLists
			apiErr := decodeEnvelope(t, rr.Body, &lists)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			require.Nil(t, apiErr)
			assert.Equal(t, "tok", tt.svc.gotToken)
			assert.True(t, lists.CanSubmit)
			require.Len(t, lists.Created, 1)
			assert.True(t, lists.Created[0].CanEdit)
		})
	}
}

func TestPresentationController_Update(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "saved", body: `{"title":"Nova at scale","description":"d","selection_plan_id":4,"progress":1}`, wantStatus: http.StatusOK},
		{name: "locked", body: `{"title":"t","description":"d","selection_plan_id":4}`, svcErr: domain.ErrPresentationLocked, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodePresentationLocked},
		{
			name:       "upstream validation",
			body:       `{"title":"t","description":"d","selection_plan_id":4}`,
			svcErr:     domain.NewValidationError(map[string]string{"general": "track is required"}),
			wantStatus: http.StatusPreconditionFailed,
			wantCode:   helpers.ErrCodeValidationFailed,
		},
		{name: "unknown field", body: `{"titel":"t"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePresentationService{err: tt.svcErr}
			ctrl := NewPresentationController(testLogger(), svc)
			req := httptest.NewRequest(http.MethodPut, "http://test/api/v1/presentations/5", strings.NewReader(tt.body))
			req.SetPathValue("id", "5")
			rr := httptest.NewRecorder()
			ctrl.Update(rr, withPrincipal(req))

			require.Equal(t, tt.wantStatus, rr.Code)
			var view domain.PresentationView
			apiErr := decodeEnvelope(t, rr.Body, &view)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			require.Nil(t, apiErr)
			require.NotNil(t, svc.got)
			assert.Equal(t, int64(5), svc.got.ID, "path id wins over body")
			assert.Equal(t, "Nova at scale", view.Title)
			assert.True(t, view.CanEdit)
		})
	}
}

func TestPresentationController_Create(t *testing.T) {
	svc := &fakePresentationService{}
	ctrl := NewPresentationController(testLogger(), svc)
	body := `{"id":123,"title":"Nova","description":"d","selection_plan_id":4}`
	rr := httptest.NewRecorder()
	ctrl.Create(rr, withPrincipal(httptest.NewRequest(http.MethodPost, "http://test/api/v1/presentations", strings.NewReader(body))))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(0), svc.got.ID)
	assert.Equal(t, int64(4), svc.got.SelectionPlanID)
}

func TestPresentationController_Complete(t *testing.T) {
	svc := &fakePresentationService{view: &domain.PresentationView{
		Presentation: &domain.Presentation{ID: 5, Progress: domain.ProgressComplete},
		IsCompleted:  true,
	}}
	ctrl := NewPresentationController(testLogger(), svc)
	req := httptest.NewRequest(http.MethodPut, "http://test/api/v1/presentations/5/completed", nil)
	req.SetPathValue("id", "5")
	rr := httptest.NewRecorder()
	ctrl.Complete(rr, withPrincipal(req))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(5), svc.gotID)
	var view domain.PresentationView
	require.Nil(t, decodeEnvelope(t, rr.Body, &view))
	assert.True(t, view.IsCompleted)
}

func TestPresentationController_Delete(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"locked", domain.ErrPresentationLocked, http.StatusConflict},
		{"missing", domain.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePresentationService{err: tt.svcErr}
			ctrl := NewPresentationController(testLogger(), svc)
			req := httptest.NewRequest(http.MethodDelete, "http://test/api/v1/presentations/5", nil)
			req.SetPathValue("id", "5")
			rr := httptest.NewRecorder()
			ctrl.Delete(rr, withPrincipal(req))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, int64(5), svc.deletedID)
		})
	}
}

func TestPresentationController_canceledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := &fakePresentationService{err: context.Canceled}
	ctrl := NewPresentationController(testLogger(), svc)
	req := httptest.NewRequest(http.MethodGet, "http://test/api/v1/presentations/5", nil).WithContext(ctx)
	req.SetPathValue("id", "5")
	rr := httptest.NewRecorder()
	ctrl.Get(rr, withPrincipal(req))

	assert.Empty(t, rr.Body.String())
}
