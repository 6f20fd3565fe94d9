package controllers

import (
	"log/slog"
	"net/http"

	"cfpportal/internal/delivery/http/helpers"
	"cfpportal/internal/domain"
)

// PresentationSuccessResponse is the success envelope of single presentation endpoints.
type PresentationSuccessResponse struct {
	Data  *domain.PresentationView `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// PresentationListsSuccessResponse is the success envelope for the per-plan listing.
type PresentationListsSuccessResponse struct {
	Data  *domain.PresentationLists `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// PresentationController handles the logged speaker's presentations.
type PresentationController struct {
	Logger  *slog.Logger
	Service domain.PresentationService
}

// NewPresentationController creates a PresentationController.
func NewPresentationController(logger *slog.Logger, svc domain.PresentationService) *PresentationController {
	return &PresentationController{Logger: logger, Service: svc}
}

// ListForSelectionPlan godoc
// @Summary Presentations of a selection plan
// @Description The presentations the logged speaker created, speaks at or moderates for the plan, with derived flags.
// @Tags presentations
// @Produce json
// @Security SessionAuth
// @Param id path int true "Selection plan id"
// @Success 200 {object} controllers.PresentationListsSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_error"
// @Router /api/v1/selection-plans/{id}/presentations [get]
func (c *PresentationController) ListForSelectionPlan(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	planID, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	lists, err := c.Service.ListForSelectionPlan(r.Context(), token, planID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, lists)
}

// Get godoc
// @Summary Get presentation
// @Tags presentations
// @Produce json
// @Security SessionAuth
// @Param id path int true "Presentation id"
// @Success 200 {object} controllers.PresentationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/v1/presentations/{id} [get]
func (c *PresentationController) Get(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	view, err := c.Service.Get(r.Context(), token, id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// Create godoc
// @Summary Create presentation
// @Description Saves the summary step of a new presentation. Refused once the selection plan is closed.
// @Tags presentations
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param body body domain.Presentation true "Presentation summary"
// @Success 201 {object} controllers.PresentationSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: presentation_locked"
// @Failure 412 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /api/v1/presentations [post]
func (c *PresentationController) Create(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	var p domain.Presentation
	if !helpers.DecodeAndValidate(w, r, &p) {
		return
	}
	p.ID = 0
	view, err := c.Service.Create(r.Context(), token, &p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, view)
}

// Update godoc
// @Summary Update presentation
// @Description Saves a form step. Refused with presentation_locked when the presentation can no longer be edited.
// @Tags presentations
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Presentation id"
// @Param body body domain.Presentation true "Presentation"
// @Success 200 {object} controllers.PresentationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: presentation_locked"
// @Failure 412 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /api/v1/presentations/{id} [put]
func (c *PresentationController) Update(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var p domain.Presentation
	if !helpers.DecodeAndValidate(w, r, &p) {
		return
	}
	p.ID = id
	view, err := c.Service.Update(r.Context(), token, &p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// Complete godoc
// @Summary Submit presentation
// @Description Marks the presentation complete and emails a confirmation to the speaker.
// @Tags presentations
// @Produce json
// @Security SessionAuth
// @Param id path int true "Presentation id"
// @Success 200 {object} controllers.PresentationSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: presentation_locked"
// @Router /api/v1/presentations/{id}/completed [put]
func (c *PresentationController) Complete(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	view, err := c.Service.Complete(r.Context(), token, id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// Delete godoc
// @Summary Delete presentation
// @Tags presentations
// @Security SessionAuth
// @Param id path int true "Presentation id"
// @Success 204
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: presentation_locked"
// @Router /api/v1/presentations/{id} [delete]
func (c *PresentationController) Delete(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), token, id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
