package controllers

import (
	"log/slog"
	"net/http"

	"cfpportal/internal/delivery/http/helpers"
	"cfpportal/internal/delivery/http/middleware"
	"cfpportal/internal/domain"
)

// MemberSuccessResponse is the success envelope for GET /api/v1/members/me.
type MemberSuccessResponse struct {
	Data  *domain.Member    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SpeakerSuccessResponse is the success envelope of the speaker profile
// endpoints. Data is null when the member has no speaker profile yet.
type SpeakerSuccessResponse struct {
	Data  *domain.Speaker   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AffiliationSuccessResponse is the success envelope of the affiliation endpoints.
type AffiliationSuccessResponse struct {
	Data  *domain.Affiliation `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ProfileController handles the speaker profile and affiliations of the
// logged member.
type ProfileController struct {
	Logger       *slog.Logger
	Profiles     domain.ProfileService
	Affiliations domain.AffiliationService
}

// NewProfileController creates a ProfileController.
func NewProfileController(logger *slog.Logger, profiles domain.ProfileService, affiliations domain.AffiliationService) *ProfileController {
	return &ProfileController{Logger: logger, Profiles: profiles, Affiliations: affiliations}
}

// accessToken returns the caller's access token, answering 401 when the
// route was mounted without a session guard.
func accessToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return p.AccessToken, true
}

// GetMember godoc
// @Summary Logged member
// @Tags profile
// @Produce json
// @Security SessionAuth
// @Success 200 {object} controllers.MemberSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/v1/members/me [get]
func (c *ProfileController) GetMember(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	member, err := c.Profiles.GetMember(r.Context(), token)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, member)
}

// GetSpeaker godoc
// @Summary Speaker profile
// @Description Returns the speaker profile of the logged member; data is null when none exists yet.
// @Tags profile
// @Produce json
// @Security SessionAuth
// @Success 200 {object} controllers.SpeakerSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/v1/speakers/me [get]
func (c *ProfileController) GetSpeaker(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	speaker, err := c.Profiles.GetSpeaker(r.Context(), token)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, speaker)
}

// SaveSpeaker godoc
// @Summary Save speaker profile
// @Description Creates the speaker profile when the member has none, otherwise updates it.
// @Tags profile
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param body body domain.Speaker true "Speaker profile"
// @Success 200 {object} controllers.SpeakerSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 412 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /api/v1/speakers/me [put]
func (c *ProfileController) SaveSpeaker(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	var speaker domain.Speaker
	if !helpers.DecodeAndValidate(w, r, &speaker) {
		return
	}
	saved, err := c.Profiles.SaveSpeaker(r.Context(), token, &speaker)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, saved)
}

// AddAffiliation godoc
// @Summary Add affiliation
// @Tags profile
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param body body domain.Affiliation true "Affiliation"
// @Success 201 {object} controllers.AffiliationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 412 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /api/v1/members/me/affiliations [post]
func (c *ProfileController) AddAffiliation(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	var a domain.Affiliation
	if !helpers.DecodeAndValidate(w, r, &a) {
		return
	}
	a.ID = 0
	saved, err := c.Affiliations.Add(r.Context(), token, &a)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, saved)
}

// SaveAffiliation godoc
// @Summary Update affiliation
// @Tags profile
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Affiliation id"
// @Param body body domain.Affiliation true "Affiliation"
// @Success 200 {object} controllers.AffiliationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 412 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /api/v1/members/me/affiliations/{id} [put]
func (c *ProfileController) SaveAffiliation(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var a domain.Affiliation
	if !helpers.DecodeAndValidate(w, r, &a) {
		return
	}
	a.ID = id
	saved, err := c.Affiliations.Save(r.Context(), token, &a)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, saved)
}

// DeleteAffiliation godoc
// @Summary Delete affiliation
// @Tags profile
// @Security SessionAuth
// @Param id path int true "Affiliation id"
// @Success 204
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/v1/members/me/affiliations/{id} [delete]
func (c *ProfileController) DeleteAffiliation(w http.ResponseWriter, r *http.Request) {
	token, ok := accessToken(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Affiliations.Delete(r.Context(), token, id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
