package controllers

import (
	"net/http"
	"strings"

	"cfpportal/internal/delivery/http/helpers"
	"cfpportal/internal/delivery/http/middleware"
)

// languageCookieMaxAge keeps the language choice for a year.
const languageCookieMaxAge = 365 * 24 * 60 * 60

// LanguageRequest is the request body for PUT /api/v1/preferences/language.
type LanguageRequest struct {
	Language string `json:"language"`
}

// Validate implements Validator.
func (l LanguageRequest) Validate() []string {
	if strings.TrimSpace(l.Language) == "" {
		return []string{"language is required"}
	}
	if _, ok := middleware.IsSupportedLanguage(strings.TrimSpace(l.Language)); !ok {
		return []string{"unsupported language"}
	}
	return nil
}

// Preferences is the response body of the preferences endpoints.
type Preferences struct {
	Language string `json:"language"`
}

// PreferencesSuccessResponse is the success envelope of the preferences endpoints.
type PreferencesSuccessResponse struct {
	Data  Preferences       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PreferencesController stores UI preferences in cookies.
type PreferencesController struct {
	SecureCookies bool
}

// NewPreferencesController creates a PreferencesController.
func NewPreferencesController(secureCookies bool) *PreferencesController {
	return &PreferencesController{SecureCookies: secureCookies}
}

// Get godoc
// @Summary Current preferences
// @Description The language resolved from the PREFERRED_LANGUAGE cookie or Accept-Language.
// @Tags preferences
// @Produce json
// @Success 200 {object} controllers.PreferencesSuccessResponse
// @Router /api/v1/preferences [get]
func (c *PreferencesController) Get(w http.ResponseWriter, r *http.Request) {
	tag := middleware.LanguageFromContext(r.Context())
	helpers.WriteJSONSuccess(w, http.StatusOK, Preferences{Language: tag.String()})
}

// SetLanguage godoc
// @Summary Set language
// @Tags preferences
// @Accept json
// @Produce json
// @Param body body LanguageRequest true "Language code"
// @Success 200 {object} controllers.PreferencesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /api/v1/preferences/language [put]
func (c *PreferencesController) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tag, _ := middleware.IsSupportedLanguage(strings.TrimSpace(req.Language))
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.LanguageCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   languageCookieMaxAge,
		Secure:   c.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	helpers.WriteJSONSuccess(w, http.StatusOK, Preferences{Language: tag.String()})
}
