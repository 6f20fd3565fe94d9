package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cfpportal/internal/delivery/http/helpers"
	"cfpportal/internal/domain"
)

// ClientConfig is what the browser application needs to talk to the
// identity provider and the Summit API.
// swagger:model ClientConfig
type ClientConfig struct {
	IDPBaseURL        string   `json:"idp_base_url"`
	APIBaseURL        string   `json:"api_base_url"`
	ClientID          string   `json:"client_id"`
	Scopes            []string `json:"scopes"`
	AppClientName     string   `json:"app_client_name"`
	ExclusiveSections []string `json:"exclusive_sections"`
}

// SummitSuccessResponse is the success envelope for GET /api/v1/summit.
type SummitSuccessResponse struct {
	Data  *domain.Summit    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// HeaderSuccessResponse is the success envelope for GET /api/v1/summit/header.
type HeaderSuccessResponse struct {
	Data  *domain.SummitHeader `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// SelectionPlansSuccessResponse is the success envelope for GET /api/v1/selection-plans.
type SelectionPlansSuccessResponse struct {
	Data  []*domain.SelectionPlan `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ConfigSuccessResponse is the success envelope for GET /api/v1/config.
type ConfigSuccessResponse struct {
	Data  ClientConfig      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SummitController serves public summit data.
type SummitController struct {
	Logger  *slog.Logger
	Service domain.SummitService
	Config  ClientConfig
	now     func() time.Time
}

// NewSummitController creates a SummitController.
func NewSummitController(logger *slog.Logger, svc domain.SummitService, cfg ClientConfig) *SummitController {
	if cfg.Scopes == nil {
		cfg.Scopes = []string{}
	}
	if cfg.ExclusiveSections == nil {
		cfg.ExclusiveSections = []string{}
	}
	return &SummitController{Logger: logger, Service: svc, Config: cfg, now: time.Now}
}

// GetSummit godoc
// @Summary Current summit
// @Description Returns the current summit with its selection plans.
// @Tags summit
// @Produce json
// @Success 200 {object} controllers.SummitSuccessResponse
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_error"
// @Router /api/v1/summit [get]
func (c *SummitController) GetSummit(w http.ResponseWriter, r *http.Request) {
	summit, err := c.Service.CurrentSummit(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summit)
}

// GetHeader godoc
// @Summary Page header
// @Description Title, subtitle and logo shown on every page, computed at request time.
// @Tags summit
// @Produce json
// @Success 200 {object} controllers.HeaderSuccessResponse
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_error"
// @Router /api/v1/summit/header [get]
func (c *SummitController) GetHeader(w http.ResponseWriter, r *http.Request) {
	header, err := c.Service.Header(r.Context(), c.now())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, header)
}

// ListSelectionPlans godoc
// @Summary Selection plans
// @Description Enabled selection plans ordered by submission begin date. With id, only that plan, enabled or not.
// @Tags summit
// @Produce json
// @Param id query int false "Selection plan id"
// @Success 200 {object} controllers.SelectionPlansSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_error"
// @Router /api/v1/selection-plans [get]
func (c *SummitController) ListSelectionPlans(w http.ResponseWriter, r *http.Request) {
	var planID int64
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid id")
			return
		}
		planID = id
	}
	plans, err := c.Service.SelectionPlans(r.Context(), planID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, plans)
}

// GetConfig godoc
// @Summary Client configuration
// @Description Identity provider and API settings for the browser application.
// @Tags summit
// @Produce json
// @Success 200 {object} controllers.ConfigSuccessResponse
// @Router /api/v1/config [get]
func (c *SummitController) GetConfig(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Config)
}
