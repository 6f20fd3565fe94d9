// Package summitapi is the HTTP client of the Summit REST API.
package summitapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cfpportal/internal/adapters/metrics"
	"cfpportal/internal/domain"
)

const maxErrorBody = 64 << 10

type summitHTTPClient struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
}

// NewHTTPClient returns a domain.SummitAPI that calls the Summit API at baseURL.
// m may be nil.
func NewHTTPClient(baseURL string, client *http.Client, m *metrics.Metrics) domain.SummitAPI {
	if client == nil {
		client = http.DefaultClient
	}
	return &summitHTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		metrics: m,
	}
}

// request describes one Summit API call.
type request struct {
	op     string
	method string
	path   string
	token  string
	query  url.Values
	body   any
}

func (c *summitHTTPClient) do(ctx context.Context, r request, out any) error {
	q := url.Values{}
	for k, v := range r.query {
		q[k] = v
	}
	if r.token != "" {
		q.Set("access_token", r.token)
	}
	u := c.baseURL + r.path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", r.op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(r.op, 0, time.Since(start))
		return fmt.Errorf("%s: request failed: %w: %w", r.op, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(r.op, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: failed to decode response: %w", r.op, err)
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", r.op, domain.ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", r.op, domain.ErrNotFound)
	case http.StatusPreconditionFailed, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", r.op, parseValidationError(raw))
	}
	return fmt.Errorf("%s: %w: summit api returned status: %d", r.op, domain.ErrUpstream, resp.StatusCode)
}

// apiErrorBody is the error payload of the Summit API. Errors is either a
// list of messages or a field-keyed object.
type apiErrorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// generalField keys messages the API does not attach to a field.
const generalField = "general"

func parseValidationError(raw []byte) *domain.ValidationError {
	fields := map[string]string{}
	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Errors) > 0 {
		var list []string
		var byField map[string]any
		switch {
		case json.Unmarshal(body.Errors, &list) == nil:
			if len(list) > 0 {
				fields[generalField] = strings.Join(list, "; ")
			}
		case json.Unmarshal(body.Errors, &byField) == nil:
			for k, v := range byField {
				if msg := fieldMessage(v); msg != "" {
					fields[k] = msg
				}
			}
		}
		if len(fields) == 0 && body.Message != "" {
			fields[generalField] = body.Message
		}
	}
	if len(fields) == 0 {
		if len(body.Message) > 0 {
			fields[generalField] = body.Message
		} else {
			fields[generalField] = "validation failed"
		}
	}
	return domain.NewValidationError(fields)
}

func fieldMessage(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		msgs := make([]string, 0, len(t))
		for _, m := range t {
			if s, ok := m.(string); ok && s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func (c *summitHTTPClient) GetCurrentSummit(ctx context.Context) (*domain.Summit, error) {
	var s domain.Summit
	err := c.do(ctx, request{
		op:     "get_current_summit",
		method: http.MethodGet,
		path:   "/api/public/v1/summits/current",
		query:  url.Values{"expand": {"selection_plans"}},
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *summitHTTPClient) GetMember(ctx context.Context, accessToken string) (*domain.Member, error) {
	var m domain.Member
	if err := c.do(ctx, request{op: "get_member", method: http.MethodGet, path: "/api/v1/members/me", token: accessToken}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

var speakerExpand = url.Values{"expand": {"member,affiliations,affiliations.organization,other_presentation_links"}}

func (c *summitHTTPClient) GetSpeaker(ctx context.Context, accessToken string) (*domain.Speaker, error) {
	var s domain.Speaker
	err := c.do(ctx, request{
		op:     "get_speaker",
		method: http.MethodGet,
		path:   "/api/v1/speakers/me",
		token:  accessToken,
		query:  speakerExpand,
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *summitHTTPClient) CreateSpeaker(ctx context.Context, accessToken string, s *domain.Speaker) (*domain.Speaker, error) {
	var out domain.Speaker
	err := c.do(ctx, request{
		op:     "create_speaker",
		method: http.MethodPost,
		path:   "/api/v1/speakers/me",
		token:  accessToken,
		query:  speakerExpand,
		body:   s,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *summitHTTPClient) UpdateSpeaker(ctx context.Context, accessToken string, s *domain.Speaker) (*domain.Speaker, error) {
	var out domain.Speaker
	err := c.do(ctx, request{
		op:     "update_speaker",
		method: http.MethodPut,
		path:   "/api/v1/speakers/me",
		token:  accessToken,
		query:  speakerExpand,
		body:   s,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *summitHTTPClient) AddAffiliation(ctx context.Context, accessToken string, entity map[string]any) (*domain.Affiliation, error) {
	var out domain.Affiliation
	err := c.do(ctx, request{
		op:     "add_affiliation",
		method: http.MethodPost,
		path:   "/api/v1/members/me/affiliations",
		token:  accessToken,
		query:  url.Values{"expand": {"organization"}},
		body:   entity,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *summitHTTPClient) SaveAffiliation(ctx context.Context, accessToken string, affiliationID int64, entity map[string]any) (*domain.Affiliation, error) {
	var out domain.Affiliation
	err := c.do(ctx, request{
		op:     "save_affiliation",
		method: http.MethodPut,
		path:   "/api/v1/members/me/affiliations/" + id(affiliationID),
		token:  accessToken,
		query:  url.Values{"expand": {"organization"}},
		body:   entity,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *summitHTTPClient) DeleteAffiliation(ctx context.Context, accessToken string, affiliationID int64) error {
	return c.do(ctx, request{
		op:     "delete_affiliation",
		method: http.MethodDelete,
		path:   "/api/v1/members/me/affiliations/" + id(affiliationID),
		token:  accessToken,
	}, nil)
}

// ListPresentations walks every page of the role listing.
func (c *summitHTTPClient) ListPresentations(ctx context.Context, accessToken string, role domain.PresentationRole, selectionPlanID int64) ([]*domain.Presentation, error) {
	params := domain.PaginationParams{Page: 1, PerPage: domain.DefaultPerPage}
	all := []*domain.Presentation{}
	for {
		var page domain.Page[*domain.Presentation]
		err := c.do(ctx, request{
			op:     "list_presentations_" + string(role),
			method: http.MethodGet,
			path:   fmt.Sprintf("/api/v1/speakers/me/presentations/%s/selection-plans/%d", role, selectionPlanID),
			token:  accessToken,
			query: url.Values{
				"page":     {strconv.Itoa(params.Page)},
				"per_page": {strconv.Itoa(params.PerPage)},
				"expand":   {"speakers,moderator"},
			},
		}, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasMoreAfter(params.Page) {
			return all, nil
		}
		params = params.Next()
	}
}

func presentationPath(summitID int64, presentationID int64) string {
	p := "/api/v1/summits/" + id(summitID) + "/presentations"
	if presentationID > 0 {
		p += "/" + id(presentationID)
	}
	return p
}

var presentationExpand = url.Values{"expand": {"speakers,moderator"}}

func (c *summitHTTPClient) GetPresentation(ctx context.Context, accessToken string, summitID, presentationID int64) (*domain.Presentation, error) {
	var out domain.Presentation
	err := c.do(ctx, request{
		op:     "get_presentation",
		method: http.MethodGet,
		path:   presentationPath(summitID, presentationID),
		token:  accessToken,
		query:  presentationExpand,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *summitHTTPClient) CreatePresentation(ctx context.Context, accessToken string, summitID int64, p *domain.Presentation) (*domain.Presentation, error) {
	var out domain.Presentation
	err := c.do(ctx, request{
		op:     "create_presentation",
		method: http.MethodPost,
		path:   presentationPath(summitID, 0),
		token:  accessToken,
		query:  presentationExpand,
		body:   p,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *summitHTTPClient) UpdatePresentation(ctx context.Context, accessToken string, summitID int64, p *domain.Presentation) (*domain.Presentation, error) {
	var out domain.Presentation
	err := c.do(ctx, request{
		op:     "update_presentation",
		method: http.MethodPut,
		path:   presentationPath(summitID, p.ID),
		token:  accessToken,
		query:  presentationExpand,
		body:   p,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *summitHTTPClient) CompletePresentation(ctx context.Context, accessToken string, summitID, presentationID int64) (*domain.Presentation, error) {
	var out domain.Presentation
	err := c.do(ctx, request{
		op:     "complete_presentation",
		method: http.MethodPut,
		path:   presentationPath(summitID, presentationID) + "/completed",
		token:  accessToken,
		query:  presentationExpand,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *summitHTTPClient) DeletePresentation(ctx context.Context, accessToken string, summitID, presentationID int64) error {
	return c.do(ctx, request{
		op:     "delete_presentation",
		method: http.MethodDelete,
		path:   presentationPath(summitID, presentationID),
		token:  accessToken,
	}, nil)
}
