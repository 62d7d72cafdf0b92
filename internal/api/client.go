package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iksnae/quest-log/internal"
)

const (
	userAgent = "questlog-cli"
	// maxErrorBody bounds how much of a failed response is read for its detail
	maxErrorBody = 64 << 10
)

// Client talks to the backend's REST endpoints
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the client used for ordinary requests
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithUploadClient replaces the client used for uploads and librarian calls
func WithUploadClient(h *http.Client) Option {
	return func(c *Client) { c.uploadClient = h }
}

// NewClient creates a REST client. Uploads and librarian calls never time
// out on their own; everything else is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = internal.DefaultTimeout
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		uploadClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// okResponse is the backend's acknowledgement body for deletes and triggers
type okResponse struct {
	OK      bool                      `json:"ok"`
	Message string                    `json:"message,omitempty"`
	Status  internal.ProcessingStatus `json:"status,omitempty"`
}

// Health fetches the backend banner
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp okResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListCampaigns returns every campaign
func (c *Client) ListCampaigns(ctx context.Context) ([]internal.Campaign, error) {
	campaigns := make([]internal.Campaign, 0)
	err := c.do(ctx, http.MethodGet, "/campaigns/", nil, nil, &campaigns)
	return campaigns, err
}

// GetCampaign returns one campaign
func (c *Client) GetCampaign(ctx context.Context, id int) (*internal.Campaign, error) {
	var campaign internal.Campaign
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/campaigns/%d", id), nil, nil, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// CreateCampaign creates a campaign
func (c *Client) CreateCampaign(ctx context.Context, name, description string) (*internal.Campaign, error) {
	body := map[string]any{"name": name, "description": description}
	var campaign internal.Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns/", nil, body, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// DeleteCampaign deletes a campaign and everything it owns
func (c *Client) DeleteCampaign(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/campaigns/%d", id), nil, nil, nil)
}

// GenerateCampaignSummary starts summary generation in the background
func (c *Client) GenerateCampaignSummary(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/campaigns/%d/generate_summary", id), nil, nil, nil)
}

// ListSessions returns the sessions of a campaign
func (c *Client) ListSessions(ctx context.Context, campaignID int) ([]internal.Session, error) {
	sessions := make([]internal.Session, 0)
	err := c.do(ctx, http.MethodGet, "/sessions/", campaignQuery(campaignID), nil, &sessions)
	return sessions, err
}

// GetSession returns one session
func (c *Client) GetSession(ctx context.Context, id int) (*internal.Session, error) {
	var session internal.Session
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/sessions/%d", id), nil, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession deletes a session
func (c *Client) DeleteSession(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/sessions/%d", id), nil, nil, nil)
}

// RegenerateSession reprocesses a session's audio and returns the new status
func (c *Client) RegenerateSession(ctx context.Context, id int) (internal.ProcessingStatus, error) {
	var resp okResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/sessions/%d/regenerate", id), nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// ListPersonas returns the personas of a campaign
func (c *Client) ListPersonas(ctx context.Context, campaignID int) ([]internal.Persona, error) {
	personas := make([]internal.Persona, 0)
	err := c.do(ctx, http.MethodGet, "/personas/", campaignQuery(campaignID), nil, &personas)
	return personas, err
}

// GetPersona returns one persona with its highlights and quotes
func (c *Client) GetPersona(ctx context.Context, id int) (*internal.Persona, error) {
	var persona internal.Persona
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/personas/%d", id), nil, nil, &persona); err != nil {
		return nil, err
	}
	return &persona, nil
}

// DeletePersona deletes a persona
func (c *Client) DeletePersona(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/personas/%d", id), nil, nil, nil)
}

type mergeRequest struct {
	TargetPersonaID int `json:"target_persona_id"`
	SourcePersonaID int `json:"source_persona_id"`
}

// MergePersonas folds source into target on the backend. Source is deleted
// and its highlights and quotes are reassigned to target.
func (c *Client) MergePersonas(ctx context.Context, targetID, sourceID int) (*internal.Persona, error) {
	var persona internal.Persona
	body := mergeRequest{TargetPersonaID: targetID, SourcePersonaID: sourceID}
	if err := c.do(ctx, http.MethodPost, "/personas/merge", nil, body, &persona); err != nil {
		return nil, err
	}
	return &persona, nil
}

// ListHighlights returns the highlights of a campaign
func (c *Client) ListHighlights(ctx context.Context, campaignID int) ([]internal.Highlight, error) {
	highlights := make([]internal.Highlight, 0)
	err := c.do(ctx, http.MethodGet, "/highlights/", campaignQuery(campaignID), nil, &highlights)
	return highlights, err
}

// ListQuotes returns the quotes of a campaign
func (c *Client) ListQuotes(ctx context.Context, campaignID int) ([]internal.Quote, error) {
	quotes := make([]internal.Quote, 0)
	err := c.do(ctx, http.MethodGet, "/quotes/", campaignQuery(campaignID), nil, &quotes)
	return quotes, err
}

// ListMoments returns the moments of a campaign, optionally one session only
func (c *Client) ListMoments(ctx context.Context, campaignID, sessionID int) ([]internal.Moment, error) {
	query := campaignQuery(campaignID)
	if sessionID > 0 {
		query.Set("session_id", strconv.Itoa(sessionID))
	}
	moments := make([]internal.Moment, 0)
	err := c.do(ctx, http.MethodGet, "/moments/", query, nil, &moments)
	return moments, err
}

// GetMoment returns one moment
func (c *Client) GetMoment(ctx context.Context, id int) (*internal.Moment, error) {
	var moment internal.Moment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/moments/%d", id), nil, nil, &moment); err != nil {
		return nil, err
	}
	return &moment, nil
}

// UpdateMoment replaces a moment's title, description and type
func (c *Client) UpdateMoment(ctx context.Context, m internal.Moment) (*internal.Moment, error) {
	var moment internal.Moment
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/moments/%d", m.ID), nil, m, &moment); err != nil {
		return nil, err
	}
	return &moment, nil
}

// DeleteMoment deletes a moment
func (c *Client) DeleteMoment(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/moments/%d", id), nil, nil, nil)
}

func campaignQuery(campaignID int) url.Values {
	query := url.Values{}
	if campaignID > 0 {
		query.Set("campaign_id", strconv.Itoa(campaignID))
	}
	return query
}

// do sends a JSON request with the ordinary client and decodes the response
// into out when out is non-nil
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.doWith(ctx, c.httpClient, method, path, query, body, out)
}

func (c *Client) doWith(ctx context.Context, client *http.Client, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: failed to encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(client, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to build request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func (c *Client) send(client *http.Client, req *http.Request, out any) error {
	internal.LogDebug("%s %s", req.Method, req.URL.Path)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(req, resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &internal.ParseError{Source: "rest", Key: req.Method + " " + req.URL.Path, Err: err}
	}
	return nil
}

// checkResponse turns a non-2xx response into an APIError, pulling the
// detail out of the backend's {"detail": ...} body when there is one
func checkResponse(req *http.Request, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &internal.APIError{
		Method:     req.Method,
		Path:       req.URL.Path,
		StatusCode: resp.StatusCode,
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		apiErr.Detail = errorDetail(data)
	}
	return apiErr
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func errorDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var issues []validationIssue
	if err := json.Unmarshal(envelope.Detail, &issues); err == nil && len(issues) > 0 {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			loc := make([]string, 0, len(issue.Loc))
			for _, part := range issue.Loc {
				loc = append(loc, fmt.Sprint(part))
			}
			msgs = append(msgs, strings.Join(loc, ".")+": "+issue.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return string(envelope.Detail)
}

// IsTransient reports whether a failed call is worth retrying
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *internal.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
