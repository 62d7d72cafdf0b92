package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hasura/go-graphql-client"
	"github.com/samber/lo"

	"github.com/iksnae/quest-log/internal"
)

const (
	campaignDashboardQuery = `query GetCampaignDashboard($id: Int!) {
  campaign(id: $id) {
    id name description summary
    sessions { id name status summary created_at campaign_id }
    personas {
      id campaign_id name role description voice_description summary player_name
      gender race class_name level status faction alignment aliases
    }
    moments { id title description type session_id session_name }
  }
}`

	campaignPersonasQuery = `query GetCampaignPersonas($id: Int!) {
  campaign(id: $id) {
    id name
    personas {
      id campaign_id name role description voice_description summary player_name
      gender race class_name level status faction alignment aliases
      highlights { id text name type session_id persona_id }
      quotes { id text speaker_name session_id persona_id }
    }
  }
}`

	sessionDetailsQuery = `query GetSessionDetails($id: Int!) {
  session(id: $id) {
    id name status summary created_at campaign_id
    highlights { id text name type session_id persona_id }
    quotes { id text speaker_name session_id persona_id }
  }
}`

	personaDetailsQuery = `query GetPersonaDetails($id: Int!) {
  persona(id: $id) {
    id campaign_id name role description voice_description summary player_name
    gender race class_name level status faction alignment aliases
    highlights { id text name type session_id persona_id }
    quotes { id text speaker_name session_id persona_id }
  }
}`

	personaFields = `id campaign_id name role description voice_description summary player_name
    gender race class_name level status faction alignment aliases`

	createPersonaMutation = `mutation CreatePersona($input: PersonaInput!) {
  create_persona(input: $input) { ` + personaFields + ` }
}`

	updatePersonaMutation = `mutation UpdatePersona($id: Int!, $input: PersonaInput!) {
  update_persona(id: $id, input: $input) { ` + personaFields + ` }
}`

	updateSessionMutation = `mutation UpdateSession($id: Int!, $name: String, $summary: String) {
  update_session(id: $id, name: $name, summary: $summary) { id name summary status campaign_id }
}`

	refineSessionSummaryMutation = `mutation RefineSessionSummary($id: Int!) {
  refine_session_summary(id: $id)
}`

	updateHighlightMutation = `mutation UpdateHighlight($id: Int!, $input: HighlightInput!) {
  update_highlight(id: $id, input: $input) { id text name type session_id persona_id }
}`

	updateQuoteMutation = `mutation UpdateQuote($id: Int!, $input: QuoteInput!) {
  update_quote(id: $id, input: $input) { id text speaker_name session_id persona_id }
}`

	pingQuery = `query Ping { __typename }`
)

// PersonaInput is the writable part of a persona
type PersonaInput struct {
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Description      *string  `json:"description,omitempty"`
	VoiceDescription *string  `json:"voice_description,omitempty"`
	PlayerName       *string  `json:"player_name,omitempty"`
	CampaignID       *int     `json:"campaign_id,omitempty"`
	Gender           *string  `json:"gender,omitempty"`
	Race             *string  `json:"race,omitempty"`
	ClassName        *string  `json:"class_name,omitempty"`
	Level            *int     `json:"level,omitempty"`
	Status           *string  `json:"status,omitempty"`
	Faction          *string  `json:"faction,omitempty"`
	Alignment        *string  `json:"alignment,omitempty"`
	Aliases          []string `json:"aliases"`
}

// PersonaInputFrom copies the writable fields of p. The alias list is
// always sent in full.
func PersonaInputFrom(p internal.Persona) PersonaInput {
	aliases := []string(p.Aliases)
	if aliases == nil {
		aliases = []string{}
	}
	return PersonaInput{
		Name:             p.Name,
		Role:             p.Role,
		Description:      lo.EmptyableToPtr(p.Description),
		VoiceDescription: p.VoiceDescription,
		PlayerName:       p.PlayerName,
		CampaignID:       lo.EmptyableToPtr(p.CampaignID),
		Gender:           p.Gender,
		Race:             p.Race,
		ClassName:        p.ClassName,
		Level:            p.Level,
		Status:           lo.EmptyableToPtr(p.Status),
		Faction:          p.Faction,
		Alignment:        p.Alignment,
		Aliases:          aliases,
	}
}

// HighlightInput is the writable part of a highlight
type HighlightInput struct {
	Text      string `json:"text"`
	Type      string `json:"type"`
	PersonaID *int   `json:"persona_id"`
}

// QuoteInput is the writable part of a quote
type QuoteInput struct {
	Text        string  `json:"text"`
	SpeakerName *string `json:"speaker_name"`
	PersonaID   *int    `json:"persona_id"`
}

// GraphQLClient talks to the backend's /graphql endpoint
type GraphQLClient struct {
	endpoint string
	client   *graphql.Client
}

// NewGraphQLClient creates a GraphQL client on top of httpClient
func NewGraphQLClient(endpoint string, httpClient *http.Client) *GraphQLClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: internal.DefaultTimeout}
	}
	return &GraphQLClient{
		endpoint: endpoint,
		client:   graphql.NewClient(endpoint, httpClient),
	}
}

// Endpoint returns the GraphQL URL
func (g *GraphQLClient) Endpoint() string {
	return g.endpoint
}

// Ping checks that the endpoint answers a trivial query
func (g *GraphQLClient) Ping(ctx context.Context) error {
	var resp struct {
		Typename string `json:"__typename"`
	}
	return g.exec(ctx, "Ping", pingQuery, nil, &resp)
}

// Campaigns lists campaigns
func (g *GraphQLClient) Campaigns(ctx context.Context) ([]internal.Campaign, error) {
	var q struct {
		Campaigns []struct {
			ID          int     `graphql:"id"`
			Name        string  `graphql:"name"`
			Description *string `graphql:"description"`
			Summary     *string `graphql:"summary"`
		} `graphql:"campaigns"`
	}
	if err := g.client.Query(ctx, &q, nil); err != nil {
		return nil, fmt.Errorf("graphql campaigns: %w", err)
	}

	campaigns := make([]internal.Campaign, 0, len(q.Campaigns))
	for _, c := range q.Campaigns {
		campaigns = append(campaigns, internal.Campaign{
			ID:          c.ID,
			Name:        c.Name,
			Description: lo.FromPtr(c.Description),
			Summary:     c.Summary,
		})
	}
	return campaigns, nil
}

// CampaignDashboard returns a campaign with its sessions, personas and moments
func (g *GraphQLClient) CampaignDashboard(ctx context.Context, id int) (*internal.CampaignDashboard, error) {
	var resp struct {
		Campaign *internal.CampaignDashboard `json:"campaign"`
	}
	if err := g.exec(ctx, "GetCampaignDashboard", campaignDashboardQuery, idVars(id), &resp); err != nil {
		return nil, err
	}
	if resp.Campaign == nil {
		return nil, notFound("campaign", id)
	}
	return resp.Campaign, nil
}

// CampaignPersonas returns the personas of a campaign with their
// structured highlights and quotes
func (g *GraphQLClient) CampaignPersonas(ctx context.Context, campaignID int) ([]internal.Persona, error) {
	var resp struct {
		Campaign *struct {
			Personas []internal.Persona `json:"personas"`
		} `json:"campaign"`
	}
	if err := g.exec(ctx, "GetCampaignPersonas", campaignPersonasQuery, idVars(campaignID), &resp); err != nil {
		return nil, err
	}
	if resp.Campaign == nil {
		return nil, notFound("campaign", campaignID)
	}
	return resp.Campaign.Personas, nil
}

// Session returns a session with structured highlights and quotes
func (g *GraphQLClient) Session(ctx context.Context, id int) (*internal.Session, error) {
	var resp struct {
		Session *internal.Session `json:"session"`
	}
	if err := g.exec(ctx, "GetSessionDetails", sessionDetailsQuery, idVars(id), &resp); err != nil {
		return nil, err
	}
	if resp.Session == nil {
		return nil, notFound("session", id)
	}
	return resp.Session, nil
}

// Persona returns a persona with structured highlights and quotes
func (g *GraphQLClient) Persona(ctx context.Context, id int) (*internal.Persona, error) {
	var resp struct {
		Persona *internal.Persona `json:"persona"`
	}
	if err := g.exec(ctx, "GetPersonaDetails", personaDetailsQuery, idVars(id), &resp); err != nil {
		return nil, err
	}
	if resp.Persona == nil {
		return nil, notFound("persona", id)
	}
	return resp.Persona, nil
}

// CreatePersona creates a persona
func (g *GraphQLClient) CreatePersona(ctx context.Context, input PersonaInput) (*internal.Persona, error) {
	var resp struct {
		CreatePersona *internal.Persona `json:"create_persona"`
	}
	vars := map[string]any{"input": input}
	if err := g.exec(ctx, "CreatePersona", createPersonaMutation, vars, &resp); err != nil {
		return nil, err
	}
	if resp.CreatePersona == nil {
		return nil, fmt.Errorf("graphql CreatePersona: empty result")
	}
	return resp.CreatePersona, nil
}

// UpdatePersona replaces the writable fields of a persona, aliases included
func (g *GraphQLClient) UpdatePersona(ctx context.Context, id int, input PersonaInput) (*internal.Persona, error) {
	var resp struct {
		UpdatePersona *internal.Persona `json:"update_persona"`
	}
	vars := map[string]any{"id": id, "input": input}
	if err := g.exec(ctx, "UpdatePersona", updatePersonaMutation, vars, &resp); err != nil {
		return nil, err
	}
	if resp.UpdatePersona == nil {
		return nil, notFound("persona", id)
	}
	return resp.UpdatePersona, nil
}

// UpdateSession renames a session or replaces its summary. Nil leaves a
// field unchanged.
func (g *GraphQLClient) UpdateSession(ctx context.Context, id int, name, summary *string) (*internal.Session, error) {
	var resp struct {
		UpdateSession *internal.Session `json:"update_session"`
	}
	vars := map[string]any{"id": id, "name": name, "summary": summary}
	if err := g.exec(ctx, "UpdateSession", updateSessionMutation, vars, &resp); err != nil {
		return nil, err
	}
	if resp.UpdateSession == nil {
		return nil, notFound("session", id)
	}
	return resp.UpdateSession, nil
}

// RefineSessionSummary asks the backend to rewrite a session summary and
// returns the new text
func (g *GraphQLClient) RefineSessionSummary(ctx context.Context, id int) (string, error) {
	var resp struct {
		RefineSessionSummary *string `json:"refine_session_summary"`
	}
	if err := g.exec(ctx, "RefineSessionSummary", refineSessionSummaryMutation, idVars(id), &resp); err != nil {
		return "", err
	}
	if resp.RefineSessionSummary == nil {
		return "", notFound("session", id)
	}
	return *resp.RefineSessionSummary, nil
}

// UpdateHighlight edits a highlight
func (g *GraphQLClient) UpdateHighlight(ctx context.Context, id int, input HighlightInput) (*internal.Highlight, error) {
	var resp struct {
		UpdateHighlight *internal.Highlight `json:"update_highlight"`
	}
	vars := map[string]any{"id": id, "input": input}
	if err := g.exec(ctx, "UpdateHighlight", updateHighlightMutation, vars, &resp); err != nil {
		return nil, err
	}
	if resp.UpdateHighlight == nil {
		return nil, notFound("highlight", id)
	}
	return resp.UpdateHighlight, nil
}

// DeleteHighlight deletes a highlight
func (g *GraphQLClient) DeleteHighlight(ctx context.Context, id int) error {
	var m struct {
		DeleteHighlight bool `graphql:"delete_highlight(id: $id)"`
	}
	if err := g.client.Mutate(ctx, &m, map[string]any{"id": graphql.Int(id)}); err != nil {
		return fmt.Errorf("graphql delete_highlight: %w", err)
	}
	if !m.DeleteHighlight {
		return notFound("highlight", id)
	}
	return nil
}

// UpdateQuote edits a quote
func (g *GraphQLClient) UpdateQuote(ctx context.Context, id int, input QuoteInput) (*internal.Quote, error) {
	var resp struct {
		UpdateQuote *internal.Quote `json:"update_quote"`
	}
	vars := map[string]any{"id": id, "input": input}
	if err := g.exec(ctx, "UpdateQuote", updateQuoteMutation, vars, &resp); err != nil {
		return nil, err
	}
	if resp.UpdateQuote == nil {
		return nil, notFound("quote", id)
	}
	return resp.UpdateQuote, nil
}

// DeleteQuote deletes a quote
func (g *GraphQLClient) DeleteQuote(ctx context.Context, id int) error {
	var m struct {
		DeleteQuote bool `graphql:"delete_quote(id: $id)"`
	}
	if err := g.client.Mutate(ctx, &m, map[string]any{"id": graphql.Int(id)}); err != nil {
		return fmt.Errorf("graphql delete_quote: %w", err)
	}
	if !m.DeleteQuote {
		return notFound("quote", id)
	}
	return nil
}

// exec runs a raw operation and decodes its data with encoding/json so the
// domain types' own decoders handle the dual-shape fields
func (g *GraphQLClient) exec(ctx context.Context, op, query string, vars map[string]any, out any) error {
	internal.LogDebug("graphql %s", op)
	raw, err := g.client.ExecRaw(ctx, query, vars)
	if err != nil {
		return fmt.Errorf("graphql %s: %w", op, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &internal.ParseError{Source: "graphql", Key: op, Err: err}
	}
	return nil
}

func idVars(id int) map[string]any {
	return map[string]any{"id": id}
}

func notFound(entity string, id int) error {
	return &internal.APIError{
		Method:     http.MethodPost,
		Path:       "/graphql",
		StatusCode: http.StatusNotFound,
		Detail:     fmt.Sprintf("%s %d not found", entity, id),
	}
}
