package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/api"
)

// Service is the data-access boundary of the client. Reads go through the
// query cache and come out normalized; writes invalidate or optimistically
// patch the keys they affect.
type Service struct {
	rest  *api.Client
	graph *api.GraphQLClient
	cache *internal.QueryCache
	norm  *internal.Normalizer
	wait  api.WaitOptions
}

// Option configures a Service
type Option func(*Service)

// WithCache replaces the default cache
func WithCache(c *internal.QueryCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithWaitOptions sets how session processing is polled
func WithWaitOptions(w api.WaitOptions) Option {
	return func(s *Service) { s.wait = w }
}

// New creates a Service over the two backend clients
func New(rest *api.Client, graph *api.GraphQLClient, opts ...Option) *Service {
	s := &Service{
		rest:  rest,
		graph: graph,
		cache: internal.NewQueryCache(0),
		norm:  internal.NewNormalizer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig builds the clients and the service described by cfg
func NewFromConfig(cfg internal.Config) *Service {
	rest := api.NewClient(cfg.APIURL, cfg.Timeout)
	graph := api.NewGraphQLClient(cfg.GraphQLURL, &http.Client{Timeout: cfg.Timeout})
	return New(rest, graph, WithWaitOptions(api.WaitOptions{
		Interval: cfg.PollInterval,
		Timeout:  cfg.PollTimeout,
	}))
}

// Cache exposes the query cache
func (s *Service) Cache() *internal.QueryCache {
	return s.cache
}

// Normalizer exposes the normalizer views are built with
func (s *Service) Normalizer() *internal.Normalizer {
	return s.norm
}

// cached returns the value under key, fetching and storing it on a miss
func cached[T any](s *Service, key internal.QueryKey, fetch func() (T, error)) (T, error) {
	if v, ok := internal.CacheGet[T](s.cache, key); ok {
		internal.LogDebug("cache hit %s", key)
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	s.cache.Set(key, v)
	return v, nil
}

// Health reports whether each backend interface answers
type Health struct {
	Message    string
	RESTErr    error
	GraphQLErr error
}

// OK reports whether both interfaces answered
func (h Health) OK() bool {
	return h.RESTErr == nil && h.GraphQLErr == nil
}

// Health checks the REST banner and a trivial GraphQL query
func (s *Service) Health(ctx context.Context) Health {
	var h Health
	h.Message, h.RESTErr = s.rest.Health(ctx)
	h.GraphQLErr = s.graph.Ping(ctx)
	return h
}

// Campaigns lists every campaign
func (s *Service) Campaigns(ctx context.Context) ([]internal.Campaign, error) {
	return cached(s, internal.Key(internal.ScopeCampaigns, 0), func() ([]internal.Campaign, error) {
		return s.rest.ListCampaigns(ctx)
	})
}

// Campaign returns one campaign
func (s *Service) Campaign(ctx context.Context, id int) (internal.Campaign, error) {
	return cached(s, internal.Key(internal.ScopeCampaign, id), func() (internal.Campaign, error) {
		c, err := s.rest.GetCampaign(ctx, id)
		if err != nil {
			return internal.Campaign{}, err
		}
		return *c, nil
	})
}

// CreateCampaign creates a campaign
func (s *Service) CreateCampaign(ctx context.Context, name, description string) (*internal.Campaign, error) {
	c, err := s.rest.CreateCampaign(ctx, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	s.cache.Invalidate(internal.Key(internal.ScopeCampaigns, 0))
	s.cache.Set(internal.Key(internal.ScopeCampaign, c.ID), *c)
	return c, nil
}

// DeleteCampaign deletes a campaign and drops everything cached for it
func (s *Service) DeleteCampaign(ctx context.Context, id int) error {
	if err := s.rest.DeleteCampaign(ctx, id); err != nil {
		return fmt.Errorf("failed to delete campaign %d: %w", id, err)
	}
	s.cache.Invalidate(campaignKeys(id)...)
	s.cache.Invalidate(internal.Key(internal.ScopeCampaigns, 0))
	return nil
}

// GenerateCampaignSummary starts summary generation on the backend
func (s *Service) GenerateCampaignSummary(ctx context.Context, id int) error {
	if err := s.rest.GenerateCampaignSummary(ctx, id); err != nil {
		return fmt.Errorf("failed to generate summary for campaign %d: %w", id, err)
	}
	s.cache.Invalidate(
		internal.Key(internal.ScopeCampaign, id),
		internal.Key(internal.ScopeDashboard, id),
		internal.Key(internal.ScopeCampaigns, 0),
	)
	return nil
}

// Dashboard is a campaign overview ready for display
type Dashboard struct {
	Campaign internal.Campaign      `json:"campaign" yaml:"campaign"`
	Sessions []internal.SessionView `json:"sessions" yaml:"sessions"`
	Roles    internal.RoleGroups    `json:"roles" yaml:"roles"`
	Moments  []internal.Moment      `json:"moments" yaml:"moments"`
}

// Dashboard returns the campaign overview
func (s *Service) Dashboard(ctx context.Context, id int) (*Dashboard, error) {
	raw, err := cached(s, internal.Key(internal.ScopeDashboard, id), func() (internal.CampaignDashboard, error) {
		d, err := s.graph.CampaignDashboard(ctx, id)
		if err != nil {
			return internal.CampaignDashboard{}, err
		}
		return *d, nil
	})
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Campaign: raw.Campaign,
		Sessions: s.norm.NormalizeSessions(raw.Sessions),
		Roles:    internal.GroupByRole(s.norm.NormalizePersonas(raw.Personas)),
		Moments:  s.norm.NormalizeMoments(raw.Moments),
	}, nil
}

// campaignKeys lists every key scoped to a campaign
func campaignKeys(campaignID int) []internal.QueryKey {
	scopes := []internal.QueryScope{
		internal.ScopeCampaign,
		internal.ScopeDashboard,
		internal.ScopeSessions,
		internal.ScopePersonas,
		internal.ScopePersonaBook,
		internal.ScopeHighlights,
		internal.ScopeQuotes,
		internal.ScopeMoments,
	}
	keys := make([]internal.QueryKey, 0, len(scopes))
	for _, scope := range scopes {
		keys = append(keys, internal.Key(scope, campaignID))
	}
	return keys
}
