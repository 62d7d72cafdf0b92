package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/api"
)

// Highlights returns the highlights of a campaign split into high and low
func (s *Service) Highlights(ctx context.Context, campaignID int) (high, low []internal.Artifact, err error) {
	raw, err := s.rawHighlights(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}
	high, low = internal.ResolveHighlights(raw, nil, nil)
	return high, low, nil
}

func (s *Service) rawHighlights(ctx context.Context, campaignID int) ([]internal.Highlight, error) {
	return cached(s, internal.Key(internal.ScopeHighlights, campaignID), func() ([]internal.Highlight, error) {
		return s.rest.ListHighlights(ctx, campaignID)
	})
}

// UpdateHighlight edits a highlight. The cached campaign list shows the
// edit before the backend confirms it and is restored if the backend
// rejects it.
func (s *Service) UpdateHighlight(ctx context.Context, campaignID, id int, input api.HighlightInput) (*internal.Highlight, error) {
	key := internal.Key(internal.ScopeHighlights, campaignID)
	rollback, _ := internal.UpdateCached(s.cache, key, func(list []internal.Highlight) []internal.Highlight {
		return lo.Map(list, func(h internal.Highlight, _ int) internal.Highlight {
			if h.ID == id {
				h.Text = input.Text
				h.Type = internal.ParseHighlightType(input.Type)
				h.PersonaID = input.PersonaID
			}
			return h
		})
	})

	updated, err := s.graph.UpdateHighlight(ctx, id, input)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("failed to update highlight %d: %w", id, err)
	}

	internal.UpdateCached(s.cache, key, func(list []internal.Highlight) []internal.Highlight {
		return lo.Map(list, func(h internal.Highlight, _ int) internal.Highlight {
			if h.ID == id {
				updated.CampaignID = h.CampaignID
				return *updated
			}
			return h
		})
	})
	s.invalidateArtifactOwners(campaignID, updated.SessionID)
	return updated, nil
}

// DeleteHighlight deletes a highlight, removing it from the cached list
// first and restoring it if the backend refuses
func (s *Service) DeleteHighlight(ctx context.Context, campaignID, id int) error {
	key := internal.Key(internal.ScopeHighlights, campaignID)
	var sessionID int
	rollback, _ := internal.UpdateCached(s.cache, key, func(list []internal.Highlight) []internal.Highlight {
		return lo.Reject(list, func(h internal.Highlight, _ int) bool {
			if h.ID == id {
				sessionID = h.SessionID
				return true
			}
			return false
		})
	})

	if err := s.graph.DeleteHighlight(ctx, id); err != nil {
		rollback()
		return fmt.Errorf("failed to delete highlight %d: %w", id, err)
	}
	s.invalidateArtifactOwners(campaignID, sessionID)
	return nil
}

// Quotes returns the quotes of a campaign
func (s *Service) Quotes(ctx context.Context, campaignID int) ([]internal.Artifact, error) {
	raw, err := cached(s, internal.Key(internal.ScopeQuotes, campaignID), func() ([]internal.Quote, error) {
		return s.rest.ListQuotes(ctx, campaignID)
	})
	if err != nil {
		return nil, err
	}
	return internal.ResolveQuotes(raw, nil), nil
}

// UpdateQuote edits a quote with the same optimistic handling as
// UpdateHighlight
func (s *Service) UpdateQuote(ctx context.Context, campaignID, id int, input api.QuoteInput) (*internal.Quote, error) {
	key := internal.Key(internal.ScopeQuotes, campaignID)
	rollback, _ := internal.UpdateCached(s.cache, key, func(list []internal.Quote) []internal.Quote {
		return lo.Map(list, func(q internal.Quote, _ int) internal.Quote {
			if q.ID == id {
				q.Text = input.Text
				q.SpeakerName = input.SpeakerName
				q.PersonaID = input.PersonaID
			}
			return q
		})
	})

	updated, err := s.graph.UpdateQuote(ctx, id, input)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("failed to update quote %d: %w", id, err)
	}

	internal.UpdateCached(s.cache, key, func(list []internal.Quote) []internal.Quote {
		return lo.Map(list, func(q internal.Quote, _ int) internal.Quote {
			if q.ID == id {
				updated.CampaignID = q.CampaignID
				return *updated
			}
			return q
		})
	})
	s.invalidateArtifactOwners(campaignID, updated.SessionID)
	return updated, nil
}

// DeleteQuote deletes a quote with the same optimistic handling as
// DeleteHighlight
func (s *Service) DeleteQuote(ctx context.Context, campaignID, id int) error {
	key := internal.Key(internal.ScopeQuotes, campaignID)
	var sessionID int
	rollback, _ := internal.UpdateCached(s.cache, key, func(list []internal.Quote) []internal.Quote {
		return lo.Reject(list, func(q internal.Quote, _ int) bool {
			if q.ID == id {
				sessionID = q.SessionID
				return true
			}
			return false
		})
	})

	if err := s.graph.DeleteQuote(ctx, id); err != nil {
		rollback()
		return fmt.Errorf("failed to delete quote %d: %w", id, err)
	}
	s.invalidateArtifactOwners(campaignID, sessionID)
	return nil
}

// QuoteBook collects the quotes of every persona in a campaign, keeping
// those whose label or text matches search
func (s *Service) QuoteBook(ctx context.Context, campaignID int, search string) ([]internal.Artifact, error) {
	raw, err := cached(s, internal.Key(internal.ScopePersonaBook, campaignID), func() ([]internal.Persona, error) {
		return s.graph.CampaignPersonas(ctx, campaignID)
	})
	if err != nil {
		return nil, err
	}
	book := internal.QuoteBook(s.norm.NormalizePersonas(raw))
	return internal.FilterArtifacts(book, search), nil
}

// Moments lists the moments of a campaign. A non-zero sessionID keeps that
// session's moments only.
func (s *Service) Moments(ctx context.Context, campaignID, sessionID int) ([]internal.Moment, error) {
	if campaignID <= 0 {
		raw, err := s.rest.ListMoments(ctx, 0, sessionID)
		if err != nil {
			return nil, err
		}
		return s.norm.NormalizeMoments(raw), nil
	}

	raw, err := cached(s, internal.Key(internal.ScopeMoments, campaignID), func() ([]internal.Moment, error) {
		return s.rest.ListMoments(ctx, campaignID, 0)
	})
	if err != nil {
		return nil, err
	}
	if sessionID > 0 {
		raw = lo.Filter(raw, func(m internal.Moment, _ int) bool { return m.SessionID == sessionID })
	}
	return s.norm.NormalizeMoments(raw), nil
}

// UpdateMoment replaces a moment's title, description and type
func (s *Service) UpdateMoment(ctx context.Context, campaignID int, m internal.Moment) (*internal.Moment, error) {
	key := internal.Key(internal.ScopeMoments, campaignID)
	rollback, _ := internal.UpdateCached(s.cache, key, func(list []internal.Moment) []internal.Moment {
		return lo.Map(list, func(existing internal.Moment, _ int) internal.Moment {
			return lo.Ternary(existing.ID == m.ID, m, existing)
		})
	})

	updated, err := s.rest.UpdateMoment(ctx, m)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("failed to update moment %d: %w", m.ID, err)
	}
	s.cache.Invalidate(internal.Key(internal.ScopeDashboard, campaignID))
	return updated, nil
}

// DeleteMoment deletes a moment
func (s *Service) DeleteMoment(ctx context.Context, campaignID, id int) error {
	key := internal.Key(internal.ScopeMoments, campaignID)
	rollback, _ := internal.UpdateCached(s.cache, key, func(list []internal.Moment) []internal.Moment {
		return lo.Reject(list, func(m internal.Moment, _ int) bool { return m.ID == id })
	})

	if err := s.rest.DeleteMoment(ctx, id); err != nil {
		rollback()
		return fmt.Errorf("failed to delete moment %d: %w", id, err)
	}
	s.cache.Invalidate(internal.Key(internal.ScopeDashboard, campaignID))
	return nil
}

// invalidateArtifactOwners drops the views that embed a campaign's
// highlights and quotes
func (s *Service) invalidateArtifactOwners(campaignID, sessionID int) {
	if sessionID > 0 {
		s.cache.Invalidate(internal.Key(internal.ScopeSession, sessionID))
	}
	s.cache.Invalidate(internal.Key(internal.ScopePersonaBook, campaignID))
	s.cache.InvalidateScope(internal.ScopePersona)
}
