package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/api"
)

// Personas lists the personas of a campaign
func (s *Service) Personas(ctx context.Context, campaignID int) ([]internal.PersonaView, error) {
	raw, err := s.rawPersonas(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return s.norm.NormalizePersonas(raw), nil
}

func (s *Service) rawPersonas(ctx context.Context, campaignID int) ([]internal.Persona, error) {
	return cached(s, internal.Key(internal.ScopePersonas, campaignID), func() ([]internal.Persona, error) {
		return s.rest.ListPersonas(ctx, campaignID)
	})
}

// Persona returns one persona with its artifacts resolved
func (s *Service) Persona(ctx context.Context, id int) (*internal.PersonaView, error) {
	raw, err := s.rawPersona(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.norm.NormalizePersona(&raw)
}

func (s *Service) rawPersona(ctx context.Context, id int) (internal.Persona, error) {
	return cached(s, internal.Key(internal.ScopePersona, id), func() (internal.Persona, error) {
		p, err := s.graph.Persona(ctx, id)
		if err != nil {
			return internal.Persona{}, err
		}
		return *p, nil
	})
}

// CreatePersona creates a persona
func (s *Service) CreatePersona(ctx context.Context, input api.PersonaInput) (*internal.PersonaView, error) {
	created, err := s.graph.CreatePersona(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create persona %q: %w", input.Name, err)
	}
	s.invalidatePersonaLists(created.CampaignID)
	return s.norm.NormalizePersona(created)
}

// UpdatePersona applies edit to the persona's current fields and saves the
// result. Fields edit leaves alone are sent back unchanged. An error from
// edit aborts before anything is sent.
func (s *Service) UpdatePersona(ctx context.Context, id int, edit func(*api.PersonaInput) error) (*internal.PersonaView, error) {
	current, err := s.rawPersona(ctx, id)
	if err != nil {
		return nil, err
	}

	input := api.PersonaInputFrom(current)
	if err := edit(&input); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("persona %d: name cannot be empty", id)
	}

	saved, err := s.graph.UpdatePersona(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update persona %d: %w", id, err)
	}

	s.cache.Invalidate(internal.Key(internal.ScopePersona, id))
	s.invalidatePersonaLists(current.CampaignID)
	return s.Persona(ctx, saved.ID)
}

// DeletePersona deletes a persona
func (s *Service) DeletePersona(ctx context.Context, campaignID, id int) error {
	if err := s.rest.DeletePersona(ctx, id); err != nil {
		return fmt.Errorf("failed to delete persona %d: %w", id, err)
	}
	s.cache.Invalidate(internal.Key(internal.ScopePersona, id))
	s.invalidatePersonaLists(campaignID)
	return nil
}

// AddAlias adds an alias to a persona and saves the full alias list
func (s *Service) AddAlias(ctx context.Context, personaID int, alias string) (*internal.PersonaView, error) {
	return s.editAliases(ctx, personaID, func(current []string) []string {
		return internal.AddAlias(current, alias)
	})
}

// RemoveAlias removes an alias from a persona and saves the full alias list
func (s *Service) RemoveAlias(ctx context.Context, personaID int, alias string) (*internal.PersonaView, error) {
	return s.editAliases(ctx, personaID, func(current []string) []string {
		return internal.RemoveAlias(current, alias)
	})
}

// editAliases applies edit to the cached persona right away, then persists
// the whole list. A failed save restores the cached persona. An edit that
// changes nothing never reaches the backend.
func (s *Service) editAliases(ctx context.Context, personaID int, edit func([]string) []string) (*internal.PersonaView, error) {
	current, err := s.rawPersona(ctx, personaID)
	if err != nil {
		return nil, err
	}

	next := edit(current.Aliases)
	if slices.Equal(next, []string(current.Aliases)) {
		return s.norm.NormalizePersona(&current)
	}

	updated := current
	updated.Aliases = internal.AliasList(next)
	key := internal.Key(internal.ScopePersona, personaID)
	rollback := s.cache.Optimistic(key, func(any, bool) any { return updated })

	saved, err := s.graph.UpdatePersona(ctx, personaID, api.PersonaInputFrom(updated))
	if err != nil {
		rollback()
		return nil, fmt.Errorf("failed to save aliases of persona %d: %w", personaID, err)
	}

	// The update result carries no artifacts, so only its aliases are kept
	updated.Aliases = saved.Aliases
	s.cache.Set(key, updated)
	s.invalidatePersonaLists(updated.CampaignID)
	return s.norm.NormalizePersona(&updated)
}

// Merger returns the merge collaborator used by a MergeSelector. It merges
// over REST, drops stale cache entries and refreshes the target.
func (s *Service) Merger() internal.Merger {
	return &cacheMerger{s: s}
}

// MergeSelector builds a selector over the personas of a campaign
func (s *Service) MergeSelector(ctx context.Context, campaignID int, confirm internal.ConfirmFunc) (*internal.MergeSelector, error) {
	personas, err := s.rawPersonas(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return internal.NewMergeSelector(s.Merger(), confirm, internal.NewRoster(personas)), nil
}

type cacheMerger struct {
	s *Service
}

func (m *cacheMerger) MergePersonas(ctx context.Context, targetID, sourceID int) (*internal.Persona, error) {
	target, err := m.s.rest.MergePersonas(ctx, targetID, sourceID)
	if err != nil {
		return nil, err
	}

	m.s.cache.Invalidate(
		internal.Key(internal.ScopePersona, sourceID),
		internal.Key(internal.ScopePersona, targetID),
	)
	m.s.invalidatePersonaLists(target.CampaignID)
	// Highlights and quotes were reassigned to the target
	m.s.cache.InvalidateScope(internal.ScopeHighlights, internal.ScopeQuotes, internal.ScopeSession)

	refreshed, err := m.s.rawPersona(ctx, targetID)
	if err != nil {
		internal.LogWarn("Merged into persona %d but could not refresh it: %v", targetID, err)
		return target, nil
	}
	return &refreshed, nil
}

// invalidatePersonaLists drops the lists that show personas. A zero
// campaignID drops them for every campaign.
func (s *Service) invalidatePersonaLists(campaignID int) {
	if campaignID > 0 {
		s.cache.Invalidate(
			internal.Key(internal.ScopePersonas, campaignID),
			internal.Key(internal.ScopePersonaBook, campaignID),
			internal.Key(internal.ScopeDashboard, campaignID),
		)
		return
	}
	s.cache.InvalidateScope(internal.ScopePersonas, internal.ScopePersonaBook, internal.ScopeDashboard)
}
