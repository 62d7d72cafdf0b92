package service

import (
	"context"
	"fmt"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/api"
)

// Sessions lists the sessions of a campaign
func (s *Service) Sessions(ctx context.Context, campaignID int) ([]internal.SessionView, error) {
	raw, err := cached(s, internal.Key(internal.ScopeSessions, campaignID), func() ([]internal.Session, error) {
		return s.rest.ListSessions(ctx, campaignID)
	})
	if err != nil {
		return nil, err
	}
	return s.norm.NormalizeSessions(raw), nil
}

// Session returns one session with its artifacts resolved. GraphQL is
// preferred because it carries structured records; REST is used when the
// GraphQL endpoint fails for any reason other than a missing session.
func (s *Service) Session(ctx context.Context, id int) (*internal.SessionView, error) {
	raw, err := cached(s, internal.Key(internal.ScopeSession, id), func() (internal.Session, error) {
		session, err := s.graph.Session(ctx, id)
		if err != nil && !internal.IsNotFound(err) {
			internal.LogWarn("GraphQL session %d failed, falling back to REST: %v", id, err)
			session, err = s.rest.GetSession(ctx, id)
		}
		if err != nil {
			return internal.Session{}, err
		}
		return *session, nil
	})
	if err != nil {
		return nil, err
	}
	return s.norm.NormalizeSession(&raw)
}

// UpdateSession renames a session or replaces its summary. Nil leaves a
// field unchanged.
func (s *Service) UpdateSession(ctx context.Context, id int, name, summary *string) (*internal.SessionView, error) {
	updated, err := s.graph.UpdateSession(ctx, id, name, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to update session %d: %w", id, err)
	}
	s.invalidateSession(id, updated.CampaignID)
	return s.Session(ctx, id)
}

// RefineSummary asks the backend to rewrite a session summary
func (s *Service) RefineSummary(ctx context.Context, id int) (string, error) {
	summary, err := s.graph.RefineSessionSummary(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to refine summary of session %d: %w", id, err)
	}
	s.invalidateSession(id, 0)
	return summary, nil
}

// DeleteSession deletes a session
func (s *Service) DeleteSession(ctx context.Context, campaignID, id int) error {
	if err := s.rest.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	s.invalidateSession(id, campaignID)
	return nil
}

// RegenerateSession restarts processing of a session and returns the
// status the backend reports
func (s *Service) RegenerateSession(ctx context.Context, id int) (internal.ProcessingStatus, error) {
	status, err := s.rest.RegenerateSession(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to regenerate session %d: %w", id, err)
	}
	s.invalidateSession(id, 0)
	return status, nil
}

// ImportText creates a session from a transcript
func (s *Service) ImportText(ctx context.Context, campaignID int, name, content string) (*api.ImportResult, error) {
	result, err := s.rest.ImportText(ctx, campaignID, name, content)
	if err != nil {
		return nil, fmt.Errorf("failed to import transcript: %w", err)
	}
	s.invalidateSession(result.SessionID, campaignID)
	return result, nil
}

// ImportLocal creates a session from files on the backend's filesystem
func (s *Service) ImportLocal(ctx context.Context, campaignID int, name string, paths []string) (*api.ImportResult, error) {
	result, err := s.rest.ImportLocal(ctx, campaignID, name, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to import local files: %w", err)
	}
	s.invalidateSession(result.SessionID, campaignID)
	return result, nil
}

// UploadSession creates a session from local audio files
func (s *Service) UploadSession(ctx context.Context, campaignID int, name string, paths []string) (*api.ImportResult, error) {
	result, err := s.rest.UploadSession(ctx, campaignID, name, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to upload session: %w", err)
	}
	s.invalidateSession(result.SessionID, campaignID)
	return result, nil
}

// ReuploadSession replaces the audio of a session
func (s *Service) ReuploadSession(ctx context.Context, id int, paths []string) (*api.ImportResult, error) {
	result, err := s.rest.ReuploadSession(ctx, id, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to reupload session %d: %w", id, err)
	}
	s.invalidateSession(id, 0)
	return result, nil
}

// WaitForSession polls until the session finishes processing, then
// refreshes everything derived from it
func (s *Service) WaitForSession(ctx context.Context, id int, onStatus func(internal.ProcessingStatus)) (*internal.SessionView, error) {
	opts := s.wait
	opts.OnStatus = onStatus
	session, err := api.WaitForSession(ctx, s.rest, id, opts)
	if err != nil {
		return nil, err
	}
	s.invalidateSession(id, session.CampaignID)
	// Processing extracts new artifacts and personas
	s.cache.InvalidateScope(
		internal.ScopePersonas,
		internal.ScopePersonaBook,
		internal.ScopeHighlights,
		internal.ScopeQuotes,
		internal.ScopeMoments,
	)
	return s.Session(ctx, id)
}

// invalidateSession drops a session's detail and the lists that show it.
// A zero campaignID drops those lists for every campaign.
func (s *Service) invalidateSession(id, campaignID int) {
	s.cache.Invalidate(internal.Key(internal.ScopeSession, id))
	if campaignID > 0 {
		s.cache.Invalidate(
			internal.Key(internal.ScopeSessions, campaignID),
			internal.Key(internal.ScopeDashboard, campaignID),
		)
		return
	}
	s.cache.InvalidateScope(internal.ScopeSessions, internal.ScopeDashboard)
}
