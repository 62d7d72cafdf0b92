package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/iksnae/quest-log/internal"
)

// Snapshot fetches everything a campaign owns in parallel and normalizes
// it. Any failed fetch fails the whole snapshot.
func (s *Service) Snapshot(ctx context.Context, campaignID int) (*internal.CampaignSnapshot, error) {
	var (
		campaign   internal.Campaign
		sessions   []internal.Session
		personas   []internal.Persona
		highlights []internal.Highlight
		quotes     []internal.Quote
		moments    []internal.Moment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		campaign, err = s.Campaign(gctx, campaignID)
		return wrapFetch("campaign", err)
	})
	g.Go(func() (err error) {
		sessions, err = cached(s, internal.Key(internal.ScopeSessions, campaignID), func() ([]internal.Session, error) {
			return s.rest.ListSessions(gctx, campaignID)
		})
		return wrapFetch("sessions", err)
	})
	g.Go(func() (err error) {
		personas, err = s.rawPersonas(gctx, campaignID)
		return wrapFetch("personas", err)
	})
	g.Go(func() (err error) {
		highlights, err = s.rawHighlights(gctx, campaignID)
		return wrapFetch("highlights", err)
	})
	g.Go(func() (err error) {
		quotes, err = cached(s, internal.Key(internal.ScopeQuotes, campaignID), func() ([]internal.Quote, error) {
			return s.rest.ListQuotes(gctx, campaignID)
		})
		return wrapFetch("quotes", err)
	})
	g.Go(func() (err error) {
		moments, err = cached(s, internal.Key(internal.ScopeMoments, campaignID), func() ([]internal.Moment, error) {
			return s.rest.ListMoments(gctx, campaignID, 0)
		})
		return wrapFetch("moments", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	internal.LogDebug("snapshot of campaign %d: %d sessions, %d personas, %d highlights, %d quotes, %d moments",
		campaignID, len(sessions), len(personas), len(highlights), len(quotes), len(moments))
	return s.norm.NormalizeSnapshot(campaign, sessions, personas, highlights, quotes, moments), nil
}

func wrapFetch(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", what, err)
	}
	return nil
}
