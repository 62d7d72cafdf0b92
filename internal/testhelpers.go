package internal

import (
	"time"
)

var testTime = NewTimestamp(time.Date(2024, 3, 9, 19, 30, 0, 0, time.UTC))

// CreateTestCampaign creates a test campaign
func CreateTestCampaign(id int) *Campaign {
	summary := "The party crossed the Sunless Sea."
	return &Campaign{
		ID:          id,
		Name:        "Curse of the Drowned King",
		Description: "A coastal horror campaign",
		Summary:     &summary,
		CreatedAt:   testTime,
	}
}

// CreateTestSession creates a completed session with structured artifacts
func CreateTestSession(id, campaignID int) *Session {
	summary := "The party bargained with the lighthouse keeper."
	return &Session{
		ID:         id,
		CampaignID: campaignID,
		Name:       "Session 1: The Lighthouse",
		CreatedAt:  testTime,
		Status:     StatusCompleted,
		Summary:    &summary,
		Highlights: StructuredField([]Highlight{
			CreateTestHighlight(id*10+1, id, HighlightHigh, "Mira lands the killing blow"),
			CreateTestHighlight(id*10+2, id, HighlightLow, "The rowboat sinks"),
		}),
		Quotes: []Quote{
			CreateTestQuote(id*10+3, id, "Keeper", "The light must never go out."),
		},
	}
}

// CreateTestLegacySession creates a session that only has legacy strings
func CreateTestLegacySession(id, campaignID int) *Session {
	low := `["[Ambush] Goblins surprised the camp"]`
	quotes := `['"Run!" shouted Bram', 'It\'s only a flesh wound']`
	return &Session{
		ID:              id,
		CampaignID:      campaignID,
		Name:            "Session 0: Legacy import",
		CreatedAt:       testTime,
		Status:          StatusCompleted,
		Highlights:      LegacyField[Highlight]("['[Victory] The bridge held', 'Dawn broke']"),
		LowPoints:       &low,
		MemorableQuotes: &quotes,
	}
}

// CreateTestPersona creates a persona with the given role
func CreateTestPersona(id, campaignID int, name, role string) *Persona {
	return &Persona{
		ID:          id,
		CampaignID:  campaignID,
		Name:        name,
		Role:        role,
		Description: name + " of the coast",
		Status:      "alive",
		Aliases:     AliasList{},
		Highlights:  StructuredField([]Highlight{}),
	}
}

// CreateTestHighlight creates a highlight
func CreateTestHighlight(id, sessionID int, kind HighlightType, text string) Highlight {
	return Highlight{
		ID:         id,
		Text:       text,
		Type:       kind,
		SessionID:  sessionID,
		CampaignID: 1,
	}
}

// CreateTestQuote creates a quote
func CreateTestQuote(id, sessionID int, speaker, text string) Quote {
	q := Quote{
		ID:         id,
		Text:       text,
		SessionID:  sessionID,
		CampaignID: 1,
	}
	if speaker != "" {
		q.SpeakerName = &speaker
	}
	return q
}

// CreateTestMoment creates a moment
func CreateTestMoment(id, sessionID int, title string) Moment {
	return Moment{
		ID:          id,
		SessionID:   sessionID,
		Title:       title,
		Description: title + " happened",
		Type:        DefaultMomentType,
	}
}
