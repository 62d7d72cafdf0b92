package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_NormalizeSession(t *testing.T) {
	n := NewNormalizer()

	view, err := n.NormalizeSession(CreateTestSession(1, 1))
	require.NoError(t, err)
	assert.Equal(t, "Session 1: The Lighthouse", view.Name)
	assert.Equal(t, "The party bargained with the lighthouse keeper.", view.Summary)
	assert.Len(t, view.Artifacts.High, 1)
	assert.Len(t, view.Artifacts.Low, 1)
	require.Len(t, view.Artifacts.Quotes, 1)
	assert.Equal(t, "Keeper", view.Artifacts.Quotes[0].Label)

	_, err = n.NormalizeSession(nil)
	assert.Error(t, err)
}

func TestNormalizer_NormalizeLegacySession(t *testing.T) {
	view, err := NewNormalizer().NormalizeSession(CreateTestLegacySession(2, 1))
	require.NoError(t, err)

	require.Len(t, view.Artifacts.High, 2)
	assert.Equal(t, "Victory", view.Artifacts.High[0].Label)
	assert.Equal(t, "The bridge held", view.Artifacts.High[0].Text)
	require.Len(t, view.Artifacts.Low, 1)
	assert.Equal(t, "Ambush", view.Artifacts.Low[0].Label)
	assert.Equal(t, []string{`"Run!" shouted Bram`, "It's only a flesh wound"}, texts(view.Artifacts.Quotes))
}

func TestNormalizer_NormalizePersona(t *testing.T) {
	p := CreateTestPersona(4, 1, "Bram", RolePC)
	level := 3
	p.Level = &level
	p.Aliases = nil

	view, err := NewNormalizer().NormalizePersona(p)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Level)
	assert.Equal(t, []string{}, view.Aliases)
	assert.Empty(t, view.PlayerName)

	_, err = NewNormalizer().NormalizePersona(nil)
	assert.Error(t, err)
}

func TestNormalizer_NormalizeMoments(t *testing.T) {
	moments := NewNormalizer().NormalizeMoments([]Moment{
		{ID: 1, Title: "Pratfall", Type: "funny"},
		{ID: 2, Title: "Untyped"},
	})
	assert.Equal(t, "funny", moments[0].Type)
	assert.Equal(t, DefaultMomentType, moments[1].Type)
}

func TestNormalizer_NormalizeSnapshot(t *testing.T) {
	n := NewNormalizer()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	snap := n.NormalizeSnapshot(
		*CreateTestCampaign(1),
		[]Session{*CreateTestSession(1, 1)},
		[]Persona{*CreateTestPersona(1, 1, "Mira", RolePC)},
		[]Highlight{
			CreateTestHighlight(1, 1, HighlightHigh, "up"),
			CreateTestHighlight(2, 1, HighlightLow, "down"),
		},
		nil,
		[]Moment{{ID: 1, Title: "t"}},
	)

	assert.Equal(t, fixed, snap.ExportedAt)
	assert.Len(t, snap.Sessions, 1)
	assert.Len(t, snap.Personas, 1)
	assert.Equal(t, []string{"up"}, texts(snap.Highlights))
	assert.Equal(t, []string{"down"}, texts(snap.LowPoints))
	assert.Equal(t, []Artifact{}, snap.Quotes)
	assert.Equal(t, DefaultMomentType, snap.Moments[0].Type)
}

func TestGroupByRole(t *testing.T) {
	views := NewNormalizer().NormalizePersonas([]Persona{
		*CreateTestPersona(1, 1, "Mira", RolePC),
		*CreateTestPersona(2, 1, "Keeper", RoleNPC),
		*CreateTestPersona(3, 1, "Grubnik", RoleMonster),
		*CreateTestPersona(4, 1, "The Drowned King", RoleVillain),
		*CreateTestPersona(5, 1, "Sam", RoleDM),
	})

	groups := GroupByRole(views)
	assert.Len(t, groups.PCs, 1)
	assert.Len(t, groups.NPCs, 1)
	assert.Len(t, groups.Adversaries, 2)
	assert.Len(t, groups.Others, 1)
}

func TestQuoteBook(t *testing.T) {
	mira := CreateTestPersona(1, 1, "Mira", RolePC)
	mira.QuotesList = []Quote{
		CreateTestQuote(1, 1, "", "Follow me"),
		CreateTestQuote(2, 1, "Mira (disguised)", "Nothing to see"),
	}
	bram := CreateTestPersona(2, 1, "Bram", RolePC)
	bram.MemorableQuotes = strPtr("['[Tavern] Another round']")

	book := QuoteBook(NewNormalizer().NormalizePersonas([]Persona{*mira, *bram}))
	require.Len(t, book, 3)
	assert.Equal(t, "Mira", book[0].Label)
	assert.Equal(t, "Mira (disguised)", book[1].Label)
	assert.Equal(t, "Tavern", book[2].Label)
	require.NotNil(t, book[2].PersonaID)
	assert.Equal(t, 2, *book[2].PersonaID)
}

func TestFilterArtifacts(t *testing.T) {
	artifacts := []Artifact{
		{Kind: KindQuote, Label: "Bram", Text: "Another round"},
		{Kind: KindQuote, Label: "Mira", Text: "Follow me"},
	}
	assert.Len(t, FilterArtifacts(artifacts, ""), 2)
	assert.Equal(t, []string{"Another round"}, texts(FilterArtifacts(artifacts, "bram")))
	assert.Equal(t, []string{"Follow me"}, texts(FilterArtifacts(artifacts, "FOLLOW")))
	assert.Empty(t, FilterArtifacts(artifacts, "dragon"))
}
