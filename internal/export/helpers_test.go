package export

import (
	"testing"

	"github.com/iksnae/quest-log/internal"
)

func testSessionView(t *testing.T) *internal.SessionView {
	t.Helper()
	view, err := internal.NewNormalizer().NormalizeSession(internal.CreateTestSession(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	return view
}

func testLegacySessionView(t *testing.T) *internal.SessionView {
	t.Helper()
	view, err := internal.NewNormalizer().NormalizeSession(internal.CreateTestLegacySession(2, 1))
	if err != nil {
		t.Fatal(err)
	}
	return view
}

func testSnapshot() *internal.CampaignSnapshot {
	mira := internal.CreateTestPersona(20, 1, "Mira", internal.RolePC)
	mira.Aliases = internal.AliasList{"Red"}
	king := internal.CreateTestPersona(23, 1, "The Drowned King", internal.RoleVillain)

	s1 := internal.CreateTestSession(1, 1)
	s2 := internal.CreateTestLegacySession(2, 1)

	return internal.NewNormalizer().NormalizeSnapshot(
		*internal.CreateTestCampaign(1),
		[]internal.Session{*s1, *s2},
		[]internal.Persona{*mira, *king},
		[]internal.Highlight{
			internal.CreateTestHighlight(11, 1, internal.HighlightHigh, "Mira lands the killing blow"),
			internal.CreateTestHighlight(12, 1, internal.HighlightLow, "The rowboat sinks"),
		},
		[]internal.Quote{internal.CreateTestQuote(13, 1, "Keeper", "The light must never go out.")},
		[]internal.Moment{{ID: 50, SessionID: 1, Title: "Pratfall"}},
	)
}
