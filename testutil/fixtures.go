package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// SeedCampaign fills b with campaign 1, "Curse of the Drowned King":
//
//   - session 10 "The Lighthouse" with legacy highlight, low point and
//     quote strings, and session 11 "The Reef" with no legacy strings
//     (its only artifact is quote 41)
//   - personas 20 Mira (PC, alias Red), 21 The Masked Woman (NPC),
//     22 Grubnik (Monster), 23 The Drowned King (Villain), 24 Sam (DM)
//   - highlights 30 (high, persona 21) and 31 (low, persona 20)
//   - quotes 40 (session 10, persona 21, no speaker) and 41 (session 11,
//     persona 20, "Keeper")
//   - moments 50 "Pratfall" (funny, session 10) and 51 "Rule of cool"
//     (untyped, session 11)
func SeedCampaign(b *FakeBackend) {
	b.AddCampaign(FakeCampaign{ID: 1, Name: "Curse of the Drowned King"})
	b.AddSession(FakeSession{
		ID: 10, CampaignID: 1, Name: "The Lighthouse",
		Highlights:      strPtr("['[Victory] The bridge held', 'Dawn broke']"),
		LowPoints:       strPtr("['[Ambush] Goblins']"),
		MemorableQuotes: strPtr(`['"Run!" shouted Bram']`),
	})
	b.AddSession(FakeSession{ID: 11, CampaignID: 1, Name: "The Reef"})
	b.AddPersona(FakePersona{ID: 20, CampaignID: 1, Name: "Mira", Role: "PC", Aliases: []string{"Red"}})
	b.AddPersona(FakePersona{ID: 21, CampaignID: 1, Name: "The Masked Woman", Role: "NPC"})
	b.AddPersona(FakePersona{ID: 22, CampaignID: 1, Name: "Grubnik", Role: "Monster"})
	b.AddPersona(FakePersona{ID: 23, CampaignID: 1, Name: "The Drowned King", Role: "Villain"})
	b.AddPersona(FakePersona{ID: 24, CampaignID: 1, Name: "Sam", Role: "DM"})
	b.AddHighlight(FakeHighlight{ID: 30, Text: "Struck true", Type: "high", SessionID: 10, PersonaID: intPtr(21), CampaignID: 1})
	b.AddHighlight(FakeHighlight{ID: 31, Text: "Fell in the sea", Type: "low", SessionID: 10, PersonaID: intPtr(20), CampaignID: 1})
	b.AddQuote(FakeQuote{ID: 40, Text: "Who goes there?", SessionID: 10, PersonaID: intPtr(21), CampaignID: 1})
	b.AddQuote(FakeQuote{ID: 41, Text: "Follow the light", SpeakerName: strPtr("Keeper"), SessionID: 11, PersonaID: intPtr(20), CampaignID: 1})
	b.AddMoment(FakeMoment{ID: 50, SessionID: 10, Title: "Pratfall", Type: "funny"})
	b.AddMoment(FakeMoment{ID: 51, SessionID: 11, Title: "Rule of cool"})
}

// CreateAudioFixtures writes small fake audio files into dir and returns
// their paths in the order given
func CreateAudioFixtures(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("RIFF fake audio "+name), 0644); err != nil {
			t.Fatalf("Failed to write audio fixture %s: %v", name, err)
		}
		paths = append(paths, p)
	}
	return paths
}
