package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/quest-log/internal"
)

func TestShorten(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"The Lighthouse at the End", 10, "The Lig..."},
	}
	for _, tt := range tests {
		if got := shorten(tt.in, tt.n); got != tt.want {
			t.Errorf("shorten(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		in   internal.Timestamp
		want string
	}{
		{"zero", internal.Timestamp{}, "—"},
		{"today", internal.Timestamp{Time: time.Now().Add(-time.Hour)}, "Today"},
		{"old", internal.Timestamp{Time: time.Date(2019, 4, 2, 9, 30, 0, 0, time.UTC)}, "2019-04-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDate(tt.in); !strings.Contains(got, tt.want) {
				t.Errorf("formatDate() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestRenderStatus(t *testing.T) {
	for _, s := range []internal.ProcessingStatus{
		internal.StatusCompleted, internal.StatusProcessing, internal.StatusError, "mystery",
	} {
		if got := renderStatus(s); !strings.Contains(got, string(s)) {
			t.Errorf("renderStatus(%q) = %q", s, got)
		}
	}
}

func TestDisplayCampaigns(t *testing.T) {
	var buf bytes.Buffer
	displayCampaigns(&buf, nil)
	assertContains(t, buf.String(), "No campaigns found")

	buf.Reset()
	displayCampaigns(&buf, []internal.Campaign{
		{ID: 1, Name: "Curse of the Drowned King"},
		{ID: 2, Name: strings.Repeat("Long ", 20)},
	})
	out := buf.String()
	assertContains(t, out, "Found 2 campaign(s)", "Curse of the Drowned King", "...", "campaign show")
}

func TestDisplaySessions(t *testing.T) {
	var buf bytes.Buffer
	displaySessions(&buf, nil)
	assertContains(t, buf.String(), "No sessions found")

	buf.Reset()
	displaySessions(&buf, []internal.SessionView{
		{
			ID: 10, Name: "The Lighthouse", Status: internal.StatusCompleted,
			Artifacts: internal.ResolvedArtifacts{
				High: []internal.Artifact{{Kind: internal.KindHighlight, Text: "a"}, {Kind: internal.KindHighlight, Text: "b"}},
				Low:  []internal.Artifact{{Kind: internal.KindLowPoint, Text: "c"}},
			},
		},
		{ID: 11, Name: "The Reef", Status: internal.StatusProcessing},
	})
	out := buf.String()
	assertContains(t, out, "Found 2 session(s)", "The Lighthouse", "completed", "The Reef", "processing")

	var lighthouse string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "The Lighthouse") {
			lighthouse = line
		}
	}
	if !strings.Contains(lighthouse, " 3 ") {
		t.Errorf("highlight count should include low points: %q", lighthouse)
	}
}

func TestDisplayPersonas(t *testing.T) {
	var buf bytes.Buffer
	displayPersonas(&buf, []internal.PersonaView{
		{ID: 20, Name: "Mira", Role: "PC", Aliases: []string{"Red", "The Bold"}},
		{ID: 22, Name: "Grubnik", Role: "Monster"},
	})
	out := buf.String()
	assertContains(t, out, "Found 2 persona(s)", "Mira", "Red, The Bold", "Grubnik", "Monster", "—")
}

func TestDisplayArtifacts(t *testing.T) {
	tests := []struct {
		name      string
		artifacts []internal.Artifact
		want      []string
	}{
		{
			name: "labeled highlight",
			artifacts: []internal.Artifact{
				{Kind: internal.KindHighlight, ID: 30, Text: "Struck true"},
				{Kind: internal.KindHighlight, Legacy: true, Label: "Victory", Text: "The bridge held"},
			},
			want: []string{"Items (2)", "#30", "Struck true", "[Victory] The bridge held"},
		},
		{
			name: "quote with speaker",
			artifacts: []internal.Artifact{
				{Kind: internal.KindQuote, ID: 41, Label: "Keeper", Text: "Follow the light"},
				{Kind: internal.KindQuote, Text: "Run!"},
			},
			want: []string{"“Follow the light” — Keeper", "“Run!”"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			displayArtifacts(&buf, "Items", tt.artifacts)
			assertContains(t, buf.String(), tt.want...)
		})
	}

	var buf bytes.Buffer
	displayArtifacts(&buf, "Items", nil)
	if buf.Len() != 0 {
		t.Errorf("an empty list should print nothing, got %q", buf.String())
	}
}

func TestDisplayMoments(t *testing.T) {
	var buf bytes.Buffer
	displayMoments(&buf, nil)
	assertContains(t, buf.String(), "No moments found")

	name := "The Lighthouse"
	buf.Reset()
	displayMoments(&buf, []internal.Moment{
		{ID: 50, SessionID: 10, Title: "Pratfall", Type: "funny", SessionName: &name},
		{ID: 51, SessionID: 11, Title: "Rule of cool", Type: internal.DefaultMomentType},
	})
	out := buf.String()
	assertContains(t, out, "Pratfall", "funny", "The Lighthouse", "Rule of cool", "11")
}
