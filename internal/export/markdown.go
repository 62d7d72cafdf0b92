package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/quest-log/internal"
)

// MarkdownExporter exports readable session reports and campaign digests
type MarkdownExporter struct{}

// ExportSession writes a session report
func (e *MarkdownExporter) ExportSession(session *internal.SessionView, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(session.Name))
	writeSessionMeta(w, session)

	if session.Summary != "" {
		_, _ = fmt.Fprintf(w, "## Summary\n\n%s\n\n", escapeMarkdown(session.Summary))
	}

	writeArtifacts(w, "##", session.Artifacts)
	return nil
}

// ExportSnapshot writes a campaign digest: sessions, cast, artifacts and
// moments
func (e *MarkdownExporter) ExportSnapshot(snapshot *internal.CampaignSnapshot, w io.Writer) error {
	c := snapshot.Campaign
	_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(c.Name))
	if c.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(c.Description))
	}
	_, _ = fmt.Fprintf(w, "**Sessions:** %d  \n", len(snapshot.Sessions))
	_, _ = fmt.Fprintf(w, "**Personas:** %d  \n", len(snapshot.Personas))
	_, _ = fmt.Fprintf(w, "**Exported:** %s\n\n", snapshot.ExportedAt.Format(time.RFC3339))

	if c.Summary != nil && *c.Summary != "" {
		_, _ = fmt.Fprintf(w, "## Summary\n\n%s\n\n", escapeMarkdown(*c.Summary))
	}

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Sessions\n\n")
	for i := range snapshot.Sessions {
		s := &snapshot.Sessions[i]
		_, _ = fmt.Fprintf(w, "### %s\n\n", escapeMarkdown(s.Name))
		writeSessionMeta(w, s)
		if s.Summary != "" {
			_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(s.Summary))
		}
	}

	groups := internal.GroupByRole(snapshot.Personas)
	_, _ = fmt.Fprintf(w, "## Cast\n\n")
	writeCast(w, "Player characters", groups.PCs)
	writeCast(w, "NPCs", groups.NPCs)
	writeCast(w, "Monsters and villains", groups.Adversaries)
	writeCast(w, "Others", groups.Others)

	writeArtifacts(w, "##", internal.ResolvedArtifacts{
		High:   snapshot.Highlights,
		Low:    snapshot.LowPoints,
		Quotes: snapshot.Quotes,
	})

	if len(snapshot.Moments) > 0 {
		_, _ = fmt.Fprintf(w, "## Moments\n\n")
		for _, m := range snapshot.Moments {
			_, _ = fmt.Fprintf(w, "- **%s** _(%s)_", escapeMarkdown(m.Title), m.Type)
			if m.Description != "" {
				_, _ = fmt.Fprintf(w, ": %s", escapeMarkdown(m.Description))
			}
			_, _ = fmt.Fprintf(w, "\n")
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	return nil
}

func writeSessionMeta(w io.Writer, s *internal.SessionView) {
	_, _ = fmt.Fprintf(w, "**Status:** %s  \n", s.Status)
	if !s.CreatedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Recorded:** %s  \n", s.CreatedAt.Format("2006-01-02 15:04"))
	}
	if s.ErrorMessage != "" {
		_, _ = fmt.Fprintf(w, "**Error:** %s  \n", escapeMarkdown(s.ErrorMessage))
	}
	_, _ = fmt.Fprintf(w, "\n")
}

func writeCast(w io.Writer, title string, personas []internal.PersonaView) {
	if len(personas) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "### %s\n\n", title)
	for _, p := range personas {
		line := fmt.Sprintf("- **%s** (%s)", escapeMarkdown(p.Name), p.Role)
		if len(p.Aliases) > 0 {
			line += " aka " + escapeMarkdown(strings.Join(p.Aliases, ", "))
		}
		_, _ = fmt.Fprintf(w, "%s\n", line)
	}
	_, _ = fmt.Fprintf(w, "\n")
}

func writeArtifacts(w io.Writer, heading string, a internal.ResolvedArtifacts) {
	writeArtifactList(w, heading+" Highlights", a.High)
	writeArtifactList(w, heading+" Low points", a.Low)

	if len(a.Quotes) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "%s Quotes\n\n", heading)
	for _, q := range a.Quotes {
		_, _ = fmt.Fprintf(w, "> %s\n", escapeMarkdown(q.Text))
		if q.Label != "" {
			_, _ = fmt.Fprintf(w, ">\n> -- %s\n", escapeMarkdown(q.Label))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}
}

func writeArtifactList(w io.Writer, title string, artifacts []internal.Artifact) {
	if len(artifacts) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "%s\n\n", title)
	for _, a := range artifacts {
		if a.Label != "" {
			_, _ = fmt.Fprintf(w, "- **[%s]** %s\n", escapeMarkdown(a.Label), escapeMarkdown(a.Text))
		} else {
			_, _ = fmt.Fprintf(w, "- %s\n", escapeMarkdown(a.Text))
		}
	}
	_, _ = fmt.Fprintf(w, "\n")
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			// Escape markdown syntax outside code blocks
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
