package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/service"
)

var (
	showHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingLeft(2)

	groupStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

func displayDashboard(w io.Writer, d *service.Dashboard) {
	_, _ = fmt.Fprintln(w, showHeaderStyle.Render(fmt.Sprintf("🎲 %s", d.Campaign.Name)))
	if d.Campaign.Description != "" {
		_, _ = fmt.Fprintln(w, summaryStyle.Render(d.Campaign.Description))
	}
	if d.Campaign.Summary != nil && *d.Campaign.Summary != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, groupStyle.Render("Summary"))
		_, _ = fmt.Fprintln(w, summaryStyle.Render(*d.Campaign.Summary))
	}
	_, _ = fmt.Fprintln(w)

	displaySessions(w, d.Sessions)
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, groupStyle.Render("Cast"))
	displayRoleGroup(w, "Player characters", d.Roles.PCs)
	displayRoleGroup(w, "NPCs", d.Roles.NPCs)
	displayRoleGroup(w, "Monsters & villains", d.Roles.Adversaries)
	displayRoleGroup(w, "Others", d.Roles.Others)
	_, _ = fmt.Fprintln(w)

	if len(d.Moments) > 0 {
		_, _ = fmt.Fprintln(w, groupStyle.Render("Moments"))
		displayMoments(w, d.Moments)
	}
}

func displayRoleGroup(w io.Writer, title string, personas []internal.PersonaView) {
	if len(personas) == 0 {
		return
	}
	names := make([]string, 0, len(personas))
	for _, p := range personas {
		names = append(names, nameStyle.Render(p.Name)+idStyle.Render(" #"+strconv.Itoa(p.ID)))
	}
	_, _ = fmt.Fprintf(w, "  %s: %s\n", titleStyle.Render(title), strings.Join(names, ", "))
}

func displaySessionView(w io.Writer, s *internal.SessionView) {
	if s == nil {
		_, _ = fmt.Fprintln(w, headerStyle.Render("No session"))
		return
	}

	_, _ = fmt.Fprintln(w, showHeaderStyle.Render(fmt.Sprintf("📜 %s", s.Name)))
	_, _ = fmt.Fprintf(w, "  %s %s   %s %s\n",
		idStyle.Render("Status:"), renderStatus(s.Status),
		idStyle.Render("Recorded:"), formatDate(s.CreatedAt))
	if s.ErrorMessage != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", errorStyle.Render("Error:"), s.ErrorMessage)
	}
	_, _ = fmt.Fprintln(w)

	if s.Summary != "" {
		_, _ = fmt.Fprintln(w, groupStyle.Render("Summary"))
		_, _ = fmt.Fprintln(w, summaryStyle.Render(s.Summary))
		_, _ = fmt.Fprintln(w)
	}

	displayResolved(w, s.Artifacts)
}

func displayPersonaView(w io.Writer, p *internal.PersonaView) {
	_, _ = fmt.Fprintln(w, showHeaderStyle.Render(fmt.Sprintf("🎭 %s (%s)", p.Name, p.Role)))

	var facts []string
	for _, f := range []struct{ label, value string }{
		{"Player", p.PlayerName},
		{"Gender", p.Gender},
		{"Race", p.Race},
		{"Class", p.ClassName},
		{"Status", p.Status},
		{"Faction", p.Faction},
		{"Alignment", p.Alignment},
	} {
		if f.value != "" {
			facts = append(facts, idStyle.Render(f.label+":")+" "+f.value)
		}
	}
	if p.Level > 0 {
		facts = append(facts, idStyle.Render("Level:")+" "+strconv.Itoa(p.Level))
	}
	if len(facts) > 0 {
		_, _ = fmt.Fprintln(w, "  "+strings.Join(facts, "   "))
	}
	if len(p.Aliases) > 0 {
		_, _ = fmt.Fprintf(w, "  %s %s\n", idStyle.Render("Aliases:"), labelStyle.Render(strings.Join(p.Aliases, ", ")))
	}
	_, _ = fmt.Fprintln(w)

	if p.Description != "" {
		_, _ = fmt.Fprintln(w, summaryStyle.Render(p.Description))
		_, _ = fmt.Fprintln(w)
	}
	if p.Summary != "" {
		_, _ = fmt.Fprintln(w, groupStyle.Render("Summary"))
		_, _ = fmt.Fprintln(w, summaryStyle.Render(p.Summary))
		_, _ = fmt.Fprintln(w)
	}

	displayResolved(w, p.Artifacts)
}

func displayResolved(w io.Writer, a internal.ResolvedArtifacts) {
	if len(a.High)+len(a.Low)+len(a.Quotes) == 0 {
		_, _ = fmt.Fprintln(w, idStyle.Render("No highlights or quotes yet"))
		return
	}
	displayArtifacts(w, "✨ Highlights", a.High)
	displayArtifacts(w, "💀 Low points", a.Low)
	displayArtifacts(w, "💬 Quotes", a.Quotes)
}
