package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/quest-log/internal"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

// statusStyles colors processing states
var statusStyles = map[internal.ProcessingStatus]lipgloss.Style{
	internal.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	internal.StatusProcessing: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	internal.StatusUploaded:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	internal.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	internal.StatusError:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

func renderStatus(s internal.ProcessingStatus) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
}

func shorten(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func formatDate(t internal.Timestamp) string {
	if t.IsZero() {
		return dateStyle.Render("—")
	}
	diff := time.Since(t.Time)
	switch {
	case diff < 24*time.Hour:
		return dateStyle.Render(t.Format("Today 15:04"))
	case diff < 7*24*time.Hour:
		return dateStyle.Render(t.Format("Mon 15:04"))
	case diff < 365*24*time.Hour:
		return dateStyle.Render(t.Format("Jan 02 15:04"))
	default:
		return dateStyle.Render(t.Format("2006-01-02"))
	}
}

func displayCampaigns(w io.Writer, campaigns []internal.Campaign) {
	if len(campaigns) == 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render("📋 No campaigns found"))
		return
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 Found %d campaign(s)", len(campaigns))))
	_, _ = fmt.Fprintln(w)

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Created")+"\t")
	for _, c := range campaigns {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t\n", idStyle.Render(strconv.Itoa(c.ID)), nameStyle.Render(shorten(c.Name, 50)), formatDate(c.CreatedAt))
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, idStyle.Render("💡 Tip: Use `questlog campaign show <id>` for a dashboard"))
}

func displaySessions(w io.Writer, sessions []internal.SessionView) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render("📋 No sessions found"))
		return
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions))))
	_, _ = fmt.Fprintln(w)

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Status")+"\t"+titleStyle.Render("Highlights")+"\t"+titleStyle.Render("Recorded")+"\t")
	for _, s := range sessions {
		count := len(s.Artifacts.High) + len(s.Artifacts.Low)
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(strconv.Itoa(s.ID)),
			nameStyle.Render(shorten(s.Name, 50)),
			renderStatus(s.Status),
			countStyle.Render(strconv.Itoa(count)),
			formatDate(s.CreatedAt),
		)
	}
	_ = tw.Flush()
}

func displayPersonas(w io.Writer, personas []internal.PersonaView) {
	if len(personas) == 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render("📋 No personas found"))
		return
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 Found %d persona(s)", len(personas))))
	_, _ = fmt.Fprintln(w)

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Role")+"\t"+titleStyle.Render("Aliases")+"\t")
	for _, p := range personas {
		aliases := dateStyle.Render("—")
		if len(p.Aliases) > 0 {
			aliases = labelStyle.Render(shorten(strings.Join(p.Aliases, ", "), 40))
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", idStyle.Render(strconv.Itoa(p.ID)), nameStyle.Render(p.Name), p.Role, aliases)
	}
	_ = tw.Flush()
}

// displayArtifacts prints artifacts as a bulleted list with their labels
func displayArtifacts(w io.Writer, title string, artifacts []internal.Artifact) {
	if len(artifacts) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(artifacts))))
	for _, a := range artifacts {
		line := "  • "
		if a.ID != 0 {
			line += idStyle.Render("#"+strconv.Itoa(a.ID)) + " "
		}
		switch {
		case a.IsQuote():
			line += fmt.Sprintf("“%s”", a.Text)
			if a.Label != "" {
				line += " " + labelStyle.Render("— "+a.Label)
			}
		case a.Label != "":
			line += labelStyle.Render("["+a.Label+"]") + " " + a.Text
		default:
			line += a.Text
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w)
}

func displayMoments(w io.Writer, moments []internal.Moment) {
	if len(moments) == 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render("📋 No moments found"))
		return
	}
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Type")+"\t"+titleStyle.Render("Session")+"\t")
	for _, m := range moments {
		session := strconv.Itoa(m.SessionID)
		if m.SessionName != nil {
			session = shorten(*m.SessionName, 30)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", idStyle.Render(strconv.Itoa(m.ID)), nameStyle.Render(shorten(m.Title, 50)), labelStyle.Render(m.Type), dateStyle.Render(session))
	}
	_ = tw.Flush()
}
