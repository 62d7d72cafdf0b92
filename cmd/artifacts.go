package cmd

import (
	"fmt"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/api"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	artifactSearch  string
	highlightType   string
	highlightText   string
	highlightLow    bool
	quoteText       string
	quoteSpeaker    string
	artifactPersona int
	momentSession   int
	momentTitle     string
	momentDesc      string
	momentType      string
)

var highlightCmd = &cobra.Command{
	Use:     "highlight",
	Aliases: []string{"highlights"},
	Short:   "Browse and edit highlights and low points",
}

var highlightListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the highlights of a campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}
		high, low, err := svc.Highlights(cmd.Context(), cid)
		if err != nil {
			return fmt.Errorf("failed to list highlights: %w", err)
		}

		w := cmd.OutOrStdout()
		high = internal.FilterArtifacts(high, artifactSearch)
		low = internal.FilterArtifacts(low, artifactSearch)
		if len(high)+len(low) == 0 {
			_, _ = fmt.Fprintln(w, headerStyle.Render("📋 No highlights found"))
			return nil
		}
		switch highlightType {
		case "", "all":
			displayArtifacts(w, "✨ Highlights", high)
			displayArtifacts(w, "💀 Low points", low)
		case string(internal.HighlightHigh):
			displayArtifacts(w, "✨ Highlights", high)
		case string(internal.HighlightLow):
			displayArtifacts(w, "💀 Low points", low)
		default:
			return fmt.Errorf("invalid --type %q (use high, low or all)", highlightType)
		}
		return nil
	},
}

var highlightEditCmd = &cobra.Command{
	Use:   "edit <highlight-id>",
	Short: "Change the text, type or persona of a highlight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "highlight")
		if err != nil {
			return err
		}
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}

		high, low, err := svc.Highlights(cmd.Context(), cid)
		if err != nil {
			return err
		}
		current, ok := lo.Find(append(high, low...), func(a internal.Artifact) bool { return a.ID == id })
		if !ok {
			return fmt.Errorf("highlight %d is not in campaign %d", id, cid)
		}

		input := api.HighlightInput{
			Text:      current.Text,
			Type:      string(internal.HighlightHigh),
			PersonaID: current.PersonaID,
		}
		if current.Kind == internal.KindLowPoint {
			input.Type = string(internal.HighlightLow)
		}
		if cmd.Flags().Changed("text") {
			input.Text = highlightText
		}
		if cmd.Flags().Changed("low") {
			input.Type = string(lo.Ternary(highlightLow, internal.HighlightLow, internal.HighlightHigh))
		}
		if cmd.Flags().Changed("persona") {
			input.PersonaID = lo.Ternary(artifactPersona > 0, &artifactPersona, nil)
		}

		updated, err := svc.UpdateHighlight(cmd.Context(), cid, id, input)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Updated %s %d", updated.Type, updated.ID)))
		return nil
	},
}

var highlightDeleteCmd = &cobra.Command{
	Use:   "delete <highlight-id>",
	Short: "Delete a highlight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "highlight")
		if err != nil {
			return err
		}
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}
		if err := svc.DeleteHighlight(cmd.Context(), cid, id); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Deleted highlight %d", id)))
		return nil
	},
}

var quoteCmd = &cobra.Command{
	Use:     "quote",
	Aliases: []string{"quotes"},
	Short:   "Browse and edit quotes",
}

var quoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the quotes of a campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}
		quotes, err := svc.Quotes(cmd.Context(), cid)
		if err != nil {
			return fmt.Errorf("failed to list quotes: %w", err)
		}
		showQuotes(cmd, internal.FilterArtifacts(quotes, artifactSearch))
		return nil
	},
}

var quoteBookCmd = &cobra.Command{
	Use:   "book",
	Short: "Show every persona's quotes, labeled by speaker",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}
		book, err := svc.QuoteBook(cmd.Context(), cid, artifactSearch)
		if err != nil {
			return fmt.Errorf("failed to build quote book: %w", err)
		}
		showQuotes(cmd, book)
		return nil
	},
}

var quoteEditCmd = &cobra.Command{
	Use:   "edit <quote-id>",
	Short: "Change the text, speaker or persona of a quote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "quote")
		if err != nil {
			return err
		}
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}

		quotes, err := svc.Quotes(cmd.Context(), cid)
		if err != nil {
			return err
		}
		current, ok := lo.Find(quotes, func(a internal.Artifact) bool { return a.ID == id })
		if !ok {
			return fmt.Errorf("quote %d is not in campaign %d", id, cid)
		}

		input := api.QuoteInput{
			Text:        current.Text,
			SpeakerName: lo.Ternary(current.Label != "", &current.Label, nil),
			PersonaID:   current.PersonaID,
		}
		if cmd.Flags().Changed("text") {
			input.Text = quoteText
		}
		if cmd.Flags().Changed("speaker") {
			input.SpeakerName = lo.Ternary(quoteSpeaker != "", &quoteSpeaker, nil)
		}
		if cmd.Flags().Changed("persona") {
			input.PersonaID = lo.Ternary(artifactPersona > 0, &artifactPersona, nil)
		}

		updated, err := svc.UpdateQuote(cmd.Context(), cid, id, input)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Updated quote %d", updated.ID)))
		return nil
	},
}

var quoteDeleteCmd = &cobra.Command{
	Use:   "delete <quote-id>",
	Short: "Delete a quote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "quote")
		if err != nil {
			return err
		}
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}
		if err := svc.DeleteQuote(cmd.Context(), cid, id); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Deleted quote %d", id)))
		return nil
	},
}

var momentCmd = &cobra.Command{
	Use:     "moment",
	Aliases: []string{"moments"},
	Short:   "Browse and edit moments",
}

var momentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the moments of a campaign or session",
	Long: `List moments. With --session only that session's moments are shown; a
campaign is then optional.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		if cfg.CampaignID <= 0 && momentSession <= 0 {
			return fmt.Errorf("no campaign selected: pass --campaign, --session or set campaign in %s", configPath)
		}
		moments, err := svc.Moments(cmd.Context(), cfg.CampaignID, momentSession)
		if err != nil {
			return fmt.Errorf("failed to list moments: %w", err)
		}
		displayMoments(cmd.OutOrStdout(), moments)
		return nil
	},
}

var momentEditCmd = &cobra.Command{
	Use:   "edit <moment-id>",
	Short: "Change the title, description or type of a moment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "moment")
		if err != nil {
			return err
		}
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}

		moments, err := svc.Moments(cmd.Context(), cid, 0)
		if err != nil {
			return err
		}
		m, ok := lo.Find(moments, func(m internal.Moment) bool { return m.ID == id })
		if !ok {
			return fmt.Errorf("moment %d is not in campaign %d", id, cid)
		}
		if cmd.Flags().Changed("title") {
			m.Title = momentTitle
		}
		if cmd.Flags().Changed("description") {
			m.Description = momentDesc
		}
		if cmd.Flags().Changed("type") {
			m.Type = momentType
		}

		updated, err := svc.UpdateMoment(cmd.Context(), cid, m)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Updated moment %d: %s", updated.ID, updated.Title)))
		return nil
	},
}

var momentDeleteCmd = &cobra.Command{
	Use:   "delete <moment-id>",
	Short: "Delete a moment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "moment")
		if err != nil {
			return err
		}
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}
		if err := svc.DeleteMoment(cmd.Context(), cid, id); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Deleted moment %d", id)))
		return nil
	},
}

func showQuotes(cmd *cobra.Command, quotes []internal.Artifact) {
	if len(quotes) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render("📋 No quotes found"))
		return
	}
	displayArtifacts(cmd.OutOrStdout(), "💬 Quotes", quotes)
}

func init() {
	rootCmd.AddCommand(highlightCmd, quoteCmd, momentCmd)
	highlightCmd.AddCommand(highlightListCmd, highlightEditCmd, highlightDeleteCmd)
	quoteCmd.AddCommand(quoteListCmd, quoteBookCmd, quoteEditCmd, quoteDeleteCmd)
	momentCmd.AddCommand(momentListCmd, momentEditCmd, momentDeleteCmd)

	for _, c := range []*cobra.Command{highlightListCmd, quoteListCmd, quoteBookCmd} {
		c.Flags().StringVarP(&artifactSearch, "search", "s", "", "Keep entries whose text or speaker contains this")
	}
	highlightListCmd.Flags().StringVarP(&highlightType, "type", "t", "all", "Which bucket to show: high, low or all")

	highlightEditCmd.Flags().StringVar(&highlightText, "text", "", "New text")
	highlightEditCmd.Flags().BoolVar(&highlightLow, "low", false, "Mark as a low point (--low=false for a highlight)")
	quoteEditCmd.Flags().StringVar(&quoteText, "text", "", "New text")
	quoteEditCmd.Flags().StringVar(&quoteSpeaker, "speaker", "", "Speaker name (empty clears it)")
	for _, c := range []*cobra.Command{highlightEditCmd, quoteEditCmd} {
		c.Flags().IntVar(&artifactPersona, "persona", 0, "Persona id (0 clears it)")
	}

	momentListCmd.Flags().IntVar(&momentSession, "session", 0, "Only this session's moments")
	momentEditCmd.Flags().StringVar(&momentTitle, "title", "", "New title")
	momentEditCmd.Flags().StringVar(&momentDesc, "description", "", "New description")
	momentEditCmd.Flags().StringVar(&momentType, "type", "", "New type")
}
