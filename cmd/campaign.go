package cmd

import (
	"fmt"
	"strconv"

	"github.com/iksnae/quest-log/internal"
	"github.com/spf13/cobra"
)

var (
	campaignDescription string
	campaignYes         bool
)

var campaignCmd = &cobra.Command{
	Use:     "campaign",
	Aliases: []string{"campaigns"},
	Short:   "List, show and manage campaigns",
}

var campaignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := connect()
		if err != nil {
			return err
		}
		campaigns, err := svc.Campaigns(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list campaigns: %w", err)
		}
		displayCampaigns(cmd.OutOrStdout(), campaigns)
		return nil
	},
}

var campaignShowCmd = &cobra.Command{
	Use:   "show [campaign-id]",
	Short: "Show a campaign dashboard",
	Long: `Show a campaign with its sessions, cast grouped by role and moments.

Without an argument the campaign from --campaign or the config is shown.
An unknown campaign prints the list of campaigns instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		id, err := campaignArg(args, cfg)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		dash, err := svc.Dashboard(cmd.Context(), id)
		if internal.IsNotFound(err) {
			_, _ = fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("⚠️  Campaign %d not found", id)))
			_, _ = fmt.Fprintln(w)
			campaigns, listErr := svc.Campaigns(cmd.Context())
			if listErr != nil {
				return fmt.Errorf("failed to list campaigns: %w", listErr)
			}
			displayCampaigns(w, campaigns)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load campaign %d: %w", id, err)
		}
		displayDashboard(w, dash)
		return nil
	},
}

var campaignCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := connect()
		if err != nil {
			return err
		}
		c, err := svc.CreateCampaign(cmd.Context(), args[0], campaignDescription)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Created campaign %d: %s", c.ID, c.Name)))
		return nil
	},
}

var campaignDeleteCmd = &cobra.Command{
	Use:   "delete <campaign-id>",
	Short: "Delete a campaign and everything it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "campaign")
		if err != nil {
			return err
		}
		svc, _, err := connect()
		if err != nil {
			return err
		}
		if !campaignYes {
			c, err := svc.Campaign(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !confirm(cmd, fmt.Sprintf("Delete campaign %q with all its sessions and personas?", c.Name)) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("Cancelled"))
				return nil
			}
		}
		if err := svc.DeleteCampaign(cmd.Context(), id); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Deleted campaign %d", id)))
		return nil
	},
}

var campaignSummarizeCmd = &cobra.Command{
	Use:   "summarize [campaign-id]",
	Short: "Generate the campaign summary from its sessions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		id, err := campaignArg(args, cfg)
		if err != nil {
			return err
		}
		if err := svc.GenerateCampaignSummary(cmd.Context(), id); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✅ Summary generation started"))
		return nil
	},
}

// campaignArg takes the campaign from the first argument, else from the
// flag or config
func campaignArg(args []string, cfg internal.Config) (int, error) {
	if len(args) > 0 {
		return parseID(args[0], "campaign")
	}
	return requireCampaign(cfg)
}

func parseID(s, what string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(campaignCmd)
	campaignCmd.AddCommand(campaignListCmd, campaignShowCmd, campaignCreateCmd, campaignDeleteCmd, campaignSummarizeCmd)

	campaignCreateCmd.Flags().StringVarP(&campaignDescription, "description", "d", "", "Campaign description")
	campaignDeleteCmd.Flags().BoolVarP(&campaignYes, "yes", "y", false, "Delete without asking")
}
