package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the Quest Log backend is reachable",
	Long: `Check the health of the backend connection by verifying:
  • Configuration loading
  • The REST API banner
  • The GraphQL endpoint
  • Campaign listing

This command is useful for debugging connection issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(w, sectionStyle.Render("🔍 Quest Log Health Check"))
		_, _ = fmt.Fprintln(w)

		// Step 1: Configuration
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 1: Loading configuration..."))
		svc, cfg, err := connect()
		if err != nil {
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Failed to load configuration:"), err)
			return err
		}
		_, _ = fmt.Fprintln(w, successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(w, "   Config file: %s\n", configPath)
			_, _ = fmt.Fprintf(w, "   REST: %s\n", cfg.APIURL)
			_, _ = fmt.Fprintf(w, "   GraphQL: %s\n", cfg.GraphQLURL)
			_, _ = fmt.Fprintf(w, "   Timeout: %s\n", cfg.Timeout)
		}
		_, _ = fmt.Fprintln(w)

		health := svc.Health(cmd.Context())

		// Step 2: REST
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 2: Checking REST API..."))
		if health.RESTErr != nil {
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ REST API unreachable:"), health.RESTErr)
		} else {
			_, _ = fmt.Fprintln(w, successStyle.Render("✅ REST API reachable"))
			if healthcheckVerbose && health.Message != "" {
				_, _ = fmt.Fprintf(w, "   %s\n", health.Message)
			}
		}
		_, _ = fmt.Fprintln(w)

		// Step 3: GraphQL
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 3: Checking GraphQL endpoint..."))
		if health.GraphQLErr != nil {
			_, _ = fmt.Fprintln(w, warningStyle.Render("⚠️  GraphQL endpoint unreachable:"), health.GraphQLErr)
			_, _ = fmt.Fprintln(w, "   Dashboards and session details fall back to REST where they can")
		} else {
			_, _ = fmt.Fprintln(w, successStyle.Render("✅ GraphQL endpoint reachable"))
		}
		_, _ = fmt.Fprintln(w)

		// Step 4: Campaigns
		if health.RESTErr == nil {
			_, _ = fmt.Fprintln(w, infoStyle.Render("Step 4: Listing campaigns..."))
			campaigns, err := svc.Campaigns(cmd.Context())
			if err != nil {
				_, _ = fmt.Fprintln(w, warningStyle.Render("⚠️  Failed to list campaigns:"), err)
			} else {
				_, _ = fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ Found %d campaign(s)", len(campaigns))))
			}
			_, _ = fmt.Fprintln(w)
		}

		// Summary
		_, _ = fmt.Fprintln(w, sectionStyle.Render("Summary"))
		if !health.OK() {
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Backend is not fully reachable"))
			return fmt.Errorf("healthcheck failed")
		}
		_, _ = fmt.Fprintln(w, successStyle.Render("✅ Backend is healthy"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "verbose", "v", false, "Show detailed information")
}
