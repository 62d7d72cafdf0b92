package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/service"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	apiURL     string
	graphqlURL string
	timeout    time.Duration
	campaignID int
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// newService builds the service for a command. Tests replace it.
var newService = func(cfg internal.Config) *service.Service {
	return service.NewFromConfig(cfg)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "questlog",
	Short: "Browse and curate tabletop campaign recaps",
	Long: `A command line client for the Quest Log backend.

Quest Log turns recorded tabletop sessions into summaries, highlights,
quotes and a cast of personas. This client lets you browse and curate them.

Features:
  • Campaign dashboards with sessions, cast and memorable moments
  • Session reports with highlights, low points and quotes
  • Persona aliases and merging of duplicate personas
  • Session import from text, server paths or audio uploads
  • Export to JSON, JSONL, Markdown, YAML or a SQLite archive

Quick Start:
  questlog campaign list                 # List campaigns
  questlog campaign show 1               # Show a campaign dashboard
  questlog session show 12               # Show a session report
  questlog export --campaign 1 -f md     # Export a campaign digest

Settings are read from ~/.config/questlog/config.yaml, .env and
QUESTLOG_* environment variables; flags win over all of them.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", internal.DefaultConfigPath(), "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend REST base URL (default http://localhost:8000)")
	rootCmd.PersistentFlags().StringVar(&graphqlURL, "graphql-url", "", "Backend GraphQL endpoint (default <api-url>/graphql)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (default 30s)")
	rootCmd.PersistentFlags().IntVarP(&campaignID, "campaign", "c", 0, "Campaign ID (default from config)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig merges the config file, environment and flags
func loadConfig() (internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	cfg = cfg.WithOverrides(apiURL, graphqlURL, timeout)
	if campaignID > 0 {
		cfg.CampaignID = campaignID
	}
	internal.LogDebug("backend %s, graphql %s", cfg.APIURL, cfg.GraphQLURL)
	return cfg, nil
}

// connect loads the config and builds the service
func connect() (*service.Service, internal.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return newService(cfg), cfg, nil
}

// requireCampaign returns the campaign selected by flag or config
func requireCampaign(cfg internal.Config) (int, error) {
	if cfg.CampaignID <= 0 {
		return 0, fmt.Errorf("no campaign selected: pass --campaign or set campaign in the config")
	}
	return cfg.CampaignID, nil
}
