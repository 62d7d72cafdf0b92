package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/testutil"
)

// resetFlags puts every flag of c and its subcommands back to its default.
// Flag values live in package variables and survive between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args against b, feeding stdin to prompts, and
// returns everything written to stdout
func run(t *testing.T, b *testutil.FakeBackend, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	full := []string{"--config", filepath.Join(t.TempDir(), "config.yaml")}
	if b != nil {
		full = append(full, "--api-url", b.URL())
	}
	full = append(full, args...)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(full)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.Execute()
	return stdout.String(), err
}

func seeded(t *testing.T) *testutil.FakeBackend {
	t.Helper()
	b := testutil.NewFakeBackend(t)
	testutil.SeedCampaign(b)
	return b
}

func loadedConfig(campaign int) internal.Config {
	cfg := internal.DefaultConfig()
	cfg.CampaignID = campaign
	return cfg
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output does not contain %q:\n%s", w, out)
		}
	}
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "version flag",
			args: []string{"--version"},
			want: "commit:",
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: "questlog campaign list",
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, nil, "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" {
				assertContains(t, out, tt.want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"campaign", "session", "persona", "highlight", "quote", "moment", "export", "inspect", "healthcheck"}
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range want {
		if !names[name] {
			t.Errorf("%s command not registered", name)
		}
	}
}

func TestRootCommand_CampaignRequired(t *testing.T) {
	b := seeded(t)
	_, err := run(t, b, "", "session", "list")
	if err == nil || !strings.Contains(err.Error(), "no campaign selected") {
		t.Fatalf("session list without a campaign: err = %v", err)
	}
}

func TestRootCommand_CampaignFromEnvironment(t *testing.T) {
	b := seeded(t)
	t.Setenv("QUESTLOG_CAMPAIGN", "1")

	out, err := run(t, b, "", "session", "list")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Found 2 session(s)", "The Lighthouse", "The Reef")
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"twelve", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in, "session")
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseID(%q) = %d, %v", tt.in, got, err)
		}
	}
}
