package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/api"
	"github.com/iksnae/quest-log/internal/service"
	"github.com/spf13/cobra"
)

var (
	sessionWait    bool
	sessionName    string
	sessionSummary string
	sessionYes     bool
	sessionFile    string
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Browse, edit and import sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the sessions of a campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}
		sessions, err := svc.Sessions(cmd.Context(), cid)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		displaySessions(cmd.OutOrStdout(), sessions)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session report",
	Long: `Show a session with its summary, highlights, low points and quotes.

Older sessions that only carry legacy list strings are decoded the same way
as structured ones.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "session")
		if err != nil {
			return err
		}
		svc, _, err := connect()
		if err != nil {
			return err
		}
		view, err := svc.Session(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to load session %d: %w", id, err)
		}
		displaySessionView(cmd.OutOrStdout(), view)
		return nil
	},
}

var sessionEditCmd = &cobra.Command{
	Use:   "edit <session-id>",
	Short: "Rename a session or replace its summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "session")
		if err != nil {
			return err
		}
		var name, summary *string
		if cmd.Flags().Changed("name") {
			name = &sessionName
		}
		if cmd.Flags().Changed("summary") {
			summary = &sessionSummary
		}
		if name == nil && summary == nil {
			return fmt.Errorf("nothing to change: pass --name or --summary")
		}

		svc, _, err := connect()
		if err != nil {
			return err
		}
		view, err := svc.UpdateSession(cmd.Context(), id, name, summary)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Updated session %d: %s", view.ID, view.Name)))
		return nil
	},
}

var sessionRefineCmd = &cobra.Command{
	Use:   "refine <session-id>",
	Short: "Ask the backend to refine a session summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "session")
		if err != nil {
			return err
		}
		svc, _, err := connect()
		if err != nil {
			return err
		}
		var summary string
		err = internal.ShowProgress(cmd.Context(), "Refining summary", func() error {
			var refineErr error
			summary, refineErr = svc.RefineSummary(cmd.Context(), id)
			return refineErr
		})
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(w, groupStyle.Render("Summary"))
		_, _ = fmt.Fprintln(w, summaryStyle.Render(summary))
		return nil
	},
}

var sessionRegenerateCmd = &cobra.Command{
	Use:   "regenerate <session-id>",
	Short: "Reprocess a session's recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "session")
		if err != nil {
			return err
		}
		svc, _, err := connect()
		if err != nil {
			return err
		}
		status, err := svc.RegenerateSession(cmd.Context(), id)
		if err != nil {
			return err
		}
		return reportStarted(cmd, svc, id, status)
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "session")
		if err != nil {
			return err
		}
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		if !sessionYes && !confirm(cmd, fmt.Sprintf("Delete session %d?", id)) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("Cancelled"))
			return nil
		}
		if err := svc.DeleteSession(cmd.Context(), cfg.CampaignID, id); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Deleted session %d", id)))
		return nil
	},
}

var sessionImportTextCmd = &cobra.Command{
	Use:   "import-text <name>",
	Short: "Create a session from a transcript",
	Long: `Create a session from a plain text transcript read from --file, or from
standard input when --file is not given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}

		var content []byte
		if sessionFile != "" {
			content, err = os.ReadFile(sessionFile)
		} else {
			content, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("failed to read transcript: %w", err)
		}
		if len(content) == 0 {
			return fmt.Errorf("transcript is empty")
		}

		result, err := svc.ImportText(cmd.Context(), cid, args[0], string(content))
		if err != nil {
			return err
		}
		return reportStarted(cmd, svc, result.SessionID, result.Status)
	},
}

var sessionImportLocalCmd = &cobra.Command{
	Use:   "import-local <name> <server-path>...",
	Short: "Create a session from files on the backend host",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}
		result, err := svc.ImportLocal(cmd.Context(), cid, args[0], args[1:])
		if err != nil {
			return err
		}
		return reportImport(cmd, svc, result)
	},
}

var sessionUploadCmd = &cobra.Command{
	Use:   "upload <name> <audio-file>...",
	Short: "Create a session by uploading audio files",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}
		var result *api.ImportResult
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Uploading %d file(s)", len(args)-1), func() error {
			var uploadErr error
			result, uploadErr = svc.UploadSession(cmd.Context(), cid, args[0], args[1:])
			return uploadErr
		})
		if err != nil {
			return err
		}
		return reportImport(cmd, svc, result)
	},
}

var sessionReuploadCmd = &cobra.Command{
	Use:   "reupload <session-id> <audio-file>...",
	Short: "Replace the audio of a session and reprocess it",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "session")
		if err != nil {
			return err
		}
		svc, _, err := connect()
		if err != nil {
			return err
		}
		var result *api.ImportResult
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Uploading %d file(s)", len(args)-1), func() error {
			var uploadErr error
			result, uploadErr = svc.ReuploadSession(cmd.Context(), id, args[1:])
			return uploadErr
		})
		if err != nil {
			return err
		}
		return reportImport(cmd, svc, result)
	},
}

func reportImport(cmd *cobra.Command, svc *service.Service, result *api.ImportResult) error {
	if result.FileCount > 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render(fmt.Sprintf("Received %d file(s)", result.FileCount)))
	}
	return reportStarted(cmd, svc, result.SessionID, result.Status)
}

// reportStarted prints the session a background job runs for and, with
// --wait, follows it to the end
func reportStarted(cmd *cobra.Command, svc *service.Service, id int, status internal.ProcessingStatus) error {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "%s session %d is %s\n", successStyle.Render("✅"), id, renderStatus(status))
	if !sessionWait {
		_, _ = fmt.Fprintln(w, idStyle.Render(fmt.Sprintf("💡 Tip: Use `questlog session show %d` to check on it, or pass --wait", id)))
		return nil
	}
	return waitAndShow(cmd.Context(), w, svc, id)
}

func waitAndShow(ctx context.Context, w io.Writer, svc *service.Service, id int) error {
	last := internal.ProcessingStatus("")
	view, err := svc.WaitForSession(ctx, id, func(st internal.ProcessingStatus) {
		if st != last {
			internal.LogInfo("Session %d is %s", id, st)
			last = st
		}
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w)
	displaySessionView(w, view)
	return nil
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(
		sessionListCmd, sessionShowCmd, sessionEditCmd, sessionRefineCmd, sessionRegenerateCmd,
		sessionDeleteCmd, sessionImportTextCmd, sessionImportLocalCmd, sessionUploadCmd, sessionReuploadCmd,
	)

	sessionEditCmd.Flags().StringVar(&sessionName, "name", "", "New session name")
	sessionEditCmd.Flags().StringVar(&sessionSummary, "summary", "", "New session summary")
	sessionDeleteCmd.Flags().BoolVarP(&sessionYes, "yes", "y", false, "Delete without asking")
	sessionImportTextCmd.Flags().StringVar(&sessionFile, "file", "", "Transcript file (default standard input)")

	for _, c := range []*cobra.Command{sessionRegenerateCmd, sessionImportTextCmd, sessionImportLocalCmd, sessionUploadCmd, sessionReuploadCmd} {
		c.Flags().BoolVarP(&sessionWait, "wait", "w", false, "Wait for processing to finish and show the result")
	}
}
