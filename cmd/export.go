package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/export"
	"github.com/spf13/cobra"
)

var (
	format          string
	outputDir       string
	exportSessionID int
	exportStdout    bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a session report or a campaign snapshot to file",
	Long: `Export a campaign snapshot or a single session report to one of several
formats (` + strings.Join(export.Formats(), ", ") + `).

Without --session the whole campaign is exported: sessions, personas,
highlights, quotes and moments. With --session only that session's report
is written. Use 'questlog campaign list' to see available campaigns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}
		svc, cfg, err := connect()
		if err != nil {
			return err
		}

		var (
			name  string
			load  internal.ProgressStep
			write func(io.Writer) error
		)
		ctx := cmd.Context()
		if exportSessionID > 0 {
			name = fmt.Sprintf("session_%d", exportSessionID)
			var view *internal.SessionView
			load = internal.ProgressStep{
				Message: fmt.Sprintf("Loading session %d", exportSessionID),
				Fn: func() error {
					var err error
					view, err = svc.Session(ctx, exportSessionID)
					return err
				},
			}
			write = func(w io.Writer) error { return exporter.ExportSession(view, w) }
		} else {
			cid, err := requireCampaign(cfg)
			if err != nil {
				return err
			}
			name = fmt.Sprintf("campaign_%d", cid)
			var snapshot *internal.CampaignSnapshot
			load = internal.ProgressStep{
				Message: fmt.Sprintf("Loading campaign %d", cid),
				Fn: func() error {
					var err error
					snapshot, err = svc.Snapshot(ctx, cid)
					return err
				},
			}
			write = func(w io.Writer) error { return exporter.ExportSnapshot(snapshot, w) }
		}

		if exportStdout {
			if err := internal.ShowProgress(ctx, load.Message, load.Fn); err != nil {
				return fmt.Errorf("%s: %w", load.Message, err)
			}
			if err := write(cmd.OutOrStdout()); err != nil {
				return &internal.ExportError{Format: format, Path: "stdout", Err: err}
			}
			return nil
		}

		filename := name + "." + exporter.Extension()
		var path string
		err = internal.ShowProgressWithSteps(ctx, []internal.ProgressStep{
			load,
			{
				Message: "Writing " + filepath.Join(outputDir, filename),
				Fn: func() error {
					var err error
					if path, err = writeExport(outputDir, filename, write); err != nil {
						return &internal.ExportError{Format: format, Path: path, Err: err}
					}
					return nil
				},
			},
		})
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✅ Export complete: "+path))
		return nil
	},
}

// writeExport creates dir/filename and fills it with write. A failed export
// leaves no partial file behind.
func writeExport(dir, filename string, write func(io.Writer) error) (string, error) {
	path := filepath.Join(dir, filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return path, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return path, err
	}
	if err := write(file); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return path, err
	}
	if err := file.Close(); err != nil {
		return path, err
	}
	return path, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format ("+strings.Join(export.Formats(), ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().IntVar(&exportSessionID, "session", 0, "Export a single session by ID")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write to standard output instead of a file")
}
