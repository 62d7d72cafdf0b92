package export

import (
	"fmt"
	"io"

	"github.com/iksnae/quest-log/internal"
)

// Exporter writes session reports and campaign snapshots in one format
type Exporter interface {
	ExportSession(session *internal.SessionView, w io.Writer) error
	ExportSnapshot(snapshot *internal.CampaignSnapshot, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "sqlite", "db":
		return &SQLiteExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json, sqlite)", format)
	}
}

// Formats lists the names NewExporter accepts, one per exporter
func Formats() []string {
	return []string{"json", "jsonl", "md", "yaml", "sqlite"}
}
