package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/quest-log/internal"
)

// JSONExporter exports in JSON format (pretty-printed)
type JSONExporter struct{}

// ExportSession writes a session report as one JSON document
func (e *JSONExporter) ExportSession(session *internal.SessionView, w io.Writer) error {
	return e.encode(session, w)
}

// ExportSnapshot writes a campaign snapshot as one JSON document
func (e *JSONExporter) ExportSnapshot(snapshot *internal.CampaignSnapshot, w io.Writer) error {
	return e.encode(snapshot, w)
}

func (e *JSONExporter) encode(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
