package export

import (
	"io"

	"github.com/iksnae/quest-log/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports in YAML format
type YAMLExporter struct{}

// ExportSession writes a session report as YAML
func (e *YAMLExporter) ExportSession(session *internal.SessionView, w io.Writer) error {
	return e.encode(session, w)
}

// ExportSnapshot writes a campaign snapshot as YAML
func (e *YAMLExporter) ExportSnapshot(snapshot *internal.CampaignSnapshot, w io.Writer) error {
	return e.encode(snapshot, w)
}

func (e *YAMLExporter) encode(v any, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(v)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
