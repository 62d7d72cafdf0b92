package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/quest-log/internal"
)

func TestJSONExporter_ExportSession(t *testing.T) {
	var buf bytes.Buffer
	exporter := &JSONExporter{}

	if err := exporter.ExportSession(testSessionView(t), &buf); err != nil {
		t.Fatalf("JSONExporter.ExportSession() error = %v", err)
	}

	var decoded internal.SessionView
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Name != "Session 1: The Lighthouse" {
		t.Errorf("Name = %q", decoded.Name)
	}
	if len(decoded.Artifacts.High) != 1 || decoded.Artifacts.High[0].Kind != internal.KindHighlight {
		t.Errorf("High = %+v", decoded.Artifacts.High)
	}
	if !decoded.CreatedAt.Equal(internal.CreateTestSession(1, 1).CreatedAt.Time) {
		t.Errorf("CreatedAt = %v", decoded.CreatedAt)
	}

	// Pretty-printed
	if !strings.Contains(buf.String(), "\n  \"id\": 1") {
		t.Errorf("Output should be indented, got:\n%s", buf.String())
	}
}

func TestJSONExporter_ExportSnapshot(t *testing.T) {
	var buf bytes.Buffer
	exporter := &JSONExporter{}

	if err := exporter.ExportSnapshot(testSnapshot(), &buf); err != nil {
		t.Fatalf("JSONExporter.ExportSnapshot() error = %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	for _, key := range []string{"campaign", "sessions", "personas", "highlights", "low_points", "quotes", "moments", "exported_at"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Output should contain key %q", key)
		}
	}
	if !strings.Contains(buf.String(), `"kind": "low_point"`) {
		t.Errorf("Artifact kinds should render by name, got:\n%s", buf.String())
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
