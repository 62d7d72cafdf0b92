package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
)

func decodeLines(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var obj map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Fatalf("Line is not valid JSON: %q: %v", scanner.Text(), err)
		}
		out = append(out, obj)
	}
	return out
}

func records(lines []map[string]interface{}) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l["record"].(string))
	}
	return out
}

func TestJSONLExporter_ExportSession(t *testing.T) {
	tests := []struct {
		name        string
		legacy      bool
		wantRecords []string
	}{
		{
			name:        "structured session",
			wantRecords: []string{"session", "highlight", "low_point", "quote"},
		},
		{
			name:        "legacy session",
			legacy:      true,
			wantRecords: []string{"session", "highlight", "highlight", "low_point", "quote", "quote"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := testSessionView(t)
			if tt.legacy {
				view = testLegacySessionView(t)
			}

			var buf bytes.Buffer
			if err := (&JSONLExporter{}).ExportSession(view, &buf); err != nil {
				t.Fatalf("JSONLExporter.ExportSession() error = %v", err)
			}

			lines := decodeLines(t, buf.Bytes())
			got := records(lines)
			if len(got) != len(tt.wantRecords) {
				t.Fatalf("records = %v, want %v", got, tt.wantRecords)
			}
			for i := range got {
				if got[i] != tt.wantRecords[i] {
					t.Errorf("record %d = %q, want %q", i, got[i], tt.wantRecords[i])
				}
			}
		})
	}
}

func TestJSONLExporter_LegacyFields(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).ExportSession(testLegacySessionView(t), &buf); err != nil {
		t.Fatal(err)
	}

	lines := decodeLines(t, buf.Bytes())
	first := lines[1]
	if first["label"] != "Victory" || first["text"] != "The bridge held" {
		t.Errorf("first highlight = %v", first)
	}
	if first["legacy"] != true {
		t.Errorf("legacy flag missing: %v", first)
	}
	if _, ok := first["id"]; ok {
		t.Errorf("legacy artifacts have no id: %v", first)
	}
}

func TestJSONLExporter_ExportSnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).ExportSnapshot(testSnapshot(), &buf); err != nil {
		t.Fatalf("JSONLExporter.ExportSnapshot() error = %v", err)
	}

	lines := decodeLines(t, buf.Bytes())
	counts := map[string]int{}
	for _, r := range records(lines) {
		counts[r]++
	}
	want := map[string]int{"campaign": 1, "session": 2, "persona": 2, "highlight": 1, "low_point": 1, "quote": 1, "moment": 1}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("%s records = %d, want %d", k, counts[k], v)
		}
	}
	if lines[0]["record"] != "campaign" {
		t.Errorf("first record = %v, want campaign", lines[0]["record"])
	}

	last := lines[len(lines)-1]
	if last["type"] != "highlight" {
		t.Errorf("untyped moment should carry the default type, got %v", last["type"])
	}
}

func TestJSONLExporter_Extension(t *testing.T) {
	exporter := &JSONLExporter{}
	if got := exporter.Extension(); got != "jsonl" {
		t.Errorf("JSONLExporter.Extension() = %v, want jsonl", got)
	}
}
