package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/quest-log/internal"
)

// JSONLExporter exports one record per line. Every record carries a
// "record" field naming what it is.
type JSONLExporter struct{}

// ExportSession writes the session header followed by one line per artifact
func (e *JSONLExporter) ExportSession(session *internal.SessionView, w io.Writer) error {
	enc := json.NewEncoder(w)

	if err := enc.Encode(sessionRecord(session)); err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return encodeArtifacts(enc, session.Artifacts)
}

// ExportSnapshot writes the campaign, then its sessions, personas,
// artifacts and moments, one line each
func (e *JSONLExporter) ExportSnapshot(snapshot *internal.CampaignSnapshot, w io.Writer) error {
	enc := json.NewEncoder(w)

	campaign := map[string]interface{}{
		"record":      "campaign",
		"id":          snapshot.Campaign.ID,
		"name":        snapshot.Campaign.Name,
		"description": snapshot.Campaign.Description,
		"exported_at": snapshot.ExportedAt,
	}
	if snapshot.Campaign.Summary != nil {
		campaign["summary"] = *snapshot.Campaign.Summary
	}
	if err := enc.Encode(campaign); err != nil {
		return fmt.Errorf("failed to encode campaign: %w", err)
	}

	for i := range snapshot.Sessions {
		if err := enc.Encode(sessionRecord(&snapshot.Sessions[i])); err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
	}

	for _, p := range snapshot.Personas {
		obj := map[string]interface{}{
			"record":  "persona",
			"id":      p.ID,
			"name":    p.Name,
			"role":    p.Role,
			"aliases": p.Aliases,
		}
		if p.Description != "" {
			obj["description"] = p.Description
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode persona: %w", err)
		}
	}

	err := encodeArtifacts(enc, internal.ResolvedArtifacts{
		High:   snapshot.Highlights,
		Low:    snapshot.LowPoints,
		Quotes: snapshot.Quotes,
	})
	if err != nil {
		return err
	}

	for _, m := range snapshot.Moments {
		obj := map[string]interface{}{
			"record":     "moment",
			"id":         m.ID,
			"session_id": m.SessionID,
			"title":      m.Title,
			"type":       m.Type,
		}
		if m.Description != "" {
			obj["description"] = m.Description
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode moment: %w", err)
		}
	}

	return nil
}

func sessionRecord(s *internal.SessionView) map[string]interface{} {
	obj := map[string]interface{}{
		"record":      "session",
		"id":          s.ID,
		"campaign_id": s.CampaignID,
		"name":        s.Name,
		"status":      s.Status,
	}

	// Add optional fields if present
	if !s.CreatedAt.IsZero() {
		obj["created_at"] = s.CreatedAt
	}
	if s.Summary != "" {
		obj["summary"] = s.Summary
	}
	if s.ErrorMessage != "" {
		obj["error_message"] = s.ErrorMessage
	}
	return obj
}

func encodeArtifacts(enc *json.Encoder, artifacts internal.ResolvedArtifacts) error {
	for _, group := range [][]internal.Artifact{artifacts.High, artifacts.Low, artifacts.Quotes} {
		for _, a := range group {
			obj := map[string]interface{}{
				"record": a.Kind.String(),
				"text":   a.Text,
			}
			if a.ID != 0 {
				obj["id"] = a.ID
			}
			if a.Label != "" {
				obj["label"] = a.Label
			}
			if a.Legacy {
				obj["legacy"] = true
			}
			if a.SessionID != nil {
				obj["session_id"] = *a.SessionID
			}
			if a.PersonaID != nil {
				obj["persona_id"] = *a.PersonaID
			}

			// Encode to single line
			if err := enc.Encode(obj); err != nil {
				return fmt.Errorf("failed to encode %s: %w", a.Kind, err)
			}
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
