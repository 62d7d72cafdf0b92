package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Campaign is the top-level container for sessions, personas and moments
type Campaign struct {
	ID          int       `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Summary     *string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	CreatedAt   Timestamp `json:"created_at" yaml:"created_at"`
}

// CampaignDashboard is a campaign together with everything it owns
type CampaignDashboard struct {
	Campaign
	Sessions []Session `json:"sessions" yaml:"sessions"`
	Personas []Persona `json:"personas" yaml:"personas"`
	Moments  []Moment  `json:"moments" yaml:"moments"`
}

// Persona roles as the backend spells them
const (
	RolePC      = "PC"
	RoleNPC     = "NPC"
	RoleMonster = "Monster"
	RoleVillain = "Villain"
	RoleDM      = "DM"
)

// Persona is a character tracked within a campaign
type Persona struct {
	ID               int     `json:"id"`
	CampaignID       int     `json:"campaign_id"`
	SessionID        *int    `json:"session_id,omitempty"`
	Name             string  `json:"name"`
	Role             string  `json:"role"`
	Description      string  `json:"description"`
	VoiceDescription *string `json:"voice_description,omitempty"`
	Summary          *string `json:"summary,omitempty"`
	PlayerName       *string `json:"player_name,omitempty"`
	Gender           *string `json:"gender,omitempty"`
	Race             *string `json:"race,omitempty"`
	ClassName        *string `json:"class_name,omitempty"`
	Level            *int    `json:"level,omitempty"`
	Status           string  `json:"status,omitempty"`
	Faction          *string `json:"faction,omitempty"`
	Alignment        *string `json:"alignment,omitempty"`

	Aliases AliasList `json:"aliases"`

	Highlights      ArtifactField[Highlight] `json:"highlights"`
	HighlightsList  []Highlight              `json:"highlights_list,omitempty"`
	LowPoints       *string                  `json:"low_points,omitempty"`
	MemorableQuotes *string                  `json:"memorable_quotes,omitempty"`
	Quotes          []Quote                  `json:"quotes,omitempty"`
	QuotesList      []Quote                  `json:"quotes_list,omitempty"`
}

// IsAdversary reports whether the persona belongs in the monsters and villains group
func (p *Persona) IsAdversary() bool {
	return p.Role == RoleMonster || p.Role == RoleVillain
}

// HighlightType partitions highlights into exactly two buckets
type HighlightType string

const (
	HighlightHigh HighlightType = "high"
	HighlightLow  HighlightType = "low"
)

// UnmarshalJSON maps anything that is not "low" to HighlightHigh
func (t *HighlightType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseHighlightType(s)
	return nil
}

// ParseHighlightType maps anything that is not "low" to HighlightHigh
func ParseHighlightType(s string) HighlightType {
	if s == string(HighlightLow) {
		return HighlightLow
	}
	return HighlightHigh
}

// Highlight is a tagged positive or negative narrative event
type Highlight struct {
	ID         int           `json:"id"`
	Text       string        `json:"text"`
	Name       *string       `json:"name,omitempty"`
	Type       HighlightType `json:"type"`
	SessionID  int           `json:"session_id"`
	PersonaID  *int          `json:"persona_id,omitempty"`
	CampaignID int           `json:"campaign_id"`
}

// Quote is a memorable line attributed to a session and optionally a persona
type Quote struct {
	ID          int     `json:"id"`
	Text        string  `json:"text"`
	SpeakerName *string `json:"speaker_name,omitempty"`
	SessionID   int     `json:"session_id"`
	PersonaID   *int    `json:"persona_id,omitempty"`
	CampaignID  int     `json:"campaign_id"`
}

// Moment is a notable scene tagged with a free-form category
type Moment struct {
	ID          int     `json:"id"`
	SessionID   int     `json:"session_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        string  `json:"type,omitempty"`
	SessionName *string `json:"session_name,omitempty"`
}

// ArtifactField holds a value the backend sends either as a legacy
// delimited string or as a structured array. An empty array is structured.
type ArtifactField[T any] struct {
	Structured []T
	Legacy     *string
	structured bool
}

// StructuredField builds a field carrying records
func StructuredField[T any](items []T) ArtifactField[T] {
	if items == nil {
		items = []T{}
	}
	return ArtifactField[T]{Structured: items, structured: true}
}

// LegacyField builds a field carrying a legacy string
func LegacyField[T any](s string) ArtifactField[T] {
	return ArtifactField[T]{Legacy: &s}
}

// IsStructured reports whether the backend sent an array, even an empty one
func (f ArtifactField[T]) IsStructured() bool {
	return f.structured
}

// UnmarshalJSON accepts null, a JSON string, or a JSON array
func (f *ArtifactField[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = ArtifactField[T]{}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.Legacy = &s
		return nil
	case data[0] == '[':
		items := make([]T, 0)
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		f.Structured = items
		f.structured = true
		return nil
	default:
		return fmt.Errorf("artifact field: unexpected JSON %q", truncate(string(data), 40))
	}
}

// MarshalJSON writes the representation the field was built with
func (f ArtifactField[T]) MarshalJSON() ([]byte, error) {
	switch {
	case f.structured:
		items := f.Structured
		if items == nil {
			items = []T{}
		}
		return json.Marshal(items)
	case f.Legacy != nil:
		return json.Marshal(*f.Legacy)
	default:
		return []byte("null"), nil
	}
}

// AliasList is the persona's alias set. Some endpoints send it as a JSON
// array, others as a string holding a serialized list.
type AliasList []string

// UnmarshalJSON accepts null, an array of strings, or a serialized list string
func (a *AliasList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = NormalizeAliases(ParseListString(s))
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return &ParseError{Source: "persona", Key: "aliases", Err: err}
	}
	*a = NormalizeAliases(items)
	return nil
}

// timestampLayouts are tried in order. The backend sends naive ISO-8601
// datetimes with optional microseconds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a backend datetime. Naive values are read as UTC.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses any layout the backend is known to send
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON accepts null, RFC 3339 and naive ISO-8601 strings
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON writes RFC 3339, or null for the zero time
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// MarshalYAML writes RFC 3339, or null for the zero time
func (t Timestamp) MarshalYAML() (interface{}, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Format(time.RFC3339), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
