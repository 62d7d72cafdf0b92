package internal

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ArtifactKind discriminates the Artifact union. It is set when the
// artifact is built and never inferred from the payload shape.
type ArtifactKind int

const (
	KindHighlight ArtifactKind = iota + 1
	KindLowPoint
	KindQuote
)

func (k ArtifactKind) String() string {
	switch k {
	case KindHighlight:
		return "highlight"
	case KindLowPoint:
		return "low_point"
	case KindQuote:
		return "quote"
	default:
		return "unknown"
	}
}

// Artifact is a display-ready highlight, low point or quote
type Artifact struct {
	Kind ArtifactKind `json:"kind" yaml:"kind"`
	// ID is zero for artifacts decoded from a legacy string
	ID        int    `json:"id,omitempty" yaml:"id,omitempty"`
	Legacy    bool   `json:"legacy,omitempty" yaml:"legacy,omitempty"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
	Text      string `json:"text" yaml:"text"`
	SessionID *int   `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	PersonaID *int   `json:"persona_id,omitempty" yaml:"persona_id,omitempty"`
}

// MarshalText lets the kind render by name in JSON and YAML
func (k ArtifactKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText
func (k *ArtifactKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "highlight":
		*k = KindHighlight
	case "low_point":
		*k = KindLowPoint
	case "quote":
		*k = KindQuote
	default:
		return fmt.Errorf("unknown artifact kind %q", string(text))
	}
	return nil
}

// IsQuote reports whether the artifact came from a quote source
func (a Artifact) IsQuote() bool {
	return a.Kind == KindQuote
}

// ResolvedArtifacts is the single shape presentation code consumes
type ResolvedArtifacts struct {
	High   []Artifact `json:"highlights" yaml:"highlights"`
	Low    []Artifact `json:"low_points" yaml:"low_points"`
	Quotes []Artifact `json:"quotes" yaml:"quotes"`
}

// HighlightArtifact wraps a structured highlight, bucketed by its type
func HighlightArtifact(h Highlight) Artifact {
	kind := KindHighlight
	if h.Type == HighlightLow {
		kind = KindLowPoint
	}
	return Artifact{
		Kind:      kind,
		ID:        h.ID,
		Label:     lo.FromPtr(h.Name),
		Text:      h.Text,
		SessionID: nonZero(h.SessionID),
		PersonaID: h.PersonaID,
	}
}

// QuoteArtifact wraps a structured quote
func QuoteArtifact(q Quote) Artifact {
	return Artifact{
		Kind:      KindQuote,
		ID:        q.ID,
		Label:     lo.FromPtr(q.SpeakerName),
		Text:      q.Text,
		SessionID: nonZero(q.SessionID),
		PersonaID: q.PersonaID,
	}
}

// LegacyArtifacts decodes a legacy string into artifacts of one kind. A
// leading "[tag]" on an item becomes the label. Blank items are dropped.
func LegacyArtifacts(kind ArtifactKind, legacy *string) []Artifact {
	if legacy == nil {
		return []Artifact{}
	}
	out := make([]Artifact, 0)
	for _, item := range ParseListString(*legacy) {
		if strings.TrimSpace(item) == "" {
			continue
		}
		label, text, _ := SplitTag(item)
		out = append(out, Artifact{
			Kind:   kind,
			Legacy: true,
			Label:  label,
			Text:   strings.TrimSpace(text),
		})
	}
	return out
}

// ResolveHighlights picks one source for highlights and low points. A
// non-nil structured slice wins even when empty; otherwise the two legacy
// strings are decoded, already partitioned by the backend.
func ResolveHighlights(structured []Highlight, legacyHigh, legacyLow *string) (high, low []Artifact) {
	if structured != nil {
		high = make([]Artifact, 0)
		low = make([]Artifact, 0)
		for _, h := range structured {
			a := HighlightArtifact(h)
			if a.Kind == KindLowPoint {
				low = append(low, a)
			} else {
				high = append(high, a)
			}
		}
		return high, low
	}
	return LegacyArtifacts(KindHighlight, legacyHigh), LegacyArtifacts(KindLowPoint, legacyLow)
}

// ResolveQuotes picks one source for quotes, structured first
func ResolveQuotes(structured []Quote, legacy *string) []Artifact {
	if structured != nil {
		return lo.Map(structured, func(q Quote, _ int) Artifact {
			return QuoteArtifact(q)
		})
	}
	return LegacyArtifacts(KindQuote, legacy)
}

// ResolveSession normalizes the artifacts of a session
func ResolveSession(s *Session) ResolvedArtifacts {
	var structured []Highlight
	if s.Highlights.IsStructured() {
		structured = s.Highlights.Structured
	}
	high, low := ResolveHighlights(structured, s.Highlights.Legacy, s.LowPoints)
	return ResolvedArtifacts{
		High:   high,
		Low:    low,
		Quotes: ResolveQuotes(s.Quotes, s.MemorableQuotes),
	}
}

// ResolvePersona normalizes the artifacts of a persona. highlights_list
// beats a highlights array which beats the legacy highlights string; the
// same order applies to quotes_list, quotes and memorable_quotes.
func ResolvePersona(p *Persona) ResolvedArtifacts {
	structured := p.HighlightsList
	if structured == nil && p.Highlights.IsStructured() {
		structured = p.Highlights.Structured
	}
	high, low := ResolveHighlights(structured, p.Highlights.Legacy, p.LowPoints)

	quotes := p.QuotesList
	if quotes == nil {
		quotes = p.Quotes
	}
	return ResolvedArtifacts{
		High:   high,
		Low:    low,
		Quotes: ResolveQuotes(quotes, p.MemorableQuotes),
	}
}

func nonZero(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}
