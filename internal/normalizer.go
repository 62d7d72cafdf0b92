package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// DefaultMomentType is used when the backend leaves a moment untyped
const DefaultMomentType = "highlight"

// SessionView is a session with its artifacts resolved for display
type SessionView struct {
	ID           int               `json:"id" yaml:"id"`
	CampaignID   int               `json:"campaign_id" yaml:"campaign_id"`
	Name         string            `json:"name" yaml:"name"`
	CreatedAt    Timestamp         `json:"created_at" yaml:"created_at"`
	Status       ProcessingStatus  `json:"status" yaml:"status"`
	Summary      string            `json:"summary,omitempty" yaml:"summary,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Artifacts    ResolvedArtifacts `json:"artifacts" yaml:"artifacts"`
}

// PersonaView is a persona with its artifacts resolved for display
type PersonaView struct {
	ID          int               `json:"id" yaml:"id"`
	CampaignID  int               `json:"campaign_id" yaml:"campaign_id"`
	Name        string            `json:"name" yaml:"name"`
	Role        string            `json:"role" yaml:"role"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	PlayerName  string            `json:"player_name,omitempty" yaml:"player_name,omitempty"`
	Gender      string            `json:"gender,omitempty" yaml:"gender,omitempty"`
	Race        string            `json:"race,omitempty" yaml:"race,omitempty"`
	ClassName   string            `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	Level       int               `json:"level,omitempty" yaml:"level,omitempty"`
	Status      string            `json:"status,omitempty" yaml:"status,omitempty"`
	Faction     string            `json:"faction,omitempty" yaml:"faction,omitempty"`
	Alignment   string            `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	Summary     string            `json:"summary,omitempty" yaml:"summary,omitempty"`
	Aliases     []string          `json:"aliases" yaml:"aliases"`
	Artifacts   ResolvedArtifacts `json:"artifacts" yaml:"artifacts"`
}

// RoleGroups splits a roster the way the dashboard lists it
type RoleGroups struct {
	PCs         []PersonaView `json:"pcs" yaml:"pcs"`
	NPCs        []PersonaView `json:"npcs" yaml:"npcs"`
	Adversaries []PersonaView `json:"adversaries" yaml:"adversaries"`
	Others      []PersonaView `json:"others,omitempty" yaml:"others,omitempty"`
}

// CampaignSnapshot is everything a campaign owns, normalized
type CampaignSnapshot struct {
	Campaign   Campaign      `json:"campaign" yaml:"campaign"`
	Sessions   []SessionView `json:"sessions" yaml:"sessions"`
	Personas   []PersonaView `json:"personas" yaml:"personas"`
	Highlights []Artifact    `json:"highlights" yaml:"highlights"`
	LowPoints  []Artifact    `json:"low_points" yaml:"low_points"`
	Quotes     []Artifact    `json:"quotes" yaml:"quotes"`
	Moments    []Moment      `json:"moments" yaml:"moments"`
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at"`
}

// Normalizer converts wire entities into display-ready views. It is the
// only place where dual-representation fields are interpreted.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a new Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NormalizeSession resolves a session's artifacts
func (n *Normalizer) NormalizeSession(s *Session) (*SessionView, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}
	return &SessionView{
		ID:           s.ID,
		CampaignID:   s.CampaignID,
		Name:         s.Name,
		CreatedAt:    s.CreatedAt,
		Status:       s.Status,
		Summary:      lo.FromPtr(s.Summary),
		ErrorMessage: lo.FromPtr(s.ErrorMessage),
		Artifacts:    ResolveSession(s),
	}, nil
}

// NormalizePersona resolves a persona's artifacts and aliases
func (n *Normalizer) NormalizePersona(p *Persona) (*PersonaView, error) {
	if p == nil {
		return nil, fmt.Errorf("persona is nil")
	}
	aliases := []string(p.Aliases)
	if aliases == nil {
		aliases = []string{}
	}
	return &PersonaView{
		ID:          p.ID,
		CampaignID:  p.CampaignID,
		Name:        p.Name,
		Role:        p.Role,
		Description: p.Description,
		PlayerName:  lo.FromPtr(p.PlayerName),
		Gender:      lo.FromPtr(p.Gender),
		Race:        lo.FromPtr(p.Race),
		ClassName:   lo.FromPtr(p.ClassName),
		Level:       lo.FromPtr(p.Level),
		Status:      p.Status,
		Faction:     lo.FromPtr(p.Faction),
		Alignment:   lo.FromPtr(p.Alignment),
		Summary:     lo.FromPtr(p.Summary),
		Aliases:     aliases,
		Artifacts:   ResolvePersona(p),
	}, nil
}

// NormalizeSessions resolves a list of sessions, skipping none
func (n *Normalizer) NormalizeSessions(sessions []Session) []SessionView {
	out := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		view, _ := n.NormalizeSession(&sessions[i])
		out = append(out, *view)
	}
	return out
}

// NormalizePersonas resolves a list of personas
func (n *Normalizer) NormalizePersonas(personas []Persona) []PersonaView {
	out := make([]PersonaView, 0, len(personas))
	for i := range personas {
		view, _ := n.NormalizePersona(&personas[i])
		out = append(out, *view)
	}
	return out
}

// NormalizeMoments fills in the default moment type
func (n *Normalizer) NormalizeMoments(moments []Moment) []Moment {
	return lo.Map(moments, func(m Moment, _ int) Moment {
		if m.Type == "" {
			m.Type = DefaultMomentType
		}
		return m
	})
}

// NormalizeSnapshot assembles a campaign snapshot from fetched lists
func (n *Normalizer) NormalizeSnapshot(c Campaign, sessions []Session, personas []Persona, highlights []Highlight, quotes []Quote, moments []Moment) *CampaignSnapshot {
	high, low := ResolveHighlights(lo.Ternary(highlights == nil, []Highlight{}, highlights), nil, nil)
	return &CampaignSnapshot{
		Campaign:   c,
		Sessions:   n.NormalizeSessions(sessions),
		Personas:   n.NormalizePersonas(personas),
		Highlights: high,
		LowPoints:  low,
		Quotes:     ResolveQuotes(lo.Ternary(quotes == nil, []Quote{}, quotes), nil),
		Moments:    n.NormalizeMoments(moments),
		ExportedAt: n.now().UTC(),
	}
}

// GroupByRole splits personas into PCs, NPCs and adversaries. DMs and
// unknown roles land in Others.
func GroupByRole(personas []PersonaView) RoleGroups {
	groups := RoleGroups{
		PCs:         []PersonaView{},
		NPCs:        []PersonaView{},
		Adversaries: []PersonaView{},
	}
	for _, p := range personas {
		switch p.Role {
		case RolePC:
			groups.PCs = append(groups.PCs, p)
		case RoleNPC:
			groups.NPCs = append(groups.NPCs, p)
		case RoleMonster, RoleVillain:
			groups.Adversaries = append(groups.Adversaries, p)
		default:
			groups.Others = append(groups.Others, p)
		}
	}
	return groups
}

// QuoteBook collects the quotes of every persona. Quotes without a speaker
// are labeled with the persona's name and carry its id.
func QuoteBook(personas []PersonaView) []Artifact {
	out := make([]Artifact, 0)
	for _, p := range personas {
		personaID := p.ID
		for _, q := range p.Artifacts.Quotes {
			if q.Label == "" {
				q.Label = p.Name
			}
			if q.PersonaID == nil {
				q.PersonaID = &personaID
			}
			out = append(out, q)
		}
	}
	return out
}

// FilterArtifacts keeps artifacts whose label or text contains query,
// case-insensitively. An empty query keeps everything.
func FilterArtifacts(artifacts []Artifact, query string) []Artifact {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return artifacts
	}
	return lo.Filter(artifacts, func(a Artifact, _ int) bool {
		return strings.Contains(strings.ToLower(a.Text), query) ||
			strings.Contains(strings.ToLower(a.Label), query)
	})
}
