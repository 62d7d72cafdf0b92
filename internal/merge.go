package internal

import (
	"context"
	"errors"

	"github.com/samber/lo"
)

// ErrMergeModeInactive is returned when a persona is selected for merging
// while merge mode is off
var ErrMergeModeInactive = errors.New("merge mode is not active")

// MergeState is the selection state of a MergeSelector
type MergeState int

const (
	MergeIdle MergeState = iota
	MergeSourceSelected
)

func (s MergeState) String() string {
	if s == MergeSourceSelected {
		return "source_selected"
	}
	return "idle"
}

// Merger performs the destructive backend merge of source into target and
// returns the updated target
type Merger interface {
	MergePersonas(ctx context.Context, targetID, sourceID int) (*Persona, error)
}

// ConfirmFunc asks the user whether source should be merged into target
type ConfirmFunc func(source, target Persona) bool

// MergeResult describes what a selection did
type MergeResult struct {
	State  MergeState
	Merged bool
	Source *Persona
	Target *Persona
}

// Roster is the local persona collection a merge reconciles
type Roster struct {
	personas []Persona
}

// NewRoster copies personas into a new roster
func NewRoster(personas []Persona) *Roster {
	return &Roster{personas: append([]Persona(nil), personas...)}
}

// Personas returns a copy of the roster contents
func (r *Roster) Personas() []Persona {
	return append([]Persona(nil), r.personas...)
}

// Get looks up a persona by id
func (r *Roster) Get(id int) (Persona, bool) {
	return lo.Find(r.personas, func(p Persona) bool { return p.ID == id })
}

// Remove drops the persona with the given id
func (r *Roster) Remove(id int) {
	r.personas = lo.Reject(r.personas, func(p Persona, _ int) bool { return p.ID == id })
}

// Replace swaps in an updated persona, keeping its position
func (r *Roster) Replace(p Persona) {
	for i := range r.personas {
		if r.personas[i].ID == p.ID {
			r.personas[i] = p
			return
		}
	}
	r.personas = append(r.personas, p)
}

// MergeSelector is the two-step pick-source, pick-target protocol
type MergeSelector struct {
	merger  Merger
	confirm ConfirmFunc
	roster  *Roster

	active bool
	state  MergeState
	source *Persona
}

// NewMergeSelector builds a selector. A nil confirm accepts every merge.
func NewMergeSelector(merger Merger, confirm ConfirmFunc, roster *Roster) *MergeSelector {
	if confirm == nil {
		confirm = func(Persona, Persona) bool { return true }
	}
	if roster == nil {
		roster = NewRoster(nil)
	}
	return &MergeSelector{merger: merger, confirm: confirm, roster: roster}
}

// Enter turns merge mode on and resets the selection
func (m *MergeSelector) Enter() {
	m.active = true
	m.reset()
}

// Exit turns merge mode off and resets the selection
func (m *MergeSelector) Exit() {
	m.active = false
	m.reset()
}

// Active reports whether merge mode is on
func (m *MergeSelector) Active() bool {
	return m.active
}

// State returns the current selection state
func (m *MergeSelector) State() MergeState {
	return m.state
}

// Source returns the selected source persona, if any
func (m *MergeSelector) Source() (Persona, bool) {
	if m.source == nil {
		return Persona{}, false
	}
	return *m.source, true
}

// Roster returns the collection the selector reconciles
func (m *MergeSelector) Roster() *Roster {
	return m.roster
}

// Select advances the state machine with a picked persona. Picking the
// selected source again deselects it. Picking a different persona asks for
// confirmation and, once confirmed, merges the source into it.
func (m *MergeSelector) Select(ctx context.Context, p Persona) (MergeResult, error) {
	if !m.active {
		return MergeResult{State: m.state}, ErrMergeModeInactive
	}

	if m.state == MergeIdle {
		picked := p
		m.source = &picked
		m.state = MergeSourceSelected
		return MergeResult{State: m.state, Source: m.source}, nil
	}

	source := *m.source
	if source.ID == p.ID {
		m.reset()
		return MergeResult{State: m.state}, nil
	}

	if !m.confirm(source, p) {
		return MergeResult{State: m.state, Source: m.source}, nil
	}

	target, err := m.merger.MergePersonas(ctx, p.ID, source.ID)
	m.reset()
	if err != nil {
		LogWarn("Merge of persona %d into %d failed: %v", source.ID, p.ID, err)
		return MergeResult{State: m.state}, &MergeError{SourceID: source.ID, TargetID: p.ID, Err: err}
	}
	if target == nil {
		target = &p
	}

	m.roster.Remove(source.ID)
	m.roster.Replace(*target)
	LogInfo("Merged persona %d (%s) into %d (%s)", source.ID, source.Name, target.ID, target.Name)

	return MergeResult{State: m.state, Merged: true, Source: &source, Target: target}, nil
}

func (m *MergeSelector) reset() {
	m.state = MergeIdle
	m.source = nil
}
