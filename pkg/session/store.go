// Package session stores live wizard sessions server-side: step fields,
// the line item grid, and resume hints, keyed by session ID.
package session

import (
	"context"
	"errors"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
)

// ErrSessionNotFound indicates no live session exists for the given ID.
var ErrSessionNotFound = errors.New("wizard session not found")

// IsSessionNotFound checks if an error indicates a missing session.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// State bundles everything the wizard holds in memory for one session.
// Dirty tracks sections edited since their last successful save so a
// client can warn before navigating away.
type State struct {
	Session   models.WizardSession                `json:"session"`
	Fields    map[models.StepID]map[string]string `json:"fields,omitempty"`
	Items     []models.LineItem                   `json:"items,omitempty"`
	Assignees []models.Assignee                   `json:"assignees,omitempty"`
	Documents []models.Document                   `json:"documents,omitempty"`
	Dirty     map[models.SectionName]bool         `json:"dirty,omitempty"`
}

// NewState wraps a fresh session.
func NewState(session *models.WizardSession) *State {
	return &State{
		Session: *session,
		Fields:  make(map[models.StepID]map[string]string),
		Dirty:   make(map[models.SectionName]bool),
	}
}

// StepFields returns the field map of one step, creating it on demand.
func (s *State) StepFields(step models.StepID) map[string]string {
	if s.Fields == nil {
		s.Fields = make(map[models.StepID]map[string]string)
	}

	fields, ok := s.Fields[step]
	if !ok {
		fields = make(map[string]string)
		s.Fields[step] = fields
	}

	return fields
}

// MarkDirty flags a section as edited since its last save.
func (s *State) MarkDirty(section models.SectionName) {
	if s.Dirty == nil {
		s.Dirty = make(map[models.SectionName]bool)
	}

	s.Dirty[section] = true
}

// MarkSaved clears a section's dirty flag.
func (s *State) MarkSaved(section models.SectionName) {
	delete(s.Dirty, section)
}

// Store persists wizard session state between requests.
type Store interface {
	Save(ctx context.Context, state *State) error
	Get(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error
}
