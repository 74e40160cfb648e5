// Package cascade drives chains of dependent selects (vendor → core
// business → sub core business → contract): each field's options are a
// function of its parent's value, a change clears everything downstream,
// and stale fetch responses are discarded by token so the last selection
// always wins.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrUnknownField indicates an index outside the chain.
	ErrUnknownField = errors.New("unknown chain field")

	// ErrFieldDisabled indicates a change to a field whose parent has not
	// been selected yet.
	ErrFieldDisabled = errors.New("field is disabled")
)

// Option is one selectable entry of a dropdown.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FetchFunc loads the options of a field given its parent's value. The
// root field is fetched with an empty parent value.
type FetchFunc func(ctx context.Context, parentValue string) ([]Option, error)

// Link is one field of a chain definition.
type Link struct {
	Field string
	Fetch FetchFunc
}

// FieldState is the observable state of one chain field.
type FieldState struct {
	Field   string   `json:"field"`
	Value   string   `json:"value,omitempty"`
	Options []Option `json:"options,omitempty"`
	Enabled bool     `json:"enabled"`
	Failed  bool     `json:"failed,omitempty"`
}

type inflightFetch struct {
	token uint64
}

// Loader owns the state of one chain. All mutation happens under one
// lock; fetches run in goroutines and apply their result only if their
// token still matches the field's current reload token.
type Loader struct {
	mu       sync.Mutex
	chain    []Link
	states   []FieldState
	tokens   []uint64
	inflight map[string]*inflightFetch
	pending  sync.WaitGroup
	logger   *slog.Logger
}

func NewLoader(chain []Link, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	states := make([]FieldState, len(chain))
	for i, link := range chain {
		states[i] = FieldState{Field: link.Field}
	}

	return &Loader{
		chain:    chain,
		states:   states,
		tokens:   make([]uint64, len(chain)),
		inflight: make(map[string]*inflightFetch),
		logger:   logger.With("module", "cascade_loader"),
	}
}

// LoadRoot populates the first field's options. The root has no parent,
// so its fetch receives an empty parent value.
func (l *Loader) LoadRoot(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.startFetch(ctx, 0, "")
}

// OnFieldChanged records the new value of the field at index, clears and
// disables every downstream field, and reloads the immediate child's
// options. It returns before the fetch completes; observe progress via
// States.
func (l *Loader) OnFieldChanged(ctx context.Context, index int, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.chain) {
		return fmt.Errorf("%w: index %d", ErrUnknownField, index)
	}

	if index > 0 && !l.states[index].Enabled {
		return fmt.Errorf("%w: %s", ErrFieldDisabled, l.chain[index].Field)
	}

	l.states[index].Value = value

	for j := index + 1; j < len(l.chain); j++ {
		l.states[j].Value = ""
		l.states[j].Options = nil
		l.states[j].Enabled = false
		l.states[j].Failed = false
		l.tokens[j]++
	}

	if index+1 < len(l.chain) {
		l.startFetch(ctx, index+1, value)
	}

	return nil
}

// startFetch launches (or joins) the reload of the field at index for the
// given parent value. Callers hold l.mu.
func (l *Loader) startFetch(ctx context.Context, index int, parentValue string) {
	token := l.tokens[index]
	key := l.chain[index].Field + "\x00" + parentValue

	// One outstanding fetch per (field, parent value): concurrent
	// triggers adopt the in-flight request instead of duplicating it.
	if call, ok := l.inflight[key]; ok {
		call.token = token

		return
	}

	call := &inflightFetch{token: token}
	l.inflight[key] = call

	l.pending.Add(1)

	go func() {
		defer l.pending.Done()

		options, err := l.chain[index].Fetch(ctx, parentValue)

		l.mu.Lock()
		defer l.mu.Unlock()

		delete(l.inflight, key)

		if call.token != l.tokens[index] {
			// The parent moved on while this response was in flight.
			l.logger.Debug("Discarding stale cascade response",
				"field", l.chain[index].Field, "parent_value", parentValue)

			return
		}

		if err != nil {
			l.states[index].Failed = true
			l.states[index].Enabled = index == 0
			l.logger.Warn("Cascade fetch failed",
				"field", l.chain[index].Field, "error", err)

			return
		}

		l.states[index].Options = options
		l.states[index].Enabled = true
		l.states[index].Failed = false
	}()
}

// States returns a snapshot of every field's state in chain order.
func (l *Loader) States() []FieldState {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]FieldState, len(l.states))
	copy(out, l.states)

	for i := range out {
		options := make([]Option, len(l.states[i].Options))
		copy(options, l.states[i].Options)
		out[i].Options = options
	}

	return out
}

// State returns a snapshot of one field's state.
func (l *Loader) State(index int) (FieldState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.states) {
		return FieldState{}, fmt.Errorf("%w: index %d", ErrUnknownField, index)
	}

	return l.states[index], nil
}

// Wait blocks until every launched fetch has been applied or discarded.
func (l *Loader) Wait() {
	l.pending.Wait()
}
