// Package session models the lifecycle of one interactive import: from file
// selection through preview and commit. The caller (a UI or the CLI) drives
// the state machine; invalid transitions are rejected rather than ignored.
package session

import (
	"fmt"
	"sync"

	"statement-import-service/internal/models"
)

// State is one phase of an import session
type State string

const (
	// StateIdle means no import is in progress
	StateIdle State = "idle"
	// StateSelectingFile means the user is choosing a statement to import
	StateSelectingFile State = "selecting_file"
	// StateParsing means the statement is being parsed
	StateParsing State = "parsing"
	// StatePreview means parsed transactions are shown for review
	StatePreview State = "preview"
	// StateImporting means the reviewed batch is being committed
	StateImporting State = "importing"
	// StateSuccess is the terminal state of a committed import
	StateSuccess State = "success"
	// StateError is the terminal state of a failed import
	StateError State = "error"
)

// transitions lists the allowed state changes. Anything absent is invalid.
var transitions = map[State][]State{
	StateIdle:          {StateSelectingFile},
	StateSelectingFile: {StateParsing, StateIdle},
	StateParsing:       {StatePreview, StateError},
	StatePreview:       {StateImporting, StateIdle},
	StateImporting:     {StateSuccess, StateError},
	StateSuccess:       {StateIdle},
	StateError:         {StateIdle},
}

// Session tracks one import run: its state, the parsed result under review
// and the user's per-candidate overrides. Overrides live only as long as
// the session; a reset discards them.
type Session struct {
	mu        sync.Mutex
	state     State
	result    *models.ImportResult
	overrides map[int]*models.TransactionOverride
	err       error
}

// NewSession creates an idle session
func NewSession() *Session {
	return &Session{
		state:     StateIdle,
		overrides: make(map[int]*models.TransactionOverride),
	}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the parsed result under review, nil outside preview
func (s *Session) Result() *models.ImportResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Err returns the failure that moved the session into the error state
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Overrides returns a copy of the accumulated overrides keyed by candidate
// index.
func (s *Session) Overrides() map[int]*models.TransactionOverride {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]*models.TransactionOverride, len(s.overrides))
	for i, o := range s.overrides {
		out[i] = o
	}
	return out
}

// StartSelection moves from idle to file selection
func (s *Session) StartSelection() error {
	return s.transition(StateSelectingFile, func() {})
}

// StartParsing moves from file selection to parsing
func (s *Session) StartParsing() error {
	return s.transition(StateParsing, func() {})
}

// EnterPreview stores the parsed result and moves to preview
func (s *Session) EnterPreview(result *models.ImportResult) error {
	if result == nil {
		return fmt.Errorf("preview requires a parse result")
	}
	return s.transition(StatePreview, func() {
		s.result = result
		s.overrides = make(map[int]*models.TransactionOverride)
	})
}

// SetOverride records a field correction for the candidate at the given
// index. Only valid in preview.
func (s *Session) SetOverride(index int, override *models.TransactionOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePreview {
		return fmt.Errorf("overrides can only be edited in preview, session is %s", s.state)
	}
	if s.result == nil || index < 0 || index >= len(s.result.NewTransactions) {
		return fmt.Errorf("no candidate at index %d", index)
	}

	if override.IsEmpty() {
		delete(s.overrides, index)
		return nil
	}
	s.overrides[index] = override
	return nil
}

// StartImport moves from preview to importing
func (s *Session) StartImport() error {
	return s.transition(StateImporting, func() {})
}

// Complete moves from importing to the success terminal state
func (s *Session) Complete() error {
	return s.transition(StateSuccess, func() {})
}

// Fail moves to the error terminal state, recording the cause
func (s *Session) Fail(err error) error {
	return s.transition(StateError, func() {
		s.err = err
	})
}

// Reset returns the session to idle from any state that allows it,
// discarding the result, overrides and error.
func (s *Session) Reset() error {
	return s.transition(StateIdle, func() {
		s.result = nil
		s.overrides = make(map[int]*models.TransactionOverride)
		s.err = nil
	})
}

// transition atomically validates and applies a state change
func (s *Session) transition(to State, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range transitions[s.state] {
		if allowed == to {
			apply()
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("invalid transition from %s to %s", s.state, to)
}
