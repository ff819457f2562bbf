package combat

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrEncounterActive is returned when a channel already hosts an encounter.
var ErrEncounterActive = errors.New("encounter already active in channel")

// Encounter is one live combat bound to a chat channel.
// All access to its Status goes through Do, which serializes callers.
type Encounter struct {
	// ID is unique per encounter and survives restarts through storage.
	ID string
	// ChannelID is the chat channel hosting the encounter.
	ChannelID string

	mu     sync.Mutex
	status *Status
}

// Do runs fn with exclusive access to the encounter's Status.
//
// Postcondition: Returns fn's error.
func (e *Encounter) Do(fn func(*Status) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.status)
}

// State returns a deep copy of the current Status.
func (e *Encounter) State() *Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status.Clone()
}

// Engine tracks live encounters keyed by channel ID.
type Engine struct {
	mu         sync.RWMutex
	encounters map[string]*Encounter
}

// NewEngine creates an empty Engine.
//
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine() *Engine {
	return &Engine{encounters: make(map[string]*Encounter)}
}

// Start opens a new Pending encounter in channelID.
//
// Precondition: channelID must be non-empty.
// Postcondition: Returns the new Encounter, or an error wrapping
// ErrEncounterActive if channelID already has one.
func (e *Engine) Start(channelID string, attacker, defender Identity) (*Encounter, error) {
	return e.Restore(uuid.NewString(), channelID, NewStatus(attacker, defender))
}

// Restore registers an existing status, e.g. one loaded from storage.
//
// Precondition: id and channelID must be non-empty; s must not be nil.
// Postcondition: Returns the Encounter, or an error wrapping ErrEncounterActive.
func (e *Engine) Restore(id, channelID string, s *Status) (*Encounter, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.encounters[channelID]; exists {
		return nil, fmt.Errorf("%w: %q", ErrEncounterActive, channelID)
	}
	enc := &Encounter{ID: id, ChannelID: channelID, status: s}
	e.encounters[channelID] = enc
	return enc, nil
}

// Get returns the encounter in channelID, if any.
func (e *Engine) Get(channelID string) (*Encounter, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	enc, ok := e.encounters[channelID]
	return enc, ok
}

// End removes the encounter record for channelID.
func (e *Engine) End(channelID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.encounters, channelID)
}

// Channels returns the channel IDs with a live encounter, sorted.
func (e *Engine) Channels() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.encounters))
	for id := range e.encounters {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
