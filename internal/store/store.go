package store

import (
	"time"

	"github.com/jpalmerr/piaware-exporter/state"
)

// Entry is the current state of one subsystem.
type Entry struct {
	// Subsystem identifies the PiAware component.
	Subsystem state.Subsystem `json:"subsystem"`

	// Metric is the exported metric name for the subsystem.
	Metric string `json:"metric"`

	// State is the current value.
	State state.State `json:"state"`

	// UpdatedAt is the time of the last write, or the zero time if the
	// subsystem still holds its initial value.
	UpdatedAt time.Time `json:"updated_at"`
}

// Change describes a transition of one subsystem from one state to another.
type Change struct {
	Subsystem state.Subsystem
	From      state.State
	To        state.State
	At        time.Time
}

// Store defines the interface for holding and subscribing to subsystem states.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Set writes a single subsystem's state. It returns the transition and
	// true if the value changed. Unknown subsystems are ignored.
	Set(sub state.Subsystem, s state.State) (Change, bool)

	// SetAll writes the same state to every subsystem in one atomic step
	// and returns the transitions that occurred.
	SetAll(s state.State) []Change

	// Get returns the entry for one subsystem.
	Get(sub state.Subsystem) (Entry, bool)

	// GetAll returns a snapshot of every subsystem in state.Subsystems order.
	GetAll() []Entry

	// Subscribe returns a channel that receives the new entry whenever a
	// subsystem changes state. Slow consumers may miss updates.
	// Caller must call Unsubscribe when done.
	Subscribe() <-chan Entry

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Entry)
}
