package store

import (
	"sync"
	"time"

	"github.com/jpalmerr/piaware-exporter/state"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// The set of subsystems is fixed at construction to state.Subsystems and
// every one of them starts as state.Unavailable. Subscribers receive
// changed entries via buffered channels; a full buffer drops the update
// for that subscriber rather than blocking the writer.
type MemoryStore struct {
	mu          sync.RWMutex
	entries     map[state.Subsystem]Entry
	subscribers map[chan Entry]struct{}
	subMu       sync.RWMutex
	now         func() time.Time
}

// NewMemoryStore creates a [MemoryStore] with every subsystem unavailable.
func NewMemoryStore() *MemoryStore {
	entries := make(map[state.Subsystem]Entry, len(state.Subsystems))
	for _, sub := range state.Subsystems {
		entries[sub] = Entry{
			Subsystem: sub,
			Metric:    sub.MetricName(),
			State:     state.Unavailable,
		}
	}
	return &MemoryStore{
		entries:     entries,
		subscribers: make(map[chan Entry]struct{}),
		now:         time.Now,
	}
}

// Set writes a single subsystem's state.
func (m *MemoryStore) Set(sub state.Subsystem, s state.State) (Change, bool) {
	m.mu.Lock()
	change, entry, changed, ok := m.setLocked(sub, s, m.now())
	m.mu.Unlock()

	if !ok || !changed {
		return Change{}, false
	}
	m.notifySubscribers(entry)
	return change, true
}

// SetAll writes s to every subsystem under a single lock acquisition.
func (m *MemoryStore) SetAll(s state.State) []Change {
	now := m.now()
	var (
		changes []Change
		updated []Entry
	)

	m.mu.Lock()
	for _, sub := range state.Subsystems {
		change, entry, changed, _ := m.setLocked(sub, s, now)
		if changed {
			changes = append(changes, change)
			updated = append(updated, entry)
		}
	}
	m.mu.Unlock()

	for _, entry := range updated {
		m.notifySubscribers(entry)
	}
	return changes
}

// setLocked applies one write. Caller must hold m.mu.
func (m *MemoryStore) setLocked(sub state.Subsystem, s state.State, now time.Time) (Change, Entry, bool, bool) {
	entry, ok := m.entries[sub]
	if !ok {
		return Change{}, Entry{}, false, false
	}

	prev := entry.State
	entry.State = s
	entry.UpdatedAt = now
	m.entries[sub] = entry

	if prev == s {
		return Change{}, entry, false, true
	}
	return Change{Subsystem: sub, From: prev, To: s, At: now}, entry, true, true
}

// Get returns the entry for one subsystem.
func (m *MemoryStore) Get(sub state.Subsystem) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[sub]
	return entry, ok
}

// GetAll returns a snapshot of every subsystem in state.Subsystems order.
func (m *MemoryStore) GetAll() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Entry, 0, len(state.Subsystems))
	for _, sub := range state.Subsystems {
		results = append(results, m.entries[sub])
	}
	return results
}

// Subscribe creates a new subscription with a buffer of 100 entries.
func (m *MemoryStore) Subscribe() <-chan Entry {
	ch := make(chan Entry, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Entry) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the entry to all subscribers without blocking.
func (m *MemoryStore) notifySubscribers(entry Entry) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- entry:
		default:
			// subscriber is slow, drop the message
		}
	}
}
