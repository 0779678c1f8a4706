// Package store holds the per-exporter registry of subsystem states.
//
// The registry replaces process-wide metric globals: each exporter instance
// owns exactly one [MemoryStore], created with every subsystem set to
// state.Unavailable. The poll loop writes to it and the scrape handler,
// the JSON API and SSE subscribers read from it concurrently.
//
// The main components are:
//
//   - [Store]: Interface defining state writes, reads and subscriptions
//   - [MemoryStore]: Mutex-guarded implementation with pub/sub
//   - [Entry]: Snapshot of one subsystem's state
//   - [Change]: A single state transition
//
// Every write is applied under one lock, so readers never observe a
// partially applied update. [Store.SetAll] writes all subsystems under the
// same lock acquisition.
package store
