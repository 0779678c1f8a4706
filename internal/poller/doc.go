// Package poller fetches PiAware's status.json on a fixed interval.
//
// The poller runs a single sequential loop: fetch, classify, hand off,
// sleep. There is never more than one request in flight, and the sleep is
// always the full interval regardless of how long the fetch took.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with per-request timeout and size limit
//   - [Poller]: The fetch loop
//   - [Result]: Outcome of a single fetch, passed to a [Handler]
//   - [Outcome]: Classification of a fetch (ok, http error, connection, timeout, error)
//
// Users of the exporter should not need to interact with this package
// directly. The poller is started by the root package's Exporter.
package poller
