// Package changelog implements the backend-agnostic half of the
// change-data-capture protocol (spec.md §4.6): deciding which listeners
// care about a table, allocating the per-storage monotonic seq, and
// shaping Change rows. It has no storage of its own —
// internal/driver.MemoryDriver embeds a Log and calls it while holding its
// own mutex, so the mutation and its Change rows land as one unit.
// internal/boltdriver.Driver does not use Log: it keeps the same
// subscription/seq bookkeeping durably in its own bbolt file
// (changefeed.go).
package changelog
