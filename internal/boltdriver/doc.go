// Package boltdriver implements a CDCDriver backed by go.etcd.io/bbolt: a
// durable, single-file embedded backend suitable for a Storage that should
// survive process restarts, unlike internal/driver.MemoryDriver.
//
// Every table is one top-level bbolt bucket of id -> JSON-encoded row,
// mirroring the per-collection bucket layout of
// cuemby-warren/pkg/storage/boltdb.go. Schema metadata (declared
// properties/indexes) and the change/subscription log live in their own
// reserved buckets alongside the data buckets, so a single bbolt file is
// the whole storage unit. Every mutation runs inside one db.Update
// transaction that also appends any emitted Change rows, giving the
// "atomic mutate + emit" requirement (spec.md §4.6) the same free ride
// MemoryDriver gets from holding its mutex for the whole operation.
package boltdriver
