// Package model defines the persisted entities of the sharding core:
// Topology, Bucket, Storage, Subscription, and Change. These are plain data
// records — no behavior, no locking — shared by every other package in this
// module so that the locator, the topology manager, the storage assigner,
// and the change log all agree on one wire shape.
//
// # Overview
//
// Five entities, leaves first:
//
//	Storage   — one physical backend, addressed through a Driver.
//	Bucket    — one (name, version, shard, replica) cell, bound to a Storage.
//	Topology  — the sharding plan (shards × replicas) a Bucket set is
//	            generated from, versioned and statused.
//	Subscription — a declaration that a listener wants changes from a table.
//	Change    — one persisted mutation record awaiting drain + ack.
//
// # Relationships
//
//	Topology(name, version) --generates--> Bucket(name, version, shard, replica)
//	Bucket.Storage           --addresses--> Storage.ID
//	Subscription(listener, table) --governs emission of--> Change(listener, table)
//
// # Field naming
//
// Field names here are wire-significant (persisted layouts, spec.md §6);
// field order is not. JSON tags match the persisted column names exactly so
// that any Driver backed by a document or key-value store can round-trip a
// row through encoding/json without a translation layer.
package model
