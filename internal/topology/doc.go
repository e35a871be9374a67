// Package topology implements the Topology Manager (spec.md §4.3):
// read-mostly access to the Topology records for a segment, with lazy
// provisioning via the external Configure job the first time a sharded
// segment is seen.
//
// Grounded on internal/coordinator/shard_registry.go's map-guarded-by-mutex
// registry shape and internal/coordinator/health_monitor.go's
// lazy-on-first-access provisioning idiom, generalized from
// node-health-tracking to topology-record-tracking.
package topology
