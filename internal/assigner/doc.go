// Package assigner implements the Storage Assigner (spec.md §4.5): binding
// a newly-materialized Bucket to a physical Storage by least utilization,
// excluding any storage that already hosts a sibling bucket of the same
// logical name, then driving schema sync and optional replication
// registration for the bucket's segment.
//
// Grounded on internal/coordinator/shard_registry.go's assignment-map
// bookkeeping (AssignShard/GetAssignment) and on the audit-style failure
// logging of internal/coordinator/health_monitor.go's checkNode, adapted
// from node-health tracking to storage-pick tracking.
package assigner
