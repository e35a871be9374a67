// Package locator implements the Bucket Locator (spec.md §4.1): resolving
// a class or raw segment name to its live Bucket set, lazily generating
// buckets from the segment's Topology the first time it is seen, and
// filtering by writability and shard key.
//
// Grounded on internal/coordinator/shard_registry.go's GetShardForKey
// (hash-then-modulo routing) and internal/shard/shard.go's replica
// partitioning, generalized from the cluster's fixed shard-count routing
// to a per-segment Topology-driven one.
package locator
