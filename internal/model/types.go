package model

// TopologyStatus is the lifecycle state of a Topology record.
//
// A Topology moves CREATING → READY exactly once, and may later move
// READY → RETIRED when a newer version supersedes it. Only READY topologies
// are consulted for routing (spec.md §3 Lifecycles).
type TopologyStatus string

const (
	// TopologyCreating marks a topology whose buckets are still being
	// bootstrapped by the external Configure job. Never routes traffic.
	TopologyCreating TopologyStatus = "CREATING"

	// TopologyReady marks the authoritative layout for its (name, version).
	TopologyReady TopologyStatus = "READY"

	// TopologyRetired marks a topology superseded by a newer version.
	// Retained for historical buckets; never routes new traffic.
	TopologyRetired TopologyStatus = "RETIRED"
)

// Topology is the authoritative sharding plan for one logical segment name
// at one version: how many shards, how many replicas per shard, and whether
// the plan is ready to route traffic.
//
// Table: topology(id, name, version, status, shards, replicas)
// Index: (name, status)
type Topology struct {
	Name     string         `json:"name"`
	Status   TopologyStatus `json:"status"`
	ID       int64          `json:"id"`
	Version  int            `json:"version"`
	Shards   int            `json:"shards"`
	Replicas int            `json:"replicas"`
}

// DefaultTopology returns the bootstrap topology used when a segment has no
// registered Topology at all: one shard, no replicas, version 0, READY
// immediately (spec.md §4.1 step 4).
func DefaultTopology(name string) Topology {
	return Topology{
		ID:       0,
		Name:     name,
		Version:  0,
		Status:   TopologyReady,
		Shards:   1,
		Replicas: 0,
	}
}

// BucketCount returns the number of Bucket rows a READY topology owns:
// shards × (replicas + 1), per spec.md §3 invariant 1.
func (t Topology) BucketCount() int {
	return t.Shards * (t.Replicas + 1)
}

// BucketSegmentName is the reserved segment name the buckets table itself
// is stored under. BootstrapBucketID and BootstrapStorageID are the
// compile-time constants the Locator hard-codes to resolve this one
// bucket without reading the buckets table — reading it is exactly what
// the Locator would otherwise need this bucket's row to do (spec.md §4.1
// special case, §6 "Bootstrap bucket").
const BucketSegmentName = "bucket"

const (
	BootstrapBucketID  int64 = 1
	BootstrapStorageID int64 = -1
)

// BootstrapBucket returns the well-known bucket the buckets table itself
// lives in: a single, unsharded, already-assigned cell pointing at the
// reserved bootstrap storage id (spec.md §4.1 special case).
func BootstrapBucket() Bucket {
	return Bucket{
		ID:      BootstrapBucketID,
		Name:    BucketSegmentName,
		Version: 0,
		Shard:   0,
		Replica: 0,
		Storage: BootstrapStorageID,
	}
}

// Bucket is one (name, version, shard, replica) cell. Each bucket is bound
// to exactly one Storage once assigned; replica 0 is the writable primary,
// replica > 0 are read-only.
//
// Table: bucket(id, name, version, shard, replica, storage)
// Index: (name, version); unique (name, version, shard, replica)
type Bucket struct {
	Name    string `json:"name"`
	ID      int64  `json:"id"`
	Version int    `json:"version"`
	Shard   int    `json:"shard"`
	Replica int    `json:"replica"`
	Storage int64  `json:"storage"`
}

// Writable reports whether this bucket is the primary (replica 0) for its
// shard — the only replica that accepts writes.
func (b Bucket) Writable() bool {
	return b.Replica == 0
}

// Assigned reports whether this bucket has been bound to a Storage. A
// Bucket's Storage field transitions from 0 to a positive id exactly once
// and is never reassigned (spec.md §3 invariant 3).
func (b Bucket) Assigned() bool {
	return b.Storage != 0
}

// Storage is one physical backend instance, addressed through exactly one
// Driver. The core treats connection details as backend-specific and opaque;
// only the id and the usage metric (reported by the Driver, not stored here)
// matter to placement decisions.
//
// Table: storage(id, ...) — primary key id.
type Storage struct {
	Kind string `json:"kind"`
	DSN  string `json:"dsn"`
	ID   int64  `json:"id"`
}

// ChangeAction is the kind of mutation a Change row records.
type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)

// Subscription is a declaration that an external listener wants changes
// emitted for one table on one storage. Table "*" subscribes to every table
// on that storage (spec.md §3).
//
// Table: sharding_subscription(listener, table) — unique (listener, table).
type Subscription struct {
	Listener string `json:"listener"`
	Table    string `json:"table"`
}

// Matches reports whether this subscription covers the given table, either
// by exact name or via the "*" wildcard.
func (s Subscription) Matches(table string) bool {
	return s.Table == "*" || s.Table == table
}

// Change is one emitted mutation for one listener, awaiting drain + ack.
// Seq is a per-storage monotonic integer; Tuple is the post-image (the
// pre-image for deletes); Context is the caller-supplied opaque map that
// was current on the driver when the mutation ran.
//
// Table: sharding_change(seq, listener, table, action, tuple, context) —
// primary key seq, index listener.
type Change struct {
	Listener string                 `json:"listener"`
	Table    string                 `json:"table"`
	Action   ChangeAction           `json:"action"`
	Tuple    map[string]interface{} `json:"tuple"`
	Context  map[string]interface{} `json:"context"`
	Seq      int64                  `json:"seq"`
}

// Row is the generic shape every Driver operation accepts and returns: a
// name→value mapping, the same representation spec.md §3 uses for a
// Change's tuple and for Driver payloads alike.
type Row = map[string]interface{}
