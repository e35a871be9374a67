package locator

import (
	"strings"
	"sync/atomic"

	"github.com/dreamware/shardcore/internal/corelog"
	"github.com/dreamware/shardcore/internal/database"
	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
)

// Topologies is the narrow surface the Locator needs from the Topology
// Manager: resolve class to its READY topology, provisioning one via the
// external Configure job on first access if necessary (spec.md §4.3).
type Topologies interface {
	GetTopology(class string, status model.TopologyStatus) (*model.Topology, error)
}

// StorageAssigner is the narrow surface the Locator needs from the Storage
// Assigner: bind a bucket to a storage, schema-sync it, and register
// replication if warranted (spec.md §4.5).
type StorageAssigner interface {
	AssignStorage(bucket model.Bucket, class string) (model.Bucket, error)
}

// Locator implements GetBuckets (spec.md §4.1).
type Locator struct {
	facade     database.Facade
	registry   schema.Registry
	topologies Topologies
	assigner   StorageAssigner

	resolved  int64
	keyMisses int64
}

// Stats is a point-in-time snapshot of Locator.Stats() — operational
// counters the spec never asked for but every driver/registry in this
// corpus ships alongside its core logic (e.g. shard.Shard.GetStats()).
type Stats struct {
	// Resolved counts every completed GetBuckets call, successful or not.
	Resolved int64
	// KeyMisses counts GetBuckets calls where the payload carried no
	// resolvable shard key (getShard returned nil), so routing fell back
	// to every bucket in the surviving partition.
	KeyMisses int64
}

// New returns a Bucket Locator wired to facade (for the bootstrap driver
// holding the buckets table), registry (for class/segment/model lookups),
// topologies, and assigner.
func New(facade database.Facade, registry schema.Registry, topologies Topologies, assigner StorageAssigner) *Locator {
	return &Locator{facade: facade, registry: registry, topologies: topologies, assigner: assigner}
}

// GetBuckets resolves class/data to its live bucket set (spec.md §4.1
// steps 1-9). writable restricts to (or prefers, with fallback) primary
// buckets; multiple=false asserts exactly one survives filtering.
func (l *Locator) GetBuckets(class string, data model.Row, writable, multiple bool) ([]model.Bucket, error) {
	defer atomic.AddInt64(&l.resolved, 1)

	name := l.resolveSegmentName(class)

	if name == model.BucketSegmentName {
		return []model.Bucket{model.BootstrapBucket()}, nil
	}

	buckets, err := l.loadBuckets(name)
	if err != nil {
		return nil, err
	}

	topo, err := l.topologies.GetTopology(class, model.TopologyReady)
	if err != nil {
		return nil, err
	}

	if topo != nil {
		buckets = filterVersion(buckets, topo.Version)
	}

	if len(buckets) == 0 {
		t := model.DefaultTopology(name)
		if topo != nil {
			t = *topo
		}
		buckets, err = l.generateBuckets(t)
		if err != nil {
			return nil, err
		}
	}

	buckets = partitionByReplica(buckets, writable)

	if topo != nil && len(buckets) > 1 {
		shard, err := getShard(l.registry, class, data, topo.Shards)
		if err != nil {
			return nil, err
		}
		if shard != nil {
			buckets = filterShard(buckets, *shard)
		} else {
			atomic.AddInt64(&l.keyMisses, 1)
		}
	}

	if !multiple && len(buckets) > 1 {
		return nil, ErrAmbiguousRouting
	}

	for i, b := range buckets {
		assigned, err := l.assigner.AssignStorage(b, class)
		if err != nil {
			return nil, err
		}
		buckets[i] = assigned
	}

	return buckets, nil
}

// resolveSegmentName maps class to its logical segment name (spec.md §4.1
// step 1): the registered Segment's full name if class is registered,
// otherwise the prefix of class before its first '.' or '_' ('.' checked
// first), or the whole string if neither separator appears.
func (l *Locator) resolveSegmentName(class string) string {
	if segment, ok := l.registry.GetClassSegment(class); ok {
		return segment.Fullname
	}
	if idx := strings.Index(class, "."); idx >= 0 {
		return class[:idx]
	}
	if idx := strings.Index(class, "_"); idx >= 0 {
		return class[:idx]
	}
	return class
}

// loadBuckets reads every Bucket row for name directly off the bootstrap
// driver — never through the Locator itself, which would recurse forever
// trying to locate the buckets table's own bucket (spec.md §4.1 step 2).
func (l *Locator) loadBuckets(name string) ([]model.Bucket, error) {
	rows, err := l.facade.Driver().Find(model.BucketSegmentName, model.Row{"name": name})
	if err != nil {
		return nil, err
	}
	out := make([]model.Bucket, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToBucket(row))
	}
	return out, nil
}

// generateBuckets materializes shards*(replicas+1) Bucket rows for t,
// idempotently on (name, version, shard, replica) (spec.md §4.1 step 4).
func (l *Locator) generateBuckets(t model.Topology) ([]model.Bucket, error) {
	log := corelog.WithComponent("locator")
	bootstrap := l.facade.Driver()

	out := make([]model.Bucket, 0, t.BucketCount())
	for shard := 0; shard < t.Shards; shard++ {
		for replica := 0; replica <= t.Replicas; replica++ {
			query := model.Row{
				"name":    t.Name,
				"version": t.Version,
				"shard":   shard,
				"replica": replica,
			}
			data := model.Row{"storage": int64(0)}
			for k, v := range query {
				data[k] = v
			}
			row, err := bootstrap.FindOrCreate(model.BucketSegmentName, query, data)
			if err != nil {
				return nil, err
			}
			out = append(out, rowToBucket(row))
		}
	}
	log.Debug().Str("name", t.Name).Int("version", t.Version).Int("count", len(out)).Msg("generated buckets")
	return out, nil
}

// rowToBucket reassembles a Bucket from a Driver row. Numeric fields are
// coerced leniently: MemoryDriver round-trips Go's own int/int64 values
// unchanged, while a JSON-backed driver (internal/boltdriver) decodes every
// number as int64 after normalization — coercing both shapes here keeps
// Locator backend-agnostic.
func rowToBucket(row model.Row) model.Bucket {
	return model.Bucket{
		ID:      asInt64(row["id"]),
		Name:    asString(row["name"]),
		Version: int(asInt64(row["version"])),
		Shard:   int(asInt64(row["shard"])),
		Replica: int(asInt64(row["replica"])),
		Storage: asInt64(row["storage"]),
	}
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// Stats returns a snapshot of this Locator's resolution counters.
func (l *Locator) Stats() Stats {
	return Stats{
		Resolved:  atomic.LoadInt64(&l.resolved),
		KeyMisses: atomic.LoadInt64(&l.keyMisses),
	}
}

func filterVersion(buckets []model.Bucket, version int) []model.Bucket {
	out := buckets[:0:0]
	for _, b := range buckets {
		if b.Version == version {
			out = append(out, b)
		}
	}
	return out
}

func filterShard(buckets []model.Bucket, shard int) []model.Bucket {
	out := buckets[:0:0]
	for _, b := range buckets {
		if b.Shard == shard {
			out = append(out, b)
		}
	}
	return out
}

// partitionByReplica picks the subset of buckets whose is-replica state
// matches !writable (writable wants primaries, read wants replicas),
// falling back to the full set if that partition is empty (spec.md §4.1
// step 5, §9 Open Question 2).
func partitionByReplica(buckets []model.Bucket, writable bool) []model.Bucket {
	wantReplica := !writable
	out := buckets[:0:0]
	for _, b := range buckets {
		if (b.Replica != 0) == wantReplica {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return buckets
	}
	return out
}
