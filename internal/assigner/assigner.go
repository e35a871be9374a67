package assigner

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/dreamware/shardcore/internal/corelog"
	"github.com/dreamware/shardcore/internal/database"
	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
)

// TopologyLookup is the narrow surface the assigner needs from the Topology
// Manager: a raw by-name lookup, independent of class registration.
type TopologyLookup interface {
	Lookup(name string, status model.TopologyStatus) *model.Topology
}

// Assigner implements spec.md §4.5 assignStorage.
type Assigner struct {
	facade     database.Facade
	registry   schema.Registry
	topologies TopologyLookup
}

// New returns a Storage Assigner backed by facade (for the bootstrap
// driver and per-storage driver lookup), registry (for segment/model
// metadata), and topologies (for the replication-registration decision).
func New(facade database.Facade, registry schema.Registry, topologies TopologyLookup) *Assigner {
	return &Assigner{facade: facade, registry: registry, topologies: topologies}
}

// AssignStorage ensures bucket is bound to a Storage, schema-synced, and
// (for a replicated primary) registered for replication change capture
// (spec.md §4.5). If bucket is already assigned, steps 2-4 still run —
// schema sync is required to be idempotent, and replication registration is
// itself idempotent via Subscribe — so repeat calls are safe.
func (a *Assigner) AssignStorage(bucket model.Bucket, class string) (model.Bucket, error) {
	log := corelog.WithComponent("assigner")

	if !bucket.Assigned() {
		storageID, err := a.pickStorage(bucket, class, log)
		if err != nil {
			return bucket, err
		}
		if err := a.persistStorage(bucket, storageID); err != nil {
			return bucket, err
		}
		bucket.Storage = storageID
		log.Info().Str("name", bucket.Name).Int("shard", bucket.Shard).
			Int("replica", bucket.Replica).Int64("storage", storageID).
			Msg("assigned bucket to storage")
	}

	d, ok := a.facade.GetStorageDriver(bucket.Storage)
	if !ok {
		return bucket, driver.WrapBackend("lookup driver for storage", errStorageDriverMissing(bucket.Storage))
	}

	if a.registry.HasSegment(bucket.Name) {
		segment, ok := a.registry.GetSegmentByName(bucket.Name, false)
		if ok {
			if err := d.SyncSchema(segment); err != nil {
				return bucket, err
			}
		}
	}

	if bucket.Version > 0 && bucket.Writable() {
		a.maybeRegisterReplication(d, bucket, log)
	}

	return bucket, nil
}

// pickStorage chooses which Storage should host bucket: the class's
// CastStorage override if the model declares one, else the default
// least-used-excluding-colocated rule (spec.md §4.5 step 1).
func (a *Assigner) pickStorage(bucket model.Bucket, class string, log zerolog.Logger) (int64, error) {
	candidates, excluded, err := a.candidateStorageIDs(bucket.Name)
	if err != nil {
		return 0, err
	}
	log.Debug().Str("name", bucket.Name).Ints64("candidates", candidates).
		Ints64("excluded", excluded).Msg("storage candidates for assignment")

	if mdl, ok := a.registry.GetClassModel(class); ok && mdl.CastStorage != nil {
		return mdl.CastStorage(candidates)
	}
	return a.defaultCastStorage(bucket.Name, candidates, log)
}

// candidateStorageIDs returns every known Storage id, excluding any storage
// that already hosts a Bucket with the same name (spec.md §3 invariant 2,
// §4.5 step 1, §9 Open Question 1), plus the excluded set itself for audit
// logging. Candidates are sorted ascending so the default pick's tie-break
// ("first encountered") is deterministic.
func (a *Assigner) candidateStorageIDs(name string) (candidates, excludedIDs []int64, err error) {
	bootstrap := a.facade.Driver()

	storages, err := bootstrap.Find(storageTable, nil)
	if err != nil {
		return nil, nil, driver.WrapBackend("list storages", err)
	}

	occupied, err := bootstrap.Find(bucketTable, model.Row{"name": name})
	if err != nil {
		return nil, nil, driver.WrapBackend("list buckets for "+name, err)
	}
	excluded := make(map[int64]struct{}, len(occupied))
	for _, row := range occupied {
		if id, ok := asInt64(row["storage"]); ok && id != 0 {
			excluded[id] = struct{}{}
			excludedIDs = append(excludedIDs, id)
		}
	}

	for _, row := range storages {
		id, ok := asInt64(row["id"])
		if !ok {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		candidates = append(candidates, id)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	sort.Slice(excludedIDs, func(i, j int) bool { return excludedIDs[i] < excludedIDs[j] })
	return candidates, excludedIDs, nil
}

// defaultCastStorage picks the candidate with minimum GetUsage(), first
// encountered on ties (spec.md §4.5 step 1 default rule). Logs the winner's
// usage on success and the full candidate/excluded sets on exhaustion, so a
// NoAvailableStorage failure is diagnosable from logs alone (spec.md §7).
func (a *Assigner) defaultCastStorage(name string, candidates []int64, log zerolog.Logger) (int64, error) {
	var (
		best    int64
		bestOk  bool
		bestUse int64
	)
	for _, id := range candidates {
		d, ok := a.facade.GetStorageDriver(id)
		if !ok {
			continue
		}
		usage := d.GetUsage()
		if !bestOk || usage < bestUse {
			best, bestUse, bestOk = id, usage, true
		}
	}
	if !bestOk {
		log.Error().Str("name", name).Ints64("candidates", candidates).
			Msg("no available storage for bucket")
		return 0, ErrNoAvailableStorage
	}
	log.Debug().Str("name", name).Int64("winner", best).Int64("usage", bestUse).
		Msg("picked least-used storage")
	return best, nil
}

// persistStorage writes the chosen storage id onto bucket's row in the
// buckets table (spec.md §4.5 step 1, last bullet).
func (a *Assigner) persistStorage(bucket model.Bucket, storageID int64) error {
	_, found, err := a.facade.Driver().Update(bucketTable, bucket.ID, model.Row{"storage": storageID})
	if err != nil {
		return driver.WrapBackend("persist storage assignment", err)
	}
	if !found {
		return errBucketRowMissing(bucket.ID)
	}
	return nil
}

// maybeRegisterReplication registers a "replication" listener on every
// table of bucket's segment when its topology declares replicas and is
// READY (spec.md §4.5 step 4). Backends that cannot host CDC are logged and
// skipped rather than failing the whole assignment — replication is an
// enabling step for future drainers, not a correctness requirement of
// routing itself.
func (a *Assigner) maybeRegisterReplication(d driver.Driver, bucket model.Bucket, log zerolog.Logger) {
	t := a.topologies.Lookup(bucket.Name, model.TopologyReady)
	if t == nil || t.Replicas <= 0 {
		return
	}

	cdc, ok := d.(driver.CDCDriver)
	if !ok {
		log.Warn().Str("name", bucket.Name).Msg("topology has replicas but storage driver has no CDC support")
		return
	}

	segment, ok := a.registry.GetSegmentByName(bucket.Name, false)
	if !ok {
		return
	}
	for _, table := range segment.Tables() {
		if err := cdc.RegisterChanges(table, replicationListener); err != nil {
			log.Warn().Str("table", table).Err(err).Msg("failed to register replication listener")
		}
	}
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
