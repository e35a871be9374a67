package database

import (
	"fmt"
	"sync"

	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/model"
)

// Fake is an in-process Facade + ConfigureJob double. It routes every class
// to the single bootstrap driver it was built with (good enough to exercise the locator, the
// topology manager, and the storage assigner without a real Database), and
// lets tests register a canned topology per segment name so Configure can
// return it deterministically instead of running real provisioning logic.
//
// Thread Safety: safe for concurrent use; guarded by one mutex.
type Fake struct {
	bootstrap      driver.Driver
	storages       map[int64]driver.Driver
	canned         map[string]model.Topology
	configureCalls map[string]int
	mu             sync.Mutex
}

// NewFake returns a Fake wired to bootstrap as the driver holding the
// buckets table. bootstrap is also reachable via
// GetStorageDriver(model.BootstrapStorageID), so a bucket resolved through
// the locator's bootstrap special case (spec.md §4.1) can be dereferenced
// to a driver the same way any other bucket's storage is.
func NewFake(bootstrap driver.Driver) *Fake {
	f := &Fake{
		bootstrap:      bootstrap,
		storages:       make(map[int64]driver.Driver),
		canned:         make(map[string]model.Topology),
		configureCalls: make(map[string]int),
	}
	f.storages[model.BootstrapStorageID] = bootstrap
	return f
}

// RegisterStorage makes id resolvable via GetStorageDriver.
func (f *Fake) RegisterStorage(id int64, d driver.Driver) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storages[id] = d
}

// SetCannedTopology makes Configure(name) return topology instead of
// synthesizing one, simulating a Configure job that already ran bootstrap
// logic for that segment.
func (f *Fake) SetCannedTopology(name string, topology model.Topology) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canned[name] = topology
}

// ConfigureCalls reports how many times Configure(name) has been invoked —
// used by tests asserting idempotent dispatch under concurrent first
// access (spec.md §5).
func (f *Fake) ConfigureCalls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configureCalls[name]
}

// Configure implements ConfigureJob: returns the canned topology for name,
// or a single-shard, no-replica, immediately-READY default if none was
// registered.
func (f *Fake) Configure(name string) (model.Topology, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.configureCalls[name]++
	if t, ok := f.canned[name]; ok {
		return t, nil
	}
	return model.DefaultTopology(name), nil
}

func (f *Fake) CreateInstance(class string, row model.Row) (interface{}, error) {
	return row, nil
}

func (f *Fake) Find(class string, query model.Row) ([]model.Row, error) {
	return f.bootstrap.Find(class, query)
}

func (f *Fake) FindOne(class string, query model.Row) (model.Row, bool, error) {
	return f.bootstrap.FindOne(class, query)
}

func (f *Fake) FindOrCreate(class string, query, data model.Row) (model.Row, error) {
	return f.bootstrap.FindOrCreate(class, query, data)
}

func (f *Fake) FindOrFail(class string, query model.Row) (model.Row, error) {
	return f.bootstrap.FindOrFail(class, query)
}

func (f *Fake) Dispatch(job ConfigureJob, name string) (model.Topology, error) {
	if job == nil {
		return model.Topology{}, fmt.Errorf("database: fake: no job to dispatch")
	}
	return job.Configure(name)
}

func (f *Fake) Driver() driver.Driver {
	return f.bootstrap
}

func (f *Fake) GetStorageDriver(storageID int64) (driver.Driver, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.storages[storageID]
	return d, ok
}

// Storages returns every registered storage id, excluding the reserved
// bootstrap id — used by cmd/shardctl to fan a drain command out across
// every known storage without the caller needing to track ids itself.
func (f *Fake) Storages() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.storages))
	for id := range f.storages {
		if id == model.BootstrapStorageID {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

var _ Facade = (*Fake)(nil)
var _ ConfigureJob = (*Fake)(nil)
