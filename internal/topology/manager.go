package topology

import (
	"sync"

	"github.com/dreamware/shardcore/internal/corelog"
	"github.com/dreamware/shardcore/internal/database"
	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
)

// Manager maintains Topology records per segment name and provisions a
// default topology on first access, per spec.md §4.3.
//
// Thread Safety: safe for concurrent use. Provisioning is NOT
// mutex-serialized across the Configure dispatch itself — spec.md §5
// explicitly allows concurrent first access to dispatch Configure more than
// once, trusting the job's own idempotency on (name, version). The manager
// only serializes its own map reads/writes.
type Manager struct {
	registry  schema.Registry
	configure database.ConfigureJob
	byName    map[string][]model.Topology
	mu        sync.RWMutex
}

// NewManager returns a Topology Manager backed by registry for class/model
// lookups and configure for first-access provisioning.
func NewManager(registry schema.Registry, configure database.ConfigureJob) *Manager {
	return &Manager{
		registry:  registry,
		configure: configure,
		byName:    make(map[string][]model.Topology),
	}
}

// GetTopology returns the Topology for class at the given status, or nil if
// class routes through no topology at all (spec.md §4.3):
//
//  1. Unregistered classes, and registered-but-unsharded models, never
//     route through a topology: returns (nil, nil).
//  2. If a matching-status Topology already exists for the class's segment,
//     the most-recently-inserted one is returned.
//  3. Otherwise the external Configure job is dispatched and its result is
//     recorded and returned.
func (m *Manager) GetTopology(class string, status model.TopologyStatus) (*model.Topology, error) {
	mdl, ok := m.registry.GetClassModel(class)
	if !ok || !mdl.IsSharded() {
		return nil, nil
	}

	segment, ok := m.registry.GetClassSegment(class)
	if !ok {
		return nil, nil
	}
	name := segment.Fullname

	if t := m.latest(name, status); t != nil {
		return t, nil
	}

	log := corelog.WithComponent("topology")
	log.Debug().Str("segment", name).Msg("no ready topology, dispatching configure")

	t, err := m.configure.Configure(name)
	if err != nil {
		return nil, err
	}
	m.record(name, t)
	return &t, nil
}

// Lookup returns the most-recently-recorded Topology for the raw segment
// name at the given status, without going through the class/model registry.
// Used by the Storage Assigner, which operates on bucket names rather than
// registered classes (spec.md §4.5 step 4).
func (m *Manager) Lookup(name string, status model.TopologyStatus) *model.Topology {
	return m.latest(name, status)
}

// latest returns the most-recently-recorded Topology for name matching
// status, or nil if none is recorded yet.
func (m *Manager) latest(name string, status model.TopologyStatus) *model.Topology {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.byName[name]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Status == status {
			t := list[i]
			return &t
		}
	}
	return nil
}

// record appends t to name's history, unless an entry with the same
// version and status is already present (Configure may be dispatched more
// than once for the same segment under concurrent first access; its result
// is idempotent, so recording it twice would be redundant, not incorrect).
func (m *Manager) record(name string, t model.Topology) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.byName[name] {
		if existing.Version == t.Version && existing.Status == t.Status {
			return
		}
	}
	m.byName[name] = append(m.byName[name], t)
}

// Promote transitions every topology of name currently in fromStatus to
// toStatus — used to promote CREATING to READY once bootstrap completes,
// and to retire a superseded version (spec.md §3 Lifecycles). Not invoked
// by the locator itself; exposed for the external Configure job / operator
// tooling to call.
func (m *Manager) Promote(name string, fromStatus, toStatus model.TopologyStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.byName[name]
	for i := range list {
		if list[i].Status == fromStatus {
			list[i].Status = toStatus
		}
	}
}
