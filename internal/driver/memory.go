package driver

import (
	"sync"
	"sync/atomic"

	"github.com/dreamware/shardcore/internal/changelog"
	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
)

// MemoryDriver is the reference Driver implementation: every table is an
// in-memory map keyed by an auto-assigned "id" field, guarded by one mutex.
// Because every operation already holds that mutex for its whole duration,
// the "atomic mutate + emit" requirement of spec.md §4.6 falls out for free
// — there is no separate commit step to interleave with.
//
// MemoryDriver implements CDCDriver. For a backend that cannot support
// change emission, use NewPlainMemoryDriver instead, which wraps a
// MemoryDriver of its own.
type MemoryDriver struct {
	tables      map[string]map[interface{}]model.Row
	props       map[string]map[string]schema.PropertyType
	indexes     map[string]map[string]schema.Index
	log         *changelog.Log
	changeQueue map[string][]model.Change
	mu          sync.RWMutex
	nextID      map[string]int64
	usage       int64
}

// NewMemoryDriver returns an empty MemoryDriver with no tables.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		tables:  make(map[string]map[interface{}]model.Row),
		props:   make(map[string]map[string]schema.PropertyType),
		indexes: make(map[string]map[string]schema.Index),
		nextID:  make(map[string]int64),
		log:     changelog.NewLog(),
	}
}

func (d *MemoryDriver) tableLocked(table string) map[interface{}]model.Row {
	t, ok := d.tables[table]
	if !ok {
		t = make(map[interface{}]model.Row)
		d.tables[table] = t
	}
	return t
}

func matches(row model.Row, query model.Row) bool {
	for k, v := range query {
		if row[k] != v {
			return false
		}
	}
	return true
}

func copyRow(row model.Row) model.Row {
	out := make(model.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// appendPendingLocked queues every emitted change for its listener's drain
// queue. Must be called with d.mu held.
func (d *MemoryDriver) appendPendingLocked(changes []model.Change) {
	if len(changes) == 0 {
		return
	}
	pending := d.pendingLocked()
	for _, c := range changes {
		pending[c.Listener] = append(pending[c.Listener], c)
	}
}

// Create inserts data into table, assigning an "id" if the caller didn't
// supply one, emitting a Change for every listener subscribed to table.
func (d *MemoryDriver) Create(table string, data model.Row) (model.Row, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	row := copyRow(data)
	id, ok := row["id"]
	if !ok || id == nil {
		d.nextID[table]++
		id = d.nextID[table]
		row["id"] = id
	}

	d.tableLocked(table)[id] = row
	atomic.AddInt64(&d.usage, 1)
	d.appendPendingLocked(d.log.Emit(table, model.ActionCreate, row))
	return copyRow(row), nil
}

// Update sets the given fields on the row keyed by id.
func (d *MemoryDriver) Update(table string, id interface{}, data model.Row) (model.Row, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.tableLocked(table)
	row, ok := t[id]
	if !ok {
		return nil, false, nil
	}
	for k, v := range data {
		row[k] = v
	}
	t[id] = row
	d.appendPendingLocked(d.log.Emit(table, model.ActionUpdate, row))
	return copyRow(row), true, nil
}

// Delete removes the row keyed by id, or matching every field of id when id
// is itself a compound-key map.
func (d *MemoryDriver) Delete(table string, id interface{}) (model.Row, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.tableLocked(table)

	if compound, ok := id.(model.Row); ok {
		for key, row := range t {
			if matches(row, compound) {
				delete(t, key)
				d.appendPendingLocked(d.log.Emit(table, model.ActionDelete, row))
				return copyRow(row), true, nil
			}
		}
		return nil, false, nil
	}

	row, ok := t[id]
	if !ok {
		return nil, false, nil
	}
	delete(t, id)
	d.appendPendingLocked(d.log.Emit(table, model.ActionDelete, row))
	return copyRow(row), true, nil
}

// Find returns every row in table matching query (full-equality AND).
func (d *MemoryDriver) Find(table string, query model.Row) ([]model.Row, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []model.Row
	for _, row := range d.tables[table] {
		if matches(row, query) {
			out = append(out, copyRow(row))
		}
	}
	return out, nil
}

// FindOne returns the first row matching query.
func (d *MemoryDriver) FindOne(table string, query model.Row) (model.Row, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, row := range d.tables[table] {
		if matches(row, query) {
			return copyRow(row), true, nil
		}
	}
	return nil, false, nil
}

// FindOrFail is FindOne but returns ErrNotFound on a miss.
func (d *MemoryDriver) FindOrFail(table string, query model.Row) (model.Row, error) {
	row, ok, err := d.FindOne(table, query)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return row, nil
}

// FindOrCreate atomically returns an existing match or inserts data,
// emitting a Change only when the insert branch runs (spec.md §4.6
// Suppression).
func (d *MemoryDriver) FindOrCreate(table string, query, data model.Row) (model.Row, error) {
	d.mu.Lock()

	t := d.tableLocked(table)
	for _, row := range t {
		if matches(row, query) {
			out := copyRow(row)
			d.mu.Unlock()
			return out, nil
		}
	}

	row := copyRow(data)
	for k, v := range query {
		if _, ok := row[k]; !ok {
			row[k] = v
		}
	}
	id, ok := row["id"]
	if !ok || id == nil {
		d.nextID[table]++
		id = d.nextID[table]
		row["id"] = id
	}
	t[id] = row
	atomic.AddInt64(&d.usage, 1)
	d.appendPendingLocked(d.log.Emit(table, model.ActionCreate, row))
	out := copyRow(row)
	d.mu.Unlock()
	return out, nil
}

// HasTable reports whether table has been created (implicitly, by first
// write, or explicitly via CreateTable during schema sync).
func (d *MemoryDriver) HasTable(table string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.tables[table]
	return ok
}

// SyncSchema delegates to the shared generic algorithm; MemoryDriver itself
// implements SchemaTarget.
func (d *MemoryDriver) SyncSchema(segment schema.Segment) error {
	return SyncSchema(d, segment)
}

// GetUsage reports the number of successful inserts this driver has ever
// performed — an opaque, monotonic stand-in for real backend utilization
// (spec.md §4.2: "opaque; only min matters").
func (d *MemoryDriver) GetUsage() int64 {
	return atomic.LoadInt64(&d.usage)
}

// SetContext sets the context map attached to future Change emissions.
func (d *MemoryDriver) SetContext(ctx model.Row) {
	d.log.SetContext(ctx)
}

// RegisterChanges subscribes listener to table.
func (d *MemoryDriver) RegisterChanges(table, listener string) error {
	d.log.Subscribe(table, listener)
	return nil
}

// GetChanges drains up to limit pending changes for listener. MemoryDriver
// keeps undelivered changes in an in-memory queue per listener.
func (d *MemoryDriver) GetChanges(listener string, limit int) ([]model.Change, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.pendingLocked()[listener]
	if limit <= 0 || limit > len(pending) {
		limit = len(pending)
	}
	out := make([]model.Change, limit)
	copy(out, pending[:limit])
	return out, nil
}

// AckChanges deletes the supplied change rows from the pending queue.
func (d *MemoryDriver) AckChanges(changes []model.Change) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	toAck := make(map[int64]struct{}, len(changes))
	for _, c := range changes {
		toAck[c.Seq] = struct{}{}
	}
	pending := d.pendingLocked()
	for listener, queue := range pending {
		kept := queue[:0]
		for _, c := range queue {
			if _, ack := toAck[c.Seq]; !ack {
				kept = append(kept, c)
			}
		}
		pending[listener] = kept
	}
	return nil
}

// pendingLocked is a placeholder seam: MemoryDriver stores pending changes
// on d.log's emission results via the changeQueue field, populated by
// Create/Update/Delete/FindOrCreate through appendPendingLocked. Declared here so
// GetChanges/AckChanges have a single place to read/write the queue.
func (d *MemoryDriver) pendingLocked() map[string][]model.Change {
	if d.changeQueue == nil {
		d.changeQueue = make(map[string][]model.Change)
	}
	return d.changeQueue
}

// CreateTable materializes an empty table, implementing SchemaTarget.
func (d *MemoryDriver) CreateTable(table string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tableLocked(table)
	if d.props[table] == nil {
		d.props[table] = make(map[string]schema.PropertyType)
	}
	if d.indexes[table] == nil {
		d.indexes[table] = make(map[string]schema.Index)
	}
	return nil
}

// TableProperties reports the properties already materialized on table.
func (d *MemoryDriver) TableProperties(table string) (map[string]schema.PropertyType, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]schema.PropertyType, len(d.props[table]))
	for k, v := range d.props[table] {
		out[k] = v
	}
	return out, nil
}

// AddProperty records that table now declares a property of type t.
// MemoryDriver rows are untyped maps, so there is nothing further to
// materialize; tracking the declaration is what makes SyncSchema idempotent.
func (d *MemoryDriver) AddProperty(table, name string, t schema.PropertyType) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.props[table] == nil {
		d.props[table] = make(map[string]schema.PropertyType)
	}
	d.props[table][name] = t
	return nil
}

// TableIndexes reports the indexes already materialized on table.
func (d *MemoryDriver) TableIndexes(table string) (map[string]schema.Index, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]schema.Index, len(d.indexes[table]))
	for k, v := range d.indexes[table] {
		out[k] = v
	}
	return out, nil
}

// EnsureIndex records idx as present on table.
func (d *MemoryDriver) EnsureIndex(table string, idx schema.Index) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexes[table] == nil {
		d.indexes[table] = make(map[string]schema.Index)
	}
	d.indexes[table][idx.Name] = idx
	return nil
}

var _ Driver = (*MemoryDriver)(nil)
var _ CDCDriver = (*MemoryDriver)(nil)
var _ SchemaTarget = (*MemoryDriver)(nil)
