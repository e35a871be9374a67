package driver

import "github.com/dreamware/shardcore/internal/schema"

// PlainMemoryDriver models a backend that cannot express transactional
// change emission (spec.md §4.2 capability note; §9 "Capability-based
// driver polymorphism"). It reuses MemoryDriver for every CRUD and
// schema-sync operation but deliberately does NOT expose
// RegisterChanges/GetChanges/AckChanges — so a type assertion to CDCDriver
// fails at the type-system level, not just at the no-op-reject level. A
// mutation on PlainMemoryDriver always takes the fast path of spec.md §4.6
// because it can never have any listeners.
type PlainMemoryDriver struct {
	backing *MemoryDriver
}

// NewPlainMemoryDriver returns a Driver with CDC support permanently
// absent.
func NewPlainMemoryDriver() *PlainMemoryDriver {
	return &PlainMemoryDriver{backing: NewMemoryDriver()}
}

func (d *PlainMemoryDriver) Create(table string, data map[string]interface{}) (map[string]interface{}, error) {
	return d.backing.Create(table, data)
}

func (d *PlainMemoryDriver) Update(table string, id interface{}, data map[string]interface{}) (map[string]interface{}, bool, error) {
	return d.backing.Update(table, id, data)
}

func (d *PlainMemoryDriver) Delete(table string, id interface{}) (map[string]interface{}, bool, error) {
	return d.backing.Delete(table, id)
}

func (d *PlainMemoryDriver) Find(table string, query map[string]interface{}) ([]map[string]interface{}, error) {
	return d.backing.Find(table, query)
}

func (d *PlainMemoryDriver) FindOne(table string, query map[string]interface{}) (map[string]interface{}, bool, error) {
	return d.backing.FindOne(table, query)
}

func (d *PlainMemoryDriver) FindOrFail(table string, query map[string]interface{}) (map[string]interface{}, error) {
	return d.backing.FindOrFail(table, query)
}

func (d *PlainMemoryDriver) FindOrCreate(table string, query, data map[string]interface{}) (map[string]interface{}, error) {
	return d.backing.FindOrCreate(table, query, data)
}

func (d *PlainMemoryDriver) HasTable(table string) bool {
	return d.backing.HasTable(table)
}

func (d *PlainMemoryDriver) SyncSchema(segment schema.Segment) error {
	return d.backing.SyncSchema(segment)
}

func (d *PlainMemoryDriver) GetUsage() int64 {
	return d.backing.GetUsage()
}

func (d *PlainMemoryDriver) SetContext(ctx map[string]interface{}) {
	// No listeners can ever exist on this backend, so the context would
	// never be read; kept as a no-op so callers that always call
	// SetContext don't need to special-case plain backends.
}

var _ Driver = (*PlainMemoryDriver)(nil)
