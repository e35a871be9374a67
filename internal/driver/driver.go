package driver

import (
	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
)

// Driver is the uniform CRUD + schema-sync contract every storage backend
// implements (spec.md §4.2). All methods return *BackendError when the
// underlying backend fails, so callers can always unwrap to the original
// cause.
type Driver interface {
	// Create inserts one row into table, returning the stored form
	// (including any generated keys). If listeners are registered for
	// table, the insert and its Change emission happen atomically.
	Create(table string, data map[string]interface{}) (map[string]interface{}, error)

	// Update sets the given fields on the row keyed by id, returning the
	// post-image, or (nil, false, nil) if no such row exists.
	Update(table string, id interface{}, data map[string]interface{}) (map[string]interface{}, bool, error)

	// Delete removes the row keyed by id (or by compound key if id is a
	// map), returning the pre-image that was removed, or (nil, false, nil)
	// if no such row existed.
	Delete(table string, id interface{}) (map[string]interface{}, bool, error)

	// Find returns every row matching query (full equality AND across all
	// query fields).
	Find(table string, query map[string]interface{}) ([]map[string]interface{}, error)

	// FindOne returns the first row matching query, or (nil, false, nil).
	FindOne(table string, query map[string]interface{}) (map[string]interface{}, bool, error)

	// FindOrFail is FindOne but returns ErrNotFound when nothing matches.
	FindOrFail(table string, query map[string]interface{}) (map[string]interface{}, error)

	// FindOrCreate atomically returns an existing match, or inserts data
	// and returns it. A Change row is emitted only when an insert actually
	// occurred (spec.md §4.6 Suppression).
	FindOrCreate(table string, query, data map[string]interface{}) (map[string]interface{}, error)

	// HasTable reports whether table exists on this backend.
	HasTable(table string) bool

	// SyncSchema idempotently materializes every Model of segment onto this
	// backend (spec.md §4.4).
	SyncSchema(segment schema.Segment) error

	// GetUsage returns a monotonic, backend-opaque utilization metric
	// (bytes, rows, whatever the backend can report cheaply). Only its
	// relative ordering across storages matters to the Storage Assigner.
	GetUsage() int64

	// SetContext sets the process-local context map attached to every
	// change emitted by this driver until replaced (spec.md §4.6, §5).
	SetContext(ctx map[string]interface{})
}

// CDCDriver widens Driver for backends capable of transactional change
// emission (spec.md §9 "Capability-based driver polymorphism").
type CDCDriver interface {
	Driver

	// RegisterChanges subscribes listener to table ("*" for every table on
	// this storage), lazily creating the change/subscription tables.
	RegisterChanges(table, listener string) error

	// GetChanges drains up to limit pending changes for listener, oldest
	// first. Returns an empty slice (not an error) if the change tables do
	// not exist — equivalent to "no listeners anywhere" (spec.md §4.6
	// Subscription tables).
	GetChanges(listener string, limit int) ([]model.Change, error)

	// AckChanges deletes the supplied change rows.
	AckChanges(changes []model.Change) error
}

// SchemaTarget is the narrow surface SyncSchema needs from a backend to
// materialize a segment's models: table/property/index existence checks and
// creation. The one-time bootstrap hook lives on schema.Model, not here.
// MemoryDriver and internal/boltdriver.Driver both implement it.
type SchemaTarget interface {
	HasTable(table string) bool
	CreateTable(table string) error
	TableProperties(table string) (map[string]schema.PropertyType, error)
	AddProperty(table, name string, t schema.PropertyType) error
	TableIndexes(table string) (map[string]schema.Index, error)
	EnsureIndex(table string, idx schema.Index) error
}
