package schema

import "fmt"

// PropertyType is the logical (backend-agnostic) type a Model declares for
// one of its properties. BackendType names the native type for each;
// driver.SyncSchema uses it only to reject unmapped types, and the drivers
// in this module record the logical type as is.
type PropertyType string

const (
	TypeInt    PropertyType = "int"
	TypeString PropertyType = "string"
	TypeArray  PropertyType = "array"
)

// BackendType maps a declared PropertyType to the backend-native type name a
// Driver should create the column/field as (spec.md §4.4 step 2):
//
//	int    -> unsigned integer
//	string -> string
//	array  -> variant
//
// Any other declared type is a fatal schema error (ErrInvalidType-class
// failure); callers report it via driver.ErrInvalidType.
func BackendType(t PropertyType) (string, error) {
	switch t {
	case TypeInt:
		return "unsigned integer", nil
	case TypeString:
		return "string", nil
	case TypeArray:
		return "variant", nil
	default:
		return "", fmt.Errorf("schema: unmapped property type %q", t)
	}
}

// Property is one declared field of a Model.
type Property struct {
	Name string
	Type PropertyType
}

// Index is one declared index of a Model, created idempotently by name.
type Index struct {
	Name   string
	Fields []string
	Unique bool
}

// Model is the schema-level description of one entity class: its table
// name, whether it is sharded, its declared properties and indexes, and
// whether it wants a one-time bootstrap hook run after first sync.
type Model struct {
	// Class is the registry key this model is addressed by (spec.md §6
	// getClassModel(class)).
	Class string
	// Table is the physical table/collection name this model materializes
	// onto.
	Table string
	// KeyExtractor, if non-nil, overrides the default getKey(data) rule of
	// extracting data["id"] (spec.md §4.1, §9 "Key extractor as
	// capability"). Returns nil when data carries no usable key.
	KeyExtractor func(data map[string]interface{}) interface{}
	// CastStorage, if non-nil, overrides the default least-used storage
	// pick performed by the Storage Assigner (spec.md §4.5 step 1).
	CastStorage func(candidates []int64) (int64, error)
	// Bootstrap, if non-nil, is invoked exactly once per first-sync of this
	// model's table (spec.md §4.4 step 4).
	Bootstrap func() error

	Properties []Property
	Indexes    []Index
	Sharded    bool
}

// IsSharded reports whether this model's entities route through a Topology
// at all; unsharded entities never consult the Topology Manager.
func (m Model) IsSharded() bool { return m.Sharded }

// GetKey extracts the shard key from a payload using the model's
// KeyExtractor override if present, falling back to data["id"].
func (m Model) GetKey(data map[string]interface{}) interface{} {
	if m.KeyExtractor != nil {
		return m.KeyExtractor(data)
	}
	if data == nil {
		return nil
	}
	return data["id"]
}

// Segment is a named group of Models sharing a lifecycle and a bucket set.
type Segment struct {
	Fullname string
	Models   []Model
}

// Tables returns every table name declared by this segment's models, in
// declaration order.
func (s Segment) Tables() []string {
	tables := make([]string, 0, len(s.Models))
	for _, m := range s.Models {
		tables = append(tables, m.Table)
	}
	return tables
}

// Registry is the contract this core consumes from the external Schema
// Registry (spec.md §6). Implementations are expected to be read-mostly and
// safe for concurrent use; the core never mutates registry state.
type Registry interface {
	// GetClassTable returns the physical table name for a registered class.
	GetClassTable(class string) (string, bool)
	// GetClassSegment returns the segment a class belongs to.
	GetClassSegment(class string) (Segment, bool)
	// GetClassModel returns the Model metadata for a registered class.
	GetClassModel(class string) (Model, bool)
	// HasSegment reports whether a segment with this name is registered.
	HasSegment(name string) bool
	// GetSegmentByName returns the segment with this name, creating an
	// empty one when create is true and none exists yet.
	GetSegmentByName(name string, create bool) (Segment, bool)
}
