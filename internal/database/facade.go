package database

import (
	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/model"
)

// ConfigureJob is the external job the Topology Manager dispatches the
// first time a sharded, unregistered segment is accessed (spec.md §4.3
// step 3). It is responsible for creating the segment's Bucket rows before
// promoting the returned Topology to READY; it must be idempotent on
// (name, version) since concurrent first-access may dispatch it more than
// once (spec.md §5).
type ConfigureJob interface {
	Configure(name string) (model.Topology, error)
}

// Facade is the subset of the user-facing Database object this core
// consumes (spec.md §6 "Consumed from Database facade"). The core never
// implements this interface; it is defined here only so the core's own
// packages (and their tests) can depend on a name instead of an external
// import.
type Facade interface {
	CreateInstance(class string, row model.Row) (interface{}, error)
	Find(class string, query model.Row) ([]model.Row, error)
	FindOne(class string, query model.Row) (model.Row, bool, error)
	FindOrCreate(class string, query, data model.Row) (model.Row, error)
	FindOrFail(class string, query model.Row) (model.Row, error)
	Dispatch(job ConfigureJob, name string) (model.Topology, error)
	// Driver is the bootstrap driver holding the buckets table — the one
	// that breaks the buckets-table recursion (spec.md §4.1 special case).
	Driver() driver.Driver
	GetStorageDriver(storageID int64) (driver.Driver, bool)
}
