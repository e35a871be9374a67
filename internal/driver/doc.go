// Package driver defines the uniform CRUD + schema-sync + change-log
// contract every storage backend must satisfy (spec.md §4.2), and ships one
// reference implementation, MemoryDriver, grounded on the teacher's
// internal/storage.Store + MemoryStore.
//
// # Capability variants
//
// Not every backend can express transactional change emission (spec.md
// §4.6). Two capability levels model this:
//
//	Driver          — the base CRUD + schema-sync + usage + setContext
//	                  contract every backend implements.
//	CDCDriver       — widens Driver with registerChanges/getChanges/
//	                  ackChanges, for backends that can emit change rows
//	                  inside the same transaction as the mutation that
//	                  produced them.
//
// The Bucket Locator (internal/locator) never type-switches on these: it
// only calls Driver methods. Only callers that need CDC — typically the
// Storage Assigner registering a replication listener, or an external
// drainer — type-assert a Driver to CDCDriver.
//
// # Schema synchronization
//
// SyncSchema (spec.md §4.4) is implemented once, generically, in
// schemasync.go against the narrow SchemaTarget interface; MemoryDriver and
// internal/boltdriver.Driver both implement SchemaTarget and delegate their
// SyncSchema method to the shared algorithm.
package driver
