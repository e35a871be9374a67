// Package schema defines the contract this core consumes from the Schema
// Registry (spec.md §6: "Consumed from Schema Registry") — the external
// collaborator that owns entity→segment→model→table/property/index
// metadata. The core never registers schema; it only reads it, so this
// package is contracts-first:
//
//   - Registry is the interface the locator, the topology manager, and the
//     storage assigner call against.
//   - Segment / Model / Property / Index are the metadata shapes those calls
//     return.
//   - Static is an in-memory reference implementation of Registry, used by
//     this module's own tests and by cmd/shardctl to drive the core without
//     a real external registry wired in. It is a fixture, not part of the
//     core's contract surface.
package schema
