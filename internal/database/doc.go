// Package database defines the two external contracts this core consumes
// but never implements (spec.md §1 Out of scope, §6 "Consumed from Database
// facade"): the Database Facade itself, and the Configure job the Topology
// Manager dispatches on first access to an unregistered segment.
//
// Fake is an in-process test double for both — used by internal/topology's
// own tests and by cmd/shardctl to bootstrap a topology without a real
// scheduling/dispatch layer wired in. It is a fixture, not part of the
// core's contract surface.
package database
