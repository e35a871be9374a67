// Package corelog provides the structured logger shared by every subsystem
// of the sharding core. It wraps github.com/rs/zerolog the way the retrieved
// cuemby/warren repo wraps it in pkg/log: one process-wide Logger, a Config
// to initialize it, and WithComponent helpers so each subsystem's log lines
// carry a "component" field instead of being told apart by message prefix.
package corelog
