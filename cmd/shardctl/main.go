// Command shardctl is an inspection CLI over the sharding/CDC core: it
// wires up a self-contained sandbox (an in-memory or bbolt-backed
// bootstrap storage, a Static schema registry, a Topology Manager, a
// Storage Assigner, and a Bucket Locator) and exposes the core's
// operations as subcommands, the way cmd/node and cmd/coordinator expose
// torua's runtime over HTTP instead.
//
// Architecture:
//
//	┌──────────────────────────────────────────┐
//	│                shardctl                    │
//	├──────────────────────────────────────────┤
//	│  Commands:                                │
//	│    buckets <class>   - run getBuckets     │
//	│    topology <name>   - dump topology      │
//	│    drain <listener>  - drain+ack changes  │
//	├──────────────────────────────────────────┤
//	│  Sandbox:                                  │
//	│    bootstrap driver  - buckets/storage     │
//	│    schema.Static      - registered classes │
//	│    topology.Manager   - lazy provisioning  │
//	│    assigner.Assigner  - storage placement  │
//	│    locator.Locator    - routing entrypoint │
//	└──────────────────────────────────────────┘
//
// Example usage:
//
//	shardctl buckets orders --id 7
//	shardctl topology orders
//	shardctl drain repl --limit 10
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dreamware/shardcore/internal/corelog"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shardctl",
	Short: "Inspect the sharding locator and CDC core",
	Long: `shardctl drives the core sharding/CDC engine directly, without a
real Database facade behind it, so its routing, topology, and change-feed
behavior can be exercised and inspected from the command line.`,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("db", "", "Path to a bbolt file for the bootstrap storage (default: in-memory)")
	rootCmd.PersistentFlags().Int("shards", 1, "Shard count for the sandbox's default topology")
	rootCmd.PersistentFlags().Int("replicas", 0, "Replica count for the sandbox's default topology")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(topologyCmd)
	rootCmd.AddCommand(drainCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")
	corelog.Init(corelog.Config{
		Level:      corelog.Level(level),
		JSONOutput: jsonOut,
	})
}
