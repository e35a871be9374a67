package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreamware/shardcore/internal/model"
)

var topologyCmd = &cobra.Command{
	Use:   "topology <name>",
	Short: "Resolve and print a segment's topology and its bucket rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runTopology,
}

func runTopology(cmd *cobra.Command, args []string) error {
	name := args[0]

	box, err := newSandbox(cmd)
	if err != nil {
		return err
	}
	defer box.close()

	topo, err := box.topologies.GetTopology(name, model.TopologyReady)
	if err != nil {
		return err
	}
	if topo == nil {
		fmt.Printf("no topology registered for %q\n", name)
		return nil
	}
	fmt.Printf("name=%s version=%d status=%s shards=%d replicas=%d\n",
		topo.Name, topo.Version, topo.Status, topo.Shards, topo.Replicas)

	rows, err := box.bootstrap.Find(model.BucketSegmentName, model.Row{"name": name})
	if err != nil {
		return err
	}
	fmt.Printf("-- %d bucket row(s)\n", len(rows))
	for _, row := range rows {
		fmt.Printf("%+v\n", row)
	}
	return nil
}
