package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreamware/shardcore/internal/model"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets <class>",
	Short: "Run GetBuckets for a class and print the resolved bucket set",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuckets,
}

func init() {
	bucketsCmd.Flags().Int64("id", 0, "Row id to route on (used as the shard key payload)")
	bucketsCmd.Flags().Bool("writable", true, "Request primary (vs. replica) buckets")
	bucketsCmd.Flags().Bool("multiple", true, "Allow more than one bucket to survive filtering")
}

func runBuckets(cmd *cobra.Command, args []string) error {
	class := args[0]
	id, _ := cmd.Flags().GetInt64("id")
	writable, _ := cmd.Flags().GetBool("writable")
	multiple, _ := cmd.Flags().GetBool("multiple")

	box, err := newSandbox(cmd)
	if err != nil {
		return err
	}
	defer box.close()

	var data model.Row
	if id != 0 {
		data = model.Row{"id": id}
	}

	buckets, err := box.locator.GetBuckets(class, data, writable, multiple)
	if err != nil {
		return err
	}

	for _, b := range buckets {
		fmt.Printf("name=%s version=%d shard=%d replica=%d storage=%d id=%d\n",
			b.Name, b.Version, b.Shard, b.Replica, b.Storage, b.ID)
	}
	stats := box.locator.Stats()
	fmt.Printf("--\nresolved=%d key_misses=%d\n", stats.Resolved, stats.KeyMisses)
	return nil
}
