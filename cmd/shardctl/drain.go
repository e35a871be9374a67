package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/model"
)

var drainCmd = &cobra.Command{
	Use:   "drain <listener>",
	Short: "Drain and acknowledge pending changes for a listener across every storage",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrain,
}

func init() {
	drainCmd.Flags().Int("limit", 100, "Maximum changes to drain per storage")
	drainCmd.Flags().Bool("ack", true, "Acknowledge drained changes")
}

func runDrain(cmd *cobra.Command, args []string) error {
	listener := args[0]
	limit, _ := cmd.Flags().GetInt("limit")
	ack, _ := cmd.Flags().GetBool("ack")

	box, err := newSandbox(cmd)
	if err != nil {
		return err
	}
	defer box.close()

	total := 0
	for _, id := range append([]int64{model.BootstrapStorageID}, box.facade.Storages()...) {
		d, ok := box.facade.GetStorageDriver(id)
		if !ok {
			continue
		}
		cdc, ok := d.(driver.CDCDriver)
		if !ok {
			continue
		}

		changes, err := cdc.GetChanges(listener, limit)
		if err != nil {
			return fmt.Errorf("storage %d: %w", id, err)
		}
		for _, c := range changes {
			fmt.Printf("storage=%d table=%s action=%s seq=%d tuple=%v\n",
				id, c.Table, c.Action, c.Seq, c.Tuple)
		}
		total += len(changes)

		if ack && len(changes) > 0 {
			if err := cdc.AckChanges(changes); err != nil {
				return fmt.Errorf("storage %d: ack: %w", id, err)
			}
		}
	}
	fmt.Printf("--\ndrained=%d\n", total)
	return nil
}
