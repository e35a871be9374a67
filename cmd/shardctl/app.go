package main

import (
	"github.com/spf13/cobra"

	"github.com/dreamware/shardcore/internal/assigner"
	"github.com/dreamware/shardcore/internal/boltdriver"
	"github.com/dreamware/shardcore/internal/database"
	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/locator"
	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
	"github.com/dreamware/shardcore/internal/topology"
)

// sandbox wires the full core stack against a Fake facade, standing in for
// the external Database this core normally runs behind (spec.md §1, §6).
// It registers one demo segment, "orders", sharded on an integer id, so
// `buckets`/`topology`/`drain` have something real to exercise end to end.
type sandbox struct {
	facade     *database.Fake
	registry   *schema.Static
	topologies *topology.Manager
	assigner   *assigner.Assigner
	locator    *locator.Locator
	bootstrap  driver.Driver
}

const ordersSegment = "orders"

func newSandbox(cmd *cobra.Command) (*sandbox, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	shards, _ := cmd.Flags().GetInt("shards")
	replicas, _ := cmd.Flags().GetInt("replicas")

	bootstrap, err := openBootstrap(dbPath)
	if err != nil {
		return nil, err
	}

	facade := database.NewFake(bootstrap)
	if err := seedStorages(facade, bootstrap); err != nil {
		return nil, err
	}

	registry := schema.NewStatic()
	registry.RegisterSegment(schema.Segment{
		Fullname: ordersSegment,
		Models: []schema.Model{{
			Class:   ordersSegment,
			Table:   ordersSegment,
			Sharded: true,
			Properties: []schema.Property{
				{Name: "id", Type: schema.TypeInt},
				{Name: "sum", Type: schema.TypeInt},
			},
			Indexes: []schema.Index{{Name: "by_id", Fields: []string{"id"}, Unique: true}},
		}},
	})

	if shards > 0 {
		facade.SetCannedTopology(ordersSegment, model.Topology{
			Name:     ordersSegment,
			Version:  1,
			Status:   model.TopologyReady,
			Shards:   shards,
			Replicas: replicas,
		})
	}

	topologies := topology.NewManager(registry, facade)
	a := assigner.New(facade, registry, topologies)
	loc := locator.New(facade, registry, topologies, a)

	return &sandbox{
		facade:     facade,
		registry:   registry,
		topologies: topologies,
		assigner:   a,
		locator:    loc,
		bootstrap:  bootstrap,
	}, nil
}

// openBootstrap returns a bbolt-backed driver at path, or an in-memory one
// if path is empty.
func openBootstrap(path string) (driver.Driver, error) {
	if path == "" {
		return driver.NewMemoryDriver(), nil
	}
	return boltdriver.Open(path)
}

// seedStorages registers two demo storages (ids 1 and 2) both in the
// bootstrap driver's storage table and in the facade's driver lookup, so
// the Storage Assigner's least-used pick has real candidates to choose
// between.
func seedStorages(facade *database.Fake, bootstrap driver.Driver) error {
	for _, id := range []int64{1, 2} {
		if _, err := bootstrap.Create("storage", model.Row{"id": id, "kind": "memory"}); err != nil {
			return err
		}
		facade.RegisterStorage(id, driver.NewMemoryDriver())
	}
	return nil
}

// close releases the bootstrap driver's resources (a bbolt file, if one
// was opened).
func (s *sandbox) close() {
	if closer, ok := s.bootstrap.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
