package topology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardcore/internal/database"
	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
	"github.com/dreamware/shardcore/internal/topology"
)

func newRegistry() *schema.Static {
	reg := schema.NewStatic()
	reg.RegisterSegment(schema.Segment{
		Fullname: "orders",
		Models: []schema.Model{{
			Class:   "orders",
			Table:   "orders",
			Sharded: true,
		}, {
			Class:   "orders.unsharded",
			Table:   "orders_meta",
			Sharded: false,
		}},
	})
	return reg
}

func TestGetTopologyUnregisteredClassReturnsNil(t *testing.T) {
	reg := newRegistry()
	fake := database.NewFake(driver.NewMemoryDriver())
	mgr := topology.NewManager(reg, fake)

	topo, err := mgr.GetTopology("ghost", model.TopologyReady)
	require.NoError(t, err)
	assert.Nil(t, topo)
}

func TestGetTopologyUnshardedClassReturnsNil(t *testing.T) {
	reg := newRegistry()
	fake := database.NewFake(driver.NewMemoryDriver())
	mgr := topology.NewManager(reg, fake)

	topo, err := mgr.GetTopology("orders.unsharded", model.TopologyReady)
	require.NoError(t, err)
	assert.Nil(t, topo)
}

func TestGetTopologyDispatchesConfigureOnFirstAccess(t *testing.T) {
	reg := newRegistry()
	fake := database.NewFake(driver.NewMemoryDriver())
	fake.SetCannedTopology("orders", model.Topology{Name: "orders", Version: 1, Status: model.TopologyReady, Shards: 4})
	mgr := topology.NewManager(reg, fake)

	topo, err := mgr.GetTopology("orders", model.TopologyReady)
	require.NoError(t, err)
	require.NotNil(t, topo)
	assert.Equal(t, 4, topo.Shards)
	assert.Equal(t, 1, fake.ConfigureCalls("orders"))
}

func TestGetTopologyCachesAfterFirstDispatch(t *testing.T) {
	reg := newRegistry()
	fake := database.NewFake(driver.NewMemoryDriver())
	fake.SetCannedTopology("orders", model.Topology{Name: "orders", Version: 1, Status: model.TopologyReady, Shards: 4})
	mgr := topology.NewManager(reg, fake)

	_, err := mgr.GetTopology("orders", model.TopologyReady)
	require.NoError(t, err)
	_, err = mgr.GetTopology("orders", model.TopologyReady)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.ConfigureCalls("orders"))
}

func TestLookupByRawSegmentName(t *testing.T) {
	reg := newRegistry()
	fake := database.NewFake(driver.NewMemoryDriver())
	fake.SetCannedTopology("orders", model.Topology{Name: "orders", Version: 1, Status: model.TopologyReady, Shards: 4})
	mgr := topology.NewManager(reg, fake)

	assert.Nil(t, mgr.Lookup("orders", model.TopologyReady))

	_, err := mgr.GetTopology("orders", model.TopologyReady)
	require.NoError(t, err)

	got := mgr.Lookup("orders", model.TopologyReady)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.Shards)
}

func TestPromoteTransitionsStatus(t *testing.T) {
	reg := newRegistry()
	fake := database.NewFake(driver.NewMemoryDriver())
	fake.SetCannedTopology("orders", model.Topology{Name: "orders", Version: 1, Status: model.TopologyCreating, Shards: 4})
	mgr := topology.NewManager(reg, fake)

	_, err := mgr.GetTopology("orders", model.TopologyCreating)
	require.NoError(t, err)
	assert.Nil(t, mgr.Lookup("orders", model.TopologyReady))

	mgr.Promote("orders", model.TopologyCreating, model.TopologyReady)
	got := mgr.Lookup("orders", model.TopologyReady)
	require.NotNil(t, got)
	assert.Equal(t, model.TopologyReady, got.Status)
}
