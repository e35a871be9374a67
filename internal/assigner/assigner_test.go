package assigner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardcore/internal/assigner"
	"github.com/dreamware/shardcore/internal/database"
	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
	"github.com/dreamware/shardcore/internal/topology"
)

func newFixture(t *testing.T) (*database.Fake, *schema.Static, *topology.Manager, *assigner.Assigner) {
	t.Helper()
	bootstrap := driver.NewMemoryDriver()
	fake := database.NewFake(bootstrap)
	fake.RegisterStorage(1, driver.NewMemoryDriver())
	fake.RegisterStorage(2, driver.NewMemoryDriver())

	for _, id := range []int64{1, 2} {
		_, err := bootstrap.Create("storage", model.Row{"id": id})
		require.NoError(t, err)
	}

	reg := schema.NewStatic()
	reg.RegisterSegment(schema.Segment{
		Fullname: "orders",
		Models: []schema.Model{{
			Class:   "orders",
			Table:   "orders",
			Sharded: true,
			Properties: []schema.Property{
				{Name: "id", Type: schema.TypeInt},
			},
		}},
	})

	mgr := topology.NewManager(reg, fake)
	a := assigner.New(fake, reg, mgr)
	return fake, reg, mgr, a
}

func TestAssignStoragePicksLeastUsed(t *testing.T) {
	fake, _, _, a := newFixture(t)

	d1, _ := fake.GetStorageDriver(1)
	d1.Create("orders", model.Row{"sum": 1})
	d1.Create("orders", model.Row{"sum": 2})

	row, err := fake.Driver().Create("bucket", model.Row{"name": "orders", "shard": 0, "replica": 0})
	require.NoError(t, err)
	bucket := model.Bucket{ID: row["id"].(int64), Name: "orders", Version: 0, Shard: 0, Replica: 0}
	assigned, err := a.AssignStorage(bucket, "orders")
	require.NoError(t, err)
	assert.EqualValues(t, 2, assigned.Storage)
}

func TestAssignStorageExcludesColocatedStorage(t *testing.T) {
	bootstrap := driver.NewMemoryDriver()
	fake := database.NewFake(bootstrap)
	fake.RegisterStorage(1, driver.NewMemoryDriver())
	fake.RegisterStorage(2, driver.NewMemoryDriver())
	for _, id := range []int64{1, 2} {
		bootstrap.Create("storage", model.Row{"id": id})
	}
	bootstrap.Create("bucket", model.Row{"name": "orders", "shard": 0, "replica": 0, "storage": int64(1)})
	row, err := bootstrap.Create("bucket", model.Row{"name": "orders", "shard": 1, "replica": 0})
	require.NoError(t, err)

	reg := schema.NewStatic()
	mgr := topology.NewManager(reg, fake)
	a := assigner.New(fake, reg, mgr)

	bucket := model.Bucket{ID: row["id"].(int64), Name: "orders", Shard: 1, Replica: 0}
	assigned, err := a.AssignStorage(bucket, "orders")
	require.NoError(t, err)
	assert.EqualValues(t, 2, assigned.Storage)
}

func TestAssignStorageFailsWhenAllColocated(t *testing.T) {
	bootstrap := driver.NewMemoryDriver()
	fake := database.NewFake(bootstrap)
	fake.RegisterStorage(1, driver.NewMemoryDriver())
	bootstrap.Create("storage", model.Row{"id": int64(1)})
	bootstrap.Create("bucket", model.Row{"name": "orders", "shard": 0, "replica": 0, "storage": int64(1)})

	reg := schema.NewStatic()
	mgr := topology.NewManager(reg, fake)
	a := assigner.New(fake, reg, mgr)

	bucket := model.Bucket{ID: 100, Name: "orders", Shard: 1, Replica: 0}
	_, err := a.AssignStorage(bucket, "orders")
	assert.ErrorIs(t, err, assigner.ErrNoAvailableStorage)
}

func TestAssignStorageIsIdempotentOnAlreadyAssignedBucket(t *testing.T) {
	fake, _, _, a := newFixture(t)

	bucket := model.Bucket{ID: 1, Name: "orders", Storage: 1}
	assigned, err := a.AssignStorage(bucket, "orders")
	require.NoError(t, err)
	assert.EqualValues(t, 1, assigned.Storage)

	d1, _ := fake.GetStorageDriver(1)
	assert.True(t, d1.HasTable("orders"))
}

func TestAssignStorageSyncsSchema(t *testing.T) {
	fake, _, _, a := newFixture(t)

	row, err := fake.Driver().Create("bucket", model.Row{"name": "orders"})
	require.NoError(t, err)
	bucket := model.Bucket{ID: row["id"].(int64), Name: "orders"}
	assigned, err := a.AssignStorage(bucket, "orders")
	require.NoError(t, err)

	d, ok := fake.GetStorageDriver(assigned.Storage)
	require.True(t, ok)
	assert.True(t, d.HasTable("orders"))
}

func TestAssignStorageRegistersReplicationForReplicatedPrimary(t *testing.T) {
	bootstrap := driver.NewMemoryDriver()
	fake := database.NewFake(bootstrap)
	fake.RegisterStorage(1, driver.NewMemoryDriver())
	bootstrap.Create("storage", model.Row{"id": int64(1)})

	reg := schema.NewStatic()
	reg.RegisterSegment(schema.Segment{
		Fullname: "orders",
		Models:   []schema.Model{{Class: "orders", Table: "orders", Sharded: true}},
	})
	mgr := topology.NewManager(reg, fake)
	fake.SetCannedTopology("orders", model.Topology{Name: "orders", Version: 1, Status: model.TopologyReady, Shards: 1, Replicas: 1})
	_, err := mgr.GetTopology("orders", model.TopologyReady)
	require.NoError(t, err)

	a := assigner.New(fake, reg, mgr)
	bucketRow, err := bootstrap.Create("bucket", model.Row{"name": "orders", "version": int64(1), "shard": 0, "replica": 0})
	require.NoError(t, err)
	bucket := model.Bucket{ID: bucketRow["id"].(int64), Name: "orders", Version: 1, Shard: 0, Replica: 0}
	_, err = a.AssignStorage(bucket, "orders")
	require.NoError(t, err)

	d, ok := fake.GetStorageDriver(1)
	require.True(t, ok)
	cdc, ok := d.(driver.CDCDriver)
	require.True(t, ok)

	_, err = d.Create("orders", model.Row{"sum": 1})
	require.NoError(t, err)

	changes, err := cdc.GetChanges("replication", 10)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}
