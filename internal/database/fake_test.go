package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardcore/internal/database"
	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/model"
)

func TestFakeDriverReachesBootstrapStorage(t *testing.T) {
	bootstrap := driver.NewMemoryDriver()
	f := database.NewFake(bootstrap)

	d, ok := f.GetStorageDriver(model.BootstrapStorageID)
	require.True(t, ok)
	assert.Same(t, bootstrap, d)
	assert.Same(t, bootstrap, f.Driver())
}

func TestFakeRegisterStorageAndStorages(t *testing.T) {
	f := database.NewFake(driver.NewMemoryDriver())
	f.RegisterStorage(1, driver.NewMemoryDriver())
	f.RegisterStorage(2, driver.NewMemoryDriver())

	ids := f.Storages()
	assert.ElementsMatch(t, []int64{1, 2}, ids)

	_, ok := f.GetStorageDriver(3)
	assert.False(t, ok)
}

func TestFakeConfigureReturnsCannedTopology(t *testing.T) {
	f := database.NewFake(driver.NewMemoryDriver())
	canned := model.Topology{Name: "orders", Version: 1, Status: model.TopologyReady, Shards: 4}
	f.SetCannedTopology("orders", canned)

	got, err := f.Configure("orders")
	require.NoError(t, err)
	assert.Equal(t, canned, got)
	assert.Equal(t, 1, f.ConfigureCalls("orders"))
}

func TestFakeConfigureDefaultsWhenNoCannedTopology(t *testing.T) {
	f := database.NewFake(driver.NewMemoryDriver())
	got, err := f.Configure("invoices")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTopology("invoices"), got)
}

func TestFakeDispatchInvokesJob(t *testing.T) {
	f := database.NewFake(driver.NewMemoryDriver())
	f.SetCannedTopology("orders", model.Topology{Name: "orders", Status: model.TopologyReady})

	got, err := f.Dispatch(f, "orders")
	require.NoError(t, err)
	assert.Equal(t, "orders", got.Name)
}

func TestFakeCRUDDelegatesToBootstrap(t *testing.T) {
	f := database.NewFake(driver.NewMemoryDriver())

	row, err := f.FindOrCreate("bucket", model.Row{"name": "orders"}, model.Row{"storage": int64(0)})
	require.NoError(t, err)

	rows, err := f.Find("bucket", model.Row{"name": "orders"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	found, ok, err := f.FindOne("bucket", model.Row{"name": "orders"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, row["id"], found["id"])
}
