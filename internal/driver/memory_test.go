package driver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
)

func TestMemoryDriverCreateAssignsID(t *testing.T) {
	d := driver.NewMemoryDriver()

	row, err := d.Create("orders", model.Row{"sum": 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, row["id"])

	row2, err := d.Create("orders", model.Row{"sum": 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, row2["id"])
}

func TestMemoryDriverCreateHonorsExplicitID(t *testing.T) {
	d := driver.NewMemoryDriver()
	row, err := d.Create("orders", model.Row{"id": int64(42), "sum": 1})
	require.NoError(t, err)
	assert.EqualValues(t, 42, row["id"])
}

func TestMemoryDriverUpdateMissingRow(t *testing.T) {
	d := driver.NewMemoryDriver()
	_, ok, err := d.Update("orders", int64(1), model.Row{"sum": 1})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryDriverUpdateMergesFields(t *testing.T) {
	d := driver.NewMemoryDriver()
	created, err := d.Create("orders", model.Row{"sum": 1, "note": "x"})
	require.NoError(t, err)

	updated, ok, err := d.Update("orders", created["id"], model.Row{"sum": 2})
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 2, updated["sum"])
	assert.Equal(t, "x", updated["note"])
}

func TestMemoryDriverDeleteByID(t *testing.T) {
	d := driver.NewMemoryDriver()
	created, err := d.Create("orders", model.Row{"sum": 1})
	require.NoError(t, err)

	removed, ok, err := d.Delete("orders", created["id"])
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 1, removed["sum"])

	_, ok, err = d.Delete("orders", created["id"])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryDriverDeleteByCompoundKey(t *testing.T) {
	d := driver.NewMemoryDriver()
	_, err := d.Create("bucket", model.Row{"name": "orders", "shard": 0, "replica": 0})
	require.NoError(t, err)

	removed, ok, err := d.Delete("bucket", model.Row{"name": "orders", "shard": 0, "replica": 0})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "orders", removed["name"])
}

func TestMemoryDriverFindAndFindOne(t *testing.T) {
	d := driver.NewMemoryDriver()
	d.Create("orders", model.Row{"region": "us"})
	d.Create("orders", model.Row{"region": "us"})
	d.Create("orders", model.Row{"region": "eu"})

	rows, err := d.Find("orders", model.Row{"region": "us"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	row, ok, err := d.FindOne("orders", model.Row{"region": "eu"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "eu", row["region"])
}

func TestMemoryDriverFindOrFailReturnsErrNotFound(t *testing.T) {
	d := driver.NewMemoryDriver()
	_, err := d.FindOrFail("orders", model.Row{"id": int64(99)})
	assert.ErrorIs(t, err, driver.ErrNotFound)
}

func TestMemoryDriverFindOrCreateIsIdempotent(t *testing.T) {
	d := driver.NewMemoryDriver()

	first, err := d.FindOrCreate("bucket", model.Row{"name": "orders", "shard": 0}, model.Row{"storage": int64(0)})
	require.NoError(t, err)

	second, err := d.FindOrCreate("bucket", model.Row{"name": "orders", "shard": 0}, model.Row{"storage": int64(7)})
	require.NoError(t, err)

	assert.Equal(t, first["id"], second["id"])
	assert.EqualValues(t, 0, second["storage"])
}

func TestMemoryDriverGetUsageCountsInserts(t *testing.T) {
	d := driver.NewMemoryDriver()
	assert.EqualValues(t, 0, d.GetUsage())
	d.Create("orders", model.Row{})
	d.Create("orders", model.Row{})
	assert.EqualValues(t, 2, d.GetUsage())
}

func TestMemoryDriverChangeFeedRoundTrip(t *testing.T) {
	d := driver.NewMemoryDriver()
	require.NoError(t, d.RegisterChanges("orders", "repl"))

	row, err := d.Create("orders", model.Row{"sum": 1})
	require.NoError(t, err)

	changes, err := d.GetChanges("repl", 10)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, model.ActionCreate, changes[0].Action)
	assert.Equal(t, row["id"], changes[0].Tuple["id"])

	require.NoError(t, d.AckChanges(changes))
	drained, err := d.GetChanges("repl", 10)
	require.NoError(t, err)
	assert.Empty(t, drained)
}

func TestMemoryDriverFindOrCreateSuppressesChangeOnHit(t *testing.T) {
	d := driver.NewMemoryDriver()
	require.NoError(t, d.RegisterChanges("bucket", "repl"))

	_, err := d.FindOrCreate("bucket", model.Row{"name": "orders"}, model.Row{})
	require.NoError(t, err)
	_, err = d.FindOrCreate("bucket", model.Row{"name": "orders"}, model.Row{})
	require.NoError(t, err)

	changes, err := d.GetChanges("repl", 10)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestMemoryDriverSchemaTargetRoundTrip(t *testing.T) {
	d := driver.NewMemoryDriver()
	assert.False(t, d.HasTable("orders"))

	require.NoError(t, d.CreateTable("orders"))
	assert.True(t, d.HasTable("orders"))

	require.NoError(t, d.AddProperty("orders", "sum", "int"))
	props, err := d.TableProperties("orders")
	require.NoError(t, err)
	assert.Contains(t, props, "sum")

	require.NoError(t, d.EnsureIndex("orders", schema.Index{Name: "by_id", Fields: []string{"id"}, Unique: true}))
	idx, err := d.TableIndexes("orders")
	require.NoError(t, err)
	assert.Contains(t, idx, "by_id")
}
