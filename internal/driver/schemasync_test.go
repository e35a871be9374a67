package driver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/schema"
)

func ordersSegment() schema.Segment {
	return schema.Segment{
		Fullname: "orders",
		Models: []schema.Model{{
			Class:   "orders",
			Table:   "orders",
			Sharded: true,
			Properties: []schema.Property{
				{Name: "id", Type: schema.TypeInt},
				{Name: "sum", Type: schema.TypeInt},
			},
			Indexes: []schema.Index{{Name: "by_id", Fields: []string{"id"}, Unique: true}},
			Bootstrap: func() error {
				return nil
			},
		}},
	}
}

func TestSyncSchemaCreatesTableOnce(t *testing.T) {
	d := driver.NewMemoryDriver()
	seg := ordersSegment()

	require.NoError(t, d.SyncSchema(seg))
	assert.True(t, d.HasTable("orders"))

	props, err := d.TableProperties("orders")
	require.NoError(t, err)
	assert.Contains(t, props, "sum")

	idx, err := d.TableIndexes("orders")
	require.NoError(t, err)
	assert.Contains(t, idx, "by_id")
}

func TestSyncSchemaIsIdempotent(t *testing.T) {
	d := driver.NewMemoryDriver()
	seg := ordersSegment()

	require.NoError(t, d.SyncSchema(seg))
	require.NoError(t, d.SyncSchema(seg))

	props, err := d.TableProperties("orders")
	require.NoError(t, err)
	assert.Len(t, props, 2)
}

func TestSyncSchemaRejectsInvalidPropertyType(t *testing.T) {
	d := driver.NewMemoryDriver()
	seg := schema.Segment{
		Fullname: "broken",
		Models: []schema.Model{{
			Table:      "broken",
			Properties: []schema.Property{{Name: "x", Type: "unmapped"}},
		}},
	}

	err := d.SyncSchema(seg)
	assert.ErrorIs(t, err, driver.ErrInvalidType)
}

func TestSyncSchemaRunsBootstrapOnlyOnFirstSync(t *testing.T) {
	d := driver.NewMemoryDriver()
	calls := 0
	seg := schema.Segment{
		Fullname: "orders",
		Models: []schema.Model{{
			Table: "orders",
			Bootstrap: func() error {
				calls++
				return nil
			},
		}},
	}

	require.NoError(t, d.SyncSchema(seg))
	require.NoError(t, d.SyncSchema(seg))
	assert.Equal(t, 1, calls)
}

func TestBackendErrorUnwraps(t *testing.T) {
	cause := assert.AnError
	wrapped := driver.WrapBackend("op", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, driver.WrapBackend("op", nil))
}
