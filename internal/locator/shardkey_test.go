package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
)

func TestGetShardNilKeyReturnsNil(t *testing.T) {
	reg := schema.NewStatic()
	shard, err := getShard(reg, "orders", nil, 4)
	require.NoError(t, err)
	assert.Nil(t, shard)
}

func TestGetShardIntegerKeyUsesValueDirectly(t *testing.T) {
	reg := schema.NewStatic()
	shard, err := getShard(reg, "orders", model.Row{"id": 9}, 4)
	require.NoError(t, err)
	require.NotNil(t, shard)
	assert.Equal(t, 1, *shard)
}

func TestGetShardStringKeyUsesCRC32(t *testing.T) {
	// CRC32(IEEE) of "abc" is 0x352441C2 == 891568066; 891568066 % 4 == 2.
	reg := schema.NewStatic()
	shard, err := getShard(reg, "orders", model.Row{"id": "abc"}, 4)
	require.NoError(t, err)
	require.NotNil(t, shard)
	assert.Equal(t, 2, *shard)
}

func TestGetShardRejectsNonPositiveShardCount(t *testing.T) {
	reg := schema.NewStatic()
	_, err := getShard(reg, "orders", model.Row{"id": 1}, 0)
	assert.Error(t, err)
}

func TestGetShardUsesModelKeyExtractor(t *testing.T) {
	reg := schema.NewStatic()
	reg.RegisterSegment(schema.Segment{
		Fullname: "orders",
		Models: []schema.Model{{
			Class: "orders",
			Table: "orders",
			KeyExtractor: func(data map[string]interface{}) interface{} {
				return data["tenant"]
			},
		}},
	})

	shard, err := getShard(reg, "orders", model.Row{"tenant": 5}, 4)
	require.NoError(t, err)
	require.NotNil(t, shard)
	assert.Equal(t, 1, *shard)
}
