package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamware/shardcore/internal/model"
)

func TestDefaultTopology(t *testing.T) {
	topo := model.DefaultTopology("orders")
	assert.Equal(t, "orders", topo.Name)
	assert.Equal(t, model.TopologyReady, topo.Status)
	assert.Equal(t, 1, topo.Shards)
	assert.Equal(t, 0, topo.Replicas)
	assert.Equal(t, 1, topo.BucketCount())
}

func TestTopologyBucketCount(t *testing.T) {
	topo := model.Topology{Shards: 4, Replicas: 2}
	assert.Equal(t, 12, topo.BucketCount())
}

func TestBootstrapBucket(t *testing.T) {
	b := model.BootstrapBucket()
	assert.Equal(t, model.BucketSegmentName, b.Name)
	assert.Equal(t, model.BootstrapBucketID, b.ID)
	assert.Equal(t, model.BootstrapStorageID, b.Storage)
	assert.True(t, b.Assigned())
	assert.True(t, b.Writable())
}

func TestBucketWritable(t *testing.T) {
	primary := model.Bucket{Replica: 0}
	replica := model.Bucket{Replica: 1}
	assert.True(t, primary.Writable())
	assert.False(t, replica.Writable())
}

func TestBucketAssigned(t *testing.T) {
	unassigned := model.Bucket{Storage: 0}
	assigned := model.Bucket{Storage: 5}
	assert.False(t, unassigned.Assigned())
	assert.True(t, assigned.Assigned())
}

func TestSubscriptionMatches(t *testing.T) {
	exact := model.Subscription{Listener: "repl", Table: "orders"}
	wildcard := model.Subscription{Listener: "repl", Table: "*"}

	assert.True(t, exact.Matches("orders"))
	assert.False(t, exact.Matches("invoices"))
	assert.True(t, wildcard.Matches("orders"))
	assert.True(t, wildcard.Matches("invoices"))
}
