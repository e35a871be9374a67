package assigner

import (
	"errors"
	"fmt"

	"github.com/dreamware/shardcore/internal/model"
)

// ErrNoAvailableStorage is returned when every known Storage already hosts
// a bucket of the same logical name — no candidate can host this one
// without violating the one-bucket-per-name-per-storage invariant
// (spec.md §3 invariant 2, §7).
var ErrNoAvailableStorage = errors.New("assigner: no available storage")

// errStorageDriverMissing reports that a bucket references a storage id
// the Facade has no registered driver for — a configuration error, since
// every row in the storage table is expected to have a live driver behind
// it (spec.md §6).
func errStorageDriverMissing(id int64) error {
	return fmt.Errorf("assigner: no driver registered for storage %d", id)
}

// errBucketRowMissing reports that persistStorage's Update found no bucket
// row for id — the bootstrap driver's bucket table is out of sync with the
// Bucket the caller is trying to assign, so the assignment must not be
// silently dropped (spec.md §3 invariant 3).
func errBucketRowMissing(id int64) error {
	return fmt.Errorf("assigner: no bucket row for id %v to persist storage assignment", id)
}

const (
	bucketTable  = model.BucketSegmentName
	storageTable = "storage"

	// replicationListener is the well-known listener name the assigner
	// registers on every table of a segment once that segment's topology
	// declares replicas (spec.md §4.5 step 4).
	replicationListener = "replication"
)
