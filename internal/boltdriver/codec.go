package boltdriver

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dreamware/shardcore/internal/model"
)

// metaBucket holds every piece of driver-level bookkeeping that isn't row
// data: per-table next-id counters, declared properties/indexes,
// subscriptions, the change seq counter, and the process-local change
// context.
var metaBucket = []byte("_meta")

func dataBucketName(table string) []byte { return []byte("t:" + table) }

func changeBucketName(listener string) []byte { return []byte("chg:" + listener) }

const (
	metaKeySubs  = "subs"
	metaKeyCtx   = "ctx"
	metaKeySeq   = "seq"
	metaKeyUsage = "usage"
)

func metaPropsKey(table string) string  { return "props:" + table }
func metaIndexKey(table string) string  { return "index:" + table }
func metaNextIDKey(table string) string { return "nextid:" + table }

func idKey(id interface{}) []byte {
	return []byte(fmt.Sprintf("%v", id))
}

func seqKey(seq int64) []byte {
	return []byte(fmt.Sprintf("%020d", seq))
}

func encodeRow(row model.Row) ([]byte, error) {
	return json.Marshal(row)
}

// decodeRow unmarshals a stored row and folds whole-valued float64s (every
// number JSON can produce) back to int64, so a round-tripped row compares
// equal to the int64 ids/shard/storage fields the rest of the core uses.
func decodeRow(buf []byte) (model.Row, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, err
	}
	return normalizeNumbers(raw), nil
}

// normalizeValue folds a value to the same numeric type decodeRow would
// produce for it — plain int and whole-valued float64 both become int64 —
// so a caller-supplied query value compares equal to a round-tripped row's
// value even though the two arrived as different Go types (spec.md §4.2:
// callers pass plain int literals; storage round-trips everything through
// JSON as float64).
func normalizeValue(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		if n == math.Trunc(n) {
			return int64(n)
		}
		return n
	default:
		return v
	}
}

func normalizeNumbers(row model.Row) model.Row {
	for k, v := range row {
		row[k] = normalizeValue(v)
	}
	return row
}

func copyRow(row model.Row) model.Row {
	out := make(model.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// matches compares row (already normalized by decodeRow) against query,
// normalizing each query value the same way first — otherwise a query built
// with plain int literals (as internal/locator and internal/assigner both
// do) would never equal the int64 a round-tripped row holds for the same
// field.
func matches(row, query model.Row) bool {
	for k, v := range query {
		if row[k] != normalizeValue(v) {
			return false
		}
	}
	return true
}
