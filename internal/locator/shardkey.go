package locator

import (
	"fmt"
	"hash/crc32"
	"strconv"

	"github.com/dreamware/shardcore/internal/model"
	"github.com/dreamware/shardcore/internal/schema"
)

// extractKey pulls the shard key out of data, using class's registered
// key-extractor override if one exists, else falling back to data["id"]
// (spec.md §4.1 "Shard key computation", §9 "Key extractor as capability").
// class may be a raw segment string with no registered Model at all, in
// which case the default always applies.
func extractKey(registry schema.Registry, class string, data model.Row) interface{} {
	if mdl, ok := registry.GetClassModel(class); ok {
		return mdl.GetKey(data)
	}
	if data == nil {
		return nil
	}
	return data["id"]
}

// getShard computes the shard index for class/data under a topology of the
// given shard count, or nil if data carries no usable key (spec.md §4.1
// "Shard key computation"):
//
//   - A nil key returns (nil, nil) — caller does not filter by shard.
//   - If the key's string form round-trips through a base-10 integer parse,
//     that integer is used directly.
//   - Otherwise the unsigned 32-bit CRC32 of the string form is used. CRC32
//     already yields a value in [0, 2^32) so "absolute value" is automatic
//     once widened to int64.
func getShard(registry schema.Registry, class string, data model.Row, shards int) (*int, error) {
	key := extractKey(registry, class, data)
	if key == nil {
		return nil, nil
	}
	if shards <= 0 {
		return nil, fmt.Errorf("locator: topology for %q has non-positive shard count %d", class, shards)
	}

	s := fmt.Sprintf("%v", key)
	var n int64
	if parsed, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(parsed, 10) == s {
		n = parsed
	} else {
		n = int64(crc32.ChecksumIEEE([]byte(s)))
	}

	shard := int(((n % int64(shards)) + int64(shards)) % int64(shards))
	return &shard, nil
}
