package driver

import (
	"fmt"

	"github.com/dreamware/shardcore/internal/schema"
)

// SyncSchema materializes every Model in segment onto target, idempotently
// (spec.md §4.4):
//
//  1. Create the model's table if it doesn't exist.
//  2. Add every declared Property not yet present. schema.BackendType is
//     used only to reject types with no mapping; the target receives the
//     declared logical type, not the mapped backend type name.
//  3. Create every declared Index idempotently, by name.
//  4. After all models are synced, run each first-synced model's Bootstrap
//     hook exactly once.
//
// A partial failure leaves target in whatever state the sync reached; the
// algorithm is idempotent, so the next call resumes from there (spec.md §7).
func SyncSchema(target SchemaTarget, segment schema.Segment) error {
	var toBootstrap []schema.Model

	for _, m := range segment.Models {
		firstSync := !target.HasTable(m.Table)
		if firstSync {
			if err := target.CreateTable(m.Table); err != nil {
				return WrapBackend("create table "+m.Table, err)
			}
		}

		existing, err := target.TableProperties(m.Table)
		if err != nil {
			return WrapBackend("read properties of "+m.Table, err)
		}
		for _, prop := range m.Properties {
			if _, ok := existing[prop.Name]; ok {
				continue
			}
			if _, err := schema.BackendType(prop.Type); err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrInvalidType, m.Table, prop.Name, err)
			}
			if err := target.AddProperty(m.Table, prop.Name, prop.Type); err != nil {
				return WrapBackend(fmt.Sprintf("add property %s.%s", m.Table, prop.Name), err)
			}
		}

		existingIdx, err := target.TableIndexes(m.Table)
		if err != nil {
			return WrapBackend("read indexes of "+m.Table, err)
		}
		for _, idx := range m.Indexes {
			if _, ok := existingIdx[idx.Name]; ok {
				continue
			}
			if err := target.EnsureIndex(m.Table, idx); err != nil {
				return WrapBackend(fmt.Sprintf("ensure index %s.%s", m.Table, idx.Name), err)
			}
		}

		if firstSync && m.Bootstrap != nil {
			toBootstrap = append(toBootstrap, m)
		}
	}

	for _, m := range toBootstrap {
		if err := m.Bootstrap(); err != nil {
			return WrapBackend("bootstrap "+m.Table, err)
		}
	}
	return nil
}
