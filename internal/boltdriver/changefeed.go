package boltdriver

import (
	"encoding/json"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/dreamware/shardcore/internal/model"
)

// listenersLocked returns the sorted, de-duplicated set of listeners
// subscribed to table, either directly or via the "*" wildcard (spec.md
// §4.6). Must run inside an open bbolt transaction.
func listenersLocked(tx *bolt.Tx, table string) ([]string, error) {
	subs, err := loadSubsLocked(tx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, s := range subs {
		if s.Matches(table) {
			seen[s.Listener] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for listener := range seen {
		out = append(out, listener)
	}
	sort.Strings(out)
	return out, nil
}

func loadSubsLocked(tx *bolt.Tx) ([]model.Subscription, error) {
	b := tx.Bucket(metaBucket)
	buf := b.Get([]byte(metaKeySubs))
	if buf == nil {
		return nil, nil
	}
	var subs []model.Subscription
	if err := json.Unmarshal(buf, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func saveSubsLocked(tx *bolt.Tx, subs []model.Subscription) error {
	buf, err := json.Marshal(subs)
	if err != nil {
		return err
	}
	return tx.Bucket(metaBucket).Put([]byte(metaKeySubs), buf)
}

func loadContextLocked(tx *bolt.Tx) (model.Row, error) {
	buf := tx.Bucket(metaBucket).Get([]byte(metaKeyCtx))
	if buf == nil {
		return model.Row{}, nil
	}
	var ctx model.Row
	if err := json.Unmarshal(buf, &ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

func nextSeqLocked(tx *bolt.Tx, n int) (int64, error) {
	b := tx.Bucket(metaBucket)
	var seq int64
	if buf := b.Get([]byte(metaKeySeq)); buf != nil {
		if err := json.Unmarshal(buf, &seq); err != nil {
			return 0, err
		}
	}
	seq += int64(n)
	buf, err := json.Marshal(seq)
	if err != nil {
		return 0, err
	}
	if err := b.Put([]byte(metaKeySeq), buf); err != nil {
		return 0, err
	}
	return seq, nil
}

// emitLocked builds one Change per listener subscribed to table, advancing
// the durable seq counter, and persists each row into its listener's change
// bucket — all inside the caller's transaction, so the mutation and its
// Change rows commit or roll back together (spec.md §4.6 steps 2-3).
func emitLocked(tx *bolt.Tx, table string, action model.ChangeAction, tuple model.Row) ([]model.Change, error) {
	listeners, err := listenersLocked(tx, table)
	if err != nil || len(listeners) == 0 {
		return nil, err
	}

	ctx, err := loadContextLocked(tx)
	if err != nil {
		return nil, err
	}
	last, err := nextSeqLocked(tx, len(listeners))
	if err != nil {
		return nil, err
	}
	first := last - int64(len(listeners)) + 1

	changes := make([]model.Change, 0, len(listeners))
	for i, listener := range listeners {
		c := model.Change{
			Seq:      first + int64(i),
			Listener: listener,
			Table:    table,
			Action:   action,
			Tuple:    copyRow(tuple),
			Context:  copyRow(ctx),
		}
		if err := appendChangeLocked(tx, c); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, nil
}

func appendChangeLocked(tx *bolt.Tx, c model.Change) error {
	b, err := tx.CreateBucketIfNotExists(changeBucketName(c.Listener))
	if err != nil {
		return err
	}
	buf, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return b.Put(seqKey(c.Seq), buf)
}
