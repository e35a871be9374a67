package boltdriver

import (
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	coredriver "github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/model"
)

// Driver is a CDCDriver backed by a single bbolt file. It is the durable
// counterpart to internal/driver.MemoryDriver: same contract, same
// transactional "mutate + emit" shape, persisted to disk instead of held
// only in process memory.
type Driver struct {
	db *bolt.DB
}

// Open opens (creating if absent) a bbolt file at path and returns a Driver
// ready to serve as a Storage backend.
func Open(path string) (*Driver, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, coredriver.WrapBackend("open "+path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(metaBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, coredriver.WrapBackend("initialize "+path, err)
	}
	return &Driver{db: db}, nil
}

// Close releases the underlying bbolt file.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Create inserts data into table, minting an int64 autoincrement "id" if
// the caller didn't supply one — the same id scheme MemoryDriver uses, so
// a Bucket's int64 ID field round-trips through either backend — emitting
// a Change for every listener subscribed to table inside the same bbolt
// transaction as the insert.
func (d *Driver) Create(table string, data model.Row) (model.Row, error) {
	var result model.Row
	err := d.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(dataBucketName(table))
		if err != nil {
			return err
		}
		row := copyRow(data)
		if id, ok := row["id"]; !ok || id == nil {
			next, err := nextIDLocked(tx, table)
			if err != nil {
				return err
			}
			row["id"] = next
		}
		buf, err := encodeRow(row)
		if err != nil {
			return err
		}
		if err := b.Put(idKey(row["id"]), buf); err != nil {
			return err
		}
		if err := bumpUsageLocked(tx, 1); err != nil {
			return err
		}
		if _, err := emitLocked(tx, table, model.ActionCreate, row); err != nil {
			return err
		}
		result = copyRow(row)
		return nil
	})
	if err != nil {
		return nil, coredriver.WrapBackend("create "+table, err)
	}
	return result, nil
}

// Update sets the given fields on the row keyed by id.
func (d *Driver) Update(table string, id interface{}, data model.Row) (model.Row, bool, error) {
	var (
		result model.Row
		found  bool
	)
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(dataBucketName(table))
		if b == nil {
			return nil
		}
		buf := b.Get(idKey(id))
		if buf == nil {
			return nil
		}
		row, err := decodeRow(buf)
		if err != nil {
			return err
		}
		for k, v := range data {
			row[k] = v
		}
		out, err := encodeRow(row)
		if err != nil {
			return err
		}
		if err := b.Put(idKey(id), out); err != nil {
			return err
		}
		if _, err := emitLocked(tx, table, model.ActionUpdate, row); err != nil {
			return err
		}
		found = true
		result = copyRow(row)
		return nil
	})
	if err != nil {
		return nil, false, coredriver.WrapBackend("update "+table, err)
	}
	return result, found, nil
}

// Delete removes the row keyed by id, or the first row matching every
// field of id when id is itself a compound-key map.
func (d *Driver) Delete(table string, id interface{}) (model.Row, bool, error) {
	var (
		result model.Row
		found  bool
	)
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(dataBucketName(table))
		if b == nil {
			return nil
		}

		if compound, ok := id.(model.Row); ok {
			c := b.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				row, err := decodeRow(v)
				if err != nil {
					return err
				}
				if matches(row, compound) {
					if err := b.Delete(k); err != nil {
						return err
					}
					if _, err := emitLocked(tx, table, model.ActionDelete, row); err != nil {
						return err
					}
					found = true
					result = row
					return nil
				}
			}
			return nil
		}

		buf := b.Get(idKey(id))
		if buf == nil {
			return nil
		}
		row, err := decodeRow(buf)
		if err != nil {
			return err
		}
		if err := b.Delete(idKey(id)); err != nil {
			return err
		}
		if _, err := emitLocked(tx, table, model.ActionDelete, row); err != nil {
			return err
		}
		found = true
		result = row
		return nil
	})
	if err != nil {
		return nil, false, coredriver.WrapBackend("delete "+table, err)
	}
	return result, found, nil
}

// Find returns every row in table matching query (full-equality AND).
func (d *Driver) Find(table string, query model.Row) ([]model.Row, error) {
	var out []model.Row
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(dataBucketName(table))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			row, err := decodeRow(v)
			if err != nil {
				return err
			}
			if matches(row, query) {
				out = append(out, row)
			}
			return nil
		})
	})
	if err != nil {
		return nil, coredriver.WrapBackend("find "+table, err)
	}
	return out, nil
}

// FindOne returns the first row matching query, or (nil, false, nil).
func (d *Driver) FindOne(table string, query model.Row) (model.Row, bool, error) {
	var (
		result model.Row
		found  bool
	)
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(dataBucketName(table))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			row, err := decodeRow(v)
			if err != nil {
				return err
			}
			if matches(row, query) {
				result, found = row, true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, coredriver.WrapBackend("find "+table, err)
	}
	return result, found, nil
}

// FindOrFail is FindOne but returns coredriver.ErrNotFound on a miss.
func (d *Driver) FindOrFail(table string, query model.Row) (model.Row, error) {
	row, ok, err := d.FindOne(table, query)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, coredriver.ErrNotFound
	}
	return row, nil
}

// FindOrCreate atomically returns an existing match or inserts data,
// emitting a Change only when the insert branch runs (spec.md §4.6
// Suppression).
func (d *Driver) FindOrCreate(table string, query, data model.Row) (model.Row, error) {
	var result model.Row
	err := d.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(dataBucketName(table))
		if err != nil {
			return err
		}

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			row, err := decodeRow(v)
			if err != nil {
				return err
			}
			if matches(row, query) {
				result = row
				return nil
			}
		}

		row := copyRow(data)
		for k, v := range query {
			if _, ok := row[k]; !ok {
				row[k] = v
			}
		}
		if id, ok := row["id"]; !ok || id == nil {
			next, err := nextIDLocked(tx, table)
			if err != nil {
				return err
			}
			row["id"] = next
		}
		buf, err := encodeRow(row)
		if err != nil {
			return err
		}
		if err := b.Put(idKey(row["id"]), buf); err != nil {
			return err
		}
		if err := bumpUsageLocked(tx, 1); err != nil {
			return err
		}
		if _, err := emitLocked(tx, table, model.ActionCreate, row); err != nil {
			return err
		}
		result = copyRow(row)
		return nil
	})
	if err != nil {
		return nil, coredriver.WrapBackend("find-or-create "+table, err)
	}
	return result, nil
}

// GetUsage reports the number of successful inserts this driver has ever
// performed, persisted alongside the data it describes.
func (d *Driver) GetUsage() int64 {
	var usage int64
	_ = d.db.View(func(tx *bolt.Tx) error {
		buf := tx.Bucket(metaBucket).Get([]byte(metaKeyUsage))
		if buf == nil {
			return nil
		}
		return json.Unmarshal(buf, &usage)
	})
	return usage
}

// nextIDLocked returns the next int64 id for table, durably persisted in
// metaBucket so ids keep incrementing across process restarts the way
// MemoryDriver's in-memory nextID counter does within one process.
func nextIDLocked(tx *bolt.Tx, table string) (int64, error) {
	b := tx.Bucket(metaBucket)
	key := []byte(metaNextIDKey(table))
	var id int64
	if buf := b.Get(key); buf != nil {
		if err := json.Unmarshal(buf, &id); err != nil {
			return 0, err
		}
	}
	id++
	buf, err := json.Marshal(id)
	if err != nil {
		return 0, err
	}
	if err := b.Put(key, buf); err != nil {
		return 0, err
	}
	return id, nil
}

func bumpUsageLocked(tx *bolt.Tx, n int64) error {
	b := tx.Bucket(metaBucket)
	var usage int64
	if buf := b.Get([]byte(metaKeyUsage)); buf != nil {
		if err := json.Unmarshal(buf, &usage); err != nil {
			return err
		}
	}
	usage += n
	buf, err := json.Marshal(usage)
	if err != nil {
		return err
	}
	return b.Put([]byte(metaKeyUsage), buf)
}

// SetContext replaces the context map attached to every Change emitted
// from now on, durably (spec.md §4.6, §5).
func (d *Driver) SetContext(ctx model.Row) {
	_ = d.db.Update(func(tx *bolt.Tx) error {
		if ctx == nil {
			ctx = model.Row{}
		}
		buf, err := json.Marshal(ctx)
		if err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put([]byte(metaKeyCtx), buf)
	})
}

// RegisterChanges subscribes listener to table, lazily creating its change
// bucket so GetChanges never errors on an as-yet-empty stream.
func (d *Driver) RegisterChanges(table, listener string) error {
	err := d.db.Update(func(tx *bolt.Tx) error {
		subs, err := loadSubsLocked(tx)
		if err != nil {
			return err
		}
		for _, s := range subs {
			if s.Listener == listener && s.Table == table {
				return nil
			}
		}
		subs = append(subs, model.Subscription{Listener: listener, Table: table})
		if err := saveSubsLocked(tx, subs); err != nil {
			return err
		}
		_, err = tx.CreateBucketIfNotExists(changeBucketName(listener))
		return err
	})
	if err != nil {
		return coredriver.WrapBackend("register changes "+table+"/"+listener, err)
	}
	return nil
}

// GetChanges drains up to limit pending changes for listener, oldest first
// (seqKey's fixed-width zero-padded encoding sorts in seq order). Returns
// an empty slice, not an error, if listener has no change bucket yet.
func (d *Driver) GetChanges(listener string, limit int) ([]model.Change, error) {
	var out []model.Change
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(changeBucketName(listener))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var change model.Change
			if err := json.Unmarshal(v, &change); err != nil {
				return err
			}
			change.Tuple = normalizeNumbers(change.Tuple)
			change.Context = normalizeNumbers(change.Context)
			out = append(out, change)
		}
		return nil
	})
	if err != nil {
		return nil, coredriver.WrapBackend("get changes "+listener, err)
	}
	return out, nil
}

// AckChanges deletes the supplied change rows from their listener buckets.
func (d *Driver) AckChanges(changes []model.Change) error {
	err := d.db.Update(func(tx *bolt.Tx) error {
		for _, c := range changes {
			b := tx.Bucket(changeBucketName(c.Listener))
			if b == nil {
				continue
			}
			if err := b.Delete(seqKey(c.Seq)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return coredriver.WrapBackend("ack changes", err)
	}
	return nil
}

var (
	_ coredriver.Driver    = (*Driver)(nil)
	_ coredriver.CDCDriver = (*Driver)(nil)
)
