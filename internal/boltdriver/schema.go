package boltdriver

import (
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/dreamware/shardcore/internal/driver"
	"github.com/dreamware/shardcore/internal/schema"
)

// HasTable reports whether table's data bucket has been created.
func (d *Driver) HasTable(table string) bool {
	var exists bool
	_ = d.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(dataBucketName(table)) != nil
		return nil
	})
	return exists
}

// CreateTable materializes table's data bucket and empty property/index
// metadata, implementing driver.SchemaTarget.
func (d *Driver) CreateTable(table string) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(dataBucketName(table)); err != nil {
			return err
		}
		meta := tx.Bucket(metaBucket)
		if meta.Get([]byte(metaPropsKey(table))) == nil {
			if err := putJSON(meta, metaPropsKey(table), map[string]schema.PropertyType{}); err != nil {
				return err
			}
		}
		if meta.Get([]byte(metaIndexKey(table))) == nil {
			if err := putJSON(meta, metaIndexKey(table), map[string]schema.Index{}); err != nil {
				return err
			}
		}
		return nil
	})
}

// TableProperties reports the properties already declared on table.
func (d *Driver) TableProperties(table string) (map[string]schema.PropertyType, error) {
	props := make(map[string]schema.PropertyType)
	err := d.db.View(func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(metaBucket), metaPropsKey(table), &props)
	})
	if err != nil {
		return nil, driver.WrapBackend("read properties of "+table, err)
	}
	return props, nil
}

// AddProperty records that table now declares property name of type t.
func (d *Driver) AddProperty(table, name string, t schema.PropertyType) error {
	err := d.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		props := make(map[string]schema.PropertyType)
		if err := getJSON(meta, metaPropsKey(table), &props); err != nil {
			return err
		}
		props[name] = t
		return putJSON(meta, metaPropsKey(table), props)
	})
	if err != nil {
		return driver.WrapBackend("add property "+table+"."+name, err)
	}
	return nil
}

// TableIndexes reports the indexes already declared on table.
func (d *Driver) TableIndexes(table string) (map[string]schema.Index, error) {
	indexes := make(map[string]schema.Index)
	err := d.db.View(func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(metaBucket), metaIndexKey(table), &indexes)
	})
	if err != nil {
		return nil, driver.WrapBackend("read indexes of "+table, err)
	}
	return indexes, nil
}

// EnsureIndex records idx as present on table.
func (d *Driver) EnsureIndex(table string, idx schema.Index) error {
	err := d.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		indexes := make(map[string]schema.Index)
		if err := getJSON(meta, metaIndexKey(table), &indexes); err != nil {
			return err
		}
		indexes[idx.Name] = idx
		return putJSON(meta, metaIndexKey(table), indexes)
	})
	if err != nil {
		return driver.WrapBackend("ensure index "+table+"."+idx.Name, err)
	}
	return nil
}

// SyncSchema delegates to the shared generic algorithm; Driver implements
// driver.SchemaTarget directly.
func (d *Driver) SyncSchema(segment schema.Segment) error {
	return driver.SyncSchema(d, segment)
}

func putJSON(b *bolt.Bucket, key string, v interface{}) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), buf)
}

func getJSON(b *bolt.Bucket, key string, out interface{}) error {
	buf := b.Get([]byte(key))
	if buf == nil {
		return nil
	}
	return json.Unmarshal(buf, out)
}

var _ driver.SchemaTarget = (*Driver)(nil)
