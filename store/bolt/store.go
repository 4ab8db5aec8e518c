/*
Package bolt provides a file-backed store using bbolt. All changes written
through a cache wrap of this store are persisted in a single bbolt
transaction.
*/
package bolt

import (
	"os"
	"path/filepath"

	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/store"
	"go.etcd.io/bbolt"
)

var bucketState = []byte("state")

// Store wraps a bbolt database.
type Store struct {
	db *bbolt.DB
}

var _ store.CacheableKVStore = (*Store)(nil)

// Open opens or creates the bbolt database at given path. The parent
// directory is created if it does not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create directory: %s", err)
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open bolt db: %s", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(errors.ErrDatabase, "create bucket: %s", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns nil iff key doesn't exist.
func (s *Store) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		// Returned value is valid only for the life of the transaction.
		if raw := tx.Bucket(bucketState).Get(key); raw != nil {
			val = append([]byte{}, raw...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "get: %s", err)
	}
	return val, nil
}

// Has checks if a key exists.
func (s *Store) Has(key []byte) (bool, error) {
	val, err := s.Get(key)
	return val != nil, err
}

// Set writes a single value in its own transaction.
func (s *Store) Set(key, value []byte) error {
	return s.apply([]store.Op{store.SetOp(key, value)})
}

// Delete removes a single value in its own transaction.
func (s *Store) Delete(key []byte) error {
	return s.apply([]store.Op{store.DelOp(key)})
}

// NewBatch returns a batch that writes all operations in a single bbolt
// transaction.
func (s *Store) NewBatch() store.Batch {
	return &batch{store: s}
}

// CacheWrap wraps the database with a btree cache.
func (s *Store) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(s, s.NewBatch(), nil)
}

func (s *Store) apply(ops []store.Op) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketState)
		for _, op := range ops {
			if op.IsDelete() {
				if err := b.Delete(op.Key()); err != nil {
					return err
				}
				continue
			}
			if err := b.Put(op.Key(), op.Value()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "update: %s", err)
	}
	return nil
}

type batch struct {
	store *Store
	ops   []store.Op
}

func (b *batch) Set(key, value []byte) error {
	b.ops = append(b.ops, store.SetOp(key, value))
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, store.DelOp(key))
	return nil
}

func (b *batch) Write() error {
	if err := b.store.apply(b.ops); err != nil {
		return err
	}
	b.ops = nil
	return nil
}
