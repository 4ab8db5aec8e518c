package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Model is implemented by all objects that can be stored in a bucket.
type Model interface {
	// Validate returns error if the object is not in a valid state to
	// save to the db (eg. field missing, out of range, ...)
	Validate() error
}

// ModelBucket is a prefixed subspace of the DB that stores models of a
// single type.
type ModelBucket struct {
	name   string
	prefix []byte
}

// NewModelBucket returns a bucket for storing models under the given name.
// Name must be unique across the application.
func NewModelBucket(name string) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket: %s", name))
	}
	return ModelBucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the name of this bucket.
func (b ModelBucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix.
func (b ModelBucket) DBKey(key []byte) []byte {
	return append(append([]byte{}, b.prefix...), key...)
}

// One loads the model stored under given key into dest. ErrNotFound is
// returned if no model exists.
func (b ModelBucket) One(db splitter.ReadOnlyKVStore, key []byte, dest Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "%s get: %s", b.name, err)
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	return Unmarshal(raw, dest)
}

// Has returns true if a model is stored under given key.
func (b ModelBucket) Has(db splitter.ReadOnlyKVStore, key []byte) (bool, error) {
	if len(key) == 0 {
		return false, errors.Wrap(errors.ErrEmpty, "key")
	}
	ok, err := db.Has(b.DBKey(key))
	if err != nil {
		return false, errors.Wrapf(errors.ErrDatabase, "%s has: %s", b.name, err)
	}
	return ok, nil
}

// Put validates and saves given model under the key.
func (b ModelBucket) Put(db splitter.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrapf(err, "invalid %s model", b.name)
	}
	raw, err := Marshal(m)
	if err != nil {
		return err
	}
	return db.Set(b.DBKey(key), raw)
}

// Delete removes the model stored under given key. Deleting a model that
// does not exist is a noop.
func (b ModelBucket) Delete(db splitter.KVStore, key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	return db.Delete(b.DBKey(key))
}
