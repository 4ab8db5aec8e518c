package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
)

// Genesis file format.
type Genesis struct {
	AppOptions splitter.Options `json:"app_options"`
}

// LoadGenesis loads a genesis file from given path.
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "loading genesis file: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "unmarshaling genesis file: %s", err)
	}
	return &gen, nil
}

// InitGenesis loads the initial state using given initializer. Nothing is
// written to db unless all initializers succeed.
func InitGenesis(db splitter.CacheableKVStore, gen *Genesis, init splitter.Initializer) error {
	cache := db.CacheWrap()
	if err := init.FromGenesis(gen.AppOptions, cache); err != nil {
		cache.Discard()
		return errors.Wrap(err, "init genesis")
	}
	return cache.Write()
}
