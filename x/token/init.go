package token

import (
	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
)

const optKey = "token"

// GenesisToken is used to parse the json from genesis file.
type GenesisToken struct {
	Address  splitter.Address `json:"address"`
	Ticker   string           `json:"ticker"`
	Holdings []struct {
		Address splitter.Address `json:"address"`
		Amount  uint64           `json:"amount"`
	} `json:"holdings"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ splitter.Initializer = Initializer{}

// FromGenesis registers all tokens declared in the genesis and mints the
// initial holdings.
func (Initializer) FromGenesis(opts splitter.Options, db splitter.CacheableKVStore) error {
	var toks []GenesisToken
	if err := opts.ReadOptions(optKey, &toks); err != nil {
		return err
	}
	ctrl := NewController()
	for i, t := range toks {
		if err := ctrl.Register(db, t.Address, t.Ticker); err != nil {
			return errors.Wrapf(err, "token #%d", i)
		}
		for j, h := range t.Holdings {
			if err := ctrl.Mint(db, t.Address, h.Address, h.Amount); err != nil {
				return errors.Wrapf(err, "token #%d holding #%d", i, j)
			}
		}
	}
	return nil
}
