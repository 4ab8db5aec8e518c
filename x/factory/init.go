package factory

import (
	"context"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/app"
	"github.com/iov-one/splitter/errors"
)

const optKey = "factory"

// GenesisFactory is used to parse the json from genesis file.
type GenesisFactory struct {
	Address        splitter.Address `json:"address"`
	Owner          splitter.Address `json:"owner"`
	PlatformWallet splitter.Address `json:"platform_wallet"`
	PlatformFee    uint64           `json:"platform_fee"`
}

// Initializer deploys the factory declared in the genesis file.
type Initializer struct {
	Host *app.Host
}

var _ splitter.Initializer = (*Initializer)(nil)

// FromGenesis fulfils the Initializer interface. Missing configuration is
// a noop.
func (i *Initializer) FromGenesis(opts splitter.Options, db splitter.CacheableKVStore) error {
	var g GenesisFactory
	if err := opts.ReadOptions(optKey, &g); err != nil {
		return err
	}
	if g.Address == nil {
		return nil
	}
	c, err := i.Host.Deploy(db, g.Address, CodeKind)
	if err != nil {
		return errors.Wrap(err, "factory")
	}
	ctx := splitter.WithLogger(context.Background(), i.Host.Logger())
	return c.(*Factory).Initialize(ctx, db, Config{
		Owner:          g.Owner,
		PlatformWallet: g.PlatformWallet,
		PlatformFee:    g.PlatformFee,
	})
}
