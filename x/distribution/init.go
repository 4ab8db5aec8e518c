package distribution

import (
	"context"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/app"
	"github.com/iov-one/splitter/errors"
)

const optKey = "distribution"

// GenesisSplitter describes an engine created at genesis.
type GenesisSplitter struct {
	Address splitter.Address `json:"address"`
	InitParams
}

// Initializer deploys and initializes the engines declared in the genesis
// file. Engines created this way have no factory.
type Initializer struct {
	Host *app.Host
}

var _ splitter.Initializer = (*Initializer)(nil)

// FromGenesis fulfils the Initializer interface.
func (i *Initializer) FromGenesis(opts splitter.Options, db splitter.CacheableKVStore) error {
	var gens []GenesisSplitter
	if err := opts.ReadOptions(optKey, &gens); err != nil {
		return err
	}
	ctx := splitter.WithLogger(context.Background(), i.Host.Logger())
	for n, g := range gens {
		c, err := i.Host.Deploy(db, g.Address, CodeKind)
		if err != nil {
			return errors.Wrapf(err, "splitter #%d", n)
		}
		if err := c.(*Engine).Initialize(ctx, db, g.InitParams); err != nil {
			return errors.Wrapf(err, "splitter #%d", n)
		}
	}
	return nil
}
