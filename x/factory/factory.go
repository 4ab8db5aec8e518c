package factory

import (
	"context"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/app"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/x/distribution"
)

// CodeKind is the kind under which the factory code is registered with
// the host.
const CodeKind = "factory"

// EventSplitterCreated is emitted for every engine created.
const EventSplitterCreated = "SplitterCreated"

// Factory is the factory code bound to a single account.
type Factory struct {
	host *app.Host
	addr splitter.Address
}

var _ distribution.PlatformWalletProvider = (*Factory)(nil)

// RegisterCode makes the factory deployable on given host. The engine code
// must be registered as well for the factory to create engines.
func RegisterCode(h *app.Host) {
	h.Register(CodeKind, func(h *app.Host, addr splitter.Address) splitter.Contract {
		return &Factory{host: h, addr: addr}
	})
}

// Address returns the factory account address.
func (f *Factory) Address() splitter.Address {
	return f.addr
}

// Initialize configures the factory. It can succeed only once.
func (f *Factory) Initialize(ctx context.Context, db splitter.CacheableKVStore, c Config) error {
	switch ok, err := configs.Has(db, f.addr); {
	case err != nil:
		return err
	case ok:
		return errors.Wrapf(distribution.ErrAlreadyInitialized, "factory %s", f.addr)
	}
	if c.Owner.IsNull() {
		return errors.Wrap(distribution.ErrNullAddress, "owner")
	}
	return configs.Put(db, f.addr, &c)
}

// PlatformWallet returns the account that collects platform fees.
func (f *Factory) PlatformWallet(db splitter.ReadOnlyKVStore) (splitter.Address, error) {
	c, err := loadConfig(db, f.addr)
	if err != nil {
		return nil, err
	}
	return c.PlatformWallet, nil
}

// PlatformFee returns the fee applied to engines created from now on.
func (f *Factory) PlatformFee(db splitter.ReadOnlyKVStore) (uint64, error) {
	c, err := loadConfig(db, f.addr)
	if err != nil {
		return 0, err
	}
	return c.PlatformFee, nil
}

// Owner returns the account allowed to change the factory configuration.
func (f *Factory) Owner(db splitter.ReadOnlyKVStore) (splitter.Address, error) {
	c, err := loadConfig(db, f.addr)
	if err != nil {
		return nil, err
	}
	return c.Owner, nil
}

// SetPlatformWallet changes the platform wallet of all engines created by
// this factory.
func (f *Factory) SetPlatformWallet(ctx context.Context, db splitter.CacheableKVStore, wallet splitter.Address) error {
	if wallet.IsNull() {
		return errors.Wrap(distribution.ErrNullAddress, "platform wallet")
	}
	return f.update(ctx, db, func(c *Config) {
		c.PlatformWallet = wallet
	})
}

// SetPlatformFee changes the fee applied to engines created from now on.
func (f *Factory) SetPlatformFee(ctx context.Context, db splitter.CacheableKVStore, fee uint64) error {
	if fee > distribution.BasisPoint {
		return errors.Wrapf(errors.ErrInput, "platform fee %d exceeds %d", fee, distribution.BasisPoint)
	}
	return f.update(ctx, db, func(c *Config) {
		c.PlatformFee = fee
	})
}

func (f *Factory) update(ctx context.Context, db splitter.CacheableKVStore, fn func(*Config)) error {
	c, err := loadConfig(db, f.addr)
	if err != nil {
		return err
	}
	if caller, _ := splitter.GetCaller(ctx); !c.Owner.Equals(caller) {
		return errors.Wrap(errors.ErrUnauthorized, "requires factory owner")
	}
	fn(c)
	if err := configs.Put(db, f.addr, c); err != nil {
		return err
	}
	splitter.GetLogger(ctx).Info("factory configuration changed",
		"factory", f.addr, "platform_wallet", c.PlatformWallet, "platform_fee", c.PlatformFee)
	return nil
}

// PredictAddress returns the address of the engine that given deployer
// creates using given nonce.
func (f *Factory) PredictAddress(deployer splitter.Address, nonce uint64) splitter.Address {
	return splitter.NewCondition("factory", "splitter", creationKey(f.addr, deployer, nonce)).Address()
}

// CreateSplitter creates and initializes a new engine on behalf of the
// caller. The platform fee of p is ignored, the engine gets the current
// factory fee. Reusing a nonce fails.
func (f *Factory) CreateSplitter(ctx context.Context, db splitter.CacheableKVStore, p distribution.InitParams, nonce uint64) (splitter.Address, error) {
	deployer, _ := splitter.GetCaller(ctx)
	if err := deployer.Validate(); err != nil {
		return nil, errors.Wrap(err, "deployer")
	}
	fee, err := f.PlatformFee(db)
	if err != nil {
		return nil, err
	}
	key := creationKey(f.addr, deployer, nonce)
	switch ok, err := creations.Has(db, key); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "nonce %d already used by %s", nonce, deployer)
	}

	addr := f.PredictAddress(deployer, nonce)
	err = f.host.Invoke(ctx, db, f.addr, func(ctx context.Context, db splitter.CacheableKVStore) error {
		c, err := f.host.Deploy(db, addr, distribution.CodeKind)
		if err != nil {
			return err
		}
		engine, ok := c.(*distribution.Engine)
		if !ok {
			return errors.Wrapf(errors.ErrType, "unexpected code for kind %q", distribution.CodeKind)
		}
		p.PlatformFee = fee
		if err := engine.Initialize(ctx, db, p); err != nil {
			return err
		}
		return creations.Put(db, key, &Creation{Splitter: addr})
	})
	if err != nil {
		return nil, err
	}
	splitter.EmitEvent(ctx, splitter.NewEvent(f.addr, EventSplitterCreated,
		"splitter", addr, "deployer", deployer, "nonce", nonce))
	return addr, nil
}
