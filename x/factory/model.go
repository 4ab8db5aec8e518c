package factory

import (
	"encoding/binary"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/orm"
	"github.com/iov-one/splitter/x/distribution"
)

// Config is the state of a factory. It is stored under the factory
// address.
type Config struct {
	Owner splitter.Address
	// PlatformWallet can be null, in which case no fees are collected.
	PlatformWallet splitter.Address
	PlatformFee    uint64
}

var _ orm.Model = (*Config)(nil)

// Validate ensures the configuration is correct.
func (c *Config) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if len(c.PlatformWallet) != 0 {
		errs = errors.AppendField(errs, "PlatformWallet", c.PlatformWallet.Validate())
	}
	if c.PlatformFee > distribution.BasisPoint {
		errs = errors.AppendField(errs, "PlatformFee", errors.ErrInput)
	}
	return errs
}

// Creation records an engine created by a deployer using a nonce.
type Creation struct {
	Splitter splitter.Address
}

var _ orm.Model = (*Creation)(nil)

// Validate ensures the creation record is correct.
func (c *Creation) Validate() error {
	return errors.Field("Splitter", c.Splitter.Validate(), "")
}

var (
	configs   = orm.NewModelBucket("factory")
	creations = orm.NewModelBucket("creation")
)

// creationKey returns the key under which a nonce use is stored. The
// same bytes seed the created engine address.
func creationKey(factory, deployer splitter.Address, nonce uint64) []byte {
	key := make([]byte, 0, len(factory)+len(deployer)+8)
	key = append(key, factory...)
	key = append(key, deployer...)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return append(key, n[:]...)
}

func loadConfig(db splitter.ReadOnlyKVStore, addr splitter.Address) (*Config, error) {
	var c Config
	if err := configs.One(db, addr, &c); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "factory %s not initialized", addr)
		}
		return nil, err
	}
	return &c, nil
}
