package cash

import (
	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/coin"
	"github.com/iov-one/splitter/errors"
)

// Controller allows to manage native currency balances without the need to
// directly access the bucket.
type Controller interface {
	Balance(db splitter.ReadOnlyKVStore, addr splitter.Address) (uint64, error)
	MoveCoins(db splitter.KVStore, src, dest splitter.Address, amount uint64) error
	IssueCoins(db splitter.KVStore, dest splitter.Address, amount uint64) error
}

// BaseController is a simple implementation of the Controller.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller using given bucket.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the native currency balance of an account.
func (c BaseController) Balance(db splitter.ReadOnlyKVStore, addr splitter.Address) (uint64, error) {
	if err := addr.Validate(); err != nil {
		return 0, errors.Wrap(err, "address")
	}
	return c.bucket.Balance(db, addr)
}

// MoveCoins moves the given amount from src to dest. If src doesn't have
// sufficient coins, it fails.
func (c BaseController) MoveCoins(db splitter.KVStore, src, dest splitter.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	have, err := c.bucket.Balance(db, src)
	if err != nil {
		return errors.Wrap(err, "source balance")
	}
	left, err := coin.Sub(have, amount)
	if err != nil {
		return errors.Wrapf(err, "account %s", src)
	}
	if src.Equals(dest) {
		return nil
	}
	prev, err := c.bucket.Balance(db, dest)
	if err != nil {
		return errors.Wrap(err, "destination balance")
	}
	total, err := coin.Add(prev, amount)
	if err != nil {
		return errors.Wrapf(err, "account %s", dest)
	}

	if err := c.bucket.SetBalance(db, src, left); err != nil {
		return errors.Wrap(err, "save source")
	}
	if err := c.bucket.SetBalance(db, dest, total); err != nil {
		return errors.Wrap(err, "save destination")
	}
	return nil
}

// IssueCoins attempts to add the given amount of coins to the destination
// address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db splitter.KVStore, dest splitter.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	prev, err := c.bucket.Balance(db, dest)
	if err != nil {
		return err
	}
	total, err := coin.Add(prev, amount)
	if err != nil {
		return errors.Wrapf(err, "account %s", dest)
	}
	return c.bucket.SetBalance(db, dest, total)
}
