package cash

import (
	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/orm"
)

// Wallet holds the native currency balance of a single account.
type Wallet struct {
	Amount uint64
}

var _ orm.Model = (*Wallet)(nil)

// Validate always succeeds. Any balance is valid.
func (w *Wallet) Validate() error {
	return nil
}

// Bucket stores wallets keyed by the account address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing native currency wallets.
func NewBucket() Bucket {
	return Bucket{ModelBucket: orm.NewModelBucket("wallet")}
}

// Balance returns the amount held by the account. An account that was
// never credited has a zero balance.
func (b Bucket) Balance(db splitter.ReadOnlyKVStore, addr splitter.Address) (uint64, error) {
	var w Wallet
	switch err := b.One(db, addr, &w); {
	case err == nil:
		return w.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

// SetBalance stores the balance of an account. A zero balance removes the
// wallet.
func (b Bucket) SetBalance(db splitter.KVStore, addr splitter.Address, amount uint64) error {
	if amount == 0 {
		return b.Delete(db, addr)
	}
	return b.Put(db, addr, &Wallet{Amount: amount})
}
