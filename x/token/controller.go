package token

import (
	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/coin"
	"github.com/iov-one/splitter/errors"
)

// Controller manages token definitions and holdings.
type Controller interface {
	Register(db splitter.KVStore, token splitter.Address, ticker string) error
	BalanceOf(db splitter.ReadOnlyKVStore, token, holder splitter.Address) (uint64, error)
	Transfer(db splitter.KVStore, token, src, dest splitter.Address, amount uint64) error
	Mint(db splitter.KVStore, token, dest splitter.Address, amount uint64) error
}

// BaseController is the default Controller implementation.
type BaseController struct{}

var _ Controller = BaseController{}

// NewController returns a token controller.
func NewController() BaseController {
	return BaseController{}
}

// Register defines a new token under given address.
func (BaseController) Register(db splitter.KVStore, token splitter.Address, ticker string) error {
	if err := token.Validate(); err != nil {
		return errors.Wrap(err, "token address")
	}
	switch ok, err := tokens.Has(db, token); {
	case err != nil:
		return err
	case ok:
		return errors.Wrapf(errors.ErrDuplicate, "token %s", token)
	}
	return tokens.Put(db, token, &Token{Ticker: ticker})
}

// BalanceOf returns the amount of token owned by the holder. Unknown token
// fails with ErrNotFound.
func (BaseController) BalanceOf(db splitter.ReadOnlyKVStore, token, holder splitter.Address) (uint64, error) {
	if _, err := loadToken(db, token); err != nil {
		return 0, err
	}
	return holdingOf(db, token, holder)
}

// Transfer moves amount of token from src to dest. Transferring zero is
// allowed and changes nothing.
func (BaseController) Transfer(db splitter.KVStore, token, src, dest splitter.Address, amount uint64) error {
	if _, err := loadToken(db, token); err != nil {
		return err
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	have, err := holdingOf(db, token, src)
	if err != nil {
		return err
	}
	left, err := coin.Sub(have, amount)
	if err != nil {
		return errors.Wrapf(err, "token %s holder %s", token, src)
	}
	if amount == 0 || src.Equals(dest) {
		return nil
	}
	prev, err := holdingOf(db, token, dest)
	if err != nil {
		return err
	}
	total, err := coin.Add(prev, amount)
	if err != nil {
		return errors.Wrapf(err, "token %s holder %s", token, dest)
	}
	if err := setHolding(db, token, src, left); err != nil {
		return err
	}
	return setHolding(db, token, dest, total)
}

// Mint creates new amount of token and assigns it to dest.
func (BaseController) Mint(db splitter.KVStore, token, dest splitter.Address, amount uint64) error {
	t, err := loadToken(db, token)
	if err != nil {
		return err
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if t.Supply, err = coin.Add(t.Supply, amount); err != nil {
		return errors.Wrapf(err, "token %s supply", token)
	}
	prev, err := holdingOf(db, token, dest)
	if err != nil {
		return err
	}
	total, err := coin.Add(prev, amount)
	if err != nil {
		return errors.Wrapf(err, "token %s holder %s", token, dest)
	}
	if err := tokens.Put(db, token, t); err != nil {
		return err
	}
	return setHolding(db, token, dest, total)
}

func loadToken(db splitter.ReadOnlyKVStore, token splitter.Address) (*Token, error) {
	if token.IsNull() {
		return nil, errors.Wrap(errors.ErrNotFound, "null token")
	}
	var t Token
	if err := tokens.One(db, token, &t); err != nil {
		return nil, errors.Wrapf(err, "token %s", token)
	}
	return &t, nil
}

func holdingOf(db splitter.ReadOnlyKVStore, token, holder splitter.Address) (uint64, error) {
	var h Holding
	switch err := holdings.One(db, holdingKey(token, holder), &h); {
	case err == nil:
		return h.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

func setHolding(db splitter.KVStore, token, holder splitter.Address, amount uint64) error {
	key := holdingKey(token, holder)
	if amount == 0 {
		return holdings.Delete(db, key)
	}
	return holdings.Put(db, key, &Holding{Amount: amount})
}
