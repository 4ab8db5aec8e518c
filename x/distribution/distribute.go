package distribution

import (
	"context"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/coin"
	"github.com/iov-one/splitter/errors"
)

const (
	assetNative = "native"
	assetToken  = "token"
)

// payout is the transfer plan of a single distribution.
type payout struct {
	// fee is zero when there is no fee or no platform wallet to send it
	// to.
	fee    uint64
	wallet splitter.Address
	// shares follow the order of recipients.
	shares []uint64
	// total is the amount leaving the engine.
	total uint64
}

// plan computes the fee and the recipient shares for given balance. Each
// share is rounded down, the remainder stays with the engine.
func (e *Engine) plan(db splitter.ReadOnlyKVStore, s *Splitter, balance, fee uint64) (*payout, error) {
	p := &payout{shares: make([]uint64, len(s.Recipients))}
	remaining := balance
	if fee > 0 {
		wallet, err := e.platformWallet(db, s)
		if err != nil {
			return nil, err
		}
		if !wallet.IsNull() {
			p.fee = fee
			p.wallet = wallet
			remaining -= fee
		}
	}
	for i, r := range s.Recipients {
		share, err := coin.MulDiv(remaining, r.Percentage, BasisPoint)
		if err != nil {
			return nil, errors.Wrapf(err, "share of %s", r.Address)
		}
		p.shares[i] = share
	}
	total, err := coin.Sum(append([]uint64{p.fee}, p.shares...)...)
	if err != nil {
		return nil, errors.Wrap(err, "payout total")
	}
	if total > balance {
		return nil, errors.Wrapf(errors.ErrHuman, "payout %d exceeds balance %d", total, balance)
	}
	p.total = total
	return p, nil
}

// platformWallet returns the current platform wallet published by the
// factory. Engines without a factory have no platform wallet.
func (e *Engine) platformWallet(db splitter.ReadOnlyKVStore, s *Splitter) (splitter.Address, error) {
	if s.Factory.IsNull() {
		return nil, nil
	}
	c, err := e.host.Contract(db, s.Factory)
	if err != nil {
		return nil, errors.Wrap(err, "factory")
	}
	f, ok := c.(PlatformWalletProvider)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "factory %s does not publish a platform wallet", s.Factory)
	}
	return f.PlatformWallet(db)
}

// distributeNative pays out the whole native currency balance of the
// engine.
func (e *Engine) distributeNative(ctx context.Context, db splitter.CacheableKVStore, s *Splitter) error {
	balance, err := e.host.Balance(db, e.addr)
	if err != nil {
		return err
	}
	fee, err := coin.MulDiv(balance, s.PlatformFee, BasisPoint)
	if err != nil {
		return errors.Wrap(err, "platform fee")
	}
	if total, err := coin.Add(balance, fee); err == nil && total < BasisPoint {
		return errors.Wrapf(ErrTooLowValueToRedistribute, "balance %d with fee %d", balance, fee)
	}
	p, err := e.plan(db, s, balance, fee)
	if err != nil {
		return err
	}

	if p.fee > 0 {
		if err := e.host.Transfer(ctx, db, e.addr, p.wallet, p.fee); err != nil {
			return errors.Wrapf(ErrTransferFailed, "platform wallet %s: %s", p.wallet, err)
		}
	}
	for i, r := range s.Recipients {
		share := p.shares[i]
		// A zero share moves nothing, so the recipient is not cascaded
		// into either. Any residual a zero share child holds stays there
		// until it is redistributed directly.
		if share == 0 {
			continue
		}
		if err := e.host.Transfer(ctx, db, e.addr, r.Address, share); err != nil {
			return errors.Wrapf(ErrTransferFailed, "recipient %s: %s", r.Address, err)
		}
		e.cascadeNative(ctx, db, r.Address)
	}

	splitter.EmitEvent(ctx, splitter.NewEvent(e.addr, EventDistributeNativeCurrency,
		"amount", balance, "fee", p.fee))
	splitter.GetLogger(ctx).Debug("distribution completed",
		"splitter", e.addr, "asset", assetNative, "amount", balance, "recipients", len(s.Recipients))
	e.metrics.observeDistribution(assetNative, p.total)
	return nil
}

// distributeToken pays out the whole balance of given token. Token
// transfer failures abort the distribution as they are.
func (e *Engine) distributeToken(ctx context.Context, db splitter.CacheableKVStore, s *Splitter, tok splitter.Address) error {
	balance, err := e.tokens.BalanceOf(db, tok, e.addr)
	if err != nil {
		return err
	}
	fee, err := coin.MulDiv(balance, s.PlatformFee, BasisPoint)
	if err != nil {
		return errors.Wrap(err, "platform fee")
	}
	p, err := e.plan(db, s, balance, fee)
	if err != nil {
		return err
	}

	if p.fee > 0 {
		if err := e.tokens.Transfer(db, tok, e.addr, p.wallet, p.fee); err != nil {
			return errors.Wrap(err, "platform wallet")
		}
	}
	for i, r := range s.Recipients {
		share := p.shares[i]
		// A zero share moves nothing, so the recipient is not cascaded
		// into either. Any residual a zero share child holds stays there
		// until it is redistributed directly.
		if share == 0 {
			continue
		}
		if err := e.tokens.Transfer(db, tok, e.addr, r.Address, share); err != nil {
			return errors.Wrapf(err, "recipient %s", r.Address)
		}
		e.cascadeToken(ctx, db, r.Address, tok)
	}

	splitter.EmitEvent(ctx, splitter.NewEvent(e.addr, EventDistributeToken,
		"token", tok, "amount", balance, "fee", p.fee))
	splitter.GetLogger(ctx).Debug("distribution completed",
		"splitter", e.addr, "asset", assetToken, "token", tok, "amount", balance, "recipients", len(s.Recipients))
	e.metrics.observeDistribution(assetToken, p.total)
	return nil
}
