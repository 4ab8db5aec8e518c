/*
Package app implements the Host, the execution environment of all
contracts.

The Host keeps the registry of code kinds, binds deployed code to account
addresses and runs every operation in an isolated invocation. An
invocation runs on a fresh cache wrap of the store. Its changes and its
events become visible to the parent only if the invocation succeeds.
Nested invocations roll back independently, which is what makes best
effort calls to other contracts possible.
*/
package app

import (
	"context"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/x/cash"
	"github.com/tendermint/tendermint/libs/log"
)

// Host binds code to accounts and runs contract operations.
type Host struct {
	logger log.Logger
	router *router
	cash   cash.Controller
}

// NewHost returns a host with no code kinds registered. Use nil logger to
// discard all logs.
func NewHost(logger log.Logger) *Host {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Host{
		logger: logger,
		router: newRouter(),
		cash:   cash.NewController(cash.NewBucket()),
	}
}

// Register makes code of given kind deployable. It panics if the kind is
// already registered.
func (h *Host) Register(kind string, ctor Constructor) {
	h.router.add(kind, ctor)
}

// Logger returns the host logger.
func (h *Host) Logger() log.Logger {
	return h.logger
}

// Cash returns the native currency controller used by the host.
func (h *Host) Cash() cash.Controller {
	return h.cash
}

// Deploy binds code of given kind to an account. It fails if the account
// already has code or the kind is unknown.
func (h *Host) Deploy(db splitter.KVStore, addr splitter.Address, kind string) (splitter.Contract, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "address")
	}
	if addr.IsNull() {
		return nil, errors.Wrap(errors.ErrInput, "cannot deploy to the null address")
	}
	ctor, ok := h.router.route(kind)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "unknown code kind %q", kind)
	}
	switch ok, err := codes.Has(db, addr); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "account %s already has code", addr)
	}
	if err := codes.Put(db, addr, &Code{Kind: kind}); err != nil {
		return nil, err
	}
	return ctor(h, addr), nil
}

// Contract returns the code bound to given account. ErrNotFound is
// returned for plain wallets.
func (h *Host) Contract(db splitter.ReadOnlyKVStore, addr splitter.Address) (splitter.Contract, error) {
	c, err := loadCode(db, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	ctor, ok := h.router.route(c.Kind)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "code kind %q is not registered", c.Kind)
	}
	return ctor(h, addr), nil
}

// IsContract returns true if given account has code deployed.
func (h *Host) IsContract(db splitter.ReadOnlyKVStore, addr splitter.Address) bool {
	_, err := loadCode(db, addr)
	return err == nil
}

// Invoke runs fn on behalf of the caller in a nested invocation. All state
// changes and events are committed to db only if fn succeeds. A panic is
// turned into ErrPanic and rolls back the same way as a returned error.
func (h *Host) Invoke(ctx context.Context, db splitter.CacheableKVStore, caller splitter.Address, fn splitter.ContractFunc) (err error) {
	cache := db.CacheWrap()
	parent, hasParent := splitter.GetEventLog(ctx)
	var events splitter.EventLog

	ctx = splitter.WithCaller(ctx, caller)
	ctx = splitter.WithEventLog(ctx, &events)
	ctx = splitter.WithLogInfo(ctx, "caller", caller)

	defer func() {
		if err != nil {
			cache.Discard()
			return
		}
		if err = cache.Write(); err != nil {
			err = errors.Wrap(err, "write invocation changes")
			return
		}
		if hasParent {
			parent.Append(events.Events()...)
		}
	}()
	defer errors.Recover(&err)

	return fn(ctx, cache)
}

// Execute runs fn as a top level invocation and returns all events it
// emitted.
func (h *Host) Execute(ctx context.Context, db splitter.CacheableKVStore, caller splitter.Address, fn splitter.ContractFunc) (*Result, error) {
	var events splitter.EventLog
	ctx = splitter.WithLogger(ctx, h.logger)
	ctx = splitter.WithEventLog(ctx, &events)
	if err := h.Invoke(ctx, db, caller, fn); err != nil {
		h.logger.Debug("execution failed", "caller", caller, "err", err)
		return nil, err
	}
	return &Result{Events: events.Events()}, nil
}

// Transfer moves native currency between two accounts. If the destination
// account has code that observes native credits, it is notified with the
// source as the caller. A failure at any step rolls back the whole
// transfer.
func (h *Host) Transfer(ctx context.Context, db splitter.CacheableKVStore, from, to splitter.Address, amount uint64) error {
	return h.Invoke(ctx, db, from, func(ctx context.Context, db splitter.CacheableKVStore) error {
		if err := h.cash.MoveCoins(db, from, to, amount); err != nil {
			return err
		}
		c, err := h.Contract(db, to)
		switch {
		case errors.ErrNotFound.Is(err):
			return nil
		case err != nil:
			return err
		}
		r, ok := c.(splitter.Receiver)
		if !ok {
			return nil
		}
		splitter.GetLogger(ctx).Debug("notify receiver", "target", to, "amount", amount)
		return r.Receive(ctx, db, amount)
	})
}

// Balance returns the native currency balance of an account.
func (h *Host) Balance(db splitter.ReadOnlyKVStore, addr splitter.Address) (uint64, error) {
	return h.cash.Balance(db, addr)
}
