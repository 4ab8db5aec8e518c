package distribution

import (
	"context"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
)

// cascadeNative triggers the native currency payout of a recipient that
// is itself a node. Recipients with auto distribution enabled already
// paid out when they were credited.
func (e *Engine) cascadeNative(ctx context.Context, db splitter.CacheableKVStore, recipient splitter.Address) {
	e.cascade(ctx, db, recipient, func(ctx context.Context, db splitter.CacheableKVStore, node Node) (string, error) {
		auto, err := node.IsAutoNativeCurrencyDistribution(db)
		if err != nil {
			return skipFailed, err
		}
		if auto {
			return skipAutoEnabled, nil
		}
		if reason, err := e.requireDistributor(db, node); reason != "" {
			return reason, err
		}
		return "", node.RedistributeNativeCurrency(ctx, db)
	})
}

// cascadeToken triggers the token payout of a recipient that is itself a
// node.
func (e *Engine) cascadeToken(ctx context.Context, db splitter.CacheableKVStore, recipient, tok splitter.Address) {
	e.cascade(ctx, db, recipient, func(ctx context.Context, db splitter.CacheableKVStore, node Node) (string, error) {
		if reason, err := e.requireDistributor(db, node); reason != "" {
			return reason, err
		}
		return "", node.RedistributeToken(ctx, db, tok)
	})
}

func (e *Engine) requireDistributor(db splitter.ReadOnlyKVStore, node Node) (string, error) {
	ok, err := node.HasRole(db, Distributor, e.addr)
	switch {
	case err != nil:
		return skipFailed, err
	case !ok:
		return skipNoRole, nil
	}
	return "", nil
}

// cascade calls fn on the recipient node in its own invocation with the
// engine as the caller. Plain wallets are never cascaded into. Any
// failure, including a recipient that is not a node, discards the changes
// made by that invocation and is not reported to the caller.
func (e *Engine) cascade(
	ctx context.Context,
	db splitter.CacheableKVStore,
	recipient splitter.Address,
	fn func(context.Context, splitter.CacheableKVStore, Node) (string, error),
) {
	if !e.host.IsContract(db, recipient) {
		return
	}
	var reason string
	err := e.host.Invoke(ctx, db, e.addr, func(ctx context.Context, db splitter.CacheableKVStore) error {
		c, err := e.host.Contract(db, recipient)
		if err != nil {
			reason = skipNotNode
			return err
		}
		node, ok := c.(Node)
		if !ok {
			reason = skipNotNode
			return errors.Wrapf(errors.ErrType, "%s is not a splitter node", recipient)
		}
		reason, err = fn(ctx, db, node)
		return err
	})
	if err != nil && reason == "" {
		reason = skipFailed
	}
	if reason == "" {
		return
	}
	splitter.GetLogger(ctx).Debug("cascade skipped",
		"splitter", e.addr, "recipient", recipient, "reason", reason, "err", err)
	e.metrics.observeCascadeSkipped(reason)
}
