/*
Package splitter defines all common interfaces to glue together the
various subpackages, as well as implementations of some of the simpler
components.

We pass context through context.Context between the host and contracts.
To do so, splitter defines some common keys to store info, such as the
caller of an invocation or the logger.

There should exist two functions for every XYZ of type T that we want to
support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)
*/
package splitter

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int // local to the splitter module

const (
	contextKeyCaller contextKey = iota
	contextKeyLogger
	contextKeyEvents
	contextKeyEntered
)

// DefaultLogger is used for all context that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

// WithCaller sets the address of the account that invokes the current
// operation. Unlike other values, the caller is overwritten by every
// nested invocation.
func WithCaller(ctx context.Context, caller Address) context.Context {
	return context.WithValue(ctx, contextKeyCaller, caller)
}

// GetCaller returns the address of the account that invokes the current
// operation.
func GetCaller(ctx context.Context) (Address, bool) {
	val, ok := ctx.Value(contextKeyCaller).(Address)
	return val, ok
}

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another context like this,
// after passing all the keyvals to the Logger.
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none was
// set.
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithEntered returns a context that marks given account as executing a
// state changing operation. The mark is visible to all nested invocations
// made with the returned context.
func WithEntered(ctx context.Context, addr Address) context.Context {
	prev, _ := ctx.Value(contextKeyEntered).(*entered)
	return context.WithValue(ctx, contextKeyEntered, &entered{addr: addr, parent: prev})
}

// IsEntered returns true if given account is executing a state changing
// operation somewhere up the current call chain.
func IsEntered(ctx context.Context, addr Address) bool {
	e, _ := ctx.Value(contextKeyEntered).(*entered)
	for ; e != nil; e = e.parent {
		if e.addr.Equals(addr) {
			return true
		}
	}
	return false
}

// entered is an immutable linked list, so that sibling calls never see each
// other marks.
type entered struct {
	addr   Address
	parent *entered
}
