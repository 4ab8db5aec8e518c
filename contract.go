package splitter

import "context"

// Contract is executable code bound to an account address. Contracts are
// stateless, all instance state lives in the store under the account
// address. An account without code is a plain wallet.
type Contract interface {
	// Address returns the address of the account this code is bound to.
	Address() Address
}

// Receiver is implemented by contracts that observe incoming native
// currency credits. Receive is called after the amount was credited to
// the contract account. Returning an error rejects the credit.
type Receiver interface {
	Contract
	Receive(ctx context.Context, db CacheableKVStore, amount uint64) error
}

// ContractFunc is an operation executed on behalf of a caller in an
// isolated invocation.
type ContractFunc func(ctx context.Context, db CacheableKVStore) error
