package distribution

import (
	"context"
	"testing"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/app"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/splittertest"
	"github.com/iov-one/splitter/splittertest/assert"
	"github.com/iov-one/splitter/store"
)

// unit is the smallest amount for which the percentage split is exact
// enough to be readable in tests.
const unit uint64 = 1000000000

func pct(n uint64) uint64 {
	return n * BasisPoint / 100
}

// fakeFactory publishes a platform wallet stored under its address.
type fakeFactory struct {
	addr splitter.Address
}

func (f fakeFactory) Address() splitter.Address { return f.addr }

func (f fakeFactory) PlatformWallet(db splitter.ReadOnlyKVStore) (splitter.Address, error) {
	raw, err := db.Get(f.key())
	if err != nil {
		return nil, err
	}
	return splitter.Address(raw), nil
}

func (f fakeFactory) key() []byte {
	return append([]byte("fakefactory:"), f.addr...)
}

// failingNode looks like a splitter node, but every call fails.
type failingNode struct {
	addr splitter.Address
}

func (n failingNode) Address() splitter.Address { return n.addr }

func (n failingNode) HasRole(splitter.ReadOnlyKVStore, Role, splitter.Address) (bool, error) {
	return false, errors.ErrState.New("failing node")
}

func (n failingNode) IsAutoNativeCurrencyDistribution(splitter.ReadOnlyKVStore) (bool, error) {
	return false, errors.ErrState.New("failing node")
}

func (n failingNode) RedistributeNativeCurrency(context.Context, splitter.CacheableKVStore) error {
	return errors.ErrState.New("failing node")
}

func (n failingNode) RedistributeToken(context.Context, splitter.CacheableKVStore, splitter.Address) error {
	return errors.ErrState.New("failing node")
}

// panickingNode grants every role and panics when asked to pay out.
type panickingNode struct {
	failingNode
}

func (panickingNode) HasRole(splitter.ReadOnlyKVStore, Role, splitter.Address) (bool, error) {
	return true, nil
}

func (panickingNode) IsAutoNativeCurrencyDistribution(splitter.ReadOnlyKVStore) (bool, error) {
	return false, nil
}

func (panickingNode) RedistributeNativeCurrency(context.Context, splitter.CacheableKVStore) error {
	panic("panicking node")
}

func (panickingNode) RedistributeToken(context.Context, splitter.CacheableKVStore, splitter.Address) error {
	panic("panicking node")
}

// plainCode is a contract with no node capabilities.
type plainCode struct {
	addr splitter.Address
}

func (c plainCode) Address() splitter.Address { return c.addr }

// rejectingWallet refuses every native currency credit.
type rejectingWallet struct {
	plainCode
}

func (rejectingWallet) Receive(context.Context, splitter.CacheableKVStore, uint64) error {
	return errors.ErrUnauthorized.New("credits not accepted")
}

type fixture struct {
	host        *app.Host
	db          splitter.CacheableKVStore
	metrics     *Metrics
	owner       splitter.Address
	controller  splitter.Address
	distributor splitter.Address
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	m, err := NewMetrics(nil)
	assert.Nil(t, err)
	h := app.NewHost(nil)
	RegisterCode(h, m)
	h.Register("fake_factory", func(_ *app.Host, addr splitter.Address) splitter.Contract { return fakeFactory{addr: addr} })
	h.Register("failing_node", func(_ *app.Host, addr splitter.Address) splitter.Contract { return failingNode{addr: addr} })
	h.Register("panicking_node", func(_ *app.Host, addr splitter.Address) splitter.Contract {
		return panickingNode{failingNode{addr: addr}}
	})
	h.Register("plain", func(_ *app.Host, addr splitter.Address) splitter.Contract { return plainCode{addr: addr} })
	h.Register("rejecting", func(_ *app.Host, addr splitter.Address) splitter.Contract {
		return rejectingWallet{plainCode{addr: addr}}
	})
	return &fixture{
		host:        h,
		db:          store.MemStore(),
		metrics:     m,
		owner:       splittertest.NewAddress(),
		controller:  splittertest.NewAddress(),
		distributor: splittertest.NewAddress(),
	}
}

// params returns a mutable configuration with auto distribution disabled
// and all roles held by the fixture accounts.
func (f *fixture) params(recipients ...Recipient) InitParams {
	return InitParams{
		Owner:                     f.owner,
		Controller:                f.controller,
		Distributors:              []splitter.Address{f.distributor},
		MinAutoDistributionAmount: BasisPoint,
		Recipients:                recipients,
	}
}

// deploy creates and initializes a new engine. The owner initializes it,
// so the engine has no factory.
func (f *fixture) deploy(t testing.TB, p InitParams) *Engine {
	t.Helper()
	return f.deployBy(t, f.owner, p)
}

func (f *fixture) deployBy(t testing.TB, caller splitter.Address, p InitParams) *Engine {
	t.Helper()
	c, err := f.host.Deploy(f.db, splittertest.NewAddress(), CodeKind)
	assert.Nil(t, err)
	e := c.(*Engine)
	_, err = f.exec(caller, func(ctx context.Context, db splitter.CacheableKVStore) error {
		return e.Initialize(ctx, db, p)
	})
	assert.Nil(t, err)
	return e
}

// deployCode binds a test contract of given kind to a new address.
func (f *fixture) deployCode(t testing.TB, kind string) splitter.Address {
	t.Helper()
	addr := splittertest.NewAddress()
	_, err := f.host.Deploy(f.db, addr, kind)
	assert.Nil(t, err)
	return addr
}

// newFactory deploys a fake factory that publishes given platform wallet.
func (f *fixture) newFactory(t testing.TB, wallet splitter.Address) splitter.Address {
	t.Helper()
	addr := f.deployCode(t, "fake_factory")
	if wallet != nil {
		assert.Nil(t, f.db.Set(fakeFactory{addr: addr}.key(), wallet))
	}
	return addr
}

func (f *fixture) exec(caller splitter.Address, fn splitter.ContractFunc) (*app.Result, error) {
	return f.host.Execute(context.Background(), f.db, caller, fn)
}

// send transfers native currency in a top level call, notifying the
// destination.
func (f *fixture) send(from, to splitter.Address, amount uint64) (*app.Result, error) {
	return f.exec(from, func(ctx context.Context, db splitter.CacheableKVStore) error {
		return f.host.Transfer(ctx, db, from, to, amount)
	})
}

// fund credits an account without notifying it.
func (f *fixture) fund(t testing.TB, addr splitter.Address, amount uint64) {
	t.Helper()
	if amount == 0 {
		return
	}
	assert.Nil(t, f.host.Cash().IssueCoins(f.db, addr, amount))
}

func (f *fixture) balance(t testing.TB, addr splitter.Address) uint64 {
	t.Helper()
	b, err := f.host.Balance(f.db, addr)
	assert.Nil(t, err)
	return b
}

func (f *fixture) redistribute(e *Engine) (*app.Result, error) {
	return f.exec(f.distributor, func(ctx context.Context, db splitter.CacheableKVStore) error {
		return e.RedistributeNativeCurrency(ctx, db)
	})
}
