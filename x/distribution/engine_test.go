package distribution

import (
	"context"
	"strconv"
	"testing"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/app"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/splittertest"
	"github.com/iov-one/splitter/splittertest/assert"
)

func TestInitialize(t *testing.T) {
	alice := splittertest.NewAddress()

	cases := map[string]struct {
		mutate  func(*InitParams)
		wantErr *errors.Error
	}{
		"valid": {
			mutate: func(*InitParams) {},
		},
		"min auto distribution amount too low": {
			mutate:  func(p *InitParams) { p.MinAutoDistributionAmount = BasisPoint - 1 },
			wantErr: ErrTooLowValueToRedistribute,
		},
		"platform fee above 100%": {
			mutate:  func(p *InitParams) { p.PlatformFee = BasisPoint + 1 },
			wantErr: errors.ErrInput,
		},
		"null distributor": {
			mutate:  func(p *InitParams) { p.Distributors = append(p.Distributors, nil) },
			wantErr: ErrNullAddress,
		},
		"null owner": {
			mutate:  func(p *InitParams) { p.Owner = nil },
			wantErr: ErrNullAddress,
		},
		"invalid recipients": {
			mutate:  func(p *InitParams) { p.Recipients = []Recipient{{alice, pct(50)}} },
			wantErr: ErrInvalidPercentage,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			p := f.params(Recipient{alice, BasisPoint})
			tc.mutate(&p)

			c, err := f.host.Deploy(f.db, splittertest.NewAddress(), CodeKind)
			assert.Nil(t, err)
			e := c.(*Engine)
			res, err := f.exec(f.owner, func(ctx context.Context, db splitter.CacheableKVStore) error {
				return e.Initialize(ctx, db, p)
			})
			assert.IsErr(t, tc.wantErr, err)

			ok, err := e.HasRole(f.db, Admin, f.owner)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantErr == nil, ok)

			if tc.wantErr != nil {
				_, err := e.RecipientsCount(f.db)
				assert.IsErr(t, errors.ErrNotFound, err)
				return
			}
			assert.Equal(t, 1, len(res.EventsNamed(EventInitialized)))
			assert.Equal(t, 1, len(res.EventsNamed(EventSetRecipients)))
			// One grant for each role.
			assert.Equal(t, 3, len(res.EventsNamed(EventRoleGranted)))

			_, err = f.exec(f.owner, func(ctx context.Context, db splitter.CacheableKVStore) error {
				return e.Initialize(ctx, db, p)
			})
			assert.IsErr(t, ErrAlreadyInitialized, err)
		})
	}
}

func TestInitializeConfiguration(t *testing.T) {
	f := newFixture(t)
	factory := f.newFactory(t, splittertest.NewAddress())
	p := f.params(Recipient{splittertest.NewAddress(), BasisPoint})
	p.ImmutableRecipients = true
	p.AutoNativeCurrencyDistribution = true
	p.MinAutoDistributionAmount = 3 * BasisPoint
	p.PlatformFee = pct(5)
	e := f.deployBy(t, factory, p)

	immutable, err := e.IsImmutableRecipients(f.db)
	assert.Nil(t, err)
	assert.Equal(t, true, immutable)
	auto, err := e.IsAutoNativeCurrencyDistribution(f.db)
	assert.Nil(t, err)
	assert.Equal(t, true, auto)
	min, err := e.MinAutoDistributionAmount(f.db)
	assert.Nil(t, err)
	assert.Equal(t, 3*BasisPoint, min)
	fee, err := e.PlatformFee(f.db)
	assert.Nil(t, err)
	assert.Equal(t, pct(5), fee)
	got, err := e.Factory(f.db)
	assert.Nil(t, err)
	assert.Equal(t, true, factory.Equals(got))

	// Initialized by a plain wallet, there is no factory.
	e = f.deploy(t, f.params(Recipient{splittertest.NewAddress(), BasisPoint}))
	got, err = e.Factory(f.db)
	assert.Nil(t, err)
	assert.Equal(t, true, got.IsNull())
}

func TestImmutabilityIsOneWay(t *testing.T) {
	f := newFixture(t)
	alice := splittertest.NewAddress()
	e := f.deploy(t, f.params(Recipient{alice, BasisPoint}))

	setRecipients := func(ext bool) error {
		_, err := f.exec(f.controller, func(ctx context.Context, db splitter.CacheableKVStore) error {
			if ext {
				return e.SetRecipientsExt(ctx, db, []Recipient{{alice, BasisPoint}})
			}
			return e.SetRecipients(ctx, db, []Recipient{{alice, BasisPoint}})
		})
		return err
	}
	lock := func() (*app.Result, error) {
		return f.exec(f.owner, func(ctx context.Context, db splitter.CacheableKVStore) error {
			return e.SetImmutableRecipients(ctx, db)
		})
	}

	assert.Nil(t, setRecipients(false))
	res, err := lock()
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res.EventsNamed(EventSetImmutableRecipients)))

	_, err = lock()
	assert.IsErr(t, ErrImmutableRecipients, err)
	assert.IsErr(t, ErrImmutableRecipients, setRecipients(false))
	assert.IsErr(t, ErrImmutableRecipients, setRecipients(true))

	immutable, err := e.IsImmutableRecipients(f.db)
	assert.Nil(t, err)
	assert.Equal(t, true, immutable)
}

func TestSetRecipientsExtLocks(t *testing.T) {
	f := newFixture(t)
	alice := splittertest.NewAddress()
	bob := splittertest.NewAddress()
	e := f.deploy(t, f.params(Recipient{alice, BasisPoint}))

	// A failed call does not engage the lock.
	_, err := f.exec(f.controller, func(ctx context.Context, db splitter.CacheableKVStore) error {
		return e.SetRecipientsExt(ctx, db, []Recipient{{bob, pct(10)}})
	})
	assert.IsErr(t, ErrInvalidPercentage, err)
	immutable, err := e.IsImmutableRecipients(f.db)
	assert.Nil(t, err)
	assert.Equal(t, false, immutable)

	res, err := f.exec(f.controller, func(ctx context.Context, db splitter.CacheableKVStore) error {
		return e.SetRecipientsExt(ctx, db, []Recipient{{bob, BasisPoint}})
	})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res.EventsNamed(EventSetImmutableRecipients)))
	immutable, err = e.IsImmutableRecipients(f.db)
	assert.Nil(t, err)
	assert.Equal(t, true, immutable)
	p, err := e.RecipientPercentage(f.db, bob)
	assert.Nil(t, err)
	assert.Equal(t, BasisPoint, p)
}

func TestConfigurationSettersAreIdempotent(t *testing.T) {
	f := newFixture(t)
	e := f.deploy(t, f.params(Recipient{splittertest.NewAddress(), BasisPoint}))

	setAuto := func(enabled bool) int {
		res, err := f.exec(f.owner, func(ctx context.Context, db splitter.CacheableKVStore) error {
			return e.SetAutoNativeCurrencyDistribution(ctx, db, enabled)
		})
		assert.Nil(t, err)
		return len(res.EventsNamed(EventSetAutoNativeCurrencyDistribution))
	}
	setMin := func(amount uint64) int {
		res, err := f.exec(f.owner, func(ctx context.Context, db splitter.CacheableKVStore) error {
			return e.SetMinAutoDistributionAmount(ctx, db, amount)
		})
		assert.Nil(t, err)
		return len(res.EventsNamed(EventSetMinAutoDistributionAmount))
	}

	assert.Equal(t, 1, setAuto(true))
	assert.Equal(t, 0, setAuto(true))
	assert.Equal(t, 1, setAuto(false))
	assert.Equal(t, 0, setAuto(false))

	assert.Equal(t, 0, setMin(BasisPoint))
	assert.Equal(t, 1, setMin(2*BasisPoint))
	assert.Equal(t, 0, setMin(2*BasisPoint))

	_, err := f.exec(f.owner, func(ctx context.Context, db splitter.CacheableKVStore) error {
		return e.SetMinAutoDistributionAmount(ctx, db, BasisPoint-1)
	})
	assert.IsErr(t, ErrTooLowValueToRedistribute, err)
	min, err := e.MinAutoDistributionAmount(f.db)
	assert.Nil(t, err)
	assert.Equal(t, 2*BasisPoint, min)
}

func TestRedistributeNativeCurrency(t *testing.T) {
	alice := splittertest.NewAddress()
	bob := splittertest.NewAddress()
	wallet := splittertest.NewAddress()

	cases := map[string]struct {
		recipients  []Recipient
		platformFee uint64
		// factory is one of "", "wallet", "null wallet", "plain".
		factory    string
		balance    uint64
		wantErr    *errors.Error
		wantWallet uint64
		wantAlice  uint64
		wantBob    uint64
		wantLeft   uint64
	}{
		"percent split": {
			recipients: []Recipient{{alice, pct(80)}, {bob, pct(20)}},
			balance:    50 * unit,
			wantAlice:  40 * unit,
			wantBob:    10 * unit,
		},
		"platform fee": {
			recipients:  []Recipient{{alice, BasisPoint}},
			platformFee: pct(20),
			factory:     "wallet",
			balance:     50 * unit,
			wantWallet:  10 * unit,
			wantAlice:   40 * unit,
		},
		"fee stays in the pool without platform wallet": {
			recipients:  []Recipient{{alice, BasisPoint}},
			platformFee: pct(20),
			factory:     "null wallet",
			balance:     50 * unit,
			wantAlice:   50 * unit,
		},
		"fee is not collected without factory": {
			recipients:  []Recipient{{alice, BasisPoint}},
			platformFee: pct(20),
			balance:     50 * unit,
			wantAlice:   50 * unit,
		},
		"factory without platform wallet support": {
			recipients:  []Recipient{{alice, BasisPoint}},
			platformFee: pct(20),
			factory:     "plain",
			balance:     50 * unit,
			wantErr:     errors.ErrType,
			wantLeft:    50 * unit,
		},
		"rounding dust stays with the engine": {
			recipients: []Recipient{{alice, 3333333}, {bob, 6666667}},
			balance:    BasisPoint + 1,
			wantAlice:  3333333,
			wantBob:    6666667,
			wantLeft:   1,
		},
		"below the floor": {
			recipients: []Recipient{{alice, pct(80)}, {bob, pct(20)}},
			balance:    BasisPoint - 1,
			wantErr:    ErrTooLowValueToRedistribute,
			wantLeft:   BasisPoint - 1,
		},
		"empty balance": {
			recipients: []Recipient{{alice, BasisPoint}},
			balance:    0,
			wantErr:    ErrTooLowValueToRedistribute,
		},
		"below the floor including the fee": {
			recipients:  []Recipient{{alice, BasisPoint}},
			platformFee: pct(20),
			factory:     "wallet",
			balance:     8000000,
			wantErr:     ErrTooLowValueToRedistribute,
			wantLeft:    8000000,
		},
		"fee lifts the amount over the floor": {
			recipients:  []Recipient{{alice, BasisPoint}},
			platformFee: pct(20),
			factory:     "wallet",
			balance:     9000000,
			wantWallet:  1800000,
			wantAlice:   7200000,
		},
		"zero share is skipped": {
			recipients: []Recipient{{alice, BasisPoint}, {bob, 0}},
			balance:    5 * unit,
			wantAlice:  5 * unit,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			p := f.params(tc.recipients...)
			p.PlatformFee = tc.platformFee

			var creator splitter.Address
			switch tc.factory {
			case "":
				creator = f.owner
			case "wallet":
				creator = f.newFactory(t, wallet)
			case "null wallet":
				creator = f.newFactory(t, nil)
			case "plain":
				creator = f.deployCode(t, "plain")
			}
			e := f.deployBy(t, creator, p)
			f.fund(t, e.Address(), tc.balance)

			res, err := f.redistribute(e)
			assert.IsErr(t, tc.wantErr, err)

			assert.Equal(t, tc.wantWallet, f.balance(t, wallet))
			assert.Equal(t, tc.wantAlice, f.balance(t, alice))
			assert.Equal(t, tc.wantBob, f.balance(t, bob))
			assert.Equal(t, tc.wantLeft, f.balance(t, e.Address()))

			if tc.wantErr == nil {
				evs := res.EventsNamed(EventDistributeNativeCurrency)
				assert.Equal(t, 1, len(evs))
				amount, _ := evs[0].Attr("amount")
				assert.Equal(t, strconv.FormatUint(tc.balance, 10), amount)
			}
		})
	}
}

func TestDistributionDustIsBounded(t *testing.T) {
	recipients := []Recipient{
		{splittertest.NewAddress(), 3333333},
		{splittertest.NewAddress(), 3333333},
		{splittertest.NewAddress(), 3333334},
	}
	balances := []uint64{BasisPoint, BasisPoint + 1, BasisPoint + 2, 77777777, 123456789012, 1 << 62}

	for _, balance := range balances {
		f := newFixture(t)
		p := f.params(recipients...)
		p.PlatformFee = 1234567
		e := f.deployBy(t, f.newFactory(t, splittertest.NewAddress()), p)
		f.fund(t, e.Address(), balance)

		_, err := f.redistribute(e)
		assert.Nil(t, err)

		left := f.balance(t, e.Address())
		if left >= uint64(len(recipients)) {
			t.Fatalf("balance %d: %d left with the engine", balance, left)
		}
	}
}

func TestRedistributeToken(t *testing.T) {
	f := newFixture(t)
	alice := splittertest.NewAddress()
	bob := splittertest.NewAddress()
	tok := splittertest.NewAddress()
	e := f.deploy(t, f.params(Recipient{alice, pct(20)}, Recipient{bob, pct(80)}))

	tokens := e.tokens
	assert.Nil(t, tokens.Register(f.db, tok, "GOLD"))

	redistribute := func(tok splitter.Address) error {
		_, err := f.exec(f.distributor, func(ctx context.Context, db splitter.CacheableKVStore) error {
			return e.RedistributeToken(ctx, db, tok)
		})
		return err
	}
	balanceOf := func(holder splitter.Address) uint64 {
		b, err := tokens.BalanceOf(f.db, tok, holder)
		assert.Nil(t, err)
		return b
	}

	assert.Nil(t, tokens.Mint(f.db, tok, e.Address(), 15000000))
	assert.Nil(t, redistribute(tok))
	assert.Equal(t, uint64(3000000), balanceOf(alice))
	assert.Equal(t, uint64(12000000), balanceOf(bob))
	assert.Equal(t, uint64(0), balanceOf(e.Address()))

	assert.Nil(t, tokens.Mint(f.db, tok, e.Address(), 15000000))
	assert.Nil(t, redistribute(tok))
	assert.Equal(t, uint64(6000000), balanceOf(alice))
	assert.Equal(t, uint64(24000000), balanceOf(bob))

	// There is no floor for tokens.
	assert.Nil(t, tokens.Mint(f.db, tok, e.Address(), 10))
	assert.Nil(t, redistribute(tok))
	assert.Equal(t, uint64(6000002), balanceOf(alice))
	assert.Equal(t, uint64(24000008), balanceOf(bob))

	assert.IsErr(t, ErrNullAddress, redistribute(nil))
	assert.IsErr(t, errors.ErrNotFound, redistribute(splittertest.NewAddress()))
}

func TestRedistributeTokenWithFee(t *testing.T) {
	f := newFixture(t)
	alice := splittertest.NewAddress()
	wallet := splittertest.NewAddress()
	tok := splittertest.NewAddress()
	p := f.params(Recipient{alice, BasisPoint})
	p.PlatformFee = pct(20)
	e := f.deployBy(t, f.newFactory(t, wallet), p)

	assert.Nil(t, e.tokens.Register(f.db, tok, "GOLD"))
	assert.Nil(t, e.tokens.Mint(f.db, tok, e.Address(), 50))

	res, err := f.exec(f.distributor, func(ctx context.Context, db splitter.CacheableKVStore) error {
		return e.RedistributeToken(ctx, db, tok)
	})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res.EventsNamed(EventDistributeToken)))

	got, err := e.tokens.BalanceOf(f.db, tok, wallet)
	assert.Nil(t, err)
	assert.Equal(t, uint64(10), got)
	got, err = e.tokens.BalanceOf(f.db, tok, alice)
	assert.Nil(t, err)
	assert.Equal(t, uint64(40), got)
}

func TestAutoDistribution(t *testing.T) {
	sender := splittertest.NewAddress()

	cases := map[string]struct {
		auto bool
		min  uint64
		// prefund is credited without notifying the engine.
		prefund    uint64
		recipients int
		amount     uint64
		wantPaid   bool
	}{
		"disabled": {
			auto: false, min: BasisPoint, recipients: 2, amount: 50 * unit,
		},
		"enabled": {
			auto: true, min: BasisPoint, recipients: 2, amount: 50 * unit,
			wantPaid: true,
		},
		"below minimum": {
			auto: true, min: 100 * unit, recipients: 2, amount: 50 * unit,
		},
		"exactly the minimum": {
			auto: true, min: 50 * unit, recipients: 2, amount: 50 * unit,
			wantPaid: true,
		},
		"small credit crosses the minimum": {
			auto: true, min: 50 * unit, prefund: 49 * unit, recipients: 2, amount: 1 * unit,
			wantPaid: true,
		},
		"small credit stays below the minimum": {
			auto: true, min: 50 * unit, prefund: 48 * unit, recipients: 2, amount: 1 * unit,
		},
		"maximum number of recipients": {
			auto: true, min: BasisPoint, recipients: AutoDistributionMaxRecipients, amount: 50 * unit,
			wantPaid: true,
		},
		"too many recipients": {
			auto: true, min: BasisPoint, recipients: AutoDistributionMaxRecipients + 1, amount: 50 * unit,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			recipients := make([]Recipient, tc.recipients)
			var sum uint64
			for i := range recipients {
				recipients[i] = Recipient{Address: splittertest.NewAddress(), Percentage: BasisPoint / uint64(tc.recipients)}
				sum += recipients[i].Percentage
			}
			recipients[0].Percentage += BasisPoint - sum

			p := f.params(recipients...)
			p.AutoNativeCurrencyDistribution = tc.auto
			p.MinAutoDistributionAmount = tc.min
			e := f.deploy(t, p)
			f.fund(t, e.Address(), tc.prefund)
			f.fund(t, sender, tc.amount)

			res, err := f.send(sender, e.Address(), tc.amount)
			assert.Nil(t, err)

			assert.Equal(t, tc.wantPaid, len(res.EventsNamed(EventDistributeNativeCurrency)) == 1)
			left := f.balance(t, e.Address())
			if tc.wantPaid {
				if left >= uint64(tc.recipients) {
					t.Fatalf("%d left with the engine", left)
				}
			} else {
				assert.Equal(t, tc.prefund+tc.amount, left)
			}
		})
	}
}

func TestAutoDistributionFailureRejectsCredit(t *testing.T) {
	f := newFixture(t)
	sender := splittertest.NewAddress()
	rejecting := f.deployCode(t, "rejecting")
	p := f.params(Recipient{rejecting, BasisPoint})
	p.AutoNativeCurrencyDistribution = true
	e := f.deploy(t, p)
	f.fund(t, sender, 50*unit)

	_, err := f.send(sender, e.Address(), 50*unit)
	assert.IsErr(t, ErrTransferFailed, err)
	assert.Equal(t, 50*unit, f.balance(t, sender))
	assert.Equal(t, uint64(0), f.balance(t, e.Address()))

	// Manual payout fails the same way and keeps the balance.
	f.fund(t, e.Address(), 50*unit)
	_, err = f.redistribute(e)
	assert.IsErr(t, ErrTransferFailed, err)
	assert.Equal(t, 50*unit, f.balance(t, e.Address()))
	assert.Equal(t, uint64(0), f.balance(t, rejecting))
}

func TestPlatformWalletTransferFailure(t *testing.T) {
	f := newFixture(t)
	alice := splittertest.NewAddress()
	p := f.params(Recipient{alice, BasisPoint})
	p.PlatformFee = pct(10)
	e := f.deployBy(t, f.newFactory(t, f.deployCode(t, "rejecting")), p)
	f.fund(t, e.Address(), 50*unit)

	_, err := f.redistribute(e)
	assert.IsErr(t, ErrTransferFailed, err)
	assert.Equal(t, 50*unit, f.balance(t, e.Address()))
	assert.Equal(t, uint64(0), f.balance(t, alice))
}

func TestReentrancy(t *testing.T) {
	f := newFixture(t)
	e := f.deploy(t, f.params(Recipient{splittertest.NewAddress(), BasisPoint}))

	_, err := f.exec(f.controller, func(ctx context.Context, db splitter.CacheableKVStore) error {
		ctx = splitter.WithEntered(ctx, e.Address())
		return e.SetRecipients(ctx, db, []Recipient{{splittertest.NewAddress(), BasisPoint}})
	})
	assert.IsErr(t, ErrReentrancy, err)

	// A credit arriving mid flight is accepted without a payout.
	p := f.params(Recipient{splittertest.NewAddress(), BasisPoint})
	p.AutoNativeCurrencyDistribution = true
	auto := f.deploy(t, p)
	sender := splittertest.NewAddress()
	f.fund(t, sender, 50*unit)
	res, err := f.exec(sender, func(ctx context.Context, db splitter.CacheableKVStore) error {
		ctx = splitter.WithEntered(ctx, auto.Address())
		return f.host.Transfer(ctx, db, sender, auto.Address(), 50*unit)
	})
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res.EventsNamed(EventDistributeNativeCurrency)))
	assert.Equal(t, 50*unit, f.balance(t, auto.Address()))
}

func TestQueriesOfUninitializedEngine(t *testing.T) {
	f := newFixture(t)
	c, err := f.host.Deploy(f.db, splittertest.NewAddress(), CodeKind)
	assert.Nil(t, err)
	e := c.(*Engine)

	_, err = e.RecipientsCount(f.db)
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = e.IsAutoNativeCurrencyDistribution(f.db)
	assert.IsErr(t, errors.ErrNotFound, err)
	ok, err := e.HasRole(f.db, Admin, f.owner)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	// Credits are accepted before initialization.
	sender := splittertest.NewAddress()
	f.fund(t, sender, unit)
	_, err = f.send(sender, e.Address(), unit)
	assert.Nil(t, err)
	assert.Equal(t, unit, f.balance(t, e.Address()))
}

func TestLoad(t *testing.T) {
	f := newFixture(t)
	e := f.deploy(t, f.params(Recipient{splittertest.NewAddress(), BasisPoint}))

	got, err := Load(f.host, f.db, e.Address())
	assert.Nil(t, err)
	assert.Equal(t, e.Address(), got.Address())

	_, err = Load(f.host, f.db, f.deployCode(t, "plain"))
	assert.IsErr(t, errors.ErrType, err)
	_, err = Load(f.host, f.db, splittertest.NewAddress())
	assert.IsErr(t, errors.ErrNotFound, err)
}
