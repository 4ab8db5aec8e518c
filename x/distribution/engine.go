package distribution

import (
	"context"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/app"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/x/token"
)

// CodeKind is the kind under which the engine code is registered with the
// host.
const CodeKind = "splitter"

// Node is implemented by contracts that take part in cascading payouts.
// Each call is made in its own invocation and any failure only stops the
// cascade at that node.
type Node interface {
	splitter.Contract
	HasRole(db splitter.ReadOnlyKVStore, role Role, account splitter.Address) (bool, error)
	IsAutoNativeCurrencyDistribution(db splitter.ReadOnlyKVStore) (bool, error)
	RedistributeNativeCurrency(ctx context.Context, db splitter.CacheableKVStore) error
	RedistributeToken(ctx context.Context, db splitter.CacheableKVStore, token splitter.Address) error
}

// PlatformWalletProvider is implemented by the factory contract. Engines
// created by the factory query it for the platform wallet at every payout
// that carries a fee.
type PlatformWalletProvider interface {
	splitter.Contract
	PlatformWallet(db splitter.ReadOnlyKVStore) (splitter.Address, error)
}

// Engine is the splitter code bound to a single account.
type Engine struct {
	host    *app.Host
	addr    splitter.Address
	tokens  token.Controller
	metrics *Metrics
}

var (
	_ Node              = (*Engine)(nil)
	_ splitter.Receiver = (*Engine)(nil)
)

// RegisterCode makes the engine deployable on given host. Metrics can be
// nil.
func RegisterCode(h *app.Host, m *Metrics) {
	h.Register(CodeKind, func(h *app.Host, addr splitter.Address) splitter.Contract {
		return &Engine{
			host:    h,
			addr:    addr,
			tokens:  token.NewController(),
			metrics: m,
		}
	})
}

// Load returns the engine deployed at given address.
func Load(h *app.Host, db splitter.ReadOnlyKVStore, addr splitter.Address) (*Engine, error) {
	c, err := h.Contract(db, addr)
	if err != nil {
		return nil, err
	}
	e, ok := c.(*Engine)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%s is not a splitter", addr)
	}
	return e, nil
}

// Address returns the engine account address.
func (e *Engine) Address() splitter.Address {
	return e.addr
}

// InitParams holds the complete configuration of a new engine.
type InitParams struct {
	Owner                          splitter.Address   `json:"owner"`
	Controller                     splitter.Address   `json:"controller"`
	Distributors                   []splitter.Address `json:"distributors"`
	ImmutableRecipients            bool               `json:"immutable_recipients"`
	AutoNativeCurrencyDistribution bool               `json:"auto_native_currency_distribution"`
	MinAutoDistributionAmount      uint64             `json:"min_auto_distribution_amount"`
	PlatformFee                    uint64             `json:"platform_fee"`
	Recipients                     []Recipient        `json:"recipients"`
}

// Initialize configures the engine. It can succeed only once. When the
// caller is a contract, it is recorded as the factory of this engine.
func (e *Engine) Initialize(ctx context.Context, db splitter.CacheableKVStore, p InitParams) error {
	return e.guarded(ctx, db, func(ctx context.Context, db splitter.CacheableKVStore) error {
		switch ok, err := splitters.Has(db, e.addr); {
		case err != nil:
			return err
		case ok:
			return errors.Wrapf(ErrAlreadyInitialized, "splitter %s", e.addr)
		}
		if p.MinAutoDistributionAmount < BasisPoint {
			return errors.Wrapf(ErrTooLowValueToRedistribute, "min auto distribution amount %d", p.MinAutoDistributionAmount)
		}
		if p.PlatformFee > BasisPoint {
			return errors.Wrapf(errors.ErrInput, "platform fee %d exceeds %d", p.PlatformFee, BasisPoint)
		}

		if err := grantRole(ctx, db, e.addr, Admin, p.Owner); err != nil {
			return errors.Wrap(err, "owner")
		}
		if err := grantRole(ctx, db, e.addr, Controller, p.Controller); err != nil {
			return errors.Wrap(err, "controller")
		}
		for i, d := range p.Distributors {
			if err := grantRole(ctx, db, e.addr, Distributor, d); err != nil {
				return errors.Wrapf(err, "distributor #%d", i)
			}
		}

		s := &Splitter{
			Lock:                           Mutable,
			AutoNativeCurrencyDistribution: p.AutoNativeCurrencyDistribution,
			MinAutoDistributionAmount:      p.MinAutoDistributionAmount,
			PlatformFee:                    p.PlatformFee,
		}
		if caller, _ := splitter.GetCaller(ctx); e.host.IsContract(db, caller) {
			s.Factory = caller.Clone()
		}
		if err := setRecipients(s, p.Recipients); err != nil {
			return err
		}
		if p.ImmutableRecipients {
			s.Lock = Immutable
		}
		if err := saveSplitter(db, e.addr, s); err != nil {
			return err
		}
		splitter.EmitEvent(ctx, splitter.NewEvent(e.addr, EventInitialized,
			"owner", p.Owner, "controller", p.Controller, "factory", s.Factory, "platform_fee", s.PlatformFee))
		splitter.EmitEvent(ctx, recipientsEvent(e.addr, s))
		if s.Lock == Immutable {
			splitter.EmitEvent(ctx, splitter.NewEvent(e.addr, EventSetImmutableRecipients))
		}
		splitter.GetLogger(ctx).Info("splitter initialized", "splitter", e.addr, "recipients", len(s.Recipients))
		return nil
	})
}

// SetRecipients replaces the recipient set.
func (e *Engine) SetRecipients(ctx context.Context, db splitter.CacheableKVStore, recipients []Recipient) error {
	return e.update(ctx, db, Controller, func(ctx context.Context, db splitter.CacheableKVStore, s *Splitter) error {
		if err := setRecipients(s, recipients); err != nil {
			return err
		}
		splitter.EmitEvent(ctx, recipientsEvent(e.addr, s))
		return nil
	})
}

// SetRecipientsExt replaces the recipient set and makes it immutable.
func (e *Engine) SetRecipientsExt(ctx context.Context, db splitter.CacheableKVStore, recipients []Recipient) error {
	return e.update(ctx, db, Controller, func(ctx context.Context, db splitter.CacheableKVStore, s *Splitter) error {
		if err := setRecipients(s, recipients); err != nil {
			return err
		}
		s.Lock = Immutable
		splitter.EmitEvent(ctx, recipientsEvent(e.addr, s))
		splitter.EmitEvent(ctx, splitter.NewEvent(e.addr, EventSetImmutableRecipients))
		return nil
	})
}

// SetImmutableRecipients permanently locks the recipient set.
func (e *Engine) SetImmutableRecipients(ctx context.Context, db splitter.CacheableKVStore) error {
	return e.update(ctx, db, Admin, func(ctx context.Context, db splitter.CacheableKVStore, s *Splitter) error {
		if s.Lock == Immutable {
			return errors.Wrap(ErrImmutableRecipients, "already immutable")
		}
		s.Lock = Immutable
		splitter.EmitEvent(ctx, splitter.NewEvent(e.addr, EventSetImmutableRecipients))
		splitter.GetLogger(ctx).Info("recipients locked", "splitter", e.addr)
		return nil
	})
}

// SetAutoNativeCurrencyDistribution enables or disables paying out native
// currency credits as they arrive.
func (e *Engine) SetAutoNativeCurrencyDistribution(ctx context.Context, db splitter.CacheableKVStore, enabled bool) error {
	return e.update(ctx, db, Admin, func(ctx context.Context, db splitter.CacheableKVStore, s *Splitter) error {
		if s.AutoNativeCurrencyDistribution == enabled {
			return nil
		}
		s.AutoNativeCurrencyDistribution = enabled
		splitter.EmitEvent(ctx, splitter.NewEvent(e.addr, EventSetAutoNativeCurrencyDistribution, "enabled", enabled))
		splitter.GetLogger(ctx).Info("auto distribution changed", "splitter", e.addr, "enabled", enabled)
		return nil
	})
}

// SetMinAutoDistributionAmount sets the balance required for a native
// credit to be paid out automatically.
func (e *Engine) SetMinAutoDistributionAmount(ctx context.Context, db splitter.CacheableKVStore, amount uint64) error {
	return e.update(ctx, db, Admin, func(ctx context.Context, db splitter.CacheableKVStore, s *Splitter) error {
		if amount < BasisPoint {
			return errors.Wrapf(ErrTooLowValueToRedistribute, "min auto distribution amount %d", amount)
		}
		if s.MinAutoDistributionAmount == amount {
			return nil
		}
		s.MinAutoDistributionAmount = amount
		splitter.EmitEvent(ctx, splitter.NewEvent(e.addr, EventSetMinAutoDistributionAmount, "amount", amount))
		splitter.GetLogger(ctx).Info("min auto distribution amount changed", "splitter", e.addr, "amount", amount)
		return nil
	})
}

// RedistributeNativeCurrency pays out the whole native currency balance.
func (e *Engine) RedistributeNativeCurrency(ctx context.Context, db splitter.CacheableKVStore) error {
	return e.update(ctx, db, Distributor, func(ctx context.Context, db splitter.CacheableKVStore, s *Splitter) error {
		return e.distributeNative(ctx, db, s)
	})
}

// RedistributeToken pays out the whole balance of given token.
func (e *Engine) RedistributeToken(ctx context.Context, db splitter.CacheableKVStore, tok splitter.Address) error {
	return e.update(ctx, db, Distributor, func(ctx context.Context, db splitter.CacheableKVStore, s *Splitter) error {
		if tok.IsNull() {
			return errors.Wrap(ErrNullAddress, "token")
		}
		return e.distributeToken(ctx, db, s, tok)
	})
}

// Receive is called for every native currency credit. The credit is paid
// out immediately if auto distribution is enabled, the balance reached
// the minimum and the recipient set is small enough. Credits arriving
// while the engine is executing are only accepted.
func (e *Engine) Receive(ctx context.Context, db splitter.CacheableKVStore, amount uint64) error {
	if splitter.IsEntered(ctx, e.addr) {
		return nil
	}
	s, err := loadSplitter(db, e.addr)
	switch {
	case errors.ErrNotFound.Is(err):
		return nil
	case err != nil:
		return err
	}
	if !s.AutoNativeCurrencyDistribution || len(s.Recipients) > AutoDistributionMaxRecipients {
		return nil
	}
	balance, err := e.host.Balance(db, e.addr)
	if err != nil {
		return err
	}
	if balance < s.MinAutoDistributionAmount {
		return nil
	}
	return e.distributeNative(splitter.WithEntered(ctx, e.addr), db, s)
}

// GrantRole adds the account to the role holders. The caller must hold
// the administering role.
func (e *Engine) GrantRole(ctx context.Context, db splitter.CacheableKVStore, role Role, account splitter.Address) error {
	return e.guarded(ctx, db, func(ctx context.Context, db splitter.CacheableKVStore) error {
		if err := role.Validate(); err != nil {
			return err
		}
		if err := requireRole(ctx, db, e.addr, RoleAdmin(role)); err != nil {
			return err
		}
		return grantRole(ctx, db, e.addr, role, account)
	})
}

// RevokeRole removes the account from the role holders. The caller must
// hold the administering role.
func (e *Engine) RevokeRole(ctx context.Context, db splitter.CacheableKVStore, role Role, account splitter.Address) error {
	return e.guarded(ctx, db, func(ctx context.Context, db splitter.CacheableKVStore) error {
		if err := role.Validate(); err != nil {
			return err
		}
		if err := requireRole(ctx, db, e.addr, RoleAdmin(role)); err != nil {
			return err
		}
		return revokeRole(ctx, db, e.addr, role, account)
	})
}

// RenounceRole removes the caller from the role holders.
func (e *Engine) RenounceRole(ctx context.Context, db splitter.CacheableKVStore, role Role) error {
	return e.guarded(ctx, db, func(ctx context.Context, db splitter.CacheableKVStore) error {
		caller, _ := splitter.GetCaller(ctx)
		return revokeRole(ctx, db, e.addr, role, caller)
	})
}

// HasRole returns true if the account holds given role.
func (e *Engine) HasRole(db splitter.ReadOnlyKVStore, role Role, account splitter.Address) (bool, error) {
	if err := role.Validate(); err != nil {
		return false, err
	}
	return hasRole(db, e.addr, role, account)
}

// RecipientAt returns the recipient at given position.
func (e *Engine) RecipientAt(db splitter.ReadOnlyKVStore, i int) (Recipient, error) {
	s, err := loadSplitter(db, e.addr)
	if err != nil {
		return Recipient{}, err
	}
	if i < 0 || i >= len(s.Recipients) {
		return Recipient{}, errors.Wrapf(errors.ErrNotFound, "recipient #%d", i)
	}
	return s.Recipients[i], nil
}

// RecipientPercentage returns the share of given account. Accounts that
// are not recipients have a zero share.
func (e *Engine) RecipientPercentage(db splitter.ReadOnlyKVStore, addr splitter.Address) (uint64, error) {
	s, err := loadSplitter(db, e.addr)
	if err != nil {
		return 0, err
	}
	return s.Percentage(addr), nil
}

// RecipientsCount returns the number of recipients.
func (e *Engine) RecipientsCount(db splitter.ReadOnlyKVStore) (int, error) {
	s, err := loadSplitter(db, e.addr)
	if err != nil {
		return 0, err
	}
	return len(s.Recipients), nil
}

// Recipients returns the recipient set in its order.
func (e *Engine) Recipients(db splitter.ReadOnlyKVStore) ([]Recipient, error) {
	s, err := loadSplitter(db, e.addr)
	if err != nil {
		return nil, err
	}
	return s.Recipients, nil
}

func (e *Engine) IsImmutableRecipients(db splitter.ReadOnlyKVStore) (bool, error) {
	s, err := loadSplitter(db, e.addr)
	if err != nil {
		return false, err
	}
	return s.Lock == Immutable, nil
}

func (e *Engine) IsAutoNativeCurrencyDistribution(db splitter.ReadOnlyKVStore) (bool, error) {
	s, err := loadSplitter(db, e.addr)
	if err != nil {
		return false, err
	}
	return s.AutoNativeCurrencyDistribution, nil
}

func (e *Engine) MinAutoDistributionAmount(db splitter.ReadOnlyKVStore) (uint64, error) {
	s, err := loadSplitter(db, e.addr)
	if err != nil {
		return 0, err
	}
	return s.MinAutoDistributionAmount, nil
}

func (e *Engine) PlatformFee(db splitter.ReadOnlyKVStore) (uint64, error) {
	s, err := loadSplitter(db, e.addr)
	if err != nil {
		return 0, err
	}
	return s.PlatformFee, nil
}

// Factory returns the address of the factory that created the engine.
// Engines not created by a factory return nil.
func (e *Engine) Factory(db splitter.ReadOnlyKVStore) (splitter.Address, error) {
	s, err := loadSplitter(db, e.addr)
	if err != nil {
		return nil, err
	}
	return s.Factory, nil
}

// guarded runs fn in its own invocation with the engine marked as
// executing. It fails if the engine is already executing up the call
// chain.
func (e *Engine) guarded(ctx context.Context, db splitter.CacheableKVStore, fn splitter.ContractFunc) error {
	if splitter.IsEntered(ctx, e.addr) {
		return errors.Wrapf(ErrReentrancy, "splitter %s", e.addr)
	}
	caller, _ := splitter.GetCaller(ctx)
	return e.host.Invoke(splitter.WithEntered(ctx, e.addr), db, caller, fn)
}

// update is guarded with a role check. It loads the engine state and
// saves it once fn succeeds.
func (e *Engine) update(
	ctx context.Context,
	db splitter.CacheableKVStore,
	role Role,
	fn func(context.Context, splitter.CacheableKVStore, *Splitter) error,
) error {
	return e.guarded(ctx, db, func(ctx context.Context, db splitter.CacheableKVStore) error {
		if err := requireRole(ctx, db, e.addr, role); err != nil {
			return err
		}
		s, err := loadSplitter(db, e.addr)
		if err != nil {
			return err
		}
		if err := fn(ctx, db, s); err != nil {
			return err
		}
		return saveSplitter(db, e.addr, s)
	})
}

func recipientsEvent(engine splitter.Address, s *Splitter) splitter.Event {
	keyvals := make([]interface{}, 0, 2*len(s.Recipients))
	for _, r := range s.Recipients {
		keyvals = append(keyvals, r.Address, r.Percentage)
	}
	return splitter.NewEvent(engine, EventSetRecipients, keyvals...)
}
