package distribution

import (
	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/orm"
)

const (
	// BasisPoint is the percentage denominator. It represents 100%.
	BasisPoint uint64 = 10000000

	// AutoDistributionMaxRecipients is the maximum number of recipients
	// for which a native currency credit is redistributed automatically.
	AutoDistributionMaxRecipients = 35
)

// LockState tells whether the recipient set can still be changed.
type LockState uint32

const (
	Mutable LockState = iota
	Immutable
)

func (s LockState) String() string {
	switch s {
	case Mutable:
		return "mutable"
	case Immutable:
		return "immutable"
	default:
		return "unknown"
	}
}

// Recipient is an account entitled to a percentage of every payout.
type Recipient struct {
	Address    splitter.Address `json:"address"`
	Percentage uint64           `json:"percentage"`
}

// Splitter is the state of a single engine instance. It is stored under
// the engine address.
type Splitter struct {
	// Recipients are kept in the order they were set.
	Recipients                     []Recipient
	Lock                           LockState
	AutoNativeCurrencyDistribution bool
	MinAutoDistributionAmount      uint64
	// PlatformFee is fixed when the engine is initialized.
	PlatformFee uint64
	// Factory is the contract that publishes the platform wallet. Fees
	// are not collected when it is null.
	Factory splitter.Address
}

var _ orm.Model = (*Splitter)(nil)

// Validate ensures the state holds a complete recipient set and a sane
// configuration.
func (s *Splitter) Validate() error {
	var errs error
	if s.Lock != Mutable && s.Lock != Immutable {
		errs = errors.AppendField(errs, "Lock", errors.ErrState)
	}
	if s.MinAutoDistributionAmount < BasisPoint {
		errs = errors.AppendField(errs, "MinAutoDistributionAmount", ErrTooLowValueToRedistribute)
	}
	if s.PlatformFee > BasisPoint {
		errs = errors.AppendField(errs, "PlatformFee", errors.ErrInput)
	}
	if len(s.Factory) != 0 {
		errs = errors.AppendField(errs, "Factory", s.Factory.Validate())
	}
	if err := validateRecipients(s.Recipients); err != nil {
		errs = errors.AppendField(errs, "Recipients", err)
	}
	return errs
}

// Percentage returns the share of given account, or zero if it is not a
// recipient.
func (s *Splitter) Percentage(addr splitter.Address) uint64 {
	for _, r := range s.Recipients {
		if r.Address.Equals(addr) {
			return r.Percentage
		}
	}
	return 0
}

// Membership marks an account as a role holder of an engine.
type Membership struct {
	Account splitter.Address
}

var _ orm.Model = (*Membership)(nil)

// Validate ensures the membership refers to a valid account.
func (m *Membership) Validate() error {
	return errors.Field("Account", m.Account.Validate(), "")
}

var (
	splitters = orm.NewModelBucket("splitter")
	members   = orm.NewModelBucket("role")
)

// loadSplitter returns the state of the engine at given address.
// ErrNotFound is returned for engines that were not initialized yet.
func loadSplitter(db splitter.ReadOnlyKVStore, addr splitter.Address) (*Splitter, error) {
	var s Splitter
	if err := splitters.One(db, addr, &s); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "splitter %s not initialized", addr)
		}
		return nil, err
	}
	return &s, nil
}

func saveSplitter(db splitter.KVStore, addr splitter.Address, s *Splitter) error {
	return splitters.Put(db, addr, s)
}
