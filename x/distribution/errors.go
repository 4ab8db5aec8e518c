package distribution

import (
	"fmt"

	"github.com/iov-one/splitter/errors"
)

// Engine errors use codes 1001-1099.
var (
	// ErrNullAddress is returned when a null address is given where a
	// real account is required.
	ErrNullAddress = errors.Register(1001, "null address")

	// ErrRecipientAlreadyAdded is returned when a recipient set lists the
	// same account more than once.
	ErrRecipientAlreadyAdded = errors.Register(1002, "recipient already added")

	// ErrInvalidPercentage is returned when recipient percentages do not
	// sum up to exactly BasisPoint. Use InvalidPercentageError to learn
	// the actual sum.
	ErrInvalidPercentage = errors.Register(1003, "invalid percentage")

	// ErrImmutableRecipients is returned when the recipient set is
	// changed after it was made immutable.
	ErrImmutableRecipients = errors.Register(1004, "immutable recipients")

	// ErrTooLowValueToRedistribute is returned when the native currency
	// balance is too small to be split.
	ErrTooLowValueToRedistribute = errors.Register(1005, "too low value to redistribute")

	// ErrTransferFailed is returned when a native currency transfer to
	// the platform wallet or a recipient did not succeed.
	ErrTransferFailed = errors.Register(1006, "transfer failed")

	// ErrAlreadyInitialized is returned when an engine is initialized
	// more than once.
	ErrAlreadyInitialized = errors.Register(1007, "already initialized")

	// ErrReentrancy is returned when a state changing operation is
	// called on an engine that is already executing one.
	ErrReentrancy = errors.Register(1008, "reentrant call")
)

// InvalidPercentageError is returned when a recipient set does not sum up
// to BasisPoint. It wraps ErrInvalidPercentage.
type InvalidPercentageError struct {
	Sum uint64
}

func (e *InvalidPercentageError) Error() string {
	return fmt.Sprintf("percentages sum up to %d, want %d: %s", e.Sum, BasisPoint, ErrInvalidPercentage)
}

// Cause implements the causer interface.
func (e *InvalidPercentageError) Cause() error {
	return ErrInvalidPercentage
}

// errRole returns the access denied error for given role.
func errRole(role Role) error {
	return errors.Wrapf(errors.ErrUnauthorized, "requires role %s", role)
}
