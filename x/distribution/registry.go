package distribution

import (
	"math"

	"github.com/iov-one/splitter/coin"
	"github.com/iov-one/splitter/errors"
)

// validateRecipients ensures the recipient set has no null or duplicated
// accounts and that the percentages sum up to exactly BasisPoint. Account
// errors are field errors named by the recipient position.
func validateRecipients(recipients []Recipient) error {
	var sum uint64
	for i, r := range recipients {
		if r.Address.IsNull() {
			return errors.Field(errors.FieldPath(i, "Address"), ErrNullAddress, "recipient")
		}
		if err := r.Address.Validate(); err != nil {
			return errors.Field(errors.FieldPath(i, "Address"), err, "recipient")
		}
		for _, prev := range recipients[:i] {
			if prev.Address.Equals(r.Address) {
				return errors.Field(errors.FieldPath(i, "Address"), ErrRecipientAlreadyAdded, "recipient %s", r.Address)
			}
		}
		s, err := coin.Add(sum, r.Percentage)
		if err != nil {
			s = math.MaxUint64
		}
		sum = s
	}
	if sum != BasisPoint {
		return &InvalidPercentageError{Sum: sum}
	}
	return nil
}

// setRecipients replaces the whole recipient set. The state is modified
// even if the new set is invalid, so the caller must not persist it after
// a failure.
func setRecipients(s *Splitter, recipients []Recipient) error {
	if s.Lock == Immutable {
		return errors.Wrap(ErrImmutableRecipients, "cannot set recipients")
	}
	s.Recipients = make([]Recipient, 0, len(recipients))
	for _, r := range recipients {
		s.Recipients = append(s.Recipients, Recipient{
			Address:    r.Address.Clone(),
			Percentage: r.Percentage,
		})
	}
	return validateRecipients(s.Recipients)
}
