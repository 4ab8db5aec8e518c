/*
Package coin implements the arithmetic of fungible value amounts.

All amounts are expressed in the smallest indivisible unit of an asset and
are represented as uint64. Every operation that could exceed the type
capacity returns ErrOverflow instead of silently wrapping.
*/
package coin

import (
	"math/bits"

	"github.com/iov-one/splitter/errors"
)

// Add returns the sum of two amounts.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return sum, nil
}

// Sub returns the difference of two amounts. Subtracting more than is
// available fails with ErrInsufficientAmount.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, errors.Wrapf(errors.ErrInsufficientAmount, "%d - %d", a, b)
	}
	return a - b, nil
}

// MulDiv returns floor(amount * numerator / denominator). Intermediate
// value is computed using 128 bits, so the multiplication never overflows.
// The result must fit into 64 bits and the denominator must not be zero.
//
// When numerator is not greater than denominator, the result is never
// greater than amount.
func MulDiv(amount, numerator, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, errors.Wrap(errors.ErrInput, "zero denominator")
	}
	hi, lo := bits.Mul64(amount, numerator)
	if hi >= denominator {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d * %d / %d", amount, numerator, denominator)
	}
	quo, _ := bits.Div64(hi, lo, denominator)
	return quo, nil
}

// Sum returns the sum of all given amounts.
func Sum(amounts ...uint64) (uint64, error) {
	var total uint64
	for _, a := range amounts {
		var err error
		if total, err = Add(total, a); err != nil {
			return 0, err
		}
	}
	return total, nil
}
