/*
Package splittertest provides helpers for testing code that is built on
top of the splitter packages.
*/
package splittertest

import (
	"encoding/binary"

	"github.com/iov-one/splitter"
	"golang.org/x/crypto/ed25519"
)

// NewCondition returns a signature condition of a freshly generated
// ed25519 key. Each call returns a different condition.
func NewCondition() splitter.Condition {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return splitter.NewCondition("sigs", "ed25519", pub)
}

// NewAddress returns the address of a fresh signature condition. Use it
// for plain wallets that hold no code.
func NewAddress() splitter.Address {
	return NewCondition().Address()
}

// SequenceID returns an ID encoded the same way the sequences encode
// their values.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
