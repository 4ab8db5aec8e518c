package token

import (
	"regexp"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/orm"
)

// IsTicker is the RegExp to ensure valid token tickers.
var IsTicker = regexp.MustCompile(`^[A-Z0-9]{3,8}$`).MatchString

// Token describes a registered fungible token.
type Token struct {
	Ticker string
	Supply uint64
}

// Validate ensures the token definition is correct.
func (t *Token) Validate() error {
	if !IsTicker(t.Ticker) {
		return errors.Field("Ticker", errors.ErrModel, "invalid ticker %q", t.Ticker)
	}
	return nil
}

// Holding is the balance of one holder of one token.
type Holding struct {
	Amount uint64
}

// Validate always succeeds. Any balance is valid.
func (h *Holding) Validate() error {
	return nil
}

var (
	tokens   = orm.NewModelBucket("token")
	holdings = orm.NewModelBucket("tokenbal")
)

// holdingKey returns the key of given holder balance for given token.
// Both addresses are of fixed size, so keys never collide.
func holdingKey(token, holder splitter.Address) []byte {
	key := make([]byte, 0, len(token)+len(holder))
	key = append(key, token...)
	return append(key, holder...)
}
