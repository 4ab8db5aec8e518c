package app

import (
	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/orm"
)

// Code is the record stored for every account that has code deployed.
type Code struct {
	Kind string
}

var _ orm.Model = (*Code)(nil)

// Validate ensures the code record is correct.
func (c *Code) Validate() error {
	if !isKind(c.Kind) {
		return errors.Field("Kind", errors.ErrModel, "invalid kind %q", c.Kind)
	}
	return nil
}

var codes = orm.NewModelBucket("code")

func loadCode(db splitter.ReadOnlyKVStore, addr splitter.Address) (*Code, error) {
	if addr.IsNull() {
		return nil, errors.Wrap(errors.ErrNotFound, "null address has no code")
	}
	var c Code
	if err := codes.One(db, addr, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
