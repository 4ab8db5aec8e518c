package distribution

import (
	"context"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
)

// Role is the name of a permission set of an engine.
type Role string

const (
	Admin       Role = "admin"
	Controller  Role = "controller"
	Distributor Role = "distributor"
)

// Validate returns an error if the role is not known.
func (r Role) Validate() error {
	switch r {
	case Admin, Controller, Distributor:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "unknown role %q", string(r))
	}
}

// RoleAdmin returns the role that is allowed to grant and revoke given
// role. Controller administers itself, all other roles are administered
// by Admin.
func RoleAdmin(r Role) Role {
	if r == Controller {
		return Controller
	}
	return Admin
}

func memberKey(engine splitter.Address, role Role, account splitter.Address) []byte {
	key := make([]byte, 0, len(engine)+len(role)+len(account))
	key = append(key, engine...)
	key = append(key, role...)
	return append(key, account...)
}

func hasRole(db splitter.ReadOnlyKVStore, engine splitter.Address, role Role, account splitter.Address) (bool, error) {
	if len(account) == 0 {
		return false, nil
	}
	return members.Has(db, memberKey(engine, role, account))
}

// requireRole fails with an access denied error unless the caller of the
// current invocation holds given role.
func requireRole(ctx context.Context, db splitter.ReadOnlyKVStore, engine splitter.Address, role Role) error {
	caller, _ := splitter.GetCaller(ctx)
	switch ok, err := hasRole(db, engine, role, caller); {
	case err != nil:
		return err
	case !ok:
		return errRole(role)
	}
	return nil
}

// grantRole adds the account to the role holders. Granting a role that is
// already held is a noop.
func grantRole(ctx context.Context, db splitter.KVStore, engine splitter.Address, role Role, account splitter.Address) error {
	if err := role.Validate(); err != nil {
		return err
	}
	if account.IsNull() {
		return errors.Wrapf(ErrNullAddress, "%s role holder", role)
	}
	switch ok, err := hasRole(db, engine, role, account); {
	case err != nil:
		return err
	case ok:
		return nil
	}
	if err := members.Put(db, memberKey(engine, role, account), &Membership{Account: account}); err != nil {
		return err
	}
	sender, _ := splitter.GetCaller(ctx)
	splitter.EmitEvent(ctx, splitter.NewEvent(engine, EventRoleGranted,
		"role", role, "account", account, "sender", sender))
	return nil
}

// revokeRole removes the account from the role holders. Revoking a role
// that is not held is a noop.
func revokeRole(ctx context.Context, db splitter.KVStore, engine splitter.Address, role Role, account splitter.Address) error {
	if err := role.Validate(); err != nil {
		return err
	}
	switch ok, err := hasRole(db, engine, role, account); {
	case err != nil:
		return err
	case !ok:
		return nil
	}
	if err := members.Delete(db, memberKey(engine, role, account)); err != nil {
		return err
	}
	sender, _ := splitter.GetCaller(ctx)
	splitter.EmitEvent(ctx, splitter.NewEvent(engine, EventRoleRevoked,
		"role", role, "account", account, "sender", sender))
	return nil
}
