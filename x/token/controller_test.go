package token

import (
	"testing"

	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
	"github.com/iov-one/splitter/splittertest"
	"github.com/iov-one/splitter/splittertest/assert"
	"github.com/iov-one/splitter/store"
)

func TestTransfer(t *testing.T) {
	tok := splittertest.NewAddress()
	unknown := splittertest.NewAddress()
	alice := splittertest.NewAddress()
	bob := splittertest.NewAddress()

	cases := map[string]struct {
		token    splitter.Address
		amount   uint64
		wantErr  *errors.Error
		wantFrom uint64
		wantTo   uint64
	}{
		"transfer": {
			token: tok, amount: 30,
			wantFrom: 70, wantTo: 30,
		},
		"zero transfer is allowed": {
			token: tok, amount: 0,
			wantFrom: 100, wantTo: 0,
		},
		"insufficient holding": {
			token: tok, amount: 101,
			wantErr:  errors.ErrInsufficientAmount,
			wantFrom: 100, wantTo: 0,
		},
		"unknown token": {
			token: unknown, amount: 1,
			wantErr:  errors.ErrNotFound,
			wantFrom: 100, wantTo: 0,
		},
		"null token": {
			token: nil, amount: 1,
			wantErr:  errors.ErrNotFound,
			wantFrom: 100, wantTo: 0,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController()
			assert.Nil(t, ctrl.Register(db, tok, "TKN"))
			assert.Nil(t, ctrl.Mint(db, tok, alice, 100))

			assert.IsErr(t, tc.wantErr, ctrl.Transfer(db, tc.token, alice, bob, tc.amount))

			got, err := ctrl.BalanceOf(db, tok, alice)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantFrom, got)
			got, err = ctrl.BalanceOf(db, tok, bob)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantTo, got)
		})
	}
}

func TestRegister(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	tok := splittertest.NewAddress()

	assert.FieldError(t, ctrl.Register(db, tok, "lower"), "Ticker", errors.ErrModel)
	assert.Nil(t, ctrl.Register(db, tok, "TKN"))
	assert.IsErr(t, errors.ErrDuplicate, ctrl.Register(db, tok, "TKN"))

	var got Token
	assert.Nil(t, tokens.One(db, tok, &got))
	assert.Equal(t, "TKN", got.Ticker)
}

func TestGenesis(t *testing.T) {
	tok := splittertest.NewAddress()
	alice := splittertest.NewAddress()
	opts := splitter.Options{
		"token": []byte(`[{
			"address": "` + tok.String() + `",
			"ticker": "GOLD",
			"holdings": [{"address": "` + alice.String() + `", "amount": 15000000}]
		}]`),
	}
	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	got, err := NewController().BalanceOf(db, tok, alice)
	assert.Nil(t, err)
	assert.Equal(t, uint64(15000000), got)
}
