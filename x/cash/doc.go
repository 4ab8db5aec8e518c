/*
Package cash implements the native currency ledger.

Every account holds a single native currency balance, stored in the
"wallet" bucket under the account address. Cash is a pure ledger: moving
coins never executes any contract code. Contract notification on incoming
credits is the responsibility of the host.
*/
package cash
