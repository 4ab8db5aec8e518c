/*
Package token implements fungible token ledgers.

A token is identified by its address. Each token keeps an independent
ledger of holdings. Transfers of a token that was never registered fail,
as do transfers exceeding the holder balance. Token transfers never notify
the receiving account.
*/
package token
