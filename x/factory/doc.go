/*
Package factory implements the contract that creates splitter engines.

The factory owns the platform configuration: the platform wallet that
collects fees of all engines it created, and the platform fee applied to
new engines. Engines keep a reference to their factory and look up the
platform wallet at every payout, so changing the wallet affects all
existing engines while changing the fee affects only new ones.

Engine addresses are deterministic. They are derived from the factory
address, the deployer address and a deployer chosen nonce. A nonce can be
used only once per deployer.
*/
package factory
