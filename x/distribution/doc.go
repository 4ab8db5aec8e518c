/*
Package distribution implements the splitter engine, a contract that owns
a balance and pays it out to a registered set of recipients according to
fixed percentage shares.

Percentages are expressed in parts per BasisPoint. The recipient set must
always sum up to exactly BasisPoint. The engine can pay out both native
currency and token balances. A platform fee is extracted first and sent
to the platform wallet published by the factory that created the engine.

When a recipient is itself an engine that granted the paying engine the
Distributor role, the payout cascades into that recipient. Cascading is
best effort: a failure inside a downstream engine is logged and dropped,
it never rolls back the payouts already made.

Every engine instance is guarded by three roles:

  Admin        configuration and the immutability lock
  Controller   recipient set changes
  Distributor  explicit payouts

Once the recipients are made immutable, they can never be changed again.
*/
package distribution
