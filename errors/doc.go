/*
Package errors implements the error types used across splitter.

Every error returned by this module should wrap one of the root errors
declared with Register. Root errors carry a code that allows the caller to
distinguish the kind of failure without parsing messages.

Reuse the errors declared in this package whenever possible. An extension
that needs its own kind of failure registers it during the program startup,
for example

	var ErrNullAddress = errors.Register(1001, "null address")

Errors created with ErrXyz.New/Newf or wrapped with Wrap/Wrapf carry a stack
trace recorded at the innermost wrap. Use fmt verbs to inspect it

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
