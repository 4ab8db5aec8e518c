/*
Package orm provides an easy to use db wrapper.

Break state space into prefixed sections called buckets. Each bucket
contains only one type of model. Models are validated before they are
written and encoded using go-amino, so any plain Go struct built from
amino-supported field types can be persisted without code generation.
*/
package orm
