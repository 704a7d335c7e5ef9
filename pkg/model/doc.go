// Package model defines the static form schema consumed by the validator, the
// form store and the front ends. A FormSchema is an ordered list of FieldSpec
// values; each spec carries its required flag, its initial value and a list of
// ValidationRule entries. Rules use canonical identifiers (minLength, pattern,
// email, oneOf, policy) with string parameters so schemas can be declared in
// YAML and compared deterministically in tests.
package model
