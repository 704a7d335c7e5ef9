// Package suggest infers a company's email domain and offers it as the domain
// part of the email field.
//
// Every Trigger takes a new sequence number. When a lookup resolves, its
// result is written only if no newer trigger has been issued and the email
// still lacks a domain at that moment; otherwise it is discarded. Failures
// are logged and never touch the form.
package suggest
