// Package core holds the attribute verification domain: the resend request
// and result types, the closed AuthError taxonomy, the pure outcome
// classifier and the Service that invokes the identity provider.
//
// Provider, transport, persistence and messaging adapters depend on this
// package; core never depends on them.
package core
