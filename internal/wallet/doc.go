// Package wallet defines the wallet collaborator the presentation layer talks
// to: transaction history with running balances, confirmation status, labels
// and the named network events that signal the history may have changed.
//
// Key derivation, signing and network synchronisation are not implemented
// here. Memory is an in-process Source fed either by configuration or by the
// daemon feed.
package wallet
