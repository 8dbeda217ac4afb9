// Package net implements the king-routed byte-channel network (spec.md
// §4.A) and the typed serializable channel layered over it (§4.B).
//
// Every method on Router is a synchronous barrier: it suspends the caller
// until every other party has made the matching call (spec.md §5). Calls
// to Broadcast/SendToKing/RecvFromKing must happen in the same order at
// every party; the router does not detect or recover from a party
// dropping out of lockstep, matching spec.md §7's "no partial-failure
// recovery" propagation policy.
package net

import "github.com/luxfi/distprove/pkg/party"

// Router is the process-wide session object each party owns for the
// lifetime of a protocol run (spec.md §4.A, Design Note "Global mutable
// network": explicit Init/Deinit scope rather than ambient global state).
type Router interface {
	// NParties returns n, the committee size.
	NParties() int
	// PartyID returns this process's party id.
	PartyID() party.ID
	// AmKing reports whether this party is the designated king.
	AmKing() bool

	// BroadcastBytes exchanges one payload per party: every party
	// contributes b and receives the full ordered array indexed by
	// party id.
	BroadcastBytes(b []byte) ([][]byte, error)

	// SendBytesToKing has every party send b to the king. The king's
	// return value is the ordered array of all n contributions; every
	// other party's return value is nil (spec.md's "King returns
	// Option" idiom, represented here as a nil slice rather than a
	// nullable reference so callers must check AmKing()).
	SendBytesToKing(b []byte) ([][]byte, error)

	// RecvBytesFromKing is the dual of SendBytesToKing: the king
	// supplies a fully populated per-party array and gets back its own
	// slot; every other party passes nil and receives its slot.
	RecvBytesFromKing(kingData [][]byte) ([]byte, error)

	// Deinit tears down the session's connections. Guaranteed teardown
	// is the caller's responsibility (defer router.Deinit()).
	Deinit() error
}
