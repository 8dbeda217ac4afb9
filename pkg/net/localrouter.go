package net

import (
	"fmt"
	"sync"

	"github.com/luxfi/distprove/pkg/party"
)

// LocalRouter is an in-process loopback Router, used to simulate the full
// committee inside a single test process. It is the counterpart of the
// teacher's referenced internal/test.Network harness
// (luxfi/threshold/cmd/threshold-cli/main.go: "Running in local simulation
// mode...").
//
// All LocalRouters sharing a session must be constructed together via
// NewLocalSession, which wires them to a common Hub.
type LocalRouter struct {
	hub    *hub
	selfID party.ID
}

// NewLocalSession builds n LocalRouters, one per party id [0, n), sharing
// a single in-memory Hub.
func NewLocalSession(n int) []*LocalRouter {
	h := newHub(n)
	routers := make([]*LocalRouter, n)
	for i := 0; i < n; i++ {
		routers[i] = &LocalRouter{hub: h, selfID: party.ID(i)}
	}
	return routers
}

func (r *LocalRouter) NParties() int      { return r.hub.n }
func (r *LocalRouter) PartyID() party.ID  { return r.selfID }
func (r *LocalRouter) AmKing() bool       { return r.selfID.IsKing() }
func (r *LocalRouter) Deinit() error      { return nil }

func (r *LocalRouter) BroadcastBytes(b []byte) ([][]byte, error) {
	return r.hub.broadcast.enter(r.selfID, b), nil
}

func (r *LocalRouter) SendBytesToKing(b []byte) ([][]byte, error) {
	all := r.hub.toKing.enter(r.selfID, b)
	if !r.AmKing() {
		return nil, nil
	}
	return all, nil
}

func (r *LocalRouter) RecvBytesFromKing(kingData [][]byte) ([]byte, error) {
	if r.AmKing() && len(kingData) != r.hub.n {
		return nil, fmt.Errorf("net: king supplied %d slots, want %d", len(kingData), r.hub.n)
	}
	return r.hub.fromKing.enter(r.selfID, kingData), nil
}

// hub is the shared rendezvous point behind a LocalRouter session. Each of
// the three primitives gets its own reusable barrier so that repeated
// rounds of the protocol do not need an externally tracked round number:
// a barrier only accepts a fresh round once the previous one has fully
// closed, which the synchronous-barrier contract of Router guarantees
// cannot race (spec.md §5: "every call into 4.A is a synchronous barrier").
type hub struct {
	n         int
	broadcast *allToAllBarrier
	toKing    *allToAllBarrier
	fromKing  *kingBroadcastBarrier
}

func newHub(n int) *hub {
	return &hub{
		n:         n,
		broadcast: newAllToAllBarrier(n),
		toKing:    newAllToAllBarrier(n),
		fromKing:  newKingBroadcastBarrier(n),
	}
}

// allToAllBarrier collects one payload from every party and releases the
// full ordered array to all of them.
type allToAllBarrier struct {
	n    int
	mu   sync.Mutex
	open *allToAllSlot
}

type allToAllSlot struct {
	payloads [][]byte
	arrived  int
	done     chan struct{}
}

func newAllToAllBarrier(n int) *allToAllBarrier {
	return &allToAllBarrier{n: n}
}

func (b *allToAllBarrier) enter(id party.ID, payload []byte) [][]byte {
	b.mu.Lock()
	if b.open == nil {
		b.open = &allToAllSlot{payloads: make([][]byte, b.n), done: make(chan struct{})}
	}
	slot := b.open
	slot.payloads[id] = payload
	slot.arrived++
	full := slot.arrived == b.n
	if full {
		b.open = nil
	}
	b.mu.Unlock()

	if full {
		close(slot.done)
	} else {
		<-slot.done
	}
	return slot.payloads
}

// kingBroadcastBarrier is the asymmetric RecvBytesFromKing primitive: only
// the king's call carries real data, every call (king's included) blocks
// until all n have arrived.
type kingBroadcastBarrier struct {
	n    int
	mu   sync.Mutex
	open *kingBroadcastSlot
}

type kingBroadcastSlot struct {
	data    [][]byte
	arrived int
	done    chan struct{}
}

func newKingBroadcastBarrier(n int) *kingBroadcastBarrier {
	return &kingBroadcastBarrier{n: n}
}

func (b *kingBroadcastBarrier) enter(id party.ID, kingData [][]byte) []byte {
	b.mu.Lock()
	if b.open == nil {
		b.open = &kingBroadcastSlot{done: make(chan struct{})}
	}
	slot := b.open
	if kingData != nil {
		slot.data = kingData
	}
	slot.arrived++
	full := slot.arrived == b.n
	if full {
		b.open = nil
	}
	b.mu.Unlock()

	if full {
		close(slot.done)
	} else {
		<-slot.done
	}
	return slot.data[id]
}
