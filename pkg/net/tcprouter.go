package net

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/luxfi/distprove/internal/wireconfig"
	"github.com/luxfi/distprove/pkg/party"
)

// TCPRouter implements Router over a full mesh of TCP connections,
// addressed by an address file (spec.md §6: "Address file format", one
// host:port per line, index = party id). It is the out-of-the-box
// counterpart of LocalRouter for an actual multi-process deployment.
type TCPRouter struct {
	selfID party.ID
	n      int
	conns  []net.Conn // conns[j] is this party's connection to party j (nil for self)
	mu     []sync.Mutex
}

// InitTCPRouter dials/accepts connections to every other party listed in
// addrs, blocking until the full mesh is established. party lower index
// dials higher index's listener; see connectMesh for the exact rule.
func InitTCPRouter(addrs wireconfig.Addresses, selfID party.ID, dialTimeout time.Duration) (*TCPRouter, error) {
	n := len(addrs)
	if int(selfID) >= n {
		return nil, fmt.Errorf("net: party id %d out of range for %d addresses", selfID, n)
	}

	r := &TCPRouter{
		selfID: selfID,
		n:      n,
		conns:  make([]net.Conn, n),
		mu:     make([]sync.Mutex, n),
	}

	ln, err := net.Listen("tcp", addrs[selfID])
	if err != nil {
		return nil, fmt.Errorf("net: listen on %s: %w", addrs[selfID], err)
	}
	defer ln.Close()

	var wg sync.WaitGroup
	errs := make(chan error, n)

	// Lower-indexed parties dial out; higher-indexed parties accept the connection.
	// This gives every unordered pair exactly one connection.
	acceptsExpected := int(selfID)
	if acceptsExpected > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < acceptsExpected; i++ {
				conn, err := ln.Accept()
				if err != nil {
					errs <- fmt.Errorf("net: accept: %w", err)
					return
				}
				peer, err := identifyPeer(conn)
				if err != nil {
					errs <- err
					return
				}
				r.conns[peer] = conn
			}
		}()
	}

	for j := int(selfID) + 1; j < n; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			conn, err := net.DialTimeout("tcp", addrs[j], dialTimeout)
			if err != nil {
				errs <- fmt.Errorf("net: dial party %d at %s: %w", j, addrs[j], err)
				return
			}
			if err := announcePeer(conn, selfID); err != nil {
				errs <- err
				return
			}
			r.conns[j] = conn
		}(j)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func identifyPeer(conn net.Conn) (party.ID, error) {
	frame, err := wireconfig.ReadFrame(conn)
	if err != nil {
		return 0, fmt.Errorf("net: identify peer: %w", err)
	}
	if len(frame) != 4 {
		return 0, fmt.Errorf("net: malformed peer-identification frame")
	}
	id := party.ID(uint32(frame[0]) | uint32(frame[1])<<8 | uint32(frame[2])<<16 | uint32(frame[3])<<24)
	return id, nil
}

func announcePeer(conn net.Conn, selfID party.ID) error {
	id := uint32(selfID)
	frame := []byte{byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24)}
	return wireconfig.WriteFrame(conn, frame)
}

func (r *TCPRouter) NParties() int     { return r.n }
func (r *TCPRouter) PartyID() party.ID { return r.selfID }
func (r *TCPRouter) AmKing() bool      { return r.selfID.IsKing() }

func (r *TCPRouter) Deinit() error {
	var firstErr error
	for _, c := range r.conns {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BroadcastBytes sends b to every other party and collects their payloads,
// in party-id order, including this party's own contribution.
func (r *TCPRouter) BroadcastBytes(b []byte) ([][]byte, error) {
	out := make([][]byte, r.n)
	out[r.selfID] = b

	var wg sync.WaitGroup
	errs := make(chan error, r.n)
	for j := 0; j < r.n; j++ {
		if party.ID(j) == r.selfID {
			continue
		}
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			r.mu[j].Lock()
			defer r.mu[j].Unlock()
			if err := wireconfig.WriteFrame(r.conns[j], b); err != nil {
				errs <- err
				return
			}
			frame, err := wireconfig.ReadFrame(r.conns[j])
			if err != nil {
				errs <- err
				return
			}
			out[j] = frame
		}(j)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return nil, fmt.Errorf("net: broadcast: %w", err)
		}
	}
	return out, nil
}

// SendBytesToKing sends b to the king over the king connection; the king
// reads from every other party and returns the ordered array, everyone
// else gets nil.
func (r *TCPRouter) SendBytesToKing(b []byte) ([][]byte, error) {
	if r.AmKing() {
		out := make([][]byte, r.n)
		out[r.selfID] = b
		var wg sync.WaitGroup
		errs := make(chan error, r.n)
		for j := 0; j < r.n; j++ {
			if party.ID(j) == r.selfID {
				continue
			}
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				r.mu[j].Lock()
				defer r.mu[j].Unlock()
				frame, err := wireconfig.ReadFrame(r.conns[j])
				if err != nil {
					errs <- err
					return
				}
				out[j] = frame
			}(j)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				return nil, fmt.Errorf("net: send-to-king (king side): %w", err)
			}
		}
		return out, nil
	}

	r.mu[party.King].Lock()
	defer r.mu[party.King].Unlock()
	if err := wireconfig.WriteFrame(r.conns[party.King], b); err != nil {
		return nil, fmt.Errorf("net: send-to-king: %w", err)
	}
	return nil, nil
}

// RecvBytesFromKing is the dual of SendBytesToKing.
func (r *TCPRouter) RecvBytesFromKing(kingData [][]byte) ([]byte, error) {
	if r.AmKing() {
		if len(kingData) != r.n {
			return nil, fmt.Errorf("net: king supplied %d slots, want %d", len(kingData), r.n)
		}
		var wg sync.WaitGroup
		errs := make(chan error, r.n)
		for j := 0; j < r.n; j++ {
			if party.ID(j) == r.selfID {
				continue
			}
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				r.mu[j].Lock()
				defer r.mu[j].Unlock()
				if err := wireconfig.WriteFrame(r.conns[j], kingData[j]); err != nil {
					errs <- err
				}
			}(j)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				return nil, fmt.Errorf("net: recv-from-king (king side): %w", err)
			}
		}
		return kingData[r.selfID], nil
	}

	r.mu[party.King].Lock()
	defer r.mu[party.King].Unlock()
	frame, err := wireconfig.ReadFrame(r.conns[party.King])
	if err != nil {
		return nil, fmt.Errorf("net: recv-from-king: %w", err)
	}
	return frame, nil
}
