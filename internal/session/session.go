// Package session derives a session identifier for a protocol run and a
// reproducible per-party randomness stream from it (spec.md §5:
// "deterministic given the PRNG seed at each party"), playing the role the
// teacher's RID/ChainKey pair plays for a threshold-signing session
// (protocols/lss/config, protocols/lss/keygen/round1.go's chain-key
// broadcast).
package session

import (
	"fmt"
	"hash"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"

	"github.com/luxfi/distprove/internal/wireconfig"
	"github.com/luxfi/distprove/pkg/party"
)

// idSize mirrors the teacher's RID width (32 bytes).
const idSize = 32

// ID identifies one protocol run: every party taking part in the same run
// must derive the same ID from the same inputs, and no two distinct runs
// should collide.
type ID [idSize]byte

// Derive computes the session ID from the committee's address file and the
// run's packing/problem-size parameters, the way protocols/lss/config
// mixes participant addresses and round parameters into its chain key.
// Every party with the same addrs/l/m derives the same ID independently,
// with no round-trip required.
func Derive(addrs wireconfig.Addresses, l, m int) ID {
	h := blake3.New()
	for _, a := range addrs {
		_, _ = io.WriteString(h, a)
		h.Write([]byte{0})
	}
	var params [16]byte
	putUint64(params[0:8], uint64(l))
	putUint64(params[8:16], uint64(m))
	h.Write(params[:])

	var id ID
	sum := h.Sum(nil)
	copy(id[:], sum)
	return id
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func (id ID) String() string {
	return fmt.Sprintf("%x", id[:])
}

// KDF derives this party's deterministic randomness stream for round
// round from the session ID, via HKDF-Expand keyed on the session ID with
// the party id and round number as the info string. Two parties never
// share a stream since the party id is part of the HKDF info; the same
// party replaying the same round deterministically reproduces the same
// stream (spec.md §5).
func KDF(id ID, self party.ID, round uint32) io.Reader {
	info := make([]byte, 0, 8)
	info = append(info, byte(self), byte(self>>8), byte(self>>16), byte(self>>24))
	info = append(info, byte(round), byte(round>>8), byte(round>>16), byte(round>>24))
	return hkdf.Expand(newBlake3Hash, id[:], info)
}

func newBlake3Hash() hash.Hash {
	return blake3.New()
}

// Scalar reads one field element's worth of bytes from r and reduces them
// into a scalar, the same read-bytes-then-SetBytes pattern gnark's own
// PLONK backend uses to turn Fiat-Shamir hash output into a challenge
// (internal/backend/bn254/plonk/prove.go derives beta/gamma/alpha/zeta
// this way). r may be crypto/rand.Reader for independent randomness or a
// KDF stream from this package for a reproducible one.
func Scalar(r io.Reader) (fr.Element, error) {
	var buf [fr.Bytes]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fr.Element{}, fmt.Errorf("session: read scalar randomness: %w", err)
	}
	var e fr.Element
	e.SetBytes(buf[:])
	return e, nil
}
