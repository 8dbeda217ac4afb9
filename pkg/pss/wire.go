package pss

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/fxamacker/cbor/v2"
)

// G1Wire is the canonical fixed-width wire encoding of a group element
// (spec.md §3: "serialization to a canonical fixed-width byte form"),
// used whenever a G1 value crosses the network via pkg/net.Channel.
// Grounded on
// original_source/dist-primitives/src/utils/g1_serialization.rs::G1Wrapper,
// which serializes a G1 point as its compressed byte representation.
type G1Wire struct {
	bn254.G1Affine
}

// NewG1Wire converts a Jacobian group element to its wire form.
func NewG1Wire(p G1) G1Wire {
	var w G1Wire
	w.G1Affine.FromJacobian(&p)
	return w
}

// Jac converts back to Jacobian form for group arithmetic.
func (w G1Wire) Jac() G1 {
	var p G1
	p.FromAffine(&w.G1Affine)
	return p
}

// MarshalCBOR implements cbor.Marshaler, encoding the point as a cbor
// byte string holding its compressed affine representation.
func (w G1Wire) MarshalCBOR() ([]byte, error) {
	b := w.G1Affine.Marshal()
	out, err := cbor.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("pss: marshal G1Wire: %w", err)
	}
	return out, nil
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (w *G1Wire) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("pss: unmarshal G1Wire: %w", err)
	}
	if err := w.G1Affine.Unmarshal(b); err != nil {
		return fmt.Errorf("pss: decode G1 point: %w", err)
	}
	return nil
}

// WireSlice converts a slice of Jacobian points to their wire form.
func WireSlice(points []G1) []G1Wire {
	out := make([]G1Wire, len(points))
	for i, p := range points {
		out[i] = NewG1Wire(p)
	}
	return out
}

// JacSlice converts a slice of wire-form points back to Jacobian form.
func JacSlice(wire []G1Wire) []G1 {
	out := make([]G1, len(wire))
	for i, w := range wire {
		out[i] = w.Jac()
	}
	return out
}
