// Package pss implements packed Shamir secret sharing parameters and the
// pack/unpack transforms built on top of them (spec.md §3 "PackedSharingParams",
// §4.C "PSS parameters & transforms").
package pss

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// Domain is EvaluationDomain(F, k) from spec.md §3: the multiplicative
// subgroup of order 2^k of F*, with forward/inverse FFT acting in place.
// It wraps gnark-crypto's single-machine radix-2 FFT (the "assumed
// external" field/FFT library, spec.md §1), which is exactly the role
// the original Rust used ark-poly's Radix2EvaluationDomain for.
type Domain struct {
	inner *fft.Domain
	size  uint64
}

// NewDomain builds EvaluationDomain(F, k) for the smallest k with 2^k >= size.
// It fails (via a panic deep in gnark-crypto, surfaced here as an error
// after a sanity check) if size exceeds the field's 2-adicity.
func NewDomain(size uint64) (dom *Domain, err error) {
	if size == 0 {
		return nil, fmt.Errorf("pss: domain size must be positive")
	}
	defer func() {
		if r := recover(); r != nil {
			dom, err = nil, fmt.Errorf("pss: domain of size %d: %v", size, r)
		}
	}()
	d := fft.NewDomain(size)
	return &Domain{inner: d, size: d.Cardinality}, nil
}

// Size returns 2^k, the domain's cardinality.
func (d *Domain) Size() uint64 { return d.size }

// Omega is the domain's primitive 2^k-th root of unity.
func (d *Domain) Omega() fr.Element { return d.inner.Generator }

// OmegaInv is Omega's multiplicative inverse.
func (d *Domain) OmegaInv() fr.Element { return d.inner.GeneratorInv }

// FFT evaluates the polynomial with coefficients a (padded with zero to
// Size()) at every point of the domain, in place, in natural (not
// bit-reversed) order.
func (d *Domain) FFT(a []fr.Element) []fr.Element {
	a = padScalars(a, int(d.size))
	d.inner.FFT(a, fft.DIF)
	fft.BitReverse(a)
	return a
}

// IFFT interpolates the polynomial whose evaluations over the domain are a
// (padded with zero to Size()), returning its coefficient vector in place.
func (d *Domain) IFFT(a []fr.Element) []fr.Element {
	a = padScalars(a, int(d.size))
	fft.BitReverse(a)
	d.inner.FFTInverse(a, fft.DIT)
	return a
}

func padScalars(a []fr.Element, size int) []fr.Element {
	if len(a) == size {
		return a
	}
	if len(a) > size {
		panic(fmt.Sprintf("pss: vector of length %d does not fit in domain of size %d", len(a), size))
	}
	out := make([]fr.Element, size)
	copy(out, a)
	return out
}
