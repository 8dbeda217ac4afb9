package pss

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/cronokirby/saferith"
)

// G1 is the group element type packed shares of group elements are built
// from (spec.md §3 "Group element G"). Jacobian form is used internally so
// that FFT butterflies accumulate without repeated affine normalization;
// callers at the package boundary (pkg/dmsm, pkg/kzg) convert to/from
// affine for serialization.
type G1 = bn254.G1Jac

// fftGroup runs an in-place iterative Cooley-Tukey DIT FFT over group
// elements, the group analogue of Domain.FFT. It mirrors
// original_source/dist-primitives/src/utils/domain_utils.rs::fft_on_group_elements,
// replacing field multiplication by scalar multiplication and field
// addition by group addition.
func fftGroup(a []G1, omega fr.Element) {
	n := len(a)
	bitReverseGroup(a)
	for size := 2; size <= n; size *= 2 {
		half := size / 2
		wn := new(fr.Element).Exp(omega, natUint64(uint64(n/size)))
		for i := 0; i < n; i += size {
			var w fr.Element
			w.SetOne()
			for j := 0; j < half; j++ {
				var t G1
				wBig := new(big.Int)
				w.BigInt(wBig)
				t.ScalarMultiplication(&a[i+j+half], wBig)

				var sum, diff G1
				sum.Set(&a[i+j]).AddAssign(&t)
				diff.Set(&a[i+j]).SubAssign(&t)
				a[i+j] = sum
				a[i+j+half] = diff

				w.Mul(&w, wn)
			}
		}
	}
}

// ifftGroup is fftGroup's inverse: DIT butterfly with omega^-1, followed
// by scalar multiplication of every coordinate by n^-1.
func ifftGroup(a []G1, omegaInv fr.Element) {
	fftGroup(a, omegaInv)
	n := len(a)
	var invN fr.Element
	invN.SetBigInt(natUint64(uint64(n)))
	invN.Inverse(&invN)
	invNBig := new(big.Int)
	invN.BigInt(invNBig)
	for i := range a {
		a[i].ScalarMultiplication(&a[i], invNBig)
	}
}

// natUint64 builds a big.Int from a small integer via saferith.Nat, the
// same index/position-scalar construction the committee-selection and
// polynomial-evaluation code uses elsewhere in the ecosystem this module
// is drawn from (luxfi/threshold/pkg/math/polynomial: "group.NewScalar().
// SetNat(new(saferith.Nat).SetUint64(...))").
func natUint64(i uint64) *big.Int {
	return new(saferith.Nat).SetUint64(i).Big()
}

func bitReverseGroup(a []G1) {
	n := len(a)
	for i, j := 0, 0; i < n; i++ {
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j &^= bit
		}
		j |= bit
	}
}

// FFTGroup evaluates the group-element "polynomial" a (padded to Size()
// with the group identity) over the domain, in natural order.
func (d *Domain) FFTGroup(a []G1) []G1 {
	out := padGroup(a, int(d.size))
	fftGroup(out, d.Omega())
	return out
}

// IFFTGroup interpolates group-element evaluations a (padded to Size())
// back to "coefficient" form.
func (d *Domain) IFFTGroup(a []G1) []G1 {
	out := padGroup(a, int(d.size))
	ifftGroup(out, d.OmegaInv())
	return out
}

func padGroup(a []G1, size int) []G1 {
	if len(a) == size {
		return append([]G1(nil), a...)
	}
	if len(a) > size {
		panic(fmt.Sprintf("pss: group vector of length %d does not fit in domain of size %d", len(a), size))
	}
	out := make([]G1, size)
	copy(out, a)
	return out // remaining entries are the zero value, i.e. the group identity
}

// PackExpFromPublic is pack_from_public's group analogue: IFFT over
// secret, FFT over share. Grounded on
// original_source/dist-primitives/src/dmsm/dmsm.rs::packexp_from_public.
func (p *Params) PackExpFromPublic(secrets []G1) ([]G1, error) {
	if len(secrets) != p.L {
		return nil, fmt.Errorf("pss: packexp_from_public expects %d secrets, got %d", p.L, len(secrets))
	}
	coeffs := p.Secret.IFFTGroup(secrets)
	coeffs = padGroup(coeffs, int(p.Share.Size()))
	return p.Share.FFTGroup(coeffs), nil
}

// UnpackExp is the group analogue of Unpack/Unpack2, used by distributed
// MSM to recover the true result from n degree-1 or degree-2 packed group
// shares. Grounded on
// original_source/dist-primitives/src/dmsm/dmsm.rs::unpackexp: both the
// degree-1 and degree-2 branches return L elements (degree2 additionally
// selects a stride-2 subsequence of the first 2L coset-evaluated
// coordinates before truncating to L), which is why distributed MSM sums
// L (not 2L) group elements regardless of degree.
//
// In debug builds (spec.md §4.D "Debug-mode invariant"), every
// interpolated coefficient beyond the degree bound must equal the group
// identity; the check runs only while pssDebugAssertions is true, which
// package tests set to exercise it.
func (p *Params) UnpackExp(shares []G1, degree2 bool) ([]G1, error) {
	if len(shares) != p.N {
		return nil, fmt.Errorf("pss: unpackexp expects %d shares, got %d", p.N, len(shares))
	}
	coeffs := p.Share.IFFTGroup(shares)

	if pssDebugAssertions {
		d := p.T + p.L
		if degree2 {
			d = 2 * (p.T + p.L)
		}
		for i := d + 1; i < p.N; i++ {
			if !coeffs[i].Equal(&identity) {
				return nil, fmt.Errorf("pss: unpackexp: interpolated polynomial has degree > bound %d", d)
			}
		}
	}

	if degree2 {
		evals := p.Secret2.FFTGroup(coeffs)
		window := evals[0 : 2*p.L]
		out := make([]G1, 0, p.L)
		for i := 0; i < len(window); i += 2 {
			out = append(out, window[i])
		}
		return out, nil
	}

	evals := p.Secret.FFTGroup(coeffs)
	out := make([]G1, p.L)
	copy(out, evals[:p.L])
	return out, nil
}

// pssDebugAssertions mirrors Rust's #[cfg(debug_assertions)] gate on the
// degree-bound check; it is false by default so a production build does
// not pay for an O(n) check on every MSM round, and package tests that
// exercise the check set it to true for their duration.
var pssDebugAssertions = false

// identity is the group identity element, the zero value of G1.
var identity G1
