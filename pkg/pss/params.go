package pss

import (
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Params is PackedSharingParams from spec.md §3/§4.C: packing factor L,
// corruption threshold T, party count N, and the three nested evaluation
// domains (Share, Secret, Secret2) that the pack/unpack transforms move
// between.
type Params struct {
	L, T, N int

	Share   *Domain // size n
	Secret  *Domain // size l+t+1 = 2l
	Secret2 *Domain // size 4l = n
}

// NewParams builds PackedSharingParams::new(l): n = 4l parties, threshold
// t = l-1, and fails if l is not a power of two or if any of the three
// domains exceeds the field's 2-adic subgroup (surfaced by Domain
// construction). Grounded on original_source/secret-sharing/src/pss.rs.
func NewParams(l int) (*Params, error) {
	if l <= 0 || bits.OnesCount(uint(l)) != 1 {
		return nil, fmt.Errorf("pss: packing factor %d is not a power of two", l)
	}
	n := 4 * l
	t := l - 1

	if n != 2*(t+l+1) {
		return nil, fmt.Errorf("pss: invariant n = 2(t+l+1) violated (n=%d, t=%d, l=%d)", n, t, l)
	}

	share, err := NewDomain(uint64(n))
	if err != nil {
		return nil, fmt.Errorf("pss: share domain: %w", err)
	}
	secret, err := NewDomain(uint64(l + t + 1))
	if err != nil {
		return nil, fmt.Errorf("pss: secret domain: %w", err)
	}
	secret2, err := NewDomain(uint64(4 * l))
	if err != nil {
		return nil, fmt.Errorf("pss: secret2 domain: %w", err)
	}

	return &Params{
		L: l, T: t, N: n,
		Share:   share,
		Secret:  secret,
		Secret2: secret2,
	}, nil
}

// PackFromPublic packs a length-L secret vector into n packed shares, one
// per party, per spec.md §4.C:
//  1. pad secrets to |secret| with zero
//  2. IFFT over secret
//  3. resize the resulting coefficient vector to |share|, padding with zero
//  4. FFT over share
func (p *Params) PackFromPublic(secrets []fr.Element) ([]fr.Element, error) {
	if len(secrets) != p.L {
		return nil, fmt.Errorf("pss: pack_from_public expects %d secrets, got %d", p.L, len(secrets))
	}
	coeffs := p.Secret.IFFT(append([]fr.Element(nil), secrets...))
	coeffs = padScalars(coeffs, int(p.Share.Size()))
	return p.Share.FFT(coeffs), nil
}

// Unpack recovers the L secrets from a length-n vector of packed shares
// (one per party): IFFT over share, FFT over secret, take the first L
// coordinates. Invariant: Unpack(PackFromPublic(s)) == s.
func (p *Params) Unpack(shares []fr.Element) ([]fr.Element, error) {
	if len(shares) != p.N {
		return nil, fmt.Errorf("pss: unpack expects %d shares, got %d", p.N, len(shares))
	}
	coeffs := p.Share.IFFT(append([]fr.Element(nil), shares...))
	evals := p.Secret.FFT(coeffs)
	out := make([]fr.Element, p.L)
	copy(out, evals[:p.L])
	return out, nil
}

// Unpack2 recovers a length-2L vector from a length-n vector of
// degree-2 packed shares (the pointwise product of two degree-1 packed
// share vectors): IFFT over share, FFT over secret2, then take every
// other coordinate up to 2L (secrets live on the even coset points of
// secret2; odd points carry cross-terms). Grounded on
// original_source/dist-primitives/src/dmsm/dmsm.rs::unpackexp, whose
// degree-2 branch does exactly this stride-2 selection.
//
// Callers that only want the true secret block (not the cross-terms)
// slice the result to [:L] themselves (e.g. pkg/degred.Reduce) — the
// group-valued counterpart in group.go's UnpackExp degree-2 branch
// returns that narrower L-wide slice directly instead of the full 2L,
// so the two are not interchangeable by length even though both select
// the same even-coset stride.
func (p *Params) Unpack2(shares []fr.Element) ([]fr.Element, error) {
	if len(shares) != p.N {
		return nil, fmt.Errorf("pss: unpack2 expects %d shares, got %d", p.N, len(shares))
	}
	coeffs := p.Share.IFFT(append([]fr.Element(nil), shares...))
	evals := p.Secret2.FFT(coeffs)
	out := make([]fr.Element, 2*p.L)
	for i := range out {
		out[i] = evals[2*i]
	}
	return out, nil
}
