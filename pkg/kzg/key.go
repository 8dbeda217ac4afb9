// Package kzg implements the distributed KZG-like polynomial commitment
// scheme (spec.md §4.H) and the PLONK gate/permutation evaluation layer
// that drives it (SPEC_FULL.md's domain-stack expansion of component H).
//
// Grounded on original_source/plonk/src/dpoly_commit.rs (PackPolyCk::new,
// commit, open) and original_source/plonk/src/dplonk.rs
// (PackProvingKey::new, d_plonk_test's four-round prover flow).
package kzg

import (
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/luxfi/distprove/internal/session"
)

// CommitmentKey holds the packed powers-of-tau CRS: domainSize/l group
// elements, one per packed column position. There is no trusted setup
// here — spec.md §4.H treats the CRS as dummy/random, matching
// PackPolyCk::new's create_random_group_element calls.
type CommitmentKey struct {
	PowersOfTau []bn254.G1Affine
}

// NewCommitmentKey builds a CommitmentKey of length domainSize/l with
// random group elements drawn from rnd (crypto/rand.Reader for
// independent sampling, or a internal/session.KDF stream for a CRS that
// reproduces given the same session ID, spec.md §5).
func NewCommitmentKey(domainSize int, l int, rnd io.Reader) (*CommitmentKey, error) {
	if l <= 0 || domainSize%l != 0 {
		return nil, fmt.Errorf("kzg: domain size %d is not a multiple of packing factor %d", domainSize, l)
	}
	n := domainSize / l
	_, _, g1, _ := bn254.Generators()
	var g1Jac bn254.G1Jac
	g1Jac.FromAffine(&g1)

	powers := make([]bn254.G1Affine, n)
	for i := range powers {
		scalar, err := session.Scalar(rnd)
		if err != nil {
			return nil, fmt.Errorf("kzg: sample random scalar: %w", err)
		}
		var scalarBig big.Int
		scalar.BigInt(&scalarBig)
		var term bn254.G1Jac
		term.ScalarMultiplication(&g1Jac, &scalarBig)
		powers[i].FromJacobian(&term)
	}
	return &CommitmentKey{PowersOfTau: powers}, nil
}

// PackProvingKey holds the packed selector and permutation vectors for a
// PLONK circuit of n_gates gates, evaluated on the 8n_gates domain.
//
// Grounded on dplonk.rs::PackProvingKey::new, which fills every vector
// with a single random value repeated across its whole length and only
// afterwards overwrites each position independently. That intermediate,
// fully-collapsed vector never leaks into the final key (every entry is
// overwritten before use) but the construction is reproduced verbatim so
// test vectors and timing do not depend on a "fixed" version that skips
// the redundant fill; see DESIGN.md.
type PackProvingKey struct {
	QM, QL, QR, QO, QC []fr.Element
	S1, S2, S3         []fr.Element
}

// NewPackProvingKey builds a PackProvingKey sized for nGates gates packed
// at factor l, with vectors living on the 8*nGates domain, drawing every
// scalar from rnd (see NewCommitmentKey).
func NewPackProvingKey(nGates, l int, rnd io.Reader) (*PackProvingKey, error) {
	if l <= 0 || (8*nGates)%l != 0 {
		return nil, fmt.Errorf("kzg: 8*n_gates=%d is not a multiple of packing factor %d", 8*nGates, l)
	}
	size := 8 * nGates / l

	fill, err := session.Scalar(rnd)
	if err != nil {
		return nil, fmt.Errorf("kzg: sample fill scalar: %w", err)
	}
	pk := &PackProvingKey{
		QM: repeat(fill, size),
		QL: repeat(fill, size),
		QR: repeat(fill, size),
		QO: repeat(fill, size),
		QC: repeat(fill, size),
		S1: repeat(fill, size),
		S2: repeat(fill, size),
		S3: repeat(fill, size),
	}
	for i := 0; i < size; i++ {
		for _, v := range []*fr.Element{&pk.QM[i], &pk.QL[i], &pk.QR[i], &pk.QO[i], &pk.QC[i], &pk.S1[i], &pk.S2[i], &pk.S3[i]} {
			sampled, err := session.Scalar(rnd)
			if err != nil {
				return nil, fmt.Errorf("kzg: sample proving-key entry %d: %w", i, err)
			}
			*v = sampled
		}
	}
	return pk, nil
}

func repeat(v fr.Element, n int) []fr.Element {
	out := make([]fr.Element, n)
	for i := range out {
		out[i] = v
	}
	return out
}
