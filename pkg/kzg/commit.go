package kzg

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/luxfi/distprove/pkg/degred"
	"github.com/luxfi/distprove/pkg/dfft"
	"github.com/luxfi/distprove/pkg/dmsm"
	"github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/pss"
)

// stubScalar stands in for the Toeplitz-structured quotient matrix that
// dpoly_commit.rs marks with the literal comment "drop from sky" and a
// hardcoded E::Scalar::from(123). spec.md's Open Questions section leaves
// only this piece unresolved (the opening value's power basis below is a
// real, mandatory computation per spec.md §4.H); reproducing the Toeplitz
// stub, rather than inventing a multiplication this codebase has no
// grounding for, keeps the documented gap visible instead of silently
// "fixing" it.
func stubScalar() fr.Element {
	var v fr.Element
	v.SetUint64(123)
	return v
}

// Committer runs the distributed commit/open protocol for a fixed
// CommitmentKey.
type Committer struct {
	Params *pss.Params
	Router net.Router
	Key    *CommitmentKey
}

// NewCommitter binds params/router to a commitment key.
func NewCommitter(params *pss.Params, router net.Router, key *CommitmentKey) *Committer {
	return &Committer{Params: params, Router: router, Key: key}
}

// Commit computes a KZG-like commitment to the polynomial whose
// evaluations on the packed domain are given by pevalShare (this party's
// packed-share column), via a distributed MSM against the CRS.
//
// Grounded on dpoly_commit.rs::PackPolyCk::commit.
func (c *Committer) Commit(pevalShare []fr.Element) (bn254.G1Affine, error) {
	if len(pevalShare) != len(c.Key.PowersOfTau) {
		return bn254.G1Affine{}, fmt.Errorf("kzg: commit: %d evals, want %d (CRS length)", len(pevalShare), len(c.Key.PowersOfTau))
	}
	d := dmsm.New(c.Params, c.Router)
	return d.Eval(c.Key.PowersOfTau, pevalShare)
}

// OpeningProof is the result of Open: the claimed evaluation (once
// degree-reduced to a clean degree-1 packed share and reconstructed by
// the king) and the proof group element.
type OpeningProof struct {
	PointEval fr.Element
	Pi        bn254.G1Affine
}

// Open creates an opening of the committed polynomial at point, given
// this party's packed evaluation shares pevalShare on the size-m domain.
//
// Grounded on dpoly_commit.rs::PackPolyCk::open: interpolate to
// coefficients via d_ifft, evaluate at point via the real power basis
// [1, point, point^2, ...] dotted against the local coefficient share
// (spec.md §4.H step 2), degree-reduce the scalar result, then recompute
// the quotient polynomial's evaluations via d_fft and a (stubbed)
// Toeplitz multiplication, committing to it via d_msm to produce the
// proof pi.
func (c *Committer) Open(pevalShare []fr.Element, m int, point fr.Element) (*OpeningProof, error) {
	l := c.Params.L
	if len(pevalShare)*l != m {
		return nil, fmt.Errorf("kzg: open: %d evals * l=%d != domain size %d", len(pevalShare), l, m)
	}

	f := dfft.New(c.Params, c.Router)
	pcoeffShare, err := f.Inverse(pevalShare, m, 1)
	if err != nil {
		return nil, fmt.Errorf("kzg: open: interpolate: %w", err)
	}

	var pointEvalShare, pow fr.Element
	pow.SetOne()
	for i := range pcoeffShare {
		var term fr.Element
		term.Mul(&pcoeffShare[i], &pow)
		pointEvalShare.Add(&pointEvalShare, &term)
		pow.Mul(&pow, &point)
	}

	r := degred.New(c.Params, c.Router)
	reduced, err := r.Reduce([]fr.Element{pointEvalShare})
	if err != nil {
		return nil, fmt.Errorf("kzg: open: degree-reduce point eval: %w", err)
	}
	pointEvalShare = reduced[0]

	ptruncEvals, err := f.Forward(pcoeffShare, m)
	if err != nil {
		return nil, fmt.Errorf("kzg: open: re-evaluate truncated coeffs: %w", err)
	}

	toepMat := stubScalar()
	qEvals := make([]fr.Element, len(ptruncEvals))
	for i := range ptruncEvals {
		qEvals[i].Mul(&ptruncEvals[i], &toepMat)
	}

	d := dmsm.New(c.Params, c.Router)
	pi, err := d.Eval(c.Key.PowersOfTau, qEvals)
	if err != nil {
		return nil, fmt.Errorf("kzg: open: commit to quotient: %w", err)
	}

	return &OpeningProof{PointEval: pointEvalShare, Pi: pi}, nil
}
