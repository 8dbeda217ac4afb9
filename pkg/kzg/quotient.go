package kzg

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/luxfi/distprove/pkg/degred"
	"github.com/luxfi/distprove/pkg/dfft"
	"github.com/luxfi/distprove/pkg/dpp"
	"github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/pss"
)

func oneElement() fr.Element {
	var e fr.Element
	e.SetOne()
	return e
}

func bigFromInt(n int) *big.Int {
	return big.NewInt(int64(n))
}

// QuotientRound drives the distributed PLONK prover's four rounds (wire
// commitments, grand-product argument, quotient polynomial, openings)
// using components D-H as building blocks.
//
// Grounded on dplonk.rs::d_plonk_test. The circuit's gate/selector
// representation itself is out of scope (spec.md's Non-goals exclude
// "the application-level arithmetic circuit representation"), but the
// evaluation arithmetic that turns packed wire/selector shares into the
// packed numerator/denominator for d_pp, and the quotient-polynomial
// assembly, are the commitment layer's own driving logic and are
// implemented here.
type QuotientRound struct {
	Params *pss.Params
	Router net.Router
	Key    *CommitmentKey // CRS sized for the n_gates domain
	Key8   *CommitmentKey // CRS sized for the 8*n_gates domain
	PK     *PackProvingKey
	NGates int
	Zeta   fr.Element // primitive cube root of unity for the coset term (womega); caller-supplied, not checked by Run
}

// Proof collects every commitment and opening produced by Run.
type Proof struct {
	CommitA, CommitB, CommitC bn254.G1Affine
	CommitZ, CommitT          bn254.G1Affine
	CommitR                   bn254.G1Affine
	OpenA, OpenB, OpenC       *OpeningProof
	OpenS1, OpenS2, OpenS3    *OpeningProof
	OpenR                     *OpeningProof
}

// Run executes the prover flow for this party's packed-share columns of
// the a/b/c wire evaluations (each length n_gates/l), given the
// challenges beta/gamma/alpha (Fiat-Shamir in a full implementation;
// supplied directly here since transcript management is out of scope).
// point is the evaluation point every round-4 opening is taken at.
func (q *QuotientRound) Run(aevals, bevals, cevals []fr.Element, beta, gamma, alpha, point fr.Element) (*Proof, error) {
	l := q.Params.L
	mbyl := len(aevals)
	n := mbyl * l
	if len(bevals) != mbyl || len(cevals) != mbyl {
		return nil, fmt.Errorf("kzg: quotient round: a/b/c column length mismatch")
	}
	if n != q.NGates {
		return nil, fmt.Errorf("kzg: quotient round: a/b/c span %d gates, want %d", n, q.NGates)
	}

	ckN := NewCommitter(q.Params, q.Router, q.Key)
	ck8N := NewCommitter(q.Params, q.Router, q.Key8)
	f := dfft.New(q.Params, q.Router)

	// Round 1: commit to a, b, c and extend their evaluations to the
	// 8*n_gates domain for the quotient-polynomial arithmetic.
	proof := &Proof{}
	var err error
	if proof.CommitA, err = ckN.Commit(aevals); err != nil {
		return nil, fmt.Errorf("kzg: round 1: commit a: %w", err)
	}
	if proof.CommitB, err = ckN.Commit(bevals); err != nil {
		return nil, fmt.Errorf("kzg: round 1: commit b: %w", err)
	}
	if proof.CommitC, err = ckN.Commit(cevals); err != nil {
		return nil, fmt.Errorf("kzg: round 1: commit c: %w", err)
	}

	aevals8, err := f.Inverse(aevals, n, 8)
	if err != nil {
		return nil, fmt.Errorf("kzg: round 1: extend a: %w", err)
	}
	bevals8, err := f.Inverse(bevals, n, 8)
	if err != nil {
		return nil, fmt.Errorf("kzg: round 1: extend b: %w", err)
	}
	cevals8, err := f.Inverse(cevals, n, 8)
	if err != nil {
		return nil, fmt.Errorf("kzg: round 1: extend c: %w", err)
	}

	// Round 2: the permutation grand product z, via distributed partial
	// products over the per-gate num/den ratios. Grounded verbatim on
	// dplonk.rs: both the numerator and denominator terms use the plain
	// domain generator power omega^i for all three wires (no distinct
	// coset shifts k1, k2), which is what the source computes even
	// though a production PLONK would shift two of the three terms onto
	// separate cosets to keep them distinct from the permutation's own
	// domain points.
	dom, err := pss.NewDomain(uint64(n))
	if err != nil {
		return nil, fmt.Errorf("kzg: round 2: domain: %w", err)
	}
	num := make([]fr.Element, mbyl)
	den := make([]fr.Element, mbyl)
	omega := dom.Omega()
	omegai := oneElement()
	for i := 0; i < mbyl; i++ {
		den[i] = permTerm(aevals[i], q.PK.S1[i], beta, gamma)
		var t fr.Element
		t = permTerm(bevals[i], q.PK.S2[i], beta, gamma)
		den[i].Mul(&den[i], &t)
		t = permTerm(cevals[i], q.PK.S3[i], beta, gamma)
		den[i].Mul(&den[i], &t)

		num[i] = permTerm(aevals[i], omegai, beta, gamma)
		t = permTerm(bevals[i], omegai, beta, gamma)
		num[i].Mul(&num[i], &t)
		t = permTerm(cevals[i], omegai, beta, gamma)
		num[i].Mul(&num[i], &t)

		omegai.Mul(&omegai, &omega)
	}

	pp := dpp.New(q.Params, q.Router)
	zevals, err := pp.Eval(num, den)
	if err != nil {
		return nil, fmt.Errorf("kzg: round 2: partial products: %w", err)
	}

	zevals8, err := f.Inverse(zevals, n, 8)
	if err != nil {
		return nil, fmt.Errorf("kzg: round 2: extend z: %w", err)
	}

	// Round 3: the quotient polynomial t, evaluated on the 8*n_gates
	// domain, combining the gate-constraint term, the permutation
	// argument's two product terms, and the grand-product boundary
	// term. The L1-vanishing factor on the boundary term is stubbed to
	// the constant 1, matching dplonk.rs's own "todo: replace with L1"
	// comment — not silently completed, since no L1 construction is
	// grounded anywhere in the retrieval pack.
	dom8, err := pss.NewDomain(uint64(8 * n))
	if err != nil {
		return nil, fmt.Errorf("kzg: round 3: domain8: %w", err)
	}
	omega8 := dom8.Omega()
	var omegan, womegan fr.Element
	omegan.Exp(omega8, bigFromInt(n))
	womegan.Mul(&q.Zeta, &omega8)
	womegan.Exp(womegan, bigFromInt(n))

	size8 := 8 * mbyl
	tevals8 := make([]fr.Element, size8)
	omegai = oneElement()
	omegani := oneElement()
	womengani := oneElement()
	one := oneElement()
	for i := 0; i < size8; i++ {
		var gate, t fr.Element
		gate.Mul(&aevals8[i], &bevals8[i])
		gate.Mul(&gate, &q.PK.QM[i])
		t.Mul(&aevals8[i], &q.PK.QL[i])
		gate.Add(&gate, &t)
		t.Mul(&bevals8[i], &q.PK.QR[i])
		gate.Add(&gate, &t)
		t.Mul(&cevals8[i], &q.PK.QO[i])
		gate.Add(&gate, &t)
		gate.Add(&gate, &q.PK.QC[i])

		plus := permTerm(aevals8[i], omegai, beta, gamma)
		t = permTerm(bevals8[i], omegai, beta, gamma)
		plus.Mul(&plus, &t)
		t = permTerm(cevals8[i], omegai, beta, gamma)
		plus.Mul(&plus, &t)
		var diff fr.Element
		diff.Sub(&omegani, &one)
		plus.Mul(&plus, &diff)
		plus.Mul(&plus, &alpha)

		minus := permTerm(aevals8[i], q.PK.S1[i], beta, gamma)
		t = permTerm(bevals8[i], q.PK.S2[i], beta, gamma)
		minus.Mul(&minus, &t)
		t = permTerm(cevals8[i], q.PK.S3[i], beta, gamma)
		minus.Mul(&minus, &t)
		diff.Sub(&womengani, &one)
		minus.Mul(&minus, &diff)
		minus.Mul(&minus, &alpha)

		var boundary fr.Element
		boundary.Sub(&zevals8[i], &one)
		boundary.Mul(&boundary, &alpha)
		boundary.Mul(&boundary, &alpha)

		tevals8[i].Add(&gate, &plus)
		tevals8[i].Sub(&tevals8[i], &minus)
		tevals8[i].Add(&tevals8[i], &boundary)

		omegai.Mul(&omegai, &omega8)
		omegani.Mul(&omegani, &omegan)
		womengani.Mul(&womengani, &womegan)
	}

	tcoeffs, err := f.Inverse(tevals8, 8*n, 1)
	if err != nil {
		return nil, fmt.Errorf("kzg: round 3: interpolate t: %w", err)
	}
	tevals8Trunc, err := f.Forward(tcoeffs, 8*n)
	if err != nil {
		return nil, fmt.Errorf("kzg: round 3: re-evaluate truncated t: %w", err)
	}
	toepMat := stubScalar()
	for i := range tevals8Trunc {
		tevals8Trunc[i].Mul(&tevals8Trunc[i], &toepMat)
	}
	redR := degred.New(q.Params, q.Router)
	tevals8Reduced, err := redR.Reduce(tevals8Trunc)
	if err != nil {
		return nil, fmt.Errorf("kzg: round 3: degree-reduce t: %w", err)
	}

	// Round 4: commit to z and t, open a, b, c and the permutation
	// vectors, then commit and open the linearization polynomial r.
	if proof.CommitZ, err = ckN.Commit(zevals); err != nil {
		return nil, fmt.Errorf("kzg: round 4: commit z: %w", err)
	}
	if proof.CommitT, err = ck8N.Commit(tevals8Reduced); err != nil {
		return nil, fmt.Errorf("kzg: round 4: commit t: %w", err)
	}

	if proof.OpenA, err = ckN.Open(aevals, n, point); err != nil {
		return nil, fmt.Errorf("kzg: round 4: open a: %w", err)
	}
	if proof.OpenB, err = ckN.Open(bevals, n, point); err != nil {
		return nil, fmt.Errorf("kzg: round 4: open b: %w", err)
	}
	if proof.OpenC, err = ckN.Open(cevals, n, point); err != nil {
		return nil, fmt.Errorf("kzg: round 4: open c: %w", err)
	}

	// s1/s2/s3 live on the 8*n_gates domain; opening them at the
	// n_gates domain subsamples every 8th entry, mirroring dplonk.rs's
	// `pk.s1.iter().step_by(8)`.
	s1n := subsample(q.PK.S1, 8)
	s2n := subsample(q.PK.S2, 8)
	s3n := subsample(q.PK.S3, 8)
	if proof.OpenS1, err = ckN.Open(s1n, n, point); err != nil {
		return nil, fmt.Errorf("kzg: round 4: open s1: %w", err)
	}
	if proof.OpenS2, err = ckN.Open(s2n, n, point); err != nil {
		return nil, fmt.Errorf("kzg: round 4: open s2: %w", err)
	}
	if proof.OpenS3, err = ckN.Open(s3n, n, point); err != nil {
		return nil, fmt.Errorf("kzg: round 4: open s3: %w", err)
	}

	// The linearization polynomial r, evaluated pointwise from the
	// already-opened a/b/c values and the first mbyl entries of the
	// selector vectors. dplonk.rs indexes directly into the
	// 8*mbyl-length qm/ql/qr/qo/qc vectors using only the first mbyl
	// entries here (not step_by(8) like s1/s2/s3 above) — reproduced as
	// written; see DESIGN.md.
	var openAB fr.Element
	openAB.Mul(&proof.OpenA.PointEval, &proof.OpenB.PointEval)
	revals := make([]fr.Element, mbyl)
	for i := 0; i < mbyl; i++ {
		var v, t fr.Element
		v.Mul(&openAB, &q.PK.QM[i])
		t.Mul(&proof.OpenA.PointEval, &q.PK.QL[i])
		v.Add(&v, &t)
		t.Mul(&proof.OpenB.PointEval, &q.PK.QR[i])
		v.Add(&v, &t)
		t.Mul(&proof.OpenC.PointEval, &q.PK.QO[i])
		v.Add(&v, &t)
		v.Add(&v, &q.PK.QC[i])
		revals[i] = v
	}

	if proof.CommitR, err = ckN.Commit(revals); err != nil {
		return nil, fmt.Errorf("kzg: round 4: commit r: %w", err)
	}
	if proof.OpenR, err = ckN.Open(revals, n, point); err != nil {
		return nil, fmt.Errorf("kzg: round 4: open r: %w", err)
	}

	return proof, nil
}

// permTerm computes (wire + beta*shiftOrSigma + gamma), the common
// building block of every permutation-argument factor.
func permTerm(wire, shiftOrSigma, beta, gamma fr.Element) fr.Element {
	var out, t fr.Element
	t.Mul(&beta, &shiftOrSigma)
	out.Add(&wire, &t)
	out.Add(&out, &gamma)
	return out
}

func subsample(v []fr.Element, stride int) []fr.Element {
	out := make([]fr.Element, (len(v)+stride-1)/stride)
	for i := range out {
		out[i] = v[i*stride]
	}
	return out
}
