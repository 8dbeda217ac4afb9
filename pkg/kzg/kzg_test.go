package kzg

import (
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/distprove/pkg/dfft"
	distnet "github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/pss"
)

// buildDFFTColumns lays a length-m plaintext vector out into per-party
// packed columns in the layout pkg/dfft expects (bit-reversal rearranged,
// then strided rows), matching pkg/dfft's own test helpers. Open's
// interpolation step delegates to pkg/dfft internally, so any column fed
// to it must already be in this layout.
func buildDFFTColumns(t *testing.T, params *pss.Params, x []fr.Element) [][]fr.Element {
	t.Helper()
	m := len(x)
	l := params.L
	mbyl := m / l

	rearranged := append([]fr.Element(nil), x...)
	dfft.FFTInPlaceRearrange(rearranged)

	cols := make([][]fr.Element, params.N)
	for p := range cols {
		cols[p] = make([]fr.Element, mbyl)
	}
	row := make([]fr.Element, l)
	for pos := 0; pos < mbyl; pos++ {
		for ii := 0; ii < l; ii++ {
			row[ii] = rearranged[pos+ii*mbyl]
		}
		packed, err := params.PackFromPublic(row)
		require.NoError(t, err)
		for p := 0; p < params.N; p++ {
			cols[p][pos] = packed[p]
		}
	}
	return cols
}

func randScalars(t *testing.T, n int) []fr.Element {
	t.Helper()
	out := make([]fr.Element, n)
	for i := range out {
		_, err := out[i].SetRandom()
		require.NoError(t, err)
	}
	return out
}

// TestCommitOpenRoundTrip runs Commit and Open across a simulated
// committee and checks that every party arrives at the same commitment
// and the same opening proof (both are king-mediated broadcasts, so
// disagreement would indicate a wiring bug in Commit/Open themselves).
func TestCommitOpenRoundTrip(t *testing.T) {
	const l = 2
	const m = 8
	params, err := pss.NewParams(l)
	require.NoError(t, err)

	x := randScalars(t, m)
	cols := buildDFFTColumns(t, params, x)

	key, err := NewCommitmentKey(m, l, rand.Reader)
	require.NoError(t, err)

	routers := distnet.NewLocalSession(params.N)

	commitments := make([]bn254.G1Affine, params.N)
	var g errgroup.Group
	for i := 0; i < params.N; i++ {
		i := i
		g.Go(func() error {
			c := NewCommitter(params, routers[i], key)
			out, err := c.Commit(cols[i])
			if err != nil {
				return err
			}
			commitments[i] = out
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var zero bn254.G1Affine
	for i, c := range commitments {
		require.Falsef(t, c.Equal(&zero), "party %d commitment is identity", i)
		require.Truef(t, c.Equal(&commitments[0]), "party %d commitment disagrees", i)
	}

	var point fr.Element
	_, err = point.SetRandom()
	require.NoError(t, err)

	routers = distnet.NewLocalSession(params.N)
	proofs := make([]*OpeningProof, params.N)
	var g2 errgroup.Group
	for i := 0; i < params.N; i++ {
		i := i
		g2.Go(func() error {
			c := NewCommitter(params, routers[i], key)
			out, err := c.Open(cols[i], m, point)
			if err != nil {
				return err
			}
			proofs[i] = out
			return nil
		})
	}
	require.NoError(t, g2.Wait())

	for i, p := range proofs {
		require.Truef(t, p.PointEval.Equal(&proofs[0].PointEval), "party %d point eval disagrees", i)
		require.Truef(t, p.Pi.Equal(&proofs[0].Pi), "party %d opening proof disagrees", i)
	}
}

// hornerEval evaluates the polynomial with coefficients coeffs (lowest
// degree first) at x by reference Horner's method, independent of any
// distributed machinery.
func hornerEval(coeffs []fr.Element, x fr.Element) fr.Element {
	var acc fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(&acc, &x)
		acc.Add(&acc, &coeffs[i])
	}
	return acc
}

// TestOpenPointEvalMatchesReferenceEvaluation opens a polynomial with a
// known coefficient vector at a known point and checks the reconstructed
// opening value against a plain Horner evaluation of those coefficients,
// not merely cross-party agreement.
func TestOpenPointEvalMatchesReferenceEvaluation(t *testing.T) {
	const l = 2
	const m = 8
	params, err := pss.NewParams(l)
	require.NoError(t, err)

	coeffs := randScalars(t, m)
	dom, err := pss.NewDomain(uint64(m))
	require.NoError(t, err)
	evals := dom.FFT(coeffs)

	cols := buildDFFTColumns(t, params, evals)

	key, err := NewCommitmentKey(m, l, rand.Reader)
	require.NoError(t, err)

	var point fr.Element
	point.SetUint64(123)
	want := hornerEval(coeffs, point)

	routers := distnet.NewLocalSession(params.N)
	proofs := make([]*OpeningProof, params.N)
	var g errgroup.Group
	for i := 0; i < params.N; i++ {
		i := i
		g.Go(func() error {
			c := NewCommitter(params, routers[i], key)
			out, err := c.Open(cols[i], m, point)
			if err != nil {
				return err
			}
			proofs[i] = out
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, p := range proofs {
		require.Truef(t, p.PointEval.Equal(&want), "party %d opened value does not match reference evaluation", i)
	}
}

func TestCommitLengthMismatch(t *testing.T) {
	params, err := pss.NewParams(2)
	require.NoError(t, err)
	key, err := NewCommitmentKey(8, 2, rand.Reader)
	require.NoError(t, err)
	routers := distnet.NewLocalSession(params.N)
	c := NewCommitter(params, routers[0], key)
	_, err = c.Commit(make([]fr.Element, 1))
	require.Error(t, err)
}

// TestQuotientRoundRuns is an integration smoke test for the full
// four-round PLONK prover orchestration: it checks the protocol runs to
// completion across a simulated committee and that every party's final
// proof (every commitment and opening, all king-mediated broadcasts)
// agrees. It does not check the proof against a real circuit's gate
// constraints — no verifier exists anywhere in the source material this
// is grounded on (d_plonk_test is a benchmark driver, not a correctness
// test), so this exercises wiring, not soundness.
func TestQuotientRoundRuns(t *testing.T) {
	const l = 2
	const mbyl = 4
	params, err := pss.NewParams(l)
	require.NoError(t, err)
	n := mbyl * l

	key, err := NewCommitmentKey(n, l, rand.Reader)
	require.NoError(t, err)
	key8, err := NewCommitmentKey(8*n, l, rand.Reader)
	require.NoError(t, err)
	pk, err := NewPackProvingKey(n, l, rand.Reader)
	require.NoError(t, err)

	var zeta fr.Element
	_, err = zeta.SetRandom()
	require.NoError(t, err)

	aevals := randScalars(t, n)
	bevals := randScalars(t, n)
	cevals := randScalars(t, n)
	aCols := buildDFFTColumns(t, params, aevals)
	bCols := buildDFFTColumns(t, params, bevals)
	cCols := buildDFFTColumns(t, params, cevals)

	var beta, gamma, alpha, point fr.Element
	_, err = beta.SetRandom()
	require.NoError(t, err)
	_, err = gamma.SetRandom()
	require.NoError(t, err)
	_, err = alpha.SetRandom()
	require.NoError(t, err)
	_, err = point.SetRandom()
	require.NoError(t, err)

	routers := distnet.NewLocalSession(params.N)
	proofs := make([]*Proof, params.N)
	var g errgroup.Group
	for i := 0; i < params.N; i++ {
		i := i
		g.Go(func() error {
			qr := &QuotientRound{
				Params: params,
				Router: routers[i],
				Key:    key,
				Key8:   key8,
				PK:     pk,
				NGates: n,
				Zeta:   zeta,
			}
			out, err := qr.Run(aCols[i], bCols[i], cCols[i], beta, gamma, alpha, point)
			if err != nil {
				return err
			}
			proofs[i] = out
			return nil
		})
	}
	require.NoError(t, g.Wait())

	want := proofs[0]
	for i, p := range proofs {
		require.Truef(t, p.CommitA.Equal(&want.CommitA), "party %d CommitA disagrees", i)
		require.Truef(t, p.CommitB.Equal(&want.CommitB), "party %d CommitB disagrees", i)
		require.Truef(t, p.CommitC.Equal(&want.CommitC), "party %d CommitC disagrees", i)
		require.Truef(t, p.CommitZ.Equal(&want.CommitZ), "party %d CommitZ disagrees", i)
		require.Truef(t, p.CommitT.Equal(&want.CommitT), "party %d CommitT disagrees", i)
		require.Truef(t, p.CommitR.Equal(&want.CommitR), "party %d CommitR disagrees", i)
		require.Truef(t, p.OpenA.PointEval.Equal(&want.OpenA.PointEval), "party %d OpenA disagrees", i)
		require.Truef(t, p.OpenR.PointEval.Equal(&want.OpenR.PointEval), "party %d OpenR disagrees", i)
	}
}
