package dpp

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	distnet "github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/pss"
)

func runDPP(t *testing.T, params *pss.Params, numCols, denCols [][]fr.Element) [][]fr.Element {
	t.Helper()
	routers := distnet.NewLocalSession(params.N)
	results := make([][]fr.Element, params.N)
	var g errgroup.Group
	for i := 0; i < params.N; i++ {
		i := i
		g.Go(func() error {
			p := New(params, routers[i])
			col, err := p.Eval(numCols[i], denCols[i])
			if err != nil {
				return err
			}
			results[i] = col
			return nil
		})
	}
	require.NoError(t, g.Wait())
	return results
}

func unpackCols(t *testing.T, params *pss.Params, cols [][]fr.Element) []fr.Element {
	t.Helper()
	k := len(cols[0])
	l := params.L
	rows := k
	out := make([]fr.Element, rows*l)
	shares := make([]fr.Element, params.N)
	for pos := 0; pos < rows; pos++ {
		for p := 0; p < params.N; p++ {
			shares[p] = cols[p][pos]
		}
		secrets, err := params.Unpack(shares)
		require.NoError(t, err)
		copy(out[pos*l:(pos+1)*l], secrets)
	}
	return out
}

// TestEvalIdenticalNumDenIsAllOnes mirrors
// original_source/dist-primitives/examples/dpp_test.rs: feeding the same
// packed-share vector as both numerator and denominator means every
// ratio is exactly 1, so the cumulative product at every position must
// also be 1.
func TestEvalIdenticalNumDenIsAllOnes(t *testing.T) {
	const l = 4
	const rows = 3
	params, err := pss.NewParams(l)
	require.NoError(t, err)
	m := rows * l

	x := make([]fr.Element, m)
	for i := range x {
		x[i].SetUint64(uint64(i + 1))
	}

	cols := make([][]fr.Element, params.N)
	for p := range cols {
		cols[p] = make([]fr.Element, rows)
	}
	for pos := 0; pos < rows; pos++ {
		packed, err := params.PackFromPublic(x[pos*l : (pos+1)*l])
		require.NoError(t, err)
		for p := 0; p < params.N; p++ {
			cols[p][pos] = packed[p]
		}
	}

	results := runDPP(t, params, cols, cols)
	got := unpackCols(t, params, results)

	want := make([]fr.Element, m)
	for i := range want {
		want[i].SetOne()
	}
	require.Equal(t, want, got)
}

// TestEvalIdenticalNumDenAcrossMultipleRows exercises the same identity
// as TestEvalIdenticalNumDenIsAllOnes with more rows and a different
// packing factor, confirming the cumulative-product boundary stitching
// across party blocks (the king's single pass over the concatenated
// length-m vector) still yields all ones throughout.
func TestEvalIdenticalNumDenAcrossMultipleRows(t *testing.T) {
	const l = 2
	const rows = 6
	params, err := pss.NewParams(l)
	require.NoError(t, err)
	m := rows * l

	x := make([]fr.Element, m)
	for i := range x {
		x[i].SetUint64(uint64(3*i + 7))
	}

	cols := make([][]fr.Element, params.N)
	for p := range cols {
		cols[p] = make([]fr.Element, rows)
	}
	for pos := 0; pos < rows; pos++ {
		packed, err := params.PackFromPublic(x[pos*l : (pos+1)*l])
		require.NoError(t, err)
		for p := 0; p < params.N; p++ {
			cols[p][pos] = packed[p]
		}
	}

	results := runDPP(t, params, cols, cols)
	got := unpackCols(t, params, results)

	want := make([]fr.Element, m)
	for i := range want {
		want[i].SetOne()
	}
	require.Equal(t, want, got)
}

func TestEvalRejectsMismatchedLengths(t *testing.T) {
	params, err := pss.NewParams(2)
	require.NoError(t, err)
	routers := distnet.NewLocalSession(params.N)
	p := New(params, routers[0])
	_, err = p.Eval(make([]fr.Element, 2), make([]fr.Element, 3))
	require.Error(t, err)
}
