package degred

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	distnet "github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/pss"
)

func randElements(t *testing.T, n int) []fr.Element {
	t.Helper()
	out := make([]fr.Element, n)
	for i := range out {
		_, err := out[i].SetRandom()
		require.NoError(t, err)
	}
	return out
}

// TestReduceRecoversDegree1Shares multiplies two degree-1 packed-share
// columns pointwise (producing a degree-2 packed column, exactly as any
// multiplication gate in the protocol would), degree-reduces it, and
// checks every party's output column unpacks back to the product of the
// original secret vectors.
func TestReduceRecoversDegree1Shares(t *testing.T) {
	const l = 4
	const k = 2
	params, err := pss.NewParams(l)
	require.NoError(t, err)

	secretsA := make([][]fr.Element, k)
	secretsB := make([][]fr.Element, k)
	expected := make([][]fr.Element, k)
	partyDegree2 := make([][]fr.Element, params.N)
	for p := range partyDegree2 {
		partyDegree2[p] = make([]fr.Element, k)
	}

	for pos := 0; pos < k; pos++ {
		secretsA[pos] = randElements(t, l)
		secretsB[pos] = randElements(t, l)
		expected[pos] = make([]fr.Element, l)
		for i := 0; i < l; i++ {
			expected[pos][i].Mul(&secretsA[pos][i], &secretsB[pos][i])
		}

		sharesA, err := params.PackFromPublic(secretsA[pos])
		require.NoError(t, err)
		sharesB, err := params.PackFromPublic(secretsB[pos])
		require.NoError(t, err)

		for p := 0; p < params.N; p++ {
			var prod fr.Element
			prod.Mul(&sharesA[p], &sharesB[p])
			partyDegree2[p][pos] = prod
		}
	}

	routers := distnet.NewLocalSession(params.N)
	reducedCols := make([][]fr.Element, params.N)
	var g errgroup.Group
	for i := 0; i < params.N; i++ {
		i := i
		g.Go(func() error {
			r := New(params, routers[i])
			col, err := r.Reduce(partyDegree2[i])
			if err != nil {
				return err
			}
			reducedCols[i] = col
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for pos := 0; pos < k; pos++ {
		shares := make([]fr.Element, params.N)
		for p := 0; p < params.N; p++ {
			shares[p] = reducedCols[p][pos]
		}
		recovered, err := params.Unpack(shares)
		require.NoError(t, err)
		require.Equal(t, expected[pos], recovered)
	}
}
