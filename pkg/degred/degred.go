// Package degred implements king-mediated degree reduction (spec.md
// §4.G): turning a vector of degree-2 packed shares (the natural result
// of pointwise-multiplying two degree-1 packed shares) back into
// degree-1 packed shares of the same logical vector, so it can be fed
// into another multiplication round or committed via pkg/dmsm/pkg/kzg.
package degred

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/pss"
)

// Reducer bundles the PSS parameters and router needed to run a
// degree-reduction round.
type Reducer struct {
	Params *pss.Params
	Router net.Router
}

// New builds a Reducer bound to params and router.
func New(params *pss.Params, router net.Router) *Reducer {
	return &Reducer{Params: params, Router: router}
}

// Reduce takes this party's column of degree-2 packed shares (length k,
// one share per logical position) and returns the corresponding column of
// degree-1 packed shares of the same underlying secrets.
//
// Protocol: every party sends its full column to the king; the king
// applies Unpack2 position-by-position to recover each position's l-wide
// secret block, re-shares each block at degree 1 via PackFromPublic, and
// broadcasts the per-party column back via RecvFromKing.
func (r *Reducer) Reduce(degree2Col []fr.Element) ([]fr.Element, error) {
	ch := net.NewChannel[[]fr.Element](r.Router)
	allCols, err := ch.SendToKing(degree2Col)
	if err != nil {
		return nil, fmt.Errorf("degred: send to king: %w", err)
	}

	var kingData [][]fr.Element
	if r.Router.AmKing() {
		k := len(degree2Col)
		for _, col := range allCols {
			if len(col) != k {
				return nil, fmt.Errorf("degred: inconsistent column length %d, want %d", len(col), k)
			}
		}

		n := r.Router.NParties()
		kingData = make([][]fr.Element, n)
		for i := 0; i < n; i++ {
			kingData[i] = make([]fr.Element, k)
		}

		shares := make([]fr.Element, n)
		for pos := 0; pos < k; pos++ {
			for p := 0; p < n; p++ {
				shares[p] = allCols[p][pos]
			}
			secrets, err := r.Params.Unpack2(shares)
			if err != nil {
				return nil, fmt.Errorf("degred: unpack2 at position %d: %w", pos, err)
			}
			// Unpack2 returns 2l recovered coordinates (spec.md §4.C); only
			// the first l are the true secret block the degree-1 re-share
			// packs (the remaining l are the evaluations at the secret
			// domain's other points, which are not secrets).
			reshared, err := r.Params.PackFromPublic(secrets[:r.Params.L])
			if err != nil {
				return nil, fmt.Errorf("degred: pack_from_public at position %d: %w", pos, err)
			}
			for p := 0; p < n; p++ {
				kingData[p][pos] = reshared[p]
			}
		}
	}

	reducedCol, err := ch.RecvFromKing(kingData)
	if err != nil {
		return nil, fmt.Errorf("degred: recv from king: %w", err)
	}
	return reducedCol, nil
}
