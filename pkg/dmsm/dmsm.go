// Package dmsm implements the distributed multi-scalar multiplication
// primitive (spec.md §4.D): every party holds a local slice of
// group-element/scalar share pairs, and together the committee computes
// the single MSM result that the full (unshared) vectors would produce.
package dmsm

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/pss"
)

// DMSM is the per-session object bundling the PSS parameters and the
// router used to run the king-mediated reduction. Grounded on
// original_source/dist-primitives/src/dmsm/dmsm.rs::d_msm.
type DMSM struct {
	Params *pss.Params
	Router net.Router
}

// New builds a DMSM bound to the given PSS parameters and router.
func New(params *pss.Params, router net.Router) *DMSM {
	return &DMSM{Params: params, Router: router}
}

// Eval computes the MSM of bases and scalars (local shares of length m/l,
// for whatever m the caller's protocol step defines) across the committee.
//
// Algorithm (spec.md §4.D):
//  1. each party computes the local MSM c_i = Σ_k scalars[k]·bases[k];
//  2. sends c_i to the king, who views [c_0, ..., c_{n-1}] as a degree-2
//     packed share vector and runs UnpackExp(degree2=true) to recover the
//     true sub-results, then sums them to get the final MSM result;
//  3. the king broadcasts the result to everyone.
func (d *DMSM) Eval(bases []bn254.G1Affine, scalars []fr.Element) (bn254.G1Affine, error) {
	if len(bases) != len(scalars) {
		return bn254.G1Affine{}, fmt.Errorf("dmsm: bases has length %d, scalars has length %d", len(bases), len(scalars))
	}

	var cShareAffine bn254.G1Affine
	if len(bases) > 0 {
		if _, err := cShareAffine.MultiExp(bases, scalars, ecc.MultiExpConfig{}); err != nil {
			return bn254.G1Affine{}, fmt.Errorf("dmsm: local multiexp: %w", err)
		}
	}
	var cShare pss.G1
	cShare.FromAffine(&cShareAffine)

	ch := net.NewChannel[pss.G1Wire](d.Router)
	wireShares, err := ch.SendToKing(pss.NewG1Wire(cShare))
	if err != nil {
		return bn254.G1Affine{}, fmt.Errorf("dmsm: send to king: %w", err)
	}

	var kingData []pss.G1Wire
	if d.Router.AmKing() {
		shares := pss.JacSlice(wireShares)
		reduced, err := d.Params.UnpackExp(shares, true)
		if err != nil {
			return bn254.G1Affine{}, fmt.Errorf("dmsm: unpackexp: %w", err)
		}
		var sum pss.G1
		for i := range reduced {
			sum.AddAssign(&reduced[i])
		}
		resultWire := pss.NewG1Wire(sum)

		kingData = make([]pss.G1Wire, d.Router.NParties())
		for i := range kingData {
			kingData[i] = resultWire
		}
	}

	result, err := ch.RecvFromKing(kingData)
	if err != nil {
		return bn254.G1Affine{}, fmt.Errorf("dmsm: recv from king: %w", err)
	}
	return result.G1Affine, nil
}
