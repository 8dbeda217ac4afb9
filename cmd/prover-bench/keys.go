package main

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	distnet "github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/kzg"
	"github.com/luxfi/distprove/pkg/pss"
)

// sharedCommitmentKey has the king sample a CommitmentKey from rnd and
// distribute it to every party via RecvFromKing, so the whole committee
// commits against the same CRS. spec.md §4.H treats the CRS as
// dummy/random with no trusted setup required, but a distributed MSM
// still needs every party holding an identical copy of it; passing a
// internal/session.KDF stream for rnd makes that copy reproducible given
// the session ID (spec.md §5) instead of freshly random every run. Group
// elements cross the wire as pss.G1Wire, the canonical fixed-width
// encoding pkg/dmsm itself uses, rather than gnark-crypto's
// bn254.G1Affine directly.
func sharedCommitmentKey(router distnet.Router, rnd io.Reader, domainSize, l int) (*kzg.CommitmentKey, error) {
	ch := distnet.NewChannel[[]pss.G1Wire](router)

	var kingData [][]pss.G1Wire
	if router.AmKing() {
		key, err := kzg.NewCommitmentKey(domainSize, l, rnd)
		if err != nil {
			return nil, err
		}
		wire := make([]pss.G1Wire, len(key.PowersOfTau))
		for i, p := range key.PowersOfTau {
			var jac pss.G1
			jac.FromAffine(&p)
			wire[i] = pss.NewG1Wire(jac)
		}
		kingData = make([][]pss.G1Wire, router.NParties())
		for i := range kingData {
			kingData[i] = wire
		}
	}

	wire, err := ch.RecvFromKing(kingData)
	if err != nil {
		return nil, fmt.Errorf("prover-bench: distribute commitment key: %w", err)
	}
	jacs := pss.JacSlice(wire)
	powers := make([]bn254.G1Affine, len(jacs))
	for i := range jacs {
		powers[i].FromJacobian(&jacs[i])
	}
	return &kzg.CommitmentKey{PowersOfTau: powers}, nil
}

// sharedProvingKey is the PackProvingKey counterpart of sharedCommitmentKey.
func sharedProvingKey(router distnet.Router, rnd io.Reader, nGates, l int) (*kzg.PackProvingKey, error) {
	ch := distnet.NewChannel[kzg.PackProvingKey](router)

	var kingData []kzg.PackProvingKey
	if router.AmKing() {
		pk, err := kzg.NewPackProvingKey(nGates, l, rnd)
		if err != nil {
			return nil, err
		}
		kingData = make([]kzg.PackProvingKey, router.NParties())
		for i := range kingData {
			kingData[i] = *pk
		}
	}

	pk, err := ch.RecvFromKing(kingData)
	if err != nil {
		return nil, fmt.Errorf("prover-bench: distribute proving key: %w", err)
	}
	return &pk, nil
}
