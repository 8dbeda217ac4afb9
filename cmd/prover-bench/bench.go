package main

import (
	"fmt"
	"io"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/spf13/cobra"

	"github.com/luxfi/distprove/internal/session"
	distnet "github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/kzg"
	"github.com/luxfi/distprove/pkg/party"
)

// challenges bundles the scalars a real transcript would derive via
// Fiat-Shamir from the round-1/round-2 commitments. Deriving those from a
// transcript hash is out of scope here (spec.md's Non-goals exclude the
// application-level circuit/argument layer); the king derives them once
// from rnd and distributes them so every party runs QuotientRound against
// the same values, which is all this benchmark driver needs.
type challenges struct {
	Beta, Gamma, Alpha, Zeta, Point fr.Element
}

func sharedChallenges(router distnet.Router, rnd io.Reader) (challenges, error) {
	ch := distnet.NewChannel[challenges](router)
	var kingData []challenges
	if router.AmKing() {
		var c challenges
		for _, f := range []*fr.Element{&c.Beta, &c.Gamma, &c.Alpha, &c.Zeta, &c.Point} {
			scalar, err := session.Scalar(rnd)
			if err != nil {
				return challenges{}, fmt.Errorf("prover-bench: derive challenge: %w", err)
			}
			*f = scalar
		}
		kingData = make([]challenges, router.NParties())
		for i := range kingData {
			kingData[i] = c
		}
	}
	return ch.RecvFromKing(kingData)
}

// runBench drives the full four-round PLONK prover flow (kzg.QuotientRound)
// over random wire values and persists the resulting proof as hex-encoded
// JSON (spec.md §6 "Persisted state").
func runBench(cmd *cobra.Command, args []string) error {
	params, router, sessID, deinit, err := setup()
	if err != nil {
		return err
	}
	defer deinit()
	log := newLogger()

	nGates := sizeM
	key, err := sharedCommitmentKey(router, session.KDF(sessID, party.King, roundCommitmentKeyN), nGates, params.L)
	if err != nil {
		return err
	}
	key8, err := sharedCommitmentKey(router, session.KDF(sessID, party.King, roundCommitmentKey8N), 8*nGates, params.L)
	if err != nil {
		return err
	}
	pk, err := sharedProvingKey(router, session.KDF(sessID, party.King, roundProvingKey), nGates, params.L)
	if err != nil {
		return err
	}
	c, err := sharedChallenges(router, session.KDF(sessID, party.King, roundChallenges))
	if err != nil {
		return err
	}

	aevals, err := randColumn(nGates/params.L, session.KDF(sessID, party.ID(selfID), roundWireA))
	if err != nil {
		return err
	}
	bevals, err := randColumn(nGates/params.L, session.KDF(sessID, party.ID(selfID), roundWireB))
	if err != nil {
		return err
	}
	cevals, err := randColumn(nGates/params.L, session.KDF(sessID, party.ID(selfID), roundWireC))
	if err != nil {
		return err
	}
	qr := &kzg.QuotientRound{
		Params: params,
		Router: router,
		Key:    key,
		Key8:   key8,
		PK:     pk,
		NGates: nGates,
		Zeta:   c.Zeta,
	}

	start := time.Now()
	proof, err := qr.Run(aevals, bevals, cevals, c.Beta, c.Gamma, c.Alpha, c.Point)
	if err != nil {
		return fmt.Errorf("prover-bench: quotient round: %w", err)
	}
	log("full prover flow over %d gates took %s", nGates, time.Since(start))

	pubIns := struct{ NGates, L int }{NGates: nGates, L: params.L}
	return writeProofBlob(outFile, pubIns, proof)
}
