package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/spf13/cobra"

	"github.com/luxfi/distprove/internal/session"
	"github.com/luxfi/distprove/pkg/dfft"
	"github.com/luxfi/distprove/pkg/dmsm"
	"github.com/luxfi/distprove/pkg/kzg"
	"github.com/luxfi/distprove/pkg/party"
	"github.com/luxfi/distprove/pkg/pss"
)

// randColumn draws n scalars from rnd, this party's local benchmark input
// data. Passing a session.KDF stream makes the column reproduce given the
// same session ID and round (spec.md §5); passing crypto/rand.Reader
// samples independently.
func randColumn(n int, rnd io.Reader) ([]fr.Element, error) {
	out := make([]fr.Element, n)
	for i := range out {
		scalar, err := session.Scalar(rnd)
		if err != nil {
			return nil, fmt.Errorf("prover-bench: sample random scalar: %w", err)
		}
		out[i] = scalar
	}
	return out, nil
}

// runKeygen samples a CommitmentKey and PackProvingKey sized for this run
// (no trusted setup; both are independently random per spec.md §4.H) and
// reports their sizes. It does not touch the network — key sampling is
// purely local per party, so there is no session to derive determinism
// from and crypto/rand.Reader is used directly.
func runKeygen(cmd *cobra.Command, args []string) error {
	params, err := pss.NewParams(packingL)
	if err != nil {
		return fmt.Errorf("prover-bench: bad packing factor: %w", err)
	}
	log := newLogger()

	key, err := kzg.NewCommitmentKey(sizeM, params.L, rand.Reader)
	if err != nil {
		return err
	}
	pk, err := kzg.NewPackProvingKey(sizeM, params.L, rand.Reader)
	if err != nil {
		return err
	}
	log("sampled commitment key with %d CRS elements and proving key with %d entries per selector vector", len(key.PowersOfTau), len(pk.QM))
	return nil
}

// runCommit benchmarks one Commit/Open round against a column sampled
// from this party's session-derived randomness stream.
func runCommit(cmd *cobra.Command, args []string) error {
	params, router, sessID, deinit, err := setup()
	if err != nil {
		return err
	}
	defer deinit()
	log := newLogger()

	key, err := sharedCommitmentKey(router, session.KDF(sessID, party.King, roundCommitmentKeyN), sizeM, params.L)
	if err != nil {
		return err
	}
	col, err := randColumn(sizeM/params.L, session.KDF(sessID, party.ID(selfID), roundLocalColumn))
	if err != nil {
		return err
	}
	point, err := session.Scalar(session.KDF(sessID, party.King, roundOpenPoint))
	if err != nil {
		return fmt.Errorf("prover-bench: derive opening point: %w", err)
	}

	c := kzg.NewCommitter(params, router, key)
	start := time.Now()
	if _, err := c.Commit(col); err != nil {
		return fmt.Errorf("prover-bench: commit: %w", err)
	}
	commitElapsed := time.Since(start)

	start = time.Now()
	if _, err := c.Open(col, sizeM, point); err != nil {
		return fmt.Errorf("prover-bench: open: %w", err)
	}
	openElapsed := time.Since(start)

	log("commit took %s, open took %s", commitElapsed, openElapsed)
	return nil
}

// runFFT benchmarks one distributed forward FFT.
func runFFT(cmd *cobra.Command, args []string) error {
	params, router, sessID, deinit, err := setup()
	if err != nil {
		return err
	}
	defer deinit()
	log := newLogger()

	col, err := randColumn(sizeM/params.L, session.KDF(sessID, party.ID(selfID), roundLocalColumn))
	if err != nil {
		return err
	}
	f := dfft.New(params, router)
	start := time.Now()
	_, err = f.Forward(col, sizeM)
	if err != nil {
		return fmt.Errorf("prover-bench: fft: %w", err)
	}
	log("distributed fft over domain size %d took %s", sizeM, time.Since(start))
	return nil
}

// runMSM benchmarks one distributed multi-scalar multiplication against a
// freshly sampled commitment key.
func runMSM(cmd *cobra.Command, args []string) error {
	params, router, sessID, deinit, err := setup()
	if err != nil {
		return err
	}
	defer deinit()
	log := newLogger()

	key, err := sharedCommitmentKey(router, session.KDF(sessID, party.King, roundCommitmentKeyN), sizeM, params.L)
	if err != nil {
		return err
	}
	col, err := randColumn(sizeM/params.L, session.KDF(sessID, party.ID(selfID), roundLocalColumn))
	if err != nil {
		return err
	}

	d := dmsm.New(params, router)
	start := time.Now()
	_, err = d.Eval(key.PowersOfTau, col)
	if err != nil {
		return fmt.Errorf("prover-bench: msm: %w", err)
	}
	log("distributed msm of length %d took %s", len(col), time.Since(start))
	return nil
}
