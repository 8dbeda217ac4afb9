// Command prover-bench is the benchmark/driver binary for the distributed
// prover core (spec.md §6 "External interfaces"). Its flag surface and
// subcommand layout follow cmd/threshold-cli/main.go's root-command /
// persistent-flags / subcommand structure, rebuilt for this committee's
// parameters instead of the teacher's protocol/curve/threshold flags.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/distprove/internal/logging"
	"github.com/luxfi/distprove/internal/session"
	"github.com/luxfi/distprove/internal/wireconfig"
	"github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/party"
	"github.com/luxfi/distprove/pkg/pss"
)

var (
	inputFile string
	selfID    int
	packingL  int
	sizeM     int
	outFile   string

	dialTimeout = 30 * time.Second

	// Round tags passed to session.KDF (spec.md §5) so that distinct
	// randomness consumers within a run never share a stream, mirroring
	// how the teacher's chain-key derivation tags each round separately.
	roundCommitmentKeyN  uint32 = 0
	roundCommitmentKey8N uint32 = 1
	roundProvingKey      uint32 = 2
	roundChallenges      uint32 = 3
	roundWireA           uint32 = 4
	roundWireB           uint32 = 5
	roundWireC           uint32 = 6
	roundLocalColumn     uint32 = 7
	roundOpenPoint       uint32 = 8

	rootCmd = &cobra.Command{
		Use:   "prover-bench",
		Short: "Distributed PLONK-style prover core benchmark driver",
		Long: `Drives the distributed prover core (network router, packed
Shamir secret sharing, distributed MSM/FFT/partial-products, degree
reduction, and the KZG-like polynomial commitment layer) over a TCP mesh
described by an address file, one process per committee member.`,
	}

	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Sample a commitment key and proving key and report their sizes",
		RunE:  runKeygen,
	}

	commitCmd = &cobra.Command{
		Use:   "commit",
		Short: "Benchmark a distributed KZG-like commit/open round on random data",
		RunE:  runCommit,
	}

	fftCmd = &cobra.Command{
		Use:   "fft",
		Short: "Benchmark a distributed forward FFT on random packed shares",
		RunE:  runFFT,
	}

	msmCmd = &cobra.Command{
		Use:   "msm",
		Short: "Benchmark a distributed multi-scalar multiplication",
		RunE:  runMSM,
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run the full four-round PLONK prover flow and persist the proof",
		RunE:  runBench,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&inputFile, "input", "", "address file listing party endpoints, one per line, index = party id (required)")
	rootCmd.PersistentFlags().IntVar(&selfID, "id", -1, "this party's id (required)")
	rootCmd.PersistentFlags().IntVarP(&packingL, "l", "l", 0, "packing factor (power of two; n = 4l) (required)")
	rootCmd.PersistentFlags().IntVarP(&sizeM, "m", "m", 0, "problem size: number of gates or evaluation domain size (power of two) (required)")
	rootCmd.MarkPersistentFlagRequired("input")
	rootCmd.MarkPersistentFlagRequired("id")
	rootCmd.MarkPersistentFlagRequired("l")
	rootCmd.MarkPersistentFlagRequired("m")

	benchCmd.Flags().StringVarP(&outFile, "output", "o", "", "path to write the hex-encoded proof blob JSON (spec.md §6 persisted state); stdout if empty")

	rootCmd.AddCommand(keygenCmd, commitCmd, fftCmd, msmCmd, benchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup parses the address file, builds this party's PSS params and
// router, derives this run's session ID from the address file and
// committee parameters (spec.md §5), and returns them together with the
// router's Deinit. Any failure here is a configuration error per spec.md §7:
// fatal at init.
func setup() (*pss.Params, net.Router, session.ID, func() error, error) {
	if selfID < 0 {
		return nil, nil, session.ID{}, nil, fmt.Errorf("prover-bench: --id is required")
	}
	addrs, err := wireconfig.ReadAddressFile(inputFile)
	if err != nil {
		return nil, nil, session.ID{}, nil, err
	}
	params, err := pss.NewParams(packingL)
	if err != nil {
		return nil, nil, session.ID{}, nil, fmt.Errorf("prover-bench: bad packing factor: %w", err)
	}
	if len(addrs) != params.N {
		return nil, nil, session.ID{}, nil, fmt.Errorf("prover-bench: address file lists %d parties, but l=%d requires n=%d", len(addrs), packingL, params.N)
	}
	sessID := session.Derive(addrs, packingL, sizeM)
	router, err := net.InitTCPRouter(addrs, party.ID(selfID), dialTimeout)
	if err != nil {
		return nil, nil, session.ID{}, nil, fmt.Errorf("prover-bench: connect to committee: %w", err)
	}
	return params, router, sessID, router.Deinit, nil
}

func newLogger() func(format string, args ...interface{}) {
	logger := logging.New(selfID)
	return func(format string, args ...interface{}) {
		logger.Info().Msg(fmt.Sprintf(format, args...))
	}
}
