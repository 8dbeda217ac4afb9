package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// proofBlob is the persisted-state shape spec.md §6 names: the public
// inputs and the proof, each hex-encoded, following the same
// encoding/json + encoding/hex pattern cmd/threshold-cli/main.go uses for
// its own config persistence.
type proofBlob struct {
	PubIns string `json:"pub_ins"`
	Proof  string `json:"proof"`
}

func writeProofBlob(path string, pubIns, proof any) error {
	pubBytes, err := cbor.Marshal(pubIns)
	if err != nil {
		return fmt.Errorf("prover-bench: marshal public inputs: %w", err)
	}
	proofBytes, err := cbor.Marshal(proof)
	if err != nil {
		return fmt.Errorf("prover-bench: marshal proof: %w", err)
	}

	blob := proofBlob{
		PubIns: "0x" + hex.EncodeToString(pubBytes),
		Proof:  "0x" + hex.EncodeToString(proofBytes),
	}
	out, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("prover-bench: marshal proof blob: %w", err)
	}

	if path == "" {
		_, err := os.Stdout.Write(append(out, '\n'))
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("prover-bench: write proof blob to %s: %w", path, err)
	}
	return nil
}
