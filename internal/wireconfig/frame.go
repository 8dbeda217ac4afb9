// Package wireconfig implements the on-the-wire framing and the address
// file format used by the network router (spec.md §6: "Wire format",
// "Address file format").
package wireconfig

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
)

// maxFrameBytes bounds a single frame so a corrupt length prefix cannot
// make a party allocate an unbounded buffer (codec error, spec.md §7).
const maxFrameBytes = 1 << 30

// WriteFrame writes b as an 8-byte little-endian length prefix followed by
// b itself, per spec.md §6 ("Vectors: 8-byte length prefix followed by
// element payloads").
func WriteFrame(w io.Writer, b []byte) error {
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(len(b)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wireconfig: write frame header: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("wireconfig: write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads a frame written by WriteFrame. EOF mid-frame is a fatal
// transport error (spec.md §7).
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("wireconfig: read frame header: %w", err)
	}
	n := binary.LittleEndian.Uint64(hdr[:])
	if n > maxFrameBytes {
		return nil, fmt.Errorf("wireconfig: frame of %d bytes exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("wireconfig: read frame body: %w", err)
	}
	return buf, nil
}

// Addresses is an address file: one host:port per line, index = party id
// (spec.md §6 "Address file format").
type Addresses []string

// ReadAddressFile parses the address file at path.
func ReadAddressFile(path string) (Addresses, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wireconfig: open address file: %w", err)
	}
	defer f.Close()

	var addrs Addresses
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(line); err != nil {
			return nil, fmt.Errorf("wireconfig: malformed address %q: %w", line, err)
		}
		addrs = append(addrs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("wireconfig: scan address file: %w", err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("wireconfig: address file %q is empty", path)
	}
	return addrs, nil
}
