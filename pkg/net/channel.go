package net

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Channel is the typed layer over Router (spec.md §4.B): any value
// admitting cbor (de)serialization can be broadcast or routed through the
// king without the caller hand-rolling a wire format. Deserialization
// failure is a fatal codec error (spec.md §7): it is never recovered,
// only wrapped and returned so the caller can abort the session.
type Channel[T any] struct {
	router Router
}

// NewChannel wraps router with the typed encode/decode layer.
func NewChannel[T any](router Router) *Channel[T] {
	return &Channel[T]{router: router}
}

// Broadcast exchanges one T per party (spec.md §4.B).
func (c *Channel[T]) Broadcast(v T) ([]T, error) {
	encoded, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("net: marshal broadcast payload: %w", err)
	}
	raw, err := c.router.BroadcastBytes(encoded)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](raw)
}

// SendToKing sends v to the king; the king receives every party's value,
// everyone else receives nil (spec.md's "King returns Option" idiom).
func (c *Channel[T]) SendToKing(v T) ([]T, error) {
	encoded, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("net: marshal send-to-king payload: %w", err)
	}
	raw, err := c.router.SendBytesToKing(encoded)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return decodeAll[T](raw)
}

// RecvFromKing is the dual of SendToKing: the king supplies the full
// per-party slice and gets back its own slot; everyone else passes nil.
func (c *Channel[T]) RecvFromKing(kingData []T) (T, error) {
	var zero T
	var encodedSlots [][]byte
	if kingData != nil {
		encodedSlots = make([][]byte, len(kingData))
		for i, v := range kingData {
			encoded, err := cbor.Marshal(v)
			if err != nil {
				return zero, fmt.Errorf("net: marshal recv-from-king payload %d: %w", i, err)
			}
			encodedSlots[i] = encoded
		}
	}
	raw, err := c.router.RecvBytesFromKing(encodedSlots)
	if err != nil {
		return zero, err
	}
	var out T
	if err := cbor.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("net: unmarshal recv-from-king payload: %w", err)
	}
	return out, nil
}

func decodeAll[T any](raw [][]byte) ([]T, error) {
	out := make([]T, len(raw))
	for i, b := range raw {
		if err := cbor.Unmarshal(b, &out[i]); err != nil {
			return nil, fmt.Errorf("net: unmarshal payload from party %d: %w", i, err)
		}
	}
	return out, nil
}
