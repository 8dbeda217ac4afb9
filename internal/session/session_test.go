package session

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/distprove/internal/wireconfig"
	"github.com/luxfi/distprove/pkg/party"
)

func TestDeriveIsDeterministic(t *testing.T) {
	addrs := wireconfig.Addresses{"127.0.0.1:9000", "127.0.0.1:9001"}
	a := Derive(addrs, 4, 16)
	b := Derive(addrs, 4, 16)
	require.Equal(t, a, b)
}

func TestDeriveDiffersByParams(t *testing.T) {
	addrs := wireconfig.Addresses{"127.0.0.1:9000", "127.0.0.1:9001"}
	a := Derive(addrs, 4, 16)
	b := Derive(addrs, 4, 32)
	require.NotEqual(t, a, b)
}

func TestKDFIsDeterministicPerPartyAndRound(t *testing.T) {
	id := Derive(wireconfig.Addresses{"127.0.0.1:9000"}, 2, 8)

	buf1 := make([]byte, 32)
	buf2 := make([]byte, 32)
	_, err := io.ReadFull(KDF(id, 0, 1), buf1)
	require.NoError(t, err)
	_, err = io.ReadFull(KDF(id, 0, 1), buf2)
	require.NoError(t, err)
	require.Equal(t, buf1, buf2)

	buf3 := make([]byte, 32)
	_, err = io.ReadFull(KDF(id, 1, 1), buf3)
	require.NoError(t, err)
	require.NotEqual(t, buf1, buf3)

	buf4 := make([]byte, 32)
	_, err = io.ReadFull(KDF(id, 0, 2), buf4)
	require.NoError(t, err)
	require.NotEqual(t, buf1, buf4)
}

func TestScalarIsDeterministicPerStream(t *testing.T) {
	id := Derive(wireconfig.Addresses{"127.0.0.1:9000"}, 2, 8)

	a, err := Scalar(KDF(id, party.ID(0), 5))
	require.NoError(t, err)
	b, err := Scalar(KDF(id, party.ID(0), 5))
	require.NoError(t, err)
	require.True(t, a.Equal(&b))

	c, err := Scalar(KDF(id, party.ID(1), 5))
	require.NoError(t, err)
	require.False(t, a.Equal(&c))
}
