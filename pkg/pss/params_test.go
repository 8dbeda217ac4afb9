package pss

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func randScalars(t *testing.T, n int) []fr.Element {
	t.Helper()
	out := make([]fr.Element, n)
	for i := range out {
		_, err := out[i].SetRandom()
		require.NoError(t, err)
	}
	return out
}

func TestNewParamsRejectsNonPowerOfTwo(t *testing.T) {
	_, err := NewParams(3)
	require.Error(t, err)
}

func TestNewParamsInvariants(t *testing.T) {
	for _, l := range []int{2, 4, 8} {
		p, err := NewParams(l)
		require.NoError(t, err)
		require.Equal(t, 4*l, p.N)
		require.Equal(t, l-1, p.T)
		require.Equal(t, uint64(p.N), p.Share.Size())
		require.Equal(t, uint64(l+p.T+1), p.Secret.Size())
		require.Equal(t, uint64(4*l), p.Secret2.Size())
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, l := range []int{2, 4} {
		p, err := NewParams(l)
		require.NoError(t, err)

		secrets := randScalars(t, l)
		shares, err := p.PackFromPublic(secrets)
		require.NoError(t, err)
		require.Len(t, shares, p.N)

		recovered, err := p.Unpack(shares)
		require.NoError(t, err)
		require.Equal(t, secrets, recovered)
	}
}

func TestUnpack2Length(t *testing.T) {
	p, err := NewParams(4)
	require.NoError(t, err)
	shares := randScalars(t, p.N)
	recovered, err := p.Unpack2(shares)
	require.NoError(t, err)
	require.Len(t, recovered, 2*p.L)
}

func TestPackFromPublicWrongLength(t *testing.T) {
	p, err := NewParams(2)
	require.NoError(t, err)
	_, err = p.PackFromPublic(randScalars(t, p.L+1))
	require.Error(t, err)
}
