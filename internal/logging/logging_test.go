package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToInfo(t *testing.T) {
	t.Setenv(envVar, "")
	l := New(3)
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestNewHonorsEnvVar(t *testing.T) {
	t.Setenv(envVar, "debug")
	l := New(1)
	require.Equal(t, zerolog.DebugLevel, l.GetLevel())
}

func TestNewIgnoresGarbageEnvVar(t *testing.T) {
	t.Setenv(envVar, "not-a-level")
	l := New(1)
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())
}
