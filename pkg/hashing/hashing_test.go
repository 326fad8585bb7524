package hashing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	digest := Digest("deadbeef")
	require.Len(t, digest, DigestHexLen)
	require.True(t, IsHexDigest(digest))

	t.Run("Deterministic", func(t *testing.T) {
		require.Equal(t, Digest("deadbeef"), Digest("deadbeef"))
	})

	t.Run("Concatenation order matters", func(t *testing.T) {
		require.NotEqual(t, Digest("aa", "bb"), Digest("bb", "aa"))
	})

	t.Run("Parts concatenate byte for byte", func(t *testing.T) {
		require.Equal(t, Digest("aabb"), Digest("aa", "bb"))
	})
}

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(32)
	require.NoError(t, err)
	require.Len(t, a, 64)
	require.True(t, IsHexString(a))

	b, err := RandomHex(32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestIsHexDigest(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{"Valid digest", Digest("x"), true},
		{"Empty", "", false},
		{"Too short", "abcdef", false},
		{"Uppercase", "ABCDEF" + Digest("x")[6:], false},
		{"Non-hex character", "g" + Digest("x")[1:], false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsHexDigest(tc.input))
		})
	}
}
