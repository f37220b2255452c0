package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		require.Len(t, code, 4)
		for _, c := range code {
			require.Contains(t, codeAlphabet, string(c))
		}
		seen[code] = struct{}{}
	}
	// 36^4 combinations; 200 draws colliding down to a handful would mean
	// the generator is broken
	require.Greater(t, len(seen), 150)
}

func TestParseRef(t *testing.T) {
	ref := ParseRef("123")
	require.Equal(t, int64(123), ref.ID)
	require.Equal(t, "123", ref.Code)

	ref = ParseRef("A7K2")
	require.Zero(t, ref.ID)
	require.Equal(t, "A7K2", ref.Code)

	ref = ParseRef("-5")
	require.Zero(t, ref.ID)
}
