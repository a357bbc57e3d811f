package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashID(t *testing.T) {
	t.Run("produces consistent hash for same id", func(t *testing.T) {
		require.Equal(t, HashID("inv-1"), HashID("inv-1"))
	})

	t.Run("produces different hashes for different ids", func(t *testing.T) {
		require.NotEqual(t, HashID("inv-1"), HashID("inv-2"))
	})

	t.Run("produces 8 character hash", func(t *testing.T) {
		require.Len(t, HashID("inv-1"), 8)
	})

	t.Run("changes hash when salt changes", func(t *testing.T) {
		originalSalt := hashSalt
		defer func() { hashSalt = originalSalt }()

		hash1 := HashID("inv-1")
		hashSalt = "different-salt"
		require.NotEqual(t, hash1, HashID("inv-1"))
	})
}

func TestSanitizeEmail(t *testing.T) {
	require.Equal(t, "***@example.com", SanitizeEmail("jane@example.com"))
	require.Equal(t, "<empty>", SanitizeEmail(""))
	require.Equal(t, "<8 chars>", SanitizeEmail("no-at-al"))
	require.Equal(t, "<9 chars>", SanitizeEmail("@nobody.x"))
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "<empty>"},
		{"short text", "hello", "<5 chars>"},
		{"exactly ten", "0123456789", "<10 chars>"},
		{"long text", `[{"id":"1","name":"Acme"}]`, `[{"...<26 chars>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SanitizeText(tt.input))
		})
	}
}
