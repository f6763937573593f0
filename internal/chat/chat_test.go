package chat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestChunk_ShortMessageUntouched(t *testing.T) {
	msg := strings.Repeat("a", MessageLimit)
	require.Equal(t, []string{msg}, Chunk(msg, MessageLimit))
}

func TestChunk_PartsFitLimitAndReassemble(t *testing.T) {
	msg := strings.Repeat("📅 Réunion ", 700)
	parts := Chunk(msg, MessageLimit)
	require.Greater(t, len(parts), 1)

	var rebuilt strings.Builder
	for i, p := range parts {
		require.LessOrEqual(t, utf8.RuneCountInString(p), MessageLimit)
		prefix := header(i+1, len(parts))
		require.True(t, strings.HasPrefix(p, prefix), "part %d: %q", i, p[:12])
		rebuilt.WriteString(strings.TrimPrefix(p, prefix))
	}
	require.Equal(t, msg, rebuilt.String())
}

func TestChunk_HeaderWidthGrows(t *testing.T) {
	// Enough text for ten or more parts, so headers become "(10/10)\n".
	msg := strings.Repeat("x", 95)
	parts := Chunk(msg, 16)
	for _, p := range parts {
		require.LessOrEqual(t, len(p), 16)
	}
	require.True(t, strings.HasPrefix(parts[len(parts)-1], header(len(parts), len(parts))))
}

func TestNewDiscord_RequiresToken(t *testing.T) {
	_, err := NewDiscord("")
	require.Error(t, err)
}
