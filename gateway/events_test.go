// ABOUTME: Unit tests for argument splitting, intent folding, and state names.
// ABOUTME: These cover the pure helpers behind the frame loop.

package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain words", "one two three", []string{"one", "two", "three"}},
		{"double quotes", `say "hello world" again`, []string{"say", "hello world", "again"}},
		{"single quotes", `say 'hello world'`, []string{"say", "hello world"}},
		{"empty quoted segment is a real argument", `a "" b`, []string{"a", "", "b"}},
		{"quotes mid-token", `he"llo wor"ld`, []string{"hello world"}},
		{"unterminated quote takes the rest", `say "never closed`, []string{"say", "never closed"}},
		{"collapsed whitespace", "  a   b  ", []string{"a", "b"}},
		{"empty input", "", nil},
		{"only whitespace", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitArgs(tt.input))
		})
	}
}

func TestCombineIntents(t *testing.T) {
	assert.Equal(t, uint32(IntentsDefault), combineIntents(nil), "empty selection uses the default set")

	got := combineIntents([]Intent{IntentGuilds, IntentGuildMessages, IntentMessageContent})
	assert.Equal(t, uint32(IntentGuilds|IntentGuildMessages|IntentMessageContent), got)

	assert.Equal(t, uint32(0xFFFF), uint32(IntentsAll))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "unknown", State(99).String())
}
