package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		key     string
		binding func(*KeyMap) bool
	}{
		{"q quits", "q", func(k *KeyMap) bool { return Matches("q", k.Quit) }},
		{"ctrl+c quits", "ctrl+c", func(k *KeyMap) bool { return Matches("ctrl+c", k.Quit) }},
		{"esc goes back", "esc", func(k *KeyMap) bool { return Matches("esc", k.Back) }},
		{"j moves down", "j", func(k *KeyMap) bool { return Matches("j", k.Down) }},
		{"k moves up", "k", func(k *KeyMap) bool { return Matches("k", k.Up) }},
		{"e toggles enriched", "e", func(k *KeyMap) bool { return Matches("e", k.ToggleEnriched) }},
		{"i opens insights", "i", func(k *KeyMap) bool { return Matches("i", k.Insights) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.binding(km), "key %q", tt.key)
		})
	}
}

func TestMatches_NoMatch(t *testing.T) {
	km := DefaultKeyMap()

	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("enter", km.Back))
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 2)
	assert.Len(t, km.FullHelp(), 3)
	assert.Contains(t, km.TimelineHelp(), km.ToggleEnriched)
}
