package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
	assert.Equal(t, []string{"enter"}, km.Submit.Keys())
	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
	assert.Equal(t, "ask", km.Submit.Help().Desc)
}

func TestDefaultKeyMap_NoPrintableKeys(t *testing.T) {
	km := DefaultKeyMap()

	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				assert.Greater(t, len(k), 1, "binding %q would swallow typed input", k)
			}
		}
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	require.Len(t, help, 3)
	assert.Equal(t, km.Submit.Keys(), help[0].Keys())
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	full := km.FullHelp()

	assert.Len(t, full, 3)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{name: "enter submits", key: "enter", want: true},
		{name: "letter does not submit", key: "q", want: false},
		{name: "empty", key: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.key, km.Submit))
		})
	}

	assert.True(t, Matches("pgup", km.ScrollUp))
	assert.True(t, Matches("ctrl+d", km.Quit))
}
