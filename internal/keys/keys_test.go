package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_MoveBindings(t *testing.T) {
	km := DefaultKeyMap()
	require.Equal(t, []string{"K", "shift+up"}, km.MoveUp.Keys())
	require.Equal(t, []string{"J", "shift+down"}, km.MoveDown.Keys())
}

func TestDefaultKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"j moves down", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, km.Down},
		{"arrow moves up", tea.KeyMsg{Type: tea.KeyUp}, km.Up},
		{"J moves scene down", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("J")}, km.MoveDown},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit},
		{"enter confirms", tea.KeyMsg{Type: tea.KeyEnter}, km.Confirm},
		{"esc cancels", tea.KeyMsg{Type: tea.KeyEsc}, km.Escape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, key.Matches(tt.msg, tt.binding))
		})
	}

	require.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, km.MoveDown),
		"lowercase j only navigates")
}

func TestDefaultKeyMap_NoDuplicateKeys(t *testing.T) {
	km := DefaultKeyMap()
	seen := make(map[string]string)
	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				prev, dup := seen[k]
				require.False(t, dup, "key %q bound to both %q and %q", k, prev, b.Help().Desc)
				seen[k] = b.Help().Desc
			}
		}
	}
}

func TestHelp_AllBindingsDocumented(t *testing.T) {
	km := DefaultKeyMap()
	for _, group := range km.FullHelp() {
		for _, b := range group {
			require.NotEmpty(t, b.Help().Key)
			require.NotEmpty(t, b.Help().Desc)
		}
	}
	require.Len(t, km.ShortHelp(), 6)
}
