package sorter

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/perch/internal/config"
	"github.com/zjrosen/perch/internal/slides"
)

func TestProgram_ReorderAndQuit(t *testing.T) {
	ed, err := slides.New([]string{"Intro", "Body", "Outro"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := New(ctx, ed, config.Defaults(), "")
	defer m.Close()

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("1. Intro"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("J")})

	// The change summary travels through the broker back into the program.
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("+1 -1: Body, Intro, Outro"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(Model)
	require.True(t, ok)
	require.Equal(t, []string{"Body", "Intro", "Outro"}, final.Editor().Titles())
	require.Equal(t, 1, final.Cursor())
}
