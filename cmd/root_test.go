package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/perch/internal/config"
	"github.com/zjrosen/perch/internal/scenario"
	"github.com/zjrosen/perch/internal/slides"
	"github.com/zjrosen/perch/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sorter:\n  deck: [Only]\n"), 0o644))

	c, err := loadConfig(viper.New(), path, false)
	require.NoError(t, err)
	require.Equal(t, []string{"Only"}, c.Sorter.Deck)
	require.Equal(t, config.Defaults().Tree, c.Tree)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tree:\n  max_flush_passes: 0\n"), 0o644))

	_, err := loadConfig(viper.New(), path, false)
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.Error(t, err)
}

func TestPrintFrames_Diff(t *testing.T) {
	sc, err := scenario.Builtin("reorder")
	require.NoError(t, err)
	frames, err := scenario.NewRunner().Run(context.Background(), sc)
	require.NoError(t, err)

	var buf bytes.Buffer
	printFrames(&buf, styles.New(config.Defaults().Theme), sc.Name, frames, true)
	out := buf.String()

	require.Contains(t, out, "scenario reorder")
	require.Contains(t, out, "[0] start")
	require.Contains(t, out, `    scene "Intro"`)
	require.Contains(t, out, `  +   scene "Credits"`)
	require.Contains(t, out, `  -   scene "Intro"`)
	require.Contains(t, out, "(1 records)")
}

func TestNewReplayCache_ReusesUnchangedScenario(t *testing.T) {
	sc, err := scenario.Builtin("buttons")
	require.NoError(t, err)

	replay := newReplayCache(scenario.NewRunner(), false)
	first, err := replay.Get(context.Background(), sc.Fingerprint(), sc, config.Defaults().Replay.CacheTTL)
	require.NoError(t, err)

	again, err := scenario.Builtin("buttons")
	require.NoError(t, err)
	second, err := replay.Get(context.Background(), again.Fingerprint(), again, config.Defaults().Replay.CacheTTL)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Same(t, &first[0], &second[0], "second replay is served from the cache")
}

func TestNewSorterModel_RendersSceneZones(t *testing.T) {
	prev := cfg
	cfg = config.Defaults()
	t.Cleanup(func() { cfg = prev })

	ed, err := slides.New([]string{"Intro", "Outro"}, editorOptions()...)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newSorterModel(ctx, ed)
	defer m.Close()

	var view string
	require.NotPanics(t, func() { view = m.View() })
	require.Contains(t, view, "Outro")
	require.NotContains(t, view, "sorter-scene:")
}
