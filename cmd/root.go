package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/perch/internal/config"
	"github.com/zjrosen/perch/internal/log"
	"github.com/zjrosen/perch/internal/slides"
	"github.com/zjrosen/perch/internal/sorter"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".perch/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	cfg        config.Config
	cfgErr     error
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:     "perch",
	Short:   "A scene sorter built on live node collections",
	Long:    `Reorder the scenes of a slide deck in a terminal UI while watching the node tree and its change records underneath.`,
	Version: version,

	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
	RunE:              runSorter,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .perch/config.yaml, then ~/.config/perch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also PERCH_DEBUG=1)")
}

func initConfig() {
	cfg, cfgErr = loadConfig(viper.GetViper(), cfgFile, true)
}

// loadConfig reads configuration into v. Without an explicit file the lookup
// order is .perch/config.yaml, then ~/.config/perch/config.yaml; when neither
// exists and createDefault is set, the default file is written to
// .perch/config.yaml.
func loadConfig(v *viper.Viper, explicit string, createDefault bool) (config.Config, error) {
	config.SetDefaults(v)

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else if _, err := os.Stat(localConfigPath); err == nil {
		v.SetConfigFile(localConfigPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "perch"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
		if createDefault {
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				v.SetConfigFile(localConfigPath)
				_ = v.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

func setup(_ *cobra.Command, _ []string) error {
	if cfgErr != nil {
		return cfgErr
	}

	// Initialize logging if debug mode enabled (via flag, env var or config)
	if !(debugFlag || os.Getenv("PERCH_DEBUG") != "" || cfg.Log.Debug) {
		return nil
	}
	cleanup, err := log.Init(cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetMinLevel(lvl)
	}
	log.Info(log.CatConfig, "Perch starting", "version", version, "config", viper.ConfigFileUsed())
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
}

func editorOptions() []slides.Option {
	return []slides.Option{slides.WithMaxFlushPasses(cfg.Tree.MaxFlushPasses)}
}

func runSorter(cmd *cobra.Command, _ []string) error {
	ed, err := slides.New(cfg.Sorter.Deck, editorOptions()...)
	if err != nil {
		return fmt.Errorf("building deck: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := newSorterModel(ctx, ed)
	defer model.Close()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// newSorterModel builds the sorter over ed. Scene rows are mouse zones, so
// the global zone manager has to exist before the first View.
func newSorterModel(ctx context.Context, ed *slides.Editor) sorter.Model {
	zone.NewGlobal()
	return sorter.New(ctx, ed, cfg, viper.ConfigFileUsed())
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
