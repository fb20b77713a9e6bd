package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/perch/internal/cachemanager"
	"github.com/zjrosen/perch/internal/log"
	"github.com/zjrosen/perch/internal/scenario"
	"github.com/zjrosen/perch/internal/tracing"
	"github.com/zjrosen/perch/internal/tree"
	"github.com/zjrosen/perch/internal/ui/styles"
	"github.com/zjrosen/perch/internal/watcher"
)

var (
	runDiff    bool
	runWatch   bool
	runAnchors bool
	runList    bool
	runNoCache bool
	runTrace   string
)

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml|example>",
	Short: "Replay a scenario and print the tree after every step",
	Long: `Replay a scenario file against a fresh deck and print the node tree after
every step. A name that is not a file selects a bundled example (see --list).`,
	Args: func(cmd *cobra.Command, args []string) error {
		if runList {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runScenario,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runDiff, "diff", false, "print a line diff against the previous step instead of the full tree")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "re-run whenever the scenario file changes")
	runCmd.Flags().BoolVar(&runAnchors, "anchors", false, "show collection anchors in tree dumps")
	runCmd.Flags().BoolVar(&runList, "list", false, "list bundled example scenarios")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "always replay, even when the scenario is unchanged")
	runCmd.Flags().StringVar(&runTrace, "trace", "", "enable tracing with this exporter (none, file, stdout, otlp)")
}

func runScenario(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if runList {
		for _, name := range scenario.Builtins() {
			_, _ = fmt.Fprintln(out, name)
		}
		return nil
	}

	target := args[0]
	_, statErr := os.Stat(target)
	isFile := statErr == nil
	if runWatch && !isFile {
		return fmt.Errorf("--watch needs a scenario file, %q is not one", target)
	}

	traceCfg := cfg.Tracing
	if runTrace != "" {
		traceCfg.Enabled = true
		traceCfg.Exporter = runTrace
	}
	provider, err := tracing.NewProvider(traceCfg)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.ErrorErr(log.CatTracing, "Trace shutdown failed", err)
		}
	}()

	runner := scenario.NewRunner(
		scenario.WithRenderOptions(tree.RenderOptions{ShowAnchors: runAnchors || cfg.Sorter.ShowAnchors}),
		scenario.WithEditorOptions(editorOptions()...),
		scenario.WithTracer(provider.Tracer()),
	)
	replay := newReplayCache(runner, runNoCache || cfg.Replay.CacheTTL == 0)
	st := styles.New(cfg.Theme)

	once := func(ctx context.Context) error {
		var sc *scenario.Scenario
		var err error
		if isFile {
			sc, err = scenario.Load(target)
		} else {
			sc, err = scenario.Builtin(target)
		}
		if err != nil {
			return err
		}
		frames, err := replay.Get(ctx, sc.Fingerprint(), sc, cfg.Replay.CacheTTL)
		printFrames(out, st, sc.Name, frames, runDiff)
		return err
	}

	if !runWatch {
		return once(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return watchScenario(ctx, target, out, once)
}

// newReplayCache wraps runner so an unchanged scenario, as identified by its
// fingerprint, is printed from the frames of its last successful replay.
func newReplayCache(runner *scenario.Runner, skip bool) *cachemanager.ReadThroughCache[string, []scenario.Frame, *scenario.Scenario] {
	return cachemanager.NewReadThroughCache[string, []scenario.Frame, *scenario.Scenario](
		cachemanager.NewInMemoryCacheManager[string, []scenario.Frame](
			"scenario-frames", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval),
		runner.Run,
		skip,
	)
}

// watchScenario runs fn once, then again after every change to path, until
// ctx is done. Errors from fn are printed, not returned, so a broken edit does
// not end the session.
func watchScenario(ctx context.Context, path string, out io.Writer, fn func(context.Context) error) error {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}

	report := func() {
		if err := fn(ctx); err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
		}
		_, _ = fmt.Fprintf(out, "watching %s (ctrl+c to stop)\n", path)
	}

	report()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			log.Debug(log.CatWatcher, "Re-running scenario", "path", path)
			_, _ = fmt.Fprintln(out)
			report()
		}
	}
}

func printFrames(w io.Writer, st styles.Styles, name string, frames []scenario.Frame, diff bool) {
	_, _ = fmt.Fprintln(w, st.Title.Render("scenario "+name))
	for i, f := range frames {
		header := fmt.Sprintf("[%d] %s", f.Step, f.Desc)
		if f.Step > 0 {
			header += st.Muted.Render(fmt.Sprintf(" (%d records)", f.Records))
		}
		_, _ = fmt.Fprintln(w, st.Selected.Render(header))

		if !diff || i == 0 {
			_, _ = fmt.Fprint(w, indent(f.Dump))
			continue
		}
		lines := scenario.Diff(frames[i-1].Dump, f.Dump)
		if !scenario.Changed(lines) {
			_, _ = fmt.Fprintln(w, st.Muted.Render("    (tree unchanged)"))
			continue
		}
		for _, l := range lines {
			switch l.Kind {
			case scenario.LineAdded:
				_, _ = fmt.Fprintln(w, st.Added.Render("  + "+l.Text))
			case scenario.LineRemoved:
				_, _ = fmt.Fprintln(w, st.Removed.Render("  - "+l.Text))
			default:
				_, _ = fmt.Fprintln(w, "    "+l.Text)
			}
		}
	}
}

func indent(dump string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(dump, "\n") {
		if line == "" {
			continue
		}
		b.WriteString("    ")
		b.WriteString(line)
	}
	return b.String()
}
