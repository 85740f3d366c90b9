package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/worktally/worktally/internal/config"
	"github.com/worktally/worktally/internal/logging"
	"github.com/worktally/worktally/internal/manifest"
	"github.com/worktally/worktally/internal/observe"
	"github.com/worktally/worktally/internal/promexport"
	"github.com/worktally/worktally/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run <manifest>",
	Short: "Run the tasks in a manifest and track aggregate progress",
	Long: `Run simulates the tasks described by a manifest file, crediting one
unit per task per tick, and tracks them under a single weighted
parent. Progress is shown in a live terminal display; pass --no-tui
to log progress lines instead.

Examples:
  # Run with the terminal display
  worktally run deploy.yaml

  # Headless, logging progress at each change
  worktally run deploy.yaml --no-tui

  # Expose Prometheus gauges while running
  worktally run deploy.yaml --metrics --metrics-addr :9184`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("tick", 0, "Milliseconds between unit credits per task (overrides config)")
	runCmd.Flags().Bool("no-tui", false, "Disable the terminal display and log progress instead")
	runCmd.Flags().Bool("metrics", false, "Serve Prometheus metrics while running")
	runCmd.Flags().String("metrics-addr", "", "Listen address for the metrics endpoint (overrides config)")

	_ = viper.BindPFlag("run.no_tui", runCmd.Flags().Lookup("no-tui"))
	_ = viper.BindPFlag("metrics.enabled", runCmd.Flags().Lookup("metrics"))
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if tick, _ := cmd.Flags().GetInt("tick"); tick > 0 {
		cfg.Run.TickMs = tick
	}
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		cfg.Metrics.Addr = addr
	}

	log, err := logging.New(cfg.Logging.Path, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer log.Close()

	man, err := manifest.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	tree, err := man.Tree()
	if err != nil {
		return fmt.Errorf("building tracker: %w", err)
	}
	watcher := observe.NewWatcher(tree)

	log.Info("run starting",
		"operation", man.Operation,
		"tasks", len(man.Tasks),
		"total_weight", man.TotalWeight())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		go func() {
			if err := promexport.Serve(cfg.Metrics.Addr, tree); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
		log.Info("metrics listening", "addr", cfg.Metrics.Addr)
	}

	for _, key := range watcher.Keys() {
		go simulateTask(ctx, watcher, key, cfg.Run.TickInterval())
	}

	if cfg.Run.NoTUI {
		return runHeadless(ctx, watcher, log)
	}
	return tui.Run(watcher)
}

// simulateTask credits one unit to a task per tick until the task reaches
// its total or the context is cancelled.
func simulateTask(ctx context.Context, w *observe.Watcher[string], key string, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, ok := w.Child(key)
			if !ok || snap.Completed >= snap.Total {
				return
			}
			w.AddCompleted(key, 1)
		}
	}
}

// runHeadless logs the parent fraction on each change and returns once the
// operation completes or the context is cancelled.
func runHeadless(ctx context.Context, w *observe.Watcher[string], log *logging.Logger) error {
	sub := w.WatchRoot(observe.PropertyFraction)
	defer sub.Cancel()

	for {
		select {
		case <-ctx.Done():
			log.Warn("run interrupted")
			return ctx.Err()
		case u, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			root := w.Root()
			log.Info("progress",
				"fraction", u.Fraction,
				"completed", root.Completed,
				"total", root.Total)
			if u.Fraction >= 1.0 {
				log.Info("run complete")
				return nil
			}
		}
	}
}
