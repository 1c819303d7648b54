package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"geomeasure/internal/config"
	"geomeasure/internal/elevation"
	"geomeasure/internal/logging"
	"geomeasure/internal/tui"
	"geomeasure/internal/watch"
)

const watchDebounce = 500 * time.Millisecond

type rootFlags struct {
	config  string
	logFile string
	watch   bool
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:   "geomeasure [file]",
		Short: "Measure distances, areas and heights on a terminal map",
		Long: `geomeasure shows GeoJSON, WKT, CSV and KML datasets on a braille map and
lets you measure them with the mouse: click to add vertices, double-click or
Enter to finish, Esc to undo.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cleanup, err := setup(f, args)
			if err != nil {
				return err
			}
			defer cleanup()
			p := tea.NewProgram(tui.New(opts...),
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
				tea.WithContext(cmd.Context()),
			)
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "config file (.toml, .yaml)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "write JSON logs to this file")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "reload the open dataset when it changes on disk")
	return cmd
}

// setup builds the model options from flags. cleanup releases the logger
// and watcher and is safe to call once setup succeeded.
func setup(f rootFlags, args []string) ([]tui.Option, func(), error) {
	cfg := config.Default()
	if f.config != "" {
		c, err := config.Load(f.config)
		if err != nil {
			return nil, nil, fmt.Errorf("config: %w", err)
		}
		cfg = c
	}
	if f.logFile != "" {
		cfg.Log.File = f.logFile
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	closers := []func(){func() { _ = log.Sync() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	opts := []tui.Option{tui.WithConfig(cfg), tui.WithLogger(log)}
	if cfg.Elevation.Grid != "" {
		g, err := elevation.LoadGrid(cfg.Elevation.Grid)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("elevation grid: %w", err)
		}
		log.Info("elevation grid loaded", zap.String("path", cfg.Elevation.Grid))
		opts = append(opts, tui.WithTerrain(
			elevation.Fallback{Primary: g, Flat: elevation.Flat{Height: cfg.Elevation.BaseHeight}}, g))
	}
	if f.watch {
		w, err := watch.New(watchDebounce, log)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("watch: %w", err)
		}
		w.Start()
		closers = append(closers, func() { _ = w.Close() })
		opts = append(opts, tui.WithWatcher(w))
	}
	if len(args) == 1 {
		opts = append(opts, tui.WithPath(args[0]))
	}
	return opts, cleanup, nil
}
