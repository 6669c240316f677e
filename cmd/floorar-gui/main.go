package main

import (
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/miropolcevpro/paver-ar-web/internal/logging"
	"github.com/miropolcevpro/paver-ar-web/version"
)

var (
	configPath  string
	catalogPath string
	speed       float64
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:     "floorar-gui [trace.jsonl]",
	Short:   "Watch an AR floor trace replay from above",
	Args:    cobra.MaximumNArgs(1),
	Version: version.GetFullVersion(),
	Run: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		a := app.New()
		w := a.NewWindow("floorar - Floor Placement Replay")
		replay := &App{
			window:      w,
			configPath:  configPath,
			catalogPath: catalogPath,
			speed:       speed,
		}
		replay.setupMainUI()
		if err := replay.watchFiles(); err != nil {
			logging.Logger().Warn("hot reload disabled", "error", err)
		}
		if len(args) > 0 {
			replay.loadTrace(args[0])
		}
		w.Resize(fyne.NewSize(1200, 800))
		w.SetOnClosed(replay.close)
		w.ShowAndRun()
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "tuning file (.json or .hujson), reloaded on change")
	rootCmd.Flags().StringVar(&catalogPath, "catalog", "", "material catalog, reloaded on change")
	rootCmd.Flags().Float64Var(&speed, "speed", 1, "playback speed factor")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
