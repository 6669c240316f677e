package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miropolcevpro/paver-ar-web/internal/config"
	"github.com/miropolcevpro/paver-ar-web/internal/logging"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
	"github.com/miropolcevpro/paver-ar-web/version"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "floorar",
	Short: "Replay and inspect AR floor placement sessions",
	Long: `floorar drives the floor placement core outside a browser. It replays
recorded or simulated AR traces, measures contours and tape distances,
exports the surfaced mesh and compiles the occlusion shader.`,
	Version:      version.GetFullVersion(),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "tuning file (.json or .hujson); built-in defaults when empty")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadTuning() (*config.Tuning, error) {
	if configPath == "" {
		return config.Defaults(), nil
	}
	return config.Load(configPath)
}

// parsePoint parses "x,z" in floor meters.
func parsePoint(s string) (geometry.Vector3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geometry.Vector3{}, fmt.Errorf("point %q: want x,z", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geometry.Vector3{}, fmt.Errorf("point %q: %w", s, err)
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geometry.Vector3{}, fmt.Errorf("point %q: %w", s, err)
	}
	return geometry.NewVector3(x, 0, z), nil
}

func parsePoints(args []string) ([]geometry.Vector3, error) {
	pts := make([]geometry.Vector3, 0, len(args))
	for _, a := range args {
		p, err := parsePoint(a)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, nil
}
