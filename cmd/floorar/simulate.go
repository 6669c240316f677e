package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/miropolcevpro/paver-ar-web/internal/simplatform"
)

var (
	simOutput  string
	simMeasure bool
	simWall    float64
	simHeight  float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate x,z x,z...",
	Short: "Write a synthetic AR trace",
	Long: `Script a handheld camera over a flat floor: calibrate at the first point,
tap every point, close and surface the contour. With --measure the two
points are measured with the tape instead. The trace is written as JSON
lines for the replay command.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVarP(&simOutput, "output", "o", "", "trace file; stdout when empty")
	simulateCmd.Flags().BoolVar(&simMeasure, "measure", false, "measure between the two points")
	simulateCmd.Flags().Float64Var(&simWall, "wall", 0, "add depth frames of a flat wall this many meters away")
	simulateCmd.Flags().Float64Var(&simHeight, "height", 1.5, "camera height above the floor in meters")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	pts, err := parsePoints(args)
	if err != nil {
		return err
	}

	scene := simplatform.DefaultScene()
	scene.Height = simHeight
	if simWall > 0 {
		scene.Depth = wallDepth(8, 6, simWall)
	}

	var recs []simplatform.Record
	if simMeasure {
		if len(pts) != 2 {
			return fmt.Errorf("--measure needs exactly two points, got %d", len(pts))
		}
		recs = scene.Measure([2]float64{pts[0].X, pts[0].Z}, [2]float64{pts[1].X, pts[1].Z})
	} else {
		if len(pts) < 3 {
			return fmt.Errorf("a contour needs at least 3 points, got %d", len(pts))
		}
		corners := make([][2]float64, len(pts))
		for i, p := range pts {
			corners[i] = [2]float64{p.X, p.Z}
		}
		recs = scene.Polygon(corners)
	}

	if simOutput == "" {
		w := simplatform.NewWriter(cmd.OutOrStdout())
		for _, rec := range recs {
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}
	if err := simplatform.WriteFile(simOutput, recs); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d frames to %s\n", len(recs), simOutput)
	return nil
}

// wallDepth is a depth frame of a flat wall in millimeters.
func wallDepth(w, h int, meters float64) *simplatform.DepthRecord {
	raw := uint16(math.Min(math.Round(meters*1000), math.MaxUint16))
	data := make([]uint16, w*h)
	for i := range data {
		data[i] = raw
	}
	return &simplatform.DepthRecord{Width: w, Height: h, Data: data, RawToMeters: 0.001}
}
