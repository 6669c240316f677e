package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miropolcevpro/paver-ar-web/internal/contour"
	"github.com/miropolcevpro/paver-ar-web/internal/measurement"
	"github.com/miropolcevpro/paver-ar-web/pkg/analysis"
	"github.com/miropolcevpro/paver-ar-web/pkg/stl"
)

var (
	areaSTL   string
	areaASCII bool
	areaLift  float64
)

var areaCmd = &cobra.Command{
	Use:   "area x,z x,z x,z...",
	Short: "Compute area and perimeter of a floor contour",
	Long: `Close the contour through the given floor points (meters, in the locked
frame) and print its area and perimeter the way the AR session shows them.
With --stl the surfaced mesh is exported.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runArea,
}

var measureCmd = &cobra.Command{
	Use:   "measure x,z x,z",
	Short: "Measure the distance between two floor points",
	Args:  cobra.ExactArgs(2),
	RunE:  runMeasure,
}

func init() {
	rootCmd.AddCommand(areaCmd, measureCmd)
	areaCmd.Flags().StringVar(&areaSTL, "stl", "", "write the surfaced mesh to this STL file")
	areaCmd.Flags().BoolVar(&areaASCII, "ascii", false, "write ASCII STL instead of binary")
	areaCmd.Flags().Float64Var(&areaLift, "lift", 0, "lift the surface by this many millimeters")
}

func runArea(cmd *cobra.Command, args []string) error {
	cfg, err := loadTuning()
	if err != nil {
		return err
	}
	pts, err := parsePoints(args)
	if err != nil {
		return err
	}

	e := contour.New(cfg)
	for _, p := range pts {
		closed, err := e.AddPoint(p)
		if err != nil {
			return err
		}
		if closed {
			break
		}
	}
	if e.State() == contour.Open {
		if err := e.Close(); err != nil {
			return err
		}
	}

	sum := e.Summary()
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Points: %d\n", sum.Points)
	fmt.Fprintf(w, "Area: %s\n", sum.AreaText)
	fmt.Fprintf(w, "Perimeter: %s\n", sum.PerimeterText)

	if areaSTL == "" {
		return nil
	}
	e.SetLiftHeight(areaLift)
	surf, err := e.Surface(nil)
	if err != nil {
		return err
	}
	m, err := stl.FromMesh("surface", surf.Positions(), surf.Mesh.Indices)
	if err != nil {
		return err
	}
	if err := stl.WriteFile(areaSTL, m, areaASCII); err != nil {
		return err
	}
	r := analysis.AnalyzeModel(m)
	fmt.Fprintf(w, "Mesh: %d triangles, footprint %s (deviation %.2g)\n",
		r.TriangleCount, measurement.FormatArea(r.FootprintArea), r.AreaDeviation(sum.Area))
	fmt.Fprintf(w, "Wrote %s\n", areaSTL)
	return nil
}

func runMeasure(cmd *cobra.Command, args []string) error {
	pts, err := parsePoints(args)
	if err != nil {
		return err
	}
	var tape measurement.Tape
	for _, p := range pts {
		tape.Tap(p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Distance: %s\n", tape.Text())
	return nil
}
