package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miropolcevpro/paver-ar-web/internal/measurement"
	"github.com/miropolcevpro/paver-ar-web/pkg/analysis"
	"github.com/miropolcevpro/paver-ar-web/pkg/stl"
)

var infoCmd = &cobra.Command{
	Use:   "info [file.stl]",
	Short: "Display information about an exported surface mesh",
	Long:  "Show triangle count, surface and footprint area, dimensions and edge statistics of an STL surface.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	model, err := stl.Parse(filename)
	if err != nil {
		return fmt.Errorf("failed to parse STL file: %w", err)
	}
	result := analysis.AnalyzeModel(model)

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Surface Mesh Information")
	fmt.Fprintln(w, "========================")
	if model.Name != "" {
		fmt.Fprintf(w, "Name: %s\n", model.Name)
	}
	fmt.Fprintf(w, "File: %s\n\n", filename)

	fmt.Fprintf(w, "Triangles: %d\n", result.TriangleCount)
	fmt.Fprintf(w, "Surface area: %s\n", measurement.FormatArea(result.SurfaceArea))
	fmt.Fprintf(w, "Footprint area: %s\n\n", measurement.FormatArea(result.FootprintArea))

	fmt.Fprintln(w, "Bounds:")
	fmt.Fprintf(w, "  Min: %s\n", analysis.FormatVector(result.Bounds.Min))
	fmt.Fprintf(w, "  Max: %s\n", analysis.FormatVector(result.Bounds.Max))
	fmt.Fprintf(w, "  Size: %s\n\n", analysis.FormatVector(result.Dimensions))

	fmt.Fprintln(w, "Edge lengths:")
	fmt.Fprintf(w, "  Minimum: %s\n", measurement.FormatDistance(result.MinEdgeLength))
	fmt.Fprintf(w, "  Maximum: %s\n", measurement.FormatDistance(result.MaxEdgeLength))
	fmt.Fprintf(w, "  Average: %s (std dev %.3f)\n", measurement.FormatDistance(result.AvgEdgeLength), result.EdgeStdDev)
	for i, e := range analysis.FindLongestEdges(result, 3) {
		fmt.Fprintf(w, "  #%d longest: %s from %s\n", i+1, measurement.FormatDistance(e.Length), analysis.FormatVector(e.Start))
	}
	return nil
}
