package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miropolcevpro/paver-ar-web/internal/export"
)

var plotOutput string

var plotCmd = &cobra.Command{
	Use:   "plot [trace.jsonl]",
	Short: "Plot the contour of a replayed trace from above",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)
	addReplayFlags(plotCmd)
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "image file (.png, .svg or .pdf); trace name with .png when empty")
}

func runPlot(cmd *cobra.Command, args []string) error {
	res, err := replayTrace(cmd, args[0])
	if err != nil {
		return err
	}
	defer res.session.End()

	out := plotOutput
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
	}

	st := res.out.Status
	title := "No contour"
	if st.AreaText != "" {
		title = fmt.Sprintf("Area %s, perimeter %s", st.AreaText, st.PerimeterText)
	}
	p, err := export.Plot(title,
		res.session.Contour().Points(),
		st.CanSurface || st.SurfaceReady,
		res.session.TapePoints())
	if err != nil {
		return err
	}
	if err := export.SavePlot(p, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return nil
}
