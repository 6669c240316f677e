package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miropolcevpro/paver-ar-web/internal/export"
	"github.com/miropolcevpro/paver-ar-web/internal/material"
	"github.com/miropolcevpro/paver-ar-web/internal/occlusion"
	"github.com/miropolcevpro/paver-ar-web/internal/session"
	"github.com/miropolcevpro/paver-ar-web/internal/simplatform"
	"github.com/miropolcevpro/paver-ar-web/pkg/analysis"
	"github.com/miropolcevpro/paver-ar-web/pkg/stl"
	"github.com/miropolcevpro/paver-ar-web/pkg/viewer"
)

var (
	catalogPath string
	materialRef string
	noDepth     bool
	noAnchors   bool
	replaySTL   string
	replayASCII bool
	replayView  string
	replayJSON  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay [trace.jsonl]",
	Short: "Replay an AR trace through the floor placement pipeline",
	Long: `Step a session through every frame of a JSON-lines trace and print the
final status. The surfaced mesh can be exported as STL and the last camera
view rendered with depth occlusion.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	addReplayFlags(replayCmd)
	replayCmd.Flags().StringVar(&replaySTL, "stl", "", "write the surfaced mesh to this STL file")
	replayCmd.Flags().BoolVar(&replayASCII, "ascii", false, "write ASCII STL instead of binary")
	replayCmd.Flags().StringVar(&replayView, "view", "", "render the last camera view to this PNG file")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "print the final status as JSON")
}

func addReplayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "material catalog (.json or .hujson)")
	cmd.Flags().StringVar(&materialRef, "material", "", "catalog material as item or item/variant; first item when empty")
	cmd.Flags().BoolVar(&noDepth, "no-depth", false, "simulate a device without depth sensing")
	cmd.Flags().BoolVar(&noAnchors, "no-anchors", false, "simulate a device without anchors")
}

// replayResult is a finished replay. The session is still running so
// its compositor state can be inspected; call End when done.
type replayResult struct {
	session *session.Session
	out     session.FrameOutput
	last    *simplatform.Record // last record with a camera
	frames  int
	errors  int
}

func replayTrace(cmd *cobra.Command, path string) (*replayResult, error) {
	cfg, err := loadTuning()
	if err != nil {
		return nil, err
	}
	recs, err := simplatform.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := simplatform.New()
	p.Depth = !noDepth
	p.Anchors = !noAnchors
	s := session.New(p, cfg, nil)
	if err := s.Start(cmd.Context()); err != nil {
		return nil, err
	}

	if catalogPath != "" {
		d, err := resolveMaterial(catalogPath, materialRef)
		if err != nil {
			s.End()
			return nil, err
		}
		s.SetMaterial(d)
	}

	res := &replayResult{session: s, frames: len(recs)}
	out, err := simplatform.Replay(cmd.Context(), s, p, recs, func(i int, out session.FrameOutput) {
		res.errors += len(out.Errors)
		if recs[i].Camera != nil {
			res.last = &recs[i]
		}
	})
	if err != nil {
		s.End()
		return nil, err
	}
	res.out = out
	return res, nil
}

func resolveMaterial(path, ref string) (*material.Descriptor, error) {
	c, err := material.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	item, variant, _ := strings.Cut(ref, "/")
	return c.Resolve(item, variant)
}

func runReplay(cmd *cobra.Command, args []string) error {
	res, err := replayTrace(cmd, args[0])
	if err != nil {
		return err
	}
	defer res.session.End()

	w := cmd.OutOrStdout()
	if replayJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.out.Status); err != nil {
			return err
		}
	} else {
		printStatus(w, res)
	}

	if replaySTL != "" {
		if err := writeSurfaceSTL(w, res); err != nil {
			return err
		}
	}
	if replayView != "" {
		if err := renderView(w, res); err != nil {
			return err
		}
	}
	return nil
}

func printStatus(w io.Writer, res *replayResult) {
	st := res.out.Status
	fmt.Fprintln(w, "Replay Summary")
	fmt.Fprintln(w, "==============")
	fmt.Fprintf(w, "Frames: %d (%d rejected actions)\n", res.frames, res.errors)
	fmt.Fprintf(w, "Calibrated: %t (anchored: %t)\n", st.Calibrated, st.Anchored)
	fmt.Fprintf(w, "Mode: %s\n", st.Mode)
	fmt.Fprintf(w, "Contour: %s, %d points\n", st.ContourState, st.Points)
	if st.AreaText != "" {
		fmt.Fprintf(w, "Area: %s\n", st.AreaText)
		fmt.Fprintf(w, "Perimeter: %s\n", st.PerimeterText)
	}
	if st.TapeText != "" {
		fmt.Fprintf(w, "Tape: %s\n", st.TapeText)
	}
	if m := res.session.Material(); m != nil {
		fmt.Fprintf(w, "Material: %s\n", m.Name)
	}
	fmt.Fprintf(w, "Occlusion: %t\n", st.OcclusionActive)
	fmt.Fprintf(w, "Message: %s\n", st.Message)
}

func writeSurfaceSTL(w io.Writer, res *replayResult) error {
	if !res.out.Status.SurfaceReady {
		return export.ErrNoSurface
	}
	m, err := export.SurfaceModel("surface", res.out.Render.Surface)
	if err != nil {
		return err
	}
	if err := stl.WriteFile(replaySTL, m, replayASCII); err != nil {
		return err
	}
	r := analysis.AnalyzeModel(m)
	fmt.Fprintf(w, "Wrote %s: %d triangles, area deviation %.2g\n",
		replaySTL, r.TriangleCount, r.AreaDeviation(res.session.Contour().Area()))
	return nil
}

func renderView(w io.Writer, res *replayResult) error {
	if res.last == nil {
		return fmt.Errorf("trace has no camera frame to render")
	}
	cfg, err := loadTuning()
	if err != nil {
		return err
	}
	view := occlusion.View{Width: 640, Height: 480, Near: cfg.GetCameraNear(), Far: cfg.GetCameraFar()}
	if v := res.last.View; v != nil {
		view.Width, view.Height = v.Width, v.Height
		if v.Near > 0 && v.Far > v.Near {
			view.Near, view.Far = v.Near, v.Far
		}
	}

	cam := viewer.NewCamera(res.last.Camera.Pose(), view.Near, view.Far)
	var occ viewer.Occluder
	if s := res.out.Render.Surface; s != nil && s.MaterialID != "" {
		if pass := res.session.Compositor().Pass(s.MaterialID, view); pass != nil {
			occ = pass
		}
	}
	img, stats := export.View(cam, view.Width, view.Height, res.out, occ)
	if err := export.WritePNG(replayView, img); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s: %d fragments drawn, %d occluded\n", replayView, stats.Drawn, stats.Occluded)
	return nil
}
