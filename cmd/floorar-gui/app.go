package main

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/miropolcevpro/paver-ar-web/internal/config"
	"github.com/miropolcevpro/paver-ar-web/internal/logging"
	"github.com/miropolcevpro/paver-ar-web/internal/material"
	"github.com/miropolcevpro/paver-ar-web/internal/preview"
	"github.com/miropolcevpro/paver-ar-web/internal/session"
	"github.com/miropolcevpro/paver-ar-web/internal/simplatform"
	"github.com/miropolcevpro/paver-ar-web/pkg/watcher"
)

// App is the replay window.
type App struct {
	window      fyne.Window
	preview     *preview.Preview
	info        *statusInfo
	materials   *widget.Select
	configPath  string
	catalogPath string
	speed       float64

	mu        sync.Mutex
	tracePath string
	catalog   *material.Catalog
	slot      material.Slot
	cancel    context.CancelFunc
	watcher   *watcher.FileWatcher
}

type statusInfo struct {
	calibrated *widget.Label
	contour    *widget.Label
	area       *widget.Label
	perimeter  *widget.Label
	tape       *widget.Label
	occlusion  *widget.Label
	message    *widget.Label
	frame      *widget.Label
}

func (a *App) setupMainUI() {
	a.preview = preview.New()
	a.info = &statusInfo{
		calibrated: widget.NewLabel("Calibrated: -"),
		contour:    widget.NewLabel("Contour: -"),
		area:       widget.NewLabel("Area: -"),
		perimeter:  widget.NewLabel("Perimeter: -"),
		tape:       widget.NewLabel("Tape: -"),
		occlusion:  widget.NewLabel("Occlusion: -"),
		message:    widget.NewLabel(""),
		frame:      widget.NewLabel("Frame: -"),
	}
	a.info.area.TextStyle = fyne.TextStyle{Bold: true}
	a.info.message.Wrapping = fyne.TextWrapWord

	a.materials = widget.NewSelect(nil, a.selectMaterial)
	a.materials.PlaceHolder = "No catalog"
	a.reloadCatalog()

	openButton := widget.NewButton("Open Trace", a.showFileDialog)
	restartButton := widget.NewButton("Restart", func() {
		a.mu.Lock()
		path := a.tracePath
		a.mu.Unlock()
		if path != "" {
			a.loadTrace(path)
		}
	})

	instructions := widget.NewLabel(
		"Drag to pan, scroll to zoom.\n" +
			"Tuning and catalog files reload when saved.",
	)
	instructions.Wrapping = fyne.TextWrapWord

	infoPanel := container.NewVBox(
		widget.NewLabel("Session:"),
		widget.NewSeparator(),
		a.info.frame,
		a.info.calibrated,
		a.info.contour,
		a.info.area,
		a.info.perimeter,
		a.info.tape,
		a.info.occlusion,
		widget.NewSeparator(),
		a.info.message,
		widget.NewSeparator(),
		widget.NewLabel("Material:"),
		a.materials,
		widget.NewSeparator(),
		instructions,
		openButton,
		restartButton,
	)
	infoScroll := container.NewVScroll(infoPanel)
	infoScroll.SetMinSize(fyne.NewSize(300, 0))

	a.window.SetContent(container.NewBorder(nil, nil, nil, infoScroll, a.preview))
}

func (a *App) showFileDialog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()
		a.loadTrace(reader.URI().Path())
	}, a.window)
}

// loadTrace stops any running playback and replays path.
func (a *App) loadTrace(path string) {
	recs, err := simplatform.ReadFile(path)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to load trace: %w", err), a.window)
		return
	}
	cfg, err := a.loadTuning()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.cancel = cancel
	a.tracePath = path
	a.mu.Unlock()

	a.window.SetTitle("floorar - " + path)
	go a.play(ctx, cfg, recs)
}

func (a *App) loadTuning() (*config.Tuning, error) {
	if a.configPath == "" {
		return config.Defaults(), nil
	}
	return config.Load(a.configPath)
}

// play steps a fresh session through recs at the recorded pace.
func (a *App) play(ctx context.Context, cfg *config.Tuning, recs []simplatform.Record) {
	log := logging.For("gui")
	p := simplatform.New()
	s := session.New(p, cfg, &a.slot)
	if err := s.Start(ctx); err != nil {
		fyne.Do(func() { dialog.ShowError(err, a.window) })
		return
	}
	defer s.End()

	var prev int64
	for i, rec := range recs {
		if d := time.Duration(float64(rec.TimeMS-prev)*float64(time.Millisecond) / max(a.speed, 0.01)); d > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(d):
			}
		}
		prev = rec.TimeMS

		out, err := s.Step(ctx, p.Input(rec, simplatform.Epoch))
		if err != nil {
			log.Error("replay stopped", "frame", i, "error", err)
			s.Fail(err)
			out = session.FrameOutput{Status: s.Status()}
		}
		frame := i + 1
		fyne.Do(func() {
			a.preview.Update(out)
			a.info.update(frame, len(recs), out.Status)
		})
		if err != nil {
			return
		}
	}
}

func (si *statusInfo) update(frame, total int, st session.Status) {
	si.frame.SetText(fmt.Sprintf("Frame: %d / %d", frame, total))
	si.calibrated.SetText(fmt.Sprintf("Calibrated: %t (anchored: %t)", st.Calibrated, st.Anchored))
	si.contour.SetText(fmt.Sprintf("Contour: %s, %d points", st.ContourState, st.Points))
	si.area.SetText("Area: " + orDash(st.AreaText))
	si.perimeter.SetText("Perimeter: " + orDash(st.PerimeterText))
	si.tape.SetText("Tape: " + orDash(st.TapeText))
	si.occlusion.SetText(fmt.Sprintf("Occlusion: %t", st.OcclusionActive))
	si.message.SetText(st.Message)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// reloadCatalog reads the catalog file and refreshes the material list.
func (a *App) reloadCatalog() {
	if a.catalogPath == "" {
		return
	}
	c, err := material.LoadCatalog(a.catalogPath)
	if err != nil {
		logging.For("gui").Warn("catalog not loaded", "path", a.catalogPath, "error", err)
		return
	}
	var options []string
	for _, item := range c.Items {
		for _, v := range item.Variants {
			options = append(options, item.ID+"/"+v.ID)
		}
	}

	a.mu.Lock()
	a.catalog = c
	a.mu.Unlock()

	selected := a.materials.Selected
	a.materials.SetOptions(options)
	a.materials.PlaceHolder = "Select a material"
	if selected != "" {
		a.selectMaterial(selected)
	}
	a.materials.Refresh()
}

// selectMaterial resolves ref and hands it to the running session through
// the material slot.
func (a *App) selectMaterial(ref string) {
	a.mu.Lock()
	c := a.catalog
	a.mu.Unlock()
	if c == nil {
		return
	}
	item, variant, _ := strings.Cut(ref, "/")
	d, err := c.Resolve(item, variant)
	if err != nil {
		logging.For("gui").Warn("material not resolved", "material", ref, "error", err)
		return
	}
	a.slot.Store(d)
	if rgb, err := d.TintRGB(); err == nil {
		a.preview.SetSurfaceColor(color.RGBA{uint8(rgb >> 16), uint8(rgb >> 8), uint8(rgb), 255})
	}
}

// watchFiles reloads the catalog and restarts playback with new tuning
// when the files change on disk.
func (a *App) watchFiles() error {
	if a.configPath == "" && a.catalogPath == "" {
		return nil
	}
	fw, err := watcher.NewFileWatcher(200 * time.Millisecond)
	if err != nil {
		return err
	}
	if a.catalogPath != "" {
		if err := fw.Watch([]string{a.catalogPath}, func(string) {
			fyne.Do(a.reloadCatalog)
		}); err != nil {
			fw.Close()
			return err
		}
	}
	if a.configPath != "" {
		if err := fw.Watch([]string{a.configPath}, func(string) {
			fyne.Do(func() {
				a.mu.Lock()
				path := a.tracePath
				a.mu.Unlock()
				if path != "" {
					a.loadTrace(path)
				}
			})
		}); err != nil {
			fw.Close()
			return err
		}
	}
	fw.Start(context.Background())
	a.watcher = fw
	return nil
}

func (a *App) close() {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()
	if a.watcher != nil {
		a.watcher.Close()
	}
}
