package simplatform

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/miropolcevpro/paver-ar-web/internal/occlusion"
	"github.com/miropolcevpro/paver-ar-web/internal/reticle"
	"github.com/miropolcevpro/paver-ar-web/internal/session"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

const maxRecordBytes = 16 << 20

// PoseRecord is a pose on the wire. Orientation is x, y, z, w.
type PoseRecord struct {
	Position    [3]float64 `json:"position"`
	Orientation [4]float64 `json:"orientation"`
}

// PoseOf converts a pose to its wire form.
func PoseOf(p geometry.Pose) *PoseRecord {
	q := p.Orientation
	return &PoseRecord{
		Position:    [3]float64{p.Position.X, p.Position.Y, p.Position.Z},
		Orientation: [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real},
	}
}

// Pose converts back. An all-zero orientation becomes identity.
func (r PoseRecord) Pose() geometry.Pose {
	q := geometry.Rotation{Imag: r.Orientation[0], Jmag: r.Orientation[1], Kmag: r.Orientation[2], Real: r.Orientation[3]}
	return geometry.NewPose(
		geometry.NewVector3(r.Position[0], r.Position[1], r.Position[2]),
		geometry.Normalized(q),
	)
}

// HitRecord is one raw hit-test result.
type HitRecord struct {
	PoseRecord
	Anchorable bool `json:"anchorable,omitempty"`
}

// DepthRecord is a raw depth frame.
type DepthRecord struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Data        []uint16 `json:"data"`
	RawToMeters float64  `json:"raw_to_meters,omitempty"`
}

// ViewRecord is the render target of a frame.
type ViewRecord struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Near   float64 `json:"near,omitempty"`
	Far    float64 `json:"far,omitempty"`
}

// Record is one frame of a trace.
type Record struct {
	TimeMS  int64            `json:"t_ms,omitempty"`
	Camera  *PoseRecord      `json:"camera,omitempty"`
	Hits    []HitRecord      `json:"hits,omitempty"`
	Depth   *DepthRecord     `json:"depth,omitempty"`
	Anchor  *PoseRecord      `json:"anchor,omitempty"`
	View    *ViewRecord      `json:"view,omitempty"`
	Actions []session.Action `json:"actions,omitempty"`
}

// Reader reads a trace one record per line. Blank lines are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	return &Reader{scanner: s}
}

// Next returns the next record, or io.EOF at the end of the trace.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		b := r.scanner.Bytes()
		if len(bytes.TrimSpace(b)) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return Record{}, fmt.Errorf("trace line %d: %w", r.line, err)
		}
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("failed to read trace: %w", err)
	}
	return Record{}, io.EOF
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([]Record, error) {
	var recs []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}

// ReadFile loads a whole trace file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()
	return NewReader(f).ReadAll()
}

// Writer writes records as JSON lines.
type Writer struct {
	enc *json.Encoder
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write trace record: %w", err)
	}
	return nil
}

// WriteFile writes recs to path, replacing it.
func WriteFile(path string, recs []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace: %w", err)
	}
	w := NewWriter(f)
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// Input converts rec into a session frame. Anchor moves in rec are applied
// to the platform first. epoch is the time of TimeMS 0.
func (p *Platform) Input(rec Record, epoch time.Time) session.FrameInput {
	in := session.FrameInput{
		Time:    epoch.Add(time.Duration(rec.TimeMS) * time.Millisecond),
		Actions: rec.Actions,
	}
	if rec.Camera != nil {
		cam := rec.Camera.Pose()
		in.Camera = &cam
	}
	for _, h := range rec.Hits {
		pose := h.Pose()
		hit := reticle.RawHit{Pose: pose}
		if h.Anchorable {
			hit.Anchors = p.AnchorsAt(pose)
		}
		in.Hits = append(in.Hits, hit)
	}
	if rec.Depth != nil && p.Depth {
		in.Depth = &occlusion.DepthFrame{
			Width:       rec.Depth.Width,
			Height:      rec.Depth.Height,
			Data:        rec.Depth.Data,
			RawToMeters: rec.Depth.RawToMeters,
		}
	}
	if rec.Anchor != nil {
		p.MoveAnchors(rec.Anchor.Pose())
	}
	in.AnchorPoses = p.AnchorPoses()
	if rec.View != nil {
		in.View = occlusion.View{Width: rec.View.Width, Height: rec.View.Height, Near: rec.View.Near, Far: rec.View.Far}
	}
	return in
}
