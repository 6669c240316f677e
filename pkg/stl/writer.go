package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// WriteBinary encodes m as binary STL.
func WriteBinary(w io.Writer, m *Model) error {
	header := make([]byte, 80)
	copy(header, m.Name)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.Triangles))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}
	for i, t := range m.Triangles {
		f := facet{Normal: f32(t.Normal), V1: f32(t.V1), V2: f32(t.V2), V3: f32(t.V3)}
		if err := binary.Write(w, binary.LittleEndian, &f); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}
	return nil
}

// WriteASCII encodes m as ASCII STL.
func WriteASCII(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", m.Name)
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", t.Normal.X, t.Normal.Y, t.Normal.Z)
		fmt.Fprintln(bw, "    outer loop")
		for _, v := range [3]geometry.Vector3{t.V1, t.V2, t.V3} {
			fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintln(bw, "    endloop")
		fmt.Fprintln(bw, "  endfacet")
	}
	fmt.Fprintf(bw, "endsolid %s\n", m.Name)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write ASCII STL: %w", err)
	}
	return nil
}

// WriteFile writes m to path, as ASCII when ascii is set.
func WriteFile(path string, m *Model, ascii bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	write := WriteBinary
	if ascii {
		write = WriteASCII
	}
	if err := write(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func f32(v geometry.Vector3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
