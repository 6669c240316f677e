package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// Parse reads an STL file and returns a Model
// It automatically detects whether the file is ASCII or binary format
func Parse(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return Read(file)
}

// Read parses an STL stream in either format.
func Read(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(5)
	if err != nil && len(header) == 0 {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	if bytes.HasPrefix(header, []byte("solid")) {
		return parseASCII(br)
	}
	return parseBinary(br)
}

// parseASCII parses an ASCII STL file
func parseASCII(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := NewModel("")

	var normal geometry.Vector3
	var vertices []geometry.Vector3

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				model.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				v, err := parseVector(fields[2:5])
				if err != nil {
					return nil, fmt.Errorf("bad facet normal: %w", err)
				}
				normal = v
			}

		case "vertex":
			if len(fields) >= 4 {
				v, err := parseVector(fields[1:4])
				if err != nil {
					return nil, fmt.Errorf("bad vertex: %w", err)
				}
				vertices = append(vertices, v)
			}

		case "endfacet":
			if len(vertices) == 3 {
				model.AddTriangle(Triangle{Normal: normal, V1: vertices[0], V2: vertices[1], V3: vertices[2]})
			}
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}

	return model, nil
}

func parseVector(fields []string) (geometry.Vector3, error) {
	var xyz [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geometry.Vector3{}, err
		}
		xyz[i] = v
	}
	return geometry.NewVector3(xyz[0], xyz[1], xyz[2]), nil
}

// facet is the 50-byte binary record.
type facet struct {
	Normal, V1, V2, V3 [3]float32
	Attributes         uint16
}

// parseBinary parses a binary STL file
func parseBinary(reader io.Reader) (*Model, error) {
	model := NewModel("")

	header := make([]byte, 80)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	model.Name = string(bytes.TrimRight(header, "\x00 "))

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return nil, fmt.Errorf("failed to read triangle count: %w", err)
	}

	for i := uint32(0); i < triangleCount; i++ {
		var f facet
		if err := binary.Read(reader, binary.LittleEndian, &f); err != nil {
			return nil, fmt.Errorf("failed to read triangle %d: %w", i, err)
		}
		model.AddTriangle(Triangle{
			Normal: vec32(f.Normal),
			V1:     vec32(f.V1),
			V2:     vec32(f.V2),
			V3:     vec32(f.V3),
		})
	}

	return model, nil
}

func vec32(v [3]float32) geometry.Vector3 {
	return geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
}
