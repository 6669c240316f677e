package occlusion

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gogpu/naga"
)

//go:embed shaders/surface.wgsl
var surfaceShaderWGSL string

// Variant selects the fragment entry point of the surface shader.
type Variant int

const (
	// Plain draws the surface without depth testing against the real world.
	Plain Variant = iota
	// Occluded discards fragments behind real-world depth.
	Occluded
)

func (v Variant) String() string {
	if v == Occluded {
		return "occluded"
	}
	return "plain"
}

// EntryPoint returns the fragment entry point of v.
func (v Variant) EntryPoint() string {
	if v == Occluded {
		return "fs_occluded"
	}
	return "fs_plain"
}

// VariantFor picks the variant for a material. Only materials registered
// with the compositor use the occluded variant.
func (c *Compositor) VariantFor(id string) Variant {
	if _, ok := c.materials[id]; ok && c.enabled {
		return Occluded
	}
	return Plain
}

// SurfaceSource returns the WGSL source of the surface shader.
func SurfaceSource() string {
	return surfaceShaderWGSL
}

// Program is the compiled surface shader module.
type Program struct {
	Source string
	SPIRV  []uint32
	Vertex string
}

// Fragment returns the fragment entry point for v.
func (p *Program) Fragment(v Variant) string {
	return v.EntryPoint()
}

var (
	programOnce sync.Once
	program     *Program
	programErr  error
)

// SurfaceProgram compiles the surface shader once and returns the cached
// module for every later call.
func SurfaceProgram() (*Program, error) {
	programOnce.Do(func() {
		var words []uint32
		words, programErr = compileSPIRV(surfaceShaderWGSL)
		if programErr != nil {
			return
		}
		program = &Program{Source: surfaceShaderWGSL, SPIRV: words, Vertex: "vs_main"}
		logger().Debug("surface shader compiled", "words", len(words))
	})
	return program, programErr
}

// compileSPIRV compiles WGSL source to little-endian SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("failed to compile shader: SPIR-V size %d is not word aligned", len(spirvBytes))
	}

	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}
