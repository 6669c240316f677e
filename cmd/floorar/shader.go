package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/miropolcevpro/paver-ar-web/internal/occlusion"
)

var (
	shaderOutput string
	shaderWGSL   bool
)

var shaderCmd = &cobra.Command{
	Use:   "shader",
	Short: "Compile the surface shader to SPIR-V",
	Long: `Compile the surface WGSL module, which holds the plain and the
depth-occluded fragment variants, and print its entry points. With -o the
SPIR-V binary is written to a file.`,
	Args: cobra.NoArgs,
	RunE: runShader,
}

func init() {
	rootCmd.AddCommand(shaderCmd)
	shaderCmd.Flags().StringVarP(&shaderOutput, "output", "o", "", "write SPIR-V to this file")
	shaderCmd.Flags().BoolVar(&shaderWGSL, "wgsl", false, "print the WGSL source and exit")
}

func runShader(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if shaderWGSL {
		_, err := fmt.Fprint(w, occlusion.SurfaceSource())
		return err
	}

	prog, err := occlusion.SurfaceProgram()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "SPIR-V: %d words\n", len(prog.SPIRV))
	fmt.Fprintf(w, "Vertex: %s\n", prog.Vertex)
	for _, v := range []occlusion.Variant{occlusion.Plain, occlusion.Occluded} {
		fmt.Fprintf(w, "Fragment (%s): %s\n", v, prog.Fragment(v))
	}

	if shaderOutput == "" {
		return nil
	}
	buf := make([]byte, 4*len(prog.SPIRV))
	for i, word := range prog.SPIRV {
		binary.LittleEndian.PutUint32(buf[4*i:], word)
	}
	if err := os.WriteFile(shaderOutput, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write SPIR-V: %w", err)
	}
	fmt.Fprintf(w, "Wrote %s\n", shaderOutput)
	return nil
}
