// Package cmd wires the command-line front ends: the assembler, the
// source-language compiler, the bytecode runner, the interactive monitor,
// and the desktop debugger.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "regvm",
	Short: "Assembler, compiler, and virtual machine for a 32-register bytecode ISA",
	Long: `Regvm is a small toolchain around a register-based virtual machine.
It assembles textual assembly to fixed-width bytecode, compiles a tiny
declare/print language down to that assembly, and executes the resulting
binaries either in batch, in an interactive monitor, or in a windowed
debugger.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// defaultOutputPath swaps the input's extension for .bin.
func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".bin"
	}
	return strings.TrimSuffix(inPath, ext) + ".bin"
}

func writeBinary(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
