package cmd

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/spf13/cobra"
	"golang.org/x/image/font/basicfont"

	"regvm/pkg/asm"
	"regvm/pkg/compiler"
	"regvm/pkg/vm"
)

const (
	debuggerWidth  = 640
	debuggerHeight = 480

	// Instructions stepped per frame in free-run mode. Small programs
	// finish within a frame; the cap keeps a runaway loop responsive.
	stepsPerFrame = 1024
)

type debugger struct {
	machine   *vm.VM
	assembler *asm.Assembler
	source    []string

	running bool
	lastErr error
}

func (d *debugger) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		d.running = false
		d.step()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		d.running = !d.running
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		d.machine.Reset()
		d.running = false
		d.lastErr = nil
	}

	if d.running {
		for i := 0; i < stepsPerFrame; i++ {
			if !d.step() {
				d.running = false
				break
			}
		}
	}
	return nil
}

func (d *debugger) step() bool {
	cont, err := d.machine.RunOnce()
	if err != nil {
		d.lastErr = err
		return false
	}
	return cont
}

func (d *debugger) Draw(screen *ebiten.Image) {
	face := basicfont.Face7x13
	white := color.White

	text.Draw(screen, "space: step   r: run/pause   backspace: reset", face, 10, 20, white)

	status := "paused"
	switch {
	case d.lastErr != nil:
		status = fmt.Sprintf("fault: %v", d.lastErr)
	case d.machine.Halted():
		status = "halted"
	case d.running:
		status = "running"
	}
	text.Draw(screen, fmt.Sprintf("pc %-6d remainder %-11d %s", d.machine.PC(), d.machine.Remainder(), status), face, 10, 40, white)

	if line := d.currentSourceLine(); line != "" {
		text.Draw(screen, "next: "+line, face, 10, 60, white)
	}

	registers := d.machine.Registers()
	for i := 0; i < len(registers); i += 4 {
		var row strings.Builder
		for j := i; j < i+4; j++ {
			fmt.Fprintf(&row, "r%-2d %-12d", j, registers[j])
		}
		text.Draw(screen, row.String(), face, 10, 90+(i/4)*16, white)
	}

	// Bytecode window around pc, via the stdlib-style debug overlay.
	d.drawProgramWindow(screen, 10, 230)
}

func (d *debugger) drawProgramWindow(screen *ebiten.Image, x, y int) {
	program := d.machine.Program()
	pc := d.machine.PC()
	start := (pc / 16) * 16
	if start > 0 {
		start -= 16
	}
	for row := 0; row < 4; row++ {
		offset := start + row*16
		if offset >= len(program) {
			break
		}
		end := offset + 16
		if end > len(program) {
			end = len(program)
		}
		var line strings.Builder
		fmt.Fprintf(&line, "%04x:", offset)
		for i, b := range program[offset:end] {
			marker := " "
			if offset+i == pc {
				marker = ">"
			}
			fmt.Fprintf(&line, "%s%02x", marker, b)
		}
		ebitenutil.DebugPrintAt(screen, line.String(), x, y+row*16)
	}
}

func (d *debugger) currentSourceLine() string {
	lineNo, ok := d.assembler.SourceMap()[d.machine.PC()]
	if !ok {
		return ""
	}
	idx := lineNo - 1
	if idx < 0 || idx >= len(d.source) {
		return ""
	}
	return strings.TrimSpace(d.source[idx])
}

func (d *debugger) Layout(outsideWidth, outsideHeight int) (int, int) {
	return debuggerWidth, debuggerHeight
}

var desktopCmd = &cobra.Command{
	Use:   "desktop sourceFile",
	Short: "Windowed single-step debugger",
	Long: `Desktop opens a window showing the register file, the program
counter, the remainder, the upcoming source line, and a bytecode hex
window around the program counter. Space steps one instruction, R
toggles free running, and Backspace rewinds the program.

Accepts .asm assembly sources; .sl sources are compiled to assembly
first so the debugger can still show source lines.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		assembly := string(data)
		if filepath.Ext(args[0]) == ".sl" {
			assembly, _, _, err = compiler.Compile(string(data))
			if err != nil {
				return fmt.Errorf("compilation failed: %w", err)
			}
		}

		assembler := asm.NewAssembler()
		program, err := assembler.Compile(assembly)
		if err != nil {
			return fmt.Errorf("assembly failed: %w", err)
		}

		machine := vm.New()
		machine.AddProgram(program)

		ebiten.SetWindowSize(debuggerWidth, debuggerHeight)
		ebiten.SetWindowTitle("regvm debugger")
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

		return ebiten.RunGame(&debugger{
			machine:   machine,
			assembler: assembler,
			source:    strings.Split(assembly, "\n"),
		})
	},
}

func init() {
	rootCmd.AddCommand(desktopCmd)
}
