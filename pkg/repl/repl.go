// Package repl implements an interactive monitor over the assembler and
// the VM. Lines starting with '.' are commands; anything else is treated
// as assembly source, appended to the session's program, and reassembled.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"regvm/pkg/asm"
	"regvm/pkg/vm"
)

const prompt = ">>> "

type REPL struct {
	in  io.Reader
	out io.Writer

	machine *vm.VM
	source  []string
	// assembler of the most recent successful rebuild; holds the source
	// map used by .step reporting.
	assembler *asm.Assembler

	// interactive is true when stdin is a terminal; the prompt is
	// suppressed for piped input.
	interactive bool
}

func New(in io.Reader, out io.Writer) *REPL {
	r := &REPL{
		in:      in,
		out:     out,
		machine: vm.New(),
	}
	if f, ok := in.(*os.File); ok {
		r.interactive = term.IsTerminal(int(f.Fd()))
	}
	return r
}

// Run reads and executes lines until .quit or EOF.
func (r *REPL) Run() error {
	scanner := bufio.NewScanner(r.in)
	for {
		if r.interactive {
			fmt.Fprint(r.out, prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ".") {
			if quit := r.command(line); quit {
				return nil
			}
			continue
		}
		r.addInstruction(line)
	}
}

func (r *REPL) command(line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".quit":
		return true

	case ".help":
		fmt.Fprintln(r.out, `commands:
  .registers        dump the register file, pc, and remainder
  .program          hex dump of the assembled bytecode
  .step             execute one instruction
  .run              run until HLT, exhaustion, or fault
  .reset            rewind the current program to pc 0
  .clear            discard the program and all state
  .load <file>      replace the program with an assembly file
  .save <file>      snapshot the machine state to a file
  .restore <file>   restore a snapshot
  .quit             leave the monitor
anything else is assembled and appended to the program`)

	case ".registers":
		r.dumpRegisters()

	case ".program":
		r.dumpProgram()

	case ".step":
		cont, err := r.machine.RunOnce()
		switch {
		case err != nil:
			fmt.Fprintf(r.out, "fault: %v\n", err)
		case !cont:
			fmt.Fprintf(r.out, "stopped at pc %d\n", r.machine.PC())
		default:
			fmt.Fprintf(r.out, "pc %d%s\n", r.machine.PC(), r.currentSourceLine())
		}

	case ".run":
		if err := r.machine.Run(); err != nil {
			fmt.Fprintf(r.out, "fault: %v\n", err)
		} else {
			fmt.Fprintf(r.out, "stopped at pc %d\n", r.machine.PC())
		}

	case ".reset":
		r.machine.Reset()
		fmt.Fprintln(r.out, "machine reset")

	case ".clear":
		r.machine = vm.New()
		r.source = nil
		r.assembler = nil
		fmt.Fprintln(r.out, "program cleared")

	case ".load":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "usage: .load <file>")
			break
		}
		data, err := os.ReadFile(fields[1])
		if err != nil {
			fmt.Fprintf(r.out, "load: %v\n", err)
			break
		}
		previous := r.source
		r.source = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if !r.rebuild() {
			r.source = previous
		}

	case ".save":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "usage: .save <file>")
			break
		}
		f, err := os.Create(fields[1])
		if err != nil {
			fmt.Fprintf(r.out, "save: %v\n", err)
			break
		}
		err = r.machine.SaveState(f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			fmt.Fprintf(r.out, "save: %v\n", err)
		} else {
			fmt.Fprintf(r.out, "saved to %s\n", fields[1])
		}

	case ".restore":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "usage: .restore <file>")
			break
		}
		f, err := os.Open(fields[1])
		if err != nil {
			fmt.Fprintf(r.out, "restore: %v\n", err)
			break
		}
		err = r.machine.RestoreState(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(r.out, "restore: %v\n", err)
		} else {
			fmt.Fprintf(r.out, "restored, pc %d\n", r.machine.PC())
		}

	default:
		fmt.Fprintf(r.out, "unknown command %s (try .help)\n", fields[0])
	}
	return false
}

// addInstruction appends an assembly line and rebuilds the program. The
// machine is re-armed from pc 0 on every successful rebuild.
func (r *REPL) addInstruction(line string) {
	r.source = append(r.source, line)
	if !r.rebuild() {
		r.source = r.source[:len(r.source)-1]
	}
}

// rebuild assembles the accumulated source with a fresh Assembler (the
// symbol table persists per instance, so reusing one would trip the
// duplicate-label check on every rebuild) and loads the result.
func (r *REPL) rebuild() bool {
	a := asm.NewAssembler()
	program, err := a.Compile(strings.Join(r.source, "\n"))
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return false
	}
	r.assembler = a
	r.machine.AddProgram(program)
	return true
}

func (r *REPL) currentSourceLine() string {
	if r.assembler == nil {
		return ""
	}
	lineNo, ok := r.assembler.SourceMap()[r.machine.PC()]
	if !ok {
		return ""
	}
	idx := lineNo - 1
	if idx < 0 || idx >= len(r.source) {
		return ""
	}
	return fmt.Sprintf("  next: %s", strings.TrimSpace(r.source[idx]))
}

func (r *REPL) dumpRegisters() {
	registers := r.machine.Registers()
	for i := 0; i < len(registers); i += 8 {
		for j := i; j < i+8; j++ {
			fmt.Fprintf(r.out, "r%-2d %-11d", j, registers[j])
		}
		fmt.Fprintln(r.out)
	}
	fmt.Fprintf(r.out, "pc %d  remainder %d\n", r.machine.PC(), r.machine.Remainder())
}

func (r *REPL) dumpProgram() {
	program := r.machine.Program()
	if len(program) == 0 {
		fmt.Fprintln(r.out, "no program loaded")
		return
	}
	for i := 0; i < len(program); i += 16 {
		end := i + 16
		if end > len(program) {
			end = len(program)
		}
		fmt.Fprintf(r.out, "%04x:", i)
		for _, b := range program[i:end] {
			fmt.Fprintf(r.out, " %02x", b)
		}
		fmt.Fprintln(r.out)
	}
}
