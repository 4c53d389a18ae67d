package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"regvm/pkg/asm"
	"regvm/pkg/compiler"
	"regvm/pkg/vm"
)

var runCmd = &cobra.Command{
	Use:   "run file",
	Short: "Execute a program on the virtual machine",
	Long: `Run executes a program and dumps the machine state afterwards.
The file is dispatched on extension: .sl sources are compiled, .asm
sources are assembled, and anything else is loaded as raw bytecode.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		program, printRegs, err := loadProgram(args[0])
		if err != nil {
			return err
		}

		machine := vm.New()
		machine.AddProgram(program)
		runErr := machine.Run()

		for _, reg := range printRegs {
			value, err := machine.GetRegister(reg)
			if err != nil {
				return err
			}
			fmt.Println(value)
		}
		dumpState(machine)

		if runErr != nil {
			return fmt.Errorf("run failed: %w", runErr)
		}
		return nil
	},
}

// loadProgram turns a source or binary file into bytecode. printRegs is
// non-nil only for compiled sources.
func loadProgram(path string) ([]byte, []int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	switch filepath.Ext(path) {
	case ".sl":
		_, program, printRegs, err := compiler.Compile(string(data))
		if err != nil {
			return nil, nil, fmt.Errorf("compilation failed: %w", err)
		}
		return program, printRegs, nil
	case ".asm":
		program, err := asm.NewAssembler().Compile(string(data))
		if err != nil {
			return nil, nil, fmt.Errorf("assembly failed: %w", err)
		}
		return program, nil, nil
	default:
		return data, nil, nil
	}
}

func dumpState(machine *vm.VM) {
	registers := machine.Registers()
	for i := 0; i < len(registers); i += 8 {
		for j := i; j < i+8; j++ {
			fmt.Printf("r%-2d %-11d", j, registers[j])
		}
		fmt.Println()
	}
	fmt.Printf("pc %d  remainder %d  halted %t\n", machine.PC(), machine.Remainder(), machine.Halted())
}

func init() {
	rootCmd.AddCommand(runCmd)
}
