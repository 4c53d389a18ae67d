package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"regvm/pkg/asm"
)

var asmOutput string

var asmCmd = &cobra.Command{
	Use:   "asm sourceFile",
	Short: "Assemble a textual assembly file to bytecode",
	Long: `Asm translates an assembly source file into the fixed-width
bytecode the virtual machine executes. Instructions are one mnemonic
per line; labels end with ':' and may be referenced before they are
defined; ';' starts a comment. The output is zero padded to the
minimum program size.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		program, err := asm.NewAssembler().Compile(string(source))
		if err != nil {
			return fmt.Errorf("assembly failed: %w", err)
		}

		output := asmOutput
		if output == "" {
			output = defaultOutputPath(args[0])
		}
		if err := writeBinary(output, program); err != nil {
			return err
		}

		fmt.Printf("assembled %d bytes -> %s\n", len(program), output)
		return nil
	},
}

func init() {
	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "", "output binary path (default: input with .bin extension)")
	rootCmd.AddCommand(asmCmd)
}
