package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"regvm/pkg/compiler"
)

var (
	compileOutput  string
	compileShowAsm bool
)

var compileCmd = &cobra.Command{
	Use:   "compile sourceFile",
	Short: "Compile a declare/print source file to bytecode",
	Long: `Compile translates a source file in the toolchain's small
declare/print language ("int x = 1 + 2;" / "Print(x);") into assembly
and then into bytecode. Use --show-asm to print the intermediate
assembly.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		assembly, program, _, err := compiler.Compile(string(source))
		if err != nil {
			if assembly != "" {
				fmt.Fprintln(os.Stderr, assembly)
			}
			return fmt.Errorf("compilation failed: %w", err)
		}
		if compileShowAsm {
			fmt.Println(assembly)
		}

		output := compileOutput
		if output == "" {
			output = defaultOutputPath(args[0])
		}
		if err := writeBinary(output, program); err != nil {
			return err
		}

		fmt.Printf("compiled %d bytes -> %s\n", len(program), output)
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output binary path (default: input with .bin extension)")
	compileCmd.Flags().BoolVar(&compileShowAsm, "show-asm", false, "print the generated assembly")
	rootCmd.AddCommand(compileCmd)
}
