package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"regvm/pkg/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive assembly monitor",
	Long: `Repl starts a line-oriented monitor. Assembly lines are appended
to the session's program and reassembled as they are entered; commands
start with '.' (see .help). A prompt is shown only when standard input
is a terminal, so the monitor can also be driven from a script.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return repl.New(os.Stdin, os.Stdout).Run()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
