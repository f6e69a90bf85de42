// Copyright © 2018 The ELPS authors

package cmd

import (
	"github.com/luthersystems/eescope/repl"
	"github.com/spf13/cobra"
)

var (
	replFrame      int
	replSourceRoot string
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive prompt in a paused frame",
	Long: `Start an interactive prompt for evaluating expressions against the
snapshot.  Line editing and command history are supported via readline.
Use Ctrl-D or the quit command to exit.  Type help for the commands.

Example session:
  (dbg) id + 1
  8
  (dbg) int n = id * 2
  n = 14
  (dbg) n + attempts
  16
  (dbg) oid 0x1000
  $1 = 0x1000
  (dbg) $1 == last
  True
  (dbg) bt
  * #0  App.Program.Find(int, System.Collections.Generic.List<App.Widget>)  at Program.cs:41
    #1  App.Program.Main(string[])  at Program.cs:12`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, err := openSession(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return repl.Run(cmd.Context(), session,
			repl.WithFrame(replFrame),
			repl.WithSourceRoot(replSourceRoot),
			repl.WithColor(colorMode()),
		)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().IntVarP(&replFrame, "frame", "f", 0, "id of the frame to start in")
	replCmd.Flags().StringVar(&replSourceRoot, "source-root", "",
		"directory relative source paths are resolved against (default: working directory)")
}
