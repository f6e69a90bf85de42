// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/luthersystems/eescope/eval"
	"github.com/spf13/cobra"
)

var evalFrame int

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval [flags] expression...",
	Short: "Evaluate expressions in a paused frame",
	Long: `Evaluate each expression in order in a paused frame of the snapshot.

Locals declared by an expression are visible to the expressions after it.
Values are printed to stdout, one per line.  A declaration prints each
declared local.  The first failing expression is rendered to stderr and
stops evaluation.

Examples:
  eescope eval -s app.yaml 'id * 2'
  eescope eval -s app.yaml --frame 1 'args == null'
  eescope eval -s app.yaml 'long total = attempts + 1' 'total * 2'
  eescope eval -s app.yaml '$exception'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, err := openSession(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, text := range args {
			ev, err := session.Evaluate(cmd.Context(), evalFrame, text)
			if err != nil {
				renderRequestError(cmd.ErrOrStderr(), text, err)
				return errReported
			}
			if len(ev.Declared) == 0 {
				fmt.Fprintln(out, describe(ev.Value)) //nolint:errcheck
				continue
			}
			for _, d := range ev.Declared {
				fmt.Fprintf(out, "%s = %s\n", d.Local.Name(), describe(d.Value)) //nolint:errcheck
			}
		}
		return nil
	},
}

func describe(v eval.Value) string {
	if obj := v.Object(); obj != nil {
		return obj.Describe()
	}
	return v.String()
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().IntVarP(&evalFrame, "frame", "f", 0, "id of the frame to evaluate in")
}
