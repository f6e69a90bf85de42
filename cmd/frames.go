// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "List the paused frames of a snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, err := openSession(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, frame := range session.Program().Frames() {
			loc := "unknown"
			if frame.Source != nil {
				loc = frame.Source.String()
			}
			fmt.Fprintf(w, "#%d\t%s\t%s\n", frame.ID, frame.Name(), loc) //nolint:errcheck
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(framesCmd)
}
