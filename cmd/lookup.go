// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/luthersystems/eescope/binder"
	"github.com/spf13/cobra"
)

var (
	lookupFrame            int
	lookupArity            int
	lookupTypes            bool
	lookupLabels           bool
	lookupNamespaceAliases bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [flags] name",
	Short: "Resolve a name as the binder would",
	Long: `Resolve a name in a paused frame and print the lookup result.

The result names its kind (viable, not-a-value, wrong-arity or empty) and
its candidate symbols.  Aliases and object addresses resolve to locals.

Exit codes:
  0  The name resolved to a viable symbol
  1  The name did not resolve or the lookup failed

Examples:
  eescope lookup -s app.yaml last
  eescope lookup -s app.yaml '$ReturnValue'
  eescope lookup -s app.yaml --types Widget
  eescope lookup -s app.yaml --types --arity 1 List
  eescope lookup -s app.yaml --labels retry`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, err := openSession(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		req := binder.LookupRequest{Name: args[0], Arity: lookupArity}
		if lookupTypes {
			req.Options |= binder.NamespacesOrTypesOnly
		}
		if lookupLabels {
			req.Options |= binder.LabelsOnly
		}
		if lookupNamespaceAliases {
			req.Options |= binder.NamespaceAliasesOnly
		}
		res, err := session.Lookup(cmd.Context(), lookupFrame, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res) //nolint:errcheck
		if reason := res.Reason(); reason != "" {
			fmt.Fprintln(cmd.OutOrStdout(), "  "+reason) //nolint:errcheck
		}
		if !res.IsViable() {
			return errReported
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().IntVarP(&lookupFrame, "frame", "f", 0, "id of the frame to resolve in")
	lookupCmd.Flags().IntVar(&lookupArity, "arity", 0, "number of type arguments")
	lookupCmd.Flags().BoolVar(&lookupTypes, "types", false, "resolve namespaces and types only")
	lookupCmd.Flags().BoolVar(&lookupLabels, "labels", false, "resolve labels only")
	lookupCmd.Flags().BoolVar(&lookupNamespaceAliases, "namespace-aliases", false, "resolve namespace aliases only")
}
