// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/luthersystems/eescope/debugger/dapserver"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var dapStdio bool

var dapCmd = &cobra.Command{
	Use:   "dap",
	Short: "Serve a snapshot to editors over DAP",
	Long: `Start a DAP (Debug Adapter Protocol) server for a snapshot.

Editors (VS Code, Neovim, Helix, etc.) attach to the paused program and
inspect its frames, locals and aliases.  Watch, hover and debug console
expressions are evaluated by eescope.

Transport modes:
  --port N     Listen for a DAP client on TCP port N (default: 4711)
  --stdio      Use stdin/stdout for DAP communication (for editors that
               launch the debug adapter as a child process)

The port may also be set with dap.port in the config file or with
EESCOPE_DAP_PORT.

Examples:
  eescope dap -s app.yaml                  Serve on localhost:4711
  eescope dap -s app.yaml --port 9229      Serve on localhost:9229
  eescope dap -s app.yaml --stdio          Serve on stdio`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, log, err := openSession(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		srv := dapserver.New(session, log)
		if dapStdio {
			log.Info("DAP server: using stdio transport")
			return srv.ServeStdio(cmd.InOrStdin(), cmd.OutOrStdout())
		}
		addr := fmt.Sprintf("%s:%d", viper.GetString("dap.host"), viper.GetInt("dap.port"))
		return srv.ServeTCP(addr)
	},
}

func init() {
	rootCmd.AddCommand(dapCmd)

	dapCmd.Flags().Int("port", 4711, "TCP port for DAP server")
	dapCmd.Flags().String("host", "localhost", "interface the DAP server listens on")
	dapCmd.Flags().BoolVar(&dapStdio, "stdio", false, "Use stdin/stdout for DAP communication")
}
