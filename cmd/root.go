// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errReported is returned by commands which already printed their errors.
var errReported = errors.New("errors reported")

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "eescope",
	Short: "eescope: evaluate expressions against a paused program",
	Long: `eescope evaluates debugger expressions against a snapshot of a paused
program.  A snapshot is a YAML document describing the types, stack frames,
heap objects and debugger aliases of the program.

Getting started:
  eescope eval -s app.yaml 'id + 1'          Evaluate an expression
  eescope eval -s app.yaml 'int n = 2' 'n * n'
  eescope lookup -s app.yaml --types Widget  Resolve a name
  eescope frames -s app.yaml                 List the paused frames
  eescope repl -s app.yaml                   Start an interactive prompt
  eescope dap -s app.yaml --port 4711        Serve editors over DAP

Expressions may use the debugger aliases of the snapshot ($exception,
$stowedexception, $ReturnValue, $ReturnValue2, ..., object ids $1, $2, ...)
and raw object addresses such as 0x1000.  Return value aliases are also
found in lowercase.

Configuration is read from $HOME/.eescope.yaml (or --config) and from
EESCOPE_* environment variables, e.g. EESCOPE_SNAPSHOT or EESCOPE_LOG_LEVEL.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.eescope.yaml)")
	flags.StringP("snapshot", "s", "", "snapshot of the paused program")
	flags.String("aliases", "", "YAML file of aliases added to those of the snapshot")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", "text", `log format: "text" or "json"`)
	flags.String("tracing", "none", `tracing backend: "otel", "opencensus" or "none"`)
	flags.String("color", "auto", `Control colored output: "auto", "always", or "never".`)
	flags.StringSlice("usings", nil, "namespaces imported by the program (default from the snapshot)")
}

// configKeys maps viper keys to the flags which set them.
func configKeys() map[string]*cobra.Command {
	return map[string]*cobra.Command{
		"snapshot":   rootCmd,
		"aliases":    rootCmd,
		"log-level":  rootCmd,
		"log-format": rootCmd,
		"tracing":    rootCmd,
		"color":      rootCmd,
		"usings":     rootCmd,
		"dap.port":   dapCmd,
		"dap.host":   dapCmd,
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	for key, cmd := range configKeys() {
		name := key[strings.LastIndex(key, ".")+1:]
		flag := cmd.PersistentFlags().Lookup(name)
		if flag == nil {
			flag = cmd.Flags().Lookup(name)
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".eescope" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".eescope")
	}

	viper.SetEnvPrefix("eescope")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
	}
}
