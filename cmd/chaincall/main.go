package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/chaincall/bench"
	"github.com/wippyai/chaincall/client"
	"github.com/wippyai/chaincall/config"
	"github.com/wippyai/chaincall/metadata"
	"github.com/wippyai/chaincall/runtime"
)

var rootCmd = &cobra.Command{
	Use:   "chaincall",
	Short: "Explore chain extrinsics from metadata",
	Long: `chaincall decodes a chain's metadata, resolves every dispatchable
extrinsic into its parameter tree, and helps assemble calls and pallet
benchmarks without touching a signing key.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(palletsCmd)
	rootCmd.AddCommand(benchCmd)

	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "config file")
	rootCmd.PersistentFlags().StringP("url", "u", "", "node websocket endpoint (overrides config)")
	rootCmd.PersistentFlags().StringP("runtime", "r", "", "runtime wasm build to read metadata from instead of a node")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "chaincall.toml"
	}
	return filepath.Join(dir, "chaincall", "chaincall.toml")
}

// setup loads the config file and installs loggers when --verbose is set.
func setup(cmd *cobra.Command) (*config.Config, error) {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		metadata.SetLogger(l)
		client.SetLogger(l)
		runtime.SetLogger(l)
		bench.SetLogger(l)
	}

	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
