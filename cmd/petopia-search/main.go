// cmd/petopia-search/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "petopia-search",
	Short: "Search pet-friendly facilities on the Petopia backend",
	Long: `petopia-search drives the Petopia facility search from the terminal.

Filters, paginated search, map-area search and favorites behave as in the
web front-end. Use "shell" for an interactive session or one of the one-shot
commands for scripting.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug|info|warn|error)")

	rootCmd.AddCommand(searchCmd, boundsCmd, favoritesCmd, suggestCmd, shellCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
