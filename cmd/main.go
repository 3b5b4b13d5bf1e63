package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ori-shem-tov/scratchcard/cmd/cli"
)

func init() {
	rootCmd.AddCommand(cli.Commands...)
}

var rootCmd = &cobra.Command{
	Use:   "scratchcard",
	Short: "plays the match3 scratchcard game: provisions trees, mints cards and scratches them with oracle randomness",
	Run: func(cmd *cobra.Command, args []string) {
		//If no arguments passed, we should fallback to help
		cmd.HelpFunc()(cmd, args)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
