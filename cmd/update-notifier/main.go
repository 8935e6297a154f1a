package main

import (
	"os"

	"github.com/spf13/cobra"

	"updatenotifier/internal/commands"
	"updatenotifier/internal/output"
)

var jsonFlag bool

var rootCmd = &cobra.Command{
	Use:   "update-notifier",
	Short: "Tell a CLI when a newer release is on the registry",
	Long:  "Check a crates registry for newer releases of a package, at most once per interval, and print a notice when one exists",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", "", "Config file (default ./update-notifier.yaml or the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&commands.Verbose, "verbose", "v", false, "Log check decisions to stderr")

	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.LatestCmd)
	rootCmd.AddCommand(commands.NoticeCmd)
	rootCmd.AddCommand(commands.StateCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	// Propagate --json flag before execution
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		output.JSONMode = jsonFlag
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
