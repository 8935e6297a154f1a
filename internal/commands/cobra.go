package commands

import (
	"github.com/spf13/cobra"

	"updatenotifier/internal/output"
)

// Global flags, bound on the root command by cmd/update-notifier.
var (
	ConfigPath string
	Verbose    bool
)

// CheckCmd runs the throttled version check.
var CheckCmd = &cobra.Command{
	Use:   "check <name> <current-version>",
	Short: "Check the registry for a newer version",
	Long:  "Print a notice if the registry has a version different from <current-version>, at most once per interval",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := loadOptions(cmd)
		if err != nil {
			output.PrintError(err)
		}
		defer opts.Close()
		if err := RunCheck(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1]); err != nil {
			output.PrintError(err)
		}
	},
}

// LatestCmd fetches the latest version without throttling.
var LatestCmd = &cobra.Command{
	Use:   "latest <name>",
	Short: "Print the latest published version",
	Long:  "Query the registry once, ignoring the check interval and without touching stored state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := loadOptions(cmd)
		if err != nil {
			output.PrintError(err)
		}
		defer opts.Close()
		if err := RunLatest(cmd.Context(), cmd.OutOrStdout(), opts, args[0]); err != nil {
			output.PrintError(err)
		}
	},
}

// NoticeCmd renders the update notice.
var NoticeCmd = &cobra.Command{
	Use:   "notice <name> <current-version> <latest-version>",
	Short: "Print the update notice",
	Long:  "Render the notice shown when a new version is available, without contacting the registry",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := loadOptions(cmd)
		if err != nil {
			output.PrintError(err)
		}
		defer opts.Close()
		if err := RunNotice(cmd.OutOrStdout(), opts, args[0], args[1], args[2]); err != nil {
			output.PrintError(err)
		}
	},
}

// StateCmd shows the persisted check state.
var StateCmd = &cobra.Command{
	Use:   "state <name>",
	Short: "Show when a package was last checked",
	Long:  "Print the stored last-checked time and last seen version for a package",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := loadOptions(cmd)
		if err != nil {
			output.PrintError(err)
		}
		defer opts.Close()
		if err := RunState(cmd.Context(), cmd.OutOrStdout(), opts, args[0]); err != nil {
			output.PrintError(err)
		}
	},
}

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		RunVersion(cmd.OutOrStdout())
	},
}

func init() {
	for _, c := range []*cobra.Command{CheckCmd, LatestCmd} {
		c.Flags().String("registry", "", "Registry base URL (default https://crates.io)")
		c.Flags().Duration("timeout", 0, "HTTP timeout for the registry request")
	}
	for _, c := range []*cobra.Command{CheckCmd, StateCmd} {
		c.Flags().String("state-backend", "", "State backend: file or sqlite")
		c.Flags().String("state-path", "", "State directory (file) or database path (sqlite)")
	}
	for _, c := range []*cobra.Command{CheckCmd, NoticeCmd} {
		c.Flags().String("color", "", "Color the notice: auto, always, or never")
		c.Flags().String("install-hint", "", "Install command shown in the notice; {name} is replaced")
	}
	CheckCmd.Flags().Duration("interval", 0, "Minimum time between registry checks (default 24h)")
	NoticeCmd.Flags().String("registry", "", "Registry base URL shown in the notice")
}
