// Cortexd is a decision fusion daemon.
//
// It fans requests out to registered reasoning brains (intent, technical,
// domain specialists), fuses their analyses into a single decision with an
// execution strategy, and learns from execution feedback via a validated
// learning loop.
//
// Usage:
//
//	# Start the daemon with defaults
//	cortexd serve
//
//	# Start with a config file
//	cortexd serve --config /etc/cortexd/config.yaml
//
//	# Run one request through the pipeline without a server
//	cortexd decide "restart the payment service"
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cortexd",
	Short: "Multi-brain decision fusion daemon",
	Long: `cortexd fuses analyses from multiple reasoning brains into execution
decisions and continuously recalibrates brain reliability from feedback.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cortexd by Fyrsmith Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(versionCmd)
}
