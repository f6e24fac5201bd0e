// Package cli defines the Cobra commands of the mock interviewer terminal
// client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/mock-interviewer/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "interviewer",
	Short: "AI mock interviews from the terminal",
	Long: `interviewer runs mock interviews against the configured language model
and manages the archive of completed interviews.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfg == nil {
			cfg = config.Load()
		}
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(reindexCmd)
}
