package cmd

import (
	"os"

	"lifedrop/config"
	"lifedrop/utils"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lifedrop",
	Short: "Blood donor matching and request ledger service",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
		utils.InitializeLogger()
	},
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line. With no subcommand it serves HTTP.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		utils.GetLogger().Sugar().Errorf("lifedrop: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, ledgerCmd, seedCmd)
}
