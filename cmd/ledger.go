package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"lifedrop/config"
	"lifedrop/database"
	"lifedrop/services/ledger"
	"lifedrop/utils"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the request ledger",
}

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recompute every block hash and link of the chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeFn, err := openLedgerService()
		if err != nil {
			return err
		}
		defer closeFn()

		report, err := svc.Verify(cmd.Context())
		if err != nil {
			return err
		}
		if err := printJSON(cmd, report); err != nil {
			return err
		}
		if !report.Valid {
			return fmt.Errorf("chain broken at block %d: %s", report.BrokenIndex, report.Reason)
		}
		return nil
	},
}

var ledgerHistoryCmd = &cobra.Command{
	Use:   "history <request-id>",
	Short: "Print the blocks recorded for one request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openLedgerService()
		if err != nil {
			return err
		}
		defer closeFn()

		blocks, err := svc.GetHistory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, blocks)
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerVerifyCmd, ledgerHistoryCmd)
}

func openLedgerService() (*ledger.DefaultLedgerService, func(), error) {
	usesMongo := !strings.EqualFold(config.AppConfig.LedgerBackend, "leveldb")
	if usesMongo {
		database.InitDB()
	}
	repo, closeRepo, err := openLedgerRepo()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		_ = closeRepo()
		if usesMongo {
			closeDB()
		}
	}
	return &ledger.DefaultLedgerService{Repo: repo, Logger: utils.GetLogger().Named("ledger")}, closeFn, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
