package cmd

import (
	"fmt"
	"strings"

	"lifedrop/config"
	ledgerRepo "lifedrop/database/repository/ledger"
)

// openLedgerRepo picks the ledger store named by LEDGER_BACKEND. The returned
// close function is never nil.
func openLedgerRepo() (ledgerRepo.LedgerRepository, func() error, error) {
	switch strings.ToLower(config.AppConfig.LedgerBackend) {
	case "", "mongo":
		repo, err := ledgerRepo.NewMongoLedgerRepo()
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil
	case "leveldb":
		repo, err := ledgerRepo.NewLevelDBLedgerRepo(config.AppConfig.LedgerLevelDBPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown LEDGER_BACKEND %q", config.AppConfig.LedgerBackend)
	}
}
