package ledger

import (
	"fmt"

	"lifedrop/models"
)

// VerifyChain checks a full chain given in ascending index order: indices
// run 1..N without gaps, every previous hash equals the prior block's hash
// (the genesis sentinel for block 1), and every stored hash matches the one
// recomputed from the block's fields.
func VerifyChain(blocks []models.LedgerBlock) models.ChainReport {
	report := models.ChainReport{Blocks: int64(len(blocks)), Valid: true}
	previous := models.GenesisHash

	for i, b := range blocks {
		expected := int64(i + 1)
		switch {
		case b.Index != expected:
			return broken(report, b.Index, fmt.Sprintf("expected index %d, found %d", expected, b.Index))
		case b.PreviousHash != previous:
			return broken(report, b.Index, "previous hash does not match prior block")
		case BlockHash(b) != b.CurrentHash:
			return broken(report, b.Index, "stored hash does not match block contents")
		}
		previous = b.CurrentHash
	}
	if len(blocks) > 0 {
		report.TipHash = previous
	}
	return report
}

func broken(report models.ChainReport, index int64, reason string) models.ChainReport {
	report.Valid = false
	report.BrokenIndex = index
	report.Reason = reason
	return report
}
