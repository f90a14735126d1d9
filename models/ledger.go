package models

import (
	"fmt"
	"time"
)

// GenesisHash is the previous hash of the first block in the chain.
const GenesisHash = "0"

// LedgerTimeLayout renders block timestamps in UTC with millisecond precision.
const LedgerTimeLayout = "2006-01-02T15:04:05.000Z"

// Ledger event labels.
const (
	EventRequestInitialized = "Request Initialized"
	EventDonorAccepted      = "Donor Accepted Request"
	EventDonorDeclined      = "Donor Declined Request"
	EventBagDispatched      = "Blood Bag Dispatched"
	EventRequestCompleted   = "Blood Received & Process Completed"
)

// CompletedStatusLabel is the status recorded with EventRequestCompleted.
const CompletedStatusLabel = "Life Saved ✅"

// LedgerBlock is one link of the global request-lifecycle chain. Field order
// follows the persisted layout.
type LedgerBlock struct {
	Index        int64     `bson:"index" json:"index"`
	RequestID    string    `bson:"request_id" json:"request_id"`
	Event        string    `bson:"event" json:"event"`
	Data         string    `bson:"data" json:"data"`
	PreviousHash string    `bson:"previous_hash" json:"previous_hash"`
	CurrentHash  string    `bson:"current_hash" json:"current_hash"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
}

// EventPayload is the structured body of a ledger event. Leaves must be
// strings, numbers, booleans or nil.
type EventPayload map[string]interface{}

// Validate rejects payloads with nested or non-scalar values.
func (p EventPayload) Validate() error {
	for k, v := range p {
		switch v.(type) {
		case nil, string, bool,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
		default:
			return fmt.Errorf("payload field %q has unsupported type %T", k, v)
		}
	}
	return nil
}

// ChainReport summarises a full-chain integrity check.
type ChainReport struct {
	Blocks      int64  `json:"blocks"`
	Valid       bool   `json:"valid"`
	BrokenIndex int64  `json:"brokenIndex,omitempty"`
	Reason      string `json:"reason,omitempty"`
	TipHash     string `json:"tipHash,omitempty"`
}
