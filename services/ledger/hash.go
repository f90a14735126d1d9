package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"lifedrop/models"
)

// FormatTimestamp renders t the way it is fed into block hashes.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(models.LedgerTimeLayout)
}

// ComputeHash returns hex(SHA-256(index + previousHash + timestamp + data)).
// The fields are concatenated as-is with no separators.
func ComputeHash(index int64, previousHash, timestamp, data string) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(index, 10) + previousHash + timestamp + data))
	return hex.EncodeToString(sum[:])
}

// BlockHash recomputes the hash of a stored block from its own fields.
func BlockHash(b models.LedgerBlock) string {
	return ComputeHash(b.Index, b.PreviousHash, FormatTimestamp(b.Timestamp), b.Data)
}

// EncodePayload serializes a payload deterministically. encoding/json writes
// map keys in sorted order, so equal payloads give equal bytes. HTML
// characters are kept literal.
func EncodePayload(payload models.EventPayload) (string, error) {
	if payload == nil {
		payload = models.EventPayload{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
