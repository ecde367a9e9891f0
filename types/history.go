package types

import "time"

type HistoryOp string

const (
	HistoryOpInitiate      HistoryOp = "initiate"
	HistoryOpComplete      HistoryOp = "complete"
	HistoryOpRequestResign HistoryOp = "request_resign"
)

// HistoryEntry is an immutable record of one successful chain submission.
// Entries are never updated or deleted; on-chain transactions cannot be
// taken back either.
type HistoryEntry struct {
	TxId      string    `json:"tx_id"`
	Chain     string    `json:"chain"`
	Type      HistoryOp `json:"type"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
