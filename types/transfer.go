package types

// TransferState tracks where a transfer is in its lifecycle. A transfer only
// ever moves forward except for the resign loop, which sends it back to
// StateAwaitingSignatures.
type TransferState int

const (
	StateIdle TransferState = iota
	StateInitiating
	StateAwaitingSignatures
	StateCompleting
	StateRequestingResign
	StateCompleted
	StateFailed
)

func (s TransferState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitiating:
		return "initiating"
	case StateAwaitingSignatures:
		return "awaiting_signatures"
	case StateCompleting:
		return "completing"
	case StateRequestingResign:
		return "requesting_resign"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}

	return "unknown"
}

// Terminal returns true when no further operation can move this transfer.
func (s TransferState) Terminal() bool {
	return s == StateCompleted
}

// TransferRequest is the working state of one in-flight transfer. The
// orchestrator owns it exclusively for the duration of the transfer.
type TransferRequest struct {
	SourceChain      string `json:"source_chain"`
	DestinationChain string `json:"destination_chain"`
	AssetId          string `json:"asset_id"`

	// HumanAmount is the user-entered decimal string. NormalizedAmount is the
	// smallest-unit integer string computed with the source chain's decimals.
	HumanAmount      string `json:"human_amount"`
	NormalizedAmount string `json:"normalized_amount"`

	Recipient string `json:"recipient"`

	// InitiatingTransactionId is set once the lock transaction is submitted.
	// CorrelationId is what the signing service keys on; it equals the
	// transaction id for Ethereum and a derived operation id for Koinos.
	InitiatingTransactionId string `json:"initiating_transaction_id"`
	CorrelationId           string `json:"correlation_id"`
}
