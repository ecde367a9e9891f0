package types

import (
	"fmt"
	"strconv"
	"time"
)

const (
	TransferStatusPending   = "pending"
	TransferStatusSigned    = "signed"
	TransferStatusCompleted = "completed"
)

// TransferStatus is the signing service's view of a transfer. Field names
// follow the validator API payload.
type TransferStatus struct {
	Status     string   `json:"status"`
	Id         string   `json:"id"`
	OpId       string   `json:"opId"`
	Amount     string   `json:"amount"`
	Recipient  string   `json:"recipient"`
	Expiration string   `json:"expiration"`
	Signatures []string `json:"signatures"`

	// Token addresses on either side. Which one is relevant depends on the
	// destination chain.
	KoinosToken   string `json:"koinosToken"`
	EthereumToken string `json:"ethToken"`
}

// SignedAuthorization is the payload a destination chain needs to release
// tokens: the validator signature set plus the transfer parameters they
// signed over.
type SignedAuthorization struct {
	TransactionId string
	OpId          string
	Token         string
	Recipient     string
	Amount        string
	Expiration    string
	Signatures    []string
}

// ExpirationTime parses the service's millisecond timestamp string.
func (a *SignedAuthorization) ExpirationTime() (time.Time, error) {
	ms, err := strconv.ParseInt(a.Expiration, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse expiration %q: %w", a.Expiration, err)
	}

	return time.UnixMilli(ms), nil
}

// Authorization converts a signed status into the payload submitted to the
// destination chain's bridge contract. token must be the destination-side
// token address.
func (s *TransferStatus) Authorization(token string) *SignedAuthorization {
	return &SignedAuthorization{
		TransactionId: s.Id,
		OpId:          s.OpId,
		Token:         token,
		Recipient:     s.Recipient,
		Amount:        s.Amount,
		Expiration:    s.Expiration,
		Signatures:    s.Signatures,
	}
}
