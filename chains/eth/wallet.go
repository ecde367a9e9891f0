package eth

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type NoHealthyClientErr struct {
	chain string
}

func NewNoHealthyClientErr(chain string) error {
	return &NoHealthyClientErr{chain: chain}
}

func (e *NoHealthyClientErr) Error() string {
	return fmt.Sprintf("No healthy client for chain %s", e.chain)
}

// Wallet signs and submits a contract call on the user's behalf. Key
// management and signing UX live outside this client; the adapter only sees
// an opaque sign-and-submit endpoint.
type Wallet interface {
	Address() common.Address
	SendTransaction(ctx context.Context, to common.Address, data []byte) (common.Hash, error)
}
