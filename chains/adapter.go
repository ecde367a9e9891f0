package chains

import (
	"context"

	"github.com/koinos-bridge/bridge-client/config"
	"github.com/koinos-bridge/bridge-client/types"
)

// Receipt is the chain-agnostic result of a finalized transaction.
type Receipt struct {
	TxId        string
	BlockId     string
	BlockHeight int64
	Success     bool
}

// Adapter is the uniform surface the orchestrator drives a chain through.
// Implementations are stateless; all transfer state lives in the
// orchestrator. Every call that can hit the network takes a context and is
// bounded by the client-side timeouts from config.
type Adapter interface {
	Chain() string

	// Lock submits the lock/burn transaction for a transfer leaving this
	// chain. It blocks until the network's submission layer accepts the
	// transaction and returns its id. Chains with an approve/transferFrom
	// token model check the bridge allowance first and return
	// InsufficientAllowanceErr without submitting anything when it is too
	// low.
	Lock(ctx context.Context, asset config.Asset, normalizedAmount, recipient string) (string, error)

	// Approve grants the bridge an unlimited spending allowance for the
	// asset. Only meaningful on chains whose Lock can return
	// InsufficientAllowanceErr.
	Approve(ctx context.Context, asset config.Asset) (string, error)

	// AwaitFinality blocks until the transaction is included in a block and
	// its result is observable.
	AwaitFinality(ctx context.Context, txId string) (*Receipt, error)

	// CorrelationId returns the identifier the signing service tracks this
	// lock under. Chains whose id must be derived from emitted events retry
	// internally while event emission lags inclusion.
	CorrelationId(ctx context.Context, txId string) (string, error)

	// Complete submits a signed authorization to this chain's bridge
	// contract, releasing the tokens to the recipient.
	Complete(ctx context.Context, auth *types.SignedAuthorization) (string, error)

	// RequestResign asks the bridge contract to invalidate an expired
	// signature set and restart quorum collection.
	RequestResign(ctx context.Context, txId, opId string) (string, error)
}
