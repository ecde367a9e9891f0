package koinos

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sisu-network/lib/log"

	"github.com/koinos-bridge/bridge-client/chains"
	"github.com/koinos-bridge/bridge-client/config"
	"github.com/koinos-bridge/bridge-client/types"
	"github.com/koinos-bridge/bridge-client/utils"
)

const (
	lockEventName = "tokens_locked_event"

	// Event emission can lag transaction inclusion on the node's indexer, so
	// an empty scan result is retried rather than treated as final.
	derivationRetryTime = 5 * time.Second
	maxDerivationRetry  = 12

	inclusionRetryTime = 3 * time.Second
	maxInclusionRetry  = 20
)

type Adapter struct {
	cfg           config.Chain
	client        KoinosClient
	wallet        Wallet
	walletTimeout time.Duration
	rpcTimeout    time.Duration

	derivationRetryTime time.Duration
	inclusionRetryTime  time.Duration
}

func NewAdapter(cfg config.Chain, bridgeCfg *config.Bridge, client KoinosClient, wallet Wallet) *Adapter {
	return &Adapter{
		cfg:                 cfg,
		client:              client,
		wallet:              wallet,
		walletTimeout:       bridgeCfg.WalletTimeout(),
		rpcTimeout:          bridgeCfg.RpcTimeout(),
		derivationRetryTime: derivationRetryTime,
		inclusionRetryTime:  inclusionRetryTime,
	}
}

func (a *Adapter) Chain() string {
	return utils.ChainKoinos
}

func (a *Adapter) Lock(ctx context.Context, asset config.Asset, normalizedAmount, recipient string) (string, error) {
	if !utils.IsPositiveAmount(normalizedAmount) {
		return "", types.NewValidationErr("amount %q is not a positive integer", normalizedAmount)
	}

	return a.submit(ctx, "lock", &ContractCall{
		ContractId: a.cfg.BridgeAddress,
		Method:     "transfer_tokens",
		Args: map[string]interface{}{
			"token":     asset.Addresses[a.Chain()],
			"amount":    normalizedAmount,
			"recipient": recipient,
		},
	})
}

// Approve is a no-op concern on Koinos: its token standard has no
// approve/transferFrom model, the bridge pulls via a direct transfer.
func (a *Adapter) Approve(ctx context.Context, asset config.Asset) (string, error) {
	return "", types.NewValidationErr("chain %s does not use a token allowance model", a.Chain())
}

func (a *Adapter) AwaitFinality(ctx context.Context, txId string) (*chains.Receipt, error) {
	for retry := 0; ; retry++ {
		callCtx, cancel := context.WithTimeout(ctx, a.rpcTimeout)
		blocks, err := a.client.GetTransactionBlocks(callCtx, txId)
		cancel()

		if err == nil && len(blocks) > 0 {
			return &chains.Receipt{
				TxId:    txId,
				BlockId: blocks[0],
				Success: true,
			}, nil
		}

		if err != nil {
			log.Verbosef("waiting for inclusion of %s on %s, err = %v", txId, a.Chain(), err)
		}

		if retry == maxInclusionRetry {
			return nil, types.NewTimeoutErr(a.Chain(), "await finality", time.Duration(maxInclusionRetry)*a.inclusionRetryTime)
		}

		select {
		case <-ctx.Done():
			return nil, types.NewTimeoutErr(a.Chain(), "await finality", a.rpcTimeout)
		case <-time.After(a.inclusionRetryTime):
		}
	}
}

// CorrelationId derives the operation id the signing service tracks a Koinos
// lock under: the sequence number of the bridge's tokens_locked_event inside
// the lock transaction's receipt.
func (a *Adapter) CorrelationId(ctx context.Context, txId string) (string, error) {
	if !utils.IsKoinosTxId(txId) {
		return "", types.NewChainMismatchErr(a.Chain(), txId)
	}

	for retry := 0; ; retry++ {
		opId, err := a.scanLockEvent(ctx, txId)
		if err != nil {
			return "", err
		}

		if opId != "" {
			return opId, nil
		}

		if retry == maxDerivationRetry {
			return "", types.NewTimeoutErr(a.Chain(), "derive operation id", time.Duration(maxDerivationRetry)*a.derivationRetryTime)
		}

		log.Verbosef("lock event for %s not visible yet, retrying", txId)

		select {
		case <-ctx.Done():
			return "", types.NewTimeoutErr(a.Chain(), "derive operation id", a.rpcTimeout)
		case <-time.After(a.derivationRetryTime):
		}
	}
}

func (a *Adapter) scanLockEvent(ctx context.Context, txId string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.rpcTimeout)
	blocks, err := a.client.GetTransactionBlocks(callCtx, txId)
	cancel()
	if err != nil {
		return "", types.NewSubmissionErr(a.Chain(), "cannot look up transaction %s: %v", txId, err)
	}

	for _, blockId := range blocks {
		callCtx, cancel := context.WithTimeout(ctx, a.rpcTimeout)
		receipt, err := a.client.GetBlockReceipt(callCtx, blockId)
		cancel()
		if err != nil {
			log.Verbosef("cannot fetch receipt for block %s, err = %v", blockId, err)
			continue
		}

		for _, txReceipt := range receipt.TransactionReceipts {
			if txReceipt.Id != txId {
				continue
			}

			for _, event := range txReceipt.Events {
				if event.Source == a.cfg.BridgeAddress && strings.HasSuffix(event.Name, lockEventName) {
					return strconv.FormatUint(event.Sequence, 10), nil
				}
			}
		}
	}

	return "", nil
}

func (a *Adapter) Complete(ctx context.Context, auth *types.SignedAuthorization) (string, error) {
	txId, err := a.submit(ctx, "complete", &ContractCall{
		ContractId: a.cfg.BridgeAddress,
		Method:     "complete_transfer",
		Args: map[string]interface{}{
			"transactionId": auth.TransactionId,
			"token":         auth.Token,
			"recipient":     auth.Recipient,
			"value":         auth.Amount,
			"expiration":    auth.Expiration,
			"signatures":    auth.Signatures,
		},
	})
	if err != nil && strings.Contains(err.Error(), "expired") {
		return "", types.NewExpiredAuthorizationErr(auth.TransactionId)
	}

	return txId, err
}

func (a *Adapter) RequestResign(ctx context.Context, txId, opId string) (string, error) {
	return a.submit(ctx, "request resign", &ContractCall{
		ContractId: a.cfg.BridgeAddress,
		Method:     "request_new_signatures",
		Args: map[string]interface{}{
			"transactionId": txId,
			"operationId":   opId,
		},
	})
}

func (a *Adapter) submit(ctx context.Context, op string, call *ContractCall) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.walletTimeout)
	defer cancel()

	txId, err := a.wallet.SignAndSubmit(callCtx, call)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return "", types.NewTimeoutErr(a.Chain(), op, a.walletTimeout)
		case strings.Contains(strings.ToLower(err.Error()), "rejected"),
			strings.Contains(strings.ToLower(err.Error()), "denied"):
			return "", types.NewRejectedErr(a.Chain(), err.Error())
		}

		return "", types.NewSubmissionErr(a.Chain(), "%s failed: %v", op, err)
	}

	log.Verbosef("Submitted %s tx on %s, id = %s", op, a.Chain(), txId)

	return txId, nil
}
