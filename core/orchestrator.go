package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/sisu-network/lib/log"
	"go.uber.org/atomic"

	"github.com/koinos-bridge/bridge-client/chains"
	"github.com/koinos-bridge/bridge-client/config"
	"github.com/koinos-bridge/bridge-client/database"
	"github.com/koinos-bridge/bridge-client/signing"
	"github.com/koinos-bridge/bridge-client/types"
	"github.com/koinos-bridge/bridge-client/utils"
)

const completedCacheSize = 1_000

// Orchestrator drives one transfer through its lifecycle: lock on the source
// chain, wait for the validator quorum, complete on the destination chain,
// and recover from expired signature sets. It owns the TransferRequest
// exclusively; adapters and the signing client stay stateless.
type Orchestrator struct {
	cfg      *config.Bridge
	adapters map[string]chains.Adapter
	signer   signing.Client
	db       database.Database

	lock    *sync.RWMutex
	state   types.TransferState
	request *types.TransferRequest

	// One logical worker per transfer: a second concurrent call is rejected
	// with BusyErr instead of queued.
	inFlight *atomic.Bool

	// Transfers already seen as completed. Prevents a duplicate completion
	// attempt when an old session resumes a finished transfer.
	completed *lru.Cache
}

func NewOrchestrator(cfg *config.Bridge, adapters map[string]chains.Adapter,
	signer signing.Client, db database.Database) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		adapters:  adapters,
		signer:    signer,
		db:        db,
		lock:      &sync.RWMutex{},
		state:     types.StateIdle,
		inFlight:  atomic.NewBool(false),
		completed: lru.New(completedCacheSize),
	}
}

func (o *Orchestrator) State() types.TransferState {
	o.lock.RLock()
	defer o.lock.RUnlock()

	return o.state
}

func (o *Orchestrator) Request() *types.TransferRequest {
	o.lock.RLock()
	defer o.lock.RUnlock()

	if o.request == nil {
		return nil
	}

	ret := *o.request
	return &ret
}

func (o *Orchestrator) History() ([]*types.HistoryEntry, error) {
	return o.db.LoadHistory()
}

// Initiate validates the request, submits the lock transaction on the source
// chain and derives the correlation id the signing service tracks the
// transfer under. Validation failures return before any network call.
func (o *Orchestrator) Initiate(ctx context.Context, req *types.TransferRequest) error {
	if err := o.begin(); err != nil {
		return err
	}
	defer o.end()

	source, _, asset, err := o.resolve(req)
	if err != nil {
		return err
	}

	normalized, err := utils.ParseUnits(req.HumanAmount, asset.Decimals[req.SourceChain])
	if err != nil {
		return types.NewValidationErr("%v", err)
	}

	if !utils.IsPositiveAmount(normalized) {
		return types.NewValidationErr("amount must be greater than zero, got %q", req.HumanAmount)
	}

	if req.Recipient == "" {
		return types.NewValidationErr("recipient cannot be empty")
	}

	if !utils.IsValidAddress(req.DestinationChain, req.Recipient) {
		return types.NewValidationErr("recipient %q is not a valid %s address", req.Recipient, req.DestinationChain)
	}

	req.NormalizedAmount = normalized
	o.setTransfer(req, types.StateInitiating)

	txId, err := source.Lock(ctx, asset, normalized, req.Recipient)
	if err != nil {
		// The request stays around so the caller can correct the problem
		// (approve the token, reconnect the wallet) and initiate again.
		o.setState(types.StateFailed)
		return err
	}

	req.InitiatingTransactionId = txId
	o.setTransfer(req, types.StateInitiating)

	if err := o.db.SaveLastInitiatedTx(txId); err != nil {
		log.Error("Cannot persist last initiated tx id, err = ", err)
	}

	if _, err := source.AwaitFinality(ctx, txId); err != nil {
		o.setState(types.StateFailed)
		return err
	}

	correlationId, err := source.CorrelationId(ctx, txId)
	if err != nil {
		o.setState(types.StateFailed)
		return err
	}

	req.CorrelationId = correlationId
	o.setTransfer(req, types.StateAwaitingSignatures)
	o.appendHistory(txId, req.SourceChain, types.HistoryOpInitiate, req.HumanAmount)

	log.Infof("Transfer initiated on %s, tx = %s, correlation id = %s. Validators need about %s before signing.",
		req.SourceChain, txId, correlationId, o.confirmationWait(req.SourceChain))

	return nil
}

// CheckStatus polls the signing service once and advances the transfer as
// far as the answer allows: completes it on the destination chain when the
// quorum is ready, short-circuits when another session already finished it,
// or reports why it cannot move yet.
func (o *Orchestrator) CheckStatus(ctx context.Context) error {
	if err := o.begin(); err != nil {
		return err
	}
	defer o.end()

	req := o.Request()
	if req == nil || req.InitiatingTransactionId == "" {
		return types.NewValidationErr("no transfer to check, initiate or resume one first")
	}

	// Fail fast on a source chain / id mismatch instead of submitting a
	// completion transaction that cannot succeed.
	if !utils.TxIdMatchesChain(req.SourceChain, req.InitiatingTransactionId) {
		return types.NewChainMismatchErr(req.SourceChain, req.InitiatingTransactionId)
	}

	if o.isCompleted(req.InitiatingTransactionId) {
		o.setState(types.StateCompleted)
		return nil
	}

	status, err := o.signer.GetTransaction(ctx, req.InitiatingTransactionId, o.opId(req))
	if err != nil {
		return err
	}

	switch status.Status {
	case types.TransferStatusPending:
		return types.NewNotReadyErr(req.InitiatingTransactionId)

	case types.TransferStatusCompleted:
		// Another actor already finished this transfer. No destination call.
		o.markCompleted(req.InitiatingTransactionId)
		o.setState(types.StateCompleted)
		return nil

	case types.TransferStatusSigned:
		return o.complete(ctx, req, status)
	}

	return fmt.Errorf("signing service returned unknown status %q for transaction %s",
		status.Status, req.InitiatingTransactionId)
}

func (o *Orchestrator) complete(ctx context.Context, req *types.TransferRequest, status *types.TransferStatus) error {
	destination := o.adapters[req.DestinationChain]
	auth := status.Authorization(o.destinationToken(req.DestinationChain, status))

	expiration, err := auth.ExpirationTime()
	if err != nil {
		return err
	}

	// An expired authorization must never reach the destination chain.
	if elapsed := time.Since(expiration); elapsed >= 0 {
		cooldown := o.cfg.ResignCooldown()
		if elapsed < cooldown {
			return types.NewExpiredSignaturesErr(req.InitiatingTransactionId, false, cooldown-elapsed)
		}

		return types.NewExpiredSignaturesErr(req.InitiatingTransactionId, true, 0)
	}

	o.setState(types.StateCompleting)

	txId, err := destination.Complete(ctx, auth)
	if err != nil {
		// Correlation and initiating ids survive so the caller can retry
		// CheckStatus without locking funds again.
		o.setState(types.StateFailed)
		return err
	}

	if _, err := destination.AwaitFinality(ctx, txId); err != nil {
		o.setState(types.StateFailed)
		return err
	}

	o.appendHistory(txId, req.DestinationChain, types.HistoryOpComplete, status.Amount)
	o.markCompleted(req.InitiatingTransactionId)
	o.setState(types.StateCompleted)

	log.Infof("Transfer %s completed on %s, tx = %s", req.InitiatingTransactionId, req.DestinationChain, txId)

	return nil
}

// RequestResign asks the source chain's bridge contract to invalidate the
// expired signature set and restart quorum collection. On success the
// transfer goes back to awaiting signatures; it never completes here.
func (o *Orchestrator) RequestResign(ctx context.Context) error {
	if err := o.begin(); err != nil {
		return err
	}
	defer o.end()

	req := o.Request()
	if req == nil || req.InitiatingTransactionId == "" {
		return types.NewValidationErr("no transfer to re-sign, initiate or resume one first")
	}

	source := o.adapters[req.SourceChain]
	if source == nil {
		return types.NewValidationErr("unknown source chain %q", req.SourceChain)
	}

	o.setState(types.StateRequestingResign)

	txId, err := source.RequestResign(ctx, req.InitiatingTransactionId, o.opId(req))
	if err != nil {
		o.setState(types.StateFailed)
		return err
	}

	o.appendHistory(txId, req.SourceChain, types.HistoryOpRequestResign, "")
	o.setState(types.StateAwaitingSignatures)

	log.Infof("Requested new signatures for transfer %s, tx = %s. Poll again in about %s.",
		req.InitiatingTransactionId, txId, o.confirmationWait(req.SourceChain))

	return nil
}

// Resume rebuilds the orchestrator's transfer from the persisted
// last-initiated transaction id alone. A restart must not orphan a transfer
// that already locked funds.
func (o *Orchestrator) Resume(ctx context.Context) error {
	if err := o.begin(); err != nil {
		return err
	}
	defer o.end()

	txId, err := o.db.LoadLastInitiatedTx()
	if err != nil {
		return err
	}

	if txId == "" {
		return types.NewValidationErr("no persisted transfer to resume")
	}

	sourceChain, err := utils.ChainFromTxId(txId)
	if err != nil {
		return types.NewValidationErr("%v", err)
	}

	source := o.adapters[sourceChain]
	if source == nil {
		return types.NewValidationErr("no adapter configured for chain %q", sourceChain)
	}

	correlationId, err := source.CorrelationId(ctx, txId)
	if err != nil {
		return err
	}

	req := &types.TransferRequest{
		SourceChain:             sourceChain,
		DestinationChain:        o.otherChain(sourceChain),
		InitiatingTransactionId: txId,
		CorrelationId:           correlationId,
	}

	o.setTransfer(req, types.StateAwaitingSignatures)

	log.Infof("Resumed transfer %s from %s", txId, sourceChain)

	return nil
}

// Approve runs the token approval flow on a chain whose Lock reported an
// insufficient allowance.
func (o *Orchestrator) Approve(ctx context.Context, chain, assetId string) (string, error) {
	if err := o.begin(); err != nil {
		return "", err
	}
	defer o.end()

	adapter := o.adapters[chain]
	if adapter == nil {
		return "", types.NewValidationErr("unknown chain %q", chain)
	}

	asset, ok := o.cfg.Assets[assetId]
	if !ok {
		return "", types.NewValidationErr("unknown asset %q", assetId)
	}

	txId, err := adapter.Approve(ctx, asset)
	if err != nil {
		return "", err
	}

	if _, err := adapter.AwaitFinality(ctx, txId); err != nil {
		return "", err
	}

	return txId, nil
}

func (o *Orchestrator) begin() error {
	if !o.inFlight.CAS(false, true) {
		req := o.Request()
		id := ""
		if req != nil {
			id = req.InitiatingTransactionId
		}

		return types.NewBusyErr(id)
	}

	return nil
}

func (o *Orchestrator) end() {
	o.inFlight.Store(false)
}

func (o *Orchestrator) resolve(req *types.TransferRequest) (chains.Adapter, chains.Adapter, config.Asset, error) {
	var asset config.Asset

	source := o.adapters[req.SourceChain]
	if source == nil {
		return nil, nil, asset, types.NewValidationErr("unknown source chain %q", req.SourceChain)
	}

	destination := o.adapters[req.DestinationChain]
	if destination == nil {
		return nil, nil, asset, types.NewValidationErr("unknown destination chain %q", req.DestinationChain)
	}

	if req.SourceChain == req.DestinationChain {
		return nil, nil, asset, types.NewValidationErr("source and destination chain are both %q", req.SourceChain)
	}

	asset, ok := o.cfg.Assets[req.AssetId]
	if !ok {
		return nil, nil, asset, types.NewValidationErr("unknown asset %q", req.AssetId)
	}

	return source, destination, asset, nil
}

// opId returns the service-side operation id parameter: only set when the
// correlation id was derived rather than equal to the transaction id.
func (o *Orchestrator) opId(req *types.TransferRequest) string {
	if req.CorrelationId == req.InitiatingTransactionId {
		return ""
	}

	return req.CorrelationId
}

func (o *Orchestrator) destinationToken(chain string, status *types.TransferStatus) string {
	if chain == utils.ChainKoinos {
		return status.KoinosToken
	}

	return status.EthereumToken
}

func (o *Orchestrator) otherChain(chain string) string {
	for id := range o.cfg.Chains {
		if id != chain {
			return id
		}
	}

	return ""
}

func (o *Orchestrator) confirmationWait(chain string) time.Duration {
	cfg := o.cfg.Chains[chain]
	return time.Duration(cfg.Confirmations*cfg.BlockTimeMs) * time.Millisecond
}

func (o *Orchestrator) setTransfer(req *types.TransferRequest, state types.TransferState) {
	o.lock.Lock()
	defer o.lock.Unlock()

	copied := *req
	o.request = &copied
	o.state = state
}

func (o *Orchestrator) setState(state types.TransferState) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.state = state
}

func (o *Orchestrator) markCompleted(txId string) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.completed.Add(txId, true)
}

func (o *Orchestrator) isCompleted(txId string) bool {
	o.lock.Lock()
	defer o.lock.Unlock()

	_, ok := o.completed.Get(txId)
	return ok
}

func (o *Orchestrator) appendHistory(txId, chain string, op types.HistoryOp, amount string) {
	err := o.db.AppendHistory(&types.HistoryEntry{
		TxId:      txId,
		Chain:     chain,
		Type:      op,
		Amount:    amount,
		Timestamp: time.Now(),
	})
	if err != nil {
		// History is audit data; a write failure must not fail the transfer.
		log.Error("Cannot append history entry, err = ", err)
	}
}
