package core

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/koinos-bridge/bridge-client/chains"
	"github.com/koinos-bridge/bridge-client/config"
	"github.com/koinos-bridge/bridge-client/database"
	"github.com/koinos-bridge/bridge-client/signing"
	"github.com/koinos-bridge/bridge-client/types"
	"github.com/koinos-bridge/bridge-client/utils"
)

const (
	ethTxId    = "0xa3b40c91f1173f72cabb1eba84a9a03e1b7eaa1d356d8e33a4e4b030cca84a2f"
	koinosTxId = "0x1220a3b40c91f1173f72cabb1eba84a9a03e1b7eaa1d356d8e33a4e4b030cca84a2f"

	koinosRecipient = "19JntSm8pSNETT9aHTwAUHC5RMoaSmgZPJ"
	ethRecipient    = "0xBcd4042DE499D14e55001CcbB24a551F3b954096"
)

func testBridgeConfig() *config.Bridge {
	return &config.Bridge{
		ResignCooldownMs: config.DefaultResignCooldownMs,
		Chains: map[string]config.Chain{
			utils.ChainKoinos:   {Chain: utils.ChainKoinos, Confirmations: 60, BlockTimeMs: 3000},
			utils.ChainEthereum: {Chain: utils.ChainEthereum, Confirmations: 15, BlockTimeMs: 12000},
		},
		Assets: map[string]config.Asset{
			"koin": {
				Id: "koin",
				Addresses: map[string]string{
					utils.ChainKoinos:   koinosRecipient,
					utils.ChainEthereum: "0xeA756978B2D8754b0f92CAc325880aa13AF38f88",
				},
				Decimals: map[string]int{utils.ChainKoinos: 8, utils.ChainEthereum: 8},
			},
		},
	}
}

func testOrchestrator(source, destination *chains.MockAdapter, signer signing.Client,
	db database.Database) *Orchestrator {
	if signer == nil {
		signer = &signing.MockClient{}
	}
	if db == nil {
		db = &database.MockDb{}
	}

	return NewOrchestrator(testBridgeConfig(), map[string]chains.Adapter{
		utils.ChainEthereum: source,
		utils.ChainKoinos:   destination,
	}, signer, db)
}

func ethToKoinosRequest() *types.TransferRequest {
	return &types.TransferRequest{
		SourceChain:      utils.ChainEthereum,
		DestinationChain: utils.ChainKoinos,
		AssetId:          "koin",
		HumanAmount:      "1.5",
		Recipient:        koinosRecipient,
	}
}

func expirationMs(d time.Duration) string {
	return strconv.FormatInt(time.Now().Add(d).UnixMilli(), 10)
}

func TestInitiate(t *testing.T) {
	var lockedAmount, savedTxId string
	historyOps := make([]types.HistoryOp, 0)

	source := &chains.MockAdapter{
		LockFunc: func(ctx context.Context, asset config.Asset, normalizedAmount, recipient string) (string, error) {
			lockedAmount = normalizedAmount
			return ethTxId, nil
		},
	}

	db := &database.MockDb{
		SaveLastInitiatedTxFunc: func(txId string) error {
			savedTxId = txId
			return nil
		},
		AppendHistoryFunc: func(entry *types.HistoryEntry) error {
			historyOps = append(historyOps, entry.Type)
			return nil
		},
	}

	orchestrator := testOrchestrator(source, &chains.MockAdapter{}, nil, db)

	err := orchestrator.Initiate(context.Background(), ethToKoinosRequest())
	require.Nil(t, err)

	// 1.5 tokens at 8 decimals.
	require.Equal(t, "150000000", lockedAmount)
	require.Equal(t, ethTxId, savedTxId)
	require.Equal(t, []types.HistoryOp{types.HistoryOpInitiate}, historyOps)
	require.Equal(t, types.StateAwaitingSignatures, orchestrator.State())

	req := orchestrator.Request()
	require.Equal(t, ethTxId, req.InitiatingTransactionId)
	// On Ethereum the correlation id is the lock tx hash itself.
	require.Equal(t, ethTxId, req.CorrelationId)
}

func TestInitiate_ValidationBeforeNetwork(t *testing.T) {
	lockCalled := false

	source := &chains.MockAdapter{
		LockFunc: func(ctx context.Context, asset config.Asset, normalizedAmount, recipient string) (string, error) {
			lockCalled = true
			return ethTxId, nil
		},
	}

	orchestrator := testOrchestrator(source, &chains.MockAdapter{}, nil, nil)

	for _, tt := range []struct {
		name   string
		mutate func(req *types.TransferRequest)
	}{
		{"unknown asset", func(req *types.TransferRequest) { req.AssetId = "doge" }},
		{"zero amount", func(req *types.TransferRequest) { req.HumanAmount = "0" }},
		{"negative amount", func(req *types.TransferRequest) { req.HumanAmount = "-1.5" }},
		{"excess precision", func(req *types.TransferRequest) { req.HumanAmount = "0.000000001" }},
		{"empty recipient", func(req *types.TransferRequest) { req.Recipient = "" }},
		{"recipient on wrong chain", func(req *types.TransferRequest) { req.Recipient = ethRecipient }},
		{"same chain twice", func(req *types.TransferRequest) { req.DestinationChain = req.SourceChain }},
	} {
		req := ethToKoinosRequest()
		tt.mutate(req)

		err := orchestrator.Initiate(context.Background(), req)

		validationErr := &types.ValidationErr{}
		require.True(t, errors.As(err, &validationErr), tt.name)
		require.False(t, lockCalled, tt.name)
	}
}

func TestInitiate_LockFails(t *testing.T) {
	source := &chains.MockAdapter{
		LockFunc: func(ctx context.Context, asset config.Asset, normalizedAmount, recipient string) (string, error) {
			return "", types.NewRejectedErr(utils.ChainEthereum, "user rejected the request")
		},
	}

	orchestrator := testOrchestrator(source, &chains.MockAdapter{}, nil, nil)

	err := orchestrator.Initiate(context.Background(), ethToKoinosRequest())

	rejectedErr := &types.RejectedErr{}
	require.True(t, errors.As(err, &rejectedErr))
	require.Equal(t, types.StateFailed, orchestrator.State())
}

func TestCheckStatus_Pending(t *testing.T) {
	signer := &signing.MockClient{
		GetTransactionFunc: func(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error) {
			require.Equal(t, ethTxId, transactionId)
			// Correlation id equals the tx id on Ethereum, so no OpId is sent.
			require.Equal(t, "", opId)

			return &types.TransferStatus{Status: types.TransferStatusPending}, nil
		},
	}

	orchestrator := testOrchestrator(&chains.MockAdapter{}, &chains.MockAdapter{}, signer, nil)
	orchestrator.setTransfer(&types.TransferRequest{
		SourceChain:             utils.ChainEthereum,
		DestinationChain:        utils.ChainKoinos,
		InitiatingTransactionId: ethTxId,
		CorrelationId:           ethTxId,
	}, types.StateAwaitingSignatures)

	err := orchestrator.CheckStatus(context.Background())

	notReady := &types.NotReadyErr{}
	require.True(t, errors.As(err, &notReady))
	require.Equal(t, types.StateAwaitingSignatures, orchestrator.State())
}

func TestCheckStatus_SendsDerivedOpId(t *testing.T) {
	signer := &signing.MockClient{
		GetTransactionFunc: func(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error) {
			require.Equal(t, koinosTxId, transactionId)
			require.Equal(t, "3", opId)

			return &types.TransferStatus{Status: types.TransferStatusPending}, nil
		},
	}

	orchestrator := testOrchestrator(&chains.MockAdapter{}, &chains.MockAdapter{}, signer, nil)
	orchestrator.setTransfer(&types.TransferRequest{
		SourceChain:             utils.ChainKoinos,
		DestinationChain:        utils.ChainEthereum,
		InitiatingTransactionId: koinosTxId,
		CorrelationId:           "3",
	}, types.StateAwaitingSignatures)

	err := orchestrator.CheckStatus(context.Background())

	notReady := &types.NotReadyErr{}
	require.True(t, errors.As(err, &notReady))
}

func TestCheckStatus_ChainMismatch(t *testing.T) {
	signerCalled := false
	signer := &signing.MockClient{
		GetTransactionFunc: func(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error) {
			signerCalled = true
			return nil, nil
		},
	}

	orchestrator := testOrchestrator(&chains.MockAdapter{}, &chains.MockAdapter{}, signer, nil)
	orchestrator.setTransfer(&types.TransferRequest{
		SourceChain:             utils.ChainEthereum,
		DestinationChain:        utils.ChainKoinos,
		InitiatingTransactionId: koinosTxId,
		CorrelationId:           koinosTxId,
	}, types.StateAwaitingSignatures)

	err := orchestrator.CheckStatus(context.Background())

	mismatchErr := &types.ChainMismatchErr{}
	require.True(t, errors.As(err, &mismatchErr))
	require.False(t, signerCalled)
}

func TestCheckStatus_SignedCompletes(t *testing.T) {
	var completedAuth *types.SignedAuthorization
	historyOps := make([]types.HistoryOp, 0)

	destination := &chains.MockAdapter{
		CompleteFunc: func(ctx context.Context, auth *types.SignedAuthorization) (string, error) {
			completedAuth = auth
			return koinosTxId, nil
		},
	}

	signer := &signing.MockClient{
		GetTransactionFunc: func(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error) {
			return &types.TransferStatus{
				Status:      types.TransferStatusSigned,
				Id:          ethTxId,
				Amount:      "150000000",
				Recipient:   koinosRecipient,
				Expiration:  expirationMs(30 * time.Minute),
				Signatures:  []string{"0xaa", "0xbb"},
				KoinosToken: koinosRecipient,
			}, nil
		},
	}

	db := &database.MockDb{
		AppendHistoryFunc: func(entry *types.HistoryEntry) error {
			historyOps = append(historyOps, entry.Type)
			return nil
		},
	}

	orchestrator := testOrchestrator(&chains.MockAdapter{}, destination, signer, db)
	orchestrator.setTransfer(&types.TransferRequest{
		SourceChain:             utils.ChainEthereum,
		DestinationChain:        utils.ChainKoinos,
		InitiatingTransactionId: ethTxId,
		CorrelationId:           ethTxId,
	}, types.StateAwaitingSignatures)

	err := orchestrator.CheckStatus(context.Background())
	require.Nil(t, err)
	require.Equal(t, types.StateCompleted, orchestrator.State())
	require.Equal(t, []types.HistoryOp{types.HistoryOpComplete}, historyOps)

	// The destination-side token address must come from the status payload.
	require.Equal(t, koinosRecipient, completedAuth.Token)
	require.Equal(t, 2, len(completedAuth.Signatures))
}

func TestCheckStatus_AlreadyCompleted(t *testing.T) {
	completeCalled := false
	destination := &chains.MockAdapter{
		CompleteFunc: func(ctx context.Context, auth *types.SignedAuthorization) (string, error) {
			completeCalled = true
			return "", nil
		},
	}

	signer := &signing.MockClient{
		GetTransactionFunc: func(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error) {
			return &types.TransferStatus{Status: types.TransferStatusCompleted}, nil
		},
	}

	orchestrator := testOrchestrator(&chains.MockAdapter{}, destination, signer, nil)
	orchestrator.setTransfer(&types.TransferRequest{
		SourceChain:             utils.ChainEthereum,
		DestinationChain:        utils.ChainKoinos,
		InitiatingTransactionId: ethTxId,
		CorrelationId:           ethTxId,
	}, types.StateAwaitingSignatures)

	err := orchestrator.CheckStatus(context.Background())
	require.Nil(t, err)
	require.Equal(t, types.StateCompleted, orchestrator.State())
	require.False(t, completeCalled)
}

func TestCheckStatus_ExpiredWithinCooldown(t *testing.T) {
	completeCalled := false
	destination := &chains.MockAdapter{
		CompleteFunc: func(ctx context.Context, auth *types.SignedAuthorization) (string, error) {
			completeCalled = true
			return "", nil
		},
	}

	signer := &signing.MockClient{
		GetTransactionFunc: func(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error) {
			return &types.TransferStatus{
				Status:      types.TransferStatusSigned,
				Id:          ethTxId,
				Expiration:  expirationMs(-2 * time.Minute),
				KoinosToken: koinosRecipient,
			}, nil
		},
	}

	orchestrator := testOrchestrator(&chains.MockAdapter{}, destination, signer, nil)
	orchestrator.setTransfer(&types.TransferRequest{
		SourceChain:             utils.ChainEthereum,
		DestinationChain:        utils.ChainKoinos,
		InitiatingTransactionId: ethTxId,
		CorrelationId:           ethTxId,
	}, types.StateAwaitingSignatures)

	err := orchestrator.CheckStatus(context.Background())

	expiredErr := &types.ExpiredSignaturesErr{}
	require.True(t, errors.As(err, &expiredErr))
	require.False(t, expiredErr.Resignable)
	require.True(t, expiredErr.EstimatedWait > 0)
	require.False(t, completeCalled)
}

func TestCheckStatus_ExpiredBeyondCooldown(t *testing.T) {
	signer := &signing.MockClient{
		GetTransactionFunc: func(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error) {
			return &types.TransferStatus{
				Status:      types.TransferStatusSigned,
				Id:          ethTxId,
				Expiration:  expirationMs(-2 * time.Hour),
				KoinosToken: koinosRecipient,
			}, nil
		},
	}

	orchestrator := testOrchestrator(&chains.MockAdapter{}, &chains.MockAdapter{}, signer, nil)
	orchestrator.setTransfer(&types.TransferRequest{
		SourceChain:             utils.ChainEthereum,
		DestinationChain:        utils.ChainKoinos,
		InitiatingTransactionId: ethTxId,
		CorrelationId:           ethTxId,
	}, types.StateAwaitingSignatures)

	err := orchestrator.CheckStatus(context.Background())

	expiredErr := &types.ExpiredSignaturesErr{}
	require.True(t, errors.As(err, &expiredErr))
	require.True(t, expiredErr.Resignable)
}

func TestRequestResign(t *testing.T) {
	var resignTxId, resignOpId string

	source := &chains.MockAdapter{
		RequestResignFunc: func(ctx context.Context, txId, opId string) (string, error) {
			resignTxId = txId
			resignOpId = opId
			return koinosTxId, nil
		},
	}

	orchestrator := testOrchestrator(&chains.MockAdapter{}, source, nil, nil)
	orchestrator.setTransfer(&types.TransferRequest{
		SourceChain:             utils.ChainKoinos,
		DestinationChain:        utils.ChainEthereum,
		InitiatingTransactionId: koinosTxId,
		CorrelationId:           "3",
	}, types.StateAwaitingSignatures)

	err := orchestrator.RequestResign(context.Background())
	require.Nil(t, err)
	require.Equal(t, koinosTxId, resignTxId)
	require.Equal(t, "3", resignOpId)

	// A re-sign never completes the transfer, it restarts the quorum.
	require.Equal(t, types.StateAwaitingSignatures, orchestrator.State())
}

func TestResume(t *testing.T) {
	source := &chains.MockAdapter{
		CorrelationIdFunc: func(ctx context.Context, txId string) (string, error) {
			require.Equal(t, koinosTxId, txId)
			return "3", nil
		},
	}

	db := &database.MockDb{
		LoadLastInitiatedTxFunc: func() (string, error) {
			return koinosTxId, nil
		},
	}

	orchestrator := testOrchestrator(&chains.MockAdapter{}, source, nil, db)

	err := orchestrator.Resume(context.Background())
	require.Nil(t, err)
	require.Equal(t, types.StateAwaitingSignatures, orchestrator.State())

	req := orchestrator.Request()
	require.Equal(t, utils.ChainKoinos, req.SourceChain)
	require.Equal(t, utils.ChainEthereum, req.DestinationChain)
	require.Equal(t, koinosTxId, req.InitiatingTransactionId)
	require.Equal(t, "3", req.CorrelationId)
}

func TestResume_NothingPersisted(t *testing.T) {
	orchestrator := testOrchestrator(&chains.MockAdapter{}, &chains.MockAdapter{}, nil, &database.MockDb{})

	err := orchestrator.Resume(context.Background())

	validationErr := &types.ValidationErr{}
	require.True(t, errors.As(err, &validationErr))
}

func TestCheckStatus_RejectsConcurrentCall(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	signer := &signing.MockClient{
		GetTransactionFunc: func(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error) {
			close(entered)
			<-release

			return &types.TransferStatus{Status: types.TransferStatusPending}, nil
		},
	}

	orchestrator := testOrchestrator(&chains.MockAdapter{}, &chains.MockAdapter{}, signer, nil)
	orchestrator.setTransfer(&types.TransferRequest{
		SourceChain:             utils.ChainEthereum,
		DestinationChain:        utils.ChainKoinos,
		InitiatingTransactionId: ethTxId,
		CorrelationId:           ethTxId,
	}, types.StateAwaitingSignatures)

	var wg sync.WaitGroup
	var firstErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = orchestrator.CheckStatus(context.Background())
	}()

	<-entered
	secondErr := orchestrator.CheckStatus(context.Background())
	close(release)
	wg.Wait()

	busyErr := &types.BusyErr{}
	require.True(t, errors.As(secondErr, &busyErr))
	require.Equal(t, ethTxId, busyErr.TransactionId)

	notReady := &types.NotReadyErr{}
	require.True(t, errors.As(firstErr, &notReady))
}

func TestHistoryFailureDoesNotFailTransfer(t *testing.T) {
	db := &database.MockDb{
		AppendHistoryFunc: func(entry *types.HistoryEntry) error {
			return errors.New("disk full")
		},
	}

	source := &chains.MockAdapter{
		LockFunc: func(ctx context.Context, asset config.Asset, normalizedAmount, recipient string) (string, error) {
			return ethTxId, nil
		},
	}

	orchestrator := testOrchestrator(source, &chains.MockAdapter{}, nil, db)

	err := orchestrator.Initiate(context.Background(), ethToKoinosRequest())
	require.Nil(t, err)
	require.Equal(t, types.StateAwaitingSignatures, orchestrator.State())
}
