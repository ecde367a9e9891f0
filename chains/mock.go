package chains

import (
	"context"

	"github.com/koinos-bridge/bridge-client/config"
	"github.com/koinos-bridge/bridge-client/types"
)

type MockAdapter struct {
	ChainFunc         func() string
	LockFunc          func(ctx context.Context, asset config.Asset, normalizedAmount, recipient string) (string, error)
	ApproveFunc       func(ctx context.Context, asset config.Asset) (string, error)
	AwaitFinalityFunc func(ctx context.Context, txId string) (*Receipt, error)
	CorrelationIdFunc func(ctx context.Context, txId string) (string, error)
	CompleteFunc      func(ctx context.Context, auth *types.SignedAuthorization) (string, error)
	RequestResignFunc func(ctx context.Context, txId, opId string) (string, error)
}

func (mock *MockAdapter) Chain() string {
	if mock.ChainFunc != nil {
		return mock.ChainFunc()
	}

	return ""
}

func (mock *MockAdapter) Lock(ctx context.Context, asset config.Asset, normalizedAmount, recipient string) (string, error) {
	if mock.LockFunc != nil {
		return mock.LockFunc(ctx, asset, normalizedAmount, recipient)
	}

	return "", nil
}

func (mock *MockAdapter) Approve(ctx context.Context, asset config.Asset) (string, error) {
	if mock.ApproveFunc != nil {
		return mock.ApproveFunc(ctx, asset)
	}

	return "", nil
}

func (mock *MockAdapter) AwaitFinality(ctx context.Context, txId string) (*Receipt, error) {
	if mock.AwaitFinalityFunc != nil {
		return mock.AwaitFinalityFunc(ctx, txId)
	}

	return &Receipt{TxId: txId, Success: true}, nil
}

func (mock *MockAdapter) CorrelationId(ctx context.Context, txId string) (string, error) {
	if mock.CorrelationIdFunc != nil {
		return mock.CorrelationIdFunc(ctx, txId)
	}

	return txId, nil
}

func (mock *MockAdapter) Complete(ctx context.Context, auth *types.SignedAuthorization) (string, error) {
	if mock.CompleteFunc != nil {
		return mock.CompleteFunc(ctx, auth)
	}

	return "", nil
}

func (mock *MockAdapter) RequestResign(ctx context.Context, txId, opId string) (string, error) {
	if mock.RequestResignFunc != nil {
		return mock.RequestResignFunc(ctx, txId, opId)
	}

	return "", nil
}
