package signing

import (
	"context"

	"github.com/koinos-bridge/bridge-client/types"
)

type MockClient struct {
	GetTransactionFunc func(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error)
}

func (mock *MockClient) GetTransaction(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error) {
	if mock.GetTransactionFunc != nil {
		return mock.GetTransactionFunc(ctx, transactionId, opId)
	}

	return nil, nil
}
