package koinos

import "context"

type MockKoinosClient struct {
	GetTransactionBlocksFunc func(ctx context.Context, txId string) ([]string, error)
	GetBlockReceiptFunc      func(ctx context.Context, blockId string) (*BlockReceipt, error)
	GetHeadInfoFunc          func(ctx context.Context) (*HeadInfo, error)
}

func (mock *MockKoinosClient) GetTransactionBlocks(ctx context.Context, txId string) ([]string, error) {
	if mock.GetTransactionBlocksFunc != nil {
		return mock.GetTransactionBlocksFunc(ctx, txId)
	}

	return nil, nil
}

func (mock *MockKoinosClient) GetBlockReceipt(ctx context.Context, blockId string) (*BlockReceipt, error) {
	if mock.GetBlockReceiptFunc != nil {
		return mock.GetBlockReceiptFunc(ctx, blockId)
	}

	return nil, nil
}

func (mock *MockKoinosClient) GetHeadInfo(ctx context.Context) (*HeadInfo, error) {
	if mock.GetHeadInfoFunc != nil {
		return mock.GetHeadInfoFunc(ctx)
	}

	return nil, nil
}

type MockWallet struct {
	AddressFunc       func() string
	SignAndSubmitFunc func(ctx context.Context, call *ContractCall) (string, error)
}

func (mock *MockWallet) Address() string {
	if mock.AddressFunc != nil {
		return mock.AddressFunc()
	}

	return ""
}

func (mock *MockWallet) SignAndSubmit(ctx context.Context, call *ContractCall) (string, error) {
	if mock.SignAndSubmitFunc != nil {
		return mock.SignAndSubmitFunc(ctx, call)
	}

	return "", nil
}
