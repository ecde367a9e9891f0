package eth

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

type MockEthClient struct {
	BlockNumberFunc        func(ctx context.Context) (uint64, error)
	CallContractFunc       func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceiptFunc func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

func (mock *MockEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	if mock.BlockNumberFunc != nil {
		return mock.BlockNumberFunc(ctx)
	}

	return 0, nil
}

func (mock *MockEthClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if mock.CallContractFunc != nil {
		return mock.CallContractFunc(ctx, msg, blockNumber)
	}

	return nil, nil
}

func (mock *MockEthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	if mock.TransactionReceiptFunc != nil {
		return mock.TransactionReceiptFunc(ctx, txHash)
	}

	return nil, nil
}

type MockWallet struct {
	AddressFunc         func() common.Address
	SendTransactionFunc func(ctx context.Context, to common.Address, data []byte) (common.Hash, error)
}

func (mock *MockWallet) Address() common.Address {
	if mock.AddressFunc != nil {
		return mock.AddressFunc()
	}

	return common.Address{}
}

func (mock *MockWallet) SendTransaction(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	if mock.SendTransactionFunc != nil {
		return mock.SendTransactionFunc(ctx, to, data)
	}

	return common.Hash{}, nil
}
