package database

import "github.com/koinos-bridge/bridge-client/types"

type MockDb struct {
	InitFunc                func() error
	AppendHistoryFunc       func(entry *types.HistoryEntry) error
	LoadHistoryFunc         func() ([]*types.HistoryEntry, error)
	SaveLastInitiatedTxFunc func(txId string) error
	LoadLastInitiatedTxFunc func() (string, error)
}

func (mock *MockDb) Init() error {
	if mock.InitFunc != nil {
		return mock.InitFunc()
	}

	return nil
}

func (mock *MockDb) AppendHistory(entry *types.HistoryEntry) error {
	if mock.AppendHistoryFunc != nil {
		return mock.AppendHistoryFunc(entry)
	}

	return nil
}

func (mock *MockDb) LoadHistory() ([]*types.HistoryEntry, error) {
	if mock.LoadHistoryFunc != nil {
		return mock.LoadHistoryFunc()
	}

	return nil, nil
}

func (mock *MockDb) SaveLastInitiatedTx(txId string) error {
	if mock.SaveLastInitiatedTxFunc != nil {
		return mock.SaveLastInitiatedTxFunc(txId)
	}

	return nil
}

func (mock *MockDb) LoadLastInitiatedTx() (string, error) {
	if mock.LoadLastInitiatedTxFunc != nil {
		return mock.LoadLastInitiatedTxFunc()
	}

	return "", nil
}
