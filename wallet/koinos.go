package wallet

import (
	"context"
	"fmt"

	"github.com/ybbus/jsonrpc/v3"

	"github.com/koinos-bridge/bridge-client/chains/koinos"
)

// KoinosWallet forwards contract calls to a kondor-compatible signer daemon
// which encodes, signs and submits the operation with the user's key.
type KoinosWallet struct {
	client  jsonrpc.RPCClient
	address string
}

func NewKoinosWallet(url string, address string) *KoinosWallet {
	return &KoinosWallet{
		client:  jsonrpc.NewClient(url),
		address: address,
	}
}

func (w *KoinosWallet) Address() string {
	return w.address
}

func (w *KoinosWallet) SignAndSubmit(ctx context.Context, call *koinos.ContractCall) (string, error) {
	var result struct {
		TransactionId string `json:"transaction_id"`
	}

	err := w.client.CallFor(ctx, &result, "signer.sign_and_submit", map[string]interface{}{
		"signer":      w.address,
		"contract_id": call.ContractId,
		"method":      call.Method,
		"args":        call.Args,
	})
	if err != nil {
		return "", err
	}

	if result.TransactionId == "" {
		return "", fmt.Errorf("signer returned no transaction id")
	}

	return result.TransactionId, nil
}
