package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sisu-network/lib/log"
)

// EthWallet submits contract calls through an external signer exposing the
// standard eth_sendTransaction endpoint (browser wallet bridge, unlocked
// node, keystore daemon). This client never touches key material.
type EthWallet struct {
	client *rpc.Client
	from   common.Address
}

func NewEthWallet(url string, from common.Address) (*EthWallet, error) {
	client, err := rpc.DialContext(context.Background(), url)
	if err != nil {
		return nil, err
	}

	log.Info("Eth wallet endpoint connected at ", url)

	return &EthWallet{
		client: client,
		from:   from,
	}, nil
}

func (w *EthWallet) Address() common.Address {
	return w.from
}

func (w *EthWallet) SendTransaction(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	var hash common.Hash

	err := w.client.CallContext(ctx, &hash, "eth_sendTransaction", map[string]interface{}{
		"from": w.from,
		"to":   to,
		"data": hexutil.Bytes(data),
	})

	return hash, err
}
