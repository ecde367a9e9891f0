package eth

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sisu-network/lib/log"
)

// A wrapper around eth.client so that we can mock in adapter tests.
type EthClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

type defaultEthClient struct {
	chain   string
	clients []*ethclient.Client
	rpcs    []string
}

func NewEthClient(chain string, rpcs []string) EthClient {
	clients := make([]*ethclient.Client, 0)
	urls := make([]string, 0)

	for _, rpc := range rpcs {
		client, err := ethclient.Dial(rpc)
		if err != nil {
			log.Errorf("Cannot dial eth rpc %s, err = %v", rpc, err)
			continue
		}

		log.Info("Adding eth client at rpc: ", rpc)
		clients = append(clients, client)
		urls = append(urls, rpc)
	}

	return &defaultEthClient{
		chain:   chain,
		clients: clients,
		rpcs:    urls,
	}
}

// execute runs f against each client until one answers.
func (c *defaultEthClient) execute(f func(client *ethclient.Client) (any, error)) (any, error) {
	var err error
	var ret any

	for i, client := range c.clients {
		ret, err = f(client)
		if err == nil {
			return ret, nil
		}

		log.Verbosef("rpc %s failed for chain %s, err = %v", c.rpcs[i], c.chain, err)
	}

	if err == nil {
		err = NewNoHealthyClientErr(c.chain)
	}

	return ret, err
}

func (c *defaultEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	num, err := c.execute(func(client *ethclient.Client) (any, error) {
		return client.BlockNumber(ctx)
	})
	if err != nil {
		return 0, err
	}

	return num.(uint64), nil
}

func (c *defaultEthClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	bz, err := c.execute(func(client *ethclient.Client) (any, error) {
		return client.CallContract(ctx, msg, blockNumber)
	})
	if err != nil {
		return nil, err
	}

	return bz.([]byte), nil
}

func (c *defaultEthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	receipt, err := c.execute(func(client *ethclient.Client) (any, error) {
		return client.TransactionReceipt(ctx, txHash)
	})
	if err != nil {
		return nil, err
	}

	return receipt.(*ethtypes.Receipt), nil
}
