package koinos

import (
	"context"
	"fmt"

	"github.com/ybbus/jsonrpc/v3"
)

// Event is one entry of a transaction receipt's event list. The sequence
// number doubles as the bridge's operation id.
type Event struct {
	Sequence uint64   `json:"sequence"`
	Source   string   `json:"source"`
	Name     string   `json:"name"`
	Data     string   `json:"data"`
	Impacted []string `json:"impacted"`
}

type TransactionReceipt struct {
	Id     string  `json:"id"`
	Events []Event `json:"events"`
}

type BlockReceipt struct {
	Id                  string               `json:"id"`
	Height              uint64               `json:"height,string"`
	Events              []Event              `json:"events"`
	TransactionReceipts []TransactionReceipt `json:"transaction_receipts"`
}

type HeadInfo struct {
	HeadTopology struct {
		Id     string `json:"id"`
		Height uint64 `json:"height,string"`
	} `json:"head_topology"`
	LastIrreversibleBlock uint64 `json:"last_irreversible_block,string"`
}

// KoinosClient wraps the node's JSON-RPC endpoints used by the adapter so
// that tests can mock them.
type KoinosClient interface {
	GetTransactionBlocks(ctx context.Context, txId string) ([]string, error)
	GetBlockReceipt(ctx context.Context, blockId string) (*BlockReceipt, error)
	GetHeadInfo(ctx context.Context) (*HeadInfo, error)
}

type defaultKoinosClient struct {
	chain string
	rpc   jsonrpc.RPCClient
}

func NewKoinosClient(chain string, rpcUrl string) KoinosClient {
	return &defaultKoinosClient{
		chain: chain,
		rpc:   jsonrpc.NewClient(rpcUrl),
	}
}

// GetTransactionBlocks returns the ids of the blocks containing a
// transaction. An empty list means the transaction has not been included
// yet.
func (c *defaultKoinosClient) GetTransactionBlocks(ctx context.Context, txId string) ([]string, error) {
	var result struct {
		Transactions []struct {
			ContainingBlocks []string `json:"containing_blocks"`
		} `json:"transactions"`
	}

	err := c.rpc.CallFor(ctx, &result, "transaction_store.get_transactions_by_id", map[string]interface{}{
		"transaction_ids": []string{txId},
	})
	if err != nil {
		return nil, fmt.Errorf("get_transactions_by_id failed: %w", err)
	}

	if len(result.Transactions) == 0 {
		return nil, nil
	}

	return result.Transactions[0].ContainingBlocks, nil
}

func (c *defaultKoinosClient) GetBlockReceipt(ctx context.Context, blockId string) (*BlockReceipt, error) {
	var result struct {
		BlockItems []struct {
			BlockId     string        `json:"block_id"`
			BlockHeight uint64        `json:"block_height,string"`
			Receipt     *BlockReceipt `json:"receipt"`
		} `json:"block_items"`
	}

	err := c.rpc.CallFor(ctx, &result, "block_store.get_blocks_by_id", map[string]interface{}{
		"block_ids":      []string{blockId},
		"return_block":   false,
		"return_receipt": true,
	})
	if err != nil {
		return nil, fmt.Errorf("get_blocks_by_id failed: %w", err)
	}

	if len(result.BlockItems) == 0 || result.BlockItems[0].Receipt == nil {
		return nil, fmt.Errorf("no receipt for block %s", blockId)
	}

	receipt := result.BlockItems[0].Receipt
	receipt.Id = result.BlockItems[0].BlockId
	receipt.Height = result.BlockItems[0].BlockHeight

	return receipt, nil
}

func (c *defaultKoinosClient) GetHeadInfo(ctx context.Context) (*HeadInfo, error) {
	head := &HeadInfo{}
	err := c.rpc.CallFor(ctx, head, "chain.get_head_info", map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("get_head_info failed: %w", err)
	}

	return head, nil
}
