package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sisu-network/lib/log"

	"github.com/koinos-bridge/bridge-client/chains"
	"github.com/koinos-bridge/bridge-client/config"
	"github.com/koinos-bridge/bridge-client/types"
	"github.com/koinos-bridge/bridge-client/utils"
)

const (
	erc20AbiJson = `[
		{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
	]`

	bridgeAbiJson = `[
		{"name":"transferTokens","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"},{"name":"recipient","type":"string"}],"outputs":[]},
		{"name":"completeTransfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"txId","type":"bytes"},{"name":"operationId","type":"uint256"},{"name":"token","type":"address"},{"name":"recipient","type":"address"},{"name":"value","type":"uint256"},{"name":"expiration","type":"uint256"},{"name":"signatures","type":"bytes[]"}],"outputs":[]},
		{"name":"requestNewSignatures","type":"function","stateMutability":"nonpayable","inputs":[{"name":"txId","type":"bytes"},{"name":"operationId","type":"uint256"}],"outputs":[]}
	]`

	receiptRetryTime = 5 * time.Second
	maxReceiptRetry  = 12
)

type Adapter struct {
	cfg           config.Chain
	client        EthClient
	wallet        Wallet
	walletTimeout time.Duration
	rpcTimeout    time.Duration

	erc20Abi  abi.ABI
	bridgeAbi abi.ABI
}

func NewAdapter(cfg config.Chain, bridgeCfg *config.Bridge, client EthClient, wallet Wallet) (*Adapter, error) {
	erc20Abi, err := abi.JSON(strings.NewReader(erc20AbiJson))
	if err != nil {
		return nil, err
	}

	bridgeAbi, err := abi.JSON(strings.NewReader(bridgeAbiJson))
	if err != nil {
		return nil, err
	}

	return &Adapter{
		cfg:           cfg,
		client:        client,
		wallet:        wallet,
		walletTimeout: bridgeCfg.WalletTimeout(),
		rpcTimeout:    bridgeCfg.RpcTimeout(),
		erc20Abi:      erc20Abi,
		bridgeAbi:     bridgeAbi,
	}, nil
}

func (a *Adapter) Chain() string {
	return utils.ChainEthereum
}

func (a *Adapter) Lock(ctx context.Context, asset config.Asset, normalizedAmount, recipient string) (string, error) {
	token := common.HexToAddress(asset.Addresses[a.Chain()])
	amount, ok := new(big.Int).SetString(normalizedAmount, 10)
	if !ok {
		return "", types.NewValidationErr("amount %q is not an integer", normalizedAmount)
	}

	// Check the bridge allowance before attempting the transfer. A transfer
	// without allowance is a guaranteed revert and would only burn gas.
	allowance, err := a.allowance(ctx, token)
	if err != nil {
		return "", types.NewSubmissionErr(a.Chain(), "cannot read allowance for token %s: %v", token, err)
	}

	if allowance.Cmp(amount) < 0 {
		return "", types.NewInsufficientAllowanceErr(a.Chain(), token.String(), allowance.String())
	}

	data, err := a.bridgeAbi.Pack("transferTokens", token, amount, recipient)
	if err != nil {
		return "", err
	}

	return a.submit(ctx, "lock", common.HexToAddress(a.cfg.BridgeAddress), data)
}

func (a *Adapter) Approve(ctx context.Context, asset config.Asset) (string, error) {
	token := common.HexToAddress(asset.Addresses[a.Chain()])

	// Unlimited allowance so the approval flow runs at most once per token.
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	data, err := a.erc20Abi.Pack("approve", common.HexToAddress(a.cfg.BridgeAddress), max)
	if err != nil {
		return "", err
	}

	return a.submit(ctx, "approve", token, data)
}

func (a *Adapter) AwaitFinality(ctx context.Context, txId string) (*chains.Receipt, error) {
	hash := common.HexToHash(txId)

	for retry := 0; ; retry++ {
		callCtx, cancel := context.WithTimeout(ctx, a.rpcTimeout)
		receipt, err := a.client.TransactionReceipt(callCtx, hash)
		cancel()

		if err == nil && receipt != nil {
			if receipt.Status == 0 {
				return nil, types.NewRejectedErr(a.Chain(), fmt.Sprintf("transaction %s reverted", txId))
			}

			return &chains.Receipt{
				TxId:        txId,
				BlockId:     receipt.BlockHash.String(),
				BlockHeight: receipt.BlockNumber.Int64(),
				Success:     true,
			}, nil
		}

		if retry == maxReceiptRetry {
			return nil, types.NewTimeoutErr(a.Chain(), "await finality", time.Duration(maxReceiptRetry)*receiptRetryTime)
		}

		select {
		case <-ctx.Done():
			return nil, types.NewTimeoutErr(a.Chain(), "await finality", a.rpcTimeout)
		case <-time.After(receiptRetryTime):
		}
	}
}

// CorrelationId on Ethereum is the lock transaction hash itself.
func (a *Adapter) CorrelationId(ctx context.Context, txId string) (string, error) {
	if !utils.IsEthereumTxId(txId) {
		return "", types.NewChainMismatchErr(a.Chain(), txId)
	}

	return txId, nil
}

func (a *Adapter) Complete(ctx context.Context, auth *types.SignedAuthorization) (string, error) {
	txId, err := hexutil.Decode(auth.TransactionId)
	if err != nil {
		return "", types.NewValidationErr("authorization transaction id %q is not hex", auth.TransactionId)
	}

	value, ok := new(big.Int).SetString(auth.Amount, 10)
	if !ok {
		return "", types.NewValidationErr("authorization amount %q is not an integer", auth.Amount)
	}

	expiration, ok := new(big.Int).SetString(auth.Expiration, 10)
	if !ok {
		return "", types.NewValidationErr("authorization expiration %q is not an integer", auth.Expiration)
	}

	opId := big.NewInt(0)
	if auth.OpId != "" {
		opId, ok = new(big.Int).SetString(auth.OpId, 10)
		if !ok {
			return "", types.NewValidationErr("authorization op id %q is not an integer", auth.OpId)
		}
	}

	signatures := make([][]byte, 0, len(auth.Signatures))
	for _, sig := range auth.Signatures {
		bz, err := hexutil.Decode(sig)
		if err != nil {
			return "", types.NewValidationErr("signature %q is not hex", sig)
		}
		signatures = append(signatures, bz)
	}

	data, err := a.bridgeAbi.Pack("completeTransfer", txId, opId,
		common.HexToAddress(auth.Token), common.HexToAddress(auth.Recipient), value, expiration, signatures)
	if err != nil {
		return "", err
	}

	hash, err := a.submit(ctx, "complete", common.HexToAddress(a.cfg.BridgeAddress), data)
	if err != nil && strings.Contains(err.Error(), "expired") {
		return "", types.NewExpiredAuthorizationErr(auth.TransactionId)
	}

	return hash, err
}

func (a *Adapter) RequestResign(ctx context.Context, txId, opId string) (string, error) {
	bz, err := hexutil.Decode(txId)
	if err != nil {
		return "", types.NewValidationErr("transaction id %q is not hex", txId)
	}

	opIdInt := big.NewInt(0)
	if opId != "" {
		var ok bool
		opIdInt, ok = new(big.Int).SetString(opId, 10)
		if !ok {
			return "", types.NewValidationErr("op id %q is not an integer", opId)
		}
	}

	data, err := a.bridgeAbi.Pack("requestNewSignatures", bz, opIdInt)
	if err != nil {
		return "", err
	}

	return a.submit(ctx, "request resign", common.HexToAddress(a.cfg.BridgeAddress), data)
}

func (a *Adapter) allowance(ctx context.Context, token common.Address) (*big.Int, error) {
	data, err := a.erc20Abi.Pack("allowance", a.wallet.Address(), common.HexToAddress(a.cfg.BridgeAddress))
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, a.rpcTimeout)
	defer cancel()

	bz, err := a.client.CallContract(callCtx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, err
	}

	out, err := a.erc20Abi.Unpack("allowance", bz)
	if err != nil {
		return nil, err
	}

	return out[0].(*big.Int), nil
}

// submit sends a contract call through the wallet with a bounded wait. A
// timeout means the outcome is unknown, not failed; the transaction may
// still land.
func (a *Adapter) submit(ctx context.Context, op string, to common.Address, data []byte) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.walletTimeout)
	defer cancel()

	hash, err := a.wallet.SendTransaction(callCtx, to, data)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return "", types.NewTimeoutErr(a.Chain(), op, a.walletTimeout)
		case strings.Contains(strings.ToLower(err.Error()), "denied"),
			strings.Contains(strings.ToLower(err.Error()), "rejected"):
			return "", types.NewRejectedErr(a.Chain(), err.Error())
		}

		return "", types.NewSubmissionErr(a.Chain(), "%s failed: %v", op, err)
	}

	log.Verbosef("Submitted %s tx on %s, hash = %s", op, a.Chain(), hash.String())

	return hash.String(), nil
}
