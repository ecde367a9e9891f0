package utils

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

const (
	ChainKoinos   = "koinos"
	ChainEthereum = "ethereum"

	// Koinos transaction ids are hex-encoded multihashes: 0x1220 (sha256,
	// 32 bytes) followed by the 64-digit digest. Ethereum tx hashes are a
	// bare 64-digit digest behind 0x, so the two formats never collide.
	koinosTxIdLen   = 2 + 4 + 64
	ethereumTxIdLen = 2 + 64
)

func IsKoinosTxId(txId string) bool {
	if len(txId) != koinosTxIdLen || !strings.HasPrefix(txId, "0x1220") {
		return false
	}

	return isHex(txId[2:])
}

func IsEthereumTxId(txId string) bool {
	if len(txId) != ethereumTxIdLen || !strings.HasPrefix(txId, "0x") {
		return false
	}

	return isHex(txId[2:])
}

// ChainFromTxId infers which chain a transaction id belongs to from its
// format. Used to fail fast on chain/id mismatches before submitting a
// doomed completion transaction.
func ChainFromTxId(txId string) (string, error) {
	switch {
	case IsKoinosTxId(txId):
		return ChainKoinos, nil
	case IsEthereumTxId(txId):
		return ChainEthereum, nil
	}

	return "", fmt.Errorf("transaction id %q matches no known chain format", txId)
}

func TxIdMatchesChain(chain, txId string) bool {
	switch chain {
	case ChainKoinos:
		return IsKoinosTxId(txId)
	case ChainEthereum:
		return IsEthereumTxId(txId)
	}

	return false
}

// IsValidAddress checks an address against the given chain's format. Koinos
// uses bitcoin-style base58check addresses (25 byte payload).
func IsValidAddress(chain, addr string) bool {
	switch chain {
	case ChainKoinos:
		bz, err := base58.Decode(addr)
		return err == nil && len(bz) == 25
	case ChainEthereum:
		return common.IsHexAddress(addr)
	}

	return false
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}

	return true
}
