package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	koinosTxId   = "0x1220a3b40c91f1173f72cabb1eba84a9a03e1b7eaa1d356d8e33a4e4b030cca84a2f"
	ethereumTxId = "0xa3b40c91f1173f72cabb1eba84a9a03e1b7eaa1d356d8e33a4e4b030cca84a2f"
)

func TestChainFromTxId(t *testing.T) {
	chain, err := ChainFromTxId(koinosTxId)
	require.Nil(t, err)
	require.Equal(t, ChainKoinos, chain)

	chain, err = ChainFromTxId(ethereumTxId)
	require.Nil(t, err)
	require.Equal(t, ChainEthereum, chain)

	_, err = ChainFromTxId("0x1234")
	require.NotNil(t, err)

	_, err = ChainFromTxId("")
	require.NotNil(t, err)
}

func TestTxIdMatchesChain(t *testing.T) {
	require.True(t, TxIdMatchesChain(ChainKoinos, koinosTxId))
	require.True(t, TxIdMatchesChain(ChainEthereum, ethereumTxId))

	// A koinos multihash id is not a valid ethereum hash and vice versa.
	require.False(t, TxIdMatchesChain(ChainEthereum, koinosTxId))
	require.False(t, TxIdMatchesChain(ChainKoinos, ethereumTxId))

	require.False(t, TxIdMatchesChain("bitcoin", koinosTxId))
}

func TestIsValidAddress(t *testing.T) {
	require.True(t, IsValidAddress(ChainKoinos, "19JntSm8pSNETT9aHTwAUHC5RMoaSmgZPJ"))
	require.True(t, IsValidAddress(ChainEthereum, "0xeA756978B2D8754b0f92CAc325880aa13AF38f88"))

	require.False(t, IsValidAddress(ChainKoinos, "0xeA756978B2D8754b0f92CAc325880aa13AF38f88"))
	require.False(t, IsValidAddress(ChainEthereum, "19JntSm8pSNETT9aHTwAUHC5RMoaSmgZPJ"))
	require.False(t, IsValidAddress(ChainKoinos, ""))
}
