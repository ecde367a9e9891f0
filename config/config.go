package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultWalletTimeoutMs = 60_000
	DefaultRpcTimeoutMs    = 15_000

	// How long after signature expiration the bridge contract refuses a
	// re-sign request. Taken from the deployed contract; override per
	// deployment.
	DefaultResignCooldownMs = 3_702_000
)

type Chain struct {
	Chain         string   `toml:"chain"`
	Rpcs          []string `toml:"rpcs"`
	WalletUrl     string   `toml:"wallet_url"`
	BridgeAddress string   `toml:"bridge_address"`

	// Confirmations is how many blocks validators wait before signing a
	// lock on this chain. Only used to hint the caller how long to wait
	// between polls.
	Confirmations int `toml:"confirmations"`
	BlockTimeMs   int `toml:"block_time_ms"`

	// Template with a %s placeholder for a transaction id, e.g.
	// "https://goerli.etherscan.io/tx/%s".
	ExplorerTxUrl string `toml:"explorer_tx_url"`
}

type Asset struct {
	Id     string `toml:"id"`
	Symbol string `toml:"symbol"`
	Name   string `toml:"name"`

	// Contract address and decimal precision per chain id.
	Addresses map[string]string `toml:"addresses"`
	Decimals  map[string]int    `toml:"decimals"`
}

type Bridge struct {
	DbPath     string `toml:"db_path"`
	InMemoryDb bool   `toml:"in_memory_db"`

	ServerPort        int    `toml:"server_port"`
	SigningServiceUrl string `toml:"signing_service_url"`

	WalletTimeoutMs  int   `toml:"wallet_timeout_ms"`
	RpcTimeoutMs     int   `toml:"rpc_timeout_ms"`
	ResignCooldownMs int64 `toml:"resign_cooldown_ms"`

	Chains map[string]Chain `toml:"chains"`
	Assets map[string]Asset `toml:"assets"`
}

func (c *Bridge) WalletTimeout() time.Duration {
	return time.Duration(c.WalletTimeoutMs) * time.Millisecond
}

func (c *Bridge) RpcTimeout() time.Duration {
	return time.Duration(c.RpcTimeoutMs) * time.Millisecond
}

func (c *Bridge) ResignCooldown() time.Duration {
	return time.Duration(c.ResignCooldownMs) * time.Millisecond
}

func Load(path string) (Bridge, error) {
	cfg := Bridge{}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Bridge) {
	if cfg.WalletTimeoutMs == 0 {
		cfg.WalletTimeoutMs = DefaultWalletTimeoutMs
	}
	if cfg.RpcTimeoutMs == 0 {
		cfg.RpcTimeoutMs = DefaultRpcTimeoutMs
	}
	if cfg.ResignCooldownMs == 0 {
		cfg.ResignCooldownMs = DefaultResignCooldownMs
	}
	if cfg.DbPath == "" {
		cfg.DbPath = "bridge.db"
	}
}

func validate(cfg *Bridge) error {
	if cfg.SigningServiceUrl == "" {
		return fmt.Errorf("signing_service_url cannot be empty")
	}

	if len(cfg.Chains) != 2 {
		return fmt.Errorf("a bridge spans exactly two chains, config has %d", len(cfg.Chains))
	}

	for id, chain := range cfg.Chains {
		if chain.BridgeAddress == "" {
			return fmt.Errorf("chain %s has no bridge_address", id)
		}
		if len(chain.Rpcs) == 0 {
			return fmt.Errorf("chain %s has no rpcs", id)
		}
	}

	for id, asset := range cfg.Assets {
		for chainId := range cfg.Chains {
			if asset.Addresses[chainId] == "" {
				return fmt.Errorf("asset %s has no address on chain %s", id, chainId)
			}
			if _, ok := asset.Decimals[chainId]; !ok {
				return fmt.Errorf("asset %s has no decimals on chain %s", id, chainId)
			}
		}
	}

	return nil
}
