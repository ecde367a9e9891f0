package main

import (
	"os"

	"github.com/ethereum/go-ethereum/common"
	ethRpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/joho/godotenv"
	"github.com/sisu-network/lib/log"

	"github.com/koinos-bridge/bridge-client/chains"
	"github.com/koinos-bridge/bridge-client/chains/eth"
	"github.com/koinos-bridge/bridge-client/chains/koinos"
	"github.com/koinos-bridge/bridge-client/config"
	"github.com/koinos-bridge/bridge-client/core"
	"github.com/koinos-bridge/bridge-client/database"
	"github.com/koinos-bridge/bridge-client/network"
	"github.com/koinos-bridge/bridge-client/server"
	"github.com/koinos-bridge/bridge-client/signing"
	"github.com/koinos-bridge/bridge-client/utils"
	"github.com/koinos-bridge/bridge-client/wallet"
)

func initialize() (*config.Bridge, database.Database) {
	// A missing .env is fine, config can come from the file alone.
	if err := godotenv.Load(); err != nil {
		log.Verbose("No .env file found")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./bridge.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	db := database.NewDb(&cfg)
	if err := db.Init(); err != nil {
		panic(err)
	}

	return &cfg, db
}

func setupAdapters(cfg *config.Bridge) map[string]chains.Adapter {
	adapters := make(map[string]chains.Adapter)

	for id, chainCfg := range cfg.Chains {
		switch id {
		case utils.ChainEthereum:
			ethWallet, err := wallet.NewEthWallet(chainCfg.WalletUrl,
				common.HexToAddress(os.Getenv("ETHEREUM_ACCOUNT")))
			if err != nil {
				panic(err)
			}

			adapter, err := eth.NewAdapter(chainCfg, cfg, eth.NewEthClient(id, chainCfg.Rpcs), ethWallet)
			if err != nil {
				panic(err)
			}
			adapters[id] = adapter

		case utils.ChainKoinos:
			koinosWallet := wallet.NewKoinosWallet(chainCfg.WalletUrl, os.Getenv("KOINOS_ACCOUNT"))
			adapters[id] = koinos.NewAdapter(chainCfg, cfg,
				koinos.NewKoinosClient(id, chainCfg.Rpcs[0]), koinosWallet)

		default:
			panic("unknown chain " + id)
		}
	}

	return adapters
}

func main() {
	cfg, db := initialize()

	adapters := setupAdapters(cfg)
	signer := signing.NewClient(cfg.SigningServiceUrl, network.NewHttp(cfg.RpcTimeout()))
	orchestrator := core.NewOrchestrator(cfg, adapters, signer, db)

	handler := ethRpc.NewServer()
	if err := handler.RegisterName("bridge", server.NewApi(orchestrator, cfg)); err != nil {
		panic(err)
	}

	s := server.NewServer(handler, cfg.ServerPort)
	s.Run()
}
