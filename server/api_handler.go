package server

import (
	"context"
	"fmt"

	"github.com/koinos-bridge/bridge-client/config"
	"github.com/koinos-bridge/bridge-client/core"
	"github.com/koinos-bridge/bridge-client/types"
)

// ApiHandler is the JSON-RPC surface a UI layer drives transfers through.
// It is a thin passthrough; all lifecycle rules live in the orchestrator.
type ApiHandler struct {
	orchestrator *core.Orchestrator
	cfg          *config.Bridge
}

func NewApi(orchestrator *core.Orchestrator, cfg *config.Bridge) *ApiHandler {
	return &ApiHandler{
		orchestrator: orchestrator,
		cfg:          cfg,
	}
}

// Empty function for checking health only.
func (api *ApiHandler) CheckHealth() {
}

func (api *ApiHandler) Initiate(ctx context.Context, req *types.TransferRequest) (*types.TransferRequest, error) {
	if err := api.orchestrator.Initiate(ctx, req); err != nil {
		return nil, err
	}

	return api.orchestrator.Request(), nil
}

func (api *ApiHandler) CheckStatus(ctx context.Context) (string, error) {
	err := api.orchestrator.CheckStatus(ctx)
	return api.orchestrator.State().String(), err
}

func (api *ApiHandler) RequestResign(ctx context.Context) (string, error) {
	err := api.orchestrator.RequestResign(ctx)
	return api.orchestrator.State().String(), err
}

func (api *ApiHandler) Resume(ctx context.Context) (*types.TransferRequest, error) {
	if err := api.orchestrator.Resume(ctx); err != nil {
		return nil, err
	}

	return api.orchestrator.Request(), nil
}

func (api *ApiHandler) Approve(ctx context.Context, chain, assetId string) (string, error) {
	return api.orchestrator.Approve(ctx, chain, assetId)
}

func (api *ApiHandler) State() string {
	return api.orchestrator.State().String()
}

// HistoryItem decorates a history entry with the chain's explorer link the
// way the UI renders it.
type HistoryItem struct {
	types.HistoryEntry
	ExplorerUrl string `json:"explorer_url"`
}

func (api *ApiHandler) History() ([]*HistoryItem, error) {
	entries, err := api.orchestrator.History()
	if err != nil {
		return nil, err
	}

	ret := make([]*HistoryItem, 0, len(entries))
	for _, entry := range entries {
		item := &HistoryItem{HistoryEntry: *entry}
		if tmpl := api.cfg.Chains[entry.Chain].ExplorerTxUrl; tmpl != "" {
			item.ExplorerUrl = fmt.Sprintf(tmpl, entry.TxId)
		}

		ret = append(ret, item)
	}

	return ret, nil
}
