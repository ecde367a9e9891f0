package signing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/koinos-bridge/bridge-client/network"
	"github.com/koinos-bridge/bridge-client/types"
)

// The service answers this exact body (non-200) while the validators have
// not seen the lock transaction yet. It is a "retry later", not a failure.
const msgTransactionDoesNotExist = "transaction does not exist"

// Client polls the validator signing service for a transfer's co-signing
// progress. One request per call; retry cadence is the caller's business.
type Client interface {
	GetTransaction(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error)
}

type defaultClient struct {
	baseUrl string
	http    network.Http
}

func NewClient(baseUrl string, http network.Http) Client {
	return &defaultClient{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		http:    http,
	}
}

func (c *defaultClient) GetTransaction(ctx context.Context, transactionId, opId string) (*types.TransferStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+"/GetTransaction", nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Add("TransactionId", transactionId)
	if opId != "" {
		q.Add("OpId", opId)
	}
	req.URL.RawQuery = q.Encode()

	status, body, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		if strings.Contains(string(body), msgTransactionDoesNotExist) {
			return nil, types.NewNotReadyErr(transactionId)
		}

		return nil, fmt.Errorf("signing service returned status %d: %s", status, string(body))
	}

	ret := &types.TransferStatus{}
	if err := json.Unmarshal(body, ret); err != nil {
		return nil, fmt.Errorf("cannot decode signing service response: %w", err)
	}

	return ret, nil
}
