package koinos

import "context"

// ContractCall describes one contract invocation for the wallet to sign and
// submit. Argument encoding (protobuf, base64) is the wallet's concern; the
// adapter only names the call.
type ContractCall struct {
	ContractId string                 `json:"contract_id"`
	Method     string                 `json:"method"`
	Args       map[string]interface{} `json:"args"`
}

// Wallet is a kondor-style signer: it receives a contract call, has the user
// sign it, submits it to the chain and returns the transaction id.
type Wallet interface {
	Address() string
	SignAndSubmit(ctx context.Context, call *ContractCall) (string, error)
}
