package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrTxNotFound means the chain does not (yet) know the signature. The
// transaction may still be propagating, so callers should surface this as
// "retry later" rather than a permanent failure. The client itself never
// retries.
var ErrTxNotFound = errors.New("transaction not found on chain")

// Client is a thin JSON-RPC client for the Solana HTTP endpoint. It is a pure
// lookup: no backoff, no caching, no state beyond the connection pool.
type Client struct {
	Config Config
	HTTP   *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		Config: cfg,
		HTTP: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// TransactionResult is the subset of getTransaction output the ledger cares
// about: enough to prove the signature landed and whether it errored.
type TransactionResult struct {
	Slot      uint64 `json:"slot"`
	BlockTime *int64 `json:"blockTime"`
	Meta      *struct {
		Err json.RawMessage `json:"err"`
		Fee uint64          `json:"fee"`
	} `json:"meta"`
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// GetTransaction looks up a transaction by signature, requesting the highest
// supported transaction version. Returns ErrTxNotFound when the RPC node
// answers with a null result.
func (c *Client) GetTransaction(ctx context.Context, txSignature string) (*TransactionResult, error) {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getTransaction",
		Params: []interface{}{
			txSignature,
			map[string]interface{}{
				"commitment":                     "confirmed",
				"maxSupportedTransactionVersion": 0,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.RPCURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		zap.S().Errorf("[Solana] RPC returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("rpc returned status %d", resp.StatusCode)
	}

	var out rpcResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	if out.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", out.Error.Code, out.Error.Message)
	}

	if len(out.Result) == 0 || bytes.Equal(out.Result, []byte("null")) {
		return nil, ErrTxNotFound
	}

	var tx TransactionResult
	if err := json.Unmarshal(out.Result, &tx); err != nil {
		return nil, err
	}

	return &tx, nil
}
