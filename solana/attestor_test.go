package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(rpcURL string) *Client {
	return NewClient(Config{Network: "devnet", RPCURL: rpcURL, USDCMint: USDCMintDevnet})
}

func TestGetTransactionFound(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"slot":123456,"blockTime":1700000000,"meta":{"err":null,"fee":5000}}}`))
	}))
	defer srv.Close()

	tx, err := newTestClient(srv.URL).GetTransaction(context.Background(), "sig123")
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), tx.Slot)
	require.NotNil(t, tx.BlockTime)
	assert.Equal(t, int64(1700000000), *tx.BlockTime)
	require.NotNil(t, tx.Meta)
	assert.Equal(t, uint64(5000), tx.Meta.Fee)

	// request shape
	assert.Equal(t, "getTransaction", gotBody["method"])
	params := gotBody["params"].([]interface{})
	assert.Equal(t, "sig123", params[0])
	opts := params[1].(map[string]interface{})
	assert.Equal(t, float64(0), opts["maxSupportedTransactionVersion"])
}

func TestGetTransactionNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetTransaction(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrTxNotFound)
}

func TestGetTransactionRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Invalid param: WrongSize"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetTransaction(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTxNotFound)
	assert.Contains(t, err.Error(), "Invalid param")
}

func TestGetTransactionHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetTransaction(context.Background(), "sig")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTxNotFound)
}

func TestGetTransactionTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	_, err := newTestClient(srv.URL).GetTransaction(context.Background(), "sig")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTxNotFound)
}
