package rpc_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/althash-leandro/altmask/internal/rpc"
	"github.com/althash-leandro/altmask/internal/rpc/rpctest"
	"github.com/althash-leandro/altmask/internal/shared"
)

var testNet = shared.Network{
	Name:        shared.TestNet,
	ChainParams: shared.ChainParams{ChainName: "test", PubKeyHashAddrID: 0x78},
}

func TestService_CachesPerNetwork(t *testing.T) {
	t.Parallel()

	var dials atomic.Int32
	fake := rpctest.New()
	svc, err := rpc.NewService(rpc.ServiceConfig{
		Endpoints:          map[shared.NetworkName]rpc.Endpoint{shared.TestNet: {URL: "http://node"}},
		HealthCheckTimeout: time.Second,
		Dial: func(context.Context, rpc.Endpoint) (rpc.ChainNode, error) {
			dials.Add(1)
			return fake, nil
		},
	})
	require.NoError(t, err)
	defer svc.Close()

	a, err := svc.NodeFor(context.Background(), testNet)
	require.NoError(t, err)
	b, err := svc.NodeFor(context.Background(), testNet)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, int32(1), dials.Load())

	_, err = svc.NodeFor(context.Background(), shared.Network{Name: shared.MainNet})
	assert.Error(t, err)
}

func TestService_RejectsWrongChain(t *testing.T) {
	t.Parallel()

	fake := rpctest.New()
	fake.SetChain("main")
	svc, err := rpc.NewService(rpc.ServiceConfig{
		Endpoints:          map[shared.NetworkName]rpc.Endpoint{shared.TestNet: {URL: "http://node"}},
		HealthCheckTimeout: time.Second,
		Dial: func(context.Context, rpc.Endpoint) (rpc.ChainNode, error) {
			return fake, nil
		},
	})
	require.NoError(t, err)

	_, err = svc.NodeFor(context.Background(), testNet)
	assert.ErrorContains(t, err, `serves chain "main"`)
}

func TestService_NoEndpoints(t *testing.T) {
	t.Parallel()

	_, err := rpc.NewService(rpc.ServiceConfig{})
	assert.Error(t, err)
}

// qtumd stub answering a single canned JSON-RPC result.
func jsonRPCServer(t *testing.T, result string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "qtum" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestQtumClient_CallContract(t *testing.T) {
	t.Parallel()

	srv := jsonRPCServer(t, `{"address":"ab","executionResult":{"excepted":"None","output":"0000000000000000000000000000000000000000000000000000000008f0d180"}}`)
	c, err := rpc.DialQtum(context.Background(), rpc.Endpoint{URL: srv.URL, User: "qtum", Password: "secret"})
	require.NoError(t, err)
	defer c.Close()

	raw, err := c.CallContract(context.Background(), rpc.CallRequest{ID: rpc.NextID(), ContractAddress: "ab", Data: []byte{1, 2, 3, 4}})
	require.NoError(t, err)
	require.Len(t, raw, 32)
	assert.Equal(t, byte(0x80), raw[31])
}

func TestQtumClient_Excepted(t *testing.T) {
	t.Parallel()

	srv := jsonRPCServer(t, `{"address":"ab","executionResult":{"excepted":"Revert","output":""}}`)
	c, err := rpc.DialQtum(context.Background(), rpc.Endpoint{URL: srv.URL, User: "qtum", Password: "secret"})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.CallContract(context.Background(), rpc.CallRequest{ID: 7, ContractAddress: "ab"})
	var rce *rpc.RemoteCallError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, "Revert", rce.Excepted)
	assert.Equal(t, uint64(7), rce.ID)
}

func TestQtumClient_SendAndChain(t *testing.T) {
	t.Parallel()

	srv := jsonRPCServer(t, `{"txid":"beef","sender":"qUser","hash160":"ab","chain":"regtest"}`)
	c, err := rpc.DialQtum(context.Background(), rpc.Endpoint{URL: srv.URL, User: "qtum", Password: "secret"})
	require.NoError(t, err)
	defer c.Close()

	res, err := c.SendToContract(context.Background(), rpc.SendRequest{
		ID: 1, ContractAddress: "ab", Data: []byte{1}, Amount: "0", GasLimit: 200000, GasPrice: "0.0000004",
	})
	require.NoError(t, err)
	assert.Equal(t, "beef", res.TxID)

	chain, err := c.ChainName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "regtest", chain)
}

func TestQtumClient_Unauthorized(t *testing.T) {
	t.Parallel()

	srv := jsonRPCServer(t, `null`)
	c, err := rpc.DialQtum(context.Background(), rpc.Endpoint{URL: srv.URL, User: "qtum", Password: "nope"})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.CallContract(context.Background(), rpc.CallRequest{ID: 2, ContractAddress: "ab"})
	var rce *rpc.RemoteCallError
	assert.True(t, errors.As(err, &rce))
}
