package rpc

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

const (
	methodCallContract      = "callcontract"
	methodSendToContract    = "sendtocontract"
	methodGetBlockchainInfo = "getblockchaininfo"

	noException = "None"
)

// Endpoint is how to reach one network's node.
type Endpoint struct {
	URL      string `json:"url" yaml:"url"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
}

// QtumClient speaks the qtumd JSON-RPC dialect over go-ethereum's rpc client.
type QtumClient struct {
	c   *gethrpc.Client
	url string
}

func DialQtum(ctx context.Context, ep Endpoint) (*QtumClient, error) {
	if strings.TrimSpace(ep.URL) == "" {
		return nil, errors.New("rpc: endpoint url is empty")
	}

	var opts []gethrpc.ClientOption
	if ep.User != "" || ep.Password != "" {
		token := base64.StdEncoding.EncodeToString([]byte(ep.User + ":" + ep.Password))
		opts = append(opts, gethrpc.WithHeader("Authorization", "Basic "+token))
	}

	c, err := gethrpc.DialOptions(ctx, ep.URL, opts...)
	if err != nil {
		return nil, &RemoteCallError{Method: "dial", Err: err}
	}
	return &QtumClient{c: c, url: ep.URL}, nil
}

type executionResult struct {
	Excepted string `json:"excepted"`
	Output   string `json:"output"`
}

type callContractResult struct {
	Address         string          `json:"address"`
	ExecutionResult executionResult `json:"executionResult"`
}

func (q *QtumClient) CallContract(ctx context.Context, req CallRequest) ([]byte, error) {
	var out callContractResult
	err := q.c.CallContext(ctx, &out, methodCallContract, req.ContractAddress, hex.EncodeToString(req.Data))
	if err != nil {
		return nil, &RemoteCallError{Method: methodCallContract, ID: req.ID, Err: err}
	}
	if ex := out.ExecutionResult.Excepted; ex != "" && ex != noException {
		return nil, &RemoteCallError{Method: methodCallContract, ID: req.ID, Excepted: ex}
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(out.ExecutionResult.Output, "0x"))
	if err != nil {
		return nil, &RemoteCallError{Method: methodCallContract, ID: req.ID, Err: err}
	}
	return raw, nil
}

func (q *QtumClient) SendToContract(ctx context.Context, req SendRequest) (SendResult, error) {
	var out SendResult
	err := q.c.CallContext(ctx, &out, methodSendToContract,
		req.ContractAddress,
		hex.EncodeToString(req.Data),
		json.Number(req.Amount),
		req.GasLimit,
		json.Number(req.GasPrice),
	)
	if err != nil {
		return SendResult{}, &RemoteCallError{Method: methodSendToContract, ID: req.ID, Err: err}
	}
	log.Info("sent to contract", "id", req.ID, "contract", req.ContractAddress, "txid", out.TxID)
	return out, nil
}

type blockchainInfo struct {
	Chain  string `json:"chain"`
	Blocks uint64 `json:"blocks"`
}

// ChainName returns the chain the node serves: main, test or regtest.
func (q *QtumClient) ChainName(ctx context.Context) (string, error) {
	var out blockchainInfo
	if err := q.c.CallContext(ctx, &out, methodGetBlockchainInfo); err != nil {
		return "", &RemoteCallError{Method: methodGetBlockchainInfo, Err: err}
	}
	return out.Chain, nil
}

func (q *QtumClient) Close() {
	q.c.Close()
}
