// Package rpctest provides an in-memory node that answers QRC20 calls from a table
// of token contracts.
package rpctest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/althash-leandro/altmask/internal/address"
	"github.com/althash-leandro/altmask/internal/codec"
	"github.com/althash-leandro/altmask/internal/contracts/qrc20"
	"github.com/althash-leandro/altmask/internal/rpc"
	"github.com/althash-leandro/altmask/internal/shared"
)

type contract struct {
	name     string
	symbol   string
	decimals uint8
	balances map[common.Address]*big.Int
}

type Node struct {
	mu        sync.Mutex
	contracts map[string]*contract
	failures  map[string]map[string]error // contract -> method -> error
	sendErr   error
	gate      chan struct{}
	calls     []rpc.CallRequest
	sends     []rpc.SendRequest
	chain     string
}

func New() *Node {
	return &Node{
		contracts: map[string]*contract{},
		failures:  map[string]map[string]error{},
		chain:     "test",
	}
}

func (n *Node) AddToken(addr, name, symbol string, decimals uint8) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contracts[address.NormalizeContract(addr)] = &contract{
		name:     name,
		symbol:   symbol,
		decimals: decimals,
		balances: map[common.Address]*big.Int{},
	}
}

// SetBalance sets holder's balance, where holder is 40-hex.
func (n *Node) SetBalance(addr, holder string, balance *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	c, ok := n.contracts[address.NormalizeContract(addr)]
	if !ok {
		panic("rpctest: SetBalance on unknown contract " + addr)
	}
	c.balances[common.HexToAddress(holder)] = new(big.Int).Set(balance)
}

// Fail makes every call of method on addr return err.
func (n *Node) Fail(addr, method string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	a := address.NormalizeContract(addr)
	if n.failures[a] == nil {
		n.failures[a] = map[string]error{}
	}
	n.failures[a][method] = err
}

func (n *Node) FailSends(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sendErr = err
}

func (n *Node) SetChain(chain string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chain = chain
}

// Hold blocks every call until release is called. Calls are recorded before blocking.
func (n *Node) Hold() (release func()) {
	gate := make(chan struct{})
	n.mu.Lock()
	n.gate = gate
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			if n.gate == gate {
				n.gate = nil
			}
			n.mu.Unlock()
			close(gate)
		})
	}
}

func (n *Node) Calls() []rpc.CallRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]rpc.CallRequest(nil), n.calls...)
}

// CallsTo returns the method names called on addr, in order.
func (n *Node) CallsTo(addr string) []string {
	a := address.NormalizeContract(addr)
	var out []string
	for _, c := range n.Calls() {
		if c.ContractAddress != a {
			continue
		}
		if m, err := codec.MethodByData(qrc20.ABI(), c.Data); err == nil {
			out = append(out, m.Name)
		}
	}
	return out
}

func (n *Node) Sends() []rpc.SendRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]rpc.SendRequest(nil), n.sends...)
}

func (n *Node) CallContract(ctx context.Context, req rpc.CallRequest) ([]byte, error) {
	n.mu.Lock()
	n.calls = append(n.calls, req)
	gate := n.gate
	n.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &rpc.RemoteCallError{Method: "callcontract", ID: req.ID, Err: ctx.Err()}
		}
	}

	contractABI := qrc20.ABI()
	m, err := codec.MethodByData(contractABI, req.Data)
	if err != nil {
		return nil, &rpc.RemoteCallError{Method: "callcontract", ID: req.ID, Excepted: "BadInstruction"}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.failures[req.ContractAddress][m.Name]; err != nil {
		return nil, &rpc.RemoteCallError{Method: "callcontract", ID: req.ID, Err: err}
	}
	c, ok := n.contracts[req.ContractAddress]
	if !ok {
		return nil, &rpc.RemoteCallError{Method: "callcontract", ID: req.ID, Excepted: "BadInstruction"}
	}

	switch m.Name {
	case qrc20.MethodName:
		return m.Outputs.Pack(c.name)
	case qrc20.MethodSymbol:
		return m.Outputs.Pack(c.symbol)
	case qrc20.MethodDecimals:
		return m.Outputs.Pack(c.decimals)
	case qrc20.MethodBalanceOf:
		args, err := codec.DecodeInput(contractABI, req.Data, m.Name)
		if err != nil {
			return nil, &rpc.RemoteCallError{Method: "callcontract", ID: req.ID, Excepted: "BadInstruction"}
		}
		bal := c.balances[args[0].(common.Address)]
		if bal == nil {
			bal = new(big.Int)
		}
		return m.Outputs.Pack(bal)
	default:
		return nil, &rpc.RemoteCallError{Method: "callcontract", ID: req.ID, Err: fmt.Errorf("rpctest: %s not supported", m.Name)}
	}
}

func (n *Node) SendToContract(_ context.Context, req rpc.SendRequest) (rpc.SendResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, req)
	if n.sendErr != nil {
		return rpc.SendResult{}, &rpc.RemoteCallError{Method: "sendtocontract", ID: req.ID, Err: n.sendErr}
	}
	return rpc.SendResult{TxID: fmt.Sprintf("%064x", req.ID)}, nil
}

func (n *Node) ChainName(context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chain, nil
}

func (n *Node) Close() {}

// NodeFor lets the fake stand in for rpc.Service.
func (n *Node) NodeFor(context.Context, shared.Network) (rpc.Node, error) {
	return n, nil
}
