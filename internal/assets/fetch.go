package assets

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/althash-leandro/altmask/internal/address"
	"github.com/althash-leandro/altmask/internal/bus"
	"github.com/althash-leandro/altmask/internal/codec"
	"github.com/althash-leandro/altmask/internal/contracts/qrc20"
	"github.com/althash-leandro/altmask/internal/messages"
	"github.com/althash-leandro/altmask/internal/rpc"
	"github.com/althash-leandro/altmask/internal/shared"
)

type details struct {
	token *shared.Token
	err   error
}

// LookupTokenDetails probes contractAddress with name, symbol and decimals calls, one
// after another, and broadcasts whether it looks like a QRC20 token. Nothing is added.
func (m *Manager) LookupTokenDetails(contractAddress string) {
	addr := address.NormalizeContract(contractAddress)
	if !address.IsHex160(addr) {
		log.Warn("assets: token details for malformed address", "address", contractAddress)
		m.events.Publish(messages.TokenDetails(false, nil))
		return
	}
	network := m.networks.Active()

	bus.Go(m.loop, func() details {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.CallTimeout)
		defer cancel()
		t, err := m.probe(ctx, network, addr)
		return details{token: t, err: err}
	}, func(res details) {
		if res.err != nil {
			log.Warn("assets: token details lookup failed", "address", addr, "error", res.err)
			m.events.Publish(messages.TokenDetails(false, nil))
			return
		}
		if res.token == nil {
			m.events.Publish(messages.TokenDetails(false, nil))
			return
		}
		m.events.Publish(messages.TokenDetails(true, res.token))
	})
}

// probe returns a nil token when any of the three values is empty or zero.
func (m *Manager) probe(ctx context.Context, network shared.Network, addr string) (*shared.Token, error) {
	node, err := m.nodes.NodeFor(ctx, network)
	if err != nil {
		return nil, err
	}
	contract := qrc20.ABI()

	name, err := callString(ctx, node, contract, addr, qrc20.MethodName)
	if err != nil {
		return nil, err
	}
	symbol, err := callString(ctx, node, contract, addr, qrc20.MethodSymbol)
	if err != nil {
		return nil, err
	}
	raw, err := call(ctx, node, contract, addr, qrc20.MethodDecimals)
	if err != nil {
		return nil, err
	}
	decimals, err := codec.DecodeUint8(contract, raw, qrc20.MethodDecimals)
	if err != nil {
		return nil, err
	}

	if name == "" || symbol == "" || decimals == 0 {
		return nil, nil
	}
	t := shared.NewToken(name, symbol, decimals, addr)
	return &t, nil
}

func call(ctx context.Context, node rpc.Node, contract abi.ABI, addr, method string, args ...any) ([]byte, error) {
	data, err := codec.EncodeCall(contract, method, args...)
	if err != nil {
		return nil, err
	}
	return node.CallContract(ctx, rpc.CallRequest{ID: rpc.NextID(), ContractAddress: addr, Data: data})
}

func callString(ctx context.Context, node rpc.Node, contract abi.ABI, addr, method string) (string, error) {
	raw, err := call(ctx, node, contract, addr, method)
	if err != nil {
		return "", err
	}
	return codec.DecodeString(contract, raw, method)
}

type balanceResult struct {
	balance *big.Int
	err     error
}

// RefreshBalance fetches token's balance for the logged-in wallet and writes it into the
// list. The result is dropped if the scope was reset meanwhile or current reports false.
func (m *Manager) RefreshBalance(token shared.Token, current func() bool) {
	acc, ok := m.session.Account()
	if !ok {
		log.Warn("assets: balance fetch without a logged-in account", "token", token.Address)
		return
	}
	network := m.networks.Active()
	holder, err := address.ToABI(acc.Address, network.ChainParams)
	if err != nil {
		log.Error("assets: wallet address", "account", acc.Name, "error", err)
		return
	}
	epoch := m.epoch

	bus.Go(m.loop, func() balanceResult {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.CallTimeout)
		defer cancel()
		node, err := m.nodes.NodeFor(ctx, network)
		if err != nil {
			return balanceResult{err: err}
		}
		contract := qrc20.ABI()
		raw, err := call(ctx, node, contract, token.Address, qrc20.MethodBalanceOf, holder)
		if err != nil {
			return balanceResult{err: err}
		}
		bal, err := codec.DecodeBigInt(contract, raw, qrc20.MethodBalanceOf)
		return balanceResult{balance: bal, err: err}
	}, func(res balanceResult) {
		if epoch != m.epoch || (current != nil && !current()) {
			log.Info("assets: dropping stale balance", "token", token.Address)
			return
		}
		if res.err != nil {
			log.Warn("assets: balance fetch failed", "token", token.Address, "symbol", token.Symbol, "error", res.err)
			return
		}
		m.applyBalance(token, res.balance)
	})
}

// applyBalance is a no-op for a token removed while its fetch was in flight.
func (m *Manager) applyBalance(token shared.Token, balance *big.Int) {
	i := m.indexForBalance(token)
	if i < 0 {
		log.Info("assets: dropping balance for removed token", "token", token.Address)
		return
	}
	m.tokens[i].Balance = balance
	m.broadcastTokens()
}
