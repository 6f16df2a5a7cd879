package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/althash-leandro/altmask/internal/address"
	"github.com/althash-leandro/altmask/internal/bus"
	"github.com/althash-leandro/altmask/internal/codec"
	"github.com/althash-leandro/altmask/internal/contracts/qrc20"
	"github.com/althash-leandro/altmask/internal/messages"
	"github.com/althash-leandro/altmask/internal/rpc"
	"github.com/althash-leandro/altmask/internal/shared"
	"github.com/althash-leandro/altmask/internal/utils"
)

type sendResult struct {
	txid string
	err  error
}

// SendToken transfers amount (decimal, in token units) of token to receiver and
// broadcasts the outcome. Balances are left to the next poll.
func (m *Manager) SendToken(receiver, amount string, token shared.Token) {
	network := m.networks.Active()

	req, err := m.transferRequest(network, receiver, amount, token)
	if err != nil {
		log.Warn("assets: send rejected", "token", token.Address, "error", err)
		m.events.Publish(messages.SendFailed(err))
		return
	}

	bus.Go(m.loop, func() sendResult {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.CallTimeout)
		defer cancel()
		node, err := m.nodes.NodeFor(ctx, network)
		if err != nil {
			return sendResult{err: err}
		}
		res, err := node.SendToContract(ctx, req)
		return sendResult{txid: res.TxID, err: err}
	}, func(res sendResult) {
		if res.err != nil {
			log.Error("assets: send failed", "token", token.Address, "error", res.err)
			m.events.Publish(messages.SendFailed(res.err))
			return
		}
		log.Info("assets: sent tokens", "token", token.Symbol, "txid", res.txid)
		m.events.Publish(messages.SendSucceeded(res.txid))
	})
}

func (m *Manager) transferRequest(network shared.Network, receiver, amount string, token shared.Token) (rpc.SendRequest, error) {
	contractAddr := address.NormalizeContract(token.Address)
	if !address.IsHex160(contractAddr) {
		return rpc.SendRequest{}, fmt.Errorf("assets: token contract %q is not a 40-hex address", token.Address)
	}
	to, err := address.ToABI(strings.TrimSpace(receiver), network.ChainParams)
	if err != nil {
		return rpc.SendRequest{}, fmt.Errorf("assets: receiver: %w", err)
	}
	value, err := utils.ParseUnits(amount, token.Decimals)
	if err != nil {
		return rpc.SendRequest{}, err
	}
	data, err := codec.EncodeCall(qrc20.ABI(), qrc20.MethodTransfer, to, value)
	if err != nil {
		return rpc.SendRequest{}, err
	}

	return rpc.SendRequest{
		ID:              rpc.NextID(),
		ContractAddress: contractAddr,
		Data:            data,
		Amount:          m.cfg.Amount,
		GasLimit:        m.cfg.GasLimit,
		GasPrice:        m.cfg.GasPrice,
	}, nil
}
