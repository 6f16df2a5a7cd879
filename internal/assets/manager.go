// Package assets is the token registry: the tracked QRC20 tokens and balances of the
// logged-in account on the active network.
package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/samber/lo"

	"github.com/althash-leandro/altmask/internal/address"
	"github.com/althash-leandro/altmask/internal/bus"
	"github.com/althash-leandro/altmask/internal/messages"
	"github.com/althash-leandro/altmask/internal/shared"
	"github.com/althash-leandro/altmask/internal/storage"
)

// Manager owns the token list. Every method runs on the loop; async completions
// carrying an older epoch than the current one are dropped.
type Manager struct {
	loop     *bus.Loop
	kv       KV
	events   messages.Broadcaster
	networks NetworkSource
	session  AccountSource
	nodes    NodeSource
	cfg      Config

	tokens  []shared.Token
	loaded  bool
	loading bool
	scope   string
	epoch   uint64
	waiters []func()
}

func NewManager(
	loop *bus.Loop,
	kv KV,
	events messages.Broadcaster,
	networks NetworkSource,
	session AccountSource,
	nodes NodeSource,
	cfg Config,
) *Manager {
	return &Manager{
		loop:     loop,
		kv:       kv,
		events:   events,
		networks: networks,
		session:  session,
		nodes:    nodes,
		cfg:      cfg.withDefaults(),
	}
}

// Loaded reports whether the list for the current scope is in memory.
func (m *Manager) Loaded() bool { return m.loaded }

func (m *Manager) Epoch() uint64 { return m.epoch }

// Tokens returns a copy of the current list; empty when not loaded.
func (m *Manager) Tokens() []shared.Token {
	if !m.loaded || len(m.tokens) == 0 {
		return []shared.Token{}
	}
	return shared.CloneTokens(m.tokens)
}

func (m *Manager) currentScope() (string, error) {
	acc, ok := m.session.Account()
	if !ok {
		return "", ErrNotLoggedIn
	}
	return ScopeKey(acc.Name, m.networks.Active().Name), nil
}

type scopeLoad struct {
	values map[string][]byte
	err    error
}

// InitForScope loads the token list of the current scope, or seeds it from the defaults
// for the network class. done runs on the loop once the list is available. Calling it
// again for a loaded scope only runs done.
func (m *Manager) InitForScope(done func()) {
	key, err := m.currentScope()
	if err != nil {
		log.Warn("assets: init skipped", "error", err)
		return
	}

	if m.loaded && m.scope == key {
		if done != nil {
			done()
		}
		return
	}
	if m.scope != "" && m.scope != key {
		waiters := m.waiters
		m.ResetForScopeChange()
		m.waiters = waiters
	}
	if done != nil {
		m.waiters = append(m.waiters, done)
	}
	if m.loading && m.scope == key {
		return
	}

	m.scope = key
	m.loading = true
	epoch := m.epoch
	mainNet := m.networks.IsMainNet()
	pending := m.kv.Get(key)

	bus.Go(m.loop, func() scopeLoad {
		values, err := pending.Wait(context.Background())
		return scopeLoad{values: values, err: err}
	}, func(res scopeLoad) {
		if epoch != m.epoch {
			log.Info("assets: dropping token list load for a previous scope", "scope", key)
			return
		}
		m.tokens = m.decodeOrDefault(key, res, mainNet)
		m.loaded = true
		m.loading = false
		log.Info("assets: token list ready", "scope", key, "tokens", len(m.tokens))

		waiters := m.waiters
		m.waiters = nil
		for _, fn := range waiters {
			fn()
		}
	})
}

func (m *Manager) decodeOrDefault(key string, res scopeLoad, mainNet bool) []shared.Token {
	if res.err != nil {
		log.Error("assets: load token list, using defaults", "scope", key, "error", res.err)
		return m.cfg.Defaults.forNetwork(mainNet)
	}
	tokens, ok, err := storage.Decode[[]shared.Token](res.values, key)
	if err != nil {
		log.Error("assets: decode token list, using defaults", "scope", key, "error", err)
		return m.cfg.Defaults.forNetwork(mainNet)
	}
	if !ok {
		return m.cfg.Defaults.forNetwork(mainNet)
	}
	for i := range tokens {
		tokens[i].Address = address.NormalizeContract(tokens[i].Address)
	}
	return tokens
}

// ResetForScopeChange forgets the in-memory list. Persisted lists are untouched.
func (m *Manager) ResetForScopeChange() {
	m.tokens = nil
	m.loaded = false
	m.loading = false
	m.scope = ""
	m.waiters = nil
	m.epoch++
}

// AddToken appends a token with a zero balance, persists the list, broadcasts it and
// fetches the new token's balance once.
func (m *Manager) AddToken(contractAddress, name, symbol string, decimals uint8) error {
	if !m.loaded {
		return ErrScopeNotLoaded
	}
	addr := address.NormalizeContract(contractAddress)
	if addr == "" {
		return fmt.Errorf("assets: contract address is required")
	}
	if m.indexByAddress(addr) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateToken, addr)
	}

	token := shared.NewToken(strings.TrimSpace(name), strings.TrimSpace(symbol), decimals, addr)
	m.tokens = append(m.tokens, token)
	m.persist()
	m.broadcastTokens()

	m.RefreshBalance(token, nil)
	return nil
}

// RemoveToken drops the token with contractAddress. Unknown addresses are ignored.
func (m *Manager) RemoveToken(contractAddress string) {
	if !m.loaded {
		return
	}
	i := m.indexByAddress(address.NormalizeContract(contractAddress))
	if i < 0 {
		return
	}

	m.tokens = append(m.tokens[:i:i], m.tokens[i+1:]...)
	m.persist()
	m.broadcastTokens()
}

func (m *Manager) indexByAddress(addr string) int {
	_, i, _ := lo.FindIndexOf(m.tokens, func(t shared.Token) bool { return t.Address == addr })
	return i
}

// indexForBalance finds the token a balance fetched for t belongs to.
func (m *Manager) indexForBalance(t shared.Token) int {
	if m.cfg.Match == MatchByNameSymbol {
		_, i, _ := lo.FindIndexOf(m.tokens, func(c shared.Token) bool {
			return c.Name == t.Name && c.Symbol == t.Symbol
		})
		return i
	}
	return m.indexByAddress(t.Address)
}

func (m *Manager) persist() {
	m.kv.Set(map[string]any{m.scope: m.Tokens()})
}

func (m *Manager) broadcastTokens() {
	m.events.Publish(messages.TokensReturned(m.Tokens()))
}

// Handle answers the token message types.
func (m *Manager) Handle(req messages.Request) (any, error) {
	switch req.Type {
	case messages.GetQRCTokenList:
		return m.Tokens(), nil
	case messages.AddToken:
		if err := m.AddToken(req.ContractAddress, req.Name, req.Symbol, req.Decimals); err != nil {
			m.events.Publish(messages.AddTokenFailed(err))
			return nil, err
		}
	case messages.RemoveToken:
		m.RemoveToken(req.ContractAddress)
	case messages.GetQRCTokenDetails:
		m.LookupTokenDetails(req.ContractAddress)
	case messages.SendQRCTokens:
		if req.Token == nil {
			err := fmt.Errorf("assets: SEND_QRC_TOKENS without token")
			m.events.Publish(messages.SendFailed(err))
			return nil, err
		}
		m.SendToken(req.ReceiverAddress, req.Amount.String(), *req.Token)
	}
	return nil, nil
}

func (m *Manager) Types() []messages.Type {
	return []messages.Type{
		messages.GetQRCTokenList,
		messages.AddToken,
		messages.RemoveToken,
		messages.GetQRCTokenDetails,
		messages.SendQRCTokens,
	}
}
