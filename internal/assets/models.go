package assets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/althash-leandro/altmask/internal/constants"
	"github.com/althash-leandro/altmask/internal/rpc"
	"github.com/althash-leandro/altmask/internal/shared"
	"github.com/althash-leandro/altmask/internal/storage"
)

var (
	ErrDuplicateToken = errors.New("assets: token already tracked")
	ErrScopeNotLoaded = errors.New("assets: token list not loaded for the current account and network")
	ErrNotLoggedIn    = errors.New("assets: no account logged in")
)

// MatchPolicy decides which tracked token a fetched balance is written to.
type MatchPolicy int

const (
	// MatchByAddress updates the token with the same contract address.
	MatchByAddress MatchPolicy = iota
	// MatchByNameSymbol updates the first token with the same name and symbol. Tokens that
	// share both overwrite each other's balance; kept for compatibility with older lists.
	MatchByNameSymbol
)

func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch s {
	case "", "address":
		return MatchByAddress, nil
	case "name-symbol":
		return MatchByNameSymbol, nil
	default:
		return 0, fmt.Errorf("assets: unknown match policy %q", s)
	}
}

// Defaults are the token lists a scope starts with when nothing is persisted.
type Defaults struct {
	Main []shared.Token
	Test []shared.Token
}

type Config struct {
	Defaults Defaults
	Match    MatchPolicy

	Amount   string
	GasLimit uint64
	GasPrice string

	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Amount == "" {
		c.Amount = constants.DefaultAmount
	}
	if c.GasLimit == 0 {
		c.GasLimit = constants.DefaultGasLimit
	}
	if c.GasPrice == "" {
		c.GasPrice = constants.DefaultGasPrice
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	return c
}

// KV is the slice of storage.Queue the registry uses.
type KV interface {
	Get(keys ...string) *storage.Pending
	Set(values map[string]any)
}

type NetworkSource interface {
	Active() shared.Network
	IsMainNet() bool
}

type AccountSource interface {
	Account() (shared.Account, bool)
}

type NodeSource interface {
	NodeFor(ctx context.Context, network shared.Network) (rpc.Node, error)
}

// ScopeKey is the storage key of the token list for one account on one network.
func ScopeKey(account string, network shared.NetworkName) string {
	return fmt.Sprintf("%s-%s-%s", constants.StorageAccountTokenList, account, network)
}
