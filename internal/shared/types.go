package shared

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/althash-leandro/altmask/internal/utils"
)

type NetworkName string

const (
	MainNet NetworkName = "MainNet"
	TestNet NetworkName = "TestNet"
	RegTest NetworkName = "RegTest"
)

// ChainParams carries the per-chain values the background process needs.
// Everything else about the chain is the node's concern.
type ChainParams struct {
	ChainName        string `json:"chainName"` // as reported by getblockchaininfo
	PubKeyHashAddrID byte   `json:"pubKeyHashAddrId"`
	ScriptHashAddrID byte   `json:"scriptHashAddrId"`
}

type Network struct {
	Name        NetworkName `json:"name"`
	ChainParams ChainParams `json:"chainParams"`
	ExplorerURL string      `json:"explorerUrl"`
}

type Account struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Token is a QRC20 token tracked for one (account, network) scope.
// Balance is kept in on-chain units; it is scaled by 10^Decimals only when rendered.
type Token struct {
	Name     string
	Symbol   string
	Decimals uint8
	Address  string
	Balance  *big.Int
}

type tokenJSON struct {
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	Decimals   uint8  `json:"decimals"`
	Address    string `json:"address"`
	Balance    string `json:"balance"`
	RawBalance string `json:"rawBalance,omitempty"`
}

func NewToken(name, symbol string, decimals uint8, address string) Token {
	return Token{
		Name:     name,
		Symbol:   symbol,
		Decimals: decimals,
		Address:  address,
		Balance:  big.NewInt(0),
	}
}

// DisplayBalance renders the balance as a decimal string, e.g. 150000000 with 8 decimals -> "1.5".
func (t Token) DisplayBalance() string {
	return utils.FormatUnitsTrim(t.Balance, t.Decimals, int(t.Decimals))
}

func (t Token) MarshalJSON() ([]byte, error) {
	raw := "0"
	if t.Balance != nil {
		raw = t.Balance.String()
	}
	return json.Marshal(tokenJSON{
		Name:       t.Name,
		Symbol:     t.Symbol,
		Decimals:   t.Decimals,
		Address:    t.Address,
		Balance:    t.DisplayBalance(),
		RawBalance: raw,
	})
}

// UnmarshalJSON prefers rawBalance and falls back to the display balance.
func (t *Token) UnmarshalJSON(b []byte) error {
	var in tokenJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	balance := big.NewInt(0)
	switch {
	case in.RawBalance != "":
		if _, ok := balance.SetString(in.RawBalance, 10); !ok {
			return fmt.Errorf("token %s: invalid rawBalance %q", in.Address, in.RawBalance)
		}
	case in.Balance != "":
		v, err := utils.ParseUnits(in.Balance, in.Decimals)
		if err != nil {
			return fmt.Errorf("token %s: %w", in.Address, err)
		}
		balance = v
	}

	*t = Token{
		Name:     in.Name,
		Symbol:   in.Symbol,
		Decimals: in.Decimals,
		Address:  in.Address,
		Balance:  balance,
	}
	return nil
}

// Clone returns a copy that does not share its balance with t.
func (t Token) Clone() Token {
	c := t
	if t.Balance != nil {
		c.Balance = new(big.Int).Set(t.Balance)
	}
	return c
}

func CloneTokens(tokens []Token) []Token {
	if tokens == nil {
		return nil
	}
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		out[i] = t.Clone()
	}
	return out
}
