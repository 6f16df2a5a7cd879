package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/althash-leandro/altmask/internal/assets"
	"github.com/althash-leandro/altmask/internal/shared"
)

func TestNormalizeDefaultTokens(t *testing.T) {
	t.Parallel()

	c := &Config{DefaultTokens: DefaultTokensConfig{
		Main: []TokenSettings{
			{Name: "Bodhi Token", Symbol: "BOT", Decimals: 8, Address: "0x6B8BF98FF497C064E8F0BDE13E0C4F5ED5BF8CE7"},
			{Name: "Bodhi Token", Symbol: "BOT", Decimals: 8, Address: "6b8bf98ff497c064e8f0bde13e0c4f5ed5bf8ce7"},
		},
	}}

	require.NoError(t, c.NormalizeDefaultTokens())
	require.Len(t, c.DefaultTokens.Main, 1)
	assert.Equal(t, "6b8bf98ff497c064e8f0bde13e0c4f5ed5bf8ce7", c.DefaultTokens.Main[0].Address)
	assert.Empty(t, c.DefaultTokens.Test)
}

func TestNormalizeDefaultTokens_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token TokenSettings
	}{
		{"empty address", TokenSettings{Name: "A", Symbol: "A"}},
		{"short address", TokenSettings{Name: "A", Symbol: "A", Address: "abc"}},
		{"missing symbol", TokenSettings{Name: "A", Address: "6b8bf98ff497c064e8f0bde13e0c4f5ed5bf8ce7"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{DefaultTokens: DefaultTokensConfig{Test: []TokenSettings{tt.token}}}
			assert.Error(t, c.NormalizeDefaultTokens())
		})
	}
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	c := &Config{Nodes: map[string]NodeSettings{
		"mainnet": {RPCURL: " http://node:3889 ", User: "u", Password: "p"},
		"testnet": {},
	}}

	eps, err := c.Endpoints()
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, "http://node:3889", eps[shared.MainNet].URL)
	assert.Equal(t, "u", eps[shared.MainNet].User)

	c.Nodes["solana"] = NodeSettings{RPCURL: "x"}
	_, err = c.Endpoints()
	assert.Error(t, err)

	_, err = (&Config{}).Endpoints()
	assert.Error(t, err)
}

func TestAssetsConfig(t *testing.T) {
	t.Parallel()

	c := &Config{
		Registry:    RegistrySettings{MatchPolicy: "Name-Symbol"},
		Transaction: TransactionSettings{GasLimit: 250000, GasPrice: "0.0000005"},
	}

	ac, err := c.AssetsConfig()
	require.NoError(t, err)
	assert.Equal(t, assets.MatchByNameSymbol, ac.Match)
	assert.Equal(t, uint64(250000), ac.GasLimit)
	assert.Equal(t, assets.BuiltinDefaults().Main[0].Address, ac.Defaults.Main[0].Address)

	c.Registry.MatchPolicy = "nope"
	_, err = c.AssetsConfig()
	assert.Error(t, err)
}

func TestPollInterval(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 60*time.Second, (&Config{}).PollInterval())
	assert.Equal(t, 5*time.Second, (&Config{Polling: PollingSettings{IntervalSeconds: 5}}).PollInterval())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ALTMASK_ENV", "local")
	t.Setenv(passphraseEnv, "s3cret")

	c := &Config{}
	require.NoError(t, c.ApplyEnv())
	assert.Equal(t, "127.0.0.1", c.ClientSettings.LocalHost)
	assert.Equal(t, "s3cret", c.Storage.Passphrase)
	assert.Contains(t, c.Storage.Path, "local")
}
