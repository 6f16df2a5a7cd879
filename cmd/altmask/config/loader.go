package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	utilsconfig "github.com/quantumauth-io/quantum-go-utils/config"

	"github.com/althash-leandro/altmask/internal/address"
	"github.com/althash-leandro/altmask/internal/assets"
	"github.com/althash-leandro/altmask/internal/constants"
	clienthttp "github.com/althash-leandro/altmask/internal/http"
	"github.com/althash-leandro/altmask/internal/networks"
	"github.com/althash-leandro/altmask/internal/rpc"
	"github.com/althash-leandro/altmask/internal/securefile"
	"github.com/althash-leandro/altmask/internal/shared"
	"github.com/althash-leandro/altmask/internal/storage"
)

const passphraseEnv = "ALTMASK_STORAGE_PASSPHRASE"

type ClientSettings struct {
	LocalHost      string
	Port           string
	AllowedOrigins []string
}

type StorageSettings struct {
	Driver     string
	Path       string
	Passphrase string
}

type NodeSettings struct {
	RPCURL   string
	User     string
	Password string
}

type PollingSettings struct {
	IntervalSeconds int
}

type TransactionSettings struct {
	Amount   string
	GasLimit uint64
	GasPrice string
}

type RegistrySettings struct {
	MatchPolicy string
}

type TokenSettings struct {
	Name     string
	Symbol   string
	Decimals uint8
	Address  string
}

type DefaultTokensConfig struct {
	Main []TokenSettings `yaml:"Main" json:"main"`
	Test []TokenSettings `yaml:"Test" json:"test"`
}

type Config struct {
	ClientSettings *ClientSettings
	Storage        StorageSettings
	Nodes          map[string]NodeSettings
	Polling        PollingSettings
	Transaction    TransactionSettings
	Registry       RegistrySettings
	DefaultTokens  DefaultTokensConfig `yaml:"DefaultTokens" json:"defaultTokens"`
}

func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(home, "config"),
		".",
	}

	cfg, err := utilsconfig.ParseConfigWithEmbedded[Config](paths, EmbeddedConfigYAML)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.NormalizeDefaultTokens(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv fills the storage directory from ALTMASK_ENV and takes the store passphrase
// from ALTMASK_STORAGE_PASSPHRASE when set.
func (c *Config) ApplyEnv() error {
	if c.ClientSettings == nil {
		c.ClientSettings = &ClientSettings{}
	}
	if strings.TrimSpace(c.ClientSettings.LocalHost) == "" {
		c.ClientSettings.LocalHost = "127.0.0.1"
	}

	if p := os.Getenv(passphraseEnv); p != "" {
		c.Storage.Passphrase = p
	}

	if strings.TrimSpace(c.Storage.Path) == "" {
		p, err := securefile.ResolvePath(constants.AppName, constants.StoreFile)
		if err != nil {
			return fmt.Errorf("config: storage path: %w", err)
		}
		c.Storage.Path = filepath.Dir(p)
	}
	return nil
}

// NormalizeDefaultTokens validates default token addresses and drops repeated ones.
func (c *Config) NormalizeDefaultTokens() error {
	main, err := normalizeTokens("Main", c.DefaultTokens.Main)
	if err != nil {
		return err
	}
	test, err := normalizeTokens("Test", c.DefaultTokens.Test)
	if err != nil {
		return err
	}
	c.DefaultTokens.Main, c.DefaultTokens.Test = main, test
	return nil
}

func normalizeTokens(class string, in []TokenSettings) ([]TokenSettings, error) {
	seen := map[string]struct{}{}
	out := make([]TokenSettings, 0, len(in))

	for _, t := range in {
		a := address.NormalizeContract(t.Address)
		if a == "" {
			return nil, fmt.Errorf("DefaultTokens.%s contains empty address", class)
		}
		if !address.IsHex160(a) {
			return nil, fmt.Errorf("DefaultTokens.%s invalid address: %q", class, t.Address)
		}
		if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.Symbol) == "" {
			return nil, fmt.Errorf("DefaultTokens.%s[%s] needs a name and a symbol", class, a)
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		t.Address = a
		out = append(out, t)
	}
	return out, nil
}

func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Driver:     c.Storage.Driver,
		Dir:        c.Storage.Path,
		Passphrase: c.Storage.Passphrase,
	}
}

// Endpoints maps configured nodes onto catalog networks. Keys match case-insensitively.
func (c *Config) Endpoints() (map[shared.NetworkName]rpc.Endpoint, error) {
	out := make(map[shared.NetworkName]rpc.Endpoint, len(c.Nodes))
	for key, n := range c.Nodes {
		name, ok := networkByKey(key)
		if !ok {
			return nil, fmt.Errorf("Nodes: unknown network %q", key)
		}
		if strings.TrimSpace(n.RPCURL) == "" {
			continue
		}
		out[name] = rpc.Endpoint{URL: strings.TrimSpace(n.RPCURL), User: n.User, Password: n.Password}
	}
	if len(out) == 0 {
		return nil, errors.New("Nodes: no network has an RPCURL")
	}
	return out, nil
}

func networkByKey(key string) (shared.NetworkName, bool) {
	for _, n := range networks.Catalog() {
		if strings.EqualFold(string(n.Name), strings.TrimSpace(key)) {
			return n.Name, true
		}
	}
	return "", false
}

func (c *Config) PollInterval() time.Duration {
	if c.Polling.IntervalSeconds <= 0 {
		return constants.GetBalancesInterval
	}
	return time.Duration(c.Polling.IntervalSeconds) * time.Second
}

func (c *Config) AssetsConfig() (assets.Config, error) {
	policy, err := assets.ParseMatchPolicy(strings.ToLower(strings.TrimSpace(c.Registry.MatchPolicy)))
	if err != nil {
		return assets.Config{}, err
	}

	defaults := assets.BuiltinDefaults()
	if len(c.DefaultTokens.Main) > 0 || len(c.DefaultTokens.Test) > 0 {
		defaults = assets.Defaults{Main: toTokens(c.DefaultTokens.Main), Test: toTokens(c.DefaultTokens.Test)}
	}

	return assets.Config{
		Defaults: defaults,
		Match:    policy,
		Amount:   c.Transaction.Amount,
		GasLimit: c.Transaction.GasLimit,
		GasPrice: c.Transaction.GasPrice,
	}, nil
}

func toTokens(in []TokenSettings) []shared.Token {
	out := make([]shared.Token, 0, len(in))
	for _, t := range in {
		out = append(out, shared.NewToken(strings.TrimSpace(t.Name), strings.TrimSpace(t.Symbol), t.Decimals, t.Address))
	}
	return out
}

func (c *Config) HTTPConfig() clienthttp.Config {
	return clienthttp.Config{
		Host:           c.ClientSettings.LocalHost,
		Port:           c.ClientSettings.Port,
		AllowedOrigins: c.ClientSettings.AllowedOrigins,
	}
}
