package networks

import (
	"github.com/althash-leandro/altmask/internal/shared"
	"github.com/althash-leandro/altmask/internal/storage"
)

// DefaultIndex selects TestNet until the user picks otherwise.
const DefaultIndex = 1

var catalog = []shared.Network{
	{
		Name:        shared.MainNet,
		ChainParams: shared.ChainParams{ChainName: "main", PubKeyHashAddrID: 0x3a, ScriptHashAddrID: 0x32},
		ExplorerURL: "https://explorer.qtum.org/tx",
	},
	{
		Name:        shared.TestNet,
		ChainParams: shared.ChainParams{ChainName: "test", PubKeyHashAddrID: 0x78, ScriptHashAddrID: 0x6e},
		ExplorerURL: "https://testnet.qtum.org/tx",
	},
	{
		Name:        shared.RegTest,
		ChainParams: shared.ChainParams{ChainName: "regtest", PubKeyHashAddrID: 0x78, ScriptHashAddrID: 0x6e},
		ExplorerURL: "http://localhost:3001/explorer/tx",
	},
}

// Catalog returns the fixed, ordered list of known networks.
func Catalog() []shared.Network {
	return append([]shared.Network(nil), catalog...)
}

// KV is the slice of storage.Queue the controllers use.
type KV interface {
	Get(keys ...string) *storage.Pending
	Set(values map[string]any)
}

// LogoutTarget is told to end the session when the network changes.
type LogoutTarget interface {
	Logout() bool
}
