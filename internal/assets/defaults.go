package assets

import "github.com/althash-leandro/altmask/internal/shared"

// BuiltinDefaults is used when the configuration does not list default tokens.
func BuiltinDefaults() Defaults {
	return Defaults{
		Main: []shared.Token{
			shared.NewToken("Bodhi Token", "BOT", 8, "6b8bf98ff497c064e8f0bde13e0c4f5ed5bf8ce7"),
		},
		Test: []shared.Token{
			shared.NewToken("Bodhi Token", "BOT", 8, "a6dd0b0399dc6162cedde85ed50c6fa4a0dd44f1"),
		},
	}
}

func (d Defaults) forNetwork(mainNet bool) []shared.Token {
	if mainNet {
		return shared.CloneTokens(d.Main)
	}
	return shared.CloneTokens(d.Test)
}
