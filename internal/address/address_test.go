package address_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/althash-leandro/altmask/internal/address"
	"github.com/althash-leandro/altmask/internal/shared"
)

var testParams = shared.ChainParams{ChainName: "test", PubKeyHashAddrID: 0x78, ScriptHashAddrID: 0x6e}

const hash160 = "7926223070547d2d15b2ef5e7383e541c338ffe9"

func TestToHex(t *testing.T) {
	t.Parallel()

	encoded, err := address.FromHex(hash160, testParams.PubKeyHashAddrID)
	require.NoError(t, err)

	wrongVersion, err := address.FromHex(hash160, 0x3a)
	require.NoError(t, err)

	corrupted := []byte(encoded)
	if corrupted[5] == 'a' {
		corrupted[5] = 'b'
	} else {
		corrupted[5] = 'a'
	}

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain hex", in: hash160, want: hash160},
		{name: "prefixed mixed case hex", in: "0x7926223070547D2D15B2EF5E7383E541C338FFE9", want: hash160},
		{name: "base58check", in: encoded, want: hash160},
		{name: "other chain version", in: wrongVersion, wantErr: true},
		{name: "bad checksum", in: string(corrupted), wantErr: true},
		{name: "short base58", in: base58.Encode([]byte{0x78, 1, 2, 3}), wantErr: true},
		{name: "not base58", in: "0OIl", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := address.ToHex(tt.in, testParams)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToABI(t *testing.T) {
	t.Parallel()

	got, err := address.ToABI("0x"+hash160, testParams)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(hash160), got)
}

func TestNormalizeContract(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", address.NormalizeContract(" 0xABC "))
	assert.True(t, address.IsHex160(hash160))
	assert.False(t, address.IsHex160("0xabc"))
}
