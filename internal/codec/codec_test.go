package codec_test

import (
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/althash-leandro/altmask/internal/codec"
	"github.com/althash-leandro/altmask/internal/contracts/qrc20"
)

var holder = common.HexToAddress("0x7926223070547d2d15b2ef5e7383e541c338ffe9")

func TestEncodeDecodeInput_RoundTrip(t *testing.T) {
	t.Parallel()

	contract := qrc20.ABI()
	amount, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	tests := []struct {
		name   string
		method string
		args   []any
	}{
		{name: "no args", method: qrc20.MethodName, args: []any{}},
		{name: "address", method: qrc20.MethodBalanceOf, args: []any{holder}},
		{name: "address and amount", method: qrc20.MethodTransfer, args: []any{holder, amount}},
		{name: "two addresses", method: qrc20.MethodAllowance, args: []any{holder, common.HexToAddress("0x01")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := codec.EncodeCall(contract, tt.method, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, contract.Methods[tt.method].ID, data[:4])

			got, err := codec.DecodeInput(contract, data, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.args, got)

			m, err := codec.MethodByData(contract, data)
			require.NoError(t, err)
			assert.Equal(t, tt.method, m.Name)
		})
	}
}

func TestEncodeCall_Errors(t *testing.T) {
	t.Parallel()

	contract := qrc20.ABI()

	tests := []struct {
		name   string
		method string
		args   []any
	}{
		{name: "unknown method", method: "mint", args: nil},
		{name: "mistyped address", method: qrc20.MethodBalanceOf, args: []any{"not-an-address"}},
		{name: "mistyped amount", method: qrc20.MethodTransfer, args: []any{holder, 1.5}},
		{name: "missing argument", method: qrc20.MethodTransfer, args: []any{holder}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := codec.EncodeCall(contract, tt.method, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, codec.ErrEncoding))
			assert.False(t, errors.Is(err, codec.ErrDecoding))
		})
	}
}

func TestDecodeCall_Outputs(t *testing.T) {
	t.Parallel()

	contract := qrc20.ABI()

	raw, err := contract.Methods[qrc20.MethodBalanceOf].Outputs.Pack(big.NewInt(150000000))
	require.NoError(t, err)
	bal, err := codec.DecodeBigInt(contract, raw, qrc20.MethodBalanceOf)
	require.NoError(t, err)
	assert.Equal(t, int64(150000000), bal.Int64())

	raw, err = contract.Methods[qrc20.MethodSymbol].Outputs.Pack("FOO")
	require.NoError(t, err)
	sym, err := codec.DecodeString(contract, raw, qrc20.MethodSymbol)
	require.NoError(t, err)
	assert.Equal(t, "FOO", sym)

	raw, err = contract.Methods[qrc20.MethodDecimals].Outputs.Pack(uint8(8))
	require.NoError(t, err)
	dec, err := codec.DecodeUint8(contract, raw, qrc20.MethodDecimals)
	require.NoError(t, err)
	assert.Equal(t, uint8(8), dec)
}

func TestDecodeCall_Errors(t *testing.T) {
	t.Parallel()

	contract := qrc20.ABI()
	full, err := contract.Methods[qrc20.MethodBalanceOf].Outputs.Pack(big.NewInt(1))
	require.NoError(t, err)

	tests := []struct {
		name   string
		raw    []byte
		method string
	}{
		{name: "truncated", raw: full[:16], method: qrc20.MethodBalanceOf},
		{name: "empty", raw: nil, method: qrc20.MethodBalanceOf},
		{name: "unknown method", raw: full, method: "mint"},
		{name: "string layout from uint", raw: full, method: qrc20.MethodName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := codec.DecodeCall(contract, tt.raw, tt.method)
			require.Error(t, err)
			assert.True(t, errors.Is(err, codec.ErrDecoding))
		})
	}
}

func TestDecodeInput_Errors(t *testing.T) {
	t.Parallel()

	contract := qrc20.ABI()
	data, err := codec.EncodeCall(contract, qrc20.MethodTransfer, holder, big.NewInt(5))
	require.NoError(t, err)

	_, err = codec.DecodeInput(contract, data[:2], qrc20.MethodTransfer)
	assert.True(t, errors.Is(err, codec.ErrDecoding))

	_, err = codec.DecodeInput(contract, data, qrc20.MethodBalanceOf)
	assert.True(t, errors.Is(err, codec.ErrDecoding))

	_, err = codec.DecodeInput(contract, data[:40], qrc20.MethodTransfer)
	assert.True(t, errors.Is(err, codec.ErrDecoding))
}
