package utils_test

import (
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/althash-leandro/altmask/internal/utils"
)

func TestFormatUnitsTrim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   *big.Int
		decimals uint8
		maxFrac  int
		want     string
	}{
		{name: "nil", amount: nil, decimals: 8, maxFrac: 8, want: "0"},
		{name: "one and a half", amount: big.NewInt(150000000), decimals: 8, maxFrac: 8, want: "1.5"},
		{name: "whole", amount: big.NewInt(100000000), decimals: 8, maxFrac: 8, want: "1"},
		{name: "smallest unit", amount: big.NewInt(1), decimals: 8, maxFrac: 8, want: "0.00000001"},
		{name: "trimmed", amount: big.NewInt(123456789), decimals: 8, maxFrac: 2, want: "1.23"},
		{name: "zero decimals", amount: big.NewInt(42), decimals: 0, maxFrac: 0, want: "42"},
		{name: "negative", amount: big.NewInt(-150), decimals: 2, maxFrac: 2, want: "-1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, utils.FormatUnitsTrim(tt.amount, tt.decimals, tt.maxFrac))
		})
	}
}

func TestParseUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
		wantErr  bool
	}{
		{name: "decimal", amount: "1.5", decimals: 8, want: "150000000"},
		{name: "integer", amount: "2", decimals: 6, want: "2000000"},
		{name: "leading dot", amount: ".25", decimals: 2, want: "25"},
		{name: "trailing dot", amount: "3.", decimals: 1, want: "30"},
		{name: "zero decimals", amount: "7", decimals: 0, want: "7"},
		{name: "too precise", amount: "0.123", decimals: 2, wantErr: true},
		{name: "negative", amount: "-1", decimals: 2, wantErr: true},
		{name: "garbage", amount: "1e5", decimals: 2, wantErr: true},
		{name: "empty", amount: " ", decimals: 2, wantErr: true},
		{name: "lone dot", amount: ".", decimals: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := utils.ParseUnits(tt.amount, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, utils.ErrInvalidAmount))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseUnits_InvertsFormat(t *testing.T) {
	t.Parallel()

	raw := big.NewInt(987654321)
	s := utils.FormatUnitsTrim(raw, 6, 6)
	back, err := utils.ParseUnits(s, 6)
	require.NoError(t, err)
	assert.Equal(t, 0, raw.Cmp(back))
}
