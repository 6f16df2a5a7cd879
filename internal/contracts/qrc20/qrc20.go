// Package qrc20 holds the versioned QRC20 token ABI used to talk to deployed token contracts.
package qrc20

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	Version = 1

	MethodName        = "name"
	MethodSymbol      = "symbol"
	MethodDecimals    = "decimals"
	MethodTotalSupply = "totalSupply"
	MethodBalanceOf   = "balanceOf"
	MethodTransfer    = "transfer"
	MethodAllowance   = "allowance"
	MethodApprove     = "approve"
)

//go:embed qrc20.abi.json
var abiJSON string

var (
	parsedOnce sync.Once
	parsed     abi.ABI
	parseErr   error
)

// ABI returns the parsed QRC20 ABI. The JSON is embedded, so a parse failure is a build defect.
func ABI() abi.ABI {
	parsedOnce.Do(func() {
		parsed, parseErr = abi.JSON(strings.NewReader(abiJSON))
	})
	if parseErr != nil {
		panic("qrc20: embedded abi: " + parseErr.Error())
	}
	return parsed
}
