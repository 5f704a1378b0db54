package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

var ZeroAddress = common.Address{}

// MaxUint256 is 2^256-1, the value wallets use for "unlimited" allowances. Callers must not mutate it.
var MaxUint256 = math.MaxBig256

// ParseAddress validates a hex address and returns its canonical 20-byte form.
// Mixed-case input with a wrong checksum is accepted; only the bytes matter for comparisons.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address '%s'", s)
	}
	return common.HexToAddress(s), nil
}

func IsMaxUint256(v *big.Int) bool {
	return v != nil && v.Cmp(MaxUint256) == 0
}
