package utils

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress validates a hex address and returns its EIP-55 checksummed form.
func NormalizeAddress(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(s).Hex(), nil
}
