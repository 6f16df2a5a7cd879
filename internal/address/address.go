// Package address converts the address forms a wallet UI hands us into what the node
// and the ABI expect: 40-hex hash160 strings.
package address

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"

	"github.com/althash-leandro/altmask/internal/shared"
)

const (
	hash160Len   = 20
	checksumLen  = 4
	base58Length = 1 + hash160Len + checksumLen
)

// NormalizeContract returns a contract address as lowercase hex without 0x.
func NormalizeContract(addr string) string {
	a := strings.TrimSpace(addr)
	a = strings.TrimPrefix(strings.TrimPrefix(a, "0x"), "0X")
	return strings.ToLower(a)
}

func IsHex160(addr string) bool {
	a := NormalizeContract(addr)
	if len(a) != 2*hash160Len {
		return false
	}
	_, err := hex.DecodeString(a)
	return err == nil
}

// ToHex resolves a wallet address to its hash160 in hex. Hex input is accepted as-is;
// anything else is treated as base58check and must carry one of the network's version bytes.
func ToHex(addr string, params shared.ChainParams) (string, error) {
	if IsHex160(addr) {
		return NormalizeContract(addr), nil
	}

	raw, err := base58.Decode(strings.TrimSpace(addr))
	if err != nil {
		return "", fmt.Errorf("address %q: %w", addr, err)
	}
	if len(raw) != base58Length {
		return "", fmt.Errorf("address %q: decoded length %d, want %d", addr, len(raw), base58Length)
	}

	payload, sum := raw[:1+hash160Len], raw[1+hash160Len:]
	if !bytes.Equal(checksum(payload), sum) {
		return "", fmt.Errorf("address %q: checksum mismatch", addr)
	}

	version := payload[0]
	if version != params.PubKeyHashAddrID && version != params.ScriptHashAddrID {
		return "", fmt.Errorf("address %q: version 0x%02x does not belong to chain %q", addr, version, params.ChainName)
	}

	return hex.EncodeToString(payload[1:]), nil
}

// ToABI resolves addr for use as an ABI `address` argument.
func ToABI(addr string, params shared.ChainParams) (common.Address, error) {
	h, err := ToHex(addr, params)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(h), nil
}

// FromHex encodes a hash160 as a base58check address with the given version byte.
func FromHex(hash160 string, version byte) (string, error) {
	b, err := hex.DecodeString(NormalizeContract(hash160))
	if err != nil {
		return "", fmt.Errorf("hash160 %q: %w", hash160, err)
	}
	if len(b) != hash160Len {
		return "", fmt.Errorf("hash160 %q: length %d, want %d", hash160, len(b), hash160Len)
	}
	payload := append([]byte{version}, b...)
	return base58.Encode(append(payload, checksum(payload)...)), nil
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLen]
}
