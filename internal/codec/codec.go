// Package codec encodes contract calls into call data and decodes call results,
// driven by a static ABI description. It is stateless.
//
// Token amounts stay *big.Int on both sides; scaling by decimals is the caller's job.
package codec

import (
	"bytes"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	// ErrEncoding marks malformed ABI usage on the way out: unknown method or mistyped argument.
	ErrEncoding = errors.New("codec: encoding error")
	// ErrDecoding marks raw bytes that do not match the declared layout.
	ErrDecoding = errors.New("codec: decoding error")
)

const selectorLen = 4

// EncodeCall returns selector + ABI-encoded arguments for method.
func EncodeCall(contract abi.ABI, method string, args ...any) ([]byte, error) {
	if _, ok := contract.Methods[method]; !ok {
		return nil, errors.Mark(errors.Newf("unknown method %q", method), ErrEncoding)
	}
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "encode %s", method), ErrEncoding)
	}
	return data, nil
}

// DecodeCall decodes raw call output according to method's declared return types.
func DecodeCall(contract abi.ABI, raw []byte, method string) ([]any, error) {
	m, ok := contract.Methods[method]
	if !ok {
		return nil, errors.Mark(errors.Newf("unknown method %q", method), ErrDecoding)
	}
	if len(m.Outputs) > 0 && len(raw) == 0 {
		return nil, errors.Mark(errors.Newf("decode %s: empty result", method), ErrDecoding)
	}
	out, err := m.Outputs.Unpack(raw)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode %s", method), ErrDecoding)
	}
	return out, nil
}

// DecodeInput is the inverse of EncodeCall: it checks the selector and returns the arguments.
func DecodeInput(contract abi.ABI, data []byte, method string) ([]any, error) {
	m, ok := contract.Methods[method]
	if !ok {
		return nil, errors.Mark(errors.Newf("unknown method %q", method), ErrDecoding)
	}
	if len(data) < selectorLen {
		return nil, errors.Mark(errors.Newf("decode %s input: %d bytes is shorter than a selector", method, len(data)), ErrDecoding)
	}
	if !bytes.Equal(data[:selectorLen], m.ID) {
		return nil, errors.Mark(errors.Newf("decode %s input: selector %x does not match %x", method, data[:selectorLen], m.ID), ErrDecoding)
	}
	args, err := m.Inputs.Unpack(data[selectorLen:])
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode %s input", method), ErrDecoding)
	}
	return args, nil
}

// MethodByData resolves the method a piece of call data targets.
func MethodByData(contract abi.ABI, data []byte) (*abi.Method, error) {
	if len(data) < selectorLen {
		return nil, errors.Mark(errors.Newf("%d bytes is shorter than a selector", len(data)), ErrDecoding)
	}
	m, err := contract.MethodById(data[:selectorLen])
	if err != nil {
		return nil, errors.Mark(err, ErrDecoding)
	}
	return m, nil
}

func DecodeString(contract abi.ABI, raw []byte, method string) (string, error) {
	v, err := first(contract, raw, method)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Mark(errors.Newf("decode %s: got %T, want string", method, v), ErrDecoding)
	}
	return s, nil
}

func DecodeUint8(contract abi.ABI, raw []byte, method string) (uint8, error) {
	v, err := first(contract, raw, method)
	if err != nil {
		return 0, err
	}
	n, ok := v.(uint8)
	if !ok {
		return 0, errors.Mark(errors.Newf("decode %s: got %T, want uint8", method, v), ErrDecoding)
	}
	return n, nil
}

func DecodeBigInt(contract abi.ABI, raw []byte, method string) (*big.Int, error) {
	v, err := first(contract, raw, method)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok {
		return nil, errors.Mark(errors.Newf("decode %s: got %T, want *big.Int", method, v), ErrDecoding)
	}
	return n, nil
}

func first(contract abi.ABI, raw []byte, method string) (any, error) {
	out, err := DecodeCall(contract, raw, method)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.Mark(errors.Newf("decode %s: no return values", method), ErrDecoding)
	}
	return out[0], nil
}
