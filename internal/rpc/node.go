// Package rpc talks to the remote execution node: read-only contract calls and
// state-changing contract sends.
package rpc

import (
	"context"
	"fmt"
	"sync/atomic"
)

// CallRequest is a read-only contract call. ID only correlates logs with the transport.
type CallRequest struct {
	ID              uint64
	ContractAddress string // 40-hex, no 0x
	Data            []byte
}

type SendRequest struct {
	ID              uint64
	ContractAddress string
	Data            []byte
	Amount          string // decimal, native coin
	GasLimit        uint64
	GasPrice        string // decimal, native coin per gas unit
}

type SendResult struct {
	TxID    string `json:"txid"`
	Sender  string `json:"sender"`
	Hash160 string `json:"hash160"`
}

// Node is the remote node as the controllers see it.
type Node interface {
	CallContract(ctx context.Context, req CallRequest) ([]byte, error)
	SendToContract(ctx context.Context, req SendRequest) (SendResult, error)
}

// RemoteCallError is a transport or contract-execution failure.
type RemoteCallError struct {
	Method string
	ID     uint64
	// Excepted is the node's execution exception, empty for transport failures.
	Excepted string
	Err      error
}

func (e *RemoteCallError) Error() string {
	if e.Excepted != "" {
		return fmt.Sprintf("rpc %s #%d: contract execution failed: %s", e.Method, e.ID, e.Excepted)
	}
	return fmt.Sprintf("rpc %s #%d: %v", e.Method, e.ID, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

var lastID atomic.Uint64

// NextID returns a process-unique request id.
func NextID() uint64 {
	return lastID.Add(1)
}
