// Package chain defines the connector boundary between the SDK and the
// target EVM networks, plus an ethclient-backed implementation. The
// connector owns endpoint selection and signing; timeout and retry policy
// belong to the caller-supplied context and the node, never to this layer.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ID identifies a target ledger network. It partitions caches and routes
// every read and write.
type ID uint64

func (id ID) String() string { return fmt.Sprintf("%d", uint64(id)) }

// TxHandle describes a submitted transaction.
type TxHandle struct {
	Hash     common.Hash `json:"hash"`
	ChainID  ID          `json:"chainId"`
	Nonce    uint64      `json:"nonce"`
	GasLimit uint64      `json:"gasLimit"`
}

// Overrides enumerates the recognised per-transaction options. Zero fields
// fall back to node-derived defaults: gas limit from eth_estimateGas, gas
// price from eth_gasPrice, nonce from the pending account state, value 0.
type Overrides struct {
	GasLimit  uint64
	GasPrice  *big.Int
	GasTipCap *big.Int
	Value     *big.Int
	Nonce     *uint64
}

// Reader is the read-only half of the connector: a raw eth_call against a
// contract, returning the raw return bytes.
type Reader interface {
	ReadRaw(ctx context.Context, chainID ID, contract common.Address, calldata []byte) ([]byte, error)
}

// Connector is the full ledger boundary consumed by write operations.
type Connector interface {
	Reader

	// SendTransaction packs method and args into calldata, signs and
	// submits a single transaction. Failures propagate unmodified; this
	// layer never retries a write that may have partially succeeded.
	SendTransaction(ctx context.Context, chainID ID, contract common.Address, method string, args []any, o *Overrides) (*TxHandle, error)

	// SignerAddress derives the account address of the configured
	// credential. ok is false for read-only credentials.
	SignerAddress() (common.Address, bool)
}
