// Package pipeline implements the record submission workflow shared by
// every write operation: validate caller fields, resolve the signer,
// enrich the record, persist it off-chain, check ledger preconditions,
// anchor the digest on-chain and wrap the outcome. Steps run in strict
// sequence; each one gates the next and the first failure terminates the
// operation with a typed error.
package pipeline

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/ipfs"
	"github.com/mark-15/neptunemutual-sdk/observability"
	"github.com/mark-15/neptunemutual-sdk/registry"
	"github.com/mark-15/neptunemutual-sdk/result"
)

// Record is a submittable payload. The pipeline stamps the audit fields
// exactly once, after validation and before persistence; callers never
// supply them.
type Record interface {
	SetAudit(createdBy common.Address, permalink string)
	Payload() ([]byte, error)
}

// Field is one required caller-supplied value, checked in declaration
// order. The first missing field determines the error.
type Field struct {
	Name  string
	Value any
}

func (f Field) missing() bool {
	switch v := f.Value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case *big.Int:
		return v == nil || v.Sign() == 0
	case *uint256.Int:
		return v == nil || v.IsZero()
	case uint64:
		return v == 0
	case [32]byte:
		return v == [32]byte{}
	case common.Address:
		return v == common.Address{}
	case []common.Address:
		return len(v) == 0
	case []bool:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

// Operation parametrises one write workflow.
type Operation struct {
	// Name labels logs and metrics, e.g. "createCover".
	Name string
	// Contract is the protocol module the anchoring call targets.
	Contract registry.ContractName
	// Method is the Solidity signature of the anchoring call.
	Method string
	// Fields are the required inputs in validation order.
	Fields []Field
	// Record is the off-chain payload; nil for operations that anchor
	// without metadata (whitelist and status toggles).
	Record Record
	// Permalink builds the record's path on the per-chain host.
	Permalink func() string
	// Precondition, when set, is a ledger-side state check executed
	// after persistence and before anchoring.
	Precondition func(ctx context.Context) error
	// Args builds the anchoring call arguments from the content digest.
	Args func(digest [32]byte) []any
	// Overrides carries optional transaction options.
	Overrides *chain.Overrides
}

// Receipt is the result payload of a successful submission.
type Receipt struct {
	Tx        *chain.TxHandle `json:"tx"`
	Hash      string          `json:"hash,omitempty"`
	Digest    string          `json:"digest,omitempty"`
	Permalink string          `json:"permalink,omitempty"`
}

// Pipeline bundles the collaborators every write operation needs. Build one
// per process and share it across domain clients.
type Pipeline struct {
	Resolver *registry.Resolver
	Content  ipfs.Store
	Conn     chain.Connector
	Hosts    func(chain.ID) (string, error)
	Log      *slog.Logger
}

// Submit runs the operation through the seven pipeline steps. It returns a
// SUCCESS envelope only when every step completed; every failure is one of
// the result taxonomy errors and is never retried here.
func (p *Pipeline) Submit(ctx context.Context, chainID chain.ID, op Operation) (*result.Wrapped, error) {
	wrapped, err := p.submit(ctx, chainID, op)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	observability.Pipeline().Observe(op.Name, outcome)
	return wrapped, err
}

func (p *Pipeline) submit(ctx context.Context, chainID chain.ID, op Operation) (*result.Wrapped, error) {
	// Step 1: field validation, before any I/O.
	for _, field := range op.Fields {
		if field.missing() {
			return nil, &result.InvalidInputError{Field: field.Name}
		}
	}

	// Step 2: identity resolution.
	signer, ok := p.Conn.SignerAddress()
	if !ok {
		return nil, &result.InvalidSignerError{}
	}

	// Steps 3 and 4: enrichment and off-chain persistence.
	var (
		digest    [32]byte
		hash      string
		permalink string
	)
	if op.Record != nil {
		host, err := p.Hosts(chainID)
		if err != nil {
			return nil, err
		}
		permalink = "https://" + host + op.Permalink()
		op.Record.SetAudit(signer, permalink)

		payload, err := op.Record.Payload()
		if err != nil {
			return nil, &result.PersistenceError{Reason: "serialize record", Err: err}
		}
		hash, digest, err = p.Content.Write(ctx, payload)
		if err != nil {
			return nil, &result.PersistenceError{Reason: "content store write", Err: err}
		}
		if digest == [32]byte{} {
			return nil, &result.PersistenceError{Reason: "content store returned no digest"}
		}
	}

	// Step 5: ledger-side precondition. Deliberately a second round trip:
	// off-chain persistence success and on-chain state are independent
	// facts, and a concurrent actor may have won the race since step 4.
	if op.Precondition != nil {
		if err := op.Precondition(ctx); err != nil {
			return nil, err
		}
	}

	// Step 6: resolve the target module and anchor.
	contract, err := p.Resolver.ResolveActive(ctx, p.Conn, chainID, op.Contract)
	if err != nil {
		return nil, err
	}
	tx, err := p.Conn.SendTransaction(ctx, chainID, contract, op.Method, op.Args(digest), op.Overrides)
	if err != nil {
		return nil, &result.TransactionError{Err: err}
	}

	if p.Log != nil {
		p.Log.InfoContext(ctx, "record anchored",
			slog.String("operation", op.Name),
			slog.String("chain", chainID.String()),
			slog.String("tx", tx.Hash.Hex()),
			slog.String("hash", hash),
		)
	}

	// Step 7: uniform envelope.
	receipt := &Receipt{Tx: tx, Hash: hash, Permalink: permalink}
	if op.Record != nil {
		receipt.Digest = hexutil.Encode(digest[:])
	}
	return result.Success(receipt), nil
}
