// Package store reads typed values out of the protocol's eternal storage
// contracts. A batch of candidates is fanned out concurrently over one
// logical round trip and fails as a unit: callers never see a partial
// mapping.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/nskey"
)

// ReturnType declares how a candidate's raw 32-byte result is decoded.
type ReturnType uint8

const (
	ReturnAddress ReturnType = iota
	ReturnUint256
	ReturnBool
	ReturnBytes32
)

// Candidate is one read unit: the ordered key components, how to pack them,
// the expected return type and the output field the decoded value lands in.
type Candidate struct {
	Signature []nskey.Type
	Parts     []any
	Returns   ReturnType
	Property  string
}

var (
	// ErrNoCandidates marks an empty batch.
	ErrNoCandidates = errors.New("store: at least one read candidate is required")
	// ErrShortResult marks a contract return shorter than one word.
	ErrShortResult = errors.New("store: result shorter than 32 bytes")
)

// Typed getter selectors of the eternal storage contract, truncated
// keccak256 of the canonical signatures.
var (
	selGetAddress = ethcrypto.Keccak256([]byte("getAddress(bytes32)"))[:4]
	selGetUint    = ethcrypto.Keccak256([]byte("getUint(bytes32)"))[:4]
	selGetBool    = ethcrypto.Keccak256([]byte("getBool(bytes32)"))[:4]
	selGetBytes32 = ethcrypto.Keccak256([]byte("getBytes32(bytes32)"))[:4]
)

// Values maps candidate property names to their decoded values.
type Values map[string]any

// Address returns the decoded address under property p, or the zero
// address when absent.
func (v Values) Address(p string) common.Address {
	addr, _ := v[p].(common.Address)
	return addr
}

// Uint256 returns the decoded scalar under property p, or zero when absent.
func (v Values) Uint256(p string) *uint256.Int {
	if scalar, ok := v[p].(*uint256.Int); ok {
		return scalar
	}
	return new(uint256.Int)
}

// Bool returns the decoded flag under property p.
func (v Values) Bool(p string) bool {
	flag, _ := v[p].(bool)
	return flag
}

// Bytes32 returns the decoded word under property p.
func (v Values) Bytes32(p string) [32]byte {
	word, _ := v[p].([32]byte)
	return word
}

// Read resolves every candidate against the storage contract in one
// concurrent batch. Each candidate's key is derived via nskey, the matching
// typed getter is called through the reader, and the raw word is decoded to
// the declared return type. Any failing candidate cancels the rest and
// fails the whole call.
func Read(ctx context.Context, reader chain.Reader, chainID chain.ID, contract common.Address, candidates []Candidate) (Values, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	decoded := make([]any, len(candidates))
	group, ctx := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		group.Go(func() error {
			value, err := readOne(ctx, reader, chainID, contract, candidate)
			if err != nil {
				return fmt.Errorf("candidate %q: %w", candidate.Property, err)
			}
			decoded[i] = value
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	values := make(Values, len(candidates))
	for i, candidate := range candidates {
		values[candidate.Property] = decoded[i]
	}
	return values, nil
}

func readOne(ctx context.Context, reader chain.Reader, chainID chain.ID, contract common.Address, c Candidate) (any, error) {
	key, err := nskey.Encode(c.Signature, c.Parts)
	if err != nil {
		return nil, err
	}
	calldata := append(append([]byte{}, selector(c.Returns)...), key[:]...)
	raw, err := reader.ReadRaw(ctx, chainID, contract, calldata)
	if err != nil {
		return nil, err
	}
	if len(raw) < 32 {
		return nil, fmt.Errorf("%w: got %d", ErrShortResult, len(raw))
	}
	return decode(c.Returns, raw[:32]), nil
}

func selector(rt ReturnType) []byte {
	switch rt {
	case ReturnUint256:
		return selGetUint
	case ReturnBool:
		return selGetBool
	case ReturnBytes32:
		return selGetBytes32
	default:
		return selGetAddress
	}
}

func decode(rt ReturnType, word []byte) any {
	switch rt {
	case ReturnUint256:
		return new(uint256.Int).SetBytes(word)
	case ReturnBool:
		return word[31] != 0
	case ReturnBytes32:
		var out [32]byte
		copy(out[:], word)
		return out
	default:
		return common.BytesToAddress(word[12:])
	}
}
