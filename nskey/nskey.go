// Package nskey derives the namespaced storage keys used by the protocol's
// eternal storage contracts. Keys are the keccak256 hash of the tightly
// packed ABI encoding of their components, so a key computed here is
// byte-identical to one computed by on-chain Solidity code via
// keccak256(abi.encodePacked(...)).
package nskey

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Type tags a key component with its packed-encoding rule.
type Type uint8

const (
	// Bytes32 packs a fixed 32-byte value verbatim.
	Bytes32 Type = iota
	// Address packs a 20-byte account address verbatim.
	Address
	// Uint256 packs an unsigned integer as 32 big-endian bytes.
	Uint256
	// String packs the raw UTF-8 bytes with no length prefix or padding.
	String
)

// Key is a derived 32-byte namespace key.
type Key [32]byte

// Hex returns the 0x-prefixed hexadecimal form of the key.
func (k Key) Hex() string { return hexutil.Encode(k[:]) }

// IsZero reports whether the key is the all-zero value.
func (k Key) IsZero() bool { return k == Key{} }

var (
	// ErrLengthMismatch marks signatures whose component count does not
	// match the supplied values.
	ErrLengthMismatch = errors.New("nskey: signature and value counts differ")
	// ErrBadComponent marks a value that cannot be packed under its
	// declared type tag.
	ErrBadComponent = errors.New("nskey: component not representable")
)

// Encode packs the (type, value) pairs in order and returns the keccak256
// hash of the packed bytes. Identical inputs always produce identical keys;
// reordering or altering any component produces a different key.
func Encode(signature []Type, values []any) (Key, error) {
	if len(signature) != len(values) {
		return Key{}, fmt.Errorf("%w: %d tags, %d values", ErrLengthMismatch, len(signature), len(values))
	}
	if len(signature) == 0 {
		return Key{}, fmt.Errorf("%w: empty signature", ErrLengthMismatch)
	}
	packed := make([]byte, 0, 32*len(signature))
	for i, tag := range signature {
		chunk, err := pack(tag, values[i])
		if err != nil {
			return Key{}, fmt.Errorf("component %d: %w", i, err)
		}
		packed = append(packed, chunk...)
	}
	var key Key
	copy(key[:], ethcrypto.Keccak256(packed))
	return key, nil
}

func pack(tag Type, value any) ([]byte, error) {
	switch tag {
	case Bytes32:
		switch v := value.(type) {
		case Key:
			return v[:], nil
		case [32]byte:
			return v[:], nil
		case common.Hash:
			return v[:], nil
		case string:
			b, err := Bytes32FromString(v)
			if err != nil {
				return nil, err
			}
			return b[:], nil
		}
	case Address:
		switch v := value.(type) {
		case common.Address:
			return v[:], nil
		case [20]byte:
			return v[:], nil
		}
	case Uint256:
		switch v := value.(type) {
		case *big.Int:
			if v == nil || v.Sign() < 0 || v.BitLen() > 256 {
				return nil, fmt.Errorf("%w: uint256 out of range", ErrBadComponent)
			}
			word := new(uint256.Int)
			word.SetFromBig(v)
			out := word.Bytes32()
			return out[:], nil
		case *uint256.Int:
			if v == nil {
				return nil, fmt.Errorf("%w: nil uint256", ErrBadComponent)
			}
			out := v.Bytes32()
			return out[:], nil
		case uint64:
			out := uint256.NewInt(v).Bytes32()
			return out[:], nil
		}
	case String:
		if v, ok := value.(string); ok {
			return []byte(v), nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown type tag %d", ErrBadComponent, tag)
	}
	return nil, fmt.Errorf("%w: %T under tag %d", ErrBadComponent, value, tag)
}

// Bytes32FromString coerces a human-entered protocol key into a 32-byte
// value. An even-length 0x-prefixed hex string of at most 32 bytes decodes
// to its bytes, right-padded with zeros. Everything else is treated as an
// ASCII label and right-padded, which matches how the protocol front ends
// encode labels such as "0xCOVER1" that merely look hex-like.
func Bytes32FromString(s string) ([32]byte, error) {
	var out [32]byte
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return out, fmt.Errorf("%w: empty key", ErrBadComponent)
	}
	if raw, err := hexutil.Decode(trimmed); err == nil && len(raw) <= 32 {
		copy(out[:], raw)
		return out, nil
	}
	if len(trimmed) > 32 {
		return out, fmt.Errorf("%w: label %q exceeds 32 bytes", ErrBadComponent, trimmed)
	}
	copy(out[:], trimmed)
	return out, nil
}

// MustBytes32 is Bytes32FromString for compile-time protocol constants.
// It panics on malformed input and must not be fed caller data.
func MustBytes32(s string) [32]byte {
	out, err := Bytes32FromString(s)
	if err != nil {
		panic(err)
	}
	return out
}
