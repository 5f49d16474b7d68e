// Package crypto wraps the secp256k1 signing credential used to submit
// protocol transactions. Addresses are standard 20-byte EVM addresses.
package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// PrivateKey is a signing credential. A nil *PrivateKey is a read-only
// credential everywhere the SDK accepts one.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// GeneratePrivateKey creates a fresh secp256k1 key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(ethcrypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// FromHex parses a hex-encoded private key, with or without a 0x prefix.
func FromHex(s string) (*PrivateKey, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if trimmed == "" {
		return nil, errors.New("crypto: empty private key")
	}
	key, err := ethcrypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes rebuilds a key from its raw 32-byte form.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := ethcrypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// Bytes returns the raw 32-byte private key.
func (k *PrivateKey) Bytes() []byte {
	return ethcrypto.FromECDSA(k.key)
}

// Address derives the EVM account address of the credential.
func (k *PrivateKey) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.key.PublicKey)
}

// ECDSA exposes the underlying key for transaction signing.
func (k *PrivateKey) ECDSA() *ecdsa.PrivateKey {
	return k.key
}
