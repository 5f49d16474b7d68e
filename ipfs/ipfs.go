// Package ipfs is the off-chain content store boundary. Records are stored
// content-addressed; the store returns both the human-readable CIDv0 hash
// and the fixed-width sha2-256 digest that gets anchored on-chain.
package ipfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// Store is the content store consumed by the submission pipeline and the
// read workflows. Durability and replication belong to the store itself.
type Store interface {
	// Write persists the payload and returns its CIDv0 hash together
	// with the 32-byte digest embedded in it.
	Write(ctx context.Context, payload []byte) (string, [32]byte, error)

	// Read fetches the payload previously stored under the digest.
	Read(ctx context.Context, digest [32]byte) ([]byte, error)
}

// ErrBadCID marks an identifier that is not a CIDv0 sha2-256 hash.
var ErrBadCID = errors.New("ipfs: not a CIDv0 sha2-256 identifier")

// CIDv0 multihash framing: sha2-256 function code, 32-byte length.
const (
	mhSHA256 = 0x12
	mhLen32  = 0x20
)

// DigestFromHash extracts the 32-byte sha2-256 digest from a base58 CIDv0
// ("Qm...") identifier.
func DigestFromHash(hash string) ([32]byte, error) {
	var digest [32]byte
	raw := base58.Decode(hash)
	if len(raw) != 34 || raw[0] != mhSHA256 || raw[1] != mhLen32 {
		return digest, fmt.Errorf("%w: %q", ErrBadCID, hash)
	}
	copy(digest[:], raw[2:])
	return digest, nil
}

// HashFromDigest rebuilds the base58 CIDv0 identifier for a digest.
func HashFromDigest(digest [32]byte) string {
	framed := make([]byte, 0, 34)
	framed = append(framed, mhSHA256, mhLen32)
	framed = append(framed, digest[:]...)
	return base58.Encode(framed)
}
