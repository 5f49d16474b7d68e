// Package registry resolves the current addresses of protocol contracts
// through the on-chain namespace registry and caches them for the process
// lifetime. Registries in this domain change only through governed upgrade
// procedures, so entries carry no TTL and are never evicted; a process
// restart is the invalidation mechanism, and callers accept that a
// mid-process contract migration leaves the cache stale.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/nskey"
	"github.com/mark-15/neptunemutual-sdk/observability"
	"github.com/mark-15/neptunemutual-sdk/store"
)

// ContractName is the logical name of a protocol module in the namespace
// registry.
type ContractName string

const (
	Cover           ContractName = "cns:cover"
	Governance      ContractName = "cns:gov"
	Policy          ContractName = "cns:cover:policy"
	Stake           ContractName = "cns:cover:stake"
	ClaimsProcessor ContractName = "cns:claim:processor"
	VaultFactory    ContractName = "cns:cover:vault:factory"
)

var nsContracts = nskey.MustBytes32("ns:contracts")

var (
	// ErrNotRegistered marks a contract that resolves to the zero
	// sentinel on the target chain.
	ErrNotRegistered = errors.New("registry: contract not registered on chain")
	// ErrUnknownChain marks a chain id with no configured root store.
	ErrUnknownChain = errors.New("registry: no root store configured for chain")
)

// ReadFunc is the storage-read dependency; injectable so that tests can
// count and gate underlying reads.
type ReadFunc func(ctx context.Context, reader chain.Reader, chainID chain.ID, contract common.Address, candidates []store.Candidate) (store.Values, error)

// Option configures a Resolver.
type Option func(*Resolver)

// WithReadFunc replaces the storage-read dependency.
func WithReadFunc(fn ReadFunc) Option {
	return func(r *Resolver) { r.read = fn }
}

type cacheKey struct {
	chain chain.ID
	key   nskey.Key
}

// Resolver is the process-wide address cache. Construct one at process
// start and share it by reference; entries are added, never replaced.
type Resolver struct {
	roots map[chain.ID]common.Address
	read  ReadFunc
	group singleflight.Group

	mu    sync.RWMutex
	cache map[cacheKey]common.Address
}

// New builds a resolver over the per-chain root store addresses.
func New(roots map[chain.ID]common.Address, opts ...Option) *Resolver {
	r := &Resolver{
		roots: make(map[chain.ID]common.Address, len(roots)),
		read:  store.Read,
		cache: make(map[cacheKey]common.Address),
	}
	for id, addr := range roots {
		r.roots[id] = addr
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the root store address for the chain. Read workflows query
// typed storage against it directly.
func (r *Resolver) Root(chainID chain.ID) (common.Address, error) {
	root, ok := r.roots[chainID]
	if !ok {
		return common.Address{}, fmt.Errorf("%w %d", ErrUnknownChain, chainID)
	}
	return root, nil
}

// NamespaceKey derives the registry lookup key for a contract name.
func NamespaceKey(name ContractName) (nskey.Key, error) {
	return nskey.Encode(
		[]nskey.Type{nskey.Bytes32, nskey.Bytes32},
		[]any{nsContracts, string(name)},
	)
}

// Resolve returns the cached address for (chainID, name), fetching it from
// the root registry on a miss. Concurrent misses for the same pair share a
// single underlying read. The zero sentinel is cached too (negative cache)
// and returned as-is; use ResolveActive when a live contract is required.
func (r *Resolver) Resolve(ctx context.Context, reader chain.Reader, chainID chain.ID, name ContractName) (common.Address, error) {
	key, err := NamespaceKey(name)
	if err != nil {
		return common.Address{}, err
	}
	ck := cacheKey{chain: chainID, key: key}

	r.mu.RLock()
	addr, ok := r.cache[ck]
	r.mu.RUnlock()
	if ok {
		observability.Registry().Hit(chainID.String())
		return addr, nil
	}

	resolved, err, shared := r.group.Do(fmt.Sprintf("%d/%x", chainID, key), func() (any, error) {
		// A racing caller may have populated the entry while this one
		// was queued behind the flight.
		r.mu.RLock()
		cached, ok := r.cache[ck]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		root, ok := r.roots[chainID]
		if !ok {
			return common.Address{}, fmt.Errorf("%w %d", ErrUnknownChain, chainID)
		}
		observability.Registry().Miss(chainID.String())
		values, err := r.read(ctx, reader, chainID, root, []store.Candidate{{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32},
			Parts:     []any{nsContracts, string(name)},
			Returns:   store.ReturnAddress,
			Property:  "address",
		}})
		if err != nil {
			return common.Address{}, err
		}
		fetched := values.Address("address")

		r.mu.Lock()
		r.cache[ck] = fetched
		r.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return common.Address{}, err
	}
	if shared {
		observability.Registry().Shared(chainID.String())
	}
	return resolved.(common.Address), nil
}

// ResolveActive is Resolve with the zero sentinel treated as an error. Every
// path that hands the address to a downstream contract call uses this.
func (r *Resolver) ResolveActive(ctx context.Context, reader chain.Reader, chainID chain.ID, name ContractName) (common.Address, error) {
	addr, err := r.Resolve(ctx, reader, chainID, name)
	if err != nil {
		return common.Address{}, err
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s on %d", ErrNotRegistered, name, chainID)
	}
	return addr, nil
}
