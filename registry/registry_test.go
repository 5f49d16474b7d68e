package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/store"
)

type countingRead struct {
	calls   atomic.Int64
	release chan struct{}
	addr    common.Address
	err     error
}

func (c *countingRead) fn(ctx context.Context, _ chain.Reader, _ chain.ID, _ common.Address, _ []store.Candidate) (store.Values, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return nil, c.err
	}
	return store.Values{"address": c.addr}, nil
}

func newTestResolver(read *countingRead) *Resolver {
	roots := map[chain.ID]common.Address{
		1: common.HexToAddress("0x0000000000000000000000000000000000000101"),
	}
	return New(roots, WithReadFunc(read.fn))
}

func TestResolveSingleFlight(t *testing.T) {
	read := &countingRead{
		release: make(chan struct{}),
		addr:    common.HexToAddress("0x00000000000000000000000000000000000000AA"),
	}
	resolver := newTestResolver(read)

	const workers = 16
	var (
		started  sync.WaitGroup
		finished sync.WaitGroup
	)
	results := make([]common.Address, workers)
	errs := make([]error, workers)

	started.Add(workers)
	finished.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer finished.Done()
			started.Done()
			results[i], errs[i] = resolver.Resolve(context.Background(), nil, 1, Cover)
		}()
	}
	started.Wait()
	close(read.release)
	finished.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i] != read.addr {
			t.Fatalf("worker %d resolved %s, want %s", i, results[i].Hex(), read.addr.Hex())
		}
	}
	if got := read.calls.Load(); got != 1 {
		t.Fatalf("underlying reads = %d, want exactly 1", got)
	}
}

func TestResolveCacheHitDoesNoIO(t *testing.T) {
	read := &countingRead{addr: common.HexToAddress("0x00000000000000000000000000000000000000BB")}
	resolver := newTestResolver(read)

	if _, err := resolver.Resolve(context.Background(), nil, 1, Governance); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	for i := 0; i < 10; i++ {
		addr, err := resolver.Resolve(context.Background(), nil, 1, Governance)
		if err != nil {
			t.Fatalf("cached resolve: %v", err)
		}
		if addr != read.addr {
			t.Fatalf("cached resolve returned %s", addr.Hex())
		}
	}
	if got := read.calls.Load(); got != 1 {
		t.Fatalf("underlying reads = %d, want 1", got)
	}
}

func TestResolveNegativeCacheAndActive(t *testing.T) {
	read := &countingRead{} // zero address: not registered
	resolver := newTestResolver(read)

	addr, err := resolver.Resolve(context.Background(), nil, 1, Policy)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if addr != (common.Address{}) {
		t.Fatalf("expected the zero sentinel, got %s", addr.Hex())
	}

	if _, err := resolver.ResolveActive(context.Background(), nil, 1, Policy); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if _, err := resolver.ResolveActive(context.Background(), nil, 1, Policy); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	// The sentinel is negatively cached; repeated lookups stay local.
	if got := read.calls.Load(); got != 1 {
		t.Fatalf("underlying reads = %d, want 1", got)
	}
}

func TestResolveErrorNotCached(t *testing.T) {
	boom := errors.New("read reverted")
	read := &countingRead{err: boom}
	resolver := newTestResolver(read)

	if _, err := resolver.Resolve(context.Background(), nil, 1, Stake); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
	read.err = nil
	read.addr = common.HexToAddress("0x00000000000000000000000000000000000000CC")
	addr, err := resolver.Resolve(context.Background(), nil, 1, Stake)
	if err != nil {
		t.Fatalf("resolve after failure: %v", err)
	}
	if addr != read.addr {
		t.Fatalf("resolved %s after recovery", addr.Hex())
	}
	if got := read.calls.Load(); got != 2 {
		t.Fatalf("underlying reads = %d, want 2", got)
	}
}

func TestResolveUnknownChain(t *testing.T) {
	resolver := newTestResolver(&countingRead{})
	if _, err := resolver.Resolve(context.Background(), nil, 99, Cover); !errors.Is(err, ErrUnknownChain) {
		t.Fatalf("expected ErrUnknownChain, got %v", err)
	}
}

func TestNamespaceKeyStablePerName(t *testing.T) {
	a, err := NamespaceKey(Cover)
	if err != nil {
		t.Fatalf("namespace key: %v", err)
	}
	b, err := NamespaceKey(Governance)
	if err != nil {
		t.Fatalf("namespace key: %v", err)
	}
	if a == b {
		t.Fatal("distinct contract names derived the same key")
	}
}
