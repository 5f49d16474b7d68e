package incident

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/pipeline"
	"github.com/mark-15/neptunemutual-sdk/registry"
	"github.com/mark-15/neptunemutual-sdk/result"
	"github.com/mark-15/neptunemutual-sdk/store"
)

// fakeConn answers every storage read with the configured word, which is
// enough to steer the precondition checks either way.
type fakeConn struct {
	signer    common.Address
	readWord  []byte
	reads     atomic.Int64
	sends     atomic.Int64
	gotMethod string
	gotArgs   []any
}

func (f *fakeConn) ReadRaw(context.Context, chain.ID, common.Address, []byte) ([]byte, error) {
	f.reads.Add(1)
	if f.readWord != nil {
		out := make([]byte, 32)
		copy(out[32-len(f.readWord):], f.readWord)
		return out, nil
	}
	return make([]byte, 32), nil
}

func (f *fakeConn) SendTransaction(_ context.Context, chainID chain.ID, _ common.Address, method string, args []any, _ *chain.Overrides) (*chain.TxHandle, error) {
	f.sends.Add(1)
	f.gotMethod = method
	f.gotArgs = args
	return &chain.TxHandle{Hash: common.HexToHash("0x03"), ChainID: chainID}, nil
}

func (f *fakeConn) SignerAddress() (common.Address, bool) {
	return f.signer, f.signer != (common.Address{})
}

type fakeContent struct {
	writes atomic.Int64
	hash   string
	digest [32]byte
}

func (f *fakeContent) Write(context.Context, []byte) (string, [32]byte, error) {
	f.writes.Add(1)
	return f.hash, f.digest, nil
}

func (f *fakeContent) Read(context.Context, [32]byte) ([]byte, error) {
	return nil, errors.New("not used")
}

func newTestClient(conn *fakeConn, content *fakeContent) *Client {
	roots := map[chain.ID]common.Address{
		1: common.HexToAddress("0x0000000000000000000000000000000000000101"),
	}
	resolver := registry.New(roots, registry.WithReadFunc(func(context.Context, chain.Reader, chain.ID, common.Address, []store.Candidate) (store.Values, error) {
		return store.Values{"address": common.HexToAddress("0x00000000000000000000000000000000000000AB")}, nil
	}))
	return New(&pipeline.Pipeline{
		Resolver: resolver,
		Content:  content,
		Conn:     conn,
		Hosts:    func(chain.ID) (string, error) { return "test.neptunemutual.com", nil },
	})
}

func signerConn() *fakeConn {
	return &fakeConn{signer: common.HexToAddress("0x00000000000000000000000000000000000000EE")}
}

func TestReportEmptyTitle(t *testing.T) {
	conn := signerConn()
	content := &fakeContent{hash: "Qm", digest: [32]byte{1}}
	client := newTestClient(conn, content)

	_, err := client.Report(context.Background(), 1, ReportArgs{
		CoverKey: "0xCOVER1",
		Info:     Report{Title: ""},
		Stake:    big.NewInt(250),
	}, nil)
	var invalid *result.InvalidInputError
	if !errors.As(err, &invalid) || invalid.Field != "title" {
		t.Fatalf("expected title violation, got %v", err)
	}
	if content.writes.Load() != 0 || conn.sends.Load() != 0 || conn.reads.Load() != 0 {
		t.Fatal("invalid report still performed I/O")
	}
}

func TestReportSucceedsWhenNoActiveIncident(t *testing.T) {
	digest := [32]byte{0xE1}
	conn := signerConn() // reads decode to zero: no active incident
	content := &fakeContent{hash: "QmReport", digest: digest}
	client := newTestClient(conn, content)

	wrapped, err := client.Report(context.Background(), 1, ReportArgs{
		CoverKey: "0xCOVER1",
		Info:     Report{Title: "Oracle failure"},
		Stake:    big.NewInt(250),
	}, nil)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if wrapped.Status != result.StatusSuccess {
		t.Fatalf("status = %s", wrapped.Status)
	}
	if conn.gotMethod != "report(bytes32,bytes32,bytes32,uint256)" {
		t.Fatalf("anchored via %q", conn.gotMethod)
	}
	if got := conn.gotArgs[2].([32]byte); got != digest {
		t.Fatalf("anchored digest %x, want %x", got, digest)
	}
	receipt := wrapped.Result.(*pipeline.Receipt)
	if !strings.Contains(receipt.Permalink, "/reports/0xCOVER1") {
		t.Fatalf("permalink = %q", receipt.Permalink)
	}
}

func TestReportRejectedWhenIncidentActive(t *testing.T) {
	conn := signerConn()
	conn.readWord = []byte{0x65, 0x5F, 0x10, 0x00} // nonzero incident date
	content := &fakeContent{hash: "Qm", digest: [32]byte{1}}
	client := newTestClient(conn, content)

	_, err := client.Report(context.Background(), 1, ReportArgs{
		CoverKey: "0xCOVER1",
		Info:     Report{Title: "Oracle failure"},
		Stake:    big.NewInt(250),
	}, nil)
	if !errors.Is(err, result.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if conn.sends.Load() != 0 {
		t.Fatal("a transaction was sent despite the active incident")
	}
}

func TestDisputeWithoutIncident(t *testing.T) {
	conn := signerConn() // incident date reads back as zero
	content := &fakeContent{hash: "Qm", digest: [32]byte{1}}
	client := newTestClient(conn, content)

	_, err := client.Dispute(context.Background(), 1, DisputeArgs{
		CoverKey:     "0xCOVER1",
		IncidentDate: 1700000000,
		Info:         Dispute{Title: "Counter evidence"},
		Stake:        big.NewInt(250),
	}, nil)
	if !errors.Is(err, result.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	var precondition *result.PreconditionError
	if !errors.As(err, &precondition) || !strings.Contains(precondition.Reason, "no incident") {
		t.Fatalf("unexpected reason: %v", err)
	}
	if conn.sends.Load() != 0 {
		t.Fatal("a transaction was sent despite the missing incident")
	}
}

func TestDisputeAlreadyDisputed(t *testing.T) {
	conn := signerConn()
	conn.readWord = []byte{0x01} // incident active and refuting stake present
	content := &fakeContent{hash: "Qm", digest: [32]byte{1}}
	client := newTestClient(conn, content)

	_, err := client.Dispute(context.Background(), 1, DisputeArgs{
		CoverKey:     "0xCOVER1",
		IncidentDate: 1700000000,
		Info:         Dispute{Title: "Counter evidence"},
		Stake:        big.NewInt(250),
	}, nil)
	var precondition *result.PreconditionError
	if !errors.As(err, &precondition) || !strings.Contains(precondition.Reason, "already disputed") {
		t.Fatalf("expected already-disputed failure, got %v", err)
	}
	if conn.sends.Load() != 0 {
		t.Fatal("a transaction was sent despite the existing dispute")
	}
}

func TestAttestEmptyStake(t *testing.T) {
	conn := signerConn()
	client := newTestClient(conn, &fakeContent{})

	_, err := client.Attest(context.Background(), 1, "0xCOVER1", "", 1700000000, nil, nil)
	var invalid *result.InvalidInputError
	if !errors.As(err, &invalid) || invalid.Field != "stake" {
		t.Fatalf("expected stake violation, got %v", err)
	}
	if conn.reads.Load() != 0 {
		t.Fatal("a precondition read ran before validation")
	}
}

func TestAttestAnchorsStake(t *testing.T) {
	conn := signerConn()
	conn.readWord = []byte{0x01} // incident exists
	client := newTestClient(conn, &fakeContent{})

	wrapped, err := client.Attest(context.Background(), 1, "0xCOVER1", "", 1700000000, big.NewInt(500), nil)
	if err != nil {
		t.Fatalf("attest: %v", err)
	}
	if wrapped.Status != result.StatusSuccess {
		t.Fatalf("status = %s", wrapped.Status)
	}
	if conn.gotMethod != "attest(bytes32,bytes32,uint256,uint256)" {
		t.Fatalf("anchored via %q", conn.gotMethod)
	}
}

func TestRefuteRequiresIncident(t *testing.T) {
	conn := signerConn() // zero reads: no incident
	client := newTestClient(conn, &fakeContent{})

	_, err := client.Refute(context.Background(), 1, "0xCOVER1", "", 1700000000, big.NewInt(500), nil)
	if !errors.Is(err, result.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestGetStakes(t *testing.T) {
	conn := &fakeConn{readWord: []byte{0x03, 0xE8}} // 1000
	client := newTestClient(conn, &fakeContent{})

	wrapped, err := client.GetStakes(context.Background(), 1, "0xCOVER1", "", 1700000000)
	if err != nil {
		t.Fatalf("getStakes: %v", err)
	}
	stakes := wrapped.Result.(*Stakes)
	if stakes.Yes != "1000" || stakes.No != "1000" {
		t.Fatalf("stakes = %+v", stakes)
	}
}

func TestGetIncidentDate(t *testing.T) {
	conn := &fakeConn{readWord: []byte{0x01}}
	client := newTestClient(conn, &fakeContent{})

	wrapped, err := client.GetIncidentDate(context.Background(), 1, "0xCOVER1", "")
	if err != nil {
		t.Fatalf("getIncidentDate: %v", err)
	}
	if got := wrapped.Result.(uint64); got != 1 {
		t.Fatalf("incident date = %d", got)
	}
}

func TestGetReporterUnknownIncident(t *testing.T) {
	conn := &fakeConn{} // zero address reporter
	client := newTestClient(conn, &fakeContent{})

	_, err := client.GetReporter(context.Background(), 1, "0xCOVER1", "", 1700000000)
	if !errors.Is(err, result.ErrInvalidKey) {
		t.Fatalf("expected invalid key, got %v", err)
	}
}
