// Package incident exposes the reporting workflow of the protocol: filing
// an incident against a covered product, disputing it, adding attesting or
// refuting stakes, and reading the reporting state back out of storage.
//
// An incident is identified by (cover key, product key, incident date); the
// date doubles as the secondary key for all stake and reporter slots.
package incident

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/nskey"
	"github.com/mark-15/neptunemutual-sdk/pipeline"
	"github.com/mark-15/neptunemutual-sdk/store"
)

// Storage slots of the governance module inside the eternal storage
// contract.
var (
	nsGovIncidentDate  = nskey.MustBytes32("ns:gov:rep:incident:date")
	nsGovStatus        = nskey.MustBytes32("ns:gov:rep:status")
	nsGovWitnessYes    = nskey.MustBytes32("ns:gov:rep:witness:yes")
	nsGovWitnessNo     = nskey.MustBytes32("ns:gov:rep:witness:no")
	nsGovStakeOwnedYes = nskey.MustBytes32("ns:gov:rep:stake:owned:yes")
	nsGovStakeOwnedNo  = nskey.MustBytes32("ns:gov:rep:stake:owned:no")
	nsGovMinFirstStake = nskey.MustBytes32("ns:gov:rep:min:first:stake")
	nsGovReporterYes   = nskey.MustBytes32("ns:gov:rep:reporter:yes")
)

// Report is the off-chain payload of an incident report.
type Report struct {
	CoverKey        string   `json:"coverKey"`
	ProductKey      string   `json:"productKey,omitempty"`
	Title           string   `json:"title"`
	ObservedAt      int64    `json:"observed,omitempty"`
	ProofOfIncident []string `json:"proofOfIncident,omitempty"`
	Description     string   `json:"description,omitempty"`

	// Populated by the pipeline, never by callers.
	CreatedBy string `json:"createdBy,omitempty"`
	Permalink string `json:"permalink,omitempty"`
}

// SetAudit stamps the author address and permalink.
func (r *Report) SetAudit(createdBy common.Address, permalink string) {
	r.CreatedBy = createdBy.Hex()
	r.Permalink = permalink
}

// Payload serializes the enriched record for off-chain persistence.
func (r *Report) Payload() ([]byte, error) { return json.Marshal(r) }

// Dispute is the off-chain payload of a dispute against an active incident.
type Dispute struct {
	CoverKey     string   `json:"coverKey"`
	ProductKey   string   `json:"productKey,omitempty"`
	IncidentDate uint64   `json:"incidentDate"`
	Title        string   `json:"title"`
	Proof        []string `json:"proofOfDispute,omitempty"`
	Description  string   `json:"description,omitempty"`

	CreatedBy string `json:"createdBy,omitempty"`
	Permalink string `json:"permalink,omitempty"`
}

// SetAudit stamps the author address and permalink.
func (d *Dispute) SetAudit(createdBy common.Address, permalink string) {
	d.CreatedBy = createdBy.Hex()
	d.Permalink = permalink
}

// Payload serializes the enriched record for off-chain persistence.
func (d *Dispute) Payload() ([]byte, error) { return json.Marshal(d) }

// Client runs reporting operations through a shared pipeline.
type Client struct {
	p *pipeline.Pipeline
}

// New wraps the pipeline in an incident client.
func New(p *pipeline.Pipeline) *Client {
	return &Client{p: p}
}

func reportPermalink(coverKey string) string {
	return "/reports/" + coverKey
}

// incidentDate reads the active incident date for (cover, product); zero
// means no active incident.
func (c *Client) incidentDate(ctx context.Context, chainID chain.ID, coverKey, productKey [32]byte) (*uint256.Int, error) {
	root, err := c.p.Resolver.Root(chainID)
	if err != nil {
		return nil, err
	}
	values, err := store.Read(ctx, c.p.Conn, chainID, root, []store.Candidate{{
		Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32, nskey.Bytes32},
		Parts:     []any{nsGovIncidentDate, coverKey, productKey},
		Returns:   store.ReturnUint256,
		Property:  "incidentDate",
	}})
	if err != nil {
		return nil, fmt.Errorf("incident: read incident date: %w", err)
	}
	return values.Uint256("incidentDate"), nil
}

// refutedStake reads the aggregate refuting stake for an incident; zero
// means nobody has disputed yet.
func (c *Client) refutedStake(ctx context.Context, chainID chain.ID, coverKey, productKey [32]byte, incidentDate uint64) (*uint256.Int, error) {
	root, err := c.p.Resolver.Root(chainID)
	if err != nil {
		return nil, err
	}
	values, err := store.Read(ctx, c.p.Conn, chainID, root, []store.Candidate{{
		Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32, nskey.Bytes32, nskey.Uint256},
		Parts:     []any{nsGovWitnessNo, coverKey, productKey, incidentDate},
		Returns:   store.ReturnUint256,
		Property:  "no",
	}})
	if err != nil {
		return nil, fmt.Errorf("incident: read refuted stake: %w", err)
	}
	return values.Uint256("no"), nil
}
