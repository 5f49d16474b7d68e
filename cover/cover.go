// Package cover exposes the cover and product operations of the protocol:
// creating and updating covers and products, toggling user whitelists and
// product status, and reading cover metadata back out of storage.
package cover

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mark-15/neptunemutual-sdk/nskey"
	"github.com/mark-15/neptunemutual-sdk/pipeline"
)

// Storage slots of the cover module inside the eternal storage contract.
var (
	nsCoverOwner             = nskey.MustBytes32("ns:cover:owner")
	nsCoverInfo              = nskey.MustBytes32("ns:cover:info")
	nsCoverSupportsProducts  = nskey.MustBytes32("ns:cover:supports:products")
	nsCoverRequiresWhitelist = nskey.MustBytes32("ns:cover:requires:whitelist")
	nsCoverProductInfo       = nskey.MustBytes32("ns:cover:product:info")
	nsCoverProductStatus     = nskey.MustBytes32("ns:cover:product:status")
)

// Info is the caller-supplied cover metadata plus the audit fields the
// pipeline stamps before persistence.
type Info struct {
	Key           string   `json:"key"`
	CoverName     string   `json:"coverName"`
	ProjectName   string   `json:"projectName,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	About         string   `json:"about,omitempty"`
	Rules         string   `json:"rules,omitempty"`
	ExclusionList []string `json:"exclusions,omitempty"`
	Links         []string `json:"links,omitempty"`

	// Populated by the pipeline, never by callers.
	CreatedBy string `json:"createdBy,omitempty"`
	Permalink string `json:"permalink,omitempty"`
}

// SetAudit stamps the author address and permalink.
func (i *Info) SetAudit(createdBy common.Address, permalink string) {
	i.CreatedBy = createdBy.Hex()
	i.Permalink = permalink
}

// Payload serializes the enriched record for off-chain persistence.
func (i *Info) Payload() ([]byte, error) { return json.Marshal(i) }

// ProductInfo is the product-level counterpart of Info.
type ProductInfo struct {
	CoverKey    string   `json:"coverKey"`
	ProductKey  string   `json:"productKey"`
	ProductName string   `json:"productName"`
	Tags        []string `json:"tags,omitempty"`
	About       string   `json:"about,omitempty"`
	Rules       string   `json:"rules,omitempty"`
	Links       []string `json:"links,omitempty"`

	CreatedBy string `json:"createdBy,omitempty"`
	Permalink string `json:"permalink,omitempty"`
}

// SetAudit stamps the author address and permalink.
func (i *ProductInfo) SetAudit(createdBy common.Address, permalink string) {
	i.CreatedBy = createdBy.Hex()
	i.Permalink = permalink
}

// Payload serializes the enriched record for off-chain persistence.
func (i *ProductInfo) Payload() ([]byte, error) { return json.Marshal(i) }

// Client runs cover operations through a shared pipeline.
type Client struct {
	p *pipeline.Pipeline
}

// New wraps the pipeline in a cover client.
func New(p *pipeline.Pipeline) *Client {
	return &Client{p: p}
}

func coverPermalink(coverKey string) string {
	return "/covers/view/" + coverKey
}

func productPermalink(coverKey, productKey string) string {
	return fmt.Sprintf("/covers/view/%s/products/%s", coverKey, productKey)
}
