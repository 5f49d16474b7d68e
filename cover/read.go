package cover

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/nskey"
	"github.com/mark-15/neptunemutual-sdk/result"
	"github.com/mark-15/neptunemutual-sdk/store"
)

// View is the decoded on-chain cover state joined with its off-chain
// metadata.
type View struct {
	Owner             common.Address `json:"owner"`
	Info              Info           `json:"info"`
	Digest            string         `json:"digest"`
	SupportsProducts  bool           `json:"supportsProducts"`
	RequiresWhitelist bool           `json:"requiresWhitelist"`
}

// ProductView is the product counterpart of View.
type ProductView struct {
	Info   ProductInfo `json:"info"`
	Digest string      `json:"digest"`
	Status uint64      `json:"status"`
}

// GetCoverInfo reads the cover's on-chain slots in one batch, then fetches
// and decodes its off-chain metadata. A zero owner means the key has no
// record behind it.
func (c *Client) GetCoverInfo(ctx context.Context, chainID chain.ID, coverKeyRaw string) (*result.Wrapped, error) {
	coverKey, err := nskey.Bytes32FromString(coverKeyRaw)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	root, err := c.p.Resolver.Root(chainID)
	if err != nil {
		return nil, err
	}

	values, err := store.Read(ctx, c.p.Conn, chainID, root, []store.Candidate{
		{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32},
			Parts:     []any{nsCoverOwner, coverKey},
			Returns:   store.ReturnAddress,
			Property:  "owner",
		},
		{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32},
			Parts:     []any{nsCoverInfo, coverKey},
			Returns:   store.ReturnBytes32,
			Property:  "info",
		},
		{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32},
			Parts:     []any{nsCoverSupportsProducts, coverKey},
			Returns:   store.ReturnBool,
			Property:  "supportsProducts",
		},
		{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32},
			Parts:     []any{nsCoverRequiresWhitelist, coverKey},
			Returns:   store.ReturnBool,
			Property:  "requiresWhitelist",
		},
	})
	if err != nil {
		return nil, err
	}

	owner := values.Address("owner")
	if owner == (common.Address{}) {
		return nil, &result.InvalidKeyError{Key: coverKeyRaw}
	}

	digest := values.Bytes32("info")
	view := &View{
		Owner:             owner,
		Digest:            hexutil.Encode(digest[:]),
		SupportsProducts:  values.Bool("supportsProducts"),
		RequiresWhitelist: values.Bool("requiresWhitelist"),
	}
	payload, err := c.p.Content.Read(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("cover: fetch info payload: %w", err)
	}
	if err := json.Unmarshal(payload, &view.Info); err != nil {
		return nil, fmt.Errorf("cover: decode info payload: %w", err)
	}
	return result.Success(view), nil
}

// GetProductInfo reads a product's storage slots and off-chain metadata.
// A zero info digest means the (cover, product) pair has no record.
func (c *Client) GetProductInfo(ctx context.Context, chainID chain.ID, coverKeyRaw, productKeyRaw string) (*result.Wrapped, error) {
	coverKey, err := nskey.Bytes32FromString(coverKeyRaw)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	productKey, err := nskey.Bytes32FromString(productKeyRaw)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "productKey"}
	}
	root, err := c.p.Resolver.Root(chainID)
	if err != nil {
		return nil, err
	}

	values, err := store.Read(ctx, c.p.Conn, chainID, root, []store.Candidate{
		{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32, nskey.Bytes32},
			Parts:     []any{nsCoverProductInfo, coverKey, productKey},
			Returns:   store.ReturnBytes32,
			Property:  "info",
		},
		{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32, nskey.Bytes32},
			Parts:     []any{nsCoverProductStatus, coverKey, productKey},
			Returns:   store.ReturnUint256,
			Property:  "status",
		},
	})
	if err != nil {
		return nil, err
	}

	digest := values.Bytes32("info")
	if digest == [32]byte{} {
		return nil, &result.InvalidKeyError{Key: coverKeyRaw + "/" + productKeyRaw}
	}

	view := &ProductView{
		Digest: hexutil.Encode(digest[:]),
		Status: values.Uint256("status").Uint64(),
	}
	payload, err := c.p.Content.Read(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("cover: fetch product payload: %w", err)
	}
	if err := json.Unmarshal(payload, &view.Info); err != nil {
		return nil, fmt.Errorf("cover: decode product payload: %w", err)
	}
	return result.Success(view), nil
}
