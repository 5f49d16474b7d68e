package cover

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/nskey"
	"github.com/mark-15/neptunemutual-sdk/pipeline"
	"github.com/mark-15/neptunemutual-sdk/registry"
	"github.com/mark-15/neptunemutual-sdk/result"
)

// CreateCoverArgs are the caller inputs for a new cover.
type CreateCoverArgs struct {
	CoverKey          string
	Info              Info
	StakeWithFees     *big.Int
	ReassuranceAmount *big.Int
	VaultName         string
	VaultSymbol       string
	SupportsProducts  bool
	RequiresWhitelist bool
}

// CreateCover validates, persists and anchors a new cover record.
func (c *Client) CreateCover(ctx context.Context, chainID chain.ID, args CreateCoverArgs, o *chain.Overrides) (*result.Wrapped, error) {
	key, err := nskey.Bytes32FromString(args.CoverKey)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	args.Info.Key = args.CoverKey

	reassurance := args.ReassuranceAmount
	if reassurance == nil {
		reassurance = new(big.Int)
	}

	return c.p.Submit(ctx, chainID, pipeline.Operation{
		Name:     "createCover",
		Contract: registry.Cover,
		Method:   "addCover(bytes32,bytes32,uint256,uint256,bool,bool,string,string)",
		Fields: []pipeline.Field{
			{Name: "coverKey", Value: args.CoverKey},
			{Name: "coverName", Value: args.Info.CoverName},
			{Name: "stakeWithFees", Value: args.StakeWithFees},
			{Name: "vaultName", Value: args.VaultName},
			{Name: "vaultSymbol", Value: args.VaultSymbol},
		},
		Record:    &args.Info,
		Permalink: func() string { return coverPermalink(args.CoverKey) },
		Args: func(digest [32]byte) []any {
			return []any{key, digest, args.StakeWithFees, reassurance,
				args.SupportsProducts, args.RequiresWhitelist,
				args.VaultName, args.VaultSymbol}
		},
		Overrides: o,
	})
}

// UpdateCoverArgs are the caller inputs for a cover metadata update. Each
// update produces a new off-chain payload and a new anchor; prior versions
// stay retrievable but unreferenced.
type UpdateCoverArgs struct {
	CoverKey string
	Info     Info
}

// UpdateCover re-persists the cover metadata and anchors the new digest.
func (c *Client) UpdateCover(ctx context.Context, chainID chain.ID, args UpdateCoverArgs, o *chain.Overrides) (*result.Wrapped, error) {
	key, err := nskey.Bytes32FromString(args.CoverKey)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	args.Info.Key = args.CoverKey

	return c.p.Submit(ctx, chainID, pipeline.Operation{
		Name:     "updateCover",
		Contract: registry.Cover,
		Method:   "updateCover(bytes32,bytes32)",
		Fields: []pipeline.Field{
			{Name: "coverKey", Value: args.CoverKey},
			{Name: "coverName", Value: args.Info.CoverName},
		},
		Record:    &args.Info,
		Permalink: func() string { return coverPermalink(args.CoverKey) },
		Args: func(digest [32]byte) []any {
			return []any{key, digest}
		},
		Overrides: o,
	})
}

// CreateProductArgs are the caller inputs for a new product under a cover.
type CreateProductArgs struct {
	CoverKey          string
	ProductKey        string
	Info              ProductInfo
	CapitalEfficiency *big.Int
	RequiresWhitelist bool
}

// CreateProduct validates, persists and anchors a new product record.
func (c *Client) CreateProduct(ctx context.Context, chainID chain.ID, args CreateProductArgs, o *chain.Overrides) (*result.Wrapped, error) {
	coverKey, err := nskey.Bytes32FromString(args.CoverKey)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	productKey, err := nskey.Bytes32FromString(args.ProductKey)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "productKey"}
	}
	args.Info.CoverKey = args.CoverKey
	args.Info.ProductKey = args.ProductKey

	return c.p.Submit(ctx, chainID, pipeline.Operation{
		Name:     "createProduct",
		Contract: registry.Cover,
		Method:   "addProduct(bytes32,bytes32,bytes32,bool,uint256)",
		Fields: []pipeline.Field{
			{Name: "coverKey", Value: args.CoverKey},
			{Name: "productKey", Value: args.ProductKey},
			{Name: "productName", Value: args.Info.ProductName},
			{Name: "capitalEfficiency", Value: args.CapitalEfficiency},
		},
		Record:    &args.Info,
		Permalink: func() string { return productPermalink(args.CoverKey, args.ProductKey) },
		Args: func(digest [32]byte) []any {
			return []any{coverKey, productKey, digest,
				args.RequiresWhitelist, args.CapitalEfficiency}
		},
		Overrides: o,
	})
}

// UpdateProductArgs are the caller inputs for a product metadata update.
type UpdateProductArgs struct {
	CoverKey   string
	ProductKey string
	Info       ProductInfo
}

// UpdateProduct re-persists the product metadata and anchors the new digest.
func (c *Client) UpdateProduct(ctx context.Context, chainID chain.ID, args UpdateProductArgs, o *chain.Overrides) (*result.Wrapped, error) {
	coverKey, err := nskey.Bytes32FromString(args.CoverKey)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	productKey, err := nskey.Bytes32FromString(args.ProductKey)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "productKey"}
	}
	args.Info.CoverKey = args.CoverKey
	args.Info.ProductKey = args.ProductKey

	return c.p.Submit(ctx, chainID, pipeline.Operation{
		Name:     "updateProduct",
		Contract: registry.Cover,
		Method:   "updateProduct(bytes32,bytes32,bytes32)",
		Fields: []pipeline.Field{
			{Name: "coverKey", Value: args.CoverKey},
			{Name: "productKey", Value: args.ProductKey},
			{Name: "productName", Value: args.Info.ProductName},
		},
		Record:    &args.Info,
		Permalink: func() string { return productPermalink(args.CoverKey, args.ProductKey) },
		Args: func(digest [32]byte) []any {
			return []any{coverKey, productKey, digest}
		},
		Overrides: o,
	})
}

// UpdateCoverUsersWhitelist toggles whitelist membership for the given
// accounts. There is no off-chain payload; the call anchors directly.
func (c *Client) UpdateCoverUsersWhitelist(ctx context.Context, chainID chain.ID, coverKeyRaw string, accounts []common.Address, statuses []bool, o *chain.Overrides) (*result.Wrapped, error) {
	coverKey, err := nskey.Bytes32FromString(coverKeyRaw)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	if len(accounts) != len(statuses) {
		return nil, &result.InvalidInputError{Field: "statuses"}
	}

	return c.p.Submit(ctx, chainID, pipeline.Operation{
		Name:     "updateCoverUsersWhitelist",
		Contract: registry.Cover,
		Method:   "updateCoverUsersWhitelist(bytes32,address[],bool[])",
		Fields: []pipeline.Field{
			{Name: "coverKey", Value: coverKeyRaw},
			{Name: "accounts", Value: accounts},
			{Name: "statuses", Value: statuses},
		},
		Args: func([32]byte) []any {
			return []any{coverKey, accounts, statuses}
		},
		Overrides: o,
	})
}

// UpdateProductStatus flips a product's lifecycle status. No off-chain
// payload is involved.
func (c *Client) UpdateProductStatus(ctx context.Context, chainID chain.ID, coverKeyRaw, productKeyRaw string, status uint64, o *chain.Overrides) (*result.Wrapped, error) {
	coverKey, err := nskey.Bytes32FromString(coverKeyRaw)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	productKey, err := nskey.Bytes32FromString(productKeyRaw)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "productKey"}
	}

	return c.p.Submit(ctx, chainID, pipeline.Operation{
		Name:     "updateProductStatus",
		Contract: registry.Cover,
		Method:   "updateProductStatus(bytes32,bytes32,uint256)",
		Fields: []pipeline.Field{
			{Name: "coverKey", Value: coverKeyRaw},
			{Name: "productKey", Value: productKeyRaw},
		},
		Args: func([32]byte) []any {
			return []any{coverKey, productKey, new(big.Int).SetUint64(status)}
		},
		Overrides: o,
	})
}
