package incident

import (
	"context"
	"math/big"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/nskey"
	"github.com/mark-15/neptunemutual-sdk/pipeline"
	"github.com/mark-15/neptunemutual-sdk/registry"
	"github.com/mark-15/neptunemutual-sdk/result"
)

// ReportArgs are the caller inputs for filing an incident.
type ReportArgs struct {
	CoverKey   string
	ProductKey string
	Info       Report
	Stake      *big.Int
}

// Report files a new incident. The report is persisted off-chain first;
// the ledger-side check that no incident is already active runs as a
// separate read because a concurrent reporter may have won the race since
// persistence.
func (c *Client) Report(ctx context.Context, chainID chain.ID, args ReportArgs, o *chain.Overrides) (*result.Wrapped, error) {
	coverKey, err := nskey.Bytes32FromString(args.CoverKey)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	productKey, err := optionalKey(args.ProductKey)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "productKey"}
	}
	args.Info.CoverKey = args.CoverKey
	args.Info.ProductKey = args.ProductKey

	return c.p.Submit(ctx, chainID, pipeline.Operation{
		Name:     "report",
		Contract: registry.Governance,
		Method:   "report(bytes32,bytes32,bytes32,uint256)",
		Fields: []pipeline.Field{
			{Name: "coverKey", Value: args.CoverKey},
			{Name: "title", Value: args.Info.Title},
			{Name: "stake", Value: args.Stake},
		},
		Record:    &args.Info,
		Permalink: func() string { return reportPermalink(args.CoverKey) },
		Precondition: func(ctx context.Context) error {
			date, err := c.incidentDate(ctx, chainID, coverKey, productKey)
			if err != nil {
				return err
			}
			if !date.IsZero() {
				return &result.PreconditionError{Reason: "an active incident is already reported for this cover"}
			}
			return nil
		},
		Args: func(digest [32]byte) []any {
			return []any{coverKey, productKey, digest, args.Stake}
		},
		Overrides: o,
	})
}

// DisputeArgs are the caller inputs for disputing an active incident.
type DisputeArgs struct {
	CoverKey     string
	ProductKey   string
	IncidentDate uint64
	Info         Dispute
	Stake        *big.Int
}

// Dispute files the opposing side of an active incident. Requires an
// active incident and no existing refuting stake.
func (c *Client) Dispute(ctx context.Context, chainID chain.ID, args DisputeArgs, o *chain.Overrides) (*result.Wrapped, error) {
	coverKey, err := nskey.Bytes32FromString(args.CoverKey)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	productKey, err := optionalKey(args.ProductKey)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "productKey"}
	}
	args.Info.CoverKey = args.CoverKey
	args.Info.ProductKey = args.ProductKey
	args.Info.IncidentDate = args.IncidentDate

	return c.p.Submit(ctx, chainID, pipeline.Operation{
		Name:     "dispute",
		Contract: registry.Governance,
		Method:   "dispute(bytes32,bytes32,uint256,bytes32,uint256)",
		Fields: []pipeline.Field{
			{Name: "coverKey", Value: args.CoverKey},
			{Name: "title", Value: args.Info.Title},
			{Name: "incidentDate", Value: args.IncidentDate},
			{Name: "stake", Value: args.Stake},
		},
		Record:    &args.Info,
		Permalink: func() string { return reportPermalink(args.CoverKey) },
		Precondition: func(ctx context.Context) error {
			date, err := c.incidentDate(ctx, chainID, coverKey, productKey)
			if err != nil {
				return err
			}
			if date.IsZero() {
				return &result.PreconditionError{Reason: "no incident found to dispute"}
			}
			refuted, err := c.refutedStake(ctx, chainID, coverKey, productKey, args.IncidentDate)
			if err != nil {
				return err
			}
			if !refuted.IsZero() {
				return &result.PreconditionError{Reason: "this incident is already disputed"}
			}
			return nil
		},
		Args: func(digest [32]byte) []any {
			return []any{coverKey, productKey, new(big.Int).SetUint64(args.IncidentDate), digest, args.Stake}
		},
		Overrides: o,
	})
}

// Attest adds stake to the reporting side of an active incident. No
// off-chain payload is involved.
func (c *Client) Attest(ctx context.Context, chainID chain.ID, coverKeyRaw, productKeyRaw string, incidentDate uint64, stake *big.Int, o *chain.Overrides) (*result.Wrapped, error) {
	return c.witness(ctx, chainID, "attest", coverKeyRaw, productKeyRaw, incidentDate, stake, o)
}

// Refute adds stake to the disputing side of an active incident. No
// off-chain payload is involved.
func (c *Client) Refute(ctx context.Context, chainID chain.ID, coverKeyRaw, productKeyRaw string, incidentDate uint64, stake *big.Int, o *chain.Overrides) (*result.Wrapped, error) {
	return c.witness(ctx, chainID, "refute", coverKeyRaw, productKeyRaw, incidentDate, stake, o)
}

func (c *Client) witness(ctx context.Context, chainID chain.ID, name, coverKeyRaw, productKeyRaw string, incidentDate uint64, stake *big.Int, o *chain.Overrides) (*result.Wrapped, error) {
	coverKey, err := nskey.Bytes32FromString(coverKeyRaw)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	productKey, err := optionalKey(productKeyRaw)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "productKey"}
	}

	return c.p.Submit(ctx, chainID, pipeline.Operation{
		Name:     name,
		Contract: registry.Governance,
		Method:   name + "(bytes32,bytes32,uint256,uint256)",
		Fields: []pipeline.Field{
			{Name: "coverKey", Value: coverKeyRaw},
			{Name: "incidentDate", Value: incidentDate},
			{Name: "stake", Value: stake},
		},
		Precondition: func(ctx context.Context) error {
			date, err := c.incidentDate(ctx, chainID, coverKey, productKey)
			if err != nil {
				return err
			}
			if date.IsZero() {
				return &result.PreconditionError{Reason: "no active incident for this cover"}
			}
			return nil
		},
		Args: func([32]byte) []any {
			return []any{coverKey, productKey, new(big.Int).SetUint64(incidentDate), stake}
		},
		Overrides: o,
	})
}

// optionalKey coerces a possibly-empty product key; cover-level incidents
// use the zero key.
func optionalKey(raw string) ([32]byte, error) {
	if raw == "" {
		return [32]byte{}, nil
	}
	return nskey.Bytes32FromString(raw)
}
