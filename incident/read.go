package incident

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/nskey"
	"github.com/mark-15/neptunemutual-sdk/result"
	"github.com/mark-15/neptunemutual-sdk/store"
)

// Stakes is the aggregate attesting and refuting stake of one incident.
type Stakes struct {
	Yes string `json:"yes"`
	No  string `json:"no"`
}

// GetStatus returns the product's reporting status code.
func (c *Client) GetStatus(ctx context.Context, chainID chain.ID, coverKeyRaw, productKeyRaw string) (*result.Wrapped, error) {
	coverKey, productKey, root, err := c.target(chainID, coverKeyRaw, productKeyRaw)
	if err != nil {
		return nil, err
	}
	values, err := store.Read(ctx, c.p.Conn, chainID, root, []store.Candidate{{
		Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32, nskey.Bytes32},
		Parts:     []any{nsGovStatus, coverKey, productKey},
		Returns:   store.ReturnUint256,
		Property:  "status",
	}})
	if err != nil {
		return nil, err
	}
	return result.Success(values.Uint256("status").Uint64()), nil
}

// GetStakes returns the aggregate attesting and refuting stakes for the
// incident.
func (c *Client) GetStakes(ctx context.Context, chainID chain.ID, coverKeyRaw, productKeyRaw string, incidentDate uint64) (*result.Wrapped, error) {
	coverKey, productKey, root, err := c.target(chainID, coverKeyRaw, productKeyRaw)
	if err != nil {
		return nil, err
	}
	values, err := store.Read(ctx, c.p.Conn, chainID, root, []store.Candidate{
		{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32, nskey.Bytes32, nskey.Uint256},
			Parts:     []any{nsGovWitnessYes, coverKey, productKey, incidentDate},
			Returns:   store.ReturnUint256,
			Property:  "yes",
		},
		{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32, nskey.Bytes32, nskey.Uint256},
			Parts:     []any{nsGovWitnessNo, coverKey, productKey, incidentDate},
			Returns:   store.ReturnUint256,
			Property:  "no",
		},
	})
	if err != nil {
		return nil, err
	}
	return result.Success(&Stakes{
		Yes: values.Uint256("yes").Dec(),
		No:  values.Uint256("no").Dec(),
	}), nil
}

// GetStakesOf returns the account's own attesting and refuting stakes for
// the incident.
func (c *Client) GetStakesOf(ctx context.Context, chainID chain.ID, coverKeyRaw, productKeyRaw string, incidentDate uint64, account common.Address) (*result.Wrapped, error) {
	coverKey, productKey, root, err := c.target(chainID, coverKeyRaw, productKeyRaw)
	if err != nil {
		return nil, err
	}
	values, err := store.Read(ctx, c.p.Conn, chainID, root, []store.Candidate{
		{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32, nskey.Bytes32, nskey.Uint256, nskey.Address},
			Parts:     []any{nsGovStakeOwnedYes, coverKey, productKey, incidentDate, account},
			Returns:   store.ReturnUint256,
			Property:  "yes",
		},
		{
			Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32, nskey.Bytes32, nskey.Uint256, nskey.Address},
			Parts:     []any{nsGovStakeOwnedNo, coverKey, productKey, incidentDate, account},
			Returns:   store.ReturnUint256,
			Property:  "no",
		},
	})
	if err != nil {
		return nil, err
	}
	return result.Success(&Stakes{
		Yes: values.Uint256("yes").Dec(),
		No:  values.Uint256("no").Dec(),
	}), nil
}

// GetMinStake returns the minimum first-reporter stake for the cover.
func (c *Client) GetMinStake(ctx context.Context, chainID chain.ID, coverKeyRaw string) (*result.Wrapped, error) {
	coverKey, err := nskey.Bytes32FromString(coverKeyRaw)
	if err != nil {
		return nil, &result.InvalidInputError{Field: "coverKey"}
	}
	root, err := c.p.Resolver.Root(chainID)
	if err != nil {
		return nil, err
	}
	values, err := store.Read(ctx, c.p.Conn, chainID, root, []store.Candidate{{
		Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32},
		Parts:     []any{nsGovMinFirstStake, coverKey},
		Returns:   store.ReturnUint256,
		Property:  "minStake",
	}})
	if err != nil {
		return nil, err
	}
	return result.Success(values.Uint256("minStake").Dec()), nil
}

// GetIncidentDate returns the active incident date for the product, zero
// when none is active.
func (c *Client) GetIncidentDate(ctx context.Context, chainID chain.ID, coverKeyRaw, productKeyRaw string) (*result.Wrapped, error) {
	coverKey, productKey, _, err := c.target(chainID, coverKeyRaw, productKeyRaw)
	if err != nil {
		return nil, err
	}
	date, err := c.incidentDate(ctx, chainID, coverKey, productKey)
	if err != nil {
		return nil, err
	}
	return result.Success(date.Uint64()), nil
}

// GetReporter returns the first reporter of the incident. A zero address
// means the incident does not exist.
func (c *Client) GetReporter(ctx context.Context, chainID chain.ID, coverKeyRaw, productKeyRaw string, incidentDate uint64) (*result.Wrapped, error) {
	coverKey, productKey, root, err := c.target(chainID, coverKeyRaw, productKeyRaw)
	if err != nil {
		return nil, err
	}
	values, err := store.Read(ctx, c.p.Conn, chainID, root, []store.Candidate{{
		Signature: []nskey.Type{nskey.Bytes32, nskey.Bytes32, nskey.Bytes32, nskey.Uint256},
		Parts:     []any{nsGovReporterYes, coverKey, productKey, incidentDate},
		Returns:   store.ReturnAddress,
		Property:  "reporter",
	}})
	if err != nil {
		return nil, err
	}
	reporter := values.Address("reporter")
	if reporter == (common.Address{}) {
		return nil, &result.InvalidKeyError{Key: coverKeyRaw}
	}
	return result.Success(reporter), nil
}

func (c *Client) target(chainID chain.ID, coverKeyRaw, productKeyRaw string) ([32]byte, [32]byte, common.Address, error) {
	coverKey, err := nskey.Bytes32FromString(coverKeyRaw)
	if err != nil {
		return [32]byte{}, [32]byte{}, common.Address{}, &result.InvalidInputError{Field: "coverKey"}
	}
	productKey, err := optionalKey(productKeyRaw)
	if err != nil {
		return [32]byte{}, [32]byte{}, common.Address{}, &result.InvalidInputError{Field: "productKey"}
	}
	root, err := c.p.Resolver.Root(chainID)
	if err != nil {
		return [32]byte{}, [32]byte{}, common.Address{}, err
	}
	return coverKey, productKey, root, nil
}
