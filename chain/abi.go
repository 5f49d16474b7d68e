package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ErrBadSignature marks a malformed Solidity method signature.
var ErrBadSignature = errors.New("chain: malformed method signature")

// PackCall builds calldata for a Solidity method given its canonical
// signature, e.g. "addCover(bytes32,bytes32,uint256)". The 4-byte selector
// is the truncated keccak256 of the signature; arguments are ABI-encoded in
// order and must already be the Go representations go-ethereum expects
// (common.Address, *big.Int, [32]byte, bool, string and slices thereof).
func PackCall(signature string, args []any) ([]byte, error) {
	open := strings.Index(signature, "(")
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return nil, fmt.Errorf("%w: %q", ErrBadSignature, signature)
	}
	arguments, err := parseArguments(signature[open+1 : len(signature)-1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadSignature, signature, err)
	}
	if len(arguments) != len(args) {
		return nil, fmt.Errorf("%w: %q takes %d arguments, got %d", ErrBadSignature, signature, len(arguments), len(args))
	}
	packed, err := arguments.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("chain: pack %q: %w", signature, err)
	}
	selector := ethcrypto.Keccak256([]byte(signature))[:4]
	return append(selector, packed...), nil
}

func parseArguments(params string) (abi.Arguments, error) {
	params = strings.TrimSpace(params)
	if params == "" {
		return abi.Arguments{}, nil
	}
	parts := strings.Split(params, ",")
	arguments := make(abi.Arguments, 0, len(parts))
	for _, part := range parts {
		typ, err := abi.NewType(strings.TrimSpace(part), "", nil)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, abi.Argument{Type: typ})
	}
	return arguments, nil
}
