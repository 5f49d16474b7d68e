package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/mark-15/neptunemutual-sdk/crypto"
)

var (
	// ErrUnknownChain marks a chain id with no configured endpoint.
	ErrUnknownChain = errors.New("chain: no endpoint configured for chain")
	// ErrReadOnly marks a write attempted without a signing key.
	ErrReadOnly = errors.New("chain: connector is read-only")
)

// EVM is a Connector over JSON-RPC endpoints, one per chain id. Clients are
// dialled lazily and reused for the connector lifetime. A nil key yields a
// valid read-only connector.
type EVM struct {
	endpoints map[ID]string
	key       *crypto.PrivateKey

	mu      sync.Mutex
	clients map[ID]*ethclient.Client
}

// NewEVM builds a connector over the given endpoints. key may be nil for
// read-only use.
func NewEVM(endpoints map[ID]string, key *crypto.PrivateKey) *EVM {
	eps := make(map[ID]string, len(endpoints))
	for id, url := range endpoints {
		eps[id] = url
	}
	return &EVM{
		endpoints: eps,
		key:       key,
		clients:   make(map[ID]*ethclient.Client),
	}
}

func (e *EVM) client(ctx context.Context, chainID ID) (*ethclient.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if client, ok := e.clients[chainID]; ok {
		return client, nil
	}
	endpoint, ok := e.endpoints[chainID]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnknownChain, chainID)
	}
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %d: %w", chainID, err)
	}
	e.clients[chainID] = client
	return client, nil
}

// ReadRaw issues an eth_call against the latest block and returns the raw
// return bytes.
func (e *EVM) ReadRaw(ctx context.Context, chainID ID, contract common.Address, calldata []byte) ([]byte, error) {
	client, err := e.client(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: calldata}, nil)
}

// SendTransaction packs, signs and submits a single transaction. Nonce, gas
// price and gas limit come from the node unless overridden.
func (e *EVM) SendTransaction(ctx context.Context, chainID ID, contract common.Address, method string, args []any, o *Overrides) (*TxHandle, error) {
	if e.key == nil {
		return nil, ErrReadOnly
	}
	client, err := e.client(ctx, chainID)
	if err != nil {
		return nil, err
	}
	calldata, err := PackCall(method, args)
	if err != nil {
		return nil, err
	}
	if o == nil {
		o = &Overrides{}
	}
	from := e.key.Address()

	nonce := uint64(0)
	if o.Nonce != nil {
		nonce = *o.Nonce
	} else if nonce, err = client.PendingNonceAt(ctx, from); err != nil {
		return nil, fmt.Errorf("chain: nonce for %s: %w", from.Hex(), err)
	}

	value := o.Value
	if value == nil {
		value = new(big.Int)
	}

	gasPrice := o.GasPrice
	if gasPrice == nil {
		if gasPrice, err = client.SuggestGasPrice(ctx); err != nil {
			return nil, fmt.Errorf("chain: gas price: %w", err)
		}
	}

	gasLimit := o.GasLimit
	if gasLimit == 0 {
		gasLimit, err = client.EstimateGas(ctx, ethereum.CallMsg{
			From:  from,
			To:    &contract,
			Value: value,
			Data:  calldata,
		})
		if err != nil {
			return nil, fmt.Errorf("chain: estimate gas: %w", err)
		}
	}

	var txdata types.TxData
	if o.GasTipCap != nil {
		txdata = &types.DynamicFeeTx{
			ChainID:   new(big.Int).SetUint64(uint64(chainID)),
			Nonce:     nonce,
			GasTipCap: o.GasTipCap,
			GasFeeCap: gasPrice,
			Gas:       gasLimit,
			To:        &contract,
			Value:     value,
			Data:      calldata,
		}
	} else {
		txdata = &types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gasLimit,
			To:       &contract,
			Value:    value,
			Data:     calldata,
		}
	}

	signer := types.LatestSignerForChainID(new(big.Int).SetUint64(uint64(chainID)))
	signed, err := types.SignNewTx(e.key.ECDSA(), signer, txdata)
	if err != nil {
		return nil, fmt.Errorf("chain: sign: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}
	return &TxHandle{
		Hash:     signed.Hash(),
		ChainID:  chainID,
		Nonce:    nonce,
		GasLimit: gasLimit,
	}, nil
}

// SignerAddress derives the credential's account address. ok is false when
// the connector was built without a key.
func (e *EVM) SignerAddress() (common.Address, bool) {
	if e.key == nil {
		return common.Address{}, false
	}
	return e.key.Address(), true
}
