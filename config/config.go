// Package config loads the SDK's per-chain wiring: RPC endpoints, the root
// eternal-storage contract, the application hostname used for permalinks
// and the content store API endpoint.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"github.com/mark-15/neptunemutual-sdk/chain"
)

// ChainConfig describes one target network.
type ChainConfig struct {
	Name         string `toml:"Name"`
	RPCEndpoint  string `toml:"RPCEndpoint"`
	StoreAddress string `toml:"StoreAddress"`
	Hostname     string `toml:"Hostname"`
	IPFSEndpoint string `toml:"IPFSEndpoint"`
}

// Config is the full SDK configuration. Chain tables are keyed by decimal
// chain id.
type Config struct {
	Chains       map[string]ChainConfig `toml:"chains"`
	SignerKeyEnv string                 `toml:"SignerKeyEnv"`
	KeystorePath string                 `toml:"KeystorePath"`
	LogFile      string                 `toml:"LogFile"`
}

// Load reads the configuration from path, creating a commented default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.Chains == nil {
		cfg.Chains = map[string]ChainConfig{}
	}
	if strings.TrimSpace(cfg.SignerKeyEnv) == "" {
		cfg.SignerKeyEnv = "NEPTUNE_SIGNER_KEY"
	}
	for id, cc := range cfg.Chains {
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			return nil, fmt.Errorf("config: chain table key %q is not a chain id", id)
		}
		if strings.TrimSpace(cc.RPCEndpoint) == "" {
			return nil, fmt.Errorf("config: chain %s has no RPCEndpoint", id)
		}
		if !common.IsHexAddress(cc.StoreAddress) {
			return nil, fmt.Errorf("config: chain %s has invalid StoreAddress %q", id, cc.StoreAddress)
		}
	}
	return cfg, nil
}

// Chain returns the configuration for the given chain id.
func (c *Config) Chain(id chain.ID) (ChainConfig, error) {
	cc, ok := c.Chains[strconv.FormatUint(uint64(id), 10)]
	if !ok {
		return ChainConfig{}, fmt.Errorf("config: chain %d not configured", id)
	}
	return cc, nil
}

// ChainIDs lists the configured chains in ascending order.
func (c *Config) ChainIDs() []chain.ID {
	ids := make([]chain.ID, 0, len(c.Chains))
	for key := range c.Chains {
		parsed, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, chain.ID(parsed))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Endpoints maps each configured chain to its RPC endpoint.
func (c *Config) Endpoints() map[chain.ID]string {
	endpoints := make(map[chain.ID]string, len(c.Chains))
	for _, id := range c.ChainIDs() {
		cc, _ := c.Chain(id)
		endpoints[id] = cc.RPCEndpoint
	}
	return endpoints
}

// StoreRoots maps each configured chain to its root store contract.
func (c *Config) StoreRoots() map[chain.ID]common.Address {
	roots := make(map[chain.ID]common.Address, len(c.Chains))
	for _, id := range c.ChainIDs() {
		cc, _ := c.Chain(id)
		roots[id] = common.HexToAddress(cc.StoreAddress)
	}
	return roots
}

// Hostname returns the permalink hostname for the chain.
func (c *Config) Hostname(id chain.ID) (string, error) {
	cc, err := c.Chain(id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cc.Hostname) == "" {
		return "", fmt.Errorf("config: chain %d has no Hostname", id)
	}
	return cc.Hostname, nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		SignerKeyEnv: "NEPTUNE_SIGNER_KEY",
		Chains: map[string]ChainConfig{
			"43113": {
				Name:         "Avalanche Fuji",
				RPCEndpoint:  "https://api.avax-test.network/ext/bc/C/rpc",
				StoreAddress: "0x0000000000000000000000000000000000000000",
				Hostname:     "test.neptunemutual.com",
				IPFSEndpoint: "http://127.0.0.1:5001",
			},
		},
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if _, err := file.WriteString("# Neptune Mutual SDK configuration.\n# Fill in StoreAddress with the deployed eternal storage contract per chain.\n\n"); err != nil {
		return nil, err
	}
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
