package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mark-15/neptunemutual-sdk/chain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sdk.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesChains(t *testing.T) {
	path := writeConfig(t, `
SignerKeyEnv = "MY_KEY"

[chains.43113]
Name = "Avalanche Fuji"
RPCEndpoint = "https://api.avax-test.network/ext/bc/C/rpc"
StoreAddress = "0x00000000000000000000000000000000000001AB"
Hostname = "test.neptunemutual.com"
IPFSEndpoint = "http://127.0.0.1:5001"

[chains.1]
Name = "Mainnet"
RPCEndpoint = "https://rpc.example.com"
StoreAddress = "0x00000000000000000000000000000000000002CD"
Hostname = "app.neptunemutual.com"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SignerKeyEnv != "MY_KEY" {
		t.Fatalf("SignerKeyEnv = %q", cfg.SignerKeyEnv)
	}

	ids := cfg.ChainIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 43113 {
		t.Fatalf("chain ids = %v", ids)
	}

	cc, err := cfg.Chain(43113)
	if err != nil {
		t.Fatalf("chain 43113: %v", err)
	}
	if cc.Name != "Avalanche Fuji" {
		t.Fatalf("name = %q", cc.Name)
	}

	roots := cfg.StoreRoots()
	want := common.HexToAddress("0x00000000000000000000000000000000000001AB")
	if roots[43113] != want {
		t.Fatalf("store root = %s", roots[43113].Hex())
	}

	endpoints := cfg.Endpoints()
	if endpoints[1] != "https://rpc.example.com" {
		t.Fatalf("endpoint = %q", endpoints[1])
	}

	host, err := cfg.Hostname(1)
	if err != nil || host != "app.neptunemutual.com" {
		t.Fatalf("hostname = %q, %v", host, err)
	}
}

func TestLoadDefaultsSignerKeyEnv(t *testing.T) {
	path := writeConfig(t, `
[chains.1]
RPCEndpoint = "https://rpc.example.com"
StoreAddress = "0x00000000000000000000000000000000000002CD"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SignerKeyEnv != "NEPTUNE_SIGNER_KEY" {
		t.Fatalf("SignerKeyEnv = %q", cfg.SignerKeyEnv)
	}
}

func TestLoadRejectsBadChainKey(t *testing.T) {
	path := writeConfig(t, `
[chains.fuji]
RPCEndpoint = "https://rpc.example.com"
StoreAddress = "0x00000000000000000000000000000000000002CD"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("non-numeric chain key accepted")
	}
}

func TestLoadRejectsMissingEndpoint(t *testing.T) {
	path := writeConfig(t, `
[chains.1]
StoreAddress = "0x00000000000000000000000000000000000002CD"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("chain without RPCEndpoint accepted")
	}
}

func TestLoadRejectsBadStoreAddress(t *testing.T) {
	path := writeConfig(t, `
[chains.1]
RPCEndpoint = "https://rpc.example.com"
StoreAddress = "not-an-address"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("invalid StoreAddress accepted")
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdk.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}
	if _, ok := cfg.Chains["43113"]; !ok {
		t.Fatalf("default config missing sample chain: %v", cfg.Chains)
	}

	// Reloading the generated file round-trips.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if host, err := again.Hostname(chain.ID(43113)); err != nil || host != "test.neptunemutual.com" {
		t.Fatalf("hostname = %q, %v", host, err)
	}
}

func TestChainNotConfigured(t *testing.T) {
	path := writeConfig(t, `
[chains.1]
RPCEndpoint = "https://rpc.example.com"
StoreAddress = "0x00000000000000000000000000000000000002CD"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cfg.Chain(56); err == nil {
		t.Fatal("unconfigured chain returned without error")
	}
	if _, err := cfg.Hostname(56); err == nil {
		t.Fatal("unconfigured chain hostname returned without error")
	}
}
