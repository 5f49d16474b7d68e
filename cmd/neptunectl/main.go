// neptunectl is a small operational CLI over the SDK: resolve protocol
// module addresses, inspect covers and read incident reporting state.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mark-15/neptunemutual-sdk/chain"
	"github.com/mark-15/neptunemutual-sdk/config"
	"github.com/mark-15/neptunemutual-sdk/cover"
	"github.com/mark-15/neptunemutual-sdk/crypto"
	"github.com/mark-15/neptunemutual-sdk/incident"
	"github.com/mark-15/neptunemutual-sdk/ipfs"
	"github.com/mark-15/neptunemutual-sdk/observability/logging"
	"github.com/mark-15/neptunemutual-sdk/pipeline"
	"github.com/mark-15/neptunemutual-sdk/registry"
)

const defaultConfig = "./neptune.toml"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "resolve":
		err = runResolve(os.Args[2:])
	case "cover-info":
		err = runCoverInfo(os.Args[2:])
	case "status":
		err = runStatus(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: neptunectl <command> [flags]

Commands:
  resolve     Resolve a protocol contract address through the registry
  cover-info  Fetch a cover's on-chain state and off-chain metadata
  status      Read a product's incident reporting status`)
}

func setup(configPath string) (*config.Config, *pipeline.Pipeline, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	var logSink io.Writer
	if cfg.LogFile != "" {
		logSink = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    25,
			MaxBackups: 4,
			Compress:   true,
		}
	}
	log := logging.Setup("neptunectl", os.Getenv("NEPTUNE_ENV"), logSink)

	var key *crypto.PrivateKey
	if raw := os.Getenv(cfg.SignerKeyEnv); raw != "" {
		if key, err = crypto.FromHex(raw); err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", cfg.SignerKeyEnv, err)
		}
	}

	// The CLI is single-chain per invocation; commands that need the
	// content store attach it once the chain flag is known.
	p := &pipeline.Pipeline{
		Resolver: registry.New(cfg.StoreRoots()),
		Conn:     chain.NewEVM(cfg.Endpoints(), key),
		Hosts:    cfg.Hostname,
		Log:      log,
	}
	return cfg, p, nil
}

func contentStore(cfg *config.Config, id chain.ID) (ipfs.Store, error) {
	cc, err := cfg.Chain(id)
	if err != nil {
		return nil, err
	}
	if cc.IPFSEndpoint == "" {
		return nil, fmt.Errorf("chain %d has no IPFSEndpoint configured", id)
	}
	return ipfs.NewClient(cc.IPFSEndpoint), nil
}

func runResolve(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the SDK config file")
	chainID := fs.Uint64("chain", 0, "Target chain id")
	name := fs.String("contract", string(registry.Cover), "Logical contract name, e.g. cns:cover")
	fs.Parse(args)

	_, p, err := setup(*configPath)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	addr, err := p.Resolver.ResolveActive(ctx, p.Conn, chain.ID(*chainID), registry.ContractName(*name))
	if err != nil {
		return err
	}
	fmt.Println(addr.Hex())
	return nil
}

func runCoverInfo(args []string) error {
	fs := flag.NewFlagSet("cover-info", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the SDK config file")
	chainID := fs.Uint64("chain", 0, "Target chain id")
	coverKey := fs.String("cover", "", "Cover key")
	fs.Parse(args)

	cfg, p, err := setup(*configPath)
	if err != nil {
		return err
	}
	if p.Content, err = contentStore(cfg, chain.ID(*chainID)); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wrapped, err := cover.New(p).GetCoverInfo(ctx, chain.ID(*chainID), *coverKey)
	if err != nil {
		return err
	}
	return printJSON(wrapped)
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the SDK config file")
	chainID := fs.Uint64("chain", 0, "Target chain id")
	coverKey := fs.String("cover", "", "Cover key")
	productKey := fs.String("product", "", "Product key (optional)")
	fs.Parse(args)

	_, p, err := setup(*configPath)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wrapped, err := incident.New(p).GetStatus(ctx, chain.ID(*chainID), *coverKey, *productKey)
	if err != nil {
		return err
	}
	return printJSON(wrapped)
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
