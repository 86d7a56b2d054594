// multiasset inspects a registry data directory.
//
// Usage:
//
//	multiasset [options] resources              List catalog entries
//	multiasset [options] token <id>             Show a token's resource state
//	multiasset [options] resolve <id> [index]   Resolve a token's metadata URI
//	multiasset --help                           Show help
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/openregistry/multiasset/config"
	"github.com/openregistry/multiasset/internal/approvals"
	"github.com/openregistry/multiasset/internal/catalog"
	"github.com/openregistry/multiasset/internal/ledger"
	"github.com/openregistry/multiasset/internal/log"
	"github.com/openregistry/multiasset/internal/ownership"
	"github.com/openregistry/multiasset/internal/resolver"
	"github.com/openregistry/multiasset/internal/storage"
	"github.com/openregistry/multiasset/pkg/types"
)

func main() {
	cfg, flags, err := config.Load()
	if err != nil {
		fatal(err)
	}
	if len(flags.Args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no command given (try --help)")
		os.Exit(1)
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal(err)
	}

	db, err := storage.NewBadger(cfg.DataDir)
	if err != nil {
		fatal(fmt.Errorf("opening database: %w", err))
	}
	defer db.Close()

	owners := ownership.NewRegistry()
	if err := owners.Load(db); err != nil {
		fatal(fmt.Errorf("loading ownership: %w", err))
	}
	access := approvals.NewRegistry(owners, types.Address{})
	cat, err := catalog.NewStore(db, nil, access)
	if err != nil {
		fatal(fmt.Errorf("loading catalog: %w", err))
	}
	led := ledger.New(cat, owners, access, nil)
	if err := led.Load(db); err != nil {
		fatal(fmt.Errorf("loading token state: %w", err))
	}

	switch cmd, args := flags.Args[0], flags.Args[1:]; cmd {
	case "resources":
		err = listResources(cat)
	case "token":
		err = showToken(led, args)
	case "resolve":
		err = resolveToken(cat, led, cfg.FallbackURI, args)
	default:
		err = fmt.Errorf("unknown command %q (try --help)", cmd)
	}
	if err != nil {
		fatal(err)
	}
}

func listResources(cat *catalog.Store) error {
	resources, err := cat.List()
	if err != nil {
		return err
	}
	for _, res := range resources {
		flag := ""
		if res.TokenEnumerated {
			flag = " (token-enumerated)"
		}
		fmt.Printf("%s\t%s%s\n", res.ID, res.URI, flag)
		for _, tag := range res.Tags {
			fmt.Printf("\ttag %s\n", tag)
		}
	}
	fmt.Printf("%d resource(s)\n", len(resources))
	return nil
}

func showToken(led *ledger.Ledger, args []string) error {
	id, err := parseTokenID(args)
	if err != nil {
		return err
	}
	active := led.Active(id)
	priorities := led.Priorities(id)
	pending := led.Pending(id)

	fmt.Printf("token %s\n", id)
	fmt.Printf("active (%d):\n", len(active))
	for i, rid := range active {
		fmt.Printf("\t[%d] resource %s priority %d\n", i, rid, priorities[i])
	}
	fmt.Printf("pending (%d):\n", len(pending))
	for i, rid := range pending {
		line := fmt.Sprintf("\t[%d] resource %s", i, rid)
		if target := led.OverwriteTarget(id, rid); !target.IsZero() {
			line += fmt.Sprintf(" replaces %s", target)
		}
		fmt.Println(line)
	}
	return nil
}

func resolveToken(cat *catalog.Store, led *ledger.Ledger, fallback string, args []string) error {
	id, err := parseTokenID(args)
	if err != nil {
		return err
	}
	index := 0
	if len(args) > 1 {
		index, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[1])
		}
	}
	uri, err := resolver.New(cat, led, fallback).ResolveAt(id, index)
	if err != nil {
		return err
	}
	fmt.Println(uri)
	return nil
}

func parseTokenID(args []string) (types.TokenID, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing token id")
	}
	n, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token id %q", args[0])
	}
	return types.TokenID(n), nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
