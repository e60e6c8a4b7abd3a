// Package main inspects a lease registry database from the command line.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/openlease/leasehold/internal/ledger/storage/sqlite"
	"github.com/openlease/leasehold/internal/platform/config"
)

func main() {
	dbPath := flag.String("db", "", "Path to the registry SQLite database")
	leaseID := flag.Uint64("lease", 0, "Lease id to print")
	location := flag.String("location", "", "Print lease ids for a location")
	transfers := flag.Bool("transfers", false, "Print the fee transfer log")
	flag.Parse()

	if *dbPath == "" {
		config.Exitf("the -db flag is required")
	}
	store, err := sqlite.Open(*dbPath)
	if err != nil {
		config.Exitf("open registry: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	switch {
	case *location != "":
		ids, err := store.LeaseIDsByLocation(ctx, *location)
		if err != nil {
			config.Exitf("list leases by location: %v", err)
		}
		fmt.Printf("location %q: %v\n", *location, ids)
	case *transfers:
		log, err := store.ListTransfers(ctx)
		if err != nil {
			config.Exitf("list transfers: %v", err)
		}
		for _, transfer := range log {
			fmt.Printf("%d\t%s -> %s\tat %d\n", transfer.Amount, transfer.From, transfer.To, transfer.At)
		}
	case hasFlag("lease"):
		lease, err := store.GetLease(ctx, *leaseID)
		if err != nil {
			config.Exitf("get lease %d: %v", *leaseID, err)
		}
		fmt.Printf("%+v\n", lease)
	default:
		count, err := store.LeaseCount(ctx)
		if err != nil {
			config.Exitf("count leases: %v", err)
		}
		fmt.Printf("leases: %d\n", count)
	}
}

func hasFlag(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
