// Primacy - NDIS provider operations engine.
// Copyright (c) 2025 Primacy In Homecare Australia
// Licensed under the Apache License 2.0

// Command priceimport loads the NDIS Pricing Arrangements catalogue from CSV
// into the price store.
//
// Usage:
//
//	go run ./cmd/priceimport -csv /path/to/support-catalogue.csv -effective 2025-07-01
//
// The CSV needs a header row with at least the columns code, name and
// standard. Optional columns are category, unit, remote, very_remote and
// effective_date. Empty price cells are skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/cache"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/pricing"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/repository"
	"github.com/joho/godotenv"
)

// importStats tracks import results.
type importStats struct {
	Items   int64
	Entries int64
	Errors  int64
}

func main() {
	csvPath := flag.String("csv", "", "Path to the support catalogue CSV file")
	effective := flag.String("effective", "", "Effective date (YYYY-MM-DD) for rows without one")
	workers := flag.Int("workers", 4, "Number of concurrent writers")
	dryRun := flag.Bool("dry-run", false, "Parse and validate without writing")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: priceimport -csv /path/to/support-catalogue.csv [-effective 2025-07-01]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg := domain.DefaultConfig()
	if os.Getenv("PRIMACY_PROFILE") == string(domain.ProfileProduction) {
		cfg = domain.ProductionConfig()
	}
	cfg.ApplyEnv(os.Getenv)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	defaultDate := time.Now().UTC().Truncate(24 * time.Hour)
	if *effective != "" {
		d, err := time.Parse(time.DateOnly, *effective)
		if err != nil {
			fmt.Printf("ERROR: invalid -effective date: %v\n", err)
			os.Exit(1)
		}
		defaultDate = d
	}

	file, err := os.Open(*csvPath)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	rows, skipped, err := parseCatalogue(file, defaultDate)
	file.Close()
	if err != nil {
		fmt.Printf("ERROR: failed to read CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d support items from %s (%d rows skipped)\n", len(rows), *csvPath, skipped)
	if *dryRun {
		return
	}

	repo, err := repository.New(cfg.Repository)
	if err != nil {
		fmt.Printf("ERROR: failed to open repository: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		fmt.Printf("ERROR: failed to open cache: %v\n", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()

	svc := pricing.NewService(repo, cacheImpl, cfg.Rules)

	start := time.Now()
	stats := runImport(context.Background(), svc, rows, *workers)

	fmt.Printf("\nImported %d items and %d price entries in %v\n",
		stats.Items, stats.Entries, time.Since(start).Round(time.Millisecond))
	if stats.Errors > 0 {
		fmt.Printf("%d rows failed, see log output\n", stats.Errors)
		os.Exit(1)
	}
}

// catalogueWriter is the subset of pricing.Service the importer needs.
type catalogueWriter interface {
	SaveSupportItem(ctx context.Context, item *domain.SupportItem) error
	SavePriceEntry(ctx context.Context, entry *domain.PriceEntry) error
}

func runImport(ctx context.Context, svc catalogueWriter, rows []catalogueRow, numWorkers int) *importStats {
	if numWorkers < 1 {
		numWorkers = 1
	}
	stats := &importStats{}

	work := make(chan catalogueRow, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range work {
				if err := svc.SaveSupportItem(ctx, &row.Item); err != nil {
					atomic.AddInt64(&stats.Errors, 1)
					slog.Error("failed to save support item", "code", row.Item.Code, "error", err)
					continue
				}
				atomic.AddInt64(&stats.Items, 1)

				for i := range row.Entries {
					if err := svc.SavePriceEntry(ctx, &row.Entries[i]); err != nil {
						atomic.AddInt64(&stats.Errors, 1)
						slog.Error("failed to save price entry",
							"code", row.Item.Code, "area", row.Entries[i].Area, "error", err)
						continue
					}
					atomic.AddInt64(&stats.Entries, 1)
				}
			}
		}()
	}

	for _, row := range rows {
		work <- row
	}
	close(work)
	wg.Wait()

	return stats
}
