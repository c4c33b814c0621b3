// cmd/tools/collect-sold/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"fretwatch/internal/common/config"
	"fretwatch/internal/common/database"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/comps"
	"fretwatch/internal/pipeline"
)

func main() {
	backfillCmd := flag.NewFlagSet("backfill", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	// Backfill command flags
	feedURL := backfillCmd.String("feed", "", "Sold-listings feed URL (JSON snapshot batch)")

	// List command flags
	brand := listCmd.String("brand", "", "Filter by brand")
	model := listCmd.String("model", "", "Filter by model")
	size := listCmd.Int("size", 20, "Maximum comps to show")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		fmt.Printf("Error connecting to Elasticsearch: %v\n", err)
		os.Exit(1)
	}
	store := comps.NewStore(es, cfg.Database.Elasticsearch.CompsIndex, log)

	ctx := context.Background()

	switch os.Args[1] {
	case "backfill":
		backfillCmd.Parse(os.Args[2:])
		if *feedURL == "" {
			fmt.Println("Error: feed is required for backfill.")
			backfillCmd.Usage()
			os.Exit(1)
		}
		n, err := backfill(ctx, *feedURL, store)
		if err != nil {
			fmt.Printf("Error backfilling comps: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d sold comps\n", n)

	case "list":
		listCmd.Parse(os.Args[2:])
		results, err := store.Search(ctx, *brand, *model, *size)
		if err != nil {
			fmt.Printf("Error searching comps: %v\n", err)
			os.Exit(1)
		}
		for _, c := range results {
			price := "n/a"
			if c.Price != nil {
				price = fmt.Sprintf("$%.0f", *c.Price)
			}
			year := "----"
			if c.Year != nil {
				year = fmt.Sprintf("%d", *c.Year)
			}
			fmt.Printf("%s  %s %s %s  %s  sold %s\n",
				c.ListingID, year, c.Brand, c.Model, price, c.SoldAt.Format("2006-01-02"))
		}
		fmt.Printf("%d comps\n", len(results))

	case "help":
		fallthrough
	default:
		help()
	}
}

// backfill pulls a sold-listings batch and indexes each entry as a comp.
// The feed reports when each listing was last observed; that doubles as the
// sale timestamp for historical imports.
func backfill(ctx context.Context, feedURL string, store *comps.Store) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build feed request: %w", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read feed body: %w", err)
	}

	snapshots, err := pipeline.ParseBatch(body)
	if err != nil {
		return 0, fmt.Errorf("feed batch rejected: %w", err)
	}

	indexed := 0
	for _, snap := range snapshots {
		if err := store.Index(ctx, comps.FromSnapshot(snap, snap.ObservedAt)); err != nil {
			return indexed, fmt.Errorf("indexing %s: %w", snap.ID, err)
		}
		indexed++
	}
	return indexed, nil
}

func help() {
	fmt.Println(`collect-sold manages the sold-comparables index.

Usage:
  collect-sold backfill -feed <url>     Import a sold-listings batch
  collect-sold list [-brand B] [-model M] [-size N]
                                        Show recent comps
  collect-sold help                     Show this help`)
}
