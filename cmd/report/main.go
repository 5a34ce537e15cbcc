package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"hcf-engine/internal/reporting"
	"hcf-engine/internal/storage"
	chstore "hcf-engine/internal/storage/clickhouse"
	pgstore "hcf-engine/internal/storage/postgres"
)

func main() {
	// Parse flags
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional)")
	flag.Parse()

	ctx := context.Background()

	// Validate flags
	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required")
		os.Exit(1)
	}

	// Connect to PostgreSQL
	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	accountStore := pgstore.NewAccountStore(pool)
	eventStore := pgstore.NewLedgerEventStore(pool)
	stabilityStore := pgstore.NewStabilityStateStore(pool)

	// ClickHouse price history is optional
	var priceStore storage.PriceHistoryStore
	if *clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to clickhouse: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		priceStore = chstore.NewPriceHistoryStore(conn)
	}

	// Generate report
	gen := reporting.NewGenerator(accountStore, eventStore, stabilityStore, priceStore)
	report, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	// Write outputs
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	mdPath := filepath.Join(*outputDir, "REPORT.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing markdown: %v\n", err)
		os.Exit(1)
	}

	csvPath := filepath.Join(*outputDir, "TOP_STAKERS.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.TopStakers)), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing csv: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Report generated successfully:")
	fmt.Printf("  - %s\n", mdPath)
	fmt.Printf("  - %s\n", csvPath)
}
