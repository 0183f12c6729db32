package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/loftloot/loftloot/internal/feed"
	"github.com/loftloot/loftloot/internal/store"
	pkgcatalog "github.com/loftloot/loftloot/pkg/catalog"
)

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	feedPath := fs.String("feed", "", "JSON or YAML feed file to import (required)")
	format := fs.String("format", "", "feed format: json or yaml (default: from extension)")
	dbPath := fs.String("db", "loftloot.db", "SQLite database to write")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *feedPath == "" {
		fmt.Fprintln(os.Stderr, "import: -feed is required")
		fs.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	st, err := store.New(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	repo, err := store.NewProductRepo(ctx, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prepare database: %v\n", err)
		os.Exit(1)
	}

	f, err := feed.Import(ctx, feed.NewFileSource(*feedPath, pkgcatalog.Format(*format)), repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
	for _, r := range f.Rejected {
		fmt.Fprintf(os.Stderr, "skipped record %d (id %d): %s\n", r.Index, r.ID, r.Reason)
	}
	fmt.Printf("Imported %d products into %s\n", len(f.Records), *dbPath)
}
