package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/loftloot/loftloot/internal/catalog"
	"github.com/loftloot/loftloot/internal/config"
	"github.com/loftloot/loftloot/internal/export"
	"github.com/loftloot/loftloot/pkg/models"
)

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file (selects the feed source)")
	query := fs.String("q", "", "free-text query")
	collection := fs.String("collection", models.FilterAll, "collection filter")
	decade := fs.String("decade", models.FilterAll, "decade filter, e.g. 1980s")
	typ := fs.String("type", models.FilterAll, "type filter")
	inStock := fs.Bool("in-stock", false, "only in-stock products")
	sortName := fs.String("sort", string(catalog.DefaultStrategy), "latest, price-low, price-high, name-asc or name-desc")
	limit := fs.Int("limit", 0, "maximum rows (0 = all)")
	output := fs.String("out", "loftloot-results.xlsx", "output spreadsheet path")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	engine, _, closeEngine := loadEngine(*configPath)
	defer closeEngine()

	fsel := catalog.FilterState{
		Collection:  *collection,
		Decade:      *decade,
		Type:        *typ,
		InStockOnly: *inStock,
		Query:       *query,
	}
	rs, total, err := engine.Search(fsel, catalog.ParseStrategy(*sortName), *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		os.Exit(1)
	}

	if err := export.SaveXLSX(*output, rs); err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d of %d products to %s\n", len(rs), total, *output)
}

// loadEngine builds an engine from configuration and loads the catalog once.
// Failures exit the process.
func loadEngine(configPath string) (*catalog.Engine, *zap.Logger, func()) {
	settings, err := config.Decode(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := newLogger(settings.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	source, closeSource, err := newSource(ctx, settings, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open feed source: %v\n", err)
		os.Exit(1)
	}

	engine := catalog.NewEngine(source, logger.Named("catalog"), catalog.WithOptions(settings.Engine))
	if _, err := engine.Reload(ctx); err != nil {
		closeSource()
		fmt.Fprintf(os.Stderr, "load catalog: %v\n", err)
		os.Exit(1)
	}
	return engine, logger, func() {
		closeSource()
		_ = logger.Sync()
	}
}
