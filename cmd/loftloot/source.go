package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/loftloot/loftloot/internal/config"
	"github.com/loftloot/loftloot/internal/feed"
	"github.com/loftloot/loftloot/internal/store"
	pkgcatalog "github.com/loftloot/loftloot/pkg/catalog"
)

// newSource builds the configured feed source. The returned func releases
// any resources the source holds.
func newSource(ctx context.Context, s *config.Settings, logger *zap.Logger) (feed.Source, func(), error) {
	noop := func() {}
	format := pkgcatalog.Format(s.Feed.Format)

	switch s.Feed.Source {
	case config.SourceEmbedded:
		return feed.EmbeddedSource{}, noop, nil
	case config.SourceFile:
		return feed.NewFileSource(s.Feed.Path, format), noop, nil
	case config.SourceHTTP:
		return feed.NewHTTPSource(feed.HTTPConfig{
			URL:         s.Feed.URL,
			Format:      format,
			Timeout:     s.Feed.Timeout,
			Retries:     s.Feed.Retries,
			BaseBackoff: s.Feed.Backoff,
		}, logger.Named("feed")), noop, nil
	case config.SourceSQLite:
		st, err := store.New(s.Store.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("open store: %w", err)
		}
		repo, err := store.NewProductRepo(ctx, st)
		if err != nil {
			_ = st.Close()
			return nil, noop, fmt.Errorf("open product table: %w", err)
		}
		return feed.NewSQLiteSource(repo, s.Store.Path), func() { _ = st.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown feed source %q", s.Feed.Source)
	}
}
