// Package feed retrieves raw product feeds from the configured origin.
// Retries belong here; the catalog engine never retries.
package feed

import (
	"context"
	"fmt"
	"os"

	pkgcatalog "github.com/loftloot/loftloot/pkg/catalog"
)

// Source fetches and decodes one feed snapshot. Transport failures are
// reported as FeedUnavailable, undecodable payloads as FeedMalformed.
type Source interface {
	Fetch(ctx context.Context) (*pkgcatalog.Feed, error)
	Name() string
}

// FileSource reads a JSON or YAML feed file. The format comes from the
// extension unless set explicitly.
type FileSource struct {
	Path   string
	Format pkgcatalog.Format
}

// NewFileSource returns a source reading path.
func NewFileSource(path string, format pkgcatalog.Format) *FileSource {
	return &FileSource{Path: path, Format: format}
}

func (s *FileSource) Name() string { return "file:" + s.Path }

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) (*pkgcatalog.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, pkgcatalog.NewFeedError(pkgcatalog.CodeFeedUnavailable, fmt.Sprintf("read %s", s.Path), err)
	}
	format := s.Format
	if format == "" {
		format = pkgcatalog.FormatFromPath(s.Path)
	}
	return pkgcatalog.Decode(data, format)
}

// EmbeddedSource serves the bundled sample feed.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

// Fetch decodes the sample feed.
func (EmbeddedSource) Fetch(ctx context.Context) (*pkgcatalog.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pkgcatalog.Sample()
}
