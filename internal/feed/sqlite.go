package feed

import (
	"context"
	"fmt"

	"github.com/loftloot/loftloot/internal/store"
	pkgcatalog "github.com/loftloot/loftloot/pkg/catalog"
	"github.com/loftloot/loftloot/pkg/models"
)

// ProductLister is the part of store.ProductRepo the SQLite source reads.
type ProductLister interface {
	List(ctx context.Context) ([]models.RawProduct, error)
}

var _ ProductLister = (*store.ProductRepo)(nil)

// SQLiteSource reads records previously imported into the feed_products table.
type SQLiteSource struct {
	repo ProductLister
	path string
}

// NewSQLiteSource returns a source over repo. path is only used for naming.
func NewSQLiteSource(repo ProductLister, path string) *SQLiteSource {
	return &SQLiteSource{repo: repo, path: path}
}

func (s *SQLiteSource) Name() string { return "sqlite:" + s.path }

// Fetch loads every stored record. Stored rows were validated on import.
func (s *SQLiteSource) Fetch(ctx context.Context) (*pkgcatalog.Feed, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgcatalog.NewFeedError(pkgcatalog.CodeFeedUnavailable, "read feed store", err)
	}
	return &pkgcatalog.Feed{Records: records}, nil
}

// Import decodes a feed with src and writes its valid records to repo,
// replacing what was stored. A repeated id keeps its first record; later ones
// are moved to Feed.Rejected. It returns the imported feed for reporting.
func Import(ctx context.Context, src Source, repo *store.ProductRepo) (*pkgcatalog.Feed, error) {
	f, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	dedupeRecords(f)
	if err := repo.Replace(ctx, f.Records); err != nil {
		return nil, err
	}
	return f, nil
}

// dedupeRecords drops records whose id was already seen, first wins.
func dedupeRecords(f *pkgcatalog.Feed) {
	seen := make(map[int64]struct{}, len(f.Records))
	kept := f.Records[:0]
	for i, rec := range f.Records {
		if _, dup := seen[rec.ID]; dup {
			err := pkgcatalog.NewFeedError(pkgcatalog.CodeRecordInvalid, fmt.Sprintf("record %d: duplicate id", rec.ID), nil)
			f.Rejected = append(f.Rejected, pkgcatalog.Rejection{Index: i, ID: rec.ID, Reason: err.Error(), Err: err})
			continue
		}
		seen[rec.ID] = struct{}{}
		kept = append(kept, rec)
	}
	f.Records = kept
}
