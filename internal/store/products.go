package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/loftloot/loftloot/pkg/models"
)

const feedComponent = "feed"

var feedMigrations = []Migration{
	{
		Version:     1,
		Description: "create feed_products",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE feed_products (
					position     INTEGER NOT NULL,
					id           INTEGER NOT NULL PRIMARY KEY,
					name         TEXT    NOT NULL,
					brand        TEXT    NOT NULL DEFAULT '',
					manufacturer TEXT    NOT NULL DEFAULT '',
					collection   TEXT    NOT NULL DEFAULT '',
					type         TEXT    NOT NULL DEFAULT '',
					description  TEXT    NOT NULL DEFAULT '',
					price        REAL    NOT NULL CHECK (price >= 0),
					stock        INTEGER NOT NULL,
					release_date INTEGER,
					images_json  TEXT    NOT NULL DEFAULT '[]',
					links_json   TEXT    NOT NULL DEFAULT '[]',
					condition    TEXT    NOT NULL DEFAULT '',
					demographic  TEXT    NOT NULL DEFAULT '',
					image_color  TEXT    NOT NULL DEFAULT ''
				)`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index feed_products by position",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX idx_feed_products_position ON feed_products(position)`)
			return err
		},
	},
}

// productRow is the feed_products row shape.
type productRow struct {
	Position     int           `db:"position"`
	ID           int64         `db:"id"`
	Name         string        `db:"name"`
	Brand        string        `db:"brand"`
	Manufacturer string        `db:"manufacturer"`
	Collection   string        `db:"collection"`
	Type         string        `db:"type"`
	Description  string        `db:"description"`
	Price        float64       `db:"price"`
	Stock        int           `db:"stock"`
	ReleaseDate  sql.NullInt64 `db:"release_date"`
	ImagesJSON   string        `db:"images_json"`
	LinksJSON    string        `db:"links_json"`
	Condition    string        `db:"condition"`
	Demographic  string        `db:"demographic"`
	ImageColor   string        `db:"image_color"`
}

// ProductRepo reads and replaces the stored feed.
type ProductRepo struct {
	store *SQLiteStore
}

// NewProductRepo migrates the feed schema and returns a repository.
func NewProductRepo(ctx context.Context, s *SQLiteStore) (*ProductRepo, error) {
	if err := s.Migrate(ctx, feedComponent, feedMigrations); err != nil {
		return nil, err
	}
	return &ProductRepo{store: s}, nil
}

// Replace swaps the stored feed for records in one transaction, keeping the
// given order.
func (r *ProductRepo) Replace(ctx context.Context, records []models.RawProduct) error {
	rows := make([]productRow, 0, len(records))
	for i, rec := range records {
		row, err := toRow(i, rec)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	return r.store.Tx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM feed_products`); err != nil {
			return fmt.Errorf("clear feed_products: %w", err)
		}
		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO feed_products (
					position, id, name, brand, manufacturer, collection, type, description,
					price, stock, release_date, images_json, links_json, condition, demographic, image_color
				) VALUES (
					:position, :id, :name, :brand, :manufacturer, :collection, :type, :description,
					:price, :stock, :release_date, :images_json, :links_json, :condition, :demographic, :image_color
				)`, row); err != nil {
				return fmt.Errorf("insert product %d: %w", row.ID, err)
			}
		}
		return nil
	})
}

// List returns every stored record in feed order.
func (r *ProductRepo) List(ctx context.Context) ([]models.RawProduct, error) {
	var rows []productRow
	if err := r.store.DB().SelectContext(ctx, &rows, `
		SELECT position, id, name, brand, manufacturer, collection, type, description,
		       price, stock, release_date, images_json, links_json, condition, demographic, image_color
		FROM feed_products
		ORDER BY position`); err != nil {
		return nil, fmt.Errorf("list feed_products: %w", err)
	}

	out := make([]models.RawProduct, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of stored records.
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.store.DB().GetContext(ctx, &n, `SELECT COUNT(*) FROM feed_products`); err != nil {
		return 0, fmt.Errorf("count feed_products: %w", err)
	}
	return n, nil
}

func toRow(pos int, rec models.RawProduct) (productRow, error) {
	images, err := json.Marshal(orEmpty(rec.Images))
	if err != nil {
		return productRow{}, fmt.Errorf("encode images of %d: %w", rec.ID, err)
	}
	links, err := json.Marshal(orEmpty(rec.Links))
	if err != nil {
		return productRow{}, fmt.Errorf("encode links of %d: %w", rec.ID, err)
	}
	row := productRow{
		Position:     pos,
		ID:           rec.ID,
		Name:         rec.Name,
		Brand:        rec.Brand,
		Manufacturer: rec.Manufacturer,
		Collection:   rec.Collection,
		Type:         rec.Type,
		Description:  rec.Description,
		Price:        rec.Price,
		Stock:        rec.Stock,
		ImagesJSON:   string(images),
		LinksJSON:    string(links),
		Condition:    rec.Condition,
		Demographic:  rec.Demographic,
		ImageColor:   rec.ImageColor,
	}
	if rec.ReleaseDate != nil {
		row.ReleaseDate = sql.NullInt64{Int64: int64(*rec.ReleaseDate), Valid: true}
	}
	return row, nil
}

func fromRow(row productRow) (models.RawProduct, error) {
	rec := models.RawProduct{
		ID:           row.ID,
		Name:         row.Name,
		Brand:        row.Brand,
		Manufacturer: row.Manufacturer,
		Collection:   row.Collection,
		Type:         row.Type,
		Description:  row.Description,
		Price:        row.Price,
		Stock:        row.Stock,
		Condition:    row.Condition,
		Demographic:  row.Demographic,
		ImageColor:   row.ImageColor,
	}
	if row.ReleaseDate.Valid {
		year := int(row.ReleaseDate.Int64)
		rec.ReleaseDate = &year
	}
	if err := json.Unmarshal([]byte(row.ImagesJSON), &rec.Images); err != nil {
		return rec, fmt.Errorf("decode images of %d: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.LinksJSON), &rec.Links); err != nil {
		return rec, fmt.Errorf("decode links of %d: %w", row.ID, err)
	}
	return rec, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
