// Package export writes catalog result sets to spreadsheets.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/loftloot/loftloot/pkg/models"
)

// SheetName is the worksheet holding exported products.
const SheetName = "Products"

// Headers lists the exported columns in order.
var Headers = []string{
	"id", "name", "collection", "type", "decade", "release_year",
	"manufacturer", "brand", "price", "stock", "in_stock", "condition",
	"thumbnail", "links",
}

// WriteXLSX writes products, in the given order, as one row each below a
// header row.
func WriteXLSX(w io.Writer, products []*models.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("write header %s: %w", h, err)
		}
	}

	for i, p := range products {
		r := i + 2
		var setErr error
		set := func(col int, value any) {
			if setErr != nil {
				return
			}
			cell, _ := excelize.CoordinatesToCellName(col, r)
			setErr = f.SetCellValue(SheetName, cell, value)
		}

		set(1, p.ID)
		set(2, p.Name)
		set(3, p.Collection)
		set(4, p.Type)
		set(5, p.Decade)
		set(6, derefInt(p.ReleaseDate))
		set(7, p.Manufacturer)
		set(8, p.Brand)
		set(9, p.Price)
		set(10, p.Stock)
		set(11, p.InStock())
		set(12, p.Condition)
		set(13, p.PrimaryThumbnail)
		set(14, joinLinks(p.CommerceLinks))
		if setErr != nil {
			return fmt.Errorf("write product %d: %w", p.ID, setErr)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes products to path, creating parent directories.
func SaveXLSX(path string, products []*models.Product) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteXLSX(out, products); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func joinLinks(links []models.CommerceLink) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		parts = append(parts, l.Platform+" "+l.URL)
	}
	return strings.Join(parts, "\n")
}
