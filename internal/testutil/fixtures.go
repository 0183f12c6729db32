package testutil

import (
	"github.com/loftloot/loftloot/pkg/models"
)

// NewRawProduct returns an in-stock RawProduct with sensible defaults,
// suitable for test fixtures. Override fields with options.
func NewRawProduct(id int64, opts ...func(*models.RawProduct)) models.RawProduct {
	year := 1985
	p := models.RawProduct{
		ID:           id,
		Name:         "Test Figure",
		Brand:        "Hasbro",
		Manufacturer: "Takara",
		Collection:   "Transformers",
		Type:         "Action Figure",
		Description:  "Loose figure, complete.",
		Price:        25,
		Stock:        1,
		ReleaseDate:  &year,
		Condition:    "Used - Good",
		Demographic:  "boys",
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithName sets the product name.
func WithName(name string) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Name = name }
}

// WithCollection sets the collection. An empty value exercises the "Other" default.
func WithCollection(c string) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Collection = c }
}

// WithType sets the product type.
func WithType(t string) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Type = t }
}

// WithPrice sets the price.
func WithPrice(price float64) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Price = price }
}

// WithStock sets the stock count.
func WithStock(n int) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Stock = n }
}

// WithYear sets the release year.
func WithYear(year int) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.ReleaseDate = &year }
}

// WithoutYear clears the release year.
func WithoutYear() func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.ReleaseDate = nil }
}

// WithManufacturer sets the manufacturer.
func WithManufacturer(m string) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Manufacturer = m }
}

// WithDemographic sets the demographic.
func WithDemographic(d string) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Demographic = d }
}

// WithImages sets the image URL list.
func WithImages(urls ...string) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Images = urls }
}

// WithLinks sets the purchase links.
func WithLinks(links ...models.Link) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Links = links }
}

// WithCondition sets the condition text.
func WithCondition(c string) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Condition = c }
}

// WithDescription sets the description.
func WithDescription(d string) func(*models.RawProduct) {
	return func(p *models.RawProduct) { p.Description = d }
}
