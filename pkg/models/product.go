package models

// Filter sentinel values shared by the engine and its callers.
const (
	// FilterAll means "no constraint" for a collection, decade or type selection.
	FilterAll = "All"

	// CollectionOther is assigned to products without a collection and
	// always sorts last in the collection list.
	CollectionOther = "Other"

	// DecadeUnknown is the decade of products without a release year.
	DecadeUnknown = "Unknown"

	// DemographicNeutral earns a partial relatedness bonus against any demographic.
	DemographicNeutral = "neutral"
)

// ConditionSchema is the schema.org item condition advertised for a product.
type ConditionSchema string

const (
	ConditionNew  ConditionSchema = "https://schema.org/NewCondition"
	ConditionUsed ConditionSchema = "https://schema.org/UsedCondition"
)

// Link is a purchase link as supplied by the feed.
type Link struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

// RawProduct is one untrusted feed record after required-field validation.
type RawProduct struct {
	ID           int64    `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Brand        string   `json:"brand,omitempty" yaml:"brand"`
	Manufacturer string   `json:"manufacturer,omitempty" yaml:"manufacturer"`
	Collection   string   `json:"collection,omitempty" yaml:"collection"`
	Type         string   `json:"type,omitempty" yaml:"type"`
	Description  string   `json:"description,omitempty" yaml:"description"`
	Price        float64  `json:"price" yaml:"price"`
	Stock        int      `json:"stock" yaml:"stock"`
	ReleaseDate  *int     `json:"releaseDate,omitempty" yaml:"releaseDate"`
	Images       []string `json:"images,omitempty" yaml:"images"`
	Links        []Link   `json:"links,omitempty" yaml:"links"`
	Condition    string   `json:"condition,omitempty" yaml:"condition"`
	Demographic  string   `json:"demographic,omitempty" yaml:"demographic"`
	ImageColor   string   `json:"imageColor,omitempty" yaml:"imageColor"`
}

// MediaItem is one entry of a product's gallery.
type MediaItem struct {
	OriginalURL  string `json:"original_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsVideo      bool   `json:"is_video"`
	VideoID      string `json:"video_id,omitempty"`
}

// CommerceLink is a purchase link with the platform logo resolved.
type CommerceLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Logo     string `json:"logo,omitempty"`
}

// Product is an enriched, immutable catalog entry. Products are shared by
// reference between a catalog and every result set built from it, so callers
// must treat all fields (slices included) as read-only.
type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Brand        string  `json:"brand,omitempty"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	Collection   string  `json:"collection"`
	Type         string  `json:"type,omitempty"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stock"`
	ReleaseDate  *int    `json:"release_date,omitempty"`
	Condition    string  `json:"condition,omitempty"`
	Demographic  string  `json:"demographic,omitempty"`

	// Matching keys. Never displayed.
	NormalizedName         string `json:"-"`
	NormalizedBrand        string `json:"-"`
	NormalizedManufacturer string `json:"-"`
	NormalizedCollection   string `json:"-"`
	NormalizedType         string `json:"-"`
	NormalizedDescription  string `json:"-"`

	Decade           string          `json:"decade"`
	IsSold           bool            `json:"is_sold"`
	Media            []MediaItem     `json:"media"`
	PrimaryThumbnail string          `json:"primary_thumbnail,omitempty"`
	PlaceholderColor string          `json:"placeholder_color"`
	PlaceholderURI   string          `json:"placeholder_uri"`
	CommerceLinks    []CommerceLink  `json:"commerce_links"`
	ConditionSchema  ConditionSchema `json:"condition_schema"`
	RelatedIDs       []int64         `json:"related_ids"`
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
