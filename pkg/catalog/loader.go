// Package catalog decodes raw product feeds into validated records.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loftloot/loftloot/pkg/models"
)

//go:embed sample_feed.yaml
var sampleFeedData []byte

// Format identifies the encoding of a raw feed.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the feed format from a file name. Anything that is
// not .yaml/.yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Rejection describes a record dropped during decoding or building.
type Rejection struct {
	Index  int    `json:"index"`
	ID     int64  `json:"id,omitempty"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Feed is a decoded feed: the valid records in input order and the rejects.
type Feed struct {
	Records  []models.RawProduct
	Rejected []Rejection
}

// feedFile is the wrapped form of a feed: {"products": [...]}.
type feedFile struct {
	Products []json.RawMessage `json:"products"`
}

// wireRecord mirrors RawProduct with the required fields as pointers so
// missing values can be told apart from zero values.
type wireRecord struct {
	ID           *int64        `json:"id" yaml:"id"`
	Name         *string       `json:"name" yaml:"name"`
	Brand        string        `json:"brand" yaml:"brand"`
	Manufacturer string        `json:"manufacturer" yaml:"manufacturer"`
	Collection   string        `json:"collection" yaml:"collection"`
	Type         string        `json:"type" yaml:"type"`
	Description  string        `json:"description" yaml:"description"`
	Price        *float64      `json:"price" yaml:"price"`
	Stock        *int          `json:"stock" yaml:"stock"`
	ReleaseDate  *int          `json:"releaseDate" yaml:"releaseDate"`
	Images       []string      `json:"images" yaml:"images"`
	Links        []models.Link `json:"links" yaml:"links"`
	Condition    string        `json:"condition" yaml:"condition"`
	Demographic  string        `json:"demographic" yaml:"demographic"`
	ImageColor   string        `json:"imageColor" yaml:"imageColor"`
}

// Decode parses a raw feed. The feed must be a sequence of records, either
// bare or under a top-level "products" key; anything else is FeedMalformed.
// Individual records that fail validation are collected in Feed.Rejected.
func Decode(data []byte, format Format) (*Feed, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON, "":
		return decodeJSON(data)
	default:
		return nil, NewFeedError(CodeFeedMalformed, fmt.Sprintf("unsupported feed format %q", format), nil)
	}
}

// Sample returns the bundled sample feed.
func Sample() (*Feed, error) {
	return Decode(sampleFeedData, FormatYAML)
}

func decodeJSON(data []byte) (*Feed, error) {
	trimmed := bytes.TrimSpace(data)
	var items []json.RawMessage
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, NewFeedError(CodeFeedMalformed, "parse json feed", err)
		}
	case len(trimmed) > 0 && trimmed[0] == '{':
		var f feedFile
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return nil, NewFeedError(CodeFeedMalformed, "parse json feed", err)
		}
		if f.Products == nil {
			return nil, NewFeedError(CodeFeedMalformed, "json feed object has no products list", nil)
		}
		items = f.Products
	default:
		return nil, NewFeedError(CodeFeedMalformed, "json feed is not a list of records", nil)
	}

	feed := &Feed{Records: make([]models.RawProduct, 0, len(items))}
	for i, item := range items {
		var w wireRecord
		if err := json.Unmarshal(item, &w); err != nil {
			feed.reject(i, nil, NewFeedError(CodeRecordInvalid, "decode record", err))
			continue
		}
		feed.accept(i, w)
	}
	return feed, nil
}

func decodeYAML(data []byte) (*Feed, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewFeedError(CodeFeedMalformed, "parse yaml feed", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, NewFeedError(CodeFeedMalformed, "yaml feed is empty", nil)
	}

	seq := doc.Content[0]
	if seq.Kind == yaml.MappingNode {
		seq = mappingValue(seq, "products")
	}
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil, NewFeedError(CodeFeedMalformed, "yaml feed is not a list of records", nil)
	}

	feed := &Feed{Records: make([]models.RawProduct, 0, len(seq.Content))}
	for i, item := range seq.Content {
		var w wireRecord
		if err := item.Decode(&w); err != nil {
			feed.reject(i, nil, NewFeedError(CodeRecordInvalid, "decode record", err))
			continue
		}
		feed.accept(i, w)
	}
	return feed, nil
}

// mappingValue returns the value node for key in a YAML mapping, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func (f *Feed) accept(index int, w wireRecord) {
	rec, err := w.validate()
	if err != nil {
		f.reject(index, w.ID, err)
		return
	}
	f.Records = append(f.Records, rec)
}

func (f *Feed) reject(index int, id *int64, err error) {
	r := Rejection{Index: index, Reason: err.Error(), Err: err}
	if id != nil {
		r.ID = *id
	}
	f.Rejected = append(f.Rejected, r)
}

// validate checks the required fields and converts to a RawProduct.
func (w wireRecord) validate() (models.RawProduct, error) {
	switch {
	case w.ID == nil:
		return models.RawProduct{}, NewFeedError(CodeRecordInvalid, "missing id", nil)
	case w.Name == nil || strings.TrimSpace(*w.Name) == "":
		return models.RawProduct{}, NewFeedError(CodeRecordInvalid, fmt.Sprintf("record %d: missing name", *w.ID), nil)
	case w.Price == nil:
		return models.RawProduct{}, NewFeedError(CodeRecordInvalid, fmt.Sprintf("record %d: missing price", *w.ID), nil)
	case *w.Price < 0 || math.IsNaN(*w.Price) || math.IsInf(*w.Price, 0):
		return models.RawProduct{}, NewFeedError(CodeRecordInvalid, fmt.Sprintf("record %d: invalid price %v", *w.ID, *w.Price), nil)
	case w.Stock == nil:
		return models.RawProduct{}, NewFeedError(CodeRecordInvalid, fmt.Sprintf("record %d: missing stock", *w.ID), nil)
	}

	return models.RawProduct{
		ID:           *w.ID,
		Name:         *w.Name,
		Brand:        w.Brand,
		Manufacturer: w.Manufacturer,
		Collection:   w.Collection,
		Type:         w.Type,
		Description:  w.Description,
		Price:        *w.Price,
		Stock:        *w.Stock,
		ReleaseDate:  w.ReleaseDate,
		Images:       w.Images,
		Links:        w.Links,
		Condition:    w.Condition,
		Demographic:  w.Demographic,
		ImageColor:   w.ImageColor,
	}, nil
}
