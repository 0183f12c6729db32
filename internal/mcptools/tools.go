// Package mcptools exposes catalog queries as Model Context Protocol tools so
// shopping assistants can search the shop.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/loftloot/loftloot/internal/catalog"
	"github.com/loftloot/loftloot/internal/version"
	"github.com/loftloot/loftloot/pkg/models"
)

const defaultSearchLimit = 20

// ProductSummary is the agent-facing view of a product.
type ProductSummary struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Collection string  `json:"collection"`
	Type       string  `json:"type"`
	Decade     string  `json:"decade"`
	Price      float64 `json:"price"`
	InStock    bool    `json:"in_stock"`
	Thumbnail  string  `json:"thumbnail"`
}

func summarize(ps []*models.Product) []ProductSummary {
	out := make([]ProductSummary, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProductSummary{
			ID:         p.ID,
			Name:       p.Name,
			Collection: p.Collection,
			Type:       p.Type,
			Decade:     p.Decade,
			Price:      p.Price,
			InStock:    p.InStock(),
			Thumbnail:  p.PrimaryThumbnail,
		})
	}
	return out
}

// SearchInput are the arguments of the search_catalog tool. Empty
// selections mean All.
type SearchInput struct {
	Query      string   `json:"query,omitempty" jsonschema:"free-text query matched against names, brands, collections, types, descriptions and release years"`
	Collection string   `json:"collection,omitempty" jsonschema:"collection name, or All"`
	Decade     string   `json:"decade,omitempty" jsonschema:"decade such as 1980s, or All"`
	Type       string   `json:"type,omitempty" jsonschema:"product type such as Action Figure, or All"`
	MinPrice   *float64 `json:"min_price,omitempty" jsonschema:"inclusive lower price bound"`
	MaxPrice   *float64 `json:"max_price,omitempty" jsonschema:"inclusive upper price bound"`
	InStock    bool     `json:"in_stock,omitempty" jsonschema:"only return products that can be bought now"`
	Sort       string   `json:"sort,omitempty" jsonschema:"latest, price-low, price-high, name-asc or name-desc"`
	Limit      int      `json:"limit,omitempty" jsonschema:"maximum number of products, default 20"`
}

// SearchOutput is one sorted page of search results. Total counts every
// match before Limit is applied.
type SearchOutput struct {
	Total    int              `json:"total"`
	Sort     string           `json:"sort"`
	Products []ProductSummary `json:"products"`
}

// SuggestInput are the arguments of the suggest tool.
type SuggestInput struct {
	Query   string `json:"query" jsonschema:"partial query as typed, at least two characters"`
	InStock bool   `json:"in_stock,omitempty" jsonschema:"only suggest products that can be bought now"`
}

// SuggestOutput previews filters and products for a partial query.
type SuggestOutput struct {
	Filters       []catalog.FilterSuggestion `json:"filters"`
	Products      []ProductSummary           `json:"products"`
	TotalProducts int                        `json:"total_products"`
}

// RelatedInput are the arguments of the related_products tool.
type RelatedInput struct {
	ID    int64 `json:"id" jsonschema:"product id"`
	Limit int   `json:"limit,omitempty" jsonschema:"maximum number of related products"`
}

// RelatedOutput lists related products in score order.
type RelatedOutput struct {
	ID       int64            `json:"id"`
	Products []ProductSummary `json:"products"`
}

// FiltersInput are the arguments of the filter_values tool.
type FiltersInput struct {
	Collection string `json:"collection,omitempty" jsonschema:"selected collection, or All"`
	Decade     string `json:"decade,omitempty" jsonschema:"selected decade, or All"`
	Type       string `json:"type,omitempty" jsonschema:"selected type, or All"`
	InStock    bool   `json:"in_stock,omitempty" jsonschema:"only consider products that can be bought now"`
}

// FiltersOutput holds the filter values still reachable from a selection.
// Degenerate is set when nothing matches and the prices are the fallback span.
type FiltersOutput struct {
	Collections []string `json:"collections"`
	Decades     []string `json:"decades"`
	Types       []string `json:"types"`
	MinPrice    float64  `json:"min_price"`
	MaxPrice    float64  `json:"max_price"`
	Degenerate  bool     `json:"degenerate"`
}

// Tools binds the catalog engine to MCP tool handlers.
type Tools struct {
	engine *catalog.Engine
	logger *zap.Logger
}

// New returns tool handlers reading from engine.
func New(engine *catalog.Engine, logger *zap.Logger) *Tools {
	return &Tools{engine: engine, logger: logger}
}

// NewServer creates an MCP server with every catalog tool registered.
func (t *Tools) NewServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "loftloot", Version: version.Short()}, nil)
	t.Register(server)
	return server
}

// Register adds the catalog tools to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_catalog",
		Description: "Search the vintage toy catalog. In-stock products always come first.",
	}, t.search)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "suggest",
		Description: "Preview filter and product suggestions for a partially typed query.",
	}, t.suggest)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "related_products",
		Description: "List products related to a given product, best match first. Sold-out products are never suggested.",
	}, t.related)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "filter_values",
		Description: "List the collection, decade and type values that still match products for a selection, plus its price span.",
	}, t.filters)
}

// Run serves the tools over stdio until ctx is done or the client disconnects.
func (t *Tools) Run(ctx context.Context) error {
	t.logger.Info("serving MCP tools over stdio")
	return t.NewServer().Run(ctx, &mcp.StdioTransport{})
}

func (t *Tools) search(_ context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	fs := catalog.FilterState{
		Collection:  in.Collection,
		Decade:      in.Decade,
		Type:        in.Type,
		InStockOnly: in.InStock,
		Query:       in.Query,
	}
	if in.MinPrice != nil || in.MaxPrice != nil {
		fs.Price = &catalog.PriceRange{Min: 0, Max: math.MaxFloat64}
		if in.MinPrice != nil {
			fs.Price.Min = *in.MinPrice
		}
		if in.MaxPrice != nil {
			fs.Price.Max = *in.MaxPrice
		}
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	strategy := catalog.ParseStrategy(in.Sort)

	rs, total, err := t.engine.Search(fs, strategy, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return textResult(SearchOutput{Total: total, Sort: string(strategy), Products: summarize(rs)})
}

func (t *Tools) suggest(_ context.Context, _ *mcp.CallToolRequest, in SuggestInput) (*mcp.CallToolResult, SuggestOutput, error) {
	res, err := t.engine.Suggest(in.Query, in.InStock)
	if err != nil {
		return nil, SuggestOutput{}, err
	}
	return textResult(SuggestOutput{
		Filters:       res.Filters,
		Products:      summarize(res.Products),
		TotalProducts: res.TotalProducts,
	})
}

func (t *Tools) related(_ context.Context, _ *mcp.CallToolRequest, in RelatedInput) (*mcp.CallToolResult, RelatedOutput, error) {
	ps, found, err := t.engine.Related(in.ID, in.Limit)
	if err != nil {
		return nil, RelatedOutput{}, err
	}
	if !found {
		return nil, RelatedOutput{}, fmt.Errorf("product %d not found", in.ID)
	}
	return textResult(RelatedOutput{ID: in.ID, Products: summarize(ps)})
}

func (t *Tools) filters(_ context.Context, _ *mcp.CallToolRequest, in FiltersInput) (*mcp.CallToolResult, FiltersOutput, error) {
	a, err := t.engine.Filters(catalog.FilterState{
		Collection:  in.Collection,
		Decade:      in.Decade,
		Type:        in.Type,
		InStockOnly: in.InStock,
	})
	if err != nil {
		return nil, FiltersOutput{}, err
	}
	return textResult(FiltersOutput{
		Collections: a.Collections,
		Decades:     a.Decades,
		Types:       a.Types,
		MinPrice:    a.PriceBounds.Min,
		MaxPrice:    a.PriceBounds.Max,
		Degenerate:  a.Degenerate,
	})
}

// textResult mirrors the structured output as JSON text for clients that
// only read content blocks.
func textResult[T any](out T) (*mcp.CallToolResult, T, error) {
	data, err := json.Marshal(out)
	if err != nil {
		var zero T
		return nil, zero, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, out, nil
}
