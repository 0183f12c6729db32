package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loftloot/loftloot/internal/catalog"
	"github.com/loftloot/loftloot/internal/feed"
	"github.com/loftloot/loftloot/internal/testutil"
)

func connect(t *testing.T, load bool) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	engine := catalog.NewEngine(feed.EmbeddedSource{}, testutil.Logger())
	if load {
		_, err := engine.Reload(ctx)
		require.NoError(t, err)
	}
	server := New(engine, testutil.Logger()).NewServer()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call[T any](t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (T, *mcp.CallToolResult) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)

	var out T
	if res.IsError {
		return out, res
	}
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out, res
}

func TestListTools(t *testing.T) {
	cs := connect(t, true)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"search_catalog", "suggest", "related_products", "filter_values"}, names)
}

func TestSearchCatalog(t *testing.T) {
	cs := connect(t, true)

	out, _ := call[SearchOutput](t, cs, "search_catalog", map[string]any{
		"collection": "Transformers",
		"sort":       "price-low",
	})
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, "price-low", out.Sort)
	require.Len(t, out.Products, 2)
	assert.Equal(t, int64(1), out.Products[0].ID, "in-stock product first")
	assert.False(t, out.Products[1].InStock)

	capped, _ := call[SearchOutput](t, cs, "search_catalog", map[string]any{"limit": 3, "min_price": 20.0})
	assert.Len(t, capped.Products, 3)
	for _, p := range capped.Products {
		assert.GreaterOrEqual(t, p.Price, 20.0)
	}
}

func TestSuggest(t *testing.T) {
	cs := connect(t, true)

	out, _ := call[SuggestOutput](t, cs, "suggest", map[string]any{"query": "bear"})
	assert.Positive(t, out.TotalProducts)
	require.NotEmpty(t, out.Filters)
	assert.Equal(t, catalog.FilterCollection, out.Filters[0].Kind)
	assert.Equal(t, "Care Bears", out.Filters[0].Value)
}

func TestRelatedProducts(t *testing.T) {
	cs := connect(t, true)

	out, _ := call[RelatedOutput](t, cs, "related_products", map[string]any{"id": 1, "limit": 2})
	assert.Equal(t, int64(1), out.ID)
	assert.LessOrEqual(t, len(out.Products), 2)
	for _, p := range out.Products {
		assert.True(t, p.InStock, "product %d", p.ID)
	}

	_, res := call[RelatedOutput](t, cs, "related_products", map[string]any{"id": 404})
	assert.True(t, res.IsError, "unknown product should be a tool error")
}

func TestFilterValues(t *testing.T) {
	cs := connect(t, true)

	out, _ := call[FiltersOutput](t, cs, "filter_values", map[string]any{"collection": "Star Wars"})
	assert.Equal(t, []string{"1970s"}, out.Decades)
	assert.False(t, out.Degenerate)
	assert.Equal(t, 160.0, out.MinPrice)
	assert.Equal(t, 210.0, out.MaxPrice)
}

func TestNotReady(t *testing.T) {
	cs := connect(t, false)
	_, res := call[SearchOutput](t, cs, "search_catalog", map[string]any{"query": "bear"})
	assert.True(t, res.IsError)
}
