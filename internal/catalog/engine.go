package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/loftloot/loftloot/internal/cache"
	"github.com/loftloot/loftloot/internal/feed"
	"github.com/loftloot/loftloot/internal/metrics"
	"github.com/loftloot/loftloot/internal/notify"
	"github.com/loftloot/loftloot/pkg/models"
)

// ErrNotReady is returned by read operations before the first successful load.
var ErrNotReady = errors.New("catalog not loaded")

// Engine defaults.
const (
	DefaultSuggestCacheSize = 256
	DefaultRelatedLimit     = 4
	publishTimeout          = 5 * time.Second
)

// Options tunes the engine. Zero values select the defaults.
type Options struct {
	SuggestProductLimit int `mapstructure:"suggest_product_limit"`
	SuggestFilterLimit  int `mapstructure:"suggest_filter_limit"`
	SuggestCacheSize    int `mapstructure:"suggest_cache_size"`
	RelatedLimit        int `mapstructure:"related_limit"`
}

func (o Options) withDefaults() Options {
	if o.SuggestCacheSize == 0 {
		o.SuggestCacheSize = DefaultSuggestCacheSize
	}
	if o.RelatedLimit <= 0 {
		o.RelatedLimit = DefaultRelatedLimit
	}
	return o
}

// Status describes the published catalog and the last reload attempt.
type Status struct {
	Ready         bool         `json:"ready"`
	Source        string       `json:"source"`
	Version       string       `json:"version,omitempty"`
	Products      int          `json:"products"`
	BuiltAt       *time.Time   `json:"built_at,omitempty"`
	LastAttempt   *time.Time   `json:"last_attempt,omitempty"`
	LastError     string       `json:"last_error,omitempty"`
	LastReport    *BuildReport `json:"last_report,omitempty"`
	SuggestCached int          `json:"suggest_cached"`
}

type suggestKey struct {
	version     string
	query       string
	inStockOnly bool
}

// Engine owns the published catalog. Reads see either the previous catalog
// or a fully built new one, never a partial build. Concurrent reloads share
// a single fetch and build.
type Engine struct {
	source    feed.Source
	logger    *zap.Logger
	metrics   *metrics.Metrics
	publisher notify.Publisher
	now       func() time.Time
	opts      Options

	current  atomic.Pointer[Catalog]
	reloads  singleflight.Group
	suggests *cache.LRU[suggestKey, SuggestionResult]

	mu          sync.Mutex
	lastAttempt time.Time
	lastErr     error
	lastReport  *BuildReport
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMetrics records reloads and queries on m.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithPublisher announces reload outcomes on p.
func WithPublisher(p notify.Publisher) EngineOption {
	return func(e *Engine) { e.publisher = p }
}

// WithClock overrides the time source used for status and events.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithOptions sets limits and cache sizes.
func WithOptions(o Options) EngineOption {
	return func(e *Engine) { e.opts = o }
}

// NewEngine creates an engine reading from source. It holds no catalog until
// the first successful Reload.
func NewEngine(source feed.Source, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		source:    source,
		logger:    logger,
		publisher: notify.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.opts = e.opts.withDefaults()
	e.suggests = cache.NewLRU[suggestKey, SuggestionResult](e.opts.SuggestCacheSize)
	return e
}

// Reload fetches the feed, builds a catalog and publishes it. On failure the
// previous catalog stays published. Concurrent callers share one reload,
// which runs detached from ctx: a caller that gives up gets ctx.Err() while
// the reload finishes for the others.
func (e *Engine) Reload(ctx context.Context) (BuildReport, error) {
	detached := context.WithoutCancel(ctx)
	ch := e.reloads.DoChan("reload", func() (any, error) {
		return e.reload(detached)
	})
	select {
	case res := <-ch:
		if res.Shared {
			e.logger.Debug("joined in-flight catalog reload")
		}
		if res.Err != nil {
			return BuildReport{}, res.Err
		}
		return res.Val.(BuildReport), nil
	case <-ctx.Done():
		return BuildReport{}, ctx.Err()
	}
}

func (e *Engine) reload(ctx context.Context) (BuildReport, error) {
	start := time.Now()
	attempt := e.now()

	f, err := e.source.Fetch(ctx)
	var (
		cat    *Catalog
		report BuildReport
	)
	if err == nil {
		cat, report, err = Build(f)
	}

	e.mu.Lock()
	e.lastAttempt = attempt
	e.lastErr = err
	if err == nil {
		e.lastReport = &report
	}
	e.mu.Unlock()

	if err != nil {
		e.metrics.ObserveReload(start, 0, 0, err)
		e.logger.Error("catalog reload failed",
			zap.String("source", e.source.Name()),
			zap.Error(err),
		)
		e.publish(notify.Event{Topic: notify.TopicReloadFailed, Error: err.Error(), Timestamp: attempt})
		return BuildReport{}, err
	}

	e.current.Store(cat)
	e.suggests.Purge()
	e.metrics.ObserveReload(start, report.Products, len(report.Rejected), nil)

	for _, r := range report.Rejected {
		e.logger.Warn("feed record rejected",
			zap.Int("index", r.Index),
			zap.Int64("id", r.ID),
			zap.String("reason", r.Reason),
		)
	}
	e.logger.Info("catalog published",
		zap.String("source", e.source.Name()),
		zap.String("version", report.Version),
		zap.Int("products", report.Products),
		zap.Int("rejected", len(report.Rejected)),
		zap.Duration("build", report.Duration),
	)
	e.publish(notify.Event{
		Topic:     notify.TopicCatalogReloaded,
		Version:   report.Version,
		Products:  report.Products,
		Rejected:  len(report.Rejected),
		Timestamp: attempt,
	})
	return report, nil
}

func (e *Engine) publish(ev notify.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.Warn("publish catalog event", zap.String("topic", ev.Topic), zap.Error(err))
	}
}

// Run reloads every interval until ctx is done. Failed reloads are logged
// and retried on the next tick.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = e.Reload(ctx)
		}
	}
}

// Catalog returns the published catalog, if any.
func (e *Engine) Catalog() (*Catalog, bool) {
	c := e.current.Load()
	return c, c != nil
}

func (e *Engine) ready(op string) (*Catalog, error) {
	c := e.current.Load()
	if c == nil {
		return nil, ErrNotReady
	}
	e.metrics.Query(op)
	return c, nil
}

// Status reports the published catalog and the last reload attempt.
func (e *Engine) Status() Status {
	st := Status{Source: e.source.Name(), SuggestCached: e.suggests.Len()}
	if c := e.current.Load(); c != nil {
		built := c.BuiltAt()
		st.Ready = true
		st.Version = c.Version()
		st.Products = c.Len()
		st.BuiltAt = &built
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.lastAttempt.IsZero() {
		at := e.lastAttempt
		st.LastAttempt = &at
	}
	if e.lastErr != nil {
		st.LastError = e.lastErr.Error()
	}
	st.LastReport = e.lastReport
	return st
}

// Suggest previews a query against the published catalog. Results are
// memoized per catalog version.
func (e *Engine) Suggest(query string, inStockOnly bool) (SuggestionResult, error) {
	c, err := e.ready("suggest")
	if err != nil {
		return SuggestionResult{}, err
	}
	key := suggestKey{version: c.Version(), query: strings.TrimSpace(query), inStockOnly: inStockOnly}
	if res, ok := e.suggests.Get(key); ok {
		e.metrics.SuggestCache(true)
		return res, nil
	}
	e.metrics.SuggestCache(false)

	res := c.Suggest(query, inStockOnly, SuggestOptions{
		ProductLimit: e.opts.SuggestProductLimit,
		FilterLimit:  e.opts.SuggestFilterLimit,
	})
	e.suggests.Add(key, res)
	return res, nil
}

// Search runs a committed search, sorts it and keeps the first limit
// entries (limit <= 0 keeps all). The total before truncation is returned.
func (e *Engine) Search(fs FilterState, strategy Strategy, limit int) (ResultSet, int, error) {
	c, err := e.ready("search")
	if err != nil {
		return nil, 0, err
	}
	rs := Sort(c.Search(fs), strategy)
	return rs.Take(limit), len(rs), nil
}

// Product looks up one product. A miss is (nil, false, nil).
func (e *Engine) Product(id int64) (*models.Product, bool, error) {
	c, err := e.ready("product")
	if err != nil {
		return nil, false, err
	}
	p, ok := c.Product(id)
	return p, ok, nil
}

// Related resolves related products. limit <= 0 uses the configured default.
func (e *Engine) Related(id int64, limit int) ([]*models.Product, bool, error) {
	c, err := e.ready("related")
	if err != nil {
		return nil, false, err
	}
	if _, ok := c.Product(id); !ok {
		return []*models.Product{}, false, nil
	}
	if limit <= 0 {
		limit = e.opts.RelatedLimit
	}
	return c.RelatedProducts(id, limit), true, nil
}

// Filters computes filter availability for a selection.
func (e *Engine) Filters(fs FilterState) (Availability, error) {
	c, err := e.ready("filters")
	if err != nil {
		return Availability{}, err
	}
	return c.AvailableFilterValues(fs), nil
}

// Facets returns the catalog-wide filter options.
func (e *Engine) Facets() (Facets, error) {
	c, err := e.ready("facets")
	if err != nil {
		return Facets{}, err
	}
	return c.Facets(), nil
}
