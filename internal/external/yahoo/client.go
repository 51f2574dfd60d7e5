package yahoo

import (
	"context"
	"errors"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
	"github.com/wonny/equimeter/pkg/redis"
)

// Client wraps the Yahoo Finance endpoints used for quotes, fundamentals and history
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	logger     *logger.Logger
	cache      *redis.Cache
	suffix     string
	historyTTL time.Duration

	getQuote   func(symbol string) (*finance.Quote, error)
	getEquity  func(symbol string) (*finance.Equity, error)
	getHistory func(symbol string, start, end time.Time) ([]contracts.PricePoint, error)
}

// NewClient creates a Yahoo Finance client; cache may be nil
func NewClient(cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		logger:     log,
		cache:      cache,
		suffix:     DefaultSuffix,
		historyTTL: redis.TTLHistory,
		getQuote:   quote.Get,
		getEquity:  equity.Get,
		getHistory: chartHistory,
	}
}

// WithSuffix overrides the exchange suffix appended to bare tickers
func (c *Client) WithSuffix(suffix string) *Client {
	c.suffix = suffix
	return c
}

// WithHistoryTTL overrides how long price history is cached
func (c *Client) WithHistoryTTL(ttl time.Duration) *Client {
	if ttl > 0 {
		c.historyTTL = ttl
	}
	return c
}

// Quote returns the live quote for a ticker
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	sym := Symbol(symbol, c.suffix)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := c.getQuote(sym)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w (%v)", sym, contracts.ErrUpstreamUnavailable, err)
	}
	if q == nil || q.RegularMarketPrice == 0 {
		return nil, fmt.Errorf("quote %s: %w", sym, contracts.ErrNotFound)
	}

	asOf := time.Now().UTC()
	if q.RegularMarketTime > 0 {
		asOf = time.Unix(int64(q.RegularMarketTime), 0).UTC()
	}

	return &contracts.Quote{
		Symbol:   q.Symbol,
		Name:     q.ShortName,
		Price:    q.RegularMarketPrice,
		Currency: q.CurrencyID,
		AsOf:     asOf,
	}, nil
}

// TrailingPE returns the trailing twelve-month P/E reported with the equity quote
func (c *Client) TrailingPE(ctx context.Context, symbol string) (float64, error) {
	sym := Symbol(symbol, c.suffix)

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	eq, err := c.getEquity(sym)
	if err != nil {
		return 0, fmt.Errorf("equity %s: %w (%v)", sym, contracts.ErrUpstreamUnavailable, err)
	}
	if eq == nil || eq.TrailingPE == 0 {
		return 0, fmt.Errorf("trailing P/E %s: %w", sym, contracts.ErrNotFound)
	}
	return eq.TrailingPE, nil
}

// History returns normalized daily closes in [start, end]
func (c *Client) History(ctx context.Context, symbol string, start, end time.Time) ([]contracts.PricePoint, error) {
	sym := Symbol(symbol, c.suffix)
	key := redis.HistoryKey(sym, start, end)

	if c.cache != nil {
		var cached []contracts.PricePoint
		if ok, err := c.cache.Get(ctx, key, &cached); err != nil {
			c.logger.WithError(err).Warn("History cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points, err := c.getHistory(sym, start, end)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("history %s: %w (%v)", sym, contracts.ErrUpstreamUnavailable, err)
	}

	points = contracts.NormalizePrices(points)
	if len(points) == 0 {
		return nil, fmt.Errorf("history %s: %w", sym, contracts.ErrNotFound)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": sym,
		"points": len(points),
	}).Debug("Fetched price history")

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, points, c.historyTTL); err != nil {
			c.logger.WithError(err).Warn("History cache write failed")
		}
	}
	return points, nil
}

// chartHistory iterates daily chart bars for the window
func chartHistory(symbol string, start, end time.Time) ([]contracts.PricePoint, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	var points []contracts.PricePoint
	iter := chart.Get(params)
	for iter.Next() {
		if p, ok := barToPoint(iter.Bar()); ok {
			points = append(points, p)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// barToPoint converts a chart bar; bars with a missing close are skipped
func barToPoint(bar *finance.ChartBar) (contracts.PricePoint, bool) {
	if bar == nil {
		return contracts.PricePoint{}, false
	}
	closePrice, _ := bar.Close.Float64()
	if closePrice <= 0 {
		return contracts.PricePoint{}, false
	}
	return contracts.PricePoint{
		Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
		Close:  closePrice,
		Volume: int64(bar.Volume),
	}, true
}
