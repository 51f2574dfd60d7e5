package screener

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/singleflight"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/httputil"
	"github.com/wonny/equimeter/pkg/logger"
	"github.com/wonny/equimeter/pkg/redis"
)

// Report variants, tried in order
const (
	SourceConsolidated = "consolidated"
	SourceStandalone   = "standalone"
)

// DefaultBaseURL is the public company-page host
const DefaultBaseURL = "https://www.screener.in"

// Client scrapes company pages from screener.in
// ⭐ SSOT: screener.in 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	baseURL    string
	cacheTTL   time.Duration
	inflight   singleflight.Group
}

// NewClient creates a new screener client; cache may be nil
func NewClient(httpClient *httputil.Client, cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     log,
		baseURL:    DefaultBaseURL,
		cacheTTL:   redis.TTLPage,
	}
}

// WithBaseURL overrides the host (tests, mirrors)
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithCacheTTL overrides how long fetched pages are cached
func (c *Client) WithCacheTTL(ttl time.Duration) *Client {
	if ttl > 0 {
		c.cacheTTL = ttl
	}
	return c
}

// CompanyCode strips the exchange suffix used by quote providers
func CompanyCode(symbol string) string {
	code := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.TrimSuffix(code, ".NS")
}

// pageURL builds the company page URL for a report variant
func (c *Client) pageURL(company, source string) string {
	if source == SourceConsolidated {
		return fmt.Sprintf("%s/company/%s/consolidated/", c.baseURL, company)
	}
	return fmt.Sprintf("%s/company/%s/", c.baseURL, company)
}

// Statements scrapes annual statement rows, consolidated first then standalone
func (c *Client) Statements(ctx context.Context, company string) (*contracts.FinancialStatements, error) {
	code := CompanyCode(company)

	var lastErr error
	for _, source := range []string{SourceConsolidated, SourceStandalone} {
		doc, err := c.document(ctx, code, source)
		if err != nil {
			lastErr = err
			continue
		}

		rows := parseStatements(doc)
		if _, ok := rows[contracts.RowSales]; !ok {
			if _, ok := rows[contracts.RowNetProfit]; !ok {
				c.logger.WithFields(map[string]interface{}{
					"company": code,
					"source":  source,
				}).Debug("No profit-loss rows on page")
				lastErr = fmt.Errorf("%s %s: %w", code, source, contracts.ErrNotFound)
				continue
			}
		}

		return &contracts.FinancialStatements{
			Company: code,
			Source:  source,
			Rows:    rows,
		}, nil
	}

	return nil, lastErr
}

// Ownership scrapes the shareholding pattern from the consolidated page
func (c *Client) Ownership(ctx context.Context, company string) (*contracts.OwnershipSnapshot, error) {
	code := CompanyCode(company)

	var lastErr error
	for _, source := range []string{SourceConsolidated, SourceStandalone} {
		doc, err := c.document(ctx, code, source)
		if err != nil {
			lastErr = err
			continue
		}

		snapshot, found := parseShareholding(doc)
		if !found {
			lastErr = fmt.Errorf("%s shareholding: %w", code, contracts.ErrNotFound)
			continue
		}
		return snapshot, nil
	}

	return nil, lastErr
}

// KeyRatios scrapes the headline ratio list
func (c *Client) KeyRatios(ctx context.Context, company string) (*contracts.KeyRatios, error) {
	code := CompanyCode(company)

	var lastErr error
	for _, source := range []string{SourceConsolidated, SourceStandalone} {
		doc, err := c.document(ctx, code, source)
		if err != nil {
			lastErr = err
			continue
		}

		ratios, found := parseKeyRatios(doc)
		if !found {
			lastErr = fmt.Errorf("%s key ratios: %w", code, contracts.ErrNotFound)
			continue
		}
		return ratios, nil
	}

	return nil, lastErr
}

// TrailingPE returns the "Stock P/E" headline ratio
func (c *Client) TrailingPE(ctx context.Context, symbol string) (float64, error) {
	ratios, err := c.KeyRatios(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if ratios.StockPE == nil {
		return 0, fmt.Errorf("%s stock P/E: %w", CompanyCode(symbol), contracts.ErrNotFound)
	}
	return *ratios.StockPE, nil
}

// document fetches and parses a company page, using the page cache when enabled
func (c *Client) document(ctx context.Context, company, source string) (*goquery.Document, error) {
	url := c.pageURL(company, source)

	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// fetch returns the raw page; concurrent callers for the same URL share one request
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	key := redis.PageKey(url)

	if c.cache != nil {
		if data, ok, err := c.cache.GetBytes(ctx, key); err != nil {
			c.logger.WithError(err).Warn("Page cache read failed")
		} else if ok {
			return data, nil
		}
	}

	v, err, _ := c.inflight.Do(url, func() (interface{}, error) {
		return c.httpClient.GetBody(ctx, url)
	})
	if err != nil {
		if httputil.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", url, contracts.ErrNotFound)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w (%v)", url, contracts.ErrUpstreamUnavailable, err)
	}

	body := v.([]byte)
	if c.cache != nil {
		if err := c.cache.SetBytes(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.WithError(err).Warn("Page cache write failed")
		}
	}
	return body, nil
}

// Warm prefetches both report variants into the page cache
func (c *Client) Warm(ctx context.Context, company string) error {
	code := CompanyCode(company)
	var errs []error
	for _, source := range []string{SourceConsolidated, SourceStandalone} {
		if _, err := c.fetch(ctx, c.pageURL(code, source)); err != nil && !errors.Is(err, contracts.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
