package yahoo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
)

// DefaultKeyStatsURL is the key-statistics page; %s is the suffixed ticker
const DefaultKeyStatsURL = "https://finance.yahoo.com/quote/%s/key-statistics"

const statsSelector = "section[data-testid='qsp-statistics']"

// PEHistory is the trailing P/E series shown on the key-statistics page
type PEHistory struct {
	Symbol            string    `json:"symbol"`
	TrailingPEHistory []float64 `json:"trailingPEHistory"`
	Dates             []string  `json:"dates"`
	Timestamp         time.Time `json:"timestamp"`
}

// KeyStatsConfig configures the headless browser
type KeyStatsConfig struct {
	URLFormat  string
	Suffix     string
	Timeout    time.Duration
	ChromePath string
	Headless   bool
	UserAgent  string
}

// KeyStatsScraper renders the JavaScript key-statistics page in headless Chrome
type KeyStatsScraper struct {
	config KeyStatsConfig
	logger *logger.Logger
	render func(ctx context.Context, url string) (string, error)
}

// NewKeyStatsScraper creates a scraper backed by chromedp
func NewKeyStatsScraper(cfg KeyStatsConfig, log *logger.Logger) *KeyStatsScraper {
	if cfg.URLFormat == "" {
		cfg.URLFormat = DefaultKeyStatsURL
	}
	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSuffix
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	}

	s := &KeyStatsScraper{config: cfg, logger: log}
	s.render = s.renderChrome
	return s
}

// PEHistory renders the page and extracts the trailing P/E row
func (s *KeyStatsScraper) PEHistory(ctx context.Context, symbol string) (*PEHistory, error) {
	sym := Symbol(symbol, s.config.Suffix)
	url := fmt.Sprintf(s.config.URLFormat, sym)

	start := time.Now()
	html, err := s.render(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w (%v)", url, contracts.ErrUpstreamUnavailable, err)
	}

	history, err := ParseKeyStats(html)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sym, err)
	}
	history.Symbol = sym
	history.Timestamp = time.Now().UTC()

	s.logger.WithFields(map[string]interface{}{
		"symbol":   sym,
		"points":   len(history.TrailingPEHistory),
		"duration": time.Since(start),
	}).Debug("Scraped P/E history")

	return history, nil
}

// renderChrome loads the page with images disabled and returns the statistics section HTML
func (s *KeyStatsScraper) renderChrome(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.config.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.UserAgent(s.config.UserAgent),
	)
	if s.config.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.config.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, s.config.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(statsSelector, chromedp.ByQuery),
		chromedp.OuterHTML(statsSelector, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}

// ParseKeyStats extracts the "Trailing P/E" row and the column dates
func ParseKeyStats(html string) (*PEHistory, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse key statistics: %w", err)
	}

	history := &PEHistory{}

	tables := doc.Find("table")
	if section := doc.Find(statsSelector); section.Length() > 0 {
		tables = section.Find("table")
	}

	tables.Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() < 2 || !strings.Contains(cells.First().Text(), "Trailing P/E") {
				return
			}
			cells.Each(func(i int, td *goquery.Selection) {
				if i == 0 {
					return
				}
				val := strings.TrimSpace(td.Text())
				if val == "--" {
					return
				}
				if v, err := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64); err == nil {
					history.TrailingPEHistory = append(history.TrailingPEHistory, v)
				}
			})
		})
	})

	tables.First().Find("thead tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		if i == 0 {
			return
		}
		if date := strings.TrimSpace(th.Text()); date != "" {
			history.Dates = append(history.Dates, date)
		}
	})

	if len(history.TrailingPEHistory) == 0 {
		return nil, fmt.Errorf("trailing P/E row: %w", contracts.ErrNotFound)
	}
	return history, nil
}
