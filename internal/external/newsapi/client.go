package newsapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/httputil"
	"github.com/wonny/equimeter/pkg/logger"
)

// ErrMissingAPIKey is returned when no API key is configured
var ErrMissingAPIKey = errors.New("newsapi: API key not configured")

// Config holds request defaults
type Config struct {
	APIKey   string
	BaseURL  string
	PageSize int
	Lookback time.Duration
	Language string
}

// Client searches articles through the /everything endpoint
// ⭐ SSOT: 뉴스 검색은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	config     Config
	now        func() time.Time
}

// NewClient creates a news client
func NewClient(httpClient *httputil.Client, cfg Config, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://newsapi.org/v2"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 30 * 24 * time.Hour
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		httpClient: httpClient,
		logger:     log,
		config:     cfg,
		now:        time.Now,
	}
}

type response struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// searchURL builds the query: exact phrase, newest first, within the lookback window
func (c *Client) searchURL(query string) string {
	params := url.Values{}
	params.Set("q", strconv.Quote(strings.TrimSpace(query)))
	params.Set("from", c.now().Add(-c.config.Lookback).Format("2006-01-02"))
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(c.config.PageSize))
	params.Set("language", c.config.Language)
	params.Set("apiKey", c.config.APIKey)
	return c.config.BaseURL + "/everything?" + params.Encode()
}

// Articles returns the latest articles matching query
func (c *Client) Articles(ctx context.Context, query string) ([]contracts.Article, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("%w: %w", contracts.ErrUpstreamUnavailable, ErrMissingAPIKey)
	}

	var resp response
	if err := c.httpClient.GetJSON(ctx, c.searchURL(query), &resp); err != nil {
		return nil, fmt.Errorf("news %q: %w (%v)", query, contracts.ErrUpstreamUnavailable, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("news %q: %w (%s: %s)", query, contracts.ErrUpstreamUnavailable, resp.Code, resp.Message)
	}

	articles := make([]contracts.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if strings.TrimSpace(a.Title) == "" || a.Title == "[Removed]" {
			continue
		}
		articles = append(articles, contracts.Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"query":    query,
		"total":    resp.TotalResults,
		"articles": len(articles),
	}).Debug("Fetched news articles")

	return articles, nil
}
