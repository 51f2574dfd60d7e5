package sentiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
	"github.com/wonny/equimeter/pkg/redis"
)

// DefaultConcurrency bounds in-flight classifier calls
const DefaultConcurrency = 3

// Service fetches news for a symbol and classifies each article
type Service struct {
	news        contracts.NewsSource
	classifier  contracts.SentimentClassifier
	cache       *redis.Cache
	logger      *logger.Logger
	concurrency int
	cacheTTL    time.Duration
}

// NewService creates a sentiment service; cache may be nil
func NewService(news contracts.NewsSource, classifier contracts.SentimentClassifier, cache *redis.Cache, log *logger.Logger) *Service {
	return &Service{
		news:        news,
		classifier:  classifier,
		cache:       cache,
		logger:      log,
		concurrency: DefaultConcurrency,
		cacheTTL:    time.Hour,
	}
}

// WithConcurrency sets the classifier fan-out limit
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Sentiment returns one record per classified article, in article order.
// Articles the classifier cannot label are dropped; an empty result is not an error.
func (s *Service) Sentiment(ctx context.Context, symbol string) ([]contracts.SentimentRecord, error) {
	if s.news == nil || s.classifier == nil {
		return nil, fmt.Errorf("sentiment %s: %w", symbol, contracts.ErrUpstreamUnavailable)
	}

	key := redis.SentimentKey(symbol)
	if s.cache != nil {
		var cached []contracts.SentimentRecord
		if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	articles, err := s.news.Articles(ctx, symbol)
	if err != nil {
		return nil, err
	}

	labels := make([]contracts.SentimentLabel, len(articles))
	errs := make([]error, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, article := range articles {
		g.Go(func() error {
			labels[i], errs[i] = s.classifier.Classify(gctx, article.Text())
			return nil
		})
	}
	_ = g.Wait()

	records := make([]contracts.SentimentRecord, 0, len(articles))
	failed := 0
	for i, article := range articles {
		if errs[i] != nil {
			failed++
			s.logger.WithError(errs[i]).WithField("url", article.URL).Debug("Article not classified")
			continue
		}
		records = append(records, contracts.SentimentRecord{
			Title:       article.Title,
			Label:       labels[i],
			URL:         article.URL,
			PublishedAt: article.PublishedAt,
		})
	}

	// 전부 실패했다면 분류기 장애로 간주
	if len(articles) > 0 && failed == len(articles) {
		return nil, fmt.Errorf("sentiment %s: %w", symbol, errors.Join(contracts.ErrUpstreamUnavailable, errs[0]))
	}

	s.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"articles":   len(articles),
		"classified": len(records),
	}).Info("Classified news sentiment")

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, records, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Sentiment cache write failed")
		}
	}
	return records, nil
}

// Labels flattens records into the label list consumed by the aggregator
func Labels(records []contracts.SentimentRecord) []contracts.SentimentLabel {
	labels := make([]contracts.SentimentLabel, len(records))
	for i, r := range records {
		labels[i] = r.Label
	}
	return labels
}
