package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/internal/external/newsapi"
	"github.com/wonny/equimeter/internal/external/screener"
	"github.com/wonny/equimeter/internal/external/yahoo"
	"github.com/wonny/equimeter/internal/scheduler"
	"github.com/wonny/equimeter/internal/scoreconfig"
	"github.com/wonny/equimeter/internal/scoring"
	"github.com/wonny/equimeter/internal/sentiment"
	"github.com/wonny/equimeter/internal/symbols"
	"github.com/wonny/equimeter/pkg/config"
	"github.com/wonny/equimeter/pkg/database"
	"github.com/wonny/equimeter/pkg/httputil"
	"github.com/wonny/equimeter/pkg/logger"
	"github.com/wonny/equimeter/pkg/redis"
)

// app holds every wired dependency shared by the commands
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg    *config.Config
	logger *logger.Logger

	redis *redis.Client
	db    *database.DB // nil when DATABASE_URL is empty

	screener  *screener.Client
	yahoo     *yahoo.Client
	keyStats  *yahoo.KeyStatsScraper
	news      *newsapi.Client
	sentiment *sentiment.Service // nil without a Gemini key
	resolver  contracts.SymbolResolver

	rules   *scoreconfig.Rules
	builder *scoring.Builder
}

// newApp wires config → logger → redis → db → upstream clients → score builder
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.New(cfg)
	a := &app{cfg: cfg, logger: log}

	// 1. Redis (cache + shared rate limits); disabled client when not configured
	rc, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc
	cache := redis.NewCache(rc, "equimeter")
	limiter := redis.NewRateLimiter(rc, "equimeter")
	log.WithField("enabled", rc.Enabled()).Info("Redis initialized")

	// 2. Database (company lookup only)
	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.resolver = symbols.NewRepository(db.Pool)
		log.Info("Connected to database")
	} else {
		log.Warn("DATABASE_URL not set, company search disabled")
	}

	// 3. Upstream clients
	screenerHTTP := httputil.New(log).
		WithTimeout(cfg.Screener.Timeout).
		WithHeader("User-Agent", cfg.Screener.UserAgent).
		WithLocalLimit(float64(cfg.Screener.RateLimit)).
		WithRateLimiter(limiter, redis.PerSecond(redis.ScreenerRateLimit.Key, cfg.Screener.RateLimit))
	a.screener = screener.NewClient(screenerHTTP, cache, log).
		WithBaseURL(cfg.Screener.BaseURL).
		WithCacheTTL(cfg.Screener.CacheTTL)

	a.yahoo = yahoo.NewClient(cache, log).
		WithSuffix(cfg.Yahoo.Suffix).
		WithHistoryTTL(cfg.Yahoo.HistoryCacheTTL)

	a.keyStats = yahoo.NewKeyStatsScraper(yahoo.KeyStatsConfig{
		URLFormat:  cfg.Yahoo.KeyStatsURL,
		Suffix:     cfg.Yahoo.Suffix,
		Timeout:    cfg.Yahoo.BrowserTimeout,
		ChromePath: cfg.Yahoo.ChromePath,
		Headless:   cfg.Yahoo.Headless,
		UserAgent:  cfg.Screener.UserAgent,
	}, log)

	newsHTTP := httputil.New(log).
		WithRateLimiter(limiter, redis.NewsAPIRateLimit)
	a.news = newsapi.NewClient(newsHTTP, newsapi.Config{
		APIKey:   cfg.NewsAPI.APIKey,
		BaseURL:  cfg.NewsAPI.BaseURL,
		PageSize: cfg.NewsAPI.PageSize,
		Lookback: cfg.NewsAPI.Lookback,
		Language: cfg.NewsAPI.Language,
	}, log)

	// 4. Sentiment (news → Gemini)
	classifier, err := sentiment.NewGeminiClassifier(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, limiter, log)
	if err != nil {
		log.WithError(err).Warn("Sentiment classifier disabled")
	} else {
		a.sentiment = sentiment.NewService(a.news, classifier, cache, log).
			WithConcurrency(cfg.Gemini.Concurrency)
	}

	// 5. Score rules + builder
	rules, err := scoreconfig.Load(cfg.Scoring.RulesPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load scoring rules: %w", err)
	}
	a.rules = rules
	hash, _ := scoreconfig.Hash(rules)
	log.WithFields(map[string]interface{}{
		"version": rules.Version,
		"hash":    hash,
	}).Info("Scoring rules loaded")

	sources := scoring.Sources{
		Prices:     a.yahoo,
		PE:         []contracts.TrailingPESource{a.yahoo, a.screener},
		Statements: a.screener,
		Ownership:  a.screener,
	}
	if a.sentiment != nil {
		sources.Sentiment = a.sentiment
	}
	a.builder = scoring.NewBuilder(sources, scoring.NewEngine(rules, log), log)
	a.builder.Timeout = cfg.Scoring.FetchTimeout

	return a, nil
}

// warmers are the cache warm-up hooks run by the scheduler
func (a *app) warmers() map[string]scheduler.Warmer {
	return map[string]scheduler.Warmer{
		"screener": a.screener,
		"yahoo": scheduler.WarmerFunc(func(ctx context.Context, symbol string) error {
			end := time.Now()
			_, err := a.yahoo.History(ctx, symbol, end.Add(-a.builder.PriceLookback), end)
			return err
		}),
	}
}

// newScheduler registers the cache warm-up job for the configured watchlist
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.logger)
	job := scheduler.NewCacheWarmJob(a.cfg.Scheduler.Schedule, a.cfg.Scheduler.Watchlist, a.warmers(), a.logger)
	if err := sched.AddJob(job); err != nil {
		return nil, err
	}
	return sched, nil
}

// Close releases the database pool and the redis connection
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
