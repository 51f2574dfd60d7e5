package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/internal/signals"
	"github.com/wonny/equimeter/pkg/logger"
)

// DefaultPriceLookback covers the 200-observation window with holidays to spare
const DefaultPriceLookback = 2 * 365 * 24 * time.Hour

// Sources are the external collaborators feeding one score.
// A nil source is reported as upstream unavailable.
type Sources struct {
	Prices     contracts.PriceHistorySource
	PE         []contracts.TrailingPESource // tried in order
	Statements contracts.StatementSource
	Ownership  contracts.OwnershipSource
	Sentiment  contracts.SentimentSource
}

// RawInputs are the fetched inputs before any indicator runs
type RawInputs struct {
	Prices     contracts.Result[[]contracts.PricePoint]
	PE         contracts.Result[float64]
	Statements contracts.Result[*contracts.FinancialStatements]
	Ownership  contracts.Result[*contracts.OwnershipSnapshot]
	Sentiment  contracts.Result[[]contracts.SentimentRecord]
}

// Builder fans out the five fetches, fans in, then scores
// ⭐ SSOT: Equimeter 파이프라인 (fetch → 지표 → 점수)
type Builder struct {
	sources     Sources
	technical   *signals.TechnicalCalculator
	fundamental *signals.FundamentalCalculator
	ownership   *signals.OwnershipClassifier
	sentiment   *signals.SentimentAggregator
	engine      *Engine
	logger      *logger.Logger

	PriceLookback time.Duration
	Timeout       time.Duration
	now           func() time.Time
}

// NewBuilder creates a new score builder
func NewBuilder(sources Sources, engine *Engine, log *logger.Logger) *Builder {
	return &Builder{
		sources:       sources,
		technical:     signals.NewTechnicalCalculator(log),
		fundamental:   signals.NewFundamentalCalculator(log),
		ownership:     signals.NewOwnershipClassifier(log),
		sentiment:     signals.NewSentimentAggregator(log),
		engine:        engine,
		logger:        log,
		PriceLookback: DefaultPriceLookback,
		now:           time.Now,
	}
}

// Build computes the full Equimeter report for a symbol.
// Only an empty symbol is an error; every upstream failure degrades its own input.
func (b *Builder) Build(ctx context.Context, symbol string) (*contracts.Equimeter, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	start := time.Now()
	raw := b.Fetch(ctx, symbol)
	inputs := b.Indicators(ctx, symbol, raw)
	report := b.engine.Score(symbol, inputs)

	b.logger.WithFields(map[string]interface{}{
		"symbol":      symbol,
		"total":       report.Scores.Total,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Built equimeter report")

	return report, nil
}

// Fetch runs the five fetches concurrently and waits for all of them.
// Goroutines never return an error, so one failure cannot cancel its siblings.
func (b *Builder) Fetch(ctx context.Context, symbol string) RawInputs {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	var raw RawInputs
	var g errgroup.Group

	g.Go(func() error {
		raw.Prices = b.FetchPrices(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		raw.PE = b.FetchPE(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		raw.Statements = b.FetchStatements(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		raw.Ownership = b.FetchOwnership(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		raw.Sentiment = b.FetchSentiment(ctx, symbol)
		return nil
	})

	_ = g.Wait()
	return raw
}

// FetchPrices loads the look-back window of daily prices
func (b *Builder) FetchPrices(ctx context.Context, symbol string) contracts.Result[[]contracts.PricePoint] {
	return fetch(b.logger, "prices", func() ([]contracts.PricePoint, error) {
		return b.loadPrices(ctx, symbol)
	})
}

// FetchPE loads the trailing P/E from the first source that answers
func (b *Builder) FetchPE(ctx context.Context, symbol string) contracts.Result[float64] {
	return fetch(b.logger, "trailing_pe", func() (float64, error) {
		return b.trailingPE(ctx, symbol)
	})
}

// FetchStatements loads annual statement rows
func (b *Builder) FetchStatements(ctx context.Context, symbol string) contracts.Result[*contracts.FinancialStatements] {
	return fetch(b.logger, "statements", func() (*contracts.FinancialStatements, error) {
		return b.loadStatements(ctx, symbol)
	})
}

// FetchOwnership loads the shareholding pattern
func (b *Builder) FetchOwnership(ctx context.Context, symbol string) contracts.Result[*contracts.OwnershipSnapshot] {
	return fetch(b.logger, "ownership", func() (*contracts.OwnershipSnapshot, error) {
		return b.loadOwnership(ctx, symbol)
	})
}

// FetchSentiment loads classified news
func (b *Builder) FetchSentiment(ctx context.Context, symbol string) contracts.Result[[]contracts.SentimentRecord] {
	return fetch(b.logger, "sentiment", func() ([]contracts.SentimentRecord, error) {
		return b.loadSentiment(ctx, symbol)
	})
}

func (b *Builder) loadPrices(ctx context.Context, symbol string) ([]contracts.PricePoint, error) {
	if b.sources.Prices == nil {
		return nil, errNoSource
	}
	end := b.now()
	points, err := b.sources.Prices.History(ctx, symbol, end.Add(-b.PriceLookback), end)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, errEmpty
	}
	return contracts.NormalizePrices(points), nil
}

func (b *Builder) loadStatements(ctx context.Context, symbol string) (*contracts.FinancialStatements, error) {
	if b.sources.Statements == nil {
		return nil, errNoSource
	}
	return b.sources.Statements.Statements(ctx, symbol)
}

func (b *Builder) loadOwnership(ctx context.Context, symbol string) (*contracts.OwnershipSnapshot, error) {
	if b.sources.Ownership == nil {
		return nil, errNoSource
	}
	return b.sources.Ownership.Ownership(ctx, symbol)
}

func (b *Builder) loadSentiment(ctx context.Context, symbol string) ([]contracts.SentimentRecord, error) {
	if b.sources.Sentiment == nil {
		return nil, errNoSource
	}
	return b.sources.Sentiment.Sentiment(ctx, symbol)
}

// Single-indicator entry points below keep the collaborator's error class,
// so an unknown company stays not_found instead of upstream_unavailable.

// Technical computes crossovers, zones and RSI for one symbol
func (b *Builder) Technical(ctx context.Context, symbol string) (*signals.TechnicalReport, error) {
	prices, err := direct(b.logger, "prices", func() ([]contracts.PricePoint, error) {
		return b.loadPrices(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	return b.technical.Calculate(ctx, symbol, prices)
}

// Fundamental computes PEG, growth flags and borrowings-vs-sales for one symbol
func (b *Builder) Fundamental(ctx context.Context, symbol string) (*signals.FundamentalReport, error) {
	var pe contracts.Result[float64]
	var fs *contracts.FinancialStatements
	var fsErr error

	var g errgroup.Group
	g.Go(func() error {
		pe = b.FetchPE(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		fs, fsErr = direct(b.logger, "statements", func() (*contracts.FinancialStatements, error) {
			return b.loadStatements(ctx, symbol)
		})
		return nil
	})
	_ = g.Wait()

	if fsErr != nil {
		return nil, fsErr
	}

	var pePtr *float64
	if v, ok := pe.Get(); ok {
		pePtr = &v
	}
	report := b.fundamental.Calculate(ctx, symbol, pePtr, fs)
	if pePtr == nil {
		report.PEG = contracts.Fail[contracts.PEGResult](pe.Err)
	}
	return report, nil
}

// BorrowSales compares borrowing growth against sales growth from statements alone
func (b *Builder) BorrowSales(ctx context.Context, symbol string) (contracts.BorrowSalesComparison, error) {
	fs, err := direct(b.logger, "statements", func() (*contracts.FinancialStatements, error) {
		return b.loadStatements(ctx, symbol)
	})
	if err != nil {
		return contracts.BorrowSalesComparison{}, err
	}
	res := b.fundamental.BorrowSales(fs)
	return res.Value, res.Err
}

// Growth returns one statement row with its 1/3/5-year growth flags
func (b *Builder) Growth(ctx context.Context, symbol, label string) (contracts.GrowthReport, error) {
	fs, err := direct(b.logger, "statements", func() (*contracts.FinancialStatements, error) {
		return b.loadStatements(ctx, symbol)
	})
	if err != nil {
		return contracts.GrowthReport{}, err
	}

	row, ok := fs.Row(label)
	if !ok || row.Len() < 2 {
		return contracts.GrowthReport{}, fmt.Errorf("%s growth: %w", label, contracts.ErrInsufficientData)
	}

	return contracts.GrowthReport{
		Periods: row.Periods,
		Values:  row.Values,
		Flags:   b.fundamental.GrowthFlags(row.Values),
	}, nil
}

// OwnershipTrends classifies the latest shareholding change per category
func (b *Builder) OwnershipTrends(ctx context.Context, symbol string) (contracts.OwnershipTrends, error) {
	snap, err := direct(b.logger, "ownership", func() (*contracts.OwnershipSnapshot, error) {
		return b.loadOwnership(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	return b.ownership.Calculate(ctx, symbol, snap), nil
}

// Sentiment returns the classified records and their tally
func (b *Builder) Sentiment(ctx context.Context, symbol string) ([]contracts.SentimentRecord, contracts.SentimentDistribution, error) {
	records, err := direct(b.logger, "sentiment", func() ([]contracts.SentimentRecord, error) {
		return b.loadSentiment(ctx, symbol)
	})
	if err != nil {
		return nil, contracts.SentimentDistribution{}, err
	}
	return records, b.sentiment.Tally(records), nil
}

// trailingPE tries every P/E source in order and keeps the first success
func (b *Builder) trailingPE(ctx context.Context, symbol string) (float64, error) {
	if len(b.sources.PE) == 0 {
		return 0, errNoSource
	}

	var errs []string
	for _, src := range b.sources.PE {
		pe, err := src.TrailingPE(ctx, symbol)
		if err == nil {
			return pe, nil
		}
		errs = append(errs, err.Error())
	}
	return 0, fmt.Errorf("all P/E sources failed: %s", strings.Join(errs, "; "))
}

// Indicators runs every calculator on the fetched inputs
func (b *Builder) Indicators(ctx context.Context, symbol string, raw RawInputs) contracts.ScoreInputs {
	var in contracts.ScoreInputs

	// Technical
	if prices, ok := raw.Prices.Get(); ok {
		report, err := b.technical.Calculate(ctx, symbol, prices)
		if err != nil {
			in.Crossover = contracts.Fail[contracts.CrossoverResult](err)
			in.Zone = contracts.Fail[contracts.ZoneResult](err)
			in.RSI = contracts.Fail[contracts.RSIResult](err)
		} else {
			in.Crossover, in.Zone, in.RSI = report.Crossover, report.Zone, report.RSI
		}
	} else {
		in.Crossover = contracts.Fail[contracts.CrossoverResult](raw.Prices.Err)
		in.Zone = contracts.Fail[contracts.ZoneResult](raw.Prices.Err)
		in.RSI = contracts.Fail[contracts.RSIResult](raw.Prices.Err)
	}

	// Fundamental
	var pe *float64
	if v, ok := raw.PE.Get(); ok {
		pe = &v
	}
	if fs, ok := raw.Statements.Get(); ok {
		report := b.fundamental.Calculate(ctx, symbol, pe, fs)
		in.PEG, in.SalesGrowth, in.ProfitGrowth, in.BorrowSales = report.PEG, report.SalesGrowth, report.ProfitGrowth, report.BorrowSales
		if pe == nil {
			in.PEG = contracts.Fail[contracts.PEGResult](raw.PE.Err)
		}
	} else {
		in.PEG = contracts.Fail[contracts.PEGResult](raw.Statements.Err)
		in.SalesGrowth = contracts.Fail[contracts.GrowthFlags](raw.Statements.Err)
		in.ProfitGrowth = contracts.Fail[contracts.GrowthFlags](raw.Statements.Err)
		in.BorrowSales = contracts.Fail[contracts.BorrowSalesComparison](raw.Statements.Err)
	}

	// Shareholding
	if snap, ok := raw.Ownership.Get(); ok {
		in.Ownership = contracts.Ok(b.ownership.Calculate(ctx, symbol, snap))
	} else {
		in.Ownership = contracts.Fail[contracts.OwnershipTrends](raw.Ownership.Err)
	}

	// Sentiment
	if records, ok := raw.Sentiment.Get(); ok {
		in.Sentiment = contracts.Ok(b.sentiment.Tally(records))
	} else {
		in.Sentiment = contracts.Fail[contracts.SentimentDistribution](raw.Sentiment.Err)
	}

	return in
}

var (
	errNoSource = fmt.Errorf("no source configured")
	errEmpty    = fmt.Errorf("empty response")
)

// fetch converts any failure (including a panic) into an upstream-unavailable result
func fetch[T any](log *logger.Logger, name string, fn func() (T, error)) contracts.Result[T] {
	v, err := guarded(log, name, fn)
	if err != nil {
		log.WithError(err).WithField("input", name).Warn("Input unavailable")
		return contracts.Fail[T](fmt.Errorf("%s: %w (%v)", name, contracts.ErrUpstreamUnavailable, err))
	}
	return contracts.Ok(v)
}

// direct keeps a classified collaborator error (not_found, insufficient_data, ...)
// and only turns unclassified failures into upstream unavailable
func direct[T any](log *logger.Logger, name string, fn func() (T, error)) (T, error) {
	v, err := guarded(log, name, fn)
	if err == nil {
		return v, nil
	}
	if contracts.Reason(err) == contracts.ReasonError {
		return v, fmt.Errorf("%s: %w (%v)", name, contracts.ErrUpstreamUnavailable, err)
	}
	return v, fmt.Errorf("%s: %w", name, err)
}

// guarded runs fn with panic capture
func guarded[T any](log *logger.Logger, name string, fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("input", name).Errorf("Fetch panicked: %v", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
