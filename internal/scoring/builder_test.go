package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
)

type fakePrices struct {
	points []contracts.PricePoint
	err    error
	calls  atomic.Int32
}

func (f *fakePrices) History(ctx context.Context, symbol string, start, end time.Time) ([]contracts.PricePoint, error) {
	f.calls.Add(1)
	return f.points, f.err
}

type fakePE struct {
	pe  float64
	err error
}

func (f fakePE) TrailingPE(ctx context.Context, symbol string) (float64, error) {
	return f.pe, f.err
}

type fakeStatements struct {
	fs  *contracts.FinancialStatements
	err error
}

func (f fakeStatements) Statements(ctx context.Context, company string) (*contracts.FinancialStatements, error) {
	return f.fs, f.err
}

type fakeOwnership struct {
	snap *contracts.OwnershipSnapshot
	err  error
}

func (f fakeOwnership) Ownership(ctx context.Context, company string) (*contracts.OwnershipSnapshot, error) {
	return f.snap, f.err
}

type panickingSentiment struct{}

func (panickingSentiment) Sentiment(ctx context.Context, symbol string) ([]contracts.SentimentRecord, error) {
	panic("classifier exploded")
}

type fakeSentiment struct {
	records []contracts.SentimentRecord
}

func (f fakeSentiment) Sentiment(ctx context.Context, symbol string) ([]contracts.SentimentRecord, error) {
	return f.records, nil
}

func risingPrices(n int) []contracts.PricePoint {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]contracts.PricePoint, n)
	for i := range out {
		out[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: 100 + float64(i), Volume: 10}
	}
	return out
}

func statementRow(values ...float64) contracts.StatementRow {
	periods := make([]string, len(values))
	parsed := make([]bool, len(values))
	for i := range values {
		periods[i] = "Mar"
		parsed[i] = true
	}
	return contracts.StatementRow{Periods: periods, Values: values, Parsed: parsed}
}

func sampleStatements() *contracts.FinancialStatements {
	return &contracts.FinancialStatements{
		Company: "TCS",
		Rows: map[string]contracts.StatementRow{
			contracts.RowSales:      statementRow(100, 110, 121, 133, 146, 160),
			contracts.RowNetProfit:  statementRow(10, 8, 9, 11, 14, 16),
			contracts.RowEPS:        statementRow(10, 12),
			contracts.RowBorrowings: statementRow(50, 50, 50, 50, 50, 50),
		},
	}
}

func TestBuilder_PartialFailuresAreIsolated(t *testing.T) {
	prices := &fakePrices{err: errors.New("yahoo timeout")}
	sources := Sources{
		Prices:     prices,
		PE:         []contracts.TrailingPESource{fakePE{err: errors.New("browser failed")}, fakePE{pe: 25}},
		Statements: fakeStatements{fs: sampleStatements()},
		Ownership: fakeOwnership{snap: &contracts.OwnershipSnapshot{
			FIIs: []float64{12.1, 11.8},
			DIIs: []float64{9, 9.5},
		}},
		Sentiment: panickingSentiment{},
	}

	b := NewBuilder(sources, NewEngine(nil, logger.Nop()), logger.Nop())
	report, err := b.Build(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, int32(1), prices.calls.Load())

	// prices failed: technical degrades to 0 with upstream reason
	assert.Equal(t, 0.0, report.Scores.Technical)
	assert.Equal(t, contracts.ReasonUpstreamUnavailable, report.Components[contracts.ComponentTechnical].Inputs["rsi"].Reason)

	// P/E fell back to the second source: PEG 1.25 → 10
	assert.Equal(t, 10.0, report.Scores.Valuation)

	// sales 5yr + profit 5yr, flat borrowings never beat sales: 20 raw → 13.33
	assert.Equal(t, 13.33, report.Scores.Fundamental)

	// DIIs increased only: 10 raw → 6.67
	assert.Equal(t, 6.67, report.Scores.Shareholding)

	// panic in the sentiment source is contained
	assert.Equal(t, 0.0, report.Scores.Sentiment)
	assert.Equal(t, contracts.ReasonUpstreamUnavailable, report.Components[contracts.ComponentSentiment].Inputs["sentiment"].Reason)

	assert.InDelta(t, 30.0, report.Scores.Total, 1e-9)
}

func TestBuilder_ShortHistoryIsInsufficient(t *testing.T) {
	sources := Sources{
		Prices:    &fakePrices{points: risingPrices(120)},
		Sentiment: fakeSentiment{records: []contracts.SentimentRecord{{Label: contracts.SentimentPositive}}},
	}

	b := NewBuilder(sources, NewEngine(nil, logger.Nop()), logger.Nop())
	report, err := b.Build(context.Background(), "NEWCO")
	require.NoError(t, err)

	tech := report.Components[contracts.ComponentTechnical]
	assert.Equal(t, contracts.ReasonInsufficientData, tech.Inputs["goldenCrossover"].Reason)
	assert.Equal(t, 20.0, report.Scores.Sentiment)

	// nil sources are unavailable upstream, not fatal
	assert.Equal(t, contracts.ReasonUpstreamUnavailable, report.Components[contracts.ComponentValuation].Inputs["peg"].Reason)
}

func TestBuilder_FullHistory(t *testing.T) {
	sources := Sources{Prices: &fakePrices{points: risingPrices(260)}}

	b := NewBuilder(sources, NewEngine(nil, logger.Nop()), logger.Nop())
	raw := b.Fetch(context.Background(), "TCS")
	require.True(t, raw.Prices.Available())

	in := b.Indicators(context.Background(), "TCS", raw)
	assert.True(t, in.Crossover.Available())
	assert.False(t, in.Crossover.Value.HadDeathCross)
	assert.True(t, in.Zone.Available())
	assert.True(t, in.RSI.Available())
}

func TestBuilder_EmptySymbol(t *testing.T) {
	b := NewBuilder(Sources{}, NewEngine(nil, logger.Nop()), logger.Nop())
	_, err := b.Build(context.Background(), "  ")
	assert.Error(t, err)
}

func TestBuilder_SingleIndicatorEntryPoints(t *testing.T) {
	sources := Sources{
		Prices:     &fakePrices{points: risingPrices(260)},
		PE:         []contracts.TrailingPESource{fakePE{pe: 25}},
		Statements: fakeStatements{fs: sampleStatements()},
		Ownership:  fakeOwnership{snap: &contracts.OwnershipSnapshot{FIIs: []float64{10, 11}}},
		Sentiment: fakeSentiment{records: []contracts.SentimentRecord{
			{Label: contracts.SentimentNegative},
			{Label: contracts.SentimentNeutral},
			{Label: contracts.SentimentNeutral},
		}},
	}
	b := NewBuilder(sources, NewEngine(nil, logger.Nop()), logger.Nop())
	ctx := context.Background()

	tech, err := b.Technical(ctx, "TCS")
	require.NoError(t, err)
	assert.True(t, tech.RSI.Available())

	fund, err := b.Fundamental(ctx, "TCS")
	require.NoError(t, err)
	peg, ok := fund.PEG.Get()
	require.True(t, ok)
	assert.InDelta(t, 1.25, peg.PEG, 1e-9)

	trends, err := b.OwnershipTrends(ctx, "TCS")
	require.NoError(t, err)
	fii, ok := trends[contracts.HolderFIIs].Get()
	require.True(t, ok)
	assert.True(t, fii.Increased)

	records, dist, err := b.Sentiment(ctx, "TCS")
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, 2, dist.Neutral)
}

func TestBuilder_FundamentalWithoutPE(t *testing.T) {
	sources := Sources{Statements: fakeStatements{fs: sampleStatements()}}
	b := NewBuilder(sources, NewEngine(nil, logger.Nop()), logger.Nop())

	fund, err := b.Fundamental(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, contracts.ReasonUpstreamUnavailable, contracts.Reason(fund.PEG.Err))
	assert.True(t, fund.SalesGrowth.Available())

	_, err = NewBuilder(Sources{}, NewEngine(nil, logger.Nop()), logger.Nop()).Technical(context.Background(), "TCS")
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
}

func TestBuilder_Growth(t *testing.T) {
	b := NewBuilder(Sources{Statements: fakeStatements{fs: sampleStatements()}}, NewEngine(nil, logger.Nop()), logger.Nop())

	report, err := b.Growth(context.Background(), "TCS", contracts.RowNetProfit)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 8, 9, 11, 14, 16}, report.Values)
	assert.Equal(t, contracts.GrowthFlags{OneYear: true, ThreeYear: true, FiveYear: true}, report.Flags)

	_, err = b.Growth(context.Background(), "TCS", contracts.RowROE)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

type countingPE struct {
	calls atomic.Int32
}

func (f *countingPE) TrailingPE(ctx context.Context, symbol string) (float64, error) {
	f.calls.Add(1)
	return 20, nil
}

func TestBuilder_EntryPointsKeepNotFound(t *testing.T) {
	missing := fmt.Errorf("XYZ: %w", contracts.ErrNotFound)
	sources := Sources{
		Prices:     &fakePrices{err: missing},
		Statements: fakeStatements{err: missing},
		Ownership:  fakeOwnership{err: missing},
	}
	b := NewBuilder(sources, NewEngine(nil, logger.Nop()), logger.Nop())
	ctx := context.Background()

	_, err := b.Growth(ctx, "XYZ", contracts.RowSales)
	assert.Equal(t, contracts.ReasonNotFound, contracts.Reason(err))

	_, err = b.Fundamental(ctx, "XYZ")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	_, err = b.BorrowSales(ctx, "XYZ")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	_, err = b.OwnershipTrends(ctx, "XYZ")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	_, err = b.Technical(ctx, "XYZ")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	// 종합 리포트에서는 입력 단위로 upstream_unavailable 처리
	report, err := b.Build(ctx, "XYZ")
	require.NoError(t, err)
	assert.Equal(t, contracts.ReasonUpstreamUnavailable, report.Components[contracts.ComponentFundamental].Inputs["growthComparison"].Reason)
}

func TestBuilder_EntryPointsWrapUnclassifiedErrors(t *testing.T) {
	b := NewBuilder(Sources{Statements: fakeStatements{err: errors.New("connection reset")}}, NewEngine(nil, logger.Nop()), logger.Nop())

	_, err := b.Growth(context.Background(), "TCS", contracts.RowSales)
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)

	_, _, err = NewBuilder(Sources{Sentiment: panickingSentiment{}}, NewEngine(nil, logger.Nop()), logger.Nop()).Sentiment(context.Background(), "TCS")
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
}

func TestBuilder_BorrowSalesSkipsPE(t *testing.T) {
	pe := &countingPE{}
	sources := Sources{
		PE:         []contracts.TrailingPESource{pe},
		Statements: fakeStatements{fs: sampleStatements()},
	}
	b := NewBuilder(sources, NewEngine(nil, logger.Nop()), logger.Nop())

	cmp, err := b.BorrowSales(context.Background(), "TCS")
	require.NoError(t, err)
	assert.False(t, cmp.BorrowingRateBeatsSales5Yrs, "flat borrowings never beat rising sales")
	require.NotNil(t, cmp.SalesGrowth5Yrs)
	assert.Equal(t, int32(0), pe.calls.Load())

	_, err = NewBuilder(Sources{Statements: fakeStatements{fs: &contracts.FinancialStatements{}}}, NewEngine(nil, logger.Nop()), logger.Nop()).
		BorrowSales(context.Background(), "TCS")
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}
