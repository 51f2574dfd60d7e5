package scoring

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
)

var errDown = fmt.Errorf("screener: %w", contracts.ErrUpstreamUnavailable)

func unavailableInputs() contracts.ScoreInputs {
	return contracts.ScoreInputs{
		PEG:          contracts.Fail[contracts.PEGResult](errDown),
		Crossover:    contracts.Fail[contracts.CrossoverResult](errDown),
		Zone:         contracts.Fail[contracts.ZoneResult](errDown),
		RSI:          contracts.Fail[contracts.RSIResult](errDown),
		SalesGrowth:  contracts.Fail[contracts.GrowthFlags](errDown),
		ProfitGrowth: contracts.Fail[contracts.GrowthFlags](errDown),
		BorrowSales:  contracts.Fail[contracts.BorrowSalesComparison](errDown),
		Ownership:    contracts.Fail[contracts.OwnershipTrends](errDown),
		Sentiment:    contracts.Fail[contracts.SentimentDistribution](errDown),
	}
}

func trend(category string, t contracts.Trend) contracts.Result[contracts.OwnershipTrend] {
	return contracts.Ok(contracts.OwnershipTrend{
		Category:  category,
		Trend:     t,
		Increased: t == contracts.TrendIncreased,
		Decreased: t == contracts.TrendDecreased,
		Same:      t == contracts.TrendSame,
	})
}

func bestInputs() contracts.ScoreInputs {
	return contracts.ScoreInputs{
		PEG:          contracts.Ok(contracts.PEGResult{PEG: 0.8}),
		Crossover:    contracts.Ok(contracts.CrossoverResult{HadGoldenCross: true}),
		Zone:         contracts.Ok(contracts.ZoneResult{Zone: contracts.ZoneA}),
		RSI:          contracts.Ok(contracts.RSIResult{Latest: contracts.RSIPoint{RSI: 25}}),
		SalesGrowth:  contracts.Ok(contracts.GrowthFlags{OneYear: true, ThreeYear: true, FiveYear: true}),
		ProfitGrowth: contracts.Ok(contracts.GrowthFlags{FiveYear: true}),
		BorrowSales:  contracts.Ok(contracts.BorrowSalesComparison{BorrowingRateBeatsSales5Yrs: true, BorrowingRateBeatsSales3Yrs: true}),
		Ownership: contracts.Ok(contracts.OwnershipTrends{
			contracts.HolderFIIs:      trend(contracts.HolderFIIs, contracts.TrendIncreased),
			contracts.HolderDIIs:      trend(contracts.HolderDIIs, contracts.TrendIncreased),
			contracts.HolderPromoters: trend(contracts.HolderPromoters, contracts.TrendIncreased),
		}),
		Sentiment: contracts.Ok(contracts.SentimentDistribution{Positive: 3, Negative: 1, Neutral: 1}),
	}
}

func TestEngine_AllUnavailable(t *testing.T) {
	e := NewEngine(nil, logger.Nop())

	report := e.Score("XYZ", unavailableInputs())
	assert.Equal(t, contracts.ScoreVector{}, report.Scores)

	require.Len(t, report.Components, 5)
	for name, c := range report.Components {
		assert.False(t, c.Available(), name)
		for _, in := range c.Inputs {
			assert.Equal(t, contracts.ReasonUpstreamUnavailable, in.Reason)
		}
	}
}

func TestEngine_Maximum(t *testing.T) {
	report := NewEngine(nil, logger.Nop()).Score("TCS", bestInputs())

	assert.Equal(t, contracts.ScoreVector{
		Valuation:    20,
		Technical:    20,
		Fundamental:  20,
		Shareholding: 20,
		Sentiment:    20,
		Total:        100,
	}, report.Scores)
	for name, c := range report.Components {
		assert.True(t, c.Available(), name)
	}
}

func TestEngine_Valuation(t *testing.T) {
	e := NewEngine(nil, logger.Nop())

	tests := []struct {
		peg  float64
		want float64
	}{
		{0.5, 20},
		{1, 20},
		{1.25, 10},
		{1.5, 10},
		{2, 5},
		{2.01, 0},
		{0, 0},
		{-0.7, 0},
	}

	for _, tt := range tests {
		in := unavailableInputs()
		in.PEG = contracts.Ok(contracts.PEGResult{PEG: tt.peg})
		assert.Equal(t, tt.want, e.Score("X", in).Scores.Valuation, "peg=%v", tt.peg)
	}
}

func TestEngine_TechnicalScaled(t *testing.T) {
	in := unavailableInputs()
	in.Crossover = contracts.Ok(contracts.CrossoverResult{HadGoldenCross: true})
	in.Zone = contracts.Ok(contracts.ZoneResult{Zone: contracts.ZoneD})
	in.RSI = contracts.Ok(contracts.RSIResult{Latest: contracts.RSIPoint{RSI: 45}})

	report := NewEngine(nil, logger.Nop()).Score("X", in)

	tech := report.Components[contracts.ComponentTechnical]
	assert.Equal(t, 16.0, tech.Raw)
	assert.Equal(t, 10.67, report.Scores.Technical)
	assert.Equal(t, 10.67, report.Scores.Total)
}

func TestEngine_UpperZoneEarnsNothing(t *testing.T) {
	in := unavailableInputs()
	in.Zone = contracts.Ok(contracts.ZoneResult{Zone: contracts.ZoneF})
	in.RSI = contracts.Ok(contracts.RSIResult{Latest: contracts.RSIPoint{RSI: 70}})

	assert.Equal(t, 0.0, NewEngine(nil, logger.Nop()).Score("X", in).Scores.Technical)
}

func TestEngine_FundamentalTiers(t *testing.T) {
	in := unavailableInputs()
	in.SalesGrowth = contracts.Ok(contracts.GrowthFlags{OneYear: true, ThreeYear: true})
	in.ProfitGrowth = contracts.Ok(contracts.GrowthFlags{OneYear: true})
	in.BorrowSales = contracts.Ok(contracts.BorrowSalesComparison{BorrowingRateBeatsSales3Yrs: true})

	report := NewEngine(nil, logger.Nop()).Score("X", in)
	assert.Equal(t, 13.0, report.Components[contracts.ComponentFundamental].Raw)
	assert.Equal(t, 8.67, report.Scores.Fundamental)
}

func TestEngine_Shareholding(t *testing.T) {
	in := unavailableInputs()
	in.Ownership = contracts.Ok(contracts.OwnershipTrends{
		contracts.HolderFIIs:       trend(contracts.HolderFIIs, contracts.TrendDecreased),
		contracts.HolderDIIs:       trend(contracts.HolderDIIs, contracts.TrendSame),
		contracts.HolderPromoters:  trend(contracts.HolderPromoters, contracts.TrendIncreased),
		contracts.HolderGovernment: trend(contracts.HolderGovernment, contracts.TrendIncreased),
	})

	report := NewEngine(nil, logger.Nop()).Score("X", in)
	c := report.Components[contracts.ComponentShareholding]
	assert.Equal(t, 15.0, c.Raw, "decreased FIIs add 0; Government is not scored")
	assert.Equal(t, 10.0, report.Scores.Shareholding)

	partial := unavailableInputs()
	partial.Ownership = contracts.Ok(contracts.OwnershipTrends{
		contracts.HolderFIIs: contracts.Fail[contracts.OwnershipTrend](fmt.Errorf("FIIs: %w", contracts.ErrInsufficientData)),
		contracts.HolderDIIs: trend(contracts.HolderDIIs, contracts.TrendIncreased),
	})
	report = NewEngine(nil, logger.Nop()).Score("X", partial)
	c = report.Components[contracts.ComponentShareholding]
	assert.Equal(t, 6.67, report.Scores.Shareholding)
	assert.Equal(t, contracts.ReasonInsufficientData, c.Inputs[contracts.HolderFIIs].Reason)
	assert.Equal(t, contracts.ReasonInsufficientData, c.Inputs[contracts.HolderPromoters].Reason)
	assert.True(t, c.Inputs[contracts.HolderDIIs].Available)
}

func TestEngine_Sentiment(t *testing.T) {
	e := NewEngine(nil, logger.Nop())

	tests := []struct {
		name string
		dist contracts.SentimentDistribution
		want float64
	}{
		{"positive majority", contracts.SentimentDistribution{Positive: 2, Negative: 2, Neutral: 1}, 20},
		{"positive tied with neutral", contracts.SentimentDistribution{Positive: 2, Neutral: 2}, 5},
		{"neutral majority", contracts.SentimentDistribution{Positive: 1, Negative: 1, Neutral: 2}, 5},
		{"negative majority", contracts.SentimentDistribution{Positive: 1, Negative: 2}, 0},
		{"no articles", contracts.SentimentDistribution{}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := unavailableInputs()
			in.Sentiment = contracts.Ok(tt.dist)
			assert.Equal(t, tt.want, e.Score("X", in).Scores.Sentiment)
		})
	}
}

// Every combination of available and unavailable inputs stays in bounds
func TestEngine_TotalBounds(t *testing.T) {
	e := NewEngine(nil, logger.Nop())
	best, none := bestInputs(), unavailableInputs()

	for mask := 0; mask < 1<<9; mask++ {
		in := none
		pick := func(bit int) bool { return mask&(1<<bit) != 0 }
		if pick(0) {
			in.PEG = best.PEG
		}
		if pick(1) {
			in.Crossover = best.Crossover
		}
		if pick(2) {
			in.Zone = best.Zone
		}
		if pick(3) {
			in.RSI = best.RSI
		}
		if pick(4) {
			in.SalesGrowth = best.SalesGrowth
		}
		if pick(5) {
			in.ProfitGrowth = best.ProfitGrowth
		}
		if pick(6) {
			in.BorrowSales = best.BorrowSales
		}
		if pick(7) {
			in.Ownership = best.Ownership
		}
		if pick(8) {
			in.Sentiment = best.Sentiment
		}

		s := e.Score("X", in).Scores
		require.GreaterOrEqual(t, s.Total, 0.0)
		require.LessOrEqual(t, s.Total, 100.0)
		for _, sub := range []float64{s.Valuation, s.Technical, s.Fundamental, s.Shareholding, s.Sentiment} {
			require.GreaterOrEqual(t, sub, 0.0)
			require.LessOrEqual(t, sub, 20.0)
		}
	}
}

func TestEngine_DiagnosticsKeepReasons(t *testing.T) {
	in := unavailableInputs()
	in.PEG = contracts.Fail[contracts.PEGResult](fmt.Errorf("peg: %w", contracts.ErrNotCalculable))

	report := NewEngine(nil, logger.Nop()).Score("X", in)
	status := report.Components[contracts.ComponentValuation].Inputs["peg"]
	assert.False(t, status.Available)
	assert.Equal(t, contracts.ReasonNotCalculable, status.Reason)
	assert.True(t, errors.Is(report.Indicators.PEG.Err, contracts.ErrNotCalculable))
}
