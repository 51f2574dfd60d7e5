package signals

import (
	"context"
	"fmt"
	"math"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/internal/stats"
	"github.com/wonny/equimeter/pkg/logger"
)

// Look-back windows of the technical indicators
const (
	ShortSMAWindow  = 50
	LongSMAWindow   = 200
	CrossScanWindow = 100
	ZoneWindow      = 200
	RSIPeriod       = 14

	// MinObservations is the history required before any technical indicator is emitted
	MinObservations = 200
)

var zoneDescriptions = map[contracts.Zone]string{
	contracts.ZoneA: "Very Oversold (below -3σ)",
	contracts.ZoneB: "Oversold (-3σ to -2σ)",
	contracts.ZoneC: "Weak (-2σ to -1σ)",
	contracts.ZoneD: "Below Mean (-1σ to mean)",
	contracts.ZoneE: "Above Mean (mean to +1σ)",
	contracts.ZoneF: "Strong (+1σ to +2σ)",
	contracts.ZoneG: "Overbought (+2σ to +3σ)",
	contracts.ZoneH: "Very Overbought (above +3σ)",
}

// TechnicalReport bundles the three technical indicators of one series
type TechnicalReport struct {
	Crossover contracts.Result[contracts.CrossoverResult] `json:"goldenCrossover"`
	Zone      contracts.Result[contracts.ZoneResult]      `json:"stdDeviationZone"`
	RSI       contracts.Result[contracts.RSIResult]       `json:"rsi"`
}

// TechnicalCalculator derives crossovers, SD zones and RSI from price history
// ⭐ SSOT: 기술적 지표 계산은 여기서만
type TechnicalCalculator struct {
	logger *logger.Logger
}

// NewTechnicalCalculator creates a new technical calculator
func NewTechnicalCalculator(log *logger.Logger) *TechnicalCalculator {
	return &TechnicalCalculator{
		logger: log,
	}
}

// Calculate computes every technical indicator for an ascending price series.
// Fewer than MinObservations points is reported as insufficient data.
func (c *TechnicalCalculator) Calculate(ctx context.Context, symbol string, prices []contracts.PricePoint) (*TechnicalReport, error) {
	if len(prices) < MinObservations {
		return nil, fmt.Errorf("technical indicators need %d prices, got %d: %w",
			MinObservations, len(prices), contracts.ErrInsufficientData)
	}

	report := &TechnicalReport{}

	if cross, err := c.DetectCrossovers(prices); err != nil {
		report.Crossover = contracts.Fail[contracts.CrossoverResult](err)
	} else {
		report.Crossover = contracts.Ok(cross)
	}

	if zone, err := c.ClassifyZone(prices); err != nil {
		report.Zone = contracts.Fail[contracts.ZoneResult](err)
	} else {
		report.Zone = contracts.Ok(zone)
	}

	if rsi, err := c.RSI(prices, RSIPeriod); err != nil {
		report.RSI = contracts.Fail[contracts.RSIResult](err)
	} else {
		report.RSI = contracts.Ok(rsi)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"prices":     len(prices),
		"golden":     report.Crossover.Value.HadGoldenCross,
		"death":      report.Crossover.Value.HadDeathCross,
		"zone":       report.Zone.Value.Zone,
		"latest_rsi": report.RSI.Value.Latest.RSI,
	}).Debug("Calculated technical indicators")

	return report, nil
}

// DetectCrossovers finds SMA-50/SMA-200 crossings in the trailing scan window
func (c *TechnicalCalculator) DetectCrossovers(prices []contracts.PricePoint) (contracts.CrossoverResult, error) {
	result := contracts.CrossoverResult{Events: []contracts.CrossEvent{}}

	n := len(prices)
	if n < LongSMAWindow {
		return result, fmt.Errorf("crossover needs %d prices, got %d: %w", LongSMAWindow, n, contracts.ErrInsufficientData)
	}

	closes := contracts.Closes(prices)
	short := stats.SMA(closes, ShortSMAWindow)
	long := stats.SMA(closes, LongSMAWindow)

	// 최근 100개 관측치 + 직전 1개 비교
	start := n - CrossScanWindow
	if start < 1 {
		start = 1
	}
	result.WindowSize = n - start

	for i := start; i < n; i++ {
		if !defined(short[i-1], long[i-1], short[i], long[i]) {
			continue
		}

		var kind string
		switch {
		case short[i-1] < long[i-1] && short[i] > long[i]:
			kind = "golden"
		case short[i-1] > long[i-1] && short[i] < long[i]:
			kind = "death"
		default:
			continue
		}

		ev := contracts.CrossEvent{Type: kind, Date: prices[i].Date, Index: i}
		result.Events = append(result.Events, ev)

		if kind == "golden" {
			result.HadGoldenCross = true
			result.GoldenCount++
			result.LatestGolden = &ev
		} else {
			result.HadDeathCross = true
			result.DeathCount++
			result.LatestDeath = &ev
		}
	}

	result.SMA50 = short[n-1]
	result.SMA200 = long[n-1]
	return result, nil
}

// ClassifyZone places the latest close in one of eight μ ± kσ bands of the trailing window.
// Boundaries use strict '<', so a close on a boundary falls into the higher zone.
func (c *TechnicalCalculator) ClassifyZone(prices []contracts.PricePoint) (contracts.ZoneResult, error) {
	n := len(prices)
	if n < ZoneWindow {
		return contracts.ZoneResult{}, fmt.Errorf("sd zone needs %d prices, got %d: %w", ZoneWindow, n, contracts.ErrInsufficientData)
	}

	window := contracts.Closes(prices[n-ZoneWindow:])
	mean := stats.Mean(window)
	sd := stats.StdDev(window)
	latest := prices[n-1].Close

	zone := zoneFor(latest, mean, sd)
	return contracts.ZoneResult{
		Zone:        zone,
		Description: zoneDescriptions[zone],
		LatestClose: latest,
		Mean:        mean,
		StdDev:      sd,
		Bounds:      zoneBounds(mean, sd),
		AsOf:        prices[n-1].Date,
	}, nil
}

func zoneBounds(mean, sd float64) []float64 {
	return []float64{mean - 3*sd, mean - 2*sd, mean - sd, mean, mean + sd, mean + 2*sd, mean + 3*sd}
}

// zoneFor is total: every real close maps to exactly one zone
func zoneFor(close, mean, sd float64) contracts.Zone {
	zones := []contracts.Zone{
		contracts.ZoneA, contracts.ZoneB, contracts.ZoneC, contracts.ZoneD,
		contracts.ZoneE, contracts.ZoneF, contracts.ZoneG,
	}
	for i, bound := range zoneBounds(mean, sd) {
		if close < bound {
			return zones[i]
		}
	}
	return contracts.ZoneH
}

// RSI computes the Wilder-smoothed relative strength index.
// The first value sits at index period, aligned to that price's date.
func (c *TechnicalCalculator) RSI(prices []contracts.PricePoint, period int) (contracts.RSIResult, error) {
	if period <= 0 {
		return contracts.RSIResult{}, fmt.Errorf("rsi period must be positive: %w", contracts.ErrNotCalculable)
	}
	if len(prices) < period+1 {
		return contracts.RSIResult{}, fmt.Errorf("rsi needs %d prices, got %d: %w", period+1, len(prices), contracts.ErrInsufficientData)
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := change(prices[i-1].Close, prices[i].Close)
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	series := make([]contracts.RSIPoint, 0, len(prices)-period)
	series = append(series, contracts.RSIPoint{Date: prices[period].Date, RSI: rsiValue(avgGain, avgLoss)})

	p := float64(period)
	for i := period + 1; i < len(prices); i++ {
		gain, loss := change(prices[i-1].Close, prices[i].Close)
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		series = append(series, contracts.RSIPoint{Date: prices[i].Date, RSI: rsiValue(avgGain, avgLoss)})
	}

	return contracts.RSIResult{
		Period: period,
		Series: series,
		Latest: series[len(series)-1],
	}, nil
}

func change(prev, cur float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func defined(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) {
			return false
		}
	}
	return true
}
