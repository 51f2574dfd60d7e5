package scoring

import (
	"fmt"
	"time"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/internal/scoreconfig"
	"github.com/wonny/equimeter/internal/stats"
	"github.com/wonny/equimeter/pkg/logger"
)

// Engine turns independently failable indicator results into a ScoreVector.
// An unavailable input only zeroes its own criterion.
// ⭐ SSOT: 종합 점수 계산은 여기서만
type Engine struct {
	rules  *scoreconfig.Rules
	logger *logger.Logger
	now    func() time.Time
}

// NewEngine creates a score engine; nil rules fall back to the defaults
func NewEngine(rules *scoreconfig.Rules, log *logger.Logger) *Engine {
	if rules == nil {
		rules = scoreconfig.Default()
	}
	return &Engine{
		rules:  rules,
		logger: log,
		now:    time.Now,
	}
}

// Rules exposes the active rule table
func (e *Engine) Rules() *scoreconfig.Rules {
	return e.rules
}

// Score computes the composite record. It never fails.
func (e *Engine) Score(symbol string, in contracts.ScoreInputs) *contracts.Equimeter {
	components := map[string]contracts.ComponentDiagnostics{
		contracts.ComponentValuation:    e.valuation(in),
		contracts.ComponentTechnical:    e.technical(in),
		contracts.ComponentFundamental:  e.fundamental(in),
		contracts.ComponentShareholding: e.shareholding(in),
		contracts.ComponentSentiment:    e.sentiment(in),
	}

	scores := contracts.ScoreVector{
		Valuation:    components[contracts.ComponentValuation].Score,
		Technical:    components[contracts.ComponentTechnical].Score,
		Fundamental:  components[contracts.ComponentFundamental].Score,
		Shareholding: components[contracts.ComponentShareholding].Score,
		Sentiment:    components[contracts.ComponentSentiment].Score,
	}
	total := scores.Valuation + scores.Technical + scores.Fundamental + scores.Shareholding + scores.Sentiment
	scores.Total = stats.Clamp(stats.Round(total, e.rules.RoundPlaces), 0, 5*e.rules.ComponentMax)

	e.logger.WithFields(map[string]interface{}{
		"symbol":       symbol,
		"valuation":    scores.Valuation,
		"technical":    scores.Technical,
		"fundamental":  scores.Fundamental,
		"shareholding": scores.Shareholding,
		"sentiment":    scores.Sentiment,
		"total":        scores.Total,
	}).Info("Computed equimeter score")

	return &contracts.Equimeter{
		Symbol:      symbol,
		Scores:      scores,
		Components:  components,
		Indicators:  in,
		GeneratedAt: e.now(),
	}
}

// finish scales, rounds and clamps a raw component total
func (e *Engine) finish(d contracts.ComponentDiagnostics, maxRaw float64) contracts.ComponentDiagnostics {
	scaled := d.Raw
	if maxRaw > e.rules.ComponentMax {
		scaled = d.Raw * e.rules.ComponentMax / maxRaw
	}
	d.Score = stats.Clamp(stats.Round(scaled, e.rules.RoundPlaces), 0, e.rules.ComponentMax)
	return d
}

func newDiagnostics() contracts.ComponentDiagnostics {
	return contracts.ComponentDiagnostics{Inputs: map[string]contracts.InputStatus{}}
}

func (e *Engine) valuation(in contracts.ScoreInputs) contracts.ComponentDiagnostics {
	d := newDiagnostics()
	d.Inputs["peg"] = contracts.StatusOf(in.PEG.Err)

	if peg, ok := in.PEG.Get(); ok {
		for _, band := range e.rules.Valuation.PEGBands {
			if band.Contains(peg.PEG) {
				d.Raw = band.Points
				d.Notes = append(d.Notes, fmt.Sprintf("PEG %.2f in (%.2f, %.2f]", peg.PEG, band.Min, band.Max))
				break
			}
		}
	}
	return e.finish(d, e.rules.ComponentMax)
}

func (e *Engine) technical(in contracts.ScoreInputs) contracts.ComponentDiagnostics {
	r := e.rules.Technical
	d := newDiagnostics()
	d.Inputs["goldenCrossover"] = contracts.StatusOf(in.Crossover.Err)
	d.Inputs["stdDeviationZone"] = contracts.StatusOf(in.Zone.Err)
	d.Inputs["rsi"] = contracts.StatusOf(in.RSI.Err)

	if cross, ok := in.Crossover.Get(); ok && cross.HadGoldenCross {
		d.Raw += r.GoldenCross
		d.Notes = append(d.Notes, "golden cross in window")
	}

	if zone, ok := in.Zone.Get(); ok {
		points := map[contracts.Zone]float64{
			contracts.ZoneA: r.Zones.A,
			contracts.ZoneB: r.Zones.B,
			contracts.ZoneC: r.Zones.C,
			contracts.ZoneD: r.Zones.D,
		}[zone.Zone]
		d.Raw += points
		if points > 0 {
			d.Notes = append(d.Notes, string(zone.Zone))
		}
	}

	if rsi, ok := in.RSI.Get(); ok {
		for _, th := range r.RSI {
			if rsi.Latest.RSI < th.Below {
				d.Raw += th.Points
				d.Notes = append(d.Notes, fmt.Sprintf("RSI %.2f < %.0f", rsi.Latest.RSI, th.Below))
				break
			}
		}
	}
	return e.finish(d, r.MaxRaw)
}

func tiered(t scoreconfig.TieredGrowth, five, three, one bool) float64 {
	switch {
	case five:
		return t.FiveYear
	case three:
		return t.ThreeYear
	case one:
		return t.OneYear
	}
	return 0
}

func (e *Engine) fundamental(in contracts.ScoreInputs) contracts.ComponentDiagnostics {
	r := e.rules.Fundamental
	d := newDiagnostics()
	d.Inputs["salesGrowth"] = contracts.StatusOf(in.SalesGrowth.Err)
	d.Inputs["profitGrowth"] = contracts.StatusOf(in.ProfitGrowth.Err)
	d.Inputs["growthComparison"] = contracts.StatusOf(in.BorrowSales.Err)

	if f, ok := in.SalesGrowth.Get(); ok {
		d.Raw += tiered(r.SalesGrowth, f.FiveYear, f.ThreeYear, f.OneYear)
	}
	if f, ok := in.ProfitGrowth.Get(); ok {
		d.Raw += tiered(r.ProfitGrowth, f.FiveYear, f.ThreeYear, f.OneYear)
	}
	if cmp, ok := in.BorrowSales.Get(); ok {
		d.Raw += tiered(r.BorrowBeatsSales, cmp.BorrowingRateBeatsSales5Yrs, cmp.BorrowingRateBeatsSales3Yrs, false)
	}
	return e.finish(d, r.MaxRaw)
}

func (e *Engine) shareholding(in contracts.ScoreInputs) contracts.ComponentDiagnostics {
	r := e.rules.Shareholding
	d := newDiagnostics()

	trends, ok := in.Ownership.Get()
	if !ok {
		for _, c := range r.Categories {
			d.Inputs[c] = contracts.StatusOf(in.Ownership.Err)
		}
		return e.finish(d, r.MaxRaw)
	}

	for _, c := range r.Categories {
		res, found := trends[c]
		if !found {
			d.Inputs[c] = contracts.StatusOf(fmt.Errorf("%s: %w", c, contracts.ErrInsufficientData))
			continue
		}
		d.Inputs[c] = contracts.StatusOf(res.Err)

		trend, ok := res.Get()
		switch {
		case !ok:
		case trend.Increased:
			d.Raw += r.Increased
		case trend.Same:
			d.Raw += r.Same
		}
	}
	return e.finish(d, r.MaxRaw)
}

func (e *Engine) sentiment(in contracts.ScoreInputs) contracts.ComponentDiagnostics {
	r := e.rules.Sentiment
	d := newDiagnostics()
	d.Inputs["sentiment"] = contracts.StatusOf(in.Sentiment.Err)

	if dist, ok := in.Sentiment.Get(); ok {
		// 기사 0건은 중립 다수로 취급 (0 >= 0)
		pos, neg, neu := dist.Positive, dist.Negative, dist.Neutral
		switch {
		case pos >= neg && pos > neu:
			d.Raw = r.PositiveMajority
			d.Notes = append(d.Notes, "positive majority")
		case neu >= pos && neu >= neg:
			d.Raw = r.NeutralMajority
			d.Notes = append(d.Notes, "neutral majority")
		}
	}
	return e.finish(d, e.rules.ComponentMax)
}
