package scoreconfig

import (
	"fmt"
	"sort"
)

// ValidationError 검증 실패
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var knownCategories = map[string]bool{
	"FIIs":       true,
	"DIIs":       true,
	"Promoters":  true,
	"Government": true,
}

// Validate checks the rule table is internally consistent
func Validate(r *Rules) error {
	if r.ComponentMax <= 0 {
		return ValidationError{"component_max", "must be > 0"}
	}
	if r.RoundPlaces < 0 || r.RoundPlaces > 6 {
		return ValidationError{"round_places", "must be in [0, 6]"}
	}

	// === Valuation ===
	if err := validateBands("valuation.peg_bands", r.Valuation.PEGBands, r.ComponentMax); err != nil {
		return err
	}

	// === Technical ===
	if r.Technical.MaxRaw <= 0 {
		return ValidationError{"technical.max_raw", "must be > 0"}
	}
	z := r.Technical.Zones
	if !(z.A >= z.B && z.B >= z.C && z.C >= z.D && z.D >= 0) {
		return ValidationError{"technical.zones", "points must be non-increasing from a to d and non-negative"}
	}
	if !sort.SliceIsSorted(r.Technical.RSI, func(i, j int) bool {
		return r.Technical.RSI[i].Below < r.Technical.RSI[j].Below
	}) {
		return ValidationError{"technical.rsi", "thresholds must be ascending"}
	}
	for i, th := range r.Technical.RSI {
		if th.Below <= 0 || th.Below > 100 {
			return ValidationError{fmt.Sprintf("technical.rsi[%d].below", i), "must be in (0, 100]"}
		}
		if th.Points < 0 {
			return ValidationError{fmt.Sprintf("technical.rsi[%d].points", i), "must be >= 0"}
		}
	}

	// === Fundamental ===
	if r.Fundamental.MaxRaw <= 0 {
		return ValidationError{"fundamental.max_raw", "must be > 0"}
	}
	for name, tier := range map[string]TieredGrowth{
		"fundamental.sales_growth":          r.Fundamental.SalesGrowth,
		"fundamental.profit_growth":         r.Fundamental.ProfitGrowth,
		"fundamental.borrowings_beat_sales": r.Fundamental.BorrowBeatsSales,
	} {
		if tier.FiveYear < 0 || tier.ThreeYear < 0 || tier.OneYear < 0 {
			return ValidationError{name, "points must be >= 0"}
		}
	}

	// === Shareholding ===
	if r.Shareholding.MaxRaw <= 0 {
		return ValidationError{"shareholding.max_raw", "must be > 0"}
	}
	if len(r.Shareholding.Categories) == 0 {
		return ValidationError{"shareholding.categories", "required"}
	}
	for _, c := range r.Shareholding.Categories {
		if !knownCategories[c] {
			return ValidationError{"shareholding.categories", fmt.Sprintf("unknown category %q", c)}
		}
	}
	if r.Shareholding.Same > r.Shareholding.Increased {
		return ValidationError{"shareholding.same", "must not exceed increased"}
	}

	// === Sentiment ===
	if r.Sentiment.PositiveMajority < 0 || r.Sentiment.PositiveMajority > r.ComponentMax {
		return ValidationError{"sentiment.positive_majority", "must be in [0, component_max]"}
	}
	if r.Sentiment.NeutralMajority < 0 || r.Sentiment.NeutralMajority > r.ComponentMax {
		return ValidationError{"sentiment.neutral_majority", "must be in [0, component_max]"}
	}

	return nil
}

// validateBands requires ordered, non-overlapping bands
func validateBands(field string, bands []Band, max float64) error {
	for i, b := range bands {
		if b.Min >= b.Max {
			return ValidationError{fmt.Sprintf("%s[%d]", field, i), "min must be < max"}
		}
		if b.Points < 0 || b.Points > max {
			return ValidationError{fmt.Sprintf("%s[%d].points", field, i), "must be in [0, component_max]"}
		}
		if i > 0 && b.Min < bands[i-1].Max {
			return ValidationError{fmt.Sprintf("%s[%d]", field, i), "overlaps previous band"}
		}
	}
	return nil
}
