package contracts

import "time"

// CrossEvent is a single SMA-50/SMA-200 crossing
type CrossEvent struct {
	Type  string    `json:"type"` // golden, death
	Date  time.Time `json:"date"`
	Index int       `json:"index"`
}

// CrossoverResult summarizes crossings inside the scan window
// ⭐ SSOT: 골든/데드 크로스 결과
type CrossoverResult struct {
	HadGoldenCross bool         `json:"hadGoldenCross"`
	HadDeathCross  bool         `json:"hadDeathCross"`
	LatestGolden   *CrossEvent  `json:"latestGoldenCross,omitempty"`
	LatestDeath    *CrossEvent  `json:"latestDeathCross,omitempty"`
	GoldenCount    int          `json:"goldenCount"`
	DeathCount     int          `json:"deathCount"`
	Events         []CrossEvent `json:"events"`
	SMA50          float64      `json:"sma50"`
	SMA200         float64      `json:"sma200"`
	WindowSize     int          `json:"windowObservations"`
}

// Zone is one of the eight standard-deviation bands, "Zone A" (lowest) to "Zone H" (highest)
type Zone string

const (
	ZoneA Zone = "Zone A"
	ZoneB Zone = "Zone B"
	ZoneC Zone = "Zone C"
	ZoneD Zone = "Zone D"
	ZoneE Zone = "Zone E"
	ZoneF Zone = "Zone F"
	ZoneG Zone = "Zone G"
	ZoneH Zone = "Zone H"
)

// ZoneResult is the classification of the latest close against μ ± kσ
type ZoneResult struct {
	Zone        Zone      `json:"zone"`
	Description string    `json:"description"`
	LatestClose float64   `json:"latestClose"`
	Mean        float64   `json:"mean"`
	StdDev      float64   `json:"stdDev"`
	Bounds      []float64 `json:"bounds"` // μ-3σ … μ+3σ
	AsOf        time.Time `json:"asOf"`
}

// RSIPoint is the RSI value aligned to a price date
type RSIPoint struct {
	Date time.Time `json:"date"`
	RSI  float64   `json:"rsi"`
}

// RSIResult holds the full RSI series and its latest value
type RSIResult struct {
	Period int        `json:"period"`
	Series []RSIPoint `json:"series"`
	Latest RSIPoint   `json:"latestRSI"`
}

// PEGResult is the price/earnings-to-growth ratio and its inputs
type PEGResult struct {
	PE          float64 `json:"pe"`
	EPSPrevious float64 `json:"epsPrevious"`
	EPSLatest   float64 `json:"epsLatest"`
	EPSGrowth   float64 `json:"epsGrowth"` // percent
	PEG         float64 `json:"pegRatio"`
}

// GrowthFlags are independent multi-year strict-increase flags
type GrowthFlags struct {
	OneYear   bool `json:"1yr"`
	ThreeYear bool `json:"3yr"`
	FiveYear  bool `json:"5yr"`
}

// GrowthReport pairs a statement series with its growth flags
type GrowthReport struct {
	Periods []string    `json:"years"`
	Values  []float64   `json:"values"`
	Flags   GrowthFlags `json:"growthFlags"`
}

// BorrowSalesComparison compares total growth of borrowings against sales
type BorrowSalesComparison struct {
	BorrowingGrowth3Yrs         *float64 `json:"borrowingGrowth3Yrs,omitempty"`
	BorrowingGrowth5Yrs         *float64 `json:"borrowingGrowth5Yrs,omitempty"`
	SalesGrowth3Yrs             *float64 `json:"salesGrowth3Yrs,omitempty"`
	SalesGrowth5Yrs             *float64 `json:"salesGrowth5Yrs,omitempty"`
	BorrowingRateBeatsSales3Yrs bool     `json:"borrowingRateBeatsSales3Yrs"`
	BorrowingRateBeatsSales5Yrs bool     `json:"borrowingRateBeatsSales5Yrs"`
}

// Trend is the direction of the latest ownership change
type Trend string

const (
	TrendIncreased Trend = "increased"
	TrendDecreased Trend = "decreased"
	TrendSame      Trend = "same"
)

// OwnershipTrend is one category's latest-vs-previous classification
type OwnershipTrend struct {
	Category  string  `json:"category"`
	Previous  float64 `json:"previous"`
	Latest    float64 `json:"latest"`
	Trend     Trend   `json:"trend"`
	Increased bool    `json:"increased"`
	Decreased bool    `json:"decreased"`
	Same      bool    `json:"same"`
}

// OwnershipTrends maps each category to its trend or unavailability
type OwnershipTrends map[string]Result[OwnershipTrend]

// SentimentDistribution is the raw three-way tally
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Ignored  int `json:"ignored,omitempty"`
}

// Total is the number of counted labels
func (d SentimentDistribution) Total() int {
	return d.Positive + d.Negative + d.Neutral
}
