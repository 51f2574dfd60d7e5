package scoreconfig

// Rules is the additive rule table of the composite score.
// Every sub-score is capped at ComponentMax; components with a raw
// maximum above it are scaled by ComponentMax/MaxRaw.
// ⭐ SSOT: Equimeter 점수 규칙표
type Rules struct {
	Version      string            `yaml:"version" json:"version"`
	ComponentMax float64           `yaml:"component_max" json:"component_max"`
	RoundPlaces  int               `yaml:"round_places" json:"round_places"`
	Valuation    ValuationRules    `yaml:"valuation" json:"valuation"`
	Technical    TechnicalRules    `yaml:"technical" json:"technical"`
	Fundamental  FundamentalRules  `yaml:"fundamental" json:"fundamental"`
	Shareholding ShareholdingRules `yaml:"shareholding" json:"shareholding"`
	Sentiment    SentimentRules    `yaml:"sentiment" json:"sentiment"`
}

// Band credits Points when Min < x <= Max
type Band struct {
	Min    float64 `yaml:"min" json:"min"`
	Max    float64 `yaml:"max" json:"max"`
	Points float64 `yaml:"points" json:"points"`
}

// Contains reports whether x falls in the half-open band (Min, Max]
func (b Band) Contains(x float64) bool {
	return x > b.Min && x <= b.Max
}

// ValuationRules scores the PEG ratio
type ValuationRules struct {
	PEGBands []Band `yaml:"peg_bands" json:"peg_bands"`
}

// ZonePoints credits the lower standard-deviation zones
type ZonePoints struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
	C float64 `yaml:"c" json:"c"`
	D float64 `yaml:"d" json:"d"`
}

// Threshold credits Points when x < Below
type Threshold struct {
	Below  float64 `yaml:"below" json:"below"`
	Points float64 `yaml:"points" json:"points"`
}

// TechnicalRules scores crossover, zone and RSI
type TechnicalRules struct {
	MaxRaw      float64     `yaml:"max_raw" json:"max_raw"`
	GoldenCross float64     `yaml:"golden_cross" json:"golden_cross"`
	Zones       ZonePoints  `yaml:"zones" json:"zones"`
	RSI         []Threshold `yaml:"rsi" json:"rsi"` // ascending Below, first match wins
}

// TieredGrowth credits the longest window whose flag holds
type TieredGrowth struct {
	FiveYear  float64 `yaml:"five_year" json:"five_year"`
	ThreeYear float64 `yaml:"three_year" json:"three_year"`
	OneYear   float64 `yaml:"one_year" json:"one_year"`
}

// FundamentalRules scores growth flags and the borrowings comparison
type FundamentalRules struct {
	MaxRaw           float64      `yaml:"max_raw" json:"max_raw"`
	SalesGrowth      TieredGrowth `yaml:"sales_growth" json:"sales_growth"`
	ProfitGrowth     TieredGrowth `yaml:"profit_growth" json:"profit_growth"`
	BorrowBeatsSales TieredGrowth `yaml:"borrowings_beat_sales" json:"borrowings_beat_sales"`
}

// ShareholdingRules scores the latest ownership direction per category
type ShareholdingRules struct {
	MaxRaw     float64  `yaml:"max_raw" json:"max_raw"`
	Categories []string `yaml:"categories" json:"categories"`
	Increased  float64  `yaml:"increased" json:"increased"`
	Same       float64  `yaml:"same" json:"same"`
}

// SentimentRules scores the news label distribution
type SentimentRules struct {
	PositiveMajority float64 `yaml:"positive_majority" json:"positive_majority"`
	NeutralMajority  float64 `yaml:"neutral_majority" json:"neutral_majority"`
}

// Default returns the built-in rule table
func Default() *Rules {
	return &Rules{
		Version:      "equimeter-v1",
		ComponentMax: 20,
		RoundPlaces:  2,
		Valuation: ValuationRules{
			PEGBands: []Band{
				{Min: 0, Max: 1, Points: 20},
				{Min: 1, Max: 1.5, Points: 10},
				{Min: 1.5, Max: 2, Points: 5},
			},
		},
		Technical: TechnicalRules{
			MaxRaw:      30,
			GoldenCross: 10,
			Zones:       ZonePoints{A: 10, B: 7, C: 5, D: 3},
			RSI: []Threshold{
				{Below: 30, Points: 10},
				{Below: 50, Points: 3},
			},
		},
		Fundamental: FundamentalRules{
			MaxRaw:           30,
			SalesGrowth:      TieredGrowth{FiveYear: 10, ThreeYear: 5, OneYear: 3},
			ProfitGrowth:     TieredGrowth{FiveYear: 10, ThreeYear: 5, OneYear: 3},
			BorrowBeatsSales: TieredGrowth{FiveYear: 10, ThreeYear: 5},
		},
		Shareholding: ShareholdingRules{
			MaxRaw:     30,
			Categories: []string{"FIIs", "DIIs", "Promoters"},
			Increased:  10,
			Same:       5,
		},
		Sentiment: SentimentRules{
			PositiveMajority: 20,
			NeutralMajority:  5,
		},
	}
}
