package contracts

import "time"

// Score components
const (
	ComponentValuation    = "valuation"
	ComponentTechnical    = "technical"
	ComponentFundamental  = "fundamental"
	ComponentShareholding = "shareholding"
	ComponentSentiment    = "sentiment"
)

// ScoreVector is the bounded composite score; each sub-score is in [0,20]
// ⭐ SSOT: Equimeter 점수 벡터 (요청 단위 생성, 저장하지 않음)
type ScoreVector struct {
	Valuation    float64 `json:"valuation"`
	Technical    float64 `json:"technical"`
	Fundamental  float64 `json:"fundamental"`
	Shareholding float64 `json:"shareholding"`
	Sentiment    float64 `json:"sentiment"`
	Total        float64 `json:"total"`
}

// InputStatus records whether one criterion's input was usable
type InputStatus struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

// StatusOf builds an InputStatus from an error
func StatusOf(err error) InputStatus {
	if err == nil {
		return InputStatus{Available: true}
	}
	return InputStatus{Reason: Reason(err), Message: err.Error()}
}

// ComponentDiagnostics explains how one sub-score was reached
type ComponentDiagnostics struct {
	Raw    float64                `json:"raw"`
	Score  float64                `json:"score"`
	Inputs map[string]InputStatus `json:"inputs"`
	Notes  []string               `json:"notes,omitempty"`
}

// Available reports whether at least one input of the component was usable
func (c ComponentDiagnostics) Available() bool {
	for _, in := range c.Inputs {
		if in.Available {
			return true
		}
	}
	return false
}

// ScoreInputs are the independently failable indicator results fed to the engine
type ScoreInputs struct {
	PEG          Result[PEGResult]             `json:"peg"`
	Crossover    Result[CrossoverResult]       `json:"goldenCrossover"`
	Zone         Result[ZoneResult]            `json:"stdDeviationZone"`
	RSI          Result[RSIResult]             `json:"rsi"`
	SalesGrowth  Result[GrowthFlags]           `json:"salesGrowth"`
	ProfitGrowth Result[GrowthFlags]           `json:"profitGrowth"`
	BorrowSales  Result[BorrowSalesComparison] `json:"growthComparison"`
	Ownership    Result[OwnershipTrends]       `json:"shares"`
	Sentiment    Result[SentimentDistribution] `json:"sentiment"`
}

// Equimeter is the aggregate record returned to the dashboard
type Equimeter struct {
	Symbol      string                          `json:"symbol"`
	Scores      ScoreVector                     `json:"scores"`
	Components  map[string]ComponentDiagnostics `json:"components"`
	Indicators  ScoreInputs                     `json:"indicators"`
	GeneratedAt time.Time                       `json:"generatedAt"`
}
