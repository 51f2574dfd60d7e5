package contracts

// Statement row labels used across scrapers and calculators
const (
	RowSales          = "Sales"
	RowNetProfit      = "Net Profit"
	RowEPS            = "EPS"
	RowDividendPayout = "Dividend Payout"
	RowBorrowings     = "Borrowings"
	RowTotalAssets    = "Total Assets"
	RowROCE           = "ROCE %"
	RowROE            = "ROE %"
)

// StatementRow is one line item of an annual statement.
// Values are ordered oldest→newest and aligned with Periods.
// 0 is the "not parseable" sentinel in Values; Parsed tells a real 0 apart.
// ⭐ SSOT: 재무제표 한 행
type StatementRow struct {
	Label   string    `json:"label"`
	Periods []string  `json:"periods"`
	Values  []float64 `json:"values"`
	Parsed  []bool    `json:"parsed"`
}

// Len returns the number of periods in the row
func (r StatementRow) Len() int {
	return len(r.Values)
}

// Valid reports whether the parallel sequences have matching lengths
func (r StatementRow) Valid() bool {
	return len(r.Periods) == len(r.Values) && len(r.Parsed) == len(r.Values)
}

// Unparsed counts cells that fell back to the 0 sentinel
func (r StatementRow) Unparsed() int {
	n := 0
	for _, ok := range r.Parsed {
		if !ok {
			n++
		}
	}
	return n
}

// FinancialStatements holds the statement rows scraped for one company
type FinancialStatements struct {
	Company string                  `json:"company"`
	Source  string                  `json:"source"` // consolidated, standalone
	Rows    map[string]StatementRow `json:"rows"`
}

// Row looks up a line item by its canonical label
func (f *FinancialStatements) Row(label string) (StatementRow, bool) {
	if f == nil || f.Rows == nil {
		return StatementRow{}, false
	}
	row, ok := f.Rows[label]
	return row, ok
}

// Values returns the values of a line item, or nil when absent
func (f *FinancialStatements) Values(label string) []float64 {
	row, ok := f.Row(label)
	if !ok {
		return nil
	}
	return row.Values
}

// KeyRatios are the headline ratios listed at the top of a company page
type KeyRatios struct {
	MarketCap    *float64 `json:"marketCap,omitempty"`
	CurrentPrice *float64 `json:"currentPrice,omitempty"`
	High         *float64 `json:"high,omitempty"`
	Low          *float64 `json:"low,omitempty"`
	StockPE      *float64 `json:"stockPE,omitempty"`
	BookValue    *float64 `json:"bookValue,omitempty"`
	FaceValue    *float64 `json:"faceValue,omitempty"`
	ROCE         *float64 `json:"roce,omitempty"`
	ROE          *float64 `json:"roe,omitempty"`
}

// PriceToBook derives PBV from the current price and book value
func (k KeyRatios) PriceToBook() (float64, bool) {
	if k.CurrentPrice == nil || k.BookValue == nil || *k.BookValue == 0 {
		return 0, false
	}
	return *k.CurrentPrice / *k.BookValue, true
}
