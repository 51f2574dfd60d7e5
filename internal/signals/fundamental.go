package signals

import (
	"context"
	"fmt"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/internal/stats"
	"github.com/wonny/equimeter/pkg/logger"
)

// FundamentalReport bundles the statement-derived indicators of one company
type FundamentalReport struct {
	PEG          contracts.Result[contracts.PEGResult]             `json:"peg"`
	SalesGrowth  contracts.Result[contracts.GrowthFlags]           `json:"salesGrowth"`
	ProfitGrowth contracts.Result[contracts.GrowthFlags]           `json:"profitGrowth"`
	BorrowSales  contracts.Result[contracts.BorrowSalesComparison] `json:"growthComparison"`
}

// FundamentalCalculator derives PEG, growth flags and debt-vs-revenue growth
// ⭐ SSOT: 재무 비율 계산은 여기서만
type FundamentalCalculator struct {
	logger *logger.Logger
}

// NewFundamentalCalculator creates a new fundamental calculator
func NewFundamentalCalculator(log *logger.Logger) *FundamentalCalculator {
	return &FundamentalCalculator{
		logger: log,
	}
}

// Calculate runs every fundamental indicator; pe may be nil when unavailable
func (c *FundamentalCalculator) Calculate(ctx context.Context, symbol string, pe *float64, fs *contracts.FinancialStatements) *FundamentalReport {
	report := &FundamentalReport{}

	if peg, err := c.PEG(pe, fs.Values(contracts.RowEPS)); err != nil {
		report.PEG = contracts.Fail[contracts.PEGResult](err)
	} else {
		report.PEG = contracts.Ok(peg)
	}

	report.SalesGrowth = c.growthResult(fs, contracts.RowSales)
	report.ProfitGrowth = c.growthResult(fs, contracts.RowNetProfit)

	report.BorrowSales = c.BorrowSales(fs)

	c.logger.WithFields(map[string]interface{}{
		"symbol":        symbol,
		"peg":           report.PEG.Value.PEG,
		"peg_reason":    contracts.Reason(report.PEG.Err),
		"sales_flags":   report.SalesGrowth.Value,
		"profit_flags":  report.ProfitGrowth.Value,
		"borrow_beats5": report.BorrowSales.Value.BorrowingRateBeatsSales5Yrs,
	}).Debug("Calculated fundamental indicators")

	return report
}

func (c *FundamentalCalculator) growthResult(fs *contracts.FinancialStatements, label string) contracts.Result[contracts.GrowthFlags] {
	row, ok := fs.Row(label)
	if !ok || row.Len() < 2 {
		return contracts.Fail[contracts.GrowthFlags](fmt.Errorf("%s growth: %w", label, contracts.ErrInsufficientData))
	}
	return contracts.Ok(c.GrowthFlags(row.Values))
}

// BorrowSales compares the borrowings and sales rows; both missing is insufficient data
func (c *FundamentalCalculator) BorrowSales(fs *contracts.FinancialStatements) contracts.Result[contracts.BorrowSalesComparison] {
	sales, hasSales := fs.Row(contracts.RowSales)
	borrowings, hasBorrowings := fs.Row(contracts.RowBorrowings)
	if !hasSales && !hasBorrowings {
		return contracts.Fail[contracts.BorrowSalesComparison](
			fmt.Errorf("borrowings and sales rows missing: %w", contracts.ErrInsufficientData))
	}
	return contracts.Ok(c.CompareBorrowingsToSales(borrowings.Values, sales.Values))
}

// PEG divides the trailing P/E by the latest EPS growth percentage
func (c *FundamentalCalculator) PEG(pe *float64, eps []float64) (contracts.PEGResult, error) {
	if pe == nil {
		return contracts.PEGResult{}, fmt.Errorf("peg: trailing P/E unavailable: %w", contracts.ErrInsufficientData)
	}
	if len(eps) < 2 {
		return contracts.PEGResult{}, fmt.Errorf("peg: need 2 EPS points, got %d: %w", len(eps), contracts.ErrInsufficientData)
	}

	prev, latest := eps[len(eps)-2], eps[len(eps)-1]
	if prev == 0 {
		return contracts.PEGResult{}, fmt.Errorf("peg: previous EPS is zero: %w", contracts.ErrNotCalculable)
	}

	growth := stats.PercentGrowth(prev, latest) * 100
	if growth == 0 {
		return contracts.PEGResult{}, fmt.Errorf("peg: EPS growth is zero: %w", contracts.ErrNotCalculable)
	}

	return contracts.PEGResult{
		PE:          *pe,
		EPSPrevious: prev,
		EPSLatest:   latest,
		EPSGrowth:   growth,
		PEG:         *pe / growth,
	}, nil
}

// GrowthFlags checks trailing strict increase over 1, 3 and 5 year windows.
// 3yr needs 4 points and 5yr needs 6, one more than the window itself.
func (c *FundamentalCalculator) GrowthFlags(series []float64) contracts.GrowthFlags {
	n := len(series)
	var flags contracts.GrowthFlags

	if n >= 2 {
		flags.OneYear = series[n-1] > series[n-2]
	}
	if n >= 4 {
		flags.ThreeYear = stats.StrictlyIncreasing(series[n-3:])
	}
	if n >= 6 {
		flags.FiveYear = stats.StrictlyIncreasing(series[n-5:])
	}
	return flags
}

// CompareBorrowingsToSales compares 3 and 5 year total growth rates.
// A flag is false whenever either rate is unavailable.
func (c *FundamentalCalculator) CompareBorrowingsToSales(borrowings, sales []float64) contracts.BorrowSalesComparison {
	var out contracts.BorrowSalesComparison

	b3 := optionalRate(borrowings, 3)
	b5 := optionalRate(borrowings, 5)
	s3 := optionalRate(sales, 3)
	s5 := optionalRate(sales, 5)

	out.BorrowingGrowth3Yrs, out.BorrowingGrowth5Yrs = b3, b5
	out.SalesGrowth3Yrs, out.SalesGrowth5Yrs = s3, s5
	out.BorrowingRateBeatsSales3Yrs = b3 != nil && s3 != nil && *b3 > *s3
	out.BorrowingRateBeatsSales5Yrs = b5 != nil && s5 != nil && *b5 > *s5
	return out
}

func optionalRate(series []float64, period int) *float64 {
	rate, ok := stats.TotalGrowthRate(series, period)
	if !ok {
		return nil
	}
	return &rate
}
