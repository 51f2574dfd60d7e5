package handlers

import (
	"context"
	"time"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/internal/external/yahoo"
)

type fakeQuotes struct {
	quote *contracts.Quote
	err   error
}

func (f fakeQuotes) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	return f.quote, f.err
}

type fakeHistory struct {
	points     []contracts.PricePoint
	err        error
	start, end time.Time
}

func (f *fakeHistory) History(ctx context.Context, symbol string, start, end time.Time) ([]contracts.PricePoint, error) {
	f.start, f.end = start, end
	return f.points, f.err
}

type fakePEHistory struct {
	history *yahoo.PEHistory
	err     error
}

func (f fakePEHistory) PEHistory(ctx context.Context, symbol string) (*yahoo.PEHistory, error) {
	return f.history, f.err
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

type fakeRatios struct {
	ratios *contracts.KeyRatios
	err    error
}

func (f fakeRatios) KeyRatios(ctx context.Context, company string) (*contracts.KeyRatios, error) {
	return f.ratios, f.err
}

type fakePE struct{ pe float64 }

func (f fakePE) TrailingPE(ctx context.Context, symbol string) (float64, error) {
	return f.pe, nil
}

type fakeSentiment struct {
	records []contracts.SentimentRecord
}

func (f fakeSentiment) Sentiment(ctx context.Context, symbol string) ([]contracts.SentimentRecord, error) {
	return f.records, nil
}

type fakeNews struct {
	articles []contracts.Article
	err      error
}

func (f fakeNews) Articles(ctx context.Context, query string) ([]contracts.Article, error) {
	return f.articles, f.err
}

type fakeResolver struct {
	companies []contracts.Company
}

func (f fakeResolver) Search(ctx context.Context, query string, limit int) ([]contracts.Company, error) {
	if len(f.companies) > limit {
		return f.companies[:limit], nil
	}
	return f.companies, nil
}

func (f fakeResolver) Resolve(ctx context.Context, name string) (string, error) {
	for _, c := range f.companies {
		if c.Name == name {
			return c.Symbol, nil
		}
	}
	return "", contracts.ErrNotFound
}

func row(values ...float64) contracts.StatementRow {
	periods := make([]string, len(values))
	parsed := make([]bool, len(values))
	for i := range values {
		periods[i] = "Mar " + string(rune('0'+i))
		parsed[i] = true
	}
	return contracts.StatementRow{Periods: periods, Values: values, Parsed: parsed}
}

func sampleStatements() *contracts.FinancialStatements {
	return &contracts.FinancialStatements{
		Company: "TCS",
		Source:  "consolidated",
		Rows: map[string]contracts.StatementRow{
			contracts.RowSales:       row(100, 110, 121, 133, 146, 160),
			contracts.RowNetProfit:   row(10, 8, 9, 11, 14, 16),
			contracts.RowEPS:         row(10, 12),
			contracts.RowBorrowings:  row(50, 60, 80, 110, 150, 210),
			contracts.RowTotalAssets: row(500, 520, 540, 560, 580, 600),
			contracts.RowROCE:        row(18, 21),
		},
	}
}

func risingPrices(n int) []contracts.PricePoint {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]contracts.PricePoint, n)
	for i := range out {
		out[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: 100 + float64(i), Volume: 10}
	}
	return out
}

func f64(v float64) *float64 { return &v }
