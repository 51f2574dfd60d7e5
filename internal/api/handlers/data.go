package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/internal/external/screener"
	"github.com/wonny/equimeter/pkg/logger"
)

// KeyRatioSource returns the headline ratios of a company page
type KeyRatioSource interface {
	KeyRatios(ctx context.Context, company string) (*contracts.KeyRatios, error)
}

// DataHandler serves scraped statement rows, shareholding and key ratios
// ⭐ SSOT: 재무제표/주주/핵심비율 원자료 API는 이 핸들러에서만
type DataHandler struct {
	statements contracts.StatementSource
	ownership  contracts.OwnershipSource
	ratios     KeyRatioSource
	logger     *logger.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(statements contracts.StatementSource, ownership contracts.OwnershipSource, ratios KeyRatioSource, log *logger.Logger) *DataHandler {
	return &DataHandler{
		statements: statements,
		ownership:  ownership,
		ratios:     ratios,
		logger:     log,
	}
}

const notAvailable = "Data not available"

// rowOrMissing renders a row's values, or the placeholder string when the row is absent
func rowOrMissing(fs *contracts.FinancialStatements, label string) interface{} {
	values := fs.Values(label)
	if len(values) == 0 {
		return notAvailable
	}
	return values
}

// periods returns the header of the first present row
func periods(fs *contracts.FinancialStatements, labels ...string) []string {
	for _, label := range labels {
		if row, ok := fs.Row(label); ok {
			return row.Periods
		}
	}
	return []string{}
}

// loadStatements fetches statements and requires at least one of labels to be present
func (h *DataHandler) loadStatements(w http.ResponseWriter, r *http.Request, labels ...string) (string, *contracts.FinancialStatements, bool) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return "", nil, false
	}

	fs, err := h.statements.Statements(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Failed to retrieve financial data")
		return "", nil, false
	}

	for _, label := range labels {
		if _, ok := fs.Row(label); ok {
			return screener.CompanyCode(symbol), fs, true
		}
	}

	respondError(w, http.StatusNotFound, fmt.Sprintf("%s not available", labels[0]))
	return "", nil, false
}

// GetSalesProfit returns annual sales and net profit
// GET /scrape/{symbol}
func (h *DataHandler) GetSalesProfit(w http.ResponseWriter, r *http.Request) {
	stockName, fs, ok := h.loadStatements(w, r, contracts.RowSales, contracts.RowNetProfit)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stockName": stockName,
		"source":    fs.Source,
		"years":     periods(fs, contracts.RowSales, contracts.RowNetProfit),
		"sales":     fs.Values(contracts.RowSales),
		"profit":    fs.Values(contracts.RowNetProfit),
	})
}

// GetBorrowInvest returns borrowings and total assets
// GET /borrow-invest?symbol=
func (h *DataHandler) GetBorrowInvest(w http.ResponseWriter, r *http.Request) {
	stockName, fs, ok := h.loadStatements(w, r, contracts.RowBorrowings, contracts.RowTotalAssets)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stockName":   stockName,
		"years":       periods(fs, contracts.RowBorrowings, contracts.RowTotalAssets),
		"borrowings":  rowOrMissing(fs, contracts.RowBorrowings),
		"totalAssets": rowOrMissing(fs, contracts.RowTotalAssets),
	})
}

// GetEPSDividend returns EPS and dividend payout ratio
// GET /eps-dividend?symbol=
func (h *DataHandler) GetEPSDividend(w http.ResponseWriter, r *http.Request) {
	stockName, fs, ok := h.loadStatements(w, r, contracts.RowEPS, contracts.RowDividendPayout)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stockName":      stockName,
		"years":          periods(fs, contracts.RowEPS, contracts.RowDividendPayout),
		"EPS":            rowOrMissing(fs, contracts.RowEPS),
		"DividendPayout": rowOrMissing(fs, contracts.RowDividendPayout),
	})
}

// GetROCE returns the return on capital employed series
// GET /roce?symbol=
func (h *DataHandler) GetROCE(w http.ResponseWriter, r *http.Request) {
	h.ratioSeries(w, r, contracts.RowROCE, "ROCE")
}

// GetROE returns the return on equity series
// GET /roe?symbol=
func (h *DataHandler) GetROE(w http.ResponseWriter, r *http.Request) {
	h.ratioSeries(w, r, contracts.RowROE, "ROE")
}

func (h *DataHandler) ratioSeries(w http.ResponseWriter, r *http.Request, label, key string) {
	stockName, fs, ok := h.loadStatements(w, r, label)
	if !ok {
		return
	}

	row, _ := fs.Row(label)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stockName": stockName,
		"years":     row.Periods,
		key:         row.Values,
	})
}

// GetShareholding returns the ownership pattern by period
// GET /shareholding?symbol=
func (h *DataHandler) GetShareholding(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	snap, err := h.ownership.Ownership(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Shareholding data not available")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stockName":  screener.CompanyCode(symbol),
		"years":      snap.Periods,
		"FIIs":       nonNil(snap.FIIs),
		"DIIs":       nonNil(snap.DIIs),
		"Promoters":  nonNil(snap.Promoters),
		"Government": nonNil(snap.Government),
	})
}

func nonNil(values []float64) []float64 {
	if values == nil {
		return []float64{}
	}
	return values
}

// ratio fetches key ratios and renders one of them
func (h *DataHandler) ratio(w http.ResponseWriter, r *http.Request, name string, render func(*contracts.KeyRatios) (map[string]interface{}, bool)) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	ratios, err := h.ratios.KeyRatios(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, fmt.Sprintf("Failed to retrieve %s", name))
		return
	}

	body, found := render(ratios)
	if !found {
		respondError(w, http.StatusNotFound, fmt.Sprintf("%s not found", name))
		return
	}
	body["symbol"] = screener.CompanyCode(symbol)
	respondJSON(w, http.StatusOK, body)
}

func single(key string, v *float64) (map[string]interface{}, bool) {
	if v == nil {
		return nil, false
	}
	return map[string]interface{}{key: *v}, true
}

// GetMarketCap returns market capitalization (Rs. Cr.)
// GET /market-cap?symbol=
func (h *DataHandler) GetMarketCap(w http.ResponseWriter, r *http.Request) {
	h.ratio(w, r, "market cap", func(k *contracts.KeyRatios) (map[string]interface{}, bool) {
		return single("marketCap", k.MarketCap)
	})
}

// GetPERatio returns the stock P/E
// GET /pe-ratio?symbol=
func (h *DataHandler) GetPERatio(w http.ResponseWriter, r *http.Request) {
	h.ratio(w, r, "P/E ratio", func(k *contracts.KeyRatios) (map[string]interface{}, bool) {
		return single("peRatio", k.StockPE)
	})
}

// GetBookValue returns book value per share
// GET /book-value?symbol=
func (h *DataHandler) GetBookValue(w http.ResponseWriter, r *http.Request) {
	h.ratio(w, r, "book value", func(k *contracts.KeyRatios) (map[string]interface{}, bool) {
		return single("bookvalue", k.BookValue)
	})
}

// GetFaceValue returns face value per share
// GET /face-value?symbol=
func (h *DataHandler) GetFaceValue(w http.ResponseWriter, r *http.Request) {
	h.ratio(w, r, "face value", func(k *contracts.KeyRatios) (map[string]interface{}, bool) {
		return single("facevalue", k.FaceValue)
	})
}

// GetHighLow returns the 52-week high and low
// GET /high-low?symbol=
func (h *DataHandler) GetHighLow(w http.ResponseWriter, r *http.Request) {
	h.ratio(w, r, "52-week high/low", func(k *contracts.KeyRatios) (map[string]interface{}, bool) {
		if k.High == nil || k.Low == nil {
			return nil, false
		}
		return map[string]interface{}{
			"high":     *k.High,
			"low":      *k.Low,
			"high/low": fmt.Sprintf("%g / %g", *k.High, *k.Low),
		}, true
	})
}

// GetPriceToBook returns current price divided by book value
// GET /pbv?symbol=
func (h *DataHandler) GetPriceToBook(w http.ResponseWriter, r *http.Request) {
	h.ratio(w, r, "price to book", func(k *contracts.KeyRatios) (map[string]interface{}, bool) {
		pbv, ok := k.PriceToBook()
		if !ok {
			return nil, false
		}
		return map[string]interface{}{
			"currentPrice": *k.CurrentPrice,
			"bookValue":    *k.BookValue,
			"pbv":          fmt.Sprintf("%.2f", pbv),
		}, true
	})
}
