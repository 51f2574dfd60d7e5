package handlers

import (
	"net/http"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/internal/scoring"
	"github.com/wonny/equimeter/internal/sentiment"
	"github.com/wonny/equimeter/internal/signals"
	"github.com/wonny/equimeter/pkg/logger"
)

// IndicatorHandler serves derived indicators and the composite Equimeter report
// ⭐ SSOT: 지표/점수 API 핸들러는 이 구조체에서만
type IndicatorHandler struct {
	builder *scoring.Builder
	logger  *logger.Logger
}

// NewIndicatorHandler creates a new indicator handler
func NewIndicatorHandler(builder *scoring.Builder, log *logger.Logger) *IndicatorHandler {
	return &IndicatorHandler{
		builder: builder,
		logger:  log,
	}
}

// respondResult renders an available value or maps its error to a status
func respondResult[T any](w http.ResponseWriter, log *logger.Logger, res contracts.Result[T], message string) {
	if v, ok := res.Get(); ok {
		respondJSON(w, http.StatusOK, v)
		return
	}
	respondFailure(w, log, res.Err, message)
}

// technical runs the technical calculator and returns false after writing an error
func (h *IndicatorHandler) technical(w http.ResponseWriter, r *http.Request) (string, *signals.TechnicalReport, bool) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return "", nil, false
	}

	report, err := h.builder.Technical(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Technical indicators not available")
		return "", nil, false
	}
	return symbol, report, true
}

// GetGoldenCrossover returns SMA-50/SMA-200 crossings in the scan window
// GET /golden-crossover?symbol=
func (h *IndicatorHandler) GetGoldenCrossover(w http.ResponseWriter, r *http.Request) {
	symbol, report, ok := h.technical(w, r)
	if !ok {
		return
	}
	respondResult(w, h.logger.WithSymbol(symbol), report.Crossover, "Crossover not available")
}

// GetStdDeviationZone returns the standard-deviation zone of the latest close
// GET /std-deviation-zones?symbol=
func (h *IndicatorHandler) GetStdDeviationZone(w http.ResponseWriter, r *http.Request) {
	symbol, report, ok := h.technical(w, r)
	if !ok {
		return
	}
	respondResult(w, h.logger.WithSymbol(symbol), report.Zone, "Zone not available")
}

// GetRSI returns the Wilder RSI series and latest value
// GET /rsi-data?symbol=
func (h *IndicatorHandler) GetRSI(w http.ResponseWriter, r *http.Request) {
	symbol, report, ok := h.technical(w, r)
	if !ok {
		return
	}
	respondResult(w, h.logger.WithSymbol(symbol), report.RSI, "RSI not available")
}

// GetPEG returns trailing P/E divided by latest EPS growth
// GET /peg-ratio?symbol=
func (h *IndicatorHandler) GetPEG(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	report, err := h.builder.Fundamental(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "PEG ratio not available")
		return
	}
	respondResult(w, h.logger.WithSymbol(symbol), report.PEG, "PEG ratio not available")
}

// growth renders the series and flags of one statement row
func (h *IndicatorHandler) growth(w http.ResponseWriter, r *http.Request, label string) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	report, err := h.builder.Growth(r.Context(), symbol, label)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, label+" growth not available")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetSalesGrowth returns sales with 1/3/5-year growth flags
// GET /sales-growth/{symbol}
func (h *IndicatorHandler) GetSalesGrowth(w http.ResponseWriter, r *http.Request) {
	h.growth(w, r, contracts.RowSales)
}

// GetProfitGrowth returns net profit with 1/3/5-year growth flags
// GET /profit-growth/{symbol}
func (h *IndicatorHandler) GetProfitGrowth(w http.ResponseWriter, r *http.Request) {
	h.growth(w, r, contracts.RowNetProfit)
}

// GetBorrowSales compares borrowing growth against sales growth
// GET /borrow-sales?symbol=
func (h *IndicatorHandler) GetBorrowSales(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}
	log := h.logger.WithSymbol(symbol)

	cmp, err := h.builder.BorrowSales(r.Context(), symbol)
	if err != nil {
		respondFailure(w, log, err, "Borrowing comparison not available")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":           symbol,
		"growthComparison": cmp,
	})
}

// GetShareholdingTrend classifies the latest change per ownership category
// GET /shareholding-trend?symbol=
func (h *IndicatorHandler) GetShareholdingTrend(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	trends, err := h.builder.OwnershipTrends(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Shareholding trend not available")
		return
	}
	respondJSON(w, http.StatusOK, trends)
}

// GetSentiment classifies recent news and tallies the labels
// GET /sentiment?symbol=
func (h *IndicatorHandler) GetSentiment(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	records, dist, err := h.builder.Sentiment(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Sentiment not available")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":       symbol,
		"analysis":     sentiment.Labels(records),
		"articles":     records,
		"distribution": dist,
	})
}

// GetEquimeter returns the five sub-scores, total and per-input diagnostics
// GET /equimeter?symbol=
func (h *IndicatorHandler) GetEquimeter(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	report, err := h.builder.Build(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Failed to build equimeter")
		return
	}
	respondJSON(w, http.StatusOK, report)
}
