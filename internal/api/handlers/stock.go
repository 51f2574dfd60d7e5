package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/internal/external/yahoo"
	"github.com/wonny/equimeter/pkg/logger"
)

// PEHistorySource returns the trailing P/E history of a ticker
type PEHistorySource interface {
	PEHistory(ctx context.Context, symbol string) (*yahoo.PEHistory, error)
}

// StockHandler serves live quotes and price history
// ⭐ SSOT: 시세/가격이력 API 핸들러는 이 구조체에서만
type StockHandler struct {
	quotes    contracts.QuoteSource
	history   contracts.PriceHistorySource
	peHistory PEHistorySource
	logger    *logger.Logger
	now       func() time.Time
}

// NewStockHandler creates a new stock handler; peHistory may be nil
func NewStockHandler(quotes contracts.QuoteSource, history contracts.PriceHistorySource, peHistory PEHistorySource, log *logger.Logger) *StockHandler {
	return &StockHandler{
		quotes:    quotes,
		history:   history,
		peHistory: peHistory,
		logger:    log,
		now:       time.Now,
	}
}

// QuoteResponse is the live price payload (also pushed over websocket)
type QuoteResponse struct {
	Symbol   string    `json:"symbol"`
	Price    float64   `json:"price"`
	Currency string    `json:"currency"`
	AsOf     time.Time `json:"asOf"`
}

func newQuoteResponse(q *contracts.Quote) QuoteResponse {
	return QuoteResponse{
		Symbol:   q.Symbol,
		Price:    q.Price,
		Currency: q.Currency,
		AsOf:     q.AsOf,
	}
}

// GetPrice returns the live quote
// GET /stock-price?symbol=TCS
func (h *StockHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	q, err := h.quotes.Quote(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Error fetching stock price")
		return
	}

	respondJSON(w, http.StatusOK, newQuoteResponse(q))
}

// GetPriceHistory returns daily closes for the requested interval
// GET /stock-price-history?symbol=TCS&interval=1y
func (h *StockHandler) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	interval := r.URL.Query().Get("interval")
	start, end, err := yahoo.Window(interval, h.now())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid interval. Valid options: "+strings.Join(yahoo.Intervals(), ", ")+".")
		return
	}

	points, err := h.history.History(r.Context(), symbol, start, end)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Error fetching stock price history")
		return
	}

	respondJSON(w, http.StatusOK, points)
}

// GetHistoricalPE returns the trailing P/E history from the key-statistics page
// GET /historical-pe-scrape?symbol=TCS
func (h *StockHandler) GetHistoricalPE(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}
	if h.peHistory == nil {
		respondError(w, http.StatusServiceUnavailable, "P/E history scraping is disabled")
		return
	}

	history, err := h.peHistory.PEHistory(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Failed to fetch P/E data")
		return
	}

	respondJSON(w, http.StatusOK, history)
}
