package handlers

import (
	"net/http"
	"strings"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
)

// searchLimit caps type-ahead results
const searchLimit = 5

// StockListHandler serves company search and name → symbol lookup
type StockListHandler struct {
	resolver contracts.SymbolResolver
	logger   *logger.Logger
}

// NewStockListHandler creates a new handler; resolver may be nil when no database is configured
func NewStockListHandler(resolver contracts.SymbolResolver, log *logger.Logger) *StockListHandler {
	return &StockListHandler{
		resolver: resolver,
		logger:   log,
	}
}

func (h *StockListHandler) available(w http.ResponseWriter) bool {
	if h.resolver == nil {
		respondError(w, http.StatusServiceUnavailable, "Company lookup is not configured")
		return false
	}
	return true
}

// Search returns up to five companies whose name or symbol contains the query
// GET /search?query=tata
func (h *StockListHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		respondJSON(w, http.StatusOK, []contracts.Company{})
		return
	}

	companies, err := h.resolver.Search(r.Context(), query, searchLimit)
	if err != nil {
		respondFailure(w, h.logger.WithField("query", query), err, "Server Error")
		return
	}
	if companies == nil {
		companies = []contracts.Company{}
	}

	respondJSON(w, http.StatusOK, companies)
}

// GetSymbol resolves an exact company name to its ticker
// GET /get-stock-symbol?stockName=Tata%20Consultancy%20Services%20Limited
func (h *StockListHandler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("stockName"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "Stock name is required")
		return
	}

	symbol, err := h.resolver.Resolve(r.Context(), name)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			respondError(w, http.StatusNotFound, "Stock not found")
			return
		}
		respondFailure(w, h.logger.WithField("stock_name", name), err, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"symbol": symbol})
}
