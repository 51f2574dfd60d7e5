package handlers

import (
	"net/http"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
)

// NewsHandler serves the latest articles about a company
type NewsHandler struct {
	news   contracts.NewsSource
	logger *logger.Logger
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(news contracts.NewsSource, log *logger.Logger) *NewsHandler {
	return &NewsHandler{
		news:   news,
		logger: log,
	}
}

// GetNews returns last month's articles, newest first
// GET /news?symbol=TCS
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	articles, err := h.news.Articles(r.Context(), symbol)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Error fetching news")
		return
	}
	if articles == nil {
		articles = []contracts.Article{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"articles": articles,
	})
}
