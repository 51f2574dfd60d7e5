package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/equimeter/internal/api/handlers"
	"github.com/wonny/equimeter/pkg/logger"
)

// Handlers groups every endpoint handler; nil handlers leave their routes unregistered
type Handlers struct {
	Stock       *handlers.StockHandler
	StockList   *handlers.StockListHandler
	Data        *handlers.DataHandler
	Indicators  *handlers.IndicatorHandler
	News        *handlers.NewsHandler
	QuoteStream *handlers.QuoteStreamHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, corsOrigins []string, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", welcomeHandler).Methods("GET")
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if h.StockList != nil {
		r.HandleFunc("/search", h.StockList.Search).Methods("GET")
		r.HandleFunc("/get-stock-symbol", h.StockList.GetSymbol).Methods("GET")
	}

	if h.Stock != nil {
		r.HandleFunc("/stock-price", h.Stock.GetPrice).Methods("GET")
		r.HandleFunc("/stock-price-history", h.Stock.GetPriceHistory).Methods("GET")
		r.HandleFunc("/historical-pe-scrape", h.Stock.GetHistoricalPE).Methods("GET")
	}

	if h.QuoteStream != nil {
		r.HandleFunc("/ws/quote", h.QuoteStream.Stream).Methods("GET")
	}

	// Scraped statements and ratios
	if h.Data != nil {
		r.HandleFunc("/scrape/{symbol}", h.Data.GetSalesProfit).Methods("GET")
		r.HandleFunc("/borrow-invest", h.Data.GetBorrowInvest).Methods("GET")
		r.HandleFunc("/shareholding", h.Data.GetShareholding).Methods("GET")
		r.HandleFunc("/eps-dividend", h.Data.GetEPSDividend).Methods("GET")
		r.HandleFunc("/roce", h.Data.GetROCE).Methods("GET")
		r.HandleFunc("/roe", h.Data.GetROE).Methods("GET")
		r.HandleFunc("/market-cap", h.Data.GetMarketCap).Methods("GET")
		r.HandleFunc("/pe-ratio", h.Data.GetPERatio).Methods("GET")
		r.HandleFunc("/book-value", h.Data.GetBookValue).Methods("GET")
		r.HandleFunc("/face-value", h.Data.GetFaceValue).Methods("GET")
		r.HandleFunc("/high-low", h.Data.GetHighLow).Methods("GET")
		r.HandleFunc("/pbv", h.Data.GetPriceToBook).Methods("GET")
	}

	if h.News != nil {
		r.HandleFunc("/news", h.News.GetNews).Methods("GET")
	}

	// Derived indicators and composite score
	if h.Indicators != nil {
		r.HandleFunc("/peg-ratio", h.Indicators.GetPEG).Methods("GET")
		r.HandleFunc("/golden-crossover", h.Indicators.GetGoldenCrossover).Methods("GET")
		r.HandleFunc("/std-deviation-zones", h.Indicators.GetStdDeviationZone).Methods("GET")
		r.HandleFunc("/rsi-data", h.Indicators.GetRSI).Methods("GET")
		r.HandleFunc("/sales-growth/{symbol}", h.Indicators.GetSalesGrowth).Methods("GET")
		r.HandleFunc("/profit-growth/{symbol}", h.Indicators.GetProfitGrowth).Methods("GET")
		r.HandleFunc("/borrow-sales", h.Indicators.GetBorrowSales).Methods("GET")
		r.HandleFunc("/shareholding-trend", h.Indicators.GetShareholdingTrend).Methods("GET")
		r.HandleFunc("/sentiment", h.Indicators.GetSentiment).Methods("GET")
		r.HandleFunc("/equimeter", h.Indicators.GetEquimeter).Methods("GET")
	}

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	// CORS wraps the router so preflight requests are answered before method matching
	return corsMiddleware(corsOrigins)(r)
}

func welcomeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Welcome to the Equimeter API! Use /search?query=stockname to search."))
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": logger.ServiceName,
	})
}

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// requestIDMiddleware propagates or assigns a request id
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
	})
}

// corsMiddleware answers preflight requests and sets CORS headers for allowed origins
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the response status; it stays hijackable for websockets
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithContext(r.Context()).WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"query":    r.URL.RawQuery,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithContext(r.Context()).WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
