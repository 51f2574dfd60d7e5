package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// QuoteStreamHandler pushes live quotes over a websocket instead of client-side polling
type QuoteStreamHandler struct {
	quotes   contracts.QuoteSource
	interval time.Duration
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewQuoteStreamHandler creates a handler pushing a quote every interval
func NewQuoteStreamHandler(quotes contracts.QuoteSource, interval time.Duration, allowedOrigins []string, log *logger.Logger) *QuoteStreamHandler {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &QuoteStreamHandler{
		quotes:   quotes,
		interval: interval,
		logger:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker allows the configured origins; "*" or an empty list allows all
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return len(set) == 0 || origin == "" || set[origin]
	}
}

// Stream upgrades the connection and pushes quotes until the client leaves
// GET /ws/quote?symbol=TCS
func (h *QuoteStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	symbol, ok := requireSymbol(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger.WithSymbol(symbol)
	log.Debug("Quote stream opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// 읽기 루프: pong 처리 및 연결 종료 감지
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := time.NewTicker(h.interval)
	defer push.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if !h.pushQuote(ctx, conn, symbol, log) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug("Quote stream closed")
			return
		case <-push.C:
			if !h.pushQuote(ctx, conn, symbol, log) {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// pushQuote sends one quote (or an error frame); false means the connection is gone
func (h *QuoteStreamHandler) pushQuote(ctx context.Context, conn *websocket.Conn, symbol string, log *logger.Logger) bool {
	var payload interface{}
	q, err := h.quotes.Quote(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		log.WithError(err).Debug("Quote fetch failed")
		payload = map[string]string{"error": "Error fetching stock price", "reason": contracts.Reason(err)}
	} else {
		payload = newQuoteResponse(q)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(payload); err != nil {
		log.WithError(err).Debug("Quote stream write failed")
		return false
	}
	return true
}
