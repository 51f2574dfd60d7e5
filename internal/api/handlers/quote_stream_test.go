package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
)

func dialStream(t *testing.T, h *QuoteStreamHandler, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestQuoteStream_PushesQuotes(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	quotes := fakeQuotes{quote: &contracts.Quote{Symbol: "TCS.NS", Price: 3900.5, Currency: "INR", AsOf: asOf}}
	h := NewQuoteStreamHandler(quotes, 20*time.Millisecond, nil, logger.Nop())

	conn := dialStream(t, h, "?symbol=TCS")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// 첫 프레임은 즉시, 이후 interval마다
	for i := 0; i < 2; i++ {
		var got QuoteResponse
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "TCS.NS", got.Symbol)
		assert.Equal(t, 3900.5, got.Price)
		assert.True(t, asOf.Equal(got.AsOf))
	}
}

func TestQuoteStream_ErrorFrame(t *testing.T) {
	h := NewQuoteStreamHandler(fakeQuotes{err: contracts.ErrUpstreamUnavailable}, time.Second, nil, logger.Nop())

	conn := dialStream(t, h, "?symbol=TCS")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var frame map[string]string
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "Error fetching stock price", frame["error"])
	assert.Equal(t, contracts.Reason(contracts.ErrUpstreamUnavailable), frame["reason"])
}

func TestQuoteStream_MissingSymbol(t *testing.T) {
	h := NewQuoteStreamHandler(fakeQuotes{}, time.Second, nil, logger.Nop())

	rec := httptest.NewRecorder()
	h.Stream(rec, httptest.NewRequest(http.MethodGet, "/ws/quote", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws/quote", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	check := originChecker([]string{"http://localhost:3000"})
	assert.True(t, check(req("http://localhost:3000")))
	assert.True(t, check(req("")))
	assert.False(t, check(req("http://evil.example")))

	assert.True(t, originChecker([]string{"*"})(req("http://evil.example")))
	assert.True(t, originChecker(nil)(req("http://evil.example")))
}
