package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/httputil"
	"github.com/wonny/equimeter/pkg/logger"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(httputil.New(logger.Nop()).DisableRetry(), Config{APIKey: apiKey, BaseURL: server.URL}, logger.Nop())
	client.now = func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) }
	return client
}

func TestArticles(t *testing.T) {
	client := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, `"TCS"`, q.Get("q"))
		assert.Equal(t, "2024-06-01", q.Get("from"))
		assert.Equal(t, "publishedAt", q.Get("sortBy"))
		assert.Equal(t, "5", q.Get("pageSize"))
		assert.Equal(t, "key", q.Get("apiKey"))

		_, _ = w.Write([]byte(`{
			"status": "ok",
			"totalResults": 3,
			"articles": [
				{"source": {"name": "Mint"}, "title": "TCS wins deal", "description": "Large contract", "url": "https://a", "publishedAt": "2024-06-30T10:00:00Z"},
				{"source": {"name": "X"}, "title": "[Removed]", "url": "https://removed", "publishedAt": "2024-06-29T10:00:00Z"},
				{"source": {"name": "ET"}, "title": "TCS margins", "url": "https://b", "publishedAt": "2024-06-28T10:00:00Z"}
			]
		}`))
	})

	articles, err := client.Articles(context.Background(), "TCS")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "TCS wins deal", articles[0].Title)
	assert.Equal(t, "Mint", articles[0].Source)
	assert.Equal(t, "TCS wins deal\nLarge contract", articles[0].Text())
	assert.Equal(t, "TCS margins", articles[1].Text())
}

func TestArticles_ErrorStatus(t *testing.T) {
	client := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"too many requests"}`))
	})

	_, err := client.Articles(context.Background(), "TCS")
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
}

func TestArticles_MissingKey(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without API key")
	})

	_, err := client.Articles(context.Background(), "TCS")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
}
