package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/internal/external/yahoo"
	"github.com/wonny/equimeter/internal/scoring"
	"github.com/wonny/equimeter/pkg/logger"
)

// serve routes a single request through a mux so path variables resolve
func serve(t *testing.T, pattern string, h http.HandlerFunc, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc(pattern, h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]interface{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(contracts.ErrNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(contracts.ErrInsufficientData))
	assert.Equal(t, http.StatusBadGateway, statusFor(contracts.ErrUpstreamUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestStockHandler_GetPrice(t *testing.T) {
	quote := &contracts.Quote{Symbol: "TCS.NS", Price: 3450.5, Currency: "INR"}
	h := NewStockHandler(fakeQuotes{quote: quote}, &fakeHistory{}, nil, logger.Nop())

	rec, body := serve(t, "/stock-price", h.GetPrice, "/stock-price?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TCS.NS", body["symbol"])
	assert.Equal(t, 3450.5, body["price"])
	assert.Equal(t, "INR", body["currency"])

	rec, body = serve(t, "/stock-price", h.GetPrice, "/stock-price")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Symbol is required", body["error"])

	h = NewStockHandler(fakeQuotes{err: contracts.ErrNotFound}, &fakeHistory{}, nil, logger.Nop())
	rec, body = serve(t, "/stock-price", h.GetPrice, "/stock-price?symbol=NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, contracts.ReasonNotFound, body["reason"])
}

func TestStockHandler_GetPriceHistory(t *testing.T) {
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{points: []contracts.PricePoint{{Date: now, Close: 101, Volume: 5}}}
	h := NewStockHandler(fakeQuotes{}, history, nil, logger.Nop())
	h.now = func() time.Time { return now }

	rec, _ := serve(t, "/stock-price-history", h.GetPriceHistory, "/stock-price-history?symbol=TCS&interval=1mo")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now.AddDate(0, 0, -30), history.start)

	var points []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, 101.0, points[0]["price"])
	assert.Contains(t, points[0], "timestamp")
	assert.Contains(t, points[0], "volume")

	rec, body := serve(t, "/stock-price-history", h.GetPriceHistory, "/stock-price-history?symbol=TCS&interval=2d")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "1wk")
}

func TestStockHandler_GetHistoricalPE(t *testing.T) {
	h := NewStockHandler(fakeQuotes{}, &fakeHistory{}, nil, logger.Nop())
	rec, _ := serve(t, "/historical-pe-scrape", h.GetHistoricalPE, "/historical-pe-scrape?symbol=TCS")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	pe := fakePEHistory{history: &yahoo.PEHistory{Symbol: "TCS.NS", TrailingPEHistory: []float64{29.8}, Dates: []string{"Current"}}}
	h = NewStockHandler(fakeQuotes{}, &fakeHistory{}, pe, logger.Nop())
	rec, body := serve(t, "/historical-pe-scrape", h.GetHistoricalPE, "/historical-pe-scrape?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{29.8}, body["trailingPEHistory"])
}

func TestStockListHandler(t *testing.T) {
	resolver := fakeResolver{companies: []contracts.Company{
		{Name: "Tata Consultancy Services Limited", Symbol: "TCS"},
		{Name: "Tata Motors Limited", Symbol: "TATAMOTORS"},
	}}
	h := NewStockListHandler(resolver, logger.Nop())

	rec, _ := serve(t, "/search", h.Search, "/search?query=tata")
	require.Equal(t, http.StatusOK, rec.Code)
	var companies []contracts.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &companies))
	assert.Len(t, companies, 2)
	assert.Contains(t, rec.Body.String(), `"name_of_company"`)

	rec, body := serve(t, "/get-stock-symbol", h.GetSymbol, "/get-stock-symbol?stockName=Tata+Motors+Limited")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TATAMOTORS", body["symbol"])

	rec, body = serve(t, "/get-stock-symbol", h.GetSymbol, "/get-stock-symbol?stockName=Unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Stock not found", body["error"])

	rec, _ = serve(t, "/get-stock-symbol", h.GetSymbol, "/get-stock-symbol")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, "/search", NewStockListHandler(nil, logger.Nop()).Search, "/search?query=tata")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDataHandler_Statements(t *testing.T) {
	h := NewDataHandler(fakeStatements{fs: sampleStatements()}, fakeOwnership{}, fakeRatios{}, logger.Nop())

	rec, body := serve(t, "/scrape/{symbol}", h.GetSalesProfit, "/scrape/TCS.NS")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TCS", body["stockName"])
	assert.Len(t, body["sales"], 6)
	assert.Len(t, body["years"], 6)

	rec, body = serve(t, "/borrow-invest", h.GetBorrowInvest, "/borrow-invest?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["borrowings"], 6)

	rec, body = serve(t, "/eps-dividend", h.GetEPSDividend, "/eps-dividend?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{10.0, 12.0}, body["EPS"])
	assert.Equal(t, "Data not available", body["DividendPayout"])

	rec, body = serve(t, "/roce", h.GetROCE, "/roce?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{18.0, 21.0}, body["ROCE"])

	rec, _ = serve(t, "/roe", h.GetROE, "/roe?symbol=TCS")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDataHandler_UpstreamFailure(t *testing.T) {
	h := NewDataHandler(fakeStatements{err: contracts.ErrUpstreamUnavailable}, fakeOwnership{err: contracts.ErrNotFound}, fakeRatios{}, logger.Nop())

	rec, _ := serve(t, "/scrape/{symbol}", h.GetSalesProfit, "/scrape/TCS")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec, body := serve(t, "/shareholding", h.GetShareholding, "/shareholding?symbol=TCS")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Shareholding data not available", body["error"])
}

func TestDataHandler_Shareholding(t *testing.T) {
	snap := &contracts.OwnershipSnapshot{Periods: []string{"Mar 2023", "Mar 2024"}, FIIs: []float64{18, 19}}
	h := NewDataHandler(fakeStatements{}, fakeOwnership{snap: snap}, fakeRatios{}, logger.Nop())

	rec, body := serve(t, "/shareholding", h.GetShareholding, "/shareholding?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{18.0, 19.0}, body["FIIs"])
	assert.Equal(t, []interface{}{}, body["Government"])
}

func TestDataHandler_KeyRatios(t *testing.T) {
	ratios := &contracts.KeyRatios{
		MarketCap:    f64(1234567),
		CurrentPrice: f64(3450),
		High:         f64(4592),
		Low:          f64(3311),
		StockPE:      f64(27.4),
		BookValue:    f64(230),
	}
	h := NewDataHandler(fakeStatements{}, fakeOwnership{}, fakeRatios{ratios: ratios}, logger.Nop())

	_, body := serve(t, "/market-cap", h.GetMarketCap, "/market-cap?symbol=TCS")
	assert.Equal(t, 1234567.0, body["marketCap"])
	assert.Equal(t, "TCS", body["symbol"])

	_, body = serve(t, "/pe-ratio", h.GetPERatio, "/pe-ratio?symbol=TCS")
	assert.Equal(t, 27.4, body["peRatio"])

	_, body = serve(t, "/high-low", h.GetHighLow, "/high-low?symbol=TCS")
	assert.Equal(t, "4592 / 3311", body["high/low"])

	_, body = serve(t, "/pbv", h.GetPriceToBook, "/pbv?symbol=TCS")
	assert.Equal(t, "15.00", body["pbv"])

	rec, _ := serve(t, "/face-value", h.GetFaceValue, "/face-value?symbol=TCS")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewsHandler(t *testing.T) {
	h := NewNewsHandler(fakeNews{articles: []contracts.Article{{Title: "TCS wins deal", URL: "https://a"}}}, logger.Nop())
	rec, body := serve(t, "/news", h.GetNews, "/news?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["articles"], 1)

	h = NewNewsHandler(fakeNews{err: contracts.ErrUpstreamUnavailable}, logger.Nop())
	rec, _ = serve(t, "/news", h.GetNews, "/news?symbol=TCS")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func newIndicatorHandler(prices int) *IndicatorHandler {
	sources := scoring.Sources{
		Prices:     &fakeHistory{points: risingPrices(prices)},
		PE:         []contracts.TrailingPESource{fakePE{pe: 25}},
		Statements: fakeStatements{fs: sampleStatements()},
		Ownership:  fakeOwnership{snap: &contracts.OwnershipSnapshot{FIIs: []float64{10, 11}, DIIs: []float64{5, 5}, Promoters: []float64{50, 49}}},
		Sentiment: fakeSentiment{records: []contracts.SentimentRecord{
			{Label: contracts.SentimentPositive},
			{Label: contracts.SentimentPositive},
			{Label: contracts.SentimentNeutral},
		}},
	}
	builder := scoring.NewBuilder(sources, scoring.NewEngine(nil, logger.Nop()), logger.Nop())
	return NewIndicatorHandler(builder, logger.Nop())
}

func TestIndicatorHandler_Technical(t *testing.T) {
	h := newIndicatorHandler(260)

	rec, body := serve(t, "/rsi-data", h.GetRSI, "/rsi-data?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	latest := body["latestRSI"].(map[string]interface{})
	assert.Equal(t, 100.0, latest["rsi"])

	rec, body = serve(t, "/std-deviation-zones", h.GetStdDeviationZone, "/std-deviation-zones?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(contracts.ZoneF), body["zone"])

	rec, body = serve(t, "/golden-crossover", h.GetGoldenCrossover, "/golden-crossover?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["hadDeathCross"])

	short := newIndicatorHandler(120)
	rec, body = serve(t, "/rsi-data", short.GetRSI, "/rsi-data?symbol=TCS")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, contracts.ReasonInsufficientData, body["reason"])
}

func TestIndicatorHandler_Fundamental(t *testing.T) {
	h := newIndicatorHandler(260)

	_, body := serve(t, "/peg-ratio", h.GetPEG, "/peg-ratio?symbol=TCS")
	assert.InDelta(t, 1.25, body["pegRatio"].(float64), 1e-9)

	_, body = serve(t, "/sales-growth/{symbol}", h.GetSalesGrowth, "/sales-growth/TCS")
	flags := body["growthFlags"].(map[string]interface{})
	assert.Equal(t, true, flags["5yr"])

	_, body = serve(t, "/borrow-sales", h.GetBorrowSales, "/borrow-sales?symbol=TCS")
	cmp := body["growthComparison"].(map[string]interface{})
	assert.Equal(t, true, cmp["borrowingRateBeatsSales5Yrs"])
}

func TestIndicatorHandler_UnknownCompany(t *testing.T) {
	missing := fmt.Errorf("XYZ: %w", contracts.ErrNotFound)
	sources := scoring.Sources{
		Prices:     &fakeHistory{err: missing},
		PE:         []contracts.TrailingPESource{fakePE{pe: 25}},
		Statements: fakeStatements{err: missing},
		Ownership:  fakeOwnership{err: missing},
	}
	h := NewIndicatorHandler(scoring.NewBuilder(sources, scoring.NewEngine(nil, logger.Nop()), logger.Nop()), logger.Nop())

	cases := []struct {
		pattern string
		handler http.HandlerFunc
		target  string
	}{
		{"/sales-growth/{symbol}", h.GetSalesGrowth, "/sales-growth/XYZ"},
		{"/profit-growth/{symbol}", h.GetProfitGrowth, "/profit-growth/XYZ"},
		{"/borrow-sales", h.GetBorrowSales, "/borrow-sales?symbol=XYZ"},
		{"/peg-ratio", h.GetPEG, "/peg-ratio?symbol=XYZ"},
		{"/shareholding-trend", h.GetShareholdingTrend, "/shareholding-trend?symbol=XYZ"},
		{"/rsi-data", h.GetRSI, "/rsi-data?symbol=XYZ"},
	}
	for _, tc := range cases {
		t.Run(tc.pattern, func(t *testing.T) {
			rec, body := serve(t, tc.pattern, tc.handler, tc.target)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, contracts.ReasonNotFound, body["reason"])
		})
	}

	// 종합 리포트는 실패한 입력만 비워 두고 200
	rec, _ := serve(t, "/equimeter", h.GetEquimeter, "/equimeter?symbol=XYZ")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIndicatorHandler_ShareholdingAndSentiment(t *testing.T) {
	h := newIndicatorHandler(260)

	_, body := serve(t, "/shareholding-trend", h.GetShareholdingTrend, "/shareholding-trend?symbol=TCS")
	fiis := body["FIIs"].(map[string]interface{})
	assert.Equal(t, true, fiis["increased"])
	gov := body["Government"].(map[string]interface{})
	assert.Equal(t, false, gov["available"])

	_, body = serve(t, "/sentiment", h.GetSentiment, "/sentiment?symbol=TCS")
	assert.Equal(t, []interface{}{"Positive", "Positive", "Neutral"}, body["analysis"])
}

func TestIndicatorHandler_Equimeter(t *testing.T) {
	h := newIndicatorHandler(260)

	rec, body := serve(t, "/equimeter", h.GetEquimeter, "/equimeter?symbol=TCS")
	require.Equal(t, http.StatusOK, rec.Code)
	scores := body["scores"].(map[string]interface{})
	assert.Equal(t, 20.0, scores["sentiment"])
	assert.Equal(t, 10.0, scores["valuation"])
	assert.Contains(t, body, "components")
}
