package contracts

import (
	"context"
	"time"
)

// Collaborator interfaces consumed by the score builder and the API layer.
// Implementations live under internal/external and internal/symbols.

// PriceHistorySource returns daily price history
// ⭐ SSOT: 가격 이력 제공자 인터페이스
type PriceHistorySource interface {
	History(ctx context.Context, symbol string, start, end time.Time) ([]PricePoint, error)
}

// QuoteSource returns live quotes
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// TrailingPESource returns the current trailing P/E
type TrailingPESource interface {
	TrailingPE(ctx context.Context, symbol string) (float64, error)
}

// StatementSource returns annual statement rows; ErrNotFound when the company is unknown
// ⭐ SSOT: 재무제표 제공자 인터페이스
type StatementSource interface {
	Statements(ctx context.Context, company string) (*FinancialStatements, error)
}

// OwnershipSource returns shareholding composition by period
type OwnershipSource interface {
	Ownership(ctx context.Context, company string) (*OwnershipSnapshot, error)
}

// NewsSource returns recent articles about a company
type NewsSource interface {
	Articles(ctx context.Context, query string) ([]Article, error)
}

// SentimentClassifier labels one piece of text
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (SentimentLabel, error)
}

// SentimentSource returns classified news for a company
type SentimentSource interface {
	Sentiment(ctx context.Context, symbol string) ([]SentimentRecord, error)
}

// Company is one row of the listed-company lookup table
type Company struct {
	Name   string `json:"name_of_company"`
	Symbol string `json:"symbol"`
}

// SymbolResolver maps company names to ticker symbols
type SymbolResolver interface {
	Search(ctx context.Context, query string, limit int) ([]Company, error)
	Resolve(ctx context.Context, companyName string) (string, error)
}
