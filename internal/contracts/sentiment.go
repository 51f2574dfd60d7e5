package contracts

import (
	"strings"
	"time"
)

// SentimentLabel is the classifier verdict for one article
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// ParseSentimentLabel normalizes free-form classifier output
func ParseSentimentLabel(s string) (SentimentLabel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return SentimentPositive, true
	case "negative":
		return SentimentNegative, true
	case "neutral":
		return SentimentNeutral, true
	}
	return "", false
}

// Article is a news item before classification
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Text returns the content sent to the classifier
func (a Article) Text() string {
	if a.Description == "" {
		return a.Title
	}
	return a.Title + "\n" + a.Description
}

// SentimentRecord is one classified news article
// ⭐ SSOT: 뉴스 감성 분류 결과
type SentimentRecord struct {
	Title       string         `json:"title"`
	Label       SentimentLabel `json:"label"`
	URL         string         `json:"url"`
	PublishedAt time.Time      `json:"publishedAt"`
}
