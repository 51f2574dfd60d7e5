package signals

import (
	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
)

// SentimentAggregator tallies classified news into a three-way distribution
type SentimentAggregator struct {
	logger *logger.Logger
}

// NewSentimentAggregator creates a new sentiment aggregator
func NewSentimentAggregator(log *logger.Logger) *SentimentAggregator {
	return &SentimentAggregator{
		logger: log,
	}
}

// Tally counts labels; anything outside the three known labels is ignored
func (a *SentimentAggregator) Tally(records []contracts.SentimentRecord) contracts.SentimentDistribution {
	var dist contracts.SentimentDistribution
	for _, r := range records {
		switch r.Label {
		case contracts.SentimentPositive:
			dist.Positive++
		case contracts.SentimentNegative:
			dist.Negative++
		case contracts.SentimentNeutral:
			dist.Neutral++
		default:
			dist.Ignored++
		}
	}

	a.logger.WithFields(map[string]interface{}{
		"positive": dist.Positive,
		"negative": dist.Negative,
		"neutral":  dist.Neutral,
		"ignored":  dist.Ignored,
	}).Debug("Tallied sentiment")

	return dist
}
