package signals

import (
	"context"
	"fmt"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
)

// OwnershipClassifier labels the latest change of each shareholder category
// ⭐ SSOT: 주주 구성 변화 분류
type OwnershipClassifier struct {
	logger *logger.Logger
}

// NewOwnershipClassifier creates a new ownership classifier
func NewOwnershipClassifier(log *logger.Logger) *OwnershipClassifier {
	return &OwnershipClassifier{
		logger: log,
	}
}

// Calculate classifies every tracked category of the snapshot
func (c *OwnershipClassifier) Calculate(ctx context.Context, symbol string, snap *contracts.OwnershipSnapshot) contracts.OwnershipTrends {
	trends := make(contracts.OwnershipTrends, len(contracts.AllHolders))
	fields := map[string]interface{}{"symbol": symbol}

	for _, category := range contracts.AllHolders {
		trend, err := c.Classify(category, snap.Series(category))
		if err != nil {
			trends[category] = contracts.Fail[contracts.OwnershipTrend](err)
			fields[category] = contracts.Reason(err)
			continue
		}
		trends[category] = contracts.Ok(trend)
		fields[category] = trend.Trend
	}

	c.logger.WithFields(fields).Debug("Classified ownership trends")
	return trends
}

// Classify compares the latest two values exactly (no tolerance)
func (c *OwnershipClassifier) Classify(category string, series []float64) (contracts.OwnershipTrend, error) {
	n := len(series)
	if n < 2 {
		return contracts.OwnershipTrend{}, fmt.Errorf("%s: need 2 periods, got %d: %w", category, n, contracts.ErrInsufficientData)
	}

	out := contracts.OwnershipTrend{
		Category: category,
		Previous: series[n-2],
		Latest:   series[n-1],
	}

	switch {
	case out.Latest > out.Previous:
		out.Trend, out.Increased = contracts.TrendIncreased, true
	case out.Latest < out.Previous:
		out.Trend, out.Decreased = contracts.TrendDecreased, true
	default:
		out.Trend, out.Same = contracts.TrendSame, true
	}
	return out, nil
}
