package yahoo

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/equimeter/internal/contracts"
)

// DefaultSuffix is the NSE exchange suffix
const DefaultSuffix = ".NS"

// Symbol appends the exchange suffix to bare tickers ("TCS" -> "TCS.NS").
// Tickers already carrying an exchange ("TCS.BO", "^NSEI") are kept.
func Symbol(symbol, suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || strings.Contains(s, ".") || strings.HasPrefix(s, "^") {
		return s
	}
	return s + suffix
}

// lookbackDays maps the history intervals accepted by the API to calendar days
var lookbackDays = map[string]int{
	"1d":  1,
	"1wk": 7,
	"1mo": 30,
	"1y":  365,
	"5y":  5 * 365,
	"max": 20 * 365,
}

// DefaultInterval is used when no interval is requested
const DefaultInterval = "1d"

// Intervals lists the accepted interval names
func Intervals() []string {
	return []string{"1d", "1wk", "1mo", "1y", "5y", "max"}
}

// Window resolves an interval name to a [start, end] window ending at now
func Window(interval string, now time.Time) (time.Time, time.Time, error) {
	if interval == "" {
		interval = DefaultInterval
	}
	days, ok := lookbackDays[interval]
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid interval %q (valid: %s): %w",
			interval, strings.Join(Intervals(), ", "), contracts.ErrNotCalculable)
	}
	return now.AddDate(0, 0, -days), now, nil
}
