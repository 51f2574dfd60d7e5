package contracts

import (
	"sort"
	"time"
)

// PricePoint is a single daily observation of a listed stock
// ⭐ SSOT: 가격 시계열의 단일 포인트
type PricePoint struct {
	Date   time.Time `json:"timestamp"`
	Close  float64   `json:"price"`
	Volume int64     `json:"volume"`
}

// Quote is a live quote snapshot
type Quote struct {
	Symbol   string    `json:"symbol"`
	Name     string    `json:"name,omitempty"`
	Price    float64   `json:"price"`
	Currency string    `json:"currency"`
	AsOf     time.Time `json:"asOf"`
}

// NormalizePrices returns an ascending series with non-positive closes dropped
// and duplicate dates collapsed (last observation wins).
func NormalizePrices(points []PricePoint) []PricePoint {
	byDay := make(map[string]int, len(points))
	out := make([]PricePoint, 0, len(points))

	for _, p := range points {
		if p.Close <= 0 || p.Volume < 0 {
			continue
		}
		key := p.Date.UTC().Format("2006-01-02")
		if idx, ok := byDay[key]; ok {
			out[idx] = p
			continue
		}
		byDay[key] = len(out)
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Closes extracts close prices in series order
func Closes(points []PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
