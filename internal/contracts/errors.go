package contracts

import "errors"

// Error taxonomy shared by calculators, collaborators and the score engine
// ⭐ SSOT: 오류 분류는 여기서만 정의
var (
	// ErrInsufficientData: fewer observations than the computation's look-back window
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotCalculable: defined but degenerate arithmetic (zero growth, zero base)
	ErrNotCalculable = errors.New("not calculable")

	// ErrUpstreamUnavailable: an external collaborator failed or returned nothing usable
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotFound: a collaborator has no record for the requested key
	ErrNotFound = errors.New("not found")
)

// Reason codes rendered in diagnostics
const (
	ReasonInsufficientData    = "insufficient_data"
	ReasonNotCalculable       = "not_calculable"
	ReasonUpstreamUnavailable = "upstream_unavailable"
	ReasonNotFound            = "not_found"
	ReasonError               = "error"
)

// Reason maps an error to its diagnostic code ("" for nil)
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return ReasonInsufficientData
	case errors.Is(err, ErrNotCalculable):
		return ReasonNotCalculable
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrUpstreamUnavailable):
		return ReasonUpstreamUnavailable
	default:
		return ReasonError
	}
}
