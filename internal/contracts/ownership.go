package contracts

// Ownership categories
const (
	HolderFIIs       = "FIIs"
	HolderDIIs       = "DIIs"
	HolderPromoters  = "Promoters"
	HolderGovernment = "Government"
)

// ScoredHolders are the categories credited by the shareholding sub-score
var ScoredHolders = []string{HolderFIIs, HolderDIIs, HolderPromoters}

// AllHolders lists every tracked ownership category
var AllHolders = []string{HolderFIIs, HolderDIIs, HolderPromoters, HolderGovernment}

// OwnershipSnapshot holds percentage holdings per period, oldest→newest.
// A category missing from the source page stays an empty slice.
// ⭐ SSOT: 주주 구성 시계열
type OwnershipSnapshot struct {
	Periods    []string  `json:"periods"`
	FIIs       []float64 `json:"FIIs"`
	DIIs       []float64 `json:"DIIs"`
	Promoters  []float64 `json:"Promoters"`
	Government []float64 `json:"Government"`
}

// Series returns the holding series for a category
func (o *OwnershipSnapshot) Series(category string) []float64 {
	if o == nil {
		return nil
	}
	switch category {
	case HolderFIIs:
		return o.FIIs
	case HolderDIIs:
		return o.DIIs
	case HolderPromoters:
		return o.Promoters
	case HolderGovernment:
		return o.Government
	}
	return nil
}

// Set assigns the holding series for a category; unknown categories are ignored
func (o *OwnershipSnapshot) Set(category string, values []float64) {
	switch category {
	case HolderFIIs:
		o.FIIs = values
	case HolderDIIs:
		o.DIIs = values
	case HolderPromoters:
		o.Promoters = values
	case HolderGovernment:
		o.Government = values
	}
}
