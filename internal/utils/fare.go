package utils

import "math"

var passBasePrice = map[int]float64{
	1:  500,
	3:  1200,
	6:  2200,
	12: 4000,
}

var passDiscount = map[string]float64{
	"student":  0.5,
	"senior":   0.6,
	"disabled": 0.3,
	"regular":  1.0,
}

// ComputePassFare returns the rounded pass price for a validity period and category.
// Unknown categories pay the full price; unknown periods return ok=false.
func ComputePassFare(validityMonths int, category string) (float64, bool) {
	base, ok := passBasePrice[validityMonths]
	if !ok {
		return 0, false
	}
	discount, ok := passDiscount[category]
	if !ok {
		discount = 1.0
	}
	return math.Round(base * discount), true
}

// SegmentFare is the per-seat price of riding segments stops at farePerStop.
func SegmentFare(farePerStop float64, segments int) float64 {
	return farePerStop * float64(segments)
}
