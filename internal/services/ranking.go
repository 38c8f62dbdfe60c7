package services

import (
	"math"
	"sort"
	"strings"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
	"buspass/internal/utils"
)

const (
	defaultPage  = 1
	defaultLimit = 5
)

// ApplyPriceFilter keeps journeys whose fare is at most maxPrice.
// Only the leading number counts ("25abc" is 25). A blank, non-numeric or
// non-finite maxPrice leaves items unchanged.
func ApplyPriceFilter(items []models.BusWithJourneyInfo, maxPrice string) []models.BusWithJourneyInfo {
	limit, ok := utils.LeadingFloat(maxPrice)
	if !ok {
		return items
	}
	out := make([]models.BusWithJourneyInfo, 0, len(items))
	for _, it := range items {
		if it.JourneyInfo.Fare <= limit {
			out = append(out, it)
		}
	}
	return out
}

// SortJourneys orders items in place by fare, duration or departure and returns them.
// Only an empty or "asc" order is ascending. Unknown keys keep the input order.
// Departures without a parseable time sort last regardless of direction.
func SortJourneys(items []models.BusWithJourneyInfo, sortBy, sortOrder string) []models.BusWithJourneyInfo {
	var key func(models.BusWithJourneyInfo) float64
	switch sortBy {
	case "fare":
		key = func(it models.BusWithJourneyInfo) float64 { return it.JourneyInfo.Fare }
	case "duration":
		key = func(it models.BusWithJourneyInfo) float64 { return float64(it.JourneyInfo.Duration) }
	case "departure":
		key = func(it models.BusWithJourneyInfo) float64 { return utils.ClockMinutes(it.JourneyInfo.DepartureTime) }
	default:
		return items
	}
	order := strings.TrimSpace(sortOrder)
	desc := order != "" && !strings.EqualFold(order, "asc")

	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		aInf, bInf := math.IsInf(a, 1), math.IsInf(b, 1)
		switch {
		case aInf && bInf:
			return false
		case aInf:
			return false
		case bInf:
			return true
		}
		if desc {
			return a > b
		}
		return a < b
	})
	return items
}

// Paginate slices items for the requested page. Non-positive page or limit fall
// back to 1 and 5. Pages past the end yield an empty slice.
func Paginate[T any](items []T, page, limit int) ([]T, domain.PageInfo) {
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	info := domain.NewPageInfo(page, limit, len(items))

	if page > info.TotalPages {
		return []T{}, info
	}
	start := (page - 1) * limit
	end := start + min(limit, len(items)-start)
	return items[start:end], info
}
