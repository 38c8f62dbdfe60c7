package services

import (
	"strings"

	"buspass/internal/domain/models"
	"buspass/internal/utils"
)

const notAvailable = "N/A"

// stopIndex returns the first position of name among stops, compared case-insensitively, or -1.
func stopIndex(stops []models.Stop, name string) int {
	want := strings.ToLower(name)
	for i, s := range stops {
		if strings.ToLower(s.Name) == want {
			return i
		}
	}
	return -1
}

// MatchRoutes keeps routes that visit source strictly before destination.
// Input order is preserved.
func MatchRoutes(routes []models.Route, source, destination string) []models.Route {
	out := []models.Route{}
	for _, rt := range routes {
		src := stopIndex(rt.Stops, source)
		dst := stopIndex(rt.Stops, destination)
		if src != -1 && dst != -1 && src < dst {
			out = append(out, rt)
		}
	}
	return out
}

// ParseBusTypes turns "ac, express," into ["ac","express"]. Empty means no filter.
func ParseBusTypes(raw string) []string {
	return utils.SplitCSV(raw)
}

// CalculateJourneys prices each bus for the source→destination segment.
// Buses whose route does not contain both stops in order are dropped.
func CalculateJourneys(buses []models.Bus, source, destination, date string) []models.BusWithJourneyInfo {
	out := make([]models.BusWithJourneyInfo, 0, len(buses))
	for _, b := range buses {
		stops := b.Route.Stops
		src := stopIndex(stops, source)
		dst := stopIndex(stops, destination)
		if src == -1 || dst == -1 || src >= dst {
			continue
		}
		segments := dst - src

		departure := notAvailable
		if src == 0 && b.Route.OperationalStartTime != "" {
			departure = b.Route.OperationalStartTime
		}

		out = append(out, models.BusWithJourneyInfo{
			Bus: models.NewBusSummary(b),
			JourneyInfo: models.JourneyInfo{
				SourceStop:           models.StopRef{ID: stops[src].ID, Name: stops[src].Name},
				DestinationStop:      models.StopRef{ID: stops[dst].ID, Name: stops[dst].Name},
				DepartureTime:        departure,
				ArrivalTime:          notAvailable,
				Duration:             segments * b.Route.StopMinutes(),
				Fare:                 utils.SegmentFare(b.Fare, segments),
				Date:                 date,
				OperationalStartTime: orNA(b.Route.OperationalStartTime),
				OperationalEndTime:   orNA(b.Route.OperationalEndTime),
			},
		})
	}
	return out
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return notAvailable
	}
	return v
}
