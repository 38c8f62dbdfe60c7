package models

// BusSummary is the explicit bus view returned by search.
type BusSummary struct {
	ID        int64        `json:"id"`
	BusNumber string       `json:"busNumber"`
	BusType   string       `json:"busType"`
	Capacity  int          `json:"capacity"`
	Fare      float64      `json:"fare"`
	Features  []string     `json:"features"`
	Route     RouteSummary `json:"route"`
}

func NewBusSummary(b Bus) BusSummary {
	features := b.Features
	if features == nil {
		features = []string{}
	}
	return BusSummary{
		ID:        b.ID,
		BusNumber: b.BusNumber,
		BusType:   b.BusType,
		Capacity:  b.Capacity,
		Fare:      b.Fare,
		Features:  features,
		Route:     b.Route.Summary(),
	}
}

// JourneyInfo is derived per search and never persisted.
type JourneyInfo struct {
	SourceStop           StopRef `json:"sourceStop"`
	DestinationStop      StopRef `json:"destinationStop"`
	DepartureTime        string  `json:"departureTime"`
	ArrivalTime          string  `json:"arrivalTime"`
	Duration             int     `json:"duration"`
	Fare                 float64 `json:"fare"`
	Date                 string  `json:"date"`
	OperationalStartTime string  `json:"operationalStartTime"`
	OperationalEndTime   string  `json:"operationalEndTime"`
}

// BusWithJourneyInfo pairs a bus with its computed journey.
type BusWithJourneyInfo struct {
	Bus         BusSummary  `json:"bus"`
	JourneyInfo JourneyInfo `json:"journeyInfo"`
}
