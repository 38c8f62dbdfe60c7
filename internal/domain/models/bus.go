package models

// BusTypes lists the accepted bus categories.
var BusTypes = []string{"ordinary", "express", "ac", "sleeper", "semi-sleeper"}

func IsValidBusType(v string) bool {
	for _, t := range BusTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Bus is a vehicle assigned to a single route. Fare is charged per stop segment.
type Bus struct {
	ID        int64    `json:"id"`
	BusNumber string   `json:"busNumber"`
	BusType   string   `json:"busType"`
	Capacity  int      `json:"capacity"`
	RouteID   int64    `json:"routeId"`
	Route     Route    `json:"route"`
	Fare      float64  `json:"fare"`
	Features  []string `json:"features"`
	IsActive  bool     `json:"isActive"`
}

// BusInput carries create/update payloads.
type BusInput struct {
	BusNumber string   `json:"busNumber"`
	BusType   string   `json:"busType"`
	Capacity  *int     `json:"capacity"`
	RouteID   *int64   `json:"routeId"`
	Fare      *float64 `json:"fare"`
	Features  []string `json:"features"`
	IsActive  *bool    `json:"isActive"`
}

// BusSchedule is one row of the schedule listing.
type BusSchedule struct {
	Bus            BusSummary `json:"bus"`
	DepartureTime  string     `json:"departureTime"`
	ArrivalTime    string     `json:"arrivalTime"`
	Date           string     `json:"date"`
	AvailableSeats int        `json:"availableSeats"`
}
