package models

// Route is an ordered stop sequence; a stop's index is its position.
type Route struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Stops                []Stop  `json:"stops"`
	OperationalStartTime string  `json:"operationalStartTime"`
	OperationalEndTime   string  `json:"operationalEndTime"`
	DistanceKm           float64 `json:"distanceKm,omitempty"`
	EstimatedDuration    int     `json:"estimatedDuration,omitempty"`
	AverageStopTime      int     `json:"averageStopTime,omitempty"`
	IsActive             bool    `json:"isActive"`
}

// DefaultAverageStopTime is used when a route has no average stop time.
const DefaultAverageStopTime = 10

// StopMinutes returns the per-stop travel time with the default applied.
func (r Route) StopMinutes() int {
	if r.AverageStopTime <= 0 {
		return DefaultAverageStopTime
	}
	return r.AverageStopTime
}

// RouteSummary is the route view nested in bus responses.
type RouteSummary struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	OperationalStartTime string `json:"operationalStartTime"`
	OperationalEndTime   string `json:"operationalEndTime"`
}

func (r Route) Summary() RouteSummary {
	return RouteSummary{
		ID:                   r.ID,
		Name:                 r.Name,
		OperationalStartTime: r.OperationalStartTime,
		OperationalEndTime:   r.OperationalEndTime,
	}
}

// RouteInput carries create/update payloads.
type RouteInput struct {
	Name                 string   `json:"name"`
	StopIDs              []int64  `json:"stops"`
	OperationalStartTime string   `json:"operationalStartTime"`
	OperationalEndTime   string   `json:"operationalEndTime"`
	DistanceKm           *float64 `json:"distanceKm"`
	EstimatedDuration    *int     `json:"estimatedDuration"`
	AverageStopTime      *int     `json:"averageStopTime"`
	IsActive             *bool    `json:"isActive"`
}
