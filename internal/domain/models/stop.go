package models

// Location is a lat/lng pair; both are set or neither.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Stop is a named boarding point.
type Stop struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	Location *Location `json:"location,omitempty"`
	IsActive bool      `json:"isActive"`
}

// StopRef is the id/name snapshot embedded in journey results.
type StopRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StopInput carries create/update payloads.
type StopInput struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	IsActive *bool    `json:"isActive"`
}
