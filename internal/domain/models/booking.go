package models

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking is a seat reservation for one segment of a route.
type Booking struct {
	ID                int64     `json:"id"`
	BookingCode       string    `json:"bookingCode"`
	UserID            int64     `json:"userId"`
	BusID             int64     `json:"busId"`
	RouteID           int64     `json:"routeId"`
	SourceStopID      int64     `json:"sourceStopId"`
	DestinationStopID int64     `json:"destinationStopId"`
	SeatCount         int       `json:"numberOfSeats"`
	TotalAmount       float64   `json:"totalAmount"`
	JourneyDate       time.Time `json:"journeyDate"`
	Status            string    `json:"status"`
	QRData            string    `json:"qrData"`
	CreatedAt         time.Time `json:"createdAt"`
}

// BookingDetail expands references for ticket rendering and detail views.
type BookingDetail struct {
	Booking
	BusNumber       string `json:"busNumber"`
	RouteName       string `json:"routeName"`
	SourceName      string `json:"sourceName"`
	DestinationName string `json:"destinationName"`
	PassengerName   string `json:"passengerName"`
}

// BookingInput carries the create payload.
type BookingInput struct {
	BusID             int64  `json:"busId"`
	SourceStopID      int64  `json:"sourceStopId"`
	DestinationStopID int64  `json:"destinationStopId"`
	NumberOfSeats     int    `json:"numberOfSeats"`
	JourneyDate       string `json:"journeyDate"`
}
