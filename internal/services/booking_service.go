package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
	"buspass/internal/events"
	"buspass/internal/logger"
	"buspass/internal/repositories"
	"buspass/internal/utils"
)

const defaultAdminPageSize = 10

type BookingService struct {
	Bookings  repositories.BookingRepository
	Buses     repositories.BusRepository
	Users     repositories.UserRepository
	Events    events.Publisher
	Now       func() time.Time
	RequestID string
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create books seats on one bus between two stops of its route. The total is
// bus fare × segments × seats and the booking is confirmed immediately.
func (s BookingService) Create(ctx context.Context, rc domain.RequestContext, in models.BookingInput) (models.Booking, error) {
	if in.BusID <= 0 || in.SourceStopID <= 0 || in.DestinationStopID <= 0 || strings.TrimSpace(in.JourneyDate) == "" {
		return models.Booking{}, domain.ValidationError{Msg: "Please provide all required booking details (busId, sourceStopId, destinationStopId, numberOfSeats, journeyDate)"}
	}
	if in.NumberOfSeats <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "numberOfSeats", Msg: "Number of seats must be a positive integer."}
	}
	journeyDate, err := utils.ParseDate(in.JourneyDate)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "journeyDate", Msg: "journeyDate must be YYYY-MM-DD"}
	}

	bus, err := s.Buses.GetByID(ctx, in.BusID)
	if err != nil {
		return models.Booking{}, err
	}
	if bus.Route.ID == 0 {
		return models.Booking{}, domain.NotFoundError{Resource: "route"}
	}
	if !bus.IsActive {
		return models.Booking{}, domain.ValidationError{Field: "busId", Msg: "This bus is currently not active."}
	}

	src, dst := -1, -1
	for i, st := range bus.Route.Stops {
		if st.ID == in.SourceStopID && src == -1 {
			src = i
		}
		if st.ID == in.DestinationStopID && dst == -1 {
			dst = i
		}
	}
	if src == -1 {
		return models.Booking{}, domain.NotFoundError{Resource: "source stop on this bus route"}
	}
	if dst == -1 {
		return models.Booking{}, domain.NotFoundError{Resource: "destination stop on this bus route"}
	}
	if src >= dst {
		return models.Booking{}, domain.ValidationError{Msg: "Source stop must be before destination stop on the route"}
	}

	segments := dst - src
	b := models.Booking{
		BookingCode:       utils.BookingCode(s.now()),
		UserID:            rc.UserID,
		BusID:             bus.ID,
		RouteID:           bus.Route.ID,
		SourceStopID:      in.SourceStopID,
		DestinationStopID: in.DestinationStopID,
		SeatCount:         in.NumberOfSeats,
		TotalAmount:       utils.SegmentFare(bus.Fare, segments) * float64(in.NumberOfSeats),
		JourneyDate:       journeyDate,
		Status:            models.BookingConfirmed,
		CreatedAt:         s.now(),
	}
	b, err = s.Bookings.Create(ctx, b)
	if err != nil {
		if domain.IsConflict(err) {
			return models.Booking{}, err
		}
		return models.Booking{}, domain.InternalError{Msg: "Error creating booking", Err: err}
	}

	logger.Event(s.RequestID, "bookings", "create", fmt.Sprintf("booking_id=%d bus_id=%d seats=%d", b.ID, b.BusID, b.SeatCount))
	notifyUser(ctx, s.Events, s.Users, s.RequestID, events.TopicBookingConfirmed, b.UserID, "",
		"Booking confirmed",
		fmt.Sprintf("Booking %s confirmed for %s: %d seat(s), total %s", b.BookingCode, utils.FormatDate(b.JourneyDate), b.SeatCount, utils.FormatRupees(b.TotalAmount)))
	return b, nil
}

// Get returns the booking when rc owns it or is an admin.
func (s BookingService) Get(ctx context.Context, rc domain.RequestContext, id int64) (models.BookingDetail, error) {
	if id <= 0 {
		return models.BookingDetail{}, domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}
	d, err := s.Bookings.GetDetail(ctx, id)
	if err != nil {
		return models.BookingDetail{}, err
	}
	if d.UserID != rc.UserID && !rc.IsAdmin() {
		return models.BookingDetail{}, domain.ForbiddenError{Msg: "Not authorized to access this booking"}
	}
	return d, nil
}

func (s BookingService) ListMine(ctx context.Context, rc domain.RequestContext) ([]models.Booking, error) {
	return s.Bookings.ListByUser(ctx, rc.UserID)
}

// ListAll is the admin view, newest first.
func (s BookingService) ListAll(ctx context.Context, page, limit int) ([]models.Booking, domain.PageInfo, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultAdminPageSize
	}
	items, total, err := s.Bookings.ListPaged(ctx, page, limit)
	if err != nil {
		return nil, domain.PageInfo{}, err
	}
	return items, domain.NewPageInfo(page, limit, total), nil
}

// Cancel marks a booking cancelled. Journeys dated before today cannot be cancelled.
func (s BookingService) Cancel(ctx context.Context, rc domain.RequestContext, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if b.UserID != rc.UserID && !rc.IsAdmin() {
		return models.Booking{}, domain.ForbiddenError{Msg: "Not authorized to cancel this booking"}
	}
	if b.Status == models.BookingCancelled {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "Booking is already cancelled"}
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	journey := b.JourneyDate.In(now.Location())
	journeyDay := time.Date(journey.Year(), journey.Month(), journey.Day(), 0, 0, 0, 0, now.Location())
	if journeyDay.Before(today) {
		return models.Booking{}, domain.ValidationError{Field: "journeyDate", Msg: "Cannot cancel past bookings"}
	}
	if err := s.Bookings.UpdateStatus(ctx, id, models.BookingCancelled); err != nil {
		return models.Booking{}, err
	}
	b.Status = models.BookingCancelled

	logger.Event(s.RequestID, "bookings", "cancel", fmt.Sprintf("booking_id=%d", id))
	notifyUser(ctx, s.Events, s.Users, s.RequestID, events.TopicBookingCancelled, b.UserID, "",
		"Booking cancelled", fmt.Sprintf("Booking %s has been cancelled", b.BookingCode))
	return b, nil
}
