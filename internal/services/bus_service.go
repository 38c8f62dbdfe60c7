package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
	"buspass/internal/logger"
	"buspass/internal/repositories"
	"buspass/internal/utils"
)

const (
	defaultFirstDeparture = "06:00 AM"
	defaultLastArrival    = "07:00 AM"
)

type BusService struct {
	Buses     repositories.BusRepository
	Routes    repositories.RouteRepository
	RequestID string
}

func (s BusService) List(ctx context.Context) ([]models.Bus, error) {
	return s.Buses.List(ctx, 0)
}

func (s BusService) Get(ctx context.Context, id int64) (models.Bus, error) {
	if id <= 0 {
		return models.Bus{}, domain.ValidationError{Field: "id", Msg: "invalid bus id"}
	}
	return s.Buses.GetByID(ctx, id)
}

func (s BusService) Create(ctx context.Context, in models.BusInput) (models.Bus, error) {
	b := models.Bus{IsActive: true}
	applyBusInput(&b, in)
	if err := s.validate(ctx, b); err != nil {
		return models.Bus{}, err
	}
	id, err := s.Buses.Create(ctx, b)
	if err != nil {
		return models.Bus{}, err
	}
	logger.Event(s.RequestID, "buses", "create", fmt.Sprintf("bus_id=%d number=%s", id, b.BusNumber))
	return s.Buses.GetByID(ctx, id)
}

func (s BusService) Update(ctx context.Context, id int64, in models.BusInput) (models.Bus, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return models.Bus{}, err
	}
	applyBusInput(&b, in)
	if err := s.validate(ctx, b); err != nil {
		return models.Bus{}, err
	}
	if err := s.Buses.Update(ctx, b); err != nil {
		return models.Bus{}, err
	}
	logger.Event(s.RequestID, "buses", "update", fmt.Sprintf("bus_id=%d", id))
	return s.Buses.GetByID(ctx, id)
}

func (s BusService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid bus id"}
	}
	return s.Buses.Delete(ctx, id)
}

// Schedules lists buses with first-stop departure and last-stop arrival for a day.
// Without a route filter every bus is listed. An empty date means today.
func (s BusService) Schedules(ctx context.Context, routeID int64, date string) ([]models.BusSchedule, error) {
	if strings.TrimSpace(date) == "" {
		date = utils.FormatDate(time.Now())
	} else if _, err := utils.ParseDate(date); err != nil {
		return nil, domain.ValidationError{Field: "date", Msg: "date must be YYYY-MM-DD"}
	}
	buses, err := s.Buses.List(ctx, routeID)
	if err != nil {
		return nil, err
	}
	out := make([]models.BusSchedule, 0, len(buses))
	for _, b := range buses {
		dep := b.Route.OperationalStartTime
		if dep == "" {
			dep = defaultFirstDeparture
		}
		arr := b.Route.OperationalEndTime
		if arr == "" {
			arr = defaultLastArrival
		}
		out = append(out, models.BusSchedule{
			Bus:            models.NewBusSummary(b),
			DepartureTime:  dep,
			ArrivalTime:    arr,
			Date:           date,
			AvailableSeats: b.Capacity,
		})
	}
	return out, nil
}

func (s BusService) validate(ctx context.Context, b models.Bus) error {
	if b.BusNumber == "" {
		return domain.ValidationError{Field: "busNumber", Msg: "Bus number is required"}
	}
	if !models.IsValidBusType(b.BusType) {
		return domain.ValidationError{Field: "busType", Msg: "Bus type must be one of " + strings.Join(models.BusTypes, ", ")}
	}
	if b.Capacity <= 0 {
		return domain.ValidationError{Field: "capacity", Msg: "Capacity must be a positive number"}
	}
	if b.Fare < 0 {
		return domain.ValidationError{Field: "fare", Msg: "Fare must not be negative"}
	}
	if b.RouteID <= 0 {
		return domain.ValidationError{Field: "routeId", Msg: "Route is required"}
	}
	ok, err := s.Routes.Exists(ctx, b.RouteID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFoundError{Resource: "route"}
	}
	return nil
}

func applyBusInput(b *models.Bus, in models.BusInput) {
	if v := strings.TrimSpace(in.BusNumber); v != "" {
		b.BusNumber = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(in.BusType); v != "" {
		b.BusType = strings.ToLower(v)
	}
	if in.Capacity != nil {
		b.Capacity = *in.Capacity
	}
	if in.RouteID != nil {
		b.RouteID = *in.RouteID
	}
	if in.Fare != nil {
		b.Fare = *in.Fare
	}
	if in.Features != nil {
		b.Features = utils.SplitCSV(strings.Join(in.Features, ","))
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
}
