package services

import (
	"context"

	"buspass/internal/domain/models"
	"buspass/internal/repositories"
)

type DashboardService struct {
	Stops    repositories.StopRepository
	Routes   repositories.RouteRepository
	Buses    repositories.BusRepository
	Bookings repositories.BookingRepository
	Passes   repositories.PassApplicationRepository
}

func (s DashboardService) Stats(ctx context.Context) (models.DashboardStats, error) {
	var out models.DashboardStats
	var err error
	if out.TotalStops, err = s.Stops.Count(ctx); err != nil {
		return out, err
	}
	if out.TotalRoutes, err = s.Routes.Count(ctx); err != nil {
		return out, err
	}
	if out.ActiveBuses, err = s.Buses.CountActive(ctx); err != nil {
		return out, err
	}
	byStatus, err := s.Bookings.CountByStatus(ctx)
	if err != nil {
		return out, err
	}
	for status, n := range byStatus {
		out.TotalBookings += n
		switch status {
		case models.BookingConfirmed:
			out.ConfirmedBookings = n
		case models.BookingCancelled:
			out.CancelledBookings = n
		}
	}
	pending, err := s.Passes.CountByStatus(ctx, models.PassPending)
	if err != nil {
		return out, err
	}
	verifying, err := s.Passes.CountByStatus(ctx, models.PassVerification)
	if err != nil {
		return out, err
	}
	out.PendingPassApplications = pending + verifying
	return out, nil
}
