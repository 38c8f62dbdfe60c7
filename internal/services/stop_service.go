package services

import (
	"context"
	"strings"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
	"buspass/internal/logger"
	"buspass/internal/repositories"
)

type StopService struct {
	Stops     repositories.StopRepository
	RequestID string
}

func (s StopService) List(ctx context.Context) ([]models.Stop, error) {
	return s.Stops.List(ctx)
}

func (s StopService) Get(ctx context.Context, id int64) (models.Stop, error) {
	if id <= 0 {
		return models.Stop{}, domain.ValidationError{Field: "id", Msg: "invalid stop id"}
	}
	return s.Stops.GetByID(ctx, id)
}

func (s StopService) Search(ctx context.Context, query string) ([]models.Stop, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ValidationError{Field: "query", Msg: "Search query is required"}
	}
	return s.Stops.Search(ctx, query)
}

func (s StopService) Create(ctx context.Context, in models.StopInput) (models.Stop, error) {
	stop := models.Stop{IsActive: true}
	if err := applyStopInput(&stop, in, true); err != nil {
		return models.Stop{}, err
	}
	id, err := s.Stops.Create(ctx, stop)
	if err != nil {
		return models.Stop{}, err
	}
	stop.ID = id
	logger.Event(s.RequestID, "stops", "create", "stop="+stop.Name)
	return stop, nil
}

func (s StopService) Update(ctx context.Context, id int64, in models.StopInput) (models.Stop, error) {
	stop, err := s.Get(ctx, id)
	if err != nil {
		return models.Stop{}, err
	}
	if err := applyStopInput(&stop, in, false); err != nil {
		return models.Stop{}, err
	}
	if err := s.Stops.Update(ctx, stop); err != nil {
		return models.Stop{}, err
	}
	logger.Event(s.RequestID, "stops", "update", "stop="+stop.Name)
	return stop, nil
}

func (s StopService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid stop id"}
	}
	return s.Stops.Delete(ctx, id)
}

func applyStopInput(stop *models.Stop, in models.StopInput, create bool) error {
	name := strings.TrimSpace(in.Name)
	if name == "" && create {
		return domain.ValidationError{Field: "name", Msg: "Stop name is required."}
	}
	if name != "" {
		stop.Name = name
	}
	if a := strings.TrimSpace(in.Address); a != "" {
		stop.Address = a
	}
	if (in.Lat == nil) != (in.Lng == nil) {
		return domain.ValidationError{Field: "location", Msg: "Both latitude and longitude are required."}
	}
	if in.Lat != nil {
		lat, lng := *in.Lat, *in.Lng
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return domain.ValidationError{Field: "location", Msg: "Invalid longitude or latitude values."}
		}
		stop.Location = &models.Location{Lat: lat, Lng: lng}
	}
	if in.IsActive != nil {
		stop.IsActive = *in.IsActive
	}
	return nil
}
