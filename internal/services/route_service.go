package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
	"buspass/internal/logger"
	"buspass/internal/repositories"
	"buspass/internal/utils"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

type RouteService struct {
	Routes    repositories.RouteRepository
	Stops     repositories.StopRepository
	RequestID string
}

func (s RouteService) List(ctx context.Context) ([]models.Route, error) {
	return s.Routes.ListRoutesWithStops(ctx)
}

func (s RouteService) Get(ctx context.Context, id int64) (models.Route, error) {
	if id <= 0 {
		return models.Route{}, domain.ValidationError{Field: "id", Msg: "invalid route id"}
	}
	return s.Routes.GetByID(ctx, id)
}

func (s RouteService) Create(ctx context.Context, in models.RouteInput) (models.Route, error) {
	rt := models.Route{IsActive: true}
	applyRouteInput(&rt, in)
	if err := validateRoute(rt); err != nil {
		return models.Route{}, err
	}
	if err := s.checkStops(ctx, in.StopIDs); err != nil {
		return models.Route{}, err
	}
	id, err := s.Routes.Create(ctx, rt, in.StopIDs)
	if err != nil {
		return models.Route{}, err
	}
	logger.Event(s.RequestID, "routes", "create", fmt.Sprintf("route_id=%d stops=%d", id, len(in.StopIDs)))
	return s.Routes.GetByID(ctx, id)
}

func (s RouteService) Update(ctx context.Context, id int64, in models.RouteInput) (models.Route, error) {
	rt, err := s.Get(ctx, id)
	if err != nil {
		return models.Route{}, err
	}
	applyRouteInput(&rt, in)
	if err := validateRoute(rt); err != nil {
		return models.Route{}, err
	}
	if in.StopIDs != nil {
		if err := s.checkStops(ctx, in.StopIDs); err != nil {
			return models.Route{}, err
		}
	}
	if err := s.Routes.Update(ctx, rt, in.StopIDs); err != nil {
		return models.Route{}, err
	}
	logger.Event(s.RequestID, "routes", "update", fmt.Sprintf("route_id=%d", id))
	return s.Routes.GetByID(ctx, id)
}

func (s RouteService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid route id"}
	}
	return s.Routes.Delete(ctx, id)
}

// AddStop inserts stopID at position, or appends when position is nil or out of range.
func (s RouteService) AddStop(ctx context.Context, routeID, stopID int64, position *int) (models.Route, error) {
	rt, err := s.Get(ctx, routeID)
	if err != nil {
		return models.Route{}, err
	}
	if _, err := s.Stops.GetByID(ctx, stopID); err != nil {
		return models.Route{}, err
	}
	ids := routeStopIDs(rt)
	for _, id := range ids {
		if id == stopID {
			return models.Route{}, domain.ValidationError{Field: "stopId", Msg: "Stop already exists in route"}
		}
	}
	if position == nil || *position < 0 || *position >= len(ids) {
		ids = append(ids, stopID)
	} else {
		p := *position
		ids = append(ids[:p], append([]int64{stopID}, ids[p:]...)...)
	}
	if err := s.Routes.ReplaceStops(ctx, routeID, ids); err != nil {
		return models.Route{}, err
	}
	return s.Routes.GetByID(ctx, routeID)
}

// RemoveStop drops stopID from the route as long as two stops remain.
func (s RouteService) RemoveStop(ctx context.Context, routeID, stopID int64) (models.Route, error) {
	rt, err := s.Get(ctx, routeID)
	if err != nil {
		return models.Route{}, err
	}
	ids := routeStopIDs(rt)
	kept := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != stopID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return models.Route{}, domain.NotFoundError{Resource: "stop in route"}
	}
	if len(kept) < 2 {
		return models.Route{}, domain.ValidationError{Field: "stops", Msg: "Route must have at least two stops"}
	}
	if err := s.Routes.ReplaceStops(ctx, routeID, kept); err != nil {
		return models.Route{}, err
	}
	return s.Routes.GetByID(ctx, routeID)
}

// GeoJSON renders the route as a LineString feature through its located stops.
func (s RouteService) GeoJSON(ctx context.Context, id int64) ([]byte, error) {
	rt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	feature, err := routeFeature(rt)
	if err != nil {
		if domain.IsValidation(err) {
			return nil, err
		}
		return nil, domain.InternalError{Msg: "build route geometry", Err: err}
	}
	return json.Marshal(feature)
}

func routeFeature(rt models.Route) (*geojson.Feature, error) {
	coords := make([]geom.Coord, 0, len(rt.Stops))
	names := make([]string, 0, len(rt.Stops))
	for _, st := range rt.Stops {
		if st.Location == nil {
			continue
		}
		coords = append(coords, geom.Coord{st.Location.Lng, st.Location.Lat})
		names = append(names, st.Name)
	}
	if len(coords) < 2 {
		return nil, domain.ValidationError{Field: "stops", Msg: "route needs at least two located stops"}
	}
	line, err := geom.NewLineString(geom.XY).SetCoords(coords)
	if err != nil {
		return nil, err
	}
	return &geojson.Feature{
		ID:       fmt.Sprintf("%d", rt.ID),
		Geometry: line,
		Properties: map[string]interface{}{
			"name":  rt.Name,
			"stops": names,
		},
	}, nil
}

func (s RouteService) checkStops(ctx context.Context, ids []int64) error {
	if len(ids) < 2 {
		return domain.ValidationError{Field: "stops", Msg: "At least two stops are required"}
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			return domain.ValidationError{Field: "stops", Msg: "a stop can appear only once per route"}
		}
		seen[id] = true
	}
	n, err := s.Stops.CountExisting(ctx, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		return domain.NotFoundError{Resource: "stop"}
	}
	return nil
}

func applyRouteInput(rt *models.Route, in models.RouteInput) {
	if v := strings.TrimSpace(in.Name); v != "" {
		rt.Name = v
	}
	if v := strings.TrimSpace(in.OperationalStartTime); v != "" {
		rt.OperationalStartTime = v
	}
	if v := strings.TrimSpace(in.OperationalEndTime); v != "" {
		rt.OperationalEndTime = v
	}
	if in.DistanceKm != nil {
		rt.DistanceKm = *in.DistanceKm
	}
	if in.EstimatedDuration != nil {
		rt.EstimatedDuration = *in.EstimatedDuration
	}
	if in.AverageStopTime != nil {
		rt.AverageStopTime = *in.AverageStopTime
	}
	if in.IsActive != nil {
		rt.IsActive = *in.IsActive
	}
}

func validateRoute(rt models.Route) error {
	if rt.Name == "" {
		return domain.ValidationError{Field: "name", Msg: "Route name is required"}
	}
	if !utils.IsClockTime(rt.OperationalStartTime) || !utils.IsClockTime(rt.OperationalEndTime) {
		return domain.ValidationError{Field: "operationalStartTime", Msg: "Please enter a valid time format (HH:MM AM/PM)"}
	}
	if rt.DistanceKm < 0 || rt.EstimatedDuration < 0 || rt.AverageStopTime < 0 {
		return domain.ValidationError{Msg: "distance and durations must not be negative"}
	}
	return nil
}

func routeStopIDs(rt models.Route) []int64 {
	ids := make([]int64, len(rt.Stops))
	for i, st := range rt.Stops {
		ids[i] = st.ID
	}
	return ids
}
