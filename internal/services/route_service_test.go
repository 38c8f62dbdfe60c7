package services

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"testing"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
	"buspass/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func newRouteService(t *testing.T) (RouteService, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return RouteService{
		Routes: repositories.RouteRepository{DB: conn},
		Stops:  repositories.StopRepository{DB: conn},
	}, mock
}

func expectRoute(mock sqlmock.Sqlmock, stops ...[]any) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM routes WHERE id=?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(routeColumns).AddRow(int64(1), "Blue Line", "06:00 AM", "10:00 PM", nil, nil, nil, true))
	rows := sqlmock.NewRows(routeStopCols)
	for _, s := range stops {
		vals := make([]driver.Value, len(s))
		for i, v := range s {
			vals[i] = v
		}
		rows.AddRow(vals...)
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM route_stops rs")).WithArgs(int64(1)).WillReturnRows(rows)
}

func TestRouteCreate_NeedsTwoStops(t *testing.T) {
	svc, mock := newRouteService(t)
	_, err := svc.Create(context.Background(), models.RouteInput{
		Name: "Blue Line", StopIDs: []int64{1}, OperationalStartTime: "06:00 AM", OperationalEndTime: "10:00 PM",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no queries expected: %v", err)
	}
}

func TestRouteCreate_RejectsBadTime(t *testing.T) {
	svc, _ := newRouteService(t)
	_, err := svc.Create(context.Background(), models.RouteInput{
		Name: "Blue Line", StopIDs: []int64{1, 2}, OperationalStartTime: "25:00", OperationalEndTime: "10:00 PM",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRouteAddStop_Duplicate(t *testing.T) {
	svc, mock := newRouteService(t)
	expectRoute(mock,
		[]any{int64(1), int64(11), "A", "", nil, nil, true},
		[]any{int64(1), int64(12), "B", "", nil, nil, true})
	mock.ExpectQuery(regexp.QuoteMeta("FROM stops WHERE id=?")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "lat", "lng", "is_active"}).AddRow(int64(12), "B", "", nil, nil, true))

	_, err := svc.AddStop(context.Background(), 1, 12, nil)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRouteAddStop_AtPosition(t *testing.T) {
	svc, mock := newRouteService(t)
	expectRoute(mock,
		[]any{int64(1), int64(11), "A", "", nil, nil, true},
		[]any{int64(1), int64(12), "B", "", nil, nil, true})
	mock.ExpectQuery(regexp.QuoteMeta("FROM stops WHERE id=?")).
		WithArgs(int64(13)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "lat", "lng", "is_active"}).AddRow(int64(13), "M", "", nil, nil, true))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM route_stops")).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 2))
	for pos, id := range []int64{11, 13, 12} {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO route_stops")).
			WithArgs(int64(1), id, int64(pos)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
	expectRoute(mock,
		[]any{int64(1), int64(11), "A", "", nil, nil, true},
		[]any{int64(1), int64(13), "M", "", nil, nil, true},
		[]any{int64(1), int64(12), "B", "", nil, nil, true})

	pos := 1
	rt, err := svc.AddStop(context.Background(), 1, 13, &pos)
	if err != nil {
		t.Fatalf("AddStop: %v", err)
	}
	if len(rt.Stops) != 3 || rt.Stops[1].Name != "M" {
		t.Fatalf("unexpected stops %+v", rt.Stops)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRouteRemoveStop_KeepsTwo(t *testing.T) {
	svc, mock := newRouteService(t)
	expectRoute(mock,
		[]any{int64(1), int64(11), "A", "", nil, nil, true},
		[]any{int64(1), int64(12), "B", "", nil, nil, true})

	_, err := svc.RemoveStop(context.Background(), 1, 12)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRouteRemoveStop_NotOnRoute(t *testing.T) {
	svc, mock := newRouteService(t)
	expectRoute(mock,
		[]any{int64(1), int64(11), "A", "", nil, nil, true},
		[]any{int64(1), int64(12), "B", "", nil, nil, true},
		[]any{int64(1), int64(13), "C", "", nil, nil, true})

	_, err := svc.RemoveStop(context.Background(), 1, 99)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRouteFeatureLineString(t *testing.T) {
	rt := models.Route{ID: 3, Name: "Blue", Stops: []models.Stop{
		{Name: "A", Location: &models.Location{Lat: 12.9, Lng: 77.5}},
		{Name: "NoGeo"},
		{Name: "B", Location: &models.Location{Lat: 13.0, Lng: 77.6}},
	}}
	f, err := routeFeature(rt)
	if err != nil {
		t.Fatalf("routeFeature: %v", err)
	}
	raw, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out struct {
		Type     string `json:"type"`
		Geometry struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Type != "Feature" || out.Geometry.Type != "LineString" || len(out.Geometry.Coordinates) != 2 {
		t.Fatalf("unexpected geojson %s", raw)
	}
	if out.Geometry.Coordinates[0][0] != 77.5 {
		t.Fatalf("coordinates must be lng,lat: %v", out.Geometry.Coordinates[0])
	}

	if _, err := routeFeature(models.Route{Stops: rt.Stops[:2]}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for single located stop, got %v", err)
	}
}
