package repositories

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var routeCols = []string{"id", "name", "operational_start_time", "operational_end_time", "distance_km", "estimated_duration", "average_stop_time", "is_active"}
var routeStopCols = []string{"route_id", "id", "name", "address", "lat", "lng", "is_active"}

func TestListRoutesWithStops_OrdersStopsByPosition(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM routes ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(routeCols).
			AddRow(int64(1), "Blue Line", "06:00 AM", "10:00 PM", nil, nil, int64(12), true).
			AddRow(int64(2), "Red Line", "07:00 AM", "09:00 PM", 14.5, int64(60), nil, true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM route_stops rs")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows(routeStopCols).
			AddRow(int64(1), int64(10), "Alpha", "", 12.9, 77.5, true).
			AddRow(int64(1), int64(11), "Beta", "", nil, nil, true).
			AddRow(int64(2), int64(11), "Beta", "", nil, nil, true).
			AddRow(int64(2), int64(10), "Alpha", "", 12.9, 77.5, true))

	routes, err := RouteRepository{DB: conn}.ListRoutesWithStops(context.Background())
	if err != nil {
		t.Fatalf("ListRoutesWithStops: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].AverageStopTime != 12 || routes[1].AverageStopTime != 0 {
		t.Fatalf("unexpected average stop times %d %d", routes[0].AverageStopTime, routes[1].AverageStopTime)
	}
	if routes[0].Stops[0].Name != "Alpha" || routes[1].Stops[0].Name != "Beta" {
		t.Fatalf("stops out of order: %+v / %+v", routes[0].Stops, routes[1].Stops)
	}
	if routes[0].Stops[0].Location == nil || routes[0].Stops[1].Location != nil {
		t.Fatalf("location mapping wrong")
	}
	if routes[1].DistanceKm != 14.5 || routes[1].EstimatedDuration != 60 {
		t.Fatalf("optional fields not mapped: %+v", routes[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRouteCreate_WritesStopsInOrder(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO routes")).WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM route_stops WHERE route_id=?")).
		WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO route_stops")).
		WithArgs(int64(5), int64(3), int64(0)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO route_stops")).
		WithArgs(int64(5), int64(1), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := RouteRepository{DB: conn}
	id, err := repo.Create(context.Background(), routeFixture(), []int64{3, 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 5 {
		t.Fatalf("expected id 5, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
