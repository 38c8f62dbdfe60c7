package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
)

type fakeRoutes struct {
	routes []models.Route
	err    error
	calls  int
	fails  int
}

func (f *fakeRoutes) ListRoutesWithStops(ctx context.Context) ([]models.Route, error) {
	f.calls++
	if f.fails > 0 {
		f.fails--
		return nil, f.err
	}
	return f.routes, nil
}

type fakeBuses struct {
	buses    []models.Bus
	err      error
	gotIDs   []int64
	gotTypes []string
}

func (f *fakeBuses) FindActiveByRoutes(ctx context.Context, routeIDs []int64, busTypes []string) ([]models.Bus, error) {
	f.gotIDs = routeIDs
	f.gotTypes = busTypes
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Bus{}
	for _, b := range f.buses {
		for _, id := range routeIDs {
			if b.RouteID == id {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func stops(names ...string) []models.Stop {
	out := make([]models.Stop, len(names))
	for i, n := range names {
		out[i] = models.Stop{ID: int64(i + 1), Name: n}
	}
	return out
}

func route(id int64, start string, names ...string) models.Route {
	return models.Route{ID: id, Name: "R", Stops: stops(names...), OperationalStartTime: start, OperationalEndTime: "10:00 PM"}
}

func bus(id int64, rt models.Route, fare float64) models.Bus {
	return models.Bus{ID: id, BusNumber: "B", BusType: "ordinary", RouteID: rt.ID, Route: rt, Fare: fare, IsActive: true}
}

func TestMatchRoutes_Direction(t *testing.T) {
	routes := []models.Route{route(1, "06:00 AM", "A", "B", "C")}

	cases := []struct {
		source, destination string
		want                int
	}{
		{"A", "C", 1},
		{"a", "c", 1},
		{"C", "A", 0},
		{"A", "Z", 0},
		{"A", "A", 0},
	}
	for _, tc := range cases {
		if got := MatchRoutes(routes, tc.source, tc.destination); len(got) != tc.want {
			t.Fatalf("%s->%s: expected %d routes, got %d", tc.source, tc.destination, tc.want, len(got))
		}
	}
}

func TestMatchRoutes_FirstOccurrenceAndOrder(t *testing.T) {
	loop := route(1, "", "X", "A", "X")
	other := route(2, "", "A", "X")

	got := MatchRoutes([]models.Route{loop, other}, "X", "A")
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only the loop route for X->A, got %+v", got)
	}

	got = MatchRoutes([]models.Route{other, loop}, "A", "X")
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("first occurrence of X precedes A on the loop; expected only route 2, got %+v", got)
	}
}

func TestParseBusTypes(t *testing.T) {
	if got := ParseBusTypes(" ac, ,express,"); !reflect.DeepEqual(got, []string{"ac", "express"}) {
		t.Fatalf("unexpected types: %#v", got)
	}
	if got := ParseBusTypes(""); len(got) != 0 {
		t.Fatalf("expected no filter, got %#v", got)
	}
}

func TestCalculateJourneys_FareAndDuration(t *testing.T) {
	rt := route(1, "06:00 AM", "A", "B", "C", "D")
	items := CalculateJourneys([]models.Bus{bus(1, rt, 10)}, "A", "D", "2030-01-01")
	if len(items) != 1 {
		t.Fatalf("expected 1 journey, got %d", len(items))
	}
	ji := items[0].JourneyInfo
	if ji.Fare != 30 || ji.Duration != 30 {
		t.Fatalf("expected fare 30 and duration 30, got fare=%v duration=%d", ji.Fare, ji.Duration)
	}
	if ji.DepartureTime != "06:00 AM" || ji.ArrivalTime != "N/A" {
		t.Fatalf("unexpected times: departure=%q arrival=%q", ji.DepartureTime, ji.ArrivalTime)
	}
	if ji.SourceStop.Name != "A" || ji.DestinationStop.Name != "D" {
		t.Fatalf("unexpected stops: %+v -> %+v", ji.SourceStop, ji.DestinationStop)
	}

	items = CalculateJourneys([]models.Bus{bus(1, rt, 10)}, "A", "B", "2030-01-01")
	if len(items) != 1 || items[0].JourneyInfo.Fare != 10 {
		t.Fatalf("expected single-segment fare 10, got %+v", items)
	}

	items = CalculateJourneys([]models.Bus{bus(1, rt, 10)}, "B", "D", "2030-01-01")
	if len(items) != 1 || items[0].JourneyInfo.DepartureTime != "N/A" {
		t.Fatalf("mid-route boarding should have N/A departure, got %+v", items)
	}
}

func TestCalculateJourneys_AverageStopTime(t *testing.T) {
	rt := route(1, "06:00 AM", "A", "B", "C")
	rt.AverageStopTime = 7
	items := CalculateJourneys([]models.Bus{bus(1, rt, 5)}, "A", "C", "d")
	if len(items) != 1 || items[0].JourneyInfo.Duration != 14 {
		t.Fatalf("expected duration 14, got %+v", items)
	}
}

func TestCalculateJourneys_DropsInconsistentBus(t *testing.T) {
	good := route(1, "", "A", "B")
	bad := route(2, "", "B", "Q")
	items := CalculateJourneys([]models.Bus{bus(1, good, 10), bus(2, bad, 10)}, "A", "B", "d")
	if len(items) != 1 || items[0].Bus.ID != 1 {
		t.Fatalf("expected only bus 1, got %+v", items)
	}
}

func journeysWithFares(fares ...float64) []models.BusWithJourneyInfo {
	out := make([]models.BusWithJourneyInfo, len(fares))
	for i, f := range fares {
		out[i].Bus.ID = int64(i + 1)
		out[i].JourneyInfo.Fare = f
	}
	return out
}

func busIDs(items []models.BusWithJourneyInfo) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.Bus.ID
	}
	return ids
}

func TestApplyPriceFilter(t *testing.T) {
	cases := []struct {
		maxPrice string
		want     int
	}{
		{"25", 0},
		{"35", 1},
		{"30", 1},
		{" 30.0 ", 1},
		{"25abc", 0},
		{"35 rupees", 1},
		{"abc", 1},
		{"", 1},
		{"Inf", 1},
		{"1e999", 1},
	}
	for _, tc := range cases {
		if got := ApplyPriceFilter(journeysWithFares(30), tc.maxPrice); len(got) != tc.want {
			t.Fatalf("maxPrice %q: expected %d items, got %d", tc.maxPrice, tc.want, len(got))
		}
	}
}

func departures(times ...string) []models.BusWithJourneyInfo {
	out := make([]models.BusWithJourneyInfo, len(times))
	for i, v := range times {
		out[i].Bus.ID = int64(i + 1)
		out[i].JourneyInfo.DepartureTime = v
	}
	return out
}

func departureTimes(items []models.BusWithJourneyInfo) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.JourneyInfo.DepartureTime
	}
	return out
}

func TestSortJourneys_Departure(t *testing.T) {
	cases := []struct {
		name  string
		times []string
		order string
		want  []string
	}{
		{"asc", []string{"10:00 AM", "N/A", "09:00 AM"}, "asc", []string{"09:00 AM", "10:00 AM", "N/A"}},
		{"desc keeps N/A last", []string{"10:00 AM", "N/A", "09:00 AM"}, "DESC", []string{"10:00 AM", "09:00 AM", "N/A"}},
		{"noon and midnight", []string{"12:00 PM", "12:30 AM", "01:00 PM"}, "", []string{"12:30 AM", "12:00 PM", "01:00 PM"}},
		{"unparseable asc", []string{"25:00 PM", "08:00 AM", "9 AM", "07:15 PM"}, "asc", []string{"08:00 AM", "07:15 PM", "25:00 PM", "9 AM"}},
		{"unparseable desc", []string{"25:00 PM", "08:00 AM", "9 AM", "07:15 PM"}, "desc", []string{"07:15 PM", "08:00 AM", "25:00 PM", "9 AM"}},
	}
	for _, tc := range cases {
		got := departureTimes(SortJourneys(departures(tc.times...), "departure", tc.order))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestSortJourneys_Duration(t *testing.T) {
	items := func() []models.BusWithJourneyInfo {
		out := journeysWithFares(0, 0, 0, 0)
		for i, d := range []int{30, 10, 20, 10} {
			out[i].JourneyInfo.Duration = d
		}
		return out
	}

	if got := busIDs(SortJourneys(items(), "duration", "asc")); !reflect.DeepEqual(got, []int64{2, 4, 3, 1}) {
		t.Fatalf("asc duration: unexpected order %v", got)
	}
	if got := busIDs(SortJourneys(items(), "duration", "desc")); !reflect.DeepEqual(got, []int64{1, 3, 2, 4}) {
		t.Fatalf("desc duration: unexpected order %v", got)
	}
}

func TestSortJourneys_OrderDirection(t *testing.T) {
	cases := []struct {
		order string
		want  []int64
	}{
		{"", []int64{4, 2, 1, 3}},
		{"asc", []int64{4, 2, 1, 3}},
		{"ASC", []int64{4, 2, 1, 3}},
		{"desc", []int64{1, 3, 2, 4}},
		{"descending", []int64{1, 3, 2, 4}},
		{"weird", []int64{1, 3, 2, 4}},
	}
	for _, tc := range cases {
		got := busIDs(SortJourneys(journeysWithFares(20, 10, 20, 5), "fare", tc.order))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("order %q: expected %v, got %v", tc.order, tc.want, got)
		}
	}
}

func TestSortJourneys_UnknownKeyKeepsOrder(t *testing.T) {
	got := busIDs(SortJourneys(journeysWithFares(3, 1, 2), "price", "asc"))
	if !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Fatalf("unknown key should not reorder, got %v", got)
	}
}

func TestPaginate(t *testing.T) {
	items := journeysWithFares(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)

	page, info := Paginate(items, 1, 5)
	want := domain.PageInfo{CurrentPage: 1, TotalPages: 3, TotalItems: 12, Limit: 5, HasNextPage: true, HasPrevPage: false}
	if len(page) != 5 || info != want {
		t.Fatalf("page 1: got %d items, info %+v", len(page), info)
	}

	page, info = Paginate(items, 3, 5)
	if len(page) != 2 || info.HasNextPage || !info.HasPrevPage {
		t.Fatalf("page 3: got %d items, info %+v", len(page), info)
	}
	if page[0].Bus.ID != 11 {
		t.Fatalf("page 3 should start at item 11, got %d", page[0].Bus.ID)
	}

	page, info = Paginate(items, 4, 5)
	if len(page) != 0 || info.HasNextPage || !info.HasPrevPage {
		t.Fatalf("page 4: got %d items, info %+v", len(page), info)
	}

	_, info = Paginate(items, 0, 0)
	if info.CurrentPage != 1 || info.Limit != 5 {
		t.Fatalf("defaults not applied: %+v", info)
	}
}

func TestPaginate_HugeValues(t *testing.T) {
	items := journeysWithFares(1, 2, 3)

	page, info := Paginate(items, 1<<62+1, 2)
	if len(page) != 0 || info.TotalPages != 2 || info.HasNextPage {
		t.Fatalf("huge page: got %d items, info %+v", len(page), info)
	}

	page, info = Paginate(items, 1, math.MaxInt)
	if len(page) != 3 || info.TotalPages != 1 || info.HasNextPage {
		t.Fatalf("huge limit: got %d items, info %+v", len(page), info)
	}

	page, _ = Paginate(items, math.MaxInt, math.MaxInt)
	if len(page) != 0 {
		t.Fatalf("huge page and limit: expected empty page, got %d items", len(page))
	}

	page, info = Paginate([]models.BusWithJourneyInfo{}, 1, 5)
	if len(page) != 0 || info.TotalPages != 0 {
		t.Fatalf("empty input: got %d items, info %+v", len(page), info)
	}
}

func searchFixture() (*fakeRoutes, *fakeBuses) {
	rt := route(1, "06:00 AM", "A", "B", "C", "D")
	back := route(2, "07:00 AM", "D", "C", "B", "A")
	return &fakeRoutes{routes: []models.Route{rt, back}},
		&fakeBuses{buses: []models.Bus{bus(1, rt, 10), bus(2, back, 10)}}
}

func TestSearchBuses_Validation(t *testing.T) {
	routes, buses := searchFixture()
	svc := SearchService{Routes: routes, Buses: buses}

	_, err := svc.SearchBuses(context.Background(), SearchQuery{Source: "A", Destination: "D"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if routes.calls != 0 {
		t.Fatalf("store must not be read before validation, got %d calls", routes.calls)
	}
}

func TestSearchBuses_HappyPath(t *testing.T) {
	routes, buses := searchFixture()
	svc := SearchService{Routes: routes, Buses: buses}

	res, err := svc.SearchBuses(context.Background(), SearchQuery{Source: "A", Destination: "D", Date: "2030-01-01", BusType: "ac, ordinary"})
	if err != nil {
		t.Fatalf("SearchBuses: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Bus.ID != 1 || res.Items[0].JourneyInfo.Fare != 30 {
		t.Fatalf("unexpected items: %+v", res.Items)
	}
	if res.Message != "Buses found successfully" {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if !reflect.DeepEqual(buses.gotIDs, []int64{1}) || !reflect.DeepEqual(buses.gotTypes, []string{"ac", "ordinary"}) {
		t.Fatalf("unexpected fetch args: ids=%v types=%v", buses.gotIDs, buses.gotTypes)
	}
}

func TestSearchBuses_NoRoutes(t *testing.T) {
	routes, buses := searchFixture()
	svc := SearchService{Routes: routes, Buses: buses}

	res, err := svc.SearchBuses(context.Background(), SearchQuery{Source: "A", Destination: "Z", Date: "d", Limit: 8})
	if err != nil {
		t.Fatalf("SearchBuses: %v", err)
	}
	if len(res.Items) != 0 || res.Message != "No routes found for the given source and destination" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Pagination != (domain.PageInfo{CurrentPage: 1, Limit: 8}) {
		t.Fatalf("unexpected pagination: %+v", res.Pagination)
	}
	if buses.gotIDs != nil {
		t.Fatalf("bus store should not be queried, got ids %v", buses.gotIDs)
	}
}

func TestSearchBuses_Messages(t *testing.T) {
	routes, buses := searchFixture()
	svc := SearchService{Routes: routes, Buses: buses}

	res, err := svc.SearchBuses(context.Background(), SearchQuery{Source: "A", Destination: "D", Date: "d", Page: 2})
	if err != nil || res.Message != "No buses found on this page." {
		t.Fatalf("page past end: message=%q err=%v", res.Message, err)
	}

	res, err = svc.SearchBuses(context.Background(), SearchQuery{Source: "A", Destination: "D", Date: "d", MaxPrice: "5"})
	if err != nil || res.Message != "No buses found matching your criteria." {
		t.Fatalf("filtered out: message=%q err=%v", res.Message, err)
	}
}

func TestSearchBuses_HugePageIsEmptyNotPanic(t *testing.T) {
	routes, buses := searchFixture()
	svc := SearchService{Routes: routes, Buses: buses}

	res, err := svc.SearchBuses(context.Background(), SearchQuery{Source: "A", Destination: "D", Date: "d", Page: 1<<62 + 1, Limit: 2})
	if err != nil {
		t.Fatalf("SearchBuses: %v", err)
	}
	if len(res.Items) != 0 || res.Message != "No buses found on this page." {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSearchBuses_Idempotent(t *testing.T) {
	routes, buses := searchFixture()
	svc := SearchService{Routes: routes, Buses: buses}
	q := SearchQuery{Source: "B", Destination: "D", Date: "d", SortBy: "fare"}

	first, err := svc.SearchBuses(context.Background(), q)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := svc.SearchBuses(context.Background(), q)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical searches differ:\n%+v\n%+v", first, second)
	}
}

func TestSearchBuses_StoreFailure(t *testing.T) {
	routes, buses := searchFixture()
	buses.err = errors.New("db down")
	svc := SearchService{Routes: routes, Buses: buses}

	_, err := svc.SearchBuses(context.Background(), SearchQuery{Source: "A", Destination: "D", Date: "d"})
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !strings.Contains(err.Error(), "db down") {
		t.Fatalf("cause should be attached, got %q", err.Error())
	}
}

func TestSearchBuses_RetriesTransientRead(t *testing.T) {
	routes, buses := searchFixture()
	routes.err = driver.ErrBadConn
	routes.fails = 1
	svc := SearchService{Routes: routes, Buses: buses}

	res, err := svc.SearchBuses(context.Background(), SearchQuery{Source: "A", Destination: "D", Date: "d"})
	if err != nil {
		t.Fatalf("SearchBuses: %v", err)
	}
	if len(res.Items) != 1 || routes.calls != 2 {
		t.Fatalf("expected one retry and 1 item, got calls=%d items=%d", routes.calls, len(res.Items))
	}
}
