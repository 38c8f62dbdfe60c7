package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"buspass/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	routeCols     = []string{"id", "name", "operational_start_time", "operational_end_time", "distance_km", "estimated_duration", "average_stop_time", "is_active"}
	routeStopCols = []string{"route_id", "id", "name", "address", "lat", "lng", "is_active"}
	busCols       = []string{"id", "bus_number", "bus_type", "capacity", "route_id", "fare", "features", "is_active"}
)

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination domain.PageInfo `json:"pagination"`
	RequestID  string          `json:"request_id"`
}

func searchEngine(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	r := gin.New()
	r.GET("/api/buses/search", Handler{DB: conn}.SearchBuses)
	return r, mock
}

func get(t *testing.T, r http.Handler, url string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func TestSearchBuses_MissingParamsIs400(t *testing.T) {
	r, mock := searchEngine(t)

	for _, url := range []string{
		"/api/buses/search?source=A&destination=C",
		"/api/buses/search?source=A&date=2025-01-10",
		"/api/buses/search?source=%20%20&destination=C&date=2025-01-10",
	} {
		w, body := get(t, r, url)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
		assert.False(t, body.Success, url)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchBuses_NoRoutes(t *testing.T) {
	r, mock := searchEngine(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM routes ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(routeCols))

	w, body := get(t, r, "/api/buses/search?source=A&destination=C&date=2025-01-10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "No routes found for the given source and destination", body.Message)
	assert.JSONEq(t, `[]`, string(body.Data))
	assert.Equal(t, domain.PageInfo{CurrentPage: 1, Limit: 5}, body.Pagination)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchBuses_TrimsAndComputesJourney(t *testing.T) {
	r, mock := searchEngine(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM routes ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(routeCols).
			AddRow(int64(1), "Blue Line", "06:00 AM", "10:00 PM", nil, nil, nil, true))
	stops := func() *sqlmock.Rows {
		return sqlmock.NewRows(routeStopCols).
			AddRow(int64(1), int64(10), "A", "", nil, nil, true).
			AddRow(int64(1), int64(11), "B", "", nil, nil, true).
			AddRow(int64(1), int64(12), "C", "", nil, nil, true)
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM route_stops rs")).
		WithArgs(int64(1)).
		WillReturnRows(stops())
	mock.ExpectQuery(regexp.QuoteMeta("FROM buses WHERE route_id IN (?) AND is_active = 1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(busCols).
			AddRow(int64(7), "KA-01-1234", "ac", 40, int64(1), 10.0, "wifi", true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM routes WHERE id IN (?)")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(routeCols).
			AddRow(int64(1), "Blue Line", "06:00 AM", "10:00 PM", nil, nil, nil, true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM route_stops rs")).
		WithArgs(int64(1)).
		WillReturnRows(stops())

	w, body := get(t, r, "/api/buses/search?source=%20a%20&destination=c&date=2025-01-10")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Buses found successfully", body.Message)

	var items []struct {
		Bus struct {
			ID int64 `json:"id"`
		} `json:"bus"`
		JourneyInfo struct {
			Fare          float64 `json:"fare"`
			Duration      int     `json:"duration"`
			DepartureTime string  `json:"departureTime"`
			ArrivalTime   string  `json:"arrivalTime"`
		} `json:"journeyInfo"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].Bus.ID)
	assert.Equal(t, 20.0, items[0].JourneyInfo.Fare)
	assert.Equal(t, 20, items[0].JourneyInfo.Duration)
	assert.Equal(t, "06:00 AM", items[0].JourneyInfo.DepartureTime)
	assert.Equal(t, "N/A", items[0].JourneyInfo.ArrivalTime)
	assert.Equal(t, 1, body.Pagination.TotalItems)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchBuses_StoreFailureIs500(t *testing.T) {
	r, mock := searchEngine(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM routes ORDER BY id ASC")).
		WillReturnError(errors.New("table missing"))

	w, body := get(t, r, "/api/buses/search?source=A&destination=C&date=2025-01-10")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, body.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRespondDomainError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
	}{
		{domain.ValidationError{Msg: "bad"}, http.StatusBadRequest},
		{domain.NotFoundError{Resource: "bus"}, http.StatusNotFound},
		{domain.ConflictError{Resource: "stop", Msg: "exists"}, http.StatusConflict},
		{domain.UnauthorizedError{Msg: "no"}, http.StatusUnauthorized},
		{domain.ForbiddenError{}, http.StatusForbidden},
		{domain.InternalError{Msg: "search failed", Err: errors.New("boom")}, http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		RespondDomainError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}

func TestRespondDomainError_InternalCarriesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("request_id", "rid-1")

	RespondDomainError(c, domain.InternalError{Msg: "search failed", Err: errors.New("boom")})

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rid-1", body["request_id"])
	assert.Equal(t, "search failed: boom", body["error"])
	assert.Len(t, c.Errors, 1)
}

func TestParamID_RejectsNonPositive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x/:id", func(c *gin.Context) {
		if id, ok := paramID(c, "id"); ok {
			c.JSON(http.StatusOK, gin.H{"id": id})
		}
	})
	for path, want := range map[string]int{"/x/5": 200, "/x/0": 400, "/x/abc": 400} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
