package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
	"buspass/internal/logger"
)

const (
	msgNoRoutes      = "No routes found for the given source and destination"
	msgBusesFound    = "Buses found successfully"
	msgEmptyPage     = "No buses found on this page."
	msgNoBusesMatch  = "No buses found matching your criteria."
	defaultSearchTTL = 5 * time.Second
)

// RouteStore lists routes with their ordered stops.
type RouteStore interface {
	ListRoutesWithStops(ctx context.Context) ([]models.Route, error)
}

// BusStore fetches active buses on a set of routes.
type BusStore interface {
	FindActiveByRoutes(ctx context.Context, routeIDs []int64, busTypes []string) ([]models.Bus, error)
}

type SearchQuery struct {
	Source      string
	Destination string
	Date        string
	BusType     string
	MaxPrice    string
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

type SearchResult struct {
	Items      []models.BusWithJourneyInfo `json:"data"`
	Pagination domain.PageInfo             `json:"pagination"`
	Message    string                      `json:"message"`
}

// SearchService runs the route match → bus fetch → pricing → ranking pipeline.
// It holds no state between calls.
type SearchService struct {
	Routes    RouteStore
	Buses     BusStore
	Timeout   time.Duration
	RequestID string
}

func (s SearchService) SearchBuses(ctx context.Context, q SearchQuery) (SearchResult, error) {
	if strings.TrimSpace(q.Source) == "" || strings.TrimSpace(q.Destination) == "" || strings.TrimSpace(q.Date) == "" {
		return SearchResult{}, domain.ValidationError{Msg: "Source, destination and date are required"}
	}

	var routes []models.Route
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		routes, err = s.Routes.ListRoutesWithStops(ctx)
		return err
	})
	if err != nil {
		return SearchResult{}, s.fail("list_routes", err)
	}

	matched := MatchRoutes(routes, q.Source, q.Destination)
	if len(matched) == 0 {
		limit := q.Limit
		if limit <= 0 {
			limit = defaultLimit
		}
		return SearchResult{
			Items:      []models.BusWithJourneyInfo{},
			Pagination: domain.PageInfo{CurrentPage: 1, Limit: limit},
			Message:    msgNoRoutes,
		}, nil
	}

	routeIDs := make([]int64, len(matched))
	for i, rt := range matched {
		routeIDs[i] = rt.ID
	}

	var buses []models.Bus
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		buses, err = s.Buses.FindActiveByRoutes(ctx, routeIDs, ParseBusTypes(q.BusType))
		return err
	})
	if err != nil {
		return SearchResult{}, s.fail("find_buses", err)
	}

	journeys := CalculateJourneys(buses, q.Source, q.Destination, q.Date)
	journeys = ApplyPriceFilter(journeys, q.MaxPrice)
	journeys = SortJourneys(journeys, q.SortBy, q.SortOrder)
	page, info := Paginate(journeys, q.Page, q.Limit)

	msg := msgBusesFound
	switch {
	case len(page) == 0 && info.TotalItems > 0:
		msg = msgEmptyPage
	case len(page) == 0:
		msg = msgNoBusesMatch
	}

	logger.Event(s.RequestID, "search", "search_buses",
		fmt.Sprintf("source=%q destination=%q routes=%d results=%d", q.Source, q.Destination, len(matched), info.TotalItems))

	return SearchResult{Items: page, Pagination: info, Message: msg}, nil
}

// read runs fn under the search timeout and retries once on a transient failure.
func (s SearchService) read(ctx context.Context, fn func(context.Context) error) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultSearchTTL
	}
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		err = fn(attemptCtx)
		cancel()
		if err == nil || !isTransient(ctx, err) {
			return err
		}
	}
	return err
}

func isTransient(parent context.Context, err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil
}

func (s SearchService) fail(action string, err error) error {
	logger.Error(s.RequestID, "search", action, err)
	return domain.InternalError{Msg: "search failed", Err: err}
}
