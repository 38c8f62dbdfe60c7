package handlers

import (
	"strings"

	"buspass/internal/http/middleware"
	"buspass/internal/repositories"
	"buspass/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/buses/search
func (h Handler) SearchBuses(c *gin.Context) {
	q := services.SearchQuery{
		Source:      strings.TrimSpace(c.Query("source")),
		Destination: strings.TrimSpace(c.Query("destination")),
		Date:        strings.TrimSpace(c.Query("date")),
		BusType:     c.Query("busType"),
		MaxPrice:    strings.TrimSpace(c.Query("maxPrice")),
		SortBy:      strings.TrimSpace(c.Query("sortBy")),
		SortOrder:   strings.TrimSpace(c.Query("sortOrder")),
		Page:        queryInt(c, "page"),
		Limit:       queryInt(c, "limit"),
	}

	svc := services.SearchService{
		Routes:    repositories.RouteRepository{DB: h.DB},
		Buses:     repositories.BusRepository{DB: h.DB},
		Timeout:   h.SearchTimeout,
		RequestID: middleware.GetRequestID(c),
	}
	res, err := svc.SearchBuses(c.Request.Context(), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondPage(c, res.Message, res.Items, res.Pagination)
}
