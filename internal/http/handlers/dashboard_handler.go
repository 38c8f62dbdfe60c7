package handlers

import (
	"net/http"

	"buspass/internal/repositories"
	"buspass/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/dashboard
func (h Handler) Dashboard(c *gin.Context) {
	svc := services.DashboardService{
		Stops:    repositories.StopRepository{DB: h.DB},
		Routes:   repositories.RouteRepository{DB: h.DB},
		Buses:    repositories.BusRepository{DB: h.DB},
		Bookings: repositories.BookingRepository{DB: h.DB},
		Passes:   repositories.PassApplicationRepository{DB: h.DB},
	}
	stats, err := svc.Stats(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}
