package handlers

import (
	"net/http"
	"strings"

	"buspass/internal/domain/models"
	"buspass/internal/http/middleware"
	"buspass/internal/repositories"
	"buspass/internal/services"

	"github.com/gin-gonic/gin"
)

func (h Handler) busService(c *gin.Context) services.BusService {
	return services.BusService{
		Buses:     repositories.BusRepository{DB: h.DB},
		Routes:    repositories.RouteRepository{DB: h.DB},
		RequestID: middleware.GetRequestID(c),
	}
}

// GET /api/buses
func (h Handler) ListBuses(c *gin.Context) {
	buses, err := h.busService(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Buses retrieved successfully", buses)
}

// GET /api/buses/:id
func (h Handler) GetBus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	bus, err := h.busService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Bus retrieved successfully", bus)
}

// GET /api/buses/schedules?routeId=&date=
func (h Handler) BusSchedules(c *gin.Context) {
	schedules, err := h.busService(c).Schedules(c.Request.Context(), queryID(c, "routeId"), strings.TrimSpace(c.Query("date")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Schedules retrieved successfully", schedules)
}

// POST /api/admin/buses
func (h Handler) CreateBus(c *gin.Context) {
	var in models.BusInput
	if !BindJSONOrError(c, &in) {
		return
	}
	bus, err := h.busService(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, "Bus created successfully", bus)
}

// PUT /api/admin/buses/:id
func (h Handler) UpdateBus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.BusInput
	if !BindJSONOrError(c, &in) {
		return
	}
	bus, err := h.busService(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Bus updated successfully", bus)
}

// DELETE /api/admin/buses/:id
func (h Handler) DeleteBus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.busService(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Bus deleted successfully", nil)
}
