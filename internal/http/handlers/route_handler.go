package handlers

import (
	"net/http"

	"buspass/internal/domain/models"
	"buspass/internal/http/middleware"
	"buspass/internal/repositories"
	"buspass/internal/services"

	"github.com/gin-gonic/gin"
)

type routeStopRequest struct {
	StopID   int64 `json:"stopId" binding:"required,gt=0"`
	Position *int  `json:"position"`
}

func (h Handler) routeService(c *gin.Context) services.RouteService {
	return services.RouteService{
		Routes:    repositories.RouteRepository{DB: h.DB},
		Stops:     repositories.StopRepository{DB: h.DB},
		RequestID: middleware.GetRequestID(c),
	}
}

// GET /api/routes
func (h Handler) ListRoutes(c *gin.Context) {
	routes, err := h.routeService(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Routes retrieved successfully", routes)
}

// GET /api/routes/:id
func (h Handler) GetRoute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rt, err := h.routeService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Route retrieved successfully", rt)
}

// GET /api/routes/:id/geojson
func (h Handler) RouteGeoJSON(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	raw, err := h.routeService(c).GeoJSON(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", raw)
}

// POST /api/admin/routes
func (h Handler) CreateRoute(c *gin.Context) {
	var in models.RouteInput
	if !BindJSONOrError(c, &in) {
		return
	}
	rt, err := h.routeService(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, "Route created successfully", rt)
}

// PUT /api/admin/routes/:id
func (h Handler) UpdateRoute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.RouteInput
	if !BindJSONOrError(c, &in) {
		return
	}
	rt, err := h.routeService(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Route updated successfully", rt)
}

// DELETE /api/admin/routes/:id
func (h Handler) DeleteRoute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.routeService(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Route deleted successfully", nil)
}

// POST /api/admin/routes/:id/stops
func (h Handler) AddRouteStop(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req routeStopRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rt, err := h.routeService(c).AddStop(c.Request.Context(), id, req.StopID, req.Position)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Stop added to route successfully", rt)
}

// DELETE /api/admin/routes/:id/stops/:stopId
func (h Handler) RemoveRouteStop(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	stopID, ok := paramID(c, "stopId")
	if !ok {
		return
	}
	rt, err := h.routeService(c).RemoveStop(c.Request.Context(), id, stopID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Stop removed from route successfully", rt)
}
