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

func (h Handler) stopService(c *gin.Context) services.StopService {
	return services.StopService{
		Stops:     repositories.StopRepository{DB: h.DB},
		RequestID: middleware.GetRequestID(c),
	}
}

// GET /api/stops
func (h Handler) ListStops(c *gin.Context) {
	stops, err := h.stopService(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Stops retrieved successfully", stops)
}

// GET /api/stops/search?query=
func (h Handler) SearchStops(c *gin.Context) {
	stops, err := h.stopService(c).Search(c.Request.Context(), strings.TrimSpace(c.Query("query")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Stops retrieved successfully", stops)
}

// GET /api/stops/:id
func (h Handler) GetStop(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	stop, err := h.stopService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Stop retrieved successfully", stop)
}

// POST /api/admin/stops
func (h Handler) CreateStop(c *gin.Context) {
	var in models.StopInput
	if !BindJSONOrError(c, &in) {
		return
	}
	stop, err := h.stopService(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, "Stop created successfully", stop)
}

// PUT /api/admin/stops/:id
func (h Handler) UpdateStop(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.StopInput
	if !BindJSONOrError(c, &in) {
		return
	}
	stop, err := h.stopService(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Stop updated successfully", stop)
}

// DELETE /api/admin/stops/:id
func (h Handler) DeleteStop(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.stopService(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Stop deleted successfully", nil)
}
