package handlers

import (
	"net/http"

	"buspass/internal/domain/models"
	"buspass/internal/http/middleware"
	"buspass/internal/repositories"
	"buspass/internal/services"

	"github.com/gin-gonic/gin"
)

func (h Handler) bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		Bookings:  repositories.BookingRepository{DB: h.DB},
		Buses:     repositories.BusRepository{DB: h.DB},
		Users:     repositories.UserRepository{DB: h.DB},
		Events:    h.publisher(),
		Now:       h.clock(),
		RequestID: middleware.GetRequestID(c),
	}
}

// POST /api/bookings
func (h Handler) CreateBooking(c *gin.Context) {
	var in models.BookingInput
	if !BindJSONOrError(c, &in) {
		return
	}
	booking, err := h.bookingService(c).Create(c.Request.Context(), caller(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, "Booking created successfully", booking)
}

// GET /api/bookings/me
func (h Handler) MyBookings(c *gin.Context) {
	bookings, err := h.bookingService(c).ListMine(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Bookings retrieved successfully", bookings)
}

// GET /api/bookings/:id
func (h Handler) GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookingService(c).Get(c.Request.Context(), caller(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Booking retrieved successfully", booking)
}

// PUT /api/bookings/:id/cancel
func (h Handler) CancelBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookingService(c).Cancel(c.Request.Context(), caller(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Booking cancelled successfully", booking)
}

// GET /api/admin/bookings?page=&limit=
func (h Handler) AdminListBookings(c *gin.Context) {
	bookings, page, err := h.bookingService(c).ListAll(c.Request.Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondPage(c, "Bookings retrieved successfully", bookings, page)
}
