package handlers

import (
	"net/http"

	"buspass/internal/http/middleware"
	"buspass/internal/repositories"
	"buspass/internal/services"

	"github.com/gin-gonic/gin"
)

func (h Handler) docsService(c *gin.Context) services.DocsService {
	return services.DocsService{
		BookingRepo: repositories.BookingRepository{DB: h.DB},
		RequestID:   middleware.GetRequestID(c),
	}
}

// GET /api/bookings/:id/ticket returns the e-ticket inline.
func (h Handler) BookingTicketPDF(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := h.docsService(c).GenerateETicket(c.Request.Context(), caller(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writePDF(c, filename, pdfBytes)
}

// GET /api/bookings/:id/invoice returns the invoice inline.
func (h Handler) BookingInvoicePDF(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := h.docsService(c).GenerateInvoice(c.Request.Context(), caller(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writePDF(c, filename, pdfBytes)
}

func writePDF(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
