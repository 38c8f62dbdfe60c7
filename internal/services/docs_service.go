package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
	"buspass/internal/logger"
	"buspass/internal/repositories"
	"buspass/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders booking e-tickets and invoices as PDF.
type DocsService struct {
	BookingRepo repositories.BookingRepository
	RequestID   string
	Loader      func(context.Context, int64) (models.BookingDetail, error)
}

func (s DocsService) GenerateETicket(ctx context.Context, rc domain.RequestContext, bookingID int64) ([]byte, string, error) {
	d, err := s.load(ctx, rc, bookingID)
	if err != nil {
		return nil, "", err
	}
	if d.Status == models.BookingCancelled {
		return nil, "", domain.ValidationError{Field: "status", Msg: "Cancelled bookings have no ticket"}
	}
	logger.Event(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("booking_id=%d", bookingID))
	return buildETicketPDF(d)
}

func (s DocsService) GenerateInvoice(ctx context.Context, rc domain.RequestContext, bookingID int64) ([]byte, string, error) {
	d, err := s.load(ctx, rc, bookingID)
	if err != nil {
		return nil, "", err
	}
	logger.Event(s.RequestID, "docs", "generate_invoice", fmt.Sprintf("booking_id=%d", bookingID))
	return buildInvoicePDF(d)
}

func (s DocsService) load(ctx context.Context, rc domain.RequestContext, bookingID int64) (models.BookingDetail, error) {
	if bookingID <= 0 {
		return models.BookingDetail{}, domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}
	var (
		d   models.BookingDetail
		err error
	)
	if s.Loader != nil {
		d, err = s.Loader(ctx, bookingID)
	} else {
		d, err = s.BookingRepo.GetDetail(ctx, bookingID)
	}
	if err != nil {
		return models.BookingDetail{}, err
	}
	if d.UserID != rc.UserID && !rc.IsAdmin() {
		return models.BookingDetail{}, domain.ForbiddenError{Msg: "Not authorized to access this booking"}
	}
	return d, nil
}

func buildETicketPDF(d models.BookingDetail) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BUS E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Code   : %s", safe(d.BookingCode, "-")),
		fmt.Sprintf("Passenger      : %s", safe(d.PassengerName, "-")),
		fmt.Sprintf("Bus            : %s", safe(d.BusNumber, "-")),
		fmt.Sprintf("Route          : %s", safe(d.RouteName, "-")),
		fmt.Sprintf("From / To      : %s -> %s", safe(d.SourceName, "-"), safe(d.DestinationName, "-")),
		fmt.Sprintf("Journey Date   : %s", utils.FormatDate(d.JourneyDate)),
		fmt.Sprintf("Seats          : %d", d.SeatCount),
		fmt.Sprintf("Total Paid     : %s", utils.FormatRupees(d.TotalAmount)),
		fmt.Sprintf("Status         : %s", strings.ToUpper(d.Status)),
		fmt.Sprintf("QR Data        : %s", safe(d.QRData, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Show this ticket and the booking code to the conductor when boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(d.BookingCode))
	return buf.Bytes(), filename, nil
}

func buildInvoicePDF(d models.BookingDetail) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	invNo := fmt.Sprintf("INV-%s", safeFilenamePart(d.BookingCode))
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No  : "+invNo)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued      : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Name   : %s", safe(d.PassengerName, "-")))
	pdf.Ln(10)

	desc := fmt.Sprintf("Bus ticket %s -> %s on %s, bus %s",
		safe(d.SourceName, "-"), safe(d.DestinationName, "-"),
		utils.FormatDate(d.JourneyDate), safe(d.BusNumber, "-"))

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Details:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "1) "+desc, "", "", false)
	pdf.Ln(2)

	perSeat := 0.0
	if d.SeatCount > 0 {
		perSeat = d.TotalAmount / float64(d.SeatCount)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Price per seat: %s x %d", utils.FormatRupees(perSeat), d.SeatCount))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatRupees(d.TotalAmount))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("INVOICE_%s.pdf", safeFilenamePart(d.BookingCode))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
