package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	intdb "buspass/internal/db"
	"buspass/internal/domain"
	"buspass/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB { return pick(r.DB) }

const bookingColumns = `b.id, b.booking_code, b.user_id, b.bus_id, b.route_id, b.source_stop_id, b.destination_stop_id,
	b.seat_count, b.total_amount, b.journey_date, b.status, COALESCE(b.qr_data,''), b.created_at`

func scanBooking(sc interface{ Scan(...any) error }, extra ...any) (models.Booking, error) {
	var b models.Booking
	dest := []any{&b.ID, &b.BookingCode, &b.UserID, &b.BusID, &b.RouteID, &b.SourceStopID, &b.DestinationStopID,
		&b.SeatCount, &b.TotalAmount, &b.JourneyDate, &b.Status, &b.QRData, &b.CreatedAt}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// Create inserts a booking and stamps its QR payload with the new id.
func (r BookingRepository) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return models.Booking{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (booking_code, user_id, bus_id, route_id, source_stop_id, destination_stop_id,
			seat_count, total_amount, journey_date, status)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.BookingCode, b.UserID, b.BusID, b.RouteID, b.SourceStopID, b.DestinationStopID,
		b.SeatCount, b.TotalAmount, b.JourneyDate, b.Status)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking code collision"}
		}
		return models.Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking id: %w", err)
	}
	qr := strconv.FormatInt(id, 10)
	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET qr_data=? WHERE id=?`, qr, id); err != nil {
		return models.Booking{}, fmt.Errorf("set qr data: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Booking{}, fmt.Errorf("commit booking: %w", err)
	}
	b.ID = id
	b.QRData = qr
	return b, nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	b, err := scanBooking(r.db().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	if err != nil {
		return models.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// GetDetail loads a booking with display names for bus, route, stops and passenger.
func (r BookingRepository) GetDetail(ctx context.Context, id int64) (models.BookingDetail, error) {
	var d models.BookingDetail
	row := r.db().QueryRowContext(ctx, `
		SELECT `+bookingColumns+`,
			COALESCE(bu.bus_number,''), COALESCE(rt.name,''), COALESCE(src.name,''), COALESCE(dst.name,''), COALESCE(u.name,'')
		FROM bookings b
		LEFT JOIN buses bu ON bu.id = b.bus_id
		LEFT JOIN routes rt ON rt.id = b.route_id
		LEFT JOIN stops src ON src.id = b.source_stop_id
		LEFT JOIN stops dst ON dst.id = b.destination_stop_id
		LEFT JOIN users u ON u.id = b.user_id
		WHERE b.id=? LIMIT 1`, id)
	b, err := scanBooking(row, &d.BusNumber, &d.RouteName, &d.SourceName, &d.DestinationName, &d.PassengerName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BookingDetail{}, domain.NotFoundError{Resource: "booking"}
	}
	if err != nil {
		return models.BookingDetail{}, fmt.Errorf("get booking detail: %w", err)
	}
	d.Booking = b
	return d, nil
}

func (r BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.user_id=? ORDER BY b.created_at DESC, b.id DESC`, userID)
}

// ListPaged returns one page of all bookings, newest first, plus the total count.
func (r BookingRepository) ListPaged(ctx context.Context, page, limit int) ([]models.Booking, int, error) {
	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	items, err := r.query(ctx,
		`SELECT `+bookingColumns+` FROM bookings b ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	if _, err := r.db().ExecContext(ctx, `UPDATE bookings SET status=? WHERE id=?`, status, id); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

// CountByStatus returns booking counts keyed by status.
func (r BookingRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan booking count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r BookingRepository) query(ctx context.Context, q string, args ...any) ([]models.Booking, error) {
	rows, err := r.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
