package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"buspass/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestBookingCreate_StampsQRData(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET qr_data=? WHERE id=?")).
		WithArgs("42", int64(42)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := BookingRepository{DB: conn}.Create(context.Background(), models.Booking{
		BookingCode: "BK-20240101-ABCD",
		UserID:      1,
		BusID:       2,
		SeatCount:   2,
		TotalAmount: 60,
		JourneyDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:      models.BookingConfirmed,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.ID != 42 || b.QRData != "42" {
		t.Fatalf("unexpected booking %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBookingGetByID_NotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings b WHERE b.id=?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = BookingRepository{DB: conn}.GetByID(context.Background(), 9)
	if err == nil || err.Error() != "booking not found" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBookingListPaged_UsesOffset(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(25))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT ? OFFSET ?")).
		WithArgs(int64(10), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := BookingRepository{DB: conn}.ListPaged(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("ListPaged: %v", err)
	}
	if total != 25 || len(items) != 0 {
		t.Fatalf("unexpected result total=%d items=%d", total, len(items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
