package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intdb "buspass/internal/db"
	"buspass/internal/domain"
	"buspass/internal/domain/models"
)

type PassApplicationRepository struct {
	DB *sql.DB
}

func (r PassApplicationRepository) db() *sql.DB { return pick(r.DB) }

const passColumns = `id, user_id, route_id, category, validity_months, aadhaar_number, aadhaar_verified,
	mobile, mobile_verified, status, amount, COALESCE(pass_code,''), valid_from, valid_until,
	COALESCE(admin_remarks,''), created_at`

func scanPass(sc interface{ Scan(...any) error }) (models.PassApplication, error) {
	var (
		p           models.PassApplication
		from, until sql.NullTime
	)
	err := sc.Scan(&p.ID, &p.UserID, &p.RouteID, &p.Category, &p.ValidityMonths, &p.AadhaarNumber, &p.AadhaarOK,
		&p.Mobile, &p.MobileVerified, &p.Status, &p.Amount, &p.PassCode, &from, &until,
		&p.AdminRemarks, &p.CreatedAt)
	if err != nil {
		return models.PassApplication{}, err
	}
	if from.Valid {
		t := from.Time
		p.ValidFrom = &t
	}
	if until.Valid {
		t := until.Time
		p.ValidUntil = &t
	}
	return p, nil
}

func (r PassApplicationRepository) Create(ctx context.Context, p models.PassApplication) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO pass_applications (user_id, route_id, category, validity_months, aadhaar_number, aadhaar_verified,
			mobile, mobile_verified, status, amount)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.UserID, p.RouteID, p.Category, p.ValidityMonths, p.AadhaarNumber, p.AadhaarOK,
		p.Mobile, p.MobileVerified, p.Status, p.Amount)
	if err != nil {
		return 0, fmt.Errorf("insert pass application: %w", err)
	}
	return res.LastInsertId()
}

func (r PassApplicationRepository) GetByID(ctx context.Context, id int64) (models.PassApplication, error) {
	p, err := scanPass(r.db().QueryRowContext(ctx, `SELECT `+passColumns+` FROM pass_applications WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PassApplication{}, domain.NotFoundError{Resource: "pass application"}
	}
	if err != nil {
		return models.PassApplication{}, fmt.Errorf("get pass application: %w", err)
	}
	return p, nil
}

func (r PassApplicationRepository) FindByCode(ctx context.Context, code string) (models.PassApplication, error) {
	p, err := scanPass(r.db().QueryRowContext(ctx, `SELECT `+passColumns+` FROM pass_applications WHERE pass_code=? LIMIT 1`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PassApplication{}, domain.NotFoundError{Resource: "pass"}
	}
	if err != nil {
		return models.PassApplication{}, fmt.Errorf("find pass: %w", err)
	}
	return p, nil
}

// HasOpen reports whether the user has an application still pending or in verification.
func (r PassApplicationRepository) HasOpen(ctx context.Context, userID int64) (bool, error) {
	var n int
	err := r.db().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pass_applications WHERE user_id=? AND status IN (?,?)`,
		userID, models.PassPending, models.PassVerification).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check open applications: %w", err)
	}
	return n > 0, nil
}

func (r PassApplicationRepository) ListByUser(ctx context.Context, userID int64) ([]models.PassApplication, error) {
	return r.query(ctx, `SELECT `+passColumns+` FROM pass_applications WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID)
}

// List returns all applications, optionally filtered by status.
func (r PassApplicationRepository) List(ctx context.Context, status string) ([]models.PassApplication, error) {
	if status != "" {
		return r.query(ctx, `SELECT `+passColumns+` FROM pass_applications WHERE status=? ORDER BY created_at DESC, id DESC`, status)
	}
	return r.query(ctx, `SELECT `+passColumns+` FROM pass_applications ORDER BY created_at DESC, id DESC`)
}

func (r PassApplicationRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM pass_applications WHERE status=?`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pass applications: %w", err)
	}
	return n, nil
}

// MarkMobileVerified flips the mobile flag and moves the application to verification.
func (r PassApplicationRepository) MarkMobileVerified(ctx context.Context, id int64) error {
	_, err := r.db().ExecContext(ctx,
		`UPDATE pass_applications SET mobile_verified=1, status=? WHERE id=?`, models.PassVerification, id)
	if err != nil {
		return fmt.Errorf("verify mobile: %w", err)
	}
	return nil
}

func (r PassApplicationRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	if _, err := r.db().ExecContext(ctx, `UPDATE pass_applications SET status=? WHERE id=?`, status, id); err != nil {
		return fmt.Errorf("update pass status: %w", err)
	}
	return nil
}

// Decide records an admin decision. Approval fields are stored only when code is non-empty.
func (r PassApplicationRepository) Decide(ctx context.Context, id int64, status, remarks, code string, from, until time.Time) error {
	var err error
	if code != "" {
		_, err = r.db().ExecContext(ctx, `
			UPDATE pass_applications SET status=?, admin_remarks=?, pass_code=?, valid_from=?, valid_until=?
			WHERE id=?`, status, intdb.NullIfEmpty(remarks), code, from, until, id)
	} else {
		_, err = r.db().ExecContext(ctx,
			`UPDATE pass_applications SET status=?, admin_remarks=? WHERE id=?`,
			status, intdb.NullIfEmpty(remarks), id)
	}
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "pass", Msg: "pass code collision"}
		}
		return fmt.Errorf("decide pass application: %w", err)
	}
	return nil
}

func (r PassApplicationRepository) query(ctx context.Context, q string, args ...any) ([]models.PassApplication, error) {
	rows, err := r.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query pass applications: %w", err)
	}
	defer rows.Close()

	out := []models.PassApplication{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pass application: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
