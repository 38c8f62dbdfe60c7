package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intdb "buspass/internal/db"
	"buspass/internal/domain"
	"buspass/internal/domain/models"
)

type StopRepository struct {
	DB *sql.DB
}

func (r StopRepository) db() *sql.DB { return pick(r.DB) }

const stopColumns = `id, name, COALESCE(address,''), lat, lng, is_active`

func scanStop(sc interface{ Scan(...any) error }) (models.Stop, error) {
	var (
		s        models.Stop
		lat, lng sql.NullFloat64
	)
	if err := sc.Scan(&s.ID, &s.Name, &s.Address, &lat, &lng, &s.IsActive); err != nil {
		return models.Stop{}, err
	}
	if lat.Valid && lng.Valid {
		s.Location = &models.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	return s, nil
}

func (r StopRepository) List(ctx context.Context) ([]models.Stop, error) {
	return r.query(ctx, `SELECT `+stopColumns+` FROM stops ORDER BY name ASC`)
}

// Search matches stop names case-insensitively.
func (r StopRepository) Search(ctx context.Context, term string) ([]models.Stop, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	return r.query(ctx, `SELECT `+stopColumns+` FROM stops WHERE LOWER(name) LIKE ? ORDER BY name ASC`, like)
}

func (r StopRepository) query(ctx context.Context, q string, args ...any) ([]models.Stop, error) {
	rows, err := r.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query stops: %w", err)
	}
	defer rows.Close()

	out := []models.Stop{}
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r StopRepository) GetByID(ctx context.Context, id int64) (models.Stop, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+stopColumns+` FROM stops WHERE id=? LIMIT 1`, id)
	s, err := scanStop(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stop{}, domain.NotFoundError{Resource: "stop"}
	}
	if err != nil {
		return models.Stop{}, fmt.Errorf("get stop: %w", err)
	}
	return s, nil
}

// CountExisting returns how many of ids exist.
func (r StopRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM stops WHERE id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stops: %w", err)
	}
	return n, nil
}

func (r StopRepository) Create(ctx context.Context, s models.Stop) (int64, error) {
	lat, lng := locationArgs(s.Location)
	res, err := r.db().ExecContext(ctx,
		`INSERT INTO stops (name, address, lat, lng, is_active) VALUES (?,?,?,?,?)`,
		s.Name, intdb.NullIfEmpty(s.Address), lat, lng, s.IsActive)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "stop", Msg: "stop with this name already exists"}
		}
		return 0, fmt.Errorf("insert stop: %w", err)
	}
	return res.LastInsertId()
}

func (r StopRepository) Update(ctx context.Context, s models.Stop) error {
	lat, lng := locationArgs(s.Location)
	_, err := r.db().ExecContext(ctx,
		`UPDATE stops SET name=?, address=?, lat=?, lng=?, is_active=? WHERE id=?`,
		s.Name, intdb.NullIfEmpty(s.Address), lat, lng, s.IsActive, s.ID)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "stop", Msg: "stop with this name already exists"}
		}
		return fmt.Errorf("update stop: %w", err)
	}
	return nil
}

func (r StopRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM stops`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stops: %w", err)
	}
	return n, nil
}

func (r StopRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM stops WHERE id=?`, id)
	if err != nil {
		if intdb.IsForeignKeyViolation(err) {
			return domain.ConflictError{Resource: "stop", Msg: "stop is used by a route"}
		}
		return fmt.Errorf("delete stop: %w", err)
	}
	return expectAffected(res, "stop")
}

func locationArgs(loc *models.Location) (any, any) {
	if loc == nil {
		return nil, nil
	}
	return loc.Lat, loc.Lng
}

// expectAffected maps zero affected rows to NotFound. Only used for deletes
// since MySQL reports 0 for no-op updates.
func expectAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
