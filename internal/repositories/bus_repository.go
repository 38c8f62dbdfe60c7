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
	"buspass/internal/utils"
)

type BusRepository struct {
	DB *sql.DB
}

func (r BusRepository) db() *sql.DB { return pick(r.DB) }

func (r BusRepository) routes() RouteRepository { return RouteRepository{DB: r.DB} }

const busColumns = `id, bus_number, bus_type, capacity, route_id, fare, COALESCE(features,''), is_active`

func scanBus(sc interface{ Scan(...any) error }) (models.Bus, error) {
	var (
		b        models.Bus
		features string
	)
	if err := sc.Scan(&b.ID, &b.BusNumber, &b.BusType, &b.Capacity, &b.RouteID, &b.Fare, &features, &b.IsActive); err != nil {
		return models.Bus{}, err
	}
	b.Features = utils.SplitCSV(features)
	return b, nil
}

// FindActiveByRoutes returns active buses on routeIDs, each with its route and
// ordered stops resolved. An empty busTypes applies no type filter.
func (r BusRepository) FindActiveByRoutes(ctx context.Context, routeIDs []int64, busTypes []string) ([]models.Bus, error) {
	if len(routeIDs) == 0 {
		return []models.Bus{}, nil
	}
	where := []string{"route_id IN (" + placeholders(len(routeIDs)) + ")", "is_active = 1"}
	args := int64Args(routeIDs)
	if len(busTypes) > 0 {
		where = append(where, "bus_type IN ("+placeholders(len(busTypes))+")")
		for _, t := range busTypes {
			args = append(args, t)
		}
	}
	q := `SELECT ` + busColumns + ` FROM buses WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id ASC`
	return r.queryWithRoutes(ctx, q, args...)
}

// List returns all buses, optionally restricted to one route.
func (r BusRepository) List(ctx context.Context, routeID int64) ([]models.Bus, error) {
	if routeID > 0 {
		return r.queryWithRoutes(ctx, `SELECT `+busColumns+` FROM buses WHERE route_id=? ORDER BY id ASC`, routeID)
	}
	return r.queryWithRoutes(ctx, `SELECT `+busColumns+` FROM buses ORDER BY id ASC`)
}

func (r BusRepository) GetByID(ctx context.Context, id int64) (models.Bus, error) {
	b, err := scanBus(r.db().QueryRowContext(ctx, `SELECT `+busColumns+` FROM buses WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bus{}, domain.NotFoundError{Resource: "bus"}
	}
	if err != nil {
		return models.Bus{}, fmt.Errorf("get bus: %w", err)
	}
	rt, err := r.routes().GetByID(ctx, b.RouteID)
	if err != nil && !domain.IsNotFound(err) {
		return models.Bus{}, err
	}
	b.Route = rt
	return b, nil
}

func (r BusRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM buses WHERE is_active = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count buses: %w", err)
	}
	return n, nil
}

func (r BusRepository) Create(ctx context.Context, b models.Bus) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO buses (bus_number, bus_type, capacity, route_id, fare, features, is_active)
		VALUES (?,?,?,?,?,?,?)`,
		b.BusNumber, b.BusType, b.Capacity, b.RouteID, b.Fare, intdb.NullIfEmpty(utils.JoinCSV(b.Features)), b.IsActive)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "bus", Msg: "bus with this number already exists"}
		}
		return 0, fmt.Errorf("insert bus: %w", err)
	}
	return res.LastInsertId()
}

func (r BusRepository) Update(ctx context.Context, b models.Bus) error {
	_, err := r.db().ExecContext(ctx, `
		UPDATE buses SET bus_number=?, bus_type=?, capacity=?, route_id=?, fare=?, features=?, is_active=?
		WHERE id=?`,
		b.BusNumber, b.BusType, b.Capacity, b.RouteID, b.Fare, intdb.NullIfEmpty(utils.JoinCSV(b.Features)), b.IsActive, b.ID)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "bus", Msg: "bus with this number already exists"}
		}
		return fmt.Errorf("update bus: %w", err)
	}
	return nil
}

func (r BusRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM buses WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete bus: %w", err)
	}
	return expectAffected(res, "bus")
}

func (r BusRepository) queryWithRoutes(ctx context.Context, q string, args ...any) ([]models.Bus, error) {
	rows, err := r.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query buses: %w", err)
	}
	buses := []models.Bus{}
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan bus: %w", err)
		}
		buses = append(buses, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate buses: %w", err)
	}
	rows.Close()

	if len(buses) == 0 {
		return buses, nil
	}
	seen := map[int64]bool{}
	routeIDs := []int64{}
	for _, b := range buses {
		if !seen[b.RouteID] {
			seen[b.RouteID] = true
			routeIDs = append(routeIDs, b.RouteID)
		}
	}
	routes, err := r.routes().ListByIDs(ctx, routeIDs)
	if err != nil {
		return nil, err
	}
	for i := range buses {
		buses[i].Route = routes[buses[i].RouteID]
	}
	return buses, nil
}
