package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intdb "buspass/internal/db"
	"buspass/internal/domain"
	"buspass/internal/domain/models"
)

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB { return pick(r.DB) }

const routeColumns = `id, name, operational_start_time, operational_end_time, distance_km, estimated_duration, average_stop_time, is_active`

func scanRoute(sc interface{ Scan(...any) error }) (models.Route, error) {
	var (
		rt           models.Route
		dist         sql.NullFloat64
		est, avgStop sql.NullInt64
	)
	if err := sc.Scan(&rt.ID, &rt.Name, &rt.OperationalStartTime, &rt.OperationalEndTime, &dist, &est, &avgStop, &rt.IsActive); err != nil {
		return models.Route{}, err
	}
	rt.DistanceKm = nullFloat(dist)
	rt.EstimatedDuration = nullInt(est)
	rt.AverageStopTime = nullInt(avgStop)
	rt.Stops = []models.Stop{}
	return rt, nil
}

// ListRoutesWithStops returns every route with its stops in position order.
// Routes come back in id order, which is the storage order the matcher preserves.
func (r RouteRepository) ListRoutesWithStops(ctx context.Context) ([]models.Route, error) {
	routes, err := r.listRoutes(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	if err := r.attachStops(ctx, routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// ListByIDs loads the given routes with stops, keyed by id.
func (r RouteRepository) ListByIDs(ctx context.Context, ids []int64) (map[int64]models.Route, error) {
	out := map[int64]models.Route{}
	if len(ids) == 0 {
		return out, nil
	}
	args := int64Args(ids)
	routes, err := r.listRoutes(ctx, `SELECT `+routeColumns+` FROM routes WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id ASC`, args...)
	if err != nil {
		return nil, err
	}
	if err := r.attachStops(ctx, routes); err != nil {
		return nil, err
	}
	for _, rt := range routes {
		out[rt.ID] = rt
	}
	return out, nil
}

func (r RouteRepository) GetByID(ctx context.Context, id int64) (models.Route, error) {
	rt, err := scanRoute(r.db().QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Route{}, domain.NotFoundError{Resource: "route"}
	}
	if err != nil {
		return models.Route{}, fmt.Errorf("get route: %w", err)
	}
	routes := []models.Route{rt}
	if err := r.attachStops(ctx, routes); err != nil {
		return models.Route{}, err
	}
	return routes[0], nil
}

func (r RouteRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM routes WHERE id=?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check route: %w", err)
	}
	return n > 0, nil
}

func (r RouteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM routes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count routes: %w", err)
	}
	return n, nil
}

func (r RouteRepository) listRoutes(ctx context.Context, q string, args ...any) ([]models.Route, error) {
	rows, err := r.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routes: %w", err)
	}
	return out, nil
}

func (r RouteRepository) attachStops(ctx context.Context, routes []models.Route) error {
	if len(routes) == 0 {
		return nil
	}
	ids := make([]int64, len(routes))
	index := make(map[int64]int, len(routes))
	for i, rt := range routes {
		ids[i] = rt.ID
		index[rt.ID] = i
	}

	rows, err := r.db().QueryContext(ctx, `
		SELECT rs.route_id, s.id, s.name, COALESCE(s.address,''), s.lat, s.lng, s.is_active
		FROM route_stops rs
		JOIN stops s ON s.id = rs.stop_id
		WHERE rs.route_id IN (`+placeholders(len(ids))+`)
		ORDER BY rs.route_id ASC, rs.position ASC`, int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("query route stops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			routeID  int64
			s        models.Stop
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&routeID, &s.ID, &s.Name, &s.Address, &lat, &lng, &s.IsActive); err != nil {
			return fmt.Errorf("scan route stop: %w", err)
		}
		if lat.Valid && lng.Valid {
			s.Location = &models.Location{Lat: lat.Float64, Lng: lng.Float64}
		}
		if i, ok := index[routeID]; ok {
			routes[i].Stops = append(routes[i].Stops, s)
		}
	}
	return rows.Err()
}

// Create inserts the route and its stop sequence in one transaction.
func (r RouteRepository) Create(ctx context.Context, rt models.Route, stopIDs []int64) (int64, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO routes (name, operational_start_time, operational_end_time, distance_km, estimated_duration, average_stop_time, is_active)
		VALUES (?,?,?,?,?,?,?)`,
		rt.Name, rt.OperationalStartTime, rt.OperationalEndTime,
		intdb.NullIfZero(rt.DistanceKm), intdb.NullIfZero(rt.EstimatedDuration), intdb.NullIfZero(rt.AverageStopTime), rt.IsActive)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "route", Msg: "route with this name already exists"}
		}
		return 0, fmt.Errorf("insert route: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("route id: %w", err)
	}
	if err := writeRouteStops(ctx, tx, id, stopIDs); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit route: %w", err)
	}
	return id, nil
}

// Update rewrites route fields; a non-nil stopIDs replaces the stop sequence.
func (r RouteRepository) Update(ctx context.Context, rt models.Route, stopIDs []int64) error {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE routes SET name=?, operational_start_time=?, operational_end_time=?,
			distance_km=?, estimated_duration=?, average_stop_time=?, is_active=?
		WHERE id=?`,
		rt.Name, rt.OperationalStartTime, rt.OperationalEndTime,
		intdb.NullIfZero(rt.DistanceKm), intdb.NullIfZero(rt.EstimatedDuration), intdb.NullIfZero(rt.AverageStopTime), rt.IsActive, rt.ID)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "route", Msg: "route with this name already exists"}
		}
		return fmt.Errorf("update route: %w", err)
	}
	if stopIDs != nil {
		if err := writeRouteStops(ctx, tx, rt.ID, stopIDs); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit route: %w", err)
	}
	return nil
}

// ReplaceStops swaps the stop sequence of an existing route.
func (r RouteRepository) ReplaceStops(ctx context.Context, routeID int64, stopIDs []int64) error {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeRouteStops(ctx, tx, routeID, stopIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit route stops: %w", err)
	}
	return nil
}

func (r RouteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM routes WHERE id=?`, id)
	if err != nil {
		if intdb.IsForeignKeyViolation(err) {
			return domain.ConflictError{Resource: "route", Msg: "route has buses assigned"}
		}
		return fmt.Errorf("delete route: %w", err)
	}
	return expectAffected(res, "route")
}

func writeRouteStops(ctx context.Context, q querier, routeID int64, stopIDs []int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM route_stops WHERE route_id=?`, routeID); err != nil {
		return fmt.Errorf("clear route stops: %w", err)
	}
	for pos, stopID := range stopIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO route_stops (route_id, stop_id, position) VALUES (?,?,?)`,
			routeID, stopID, pos); err != nil {
			if intdb.IsDuplicateKey(err) {
				return domain.ValidationError{Field: "stops", Msg: "a stop can appear only once per route"}
			}
			return fmt.Errorf("insert route stop: %w", err)
		}
	}
	return nil
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
