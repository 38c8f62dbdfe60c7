package db

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var schemaStatements = []struct {
	table string
	ddl   string
}{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(120) NOT NULL,
	email VARCHAR(160) NOT NULL UNIQUE,
	phone VARCHAR(20) NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'user',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`},
	{"stops", `
CREATE TABLE IF NOT EXISTS stops (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(150) NOT NULL UNIQUE,
	address VARCHAR(255) NULL,
	lat DOUBLE NULL,
	lng DOUBLE NULL,
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`},
	{"routes", `
CREATE TABLE IF NOT EXISTS routes (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(150) NOT NULL UNIQUE,
	operational_start_time VARCHAR(10) NOT NULL,
	operational_end_time VARCHAR(10) NOT NULL,
	distance_km DOUBLE NULL,
	estimated_duration INT NULL,
	average_stop_time INT NULL,
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`},
	{"route_stops", `
CREATE TABLE IF NOT EXISTS route_stops (
	route_id BIGINT NOT NULL,
	stop_id BIGINT NOT NULL,
	position INT NOT NULL,
	PRIMARY KEY (route_id, position),
	UNIQUE KEY uq_route_stop (route_id, stop_id),
	CONSTRAINT fk_route_stops_route FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
	CONSTRAINT fk_route_stops_stop FOREIGN KEY (stop_id) REFERENCES stops(id)
)`},
	{"buses", `
CREATE TABLE IF NOT EXISTS buses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	bus_number VARCHAR(40) NOT NULL UNIQUE,
	bus_type VARCHAR(20) NOT NULL,
	capacity INT NOT NULL,
	route_id BIGINT NOT NULL,
	fare DECIMAL(10,2) NOT NULL,
	features VARCHAR(255) NULL,
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_buses_route_active (route_id, is_active),
	CONSTRAINT fk_buses_route FOREIGN KEY (route_id) REFERENCES routes(id)
)`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_code VARCHAR(32) NOT NULL UNIQUE,
	user_id BIGINT NOT NULL,
	bus_id BIGINT NOT NULL,
	route_id BIGINT NOT NULL,
	source_stop_id BIGINT NOT NULL,
	destination_stop_id BIGINT NOT NULL,
	seat_count INT NOT NULL,
	total_amount DECIMAL(10,2) NOT NULL,
	journey_date DATE NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	qr_data VARCHAR(64) NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_bookings_user (user_id),
	INDEX idx_bookings_status (status)
)`},
	{"pass_applications", `
CREATE TABLE IF NOT EXISTS pass_applications (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	route_id BIGINT NOT NULL,
	category VARCHAR(20) NOT NULL,
	validity_months INT NOT NULL,
	aadhaar_number VARCHAR(12) NOT NULL,
	aadhaar_verified TINYINT(1) NOT NULL DEFAULT 0,
	mobile VARCHAR(10) NOT NULL,
	mobile_verified TINYINT(1) NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	amount DECIMAL(10,2) NOT NULL,
	pass_code VARCHAR(32) NULL UNIQUE,
	valid_from DATE NULL,
	valid_until DATE NULL,
	admin_remarks VARCHAR(255) NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_pass_user_status (user_id, status)
)`},
}

// schemaColumns were added after the first release. Tables created from
// older DDL get them through ALTER TABLE.
var schemaColumns = []struct {
	table  string
	column string
	ddl    string
}{
	{"routes", "average_stop_time", "ALTER TABLE routes ADD COLUMN average_stop_time INT NULL"},
	{"bookings", "qr_data", "ALTER TABLE bookings ADD COLUMN qr_data VARCHAR(64) NULL"},
	{"pass_applications", "admin_remarks", "ALTER TABLE pass_applications ADD COLUMN admin_remarks VARCHAR(255) NULL"},
}

// EnsureSchema creates missing tables and adds missing columns to existing ones.
// Existing data is left untouched.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range schemaStatements {
		if HasTable(conn, stmt.table) {
			if err := ensureColumns(ctx, conn, stmt.table); err != nil {
				return err
			}
			continue
		}
		if _, err := conn.ExecContext(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", stmt.table, err)
		}
		log.WithField("table", stmt.table).Info("table created")
	}
	return nil
}

func ensureColumns(ctx context.Context, conn *sql.DB, table string) error {
	for _, col := range schemaColumns {
		if col.table != table || HasColumn(conn, col.table, col.column) {
			continue
		}
		if _, err := conn.ExecContext(ctx, col.ddl); err != nil {
			return fmt.Errorf("add column %s.%s: %w", col.table, col.column, err)
		}
		log.WithFields(log.Fields{"table": col.table, "column": col.column}).Info("column added")
	}
	return nil
}
