package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            user_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            role TEXT NOT NULL,
            contact TEXT,
            city TEXT,
            area TEXT,
            verified BOOLEAN NOT NULL DEFAULT 0,
            id_hash TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS service_profiles (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES profiles(user_id),
            service_type TEXT NOT NULL,
            bio TEXT,
            rating REAL NOT NULL DEFAULT 0,
            available BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS availability_templates (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            service_profile_id TEXT NOT NULL REFERENCES service_profiles(id),
            day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
            is_available BOOLEAN NOT NULL DEFAULT 1,
            start_hour INTEGER NOT NULL DEFAULT 8,
            end_hour INTEGER NOT NULL DEFAULT 20,
            slot_duration_minutes INTEGER NOT NULL DEFAULT 60,
            UNIQUE(service_profile_id, day_of_week)
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            booking_code TEXT NOT NULL UNIQUE COLLATE NOCASE,
            customer_id TEXT NOT NULL,
            provider_user_id TEXT NOT NULL,
            service_profile_id TEXT NOT NULL REFERENCES service_profiles(id),
            booking_date TEXT NOT NULL,
            time_slot TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            service_note TEXT,
            cancellation_reason TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS reviews (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            service_profile_id TEXT NOT NULL REFERENCES service_profiles(id),
            customer_id TEXT NOT NULL,
            rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
            comment TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// The write-time guard for slot exclusivity: at most one active
		// booking per (service_profile_id, booking_date, time_slot). A losing
		// concurrent writer hits this index, not a racy read-then-check.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot
            ON bookings(service_profile_id, booking_date, time_slot)
            WHERE status IN ('pending', 'confirmed')`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_customer ON bookings(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_provider ON bookings(provider_user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_profile_date ON bookings(service_profile_id, booking_date)`,
		`CREATE INDEX IF NOT EXISTS idx_service_profiles_type ON service_profiles(service_type)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_profile ON reviews(service_profile_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
