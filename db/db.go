package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

const schemaName = "cleaner_helper"

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection
func NewDB() (*DB, error) {
	conn, err := sql.Open("postgres", connString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// connString reads DATABASE_URL, or builds a DSN from the DB_* variables
func connString() string {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		return connStr
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "cleaner_helper")
	password := getEnvOrDefault("DB_PASSWORD", "")
	dbname := getEnvOrDefault("DB_NAME", "cleaner_helper")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		host, port, user, password, dbname, sslmode, schemaName)
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema() error {
	_, err := db.conn.Exec(`CREATE SCHEMA IF NOT EXISTS ` + schemaName)
	if err != nil {
		// Permission denied usually means the schema was provisioned for us
		log.Printf("Note: Could not create schema (may already exist): %v\n", err)
	}

	_, err = db.conn.Exec(`SET search_path TO ` + schemaName)
	if err != nil {
		return fmt.Errorf("failed to set search path: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS property_nicknames (
			id SERIAL PRIMARY KEY,
			position INTEGER NOT NULL,
			airbnb_name TEXT NOT NULL,
			internal_name TEXT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'Listed',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create property_nicknames table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			reference_date DATE NOT NULL,
			trigger VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'in_progress',
			blocks_count INTEGER NOT NULL DEFAULT 0,
			checkouts_count INTEGER NOT NULL DEFAULT 0,
			checkins_count INTEGER NOT NULL DEFAULT 0,
			rejected_count INTEGER NOT NULL DEFAULT 0,
			sheet_name VARCHAR(255),
			message TEXT,
			last_error TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT valid_run_status CHECK (status IN ('in_progress', 'done', 'failed'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS reservations (
			id SERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			stay_type VARCHAR(10) NOT NULL,
			guest_name TEXT NOT NULL,
			property_name TEXT NOT NULL,
			property_nickname TEXT NOT NULL,
			guest_count INTEGER NOT NULL,
			checkin_date DATE,
			checkout_date DATE,
			raw_text TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT valid_stay_type CHECK (stay_type IN ('checkin', 'checkout'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create reservations table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS rejected_blocks (
			id SERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			block_index INTEGER NOT NULL,
			reason TEXT NOT NULL,
			preview TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create rejected_blocks table: %w", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_reference_date ON runs(reference_date)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on runs.reference_date: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_reservations_run_id ON reservations(run_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on reservations.run_id: %v\n", err)
	}

	return nil
}

// GetConn returns the underlying connection
func (db *DB) GetConn() *sql.DB {
	return db.conn
}
