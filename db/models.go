package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"airbnb-cleaner/models"
)

// Run statuses
const (
	RunInProgress = "in_progress"
	RunDone       = "done"
	RunFailed     = "failed"
)

// Run represents one daily schedule computation
type Run struct {
	ID             string
	ReferenceDate  time.Time
	Trigger        string // "cron", "cli", "telegram"
	Status         string // "in_progress", "done", "failed"
	BlocksCount    int
	CheckoutsCount int
	CheckinsCount  int
	RejectedCount  int
	SheetName      sql.NullString
	Message        sql.NullString
	LastError      sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReplaceNicknames swaps the stored nickname table for listings, keeping their order
func (db *DB) ReplaceNicknames(ctx context.Context, listings []models.Listing) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM property_nicknames`); err != nil {
		return fmt.Errorf("failed to clear nicknames: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO property_nicknames (position, airbnb_name, internal_name, status)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, l := range listings {
		if _, err := stmt.ExecContext(ctx, i, l.AirbnbName, l.InternalName, l.Status); err != nil {
			return fmt.Errorf("failed to insert nickname %q: %w", l.AirbnbName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListNicknames returns the stored nickname table in its original order
func (db *DB) ListNicknames(ctx context.Context) ([]models.Listing, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT airbnb_name, internal_name, status
		FROM property_nicknames
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.AirbnbName, &l.InternalName, &l.Status); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// CreateRun records the start of a run
func (db *DB) CreateRun(ctx context.Context, runID string, reference time.Time, trigger string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO runs (id, reference_date, trigger, status)
		VALUES ($1, $2, $3, $4)
	`, runID, reference, trigger, RunInProgress)
	return err
}

// SaveSchedule stores the accepted reservations and rejected blocks of a run and its counts
func (db *DB) SaveSchedule(ctx context.Context, runID string, blocks int, schedule models.Schedule) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reservations (run_id, stay_type, guest_name, property_name, property_nickname,
			guest_count, checkin_date, checkout_date, raw_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, group := range [][]models.Reservation{schedule.Checkouts, schedule.Checkins} {
		for _, r := range group {
			_, err := stmt.ExecContext(ctx, runID, string(r.Type), r.GuestName, r.PropertyName, r.PropertyNickname,
				r.GuestCount, nullTime(r.CheckIn), nullTime(r.CheckOut), r.RawText)
			if err != nil {
				return fmt.Errorf("failed to insert reservation (guest=%s): %w", r.GuestName, err)
			}
		}
	}

	for _, rej := range schedule.Rejected {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rejected_blocks (run_id, block_index, reason, preview)
			VALUES ($1, $2, $3, $4)
		`, runID, rej.Index, rej.Reason, rej.Preview)
		if err != nil {
			return fmt.Errorf("failed to insert rejected block %d: %w", rej.Index, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE runs
		SET blocks_count = $1, checkouts_count = $2, checkins_count = $3, rejected_count = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
	`, blocks, len(schedule.Checkouts), len(schedule.Checkins), len(schedule.Rejected), runID)
	if err != nil {
		return fmt.Errorf("failed to update run counts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FinishRun marks a run done or failed. Empty sheetName, message or lastError are stored as NULL.
func (db *DB) FinishRun(ctx context.Context, runID, status, sheetName, message, lastError string) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE runs
		SET status = $1, sheet_name = $2, message = $3, last_error = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
	`, status, nullString(sheetName), nullString(message), nullString(lastError), runID)
	return err
}

// GetLastRun returns the most recent finished run for a reference date, or nil when there is none
func (db *DB) GetLastRun(ctx context.Context, reference time.Time) (*Run, error) {
	var run Run
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, reference_date, trigger, status, blocks_count, checkouts_count, checkins_count,
			rejected_count, sheet_name, message, last_error, created_at, updated_at
		FROM runs
		WHERE reference_date = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, reference, RunDone).Scan(
		&run.ID, &run.ReferenceDate, &run.Trigger, &run.Status, &run.BlocksCount, &run.CheckoutsCount,
		&run.CheckinsCount, &run.RejectedCount, &run.SheetName, &run.Message, &run.LastError,
		&run.CreatedAt, &run.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
