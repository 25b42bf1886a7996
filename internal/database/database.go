package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bandroom/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB persists the reservation document in SQLite. The write path mirrors the
// remote-store contract: Replace swaps the entire document in one
// transaction, there are no row-level updates.
type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	logger.Info().Str("path", path).Msg("База данных инициализирована")
	return &DB{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            date TEXT NOT NULL,
            time_slot TEXT NOT NULL,
            band_name TEXT NOT NULL,
            created_at INTEGER NOT NULL
        )`,
		// Slot lists are stored as JSON arrays to keep their stored order
		// verbatim through a round trip.
		`CREATE TABLE IF NOT EXISTS rules (
            day_of_week INTEGER PRIMARY KEY,
            slots TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS special_schedules (
            date TEXT PRIMARY KEY,
            slots TEXT NOT NULL,
            is_disabled BOOLEAN NOT NULL DEFAULT 0
        )`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Load reads the complete document. An empty database yields an empty
// snapshot, not an error.
func (d *DB) Load(ctx context.Context) (models.Snapshot, error) {
	var snapshot models.Snapshot

	rows, err := d.db.QueryContext(ctx, `SELECT id, date, time_slot, band_name, created_at FROM bookings ORDER BY created_at, id`)
	if err != nil {
		return snapshot, fmt.Errorf("failed to load bookings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.Date, &b.TimeSlot, &b.BandName, &b.CreatedAt); err != nil {
			return snapshot, fmt.Errorf("failed to scan booking: %w", err)
		}
		snapshot.Bookings = append(snapshot.Bookings, b)
	}
	if err := rows.Err(); err != nil {
		return snapshot, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	ruleRows, err := d.db.QueryContext(ctx, `SELECT day_of_week, slots FROM rules ORDER BY day_of_week`)
	if err != nil {
		return snapshot, fmt.Errorf("failed to load rules: %w", err)
	}
	defer ruleRows.Close()
	for ruleRows.Next() {
		var rule models.AvailabilityRule
		var rawSlots string
		if err := ruleRows.Scan(&rule.DayOfWeek, &rawSlots); err != nil {
			return snapshot, fmt.Errorf("failed to scan rule: %w", err)
		}
		if err := json.Unmarshal([]byte(rawSlots), &rule.Slots); err != nil {
			return snapshot, fmt.Errorf("failed to decode rule slots: %w", err)
		}
		snapshot.Rules = append(snapshot.Rules, rule)
	}
	if err := ruleRows.Err(); err != nil {
		return snapshot, fmt.Errorf("failed to iterate rules: %w", err)
	}

	specialRows, err := d.db.QueryContext(ctx, `SELECT date, slots, is_disabled FROM special_schedules ORDER BY date`)
	if err != nil {
		return snapshot, fmt.Errorf("failed to load special schedules: %w", err)
	}
	defer specialRows.Close()
	for specialRows.Next() {
		var sp models.SpecialSchedule
		var rawSlots string
		if err := specialRows.Scan(&sp.Date, &rawSlots, &sp.IsDisabled); err != nil {
			return snapshot, fmt.Errorf("failed to scan special schedule: %w", err)
		}
		if err := json.Unmarshal([]byte(rawSlots), &sp.Slots); err != nil {
			return snapshot, fmt.Errorf("failed to decode special slots: %w", err)
		}
		snapshot.SpecialSchedules = append(snapshot.SpecialSchedules, sp)
	}
	if err := specialRows.Err(); err != nil {
		return snapshot, fmt.Errorf("failed to iterate special schedules: %w", err)
	}

	return snapshot, nil
}

// Replace overwrites the entire document in one transaction. The last
// completed Replace wins; earlier content is discarded without merge.
func (d *DB) Replace(ctx context.Context, snapshot models.Snapshot) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"bookings", "rules", "special_schedules"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, b := range snapshot.Bookings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bookings (id, date, time_slot, band_name, created_at) VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.Date, b.TimeSlot, b.BandName, b.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}
	}

	for _, rule := range snapshot.Rules {
		slots, err := encodeSlots(rule.Slots)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO rules (day_of_week, slots) VALUES (?, ?)`,
			rule.DayOfWeek, slots)
		if err != nil {
			return fmt.Errorf("failed to insert rule: %w", err)
		}
	}

	for _, sp := range snapshot.SpecialSchedules {
		slots, err := encodeSlots(sp.Slots)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO special_schedules (date, slots, is_disabled) VALUES (?, ?, ?)`,
			sp.Date, slots, sp.IsDisabled)
		if err != nil {
			return fmt.Errorf("failed to insert special schedule: %w", err)
		}
	}

	return tx.Commit()
}

func encodeSlots(slots []string) (string, error) {
	if slots == nil {
		slots = []string{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return "", fmt.Errorf("failed to encode slots: %w", err)
	}
	return string(raw), nil
}

func (d *DB) PingContext(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}
