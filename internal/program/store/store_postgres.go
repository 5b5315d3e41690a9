package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"raceday/internal/locale"
	"raceday/internal/program/models"
	txcontext "raceday/pkg/platform/tx"
)

// PostgresStore reads the program from the program_events table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed program store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, `
		SELECT id, event_date, start_time, end_time, title, description
		FROM program_events
	`)
	if err != nil {
		return nil, fmt.Errorf("list program events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			e           models.Event
			endTime     sql.NullTime
			title, desc []byte
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.StartTime, &endTime, &title, &desc); err != nil {
			return nil, fmt.Errorf("scan program event: %w", err)
		}
		if endTime.Valid {
			t := endTime.Time
			e.EndTime = &t
		}
		if e.Title, err = decodeText(title); err != nil {
			return nil, fmt.Errorf("program event %s title: %w", e.ID, err)
		}
		if e.Description, err = decodeText(desc); err != nil {
			return nil, fmt.Errorf("program event %s description: %w", e.ID, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate program events: %w", err)
	}
	return events, nil
}

// Upsert writes one event, replacing any event with the same id.
func (s *PostgresStore) Upsert(ctx context.Context, e models.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	title, err := json.Marshal(e.Title)
	if err != nil {
		return fmt.Errorf("marshal title: %w", err)
	}
	desc, err := json.Marshal(e.Description)
	if err != nil {
		return fmt.Errorf("marshal description: %w", err)
	}
	var endTime sql.NullTime
	if e.EndTime != nil {
		endTime = sql.NullTime{Time: *e.EndTime, Valid: true}
	}
	_, err = txcontext.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO program_events (id, event_date, start_time, end_time, title, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			event_date = EXCLUDED.event_date,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			title = EXCLUDED.title,
			description = EXCLUDED.description
	`, e.ID, e.Date.Format(models.DateLayout), e.StartTime.UTC().Truncate(time.Microsecond), endTime, title, desc)
	if err != nil {
		return fmt.Errorf("upsert program event: %w", err)
	}
	return nil
}

// SeedIfEmpty writes events in one transaction when the table holds none.
// It reports whether anything was written.
func (s *PostgresStore) SeedIfEmpty(ctx context.Context, events []models.Event) (bool, error) {
	if err := models.ValidateEvents(events); err != nil {
		return false, err
	}
	var seeded bool
	err := txcontext.RunInTx(ctx, s.db, 0, func(ctx context.Context) error {
		var n int
		if err := txcontext.Use(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM program_events`).Scan(&n); err != nil {
			return fmt.Errorf("count program events: %w", err)
		}
		if n > 0 {
			return nil
		}
		for _, e := range events {
			if err := s.Upsert(ctx, e); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	return seeded, err
}

func decodeText(raw []byte) (locale.Text, error) {
	t := locale.Text{}
	if len(raw) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	return t, nil
}
