package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"raceday/internal/locale"
	"raceday/internal/race"
	"raceday/internal/registration/models"
	txcontext "raceday/pkg/platform/tx"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const selectRecord = `
	SELECT id, first_name, last_name, email, phone, country, date_of_birth,
		race_category, emergency_contact_name, emergency_contact_phone,
		terms_accepted, locale, confirmation_status, bib_number, created_at, updated_at
	FROM participants
`

// PostgresStore persists registrations in the participants table. Bib
// numbers come from race_bib_sequences; the UPDATE takes a row lock so
// concurrent inserts for one category serialize on it.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgres constructs a PostgreSQL-backed registration store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: txcontext.DefaultTimeout}
}

func (s *PostgresStore) Insert(ctx context.Context, valid models.ValidRegistration, l locale.Locale, now time.Time) (*models.Record, error) {
	rec := models.NewRecord(uuid.New(), valid, l, now)
	rec.Email = models.NormalizeEmail(valid.Email)

	err := txcontext.RunInTx(ctx, s.db, s.timeout, func(ctx context.Context) error {
		q := txcontext.Use(ctx, s.db)

		var bib int
		err := q.QueryRowContext(ctx, `
			UPDATE race_bib_sequences SET next_bib = next_bib + 1
			WHERE race_category = $1
			RETURNING next_bib - 1
		`, string(rec.RaceCategory)).Scan(&bib)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: unknown race category %q", ErrInvalidState, rec.RaceCategory)
		}
		if err != nil {
			return fmt.Errorf("allocate bib: %w", err)
		}
		rec.BibNumber = &bib

		_, err = q.ExecContext(ctx, `
			INSERT INTO participants (
				id, first_name, last_name, email, phone, country, date_of_birth,
				race_category, emergency_contact_name, emergency_contact_phone,
				terms_accepted, locale, confirmation_status, bib_number, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`, rec.ID, rec.FirstName, rec.LastName, rec.Email, rec.Phone, rec.Country,
			rec.DateOfBirth.Format(models.DateOfBirthLayout), string(rec.RaceCategory),
			rec.EmergencyContactName, rec.EmergencyContactPhone, rec.TermsAccepted,
			string(rec.Locale), string(rec.ConfirmationStatus), bib, rec.CreatedAt, rec.UpdatedAt)
		if isUniqueViolation(err) {
			return ErrAlreadyUsed
		}
		if err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) FindByEmailAndCategory(ctx context.Context, email string, category race.Category) (*models.Record, error) {
	row := txcontext.Use(ctx, s.db).QueryRowContext(ctx,
		selectRecord+` WHERE email = $1 AND race_category = $2`,
		models.NormalizeEmail(email), string(category))
	return scanRecord(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	row := txcontext.Use(ctx, s.db).QueryRowContext(ctx, selectRecord+` WHERE id = $1`, id)
	return scanRecord(row)
}

// UpdateConfirmationStatus locks the row, checks the transition and writes it.
func (s *PostgresStore) UpdateConfirmationStatus(ctx context.Context, id uuid.UUID, status models.ConfirmationStatus, now time.Time) error {
	return txcontext.RunInTx(ctx, s.db, s.timeout, func(ctx context.Context) error {
		q := txcontext.Use(ctx, s.db)
		rec, err := scanRecord(q.QueryRowContext(ctx, selectRecord+` WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if err := rec.CanApplyConfirmation(status); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		_, err = q.ExecContext(ctx, `
			UPDATE participants SET confirmation_status = $2, updated_at = $3 WHERE id = $1
		`, id, string(status), now)
		if err != nil {
			return fmt.Errorf("update confirmation status: %w", err)
		}
		return nil
	})
}

func scanRecord(row *sql.Row) (*models.Record, error) {
	var (
		rec                   models.Record
		category, loc, status string
		bib                   sql.NullInt64
	)
	err := row.Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.Email, &rec.Phone, &rec.Country,
		&rec.DateOfBirth, &category, &rec.EmergencyContactName, &rec.EmergencyContactPhone,
		&rec.TermsAccepted, &loc, &status, &bib, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan participant: %w", err)
	}
	rec.RaceCategory = race.Category(category)
	rec.Locale = locale.Locale(loc)
	rec.ConfirmationStatus = models.ConfirmationStatus(status)
	if bib.Valid {
		n := int(bib.Int64)
		rec.BibNumber = &n
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
