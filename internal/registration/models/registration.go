package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"raceday/internal/locale"
	"raceday/internal/race"
	dErrors "raceday/pkg/domain-errors"
)

// DateOfBirthLayout is the accepted dateOfBirth format.
const DateOfBirthLayout = "2006-01-02"

// FormData is a registration as submitted by the site.
type FormData struct {
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	Country               string `json:"country"`
	DateOfBirth           string `json:"dateOfBirth"`
	RaceCategory          string `json:"raceCategory"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	TermsAccepted         bool   `json:"termsAccepted"`
}

// ValidRegistration is FormData that passed validation, normalized.
// Email is lowercased; Country is uppercased.
type ValidRegistration struct {
	FirstName             string
	LastName              string
	Email                 string
	Phone                 string
	Country               string
	DateOfBirth           time.Time
	RaceCategory          race.Category
	EmergencyContactName  string
	EmergencyContactPhone string
	TermsAccepted         bool
}

// NormalizeEmail is the canonical form used for the (email, category) natural key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Record is a persisted registration.
//
// Invariants:
//   - (Email, RaceCategory) is unique
//   - BibNumber is unique within RaceCategory and never reused
//   - ConfirmationStatus reaches sent only when TermsAccepted is true
type Record struct {
	ID                    uuid.UUID          `json:"id"`
	FirstName             string             `json:"firstName"`
	LastName              string             `json:"lastName"`
	Email                 string             `json:"email"`
	Phone                 string             `json:"phone"`
	Country               string             `json:"country"`
	DateOfBirth           time.Time          `json:"dateOfBirth"`
	RaceCategory          race.Category      `json:"raceCategory"`
	EmergencyContactName  string             `json:"emergencyContactName"`
	EmergencyContactPhone string             `json:"emergencyContactPhone"`
	TermsAccepted         bool               `json:"termsAccepted"`
	Locale                locale.Locale      `json:"locale"`
	ConfirmationStatus    ConfirmationStatus `json:"confirmationStatus"`
	BibNumber             *int               `json:"bibNumber,omitempty"`
	CreatedAt             time.Time          `json:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt"`
}

// NewRecord builds a pending record from a valid registration. The store
// assigns the bib number.
func NewRecord(id uuid.UUID, valid ValidRegistration, l locale.Locale, now time.Time) *Record {
	return &Record{
		ID:                    id,
		FirstName:             valid.FirstName,
		LastName:              valid.LastName,
		Email:                 valid.Email,
		Phone:                 valid.Phone,
		Country:               valid.Country,
		DateOfBirth:           valid.DateOfBirth,
		RaceCategory:          valid.RaceCategory,
		EmergencyContactName:  valid.EmergencyContactName,
		EmergencyContactPhone: valid.EmergencyContactPhone,
		TermsAccepted:         valid.TermsAccepted,
		Locale:                l,
		ConfirmationStatus:    ConfirmationPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// CanApplyConfirmation checks that the record may move to status.
func (r *Record) CanApplyConfirmation(status ConfirmationStatus) error {
	if !r.ConfirmationStatus.CanTransitionTo(status) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"confirmation status cannot move from "+string(r.ConfirmationStatus)+" to "+string(status))
	}
	if status == ConfirmationSent && !r.TermsAccepted {
		return dErrors.New(dErrors.CodeInvariantViolation, "confirmation cannot be sent before terms are accepted")
	}
	return nil
}

// ApplyConfirmation records the dispatch result. Call CanApplyConfirmation first.
func (r *Record) ApplyConfirmation(status ConfirmationStatus, now time.Time) {
	r.ConfirmationStatus = status
	r.UpdatedAt = now
}

// Clone returns a deep copy safe to hand out of a store.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.BibNumber != nil {
		bib := *r.BibNumber
		c.BibNumber = &bib
	}
	return &c
}
