// Package validator checks submitted registration forms.
package validator

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"raceday/internal/race"
	"raceday/internal/registration/models"
)

// maxEmailLength is the RFC 5321 path limit.
const maxEmailLength = 254

// Field names as they appear in the submitted JSON.
const (
	FieldFirstName             = "firstName"
	FieldLastName              = "lastName"
	FieldEmail                 = "email"
	FieldPhone                 = "phone"
	FieldCountry               = "country"
	FieldDateOfBirth           = "dateOfBirth"
	FieldRaceCategory          = "raceCategory"
	FieldEmergencyContactName  = "emergencyContactName"
	FieldEmergencyContactPhone = "emergencyContactPhone"
	FieldTermsAccepted         = "termsAccepted"
)

// Validate checks input and returns either a normalized registration or every
// violation found, in check order. It has no side effects; now is only used to
// decide whether dateOfBirth is in the past.
func Validate(input models.FormData, now time.Time) (models.ValidRegistration, models.ValidationErrors) {
	var errs models.ValidationErrors

	required := []struct {
		field string
		value string
	}{
		{FieldFirstName, input.FirstName},
		{FieldLastName, input.LastName},
		{FieldEmail, input.Email},
		{FieldPhone, input.Phone},
		{FieldCountry, input.Country},
		{FieldDateOfBirth, input.DateOfBirth},
		{FieldRaceCategory, input.RaceCategory},
		{FieldEmergencyContactName, input.EmergencyContactName},
		{FieldEmergencyContactPhone, input.EmergencyContactPhone},
	}
	missing := make(map[string]bool, len(required))
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, models.ValidationError{Field: f.field, Reason: models.ReasonRequired})
			missing[f.field] = true
		}
	}

	email := models.NormalizeEmail(input.Email)
	if !missing[FieldEmail] && !IsEmail(email) {
		errs = append(errs, models.ValidationError{Field: FieldEmail, Reason: models.ReasonInvalidEmail})
	}

	category, ok := race.ParseCategory(input.RaceCategory)
	if !missing[FieldRaceCategory] && !ok {
		errs = append(errs, models.ValidationError{Field: FieldRaceCategory, Reason: models.ReasonInvalidCategory})
	}

	if !input.TermsAccepted {
		errs = append(errs, models.ValidationError{Field: FieldTermsAccepted, Reason: models.ReasonTermsNotAccepted})
	}

	var dob time.Time
	if !missing[FieldDateOfBirth] {
		parsed, err := time.Parse(models.DateOfBirthLayout, strings.TrimSpace(input.DateOfBirth))
		switch {
		case err != nil:
			errs = append(errs, models.ValidationError{Field: FieldDateOfBirth, Reason: models.ReasonInvalidDate})
		case !parsed.Before(startOfDay(now)):
			errs = append(errs, models.ValidationError{Field: FieldDateOfBirth, Reason: models.ReasonDateNotInPast})
		default:
			dob = parsed
		}
	}

	if len(errs) > 0 {
		return models.ValidRegistration{}, errs
	}

	return models.ValidRegistration{
		FirstName:             strings.TrimSpace(input.FirstName),
		LastName:              strings.TrimSpace(input.LastName),
		Email:                 email,
		Phone:                 strings.TrimSpace(input.Phone),
		Country:               strings.ToUpper(strings.TrimSpace(input.Country)),
		DateOfBirth:           dob,
		RaceCategory:          category,
		EmergencyContactName:  strings.TrimSpace(input.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(input.EmergencyContactPhone),
		TermsAccepted:         true,
	}, nil
}

// IsEmail reports whether s is an acceptable address. s should already be trimmed.
func IsEmail(s string) bool {
	return len(s) <= maxEmailLength && govalidator.IsEmail(s)
}

// startOfDay is midnight of t's UTC calendar day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
