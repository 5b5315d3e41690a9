package models

import "strings"

// Reason codes carried by ValidationError.
const (
	ReasonRequired         = "required"
	ReasonInvalidEmail     = "invalid_email"
	ReasonInvalidCategory  = "invalid_category"
	ReasonTermsNotAccepted = "terms_not_accepted"
	ReasonInvalidDate      = "invalid_date"
	ReasonDateNotInPast    = "date_not_in_past"
)

// ValidationError is one user-correctable problem with a submitted field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationErrors is the full list reported for one submission.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// HasField reports whether any error references field.
func (errs ValidationErrors) HasField(field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
