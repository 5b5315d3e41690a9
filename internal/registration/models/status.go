package models

// ConfirmationStatus tracks the confirmation email of a record.
type ConfirmationStatus string

const (
	ConfirmationPending ConfirmationStatus = "pending"
	ConfirmationSent    ConfirmationStatus = "sent"
	ConfirmationFailed  ConfirmationStatus = "failed"
)

// CanTransitionTo reports whether s may move to next.
// pending moves once to sent or failed; failed may move to sent or stay
// failed after an explicit resend; sent is terminal.
func (s ConfirmationStatus) CanTransitionTo(next ConfirmationStatus) bool {
	switch s {
	case ConfirmationPending:
		return next == ConfirmationSent || next == ConfirmationFailed
	case ConfirmationFailed:
		return next == ConfirmationSent || next == ConfirmationFailed
	default:
		return false
	}
}

// IsValid reports whether s is a known status.
func (s ConfirmationStatus) IsValid() bool {
	switch s {
	case ConfirmationPending, ConfirmationSent, ConfirmationFailed:
		return true
	}
	return false
}
