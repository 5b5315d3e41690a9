package models

// DispatchStatus is the result of one confirmation send attempt.
type DispatchStatus string

const (
	DispatchSent   DispatchStatus = "sent"
	DispatchFailed DispatchStatus = "failed"
)

// Failure reasons reported with DispatchFailed.
const (
	DispatchReasonTransportUnavailable = "transport-unavailable"
	DispatchReasonTimeout              = "timeout"
	DispatchReasonTransportError       = "transport-error"
	DispatchReasonTemplateError        = "template-error"
)

// DispatchOutcome reports a confirmation attempt independently of whether
// the registration was persisted.
type DispatchOutcome struct {
	Status DispatchStatus `json:"status"`
	Reason string         `json:"reason,omitempty"`
}

// Sent reports whether the confirmation was delivered to the transport.
func (o DispatchOutcome) Sent() bool {
	return o.Status == DispatchSent
}

// ConfirmationStatus maps the dispatch result onto the record lifecycle.
func (o DispatchOutcome) ConfirmationStatus() ConfirmationStatus {
	if o.Sent() {
		return ConfirmationSent
	}
	return ConfirmationFailed
}

// OutcomeKind discriminates RegistrationOutcome.
type OutcomeKind string

const (
	OutcomeRejected          OutcomeKind = "rejected"
	OutcomeAlreadyRegistered OutcomeKind = "already_registered"
	OutcomeRegistered        OutcomeKind = "registered"
)

// Outcome is what Register returns to the HTTP layer.
//   - Rejected: Errors is set, nothing was persisted
//   - AlreadyRegistered: Record is the existing registration
//   - Registered: Record is the new registration and Dispatch reports the
//     confirmation attempt; a failed dispatch is a warning only
type Outcome struct {
	Kind     OutcomeKind
	Errors   ValidationErrors
	Record   *Record
	Dispatch *DispatchOutcome
}

func Rejected(errs ValidationErrors) Outcome {
	return Outcome{Kind: OutcomeRejected, Errors: errs}
}

func AlreadyRegistered(existing *Record) Outcome {
	return Outcome{Kind: OutcomeAlreadyRegistered, Record: existing}
}

func Registered(rec *Record, dispatch DispatchOutcome) Outcome {
	return Outcome{Kind: OutcomeRegistered, Record: rec, Dispatch: &dispatch}
}
