// Package validation implements the business rules applied before any
// consultation or prescription write: date-window checks, referential checks,
// the doctor slot-conflict rule and the prescription/consultation consistency
// rules. Validators read the store through the Store interface and never
// write; persistence happens only after a candidate comes back normalized.
package validation

// Kind discriminates validation failures. Every rule violation is recoverable
// by fixing the input; none is process-fatal.
type Kind string

const (
	// KindNotFound: the target root entity of an update/delete does not exist.
	KindNotFound Kind = "not_found"
	// KindInvalidReference: a referenced doctor/patient/medication/consultation
	// id does not exist.
	KindInvalidReference Kind = "invalid_reference"
	// KindOutOfRange: a date outside the fixed +/-365-day window, or a
	// non-positive quantity.
	KindOutOfRange Kind = "out_of_range"
	// KindConflict: the doctor already has a consultation at that date/hour.
	KindConflict Kind = "conflict"
	// KindInconsistentState: cross-entity mismatch between a prescription and
	// its consultation, or a line set left empty.
	KindInconsistentState Kind = "inconsistent_state"
	// KindBlankField: a required text field is blank after trimming.
	KindBlankField Kind = "blank_field"
)

// Error is the tagged result of a failed rule check. The first violated rule
// wins; checks never aggregate.
type Error struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func invalidReference(field, message string) *Error {
	return &Error{Kind: KindInvalidReference, Field: field, Message: message}
}

func outOfRange(field, message string) *Error {
	return &Error{Kind: KindOutOfRange, Field: field, Message: message}
}

func conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func inconsistent(message string) *Error {
	return &Error{Kind: KindInconsistentState, Message: message}
}

func blankField(field, message string) *Error {
	return &Error{Kind: KindBlankField, Field: field, Message: message}
}
