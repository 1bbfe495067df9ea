package validation

import (
	"context"
	"time"
)

// ConsultationRef is the slice of a consultation the prescription rules need.
type ConsultationRef struct {
	ID        int
	DoctorID  int
	PatientID int
	Date      time.Time
}

// Store is the read access the validators need. Implementations must not
// mutate anything; the validators call these between zero and a handful of
// times per candidate.
type Store interface {
	DoctorExists(ctx context.Context, id int) (bool, error)
	PatientExists(ctx context.Context, id int) (bool, error)
	MedicationExists(ctx context.Context, id int) (bool, error)
	SpecialtyExists(ctx context.Context, id int) (bool, error)
	ConsultationExists(ctx context.Context, id int) (bool, error)
	// ConsultationByID returns nil when no consultation has that id.
	ConsultationByID(ctx context.Context, id int) (*ConsultationRef, error)
	// HasConflictingConsultation reports whether the doctor already has a
	// consultation at (date, hour), ignoring excludeID when non-nil.
	HasConflictingConsultation(ctx context.Context, doctorID int, date time.Time, hour string, excludeID *int) (bool, error)
}

// Validator runs the business rules against a Store. The clock is a field so
// tests can anchor "today".
type Validator struct {
	store Store
	now   func() time.Time
}

// New creates a validator over the given store
func New(store Store) *Validator {
	return &Validator{store: store, now: time.Now}
}
