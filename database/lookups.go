package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kingdomhospital/hospital-api/validation"
)

// Lookups implements validation.Store over the connection pool. Read-only.
type Lookups struct{}

var _ validation.Store = Lookups{}

// NewLookups returns the pgx-backed read interface the validators consume
func NewLookups() Lookups {
	return Lookups{}
}

func exists(ctx context.Context, query string, id int) (bool, error) {
	var found bool
	err := GetDB().QueryRow(ctx, query, id).Scan(&found)
	if err != nil {
		return false, err
	}
	return found, nil
}

// DoctorExists reports whether a doctor with that id exists
func (Lookups) DoctorExists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, "SELECT EXISTS(SELECT 1 FROM doctor WHERE id_doctor = $1)", id)
}

// PatientExists reports whether a patient with that id exists
func (Lookups) PatientExists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, "SELECT EXISTS(SELECT 1 FROM patient WHERE id_patient = $1)", id)
}

// MedicationExists reports whether a medication with that id exists
func (Lookups) MedicationExists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, "SELECT EXISTS(SELECT 1 FROM medication WHERE id_medication = $1)", id)
}

// SpecialtyExists reports whether a specialty with that id exists
func (Lookups) SpecialtyExists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, "SELECT EXISTS(SELECT 1 FROM specialty WHERE id_specialty = $1)", id)
}

// ConsultationExists reports whether a consultation with that id exists
func (Lookups) ConsultationExists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, "SELECT EXISTS(SELECT 1 FROM consultation WHERE id_consultation = $1)", id)
}

// ConsultationByID fetches the fields the prescription rules compare against.
// Returns nil when the consultation does not exist.
func (Lookups) ConsultationByID(ctx context.Context, id int) (*validation.ConsultationRef, error) {
	var ref validation.ConsultationRef
	err := GetDB().QueryRow(ctx,
		"SELECT id_consultation, id_doctor, id_patient, date FROM consultation WHERE id_consultation = $1", id).
		Scan(&ref.ID, &ref.DoctorID, &ref.PatientID, &ref.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// HasConflictingConsultation reports whether the doctor already has a
// consultation at that date and hour, excluding excludeID when set
func (Lookups) HasConflictingConsultation(ctx context.Context, doctorID int, date time.Time, hour string, excludeID *int) (bool, error) {
	var found bool
	var err error
	if excludeID != nil {
		err = GetDB().QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM consultation
			 WHERE id_doctor = $1 AND date = $2 AND hour = $3::time AND id_consultation <> $4)`,
			doctorID, date.Format("2006-01-02"), hour, *excludeID).Scan(&found)
	} else {
		err = GetDB().QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM consultation
			 WHERE id_doctor = $1 AND date = $2 AND hour = $3::time)`,
			doctorID, date.Format("2006-01-02"), hour).Scan(&found)
	}
	if err != nil {
		return false, err
	}
	return found, nil
}
