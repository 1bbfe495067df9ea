package validation

import (
	"context"
	"fmt"
	"time"
)

// Patients older than this are rejected as input mistakes
const maxPatientAgeYears = 150

// DoctorCandidate is a doctor about to be written
type DoctorCandidate struct {
	SpecialtyID int
	LastName    string
	FirstName   string
}

// PatientCandidate is a patient about to be written
type PatientCandidate struct {
	LastName  string
	FirstName string
	BirthDate time.Time
}

// Doctor validates a candidate and returns it with names trimmed
func (v *Validator) Doctor(ctx context.Context, cand DoctorCandidate) (DoctorCandidate, error) {
	if isBlank(cand.LastName) {
		return cand, blankField("last_name", "the last name cannot be empty")
	}
	if isBlank(cand.FirstName) {
		return cand, blankField("first_name", "the first name cannot be empty")
	}
	cand.LastName = trim(cand.LastName)
	cand.FirstName = trim(cand.FirstName)

	exists, err := v.store.SpecialtyExists(ctx, cand.SpecialtyID)
	if err != nil {
		return cand, err
	}
	if !exists {
		return cand, invalidReference("specialty_id", fmt.Sprintf("specialty with id %d does not exist", cand.SpecialtyID))
	}

	return cand, nil
}

// Patient validates a candidate and returns it with names trimmed. The birth
// date cannot be in the future nor more than 150 years back.
func (v *Validator) Patient(cand PatientCandidate) (PatientCandidate, error) {
	if isBlank(cand.LastName) {
		return cand, blankField("last_name", "the last name cannot be empty")
	}
	if isBlank(cand.FirstName) {
		return cand, blankField("first_name", "the first name cannot be empty")
	}
	cand.LastName = trim(cand.LastName)
	cand.FirstName = trim(cand.FirstName)

	today := dateOnly(v.now())
	birth := dateOnly(cand.BirthDate)
	if birth.After(today) {
		return cand, outOfRange("birth_date", "the birth date cannot be in the future")
	}
	min := today.AddDate(-maxPatientAgeYears, 0, 0)
	if birth.Before(min) {
		return cand, outOfRange("birth_date", "the birth date cannot be before "+min.Format("2006-01-02"))
	}

	return cand, nil
}
