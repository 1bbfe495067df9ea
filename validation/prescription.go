package validation

import (
	"context"
	"fmt"
	"time"
)

// PrescriptionCandidate is a prescription about to be written, together with
// its full line set. Partial line operations must rebuild the whole candidate
// and go through Prescription again.
type PrescriptionCandidate struct {
	DoctorID       int
	PatientID      int
	ConsultationID *int
	Date           time.Time
	Notes          *string
	Lines          []LineCandidate
}

// LineCandidate is one medication line of a prescription candidate
type LineCandidate struct {
	MedicationID int
	Dosage       string
	Frequency    string
	Duration     string
	Quantity     int
	Instructions *string
}

// Prescription validates a candidate and returns it normalized. Rule order:
// notes normalization, date window, doctor/patient existence, consultation
// existence when linked, non-empty line set, per-line checks, then the three
// consultation consistency rules (same doctor, same patient, prescription
// date on or after the consultation date). Create and update share this rule
// set; the caller handles "target does not exist" before calling.
func (v *Validator) Prescription(ctx context.Context, cand PrescriptionCandidate) (PrescriptionCandidate, error) {
	cand.Notes = normalizeOptional(cand.Notes)

	if err := v.checkWindow(cand.Date, "date", "prescription"); err != nil {
		return cand, err
	}

	exists, err := v.store.DoctorExists(ctx, cand.DoctorID)
	if err != nil {
		return cand, err
	}
	if !exists {
		return cand, invalidReference("doctor_id", fmt.Sprintf("doctor with id %d does not exist", cand.DoctorID))
	}

	exists, err = v.store.PatientExists(ctx, cand.PatientID)
	if err != nil {
		return cand, err
	}
	if !exists {
		return cand, invalidReference("patient_id", fmt.Sprintf("patient with id %d does not exist", cand.PatientID))
	}

	if cand.ConsultationID != nil {
		exists, err = v.store.ConsultationExists(ctx, *cand.ConsultationID)
		if err != nil {
			return cand, err
		}
		if !exists {
			return cand, invalidReference("consultation_id", fmt.Sprintf("consultation with id %d does not exist", *cand.ConsultationID))
		}
	}

	// A prescription must contain at least one medication line. Holds on
	// create, update and every line-level mutation.
	if len(cand.Lines) == 0 {
		return cand, inconsistent("a prescription must contain at least one medication line")
	}

	validated := make([]LineCandidate, 0, len(cand.Lines))
	for _, line := range cand.Lines {
		exists, err = v.store.MedicationExists(ctx, line.MedicationID)
		if err != nil {
			return cand, err
		}
		if !exists {
			return cand, invalidReference("medication_id", fmt.Sprintf("medication with id %d does not exist", line.MedicationID))
		}

		if isBlank(line.Dosage) {
			return cand, blankField("dosage", "the dosage cannot be empty")
		}
		if isBlank(line.Frequency) {
			return cand, blankField("frequency", "the frequency cannot be empty")
		}
		if isBlank(line.Duration) {
			return cand, blankField("duration", "the duration cannot be empty")
		}
		// The store enforces quantity > 0 with a check constraint; guard it
		// here as well so the failure is a clean rejection.
		if line.Quantity <= 0 {
			return cand, outOfRange("quantity", "the quantity must be greater than zero")
		}

		validated = append(validated, LineCandidate{
			MedicationID: line.MedicationID,
			Dosage:       trim(line.Dosage),
			Frequency:    trim(line.Frequency),
			Duration:     trim(line.Duration),
			Quantity:     line.Quantity,
			Instructions: normalizeOptional(line.Instructions),
		})
	}
	cand.Lines = validated

	if cand.ConsultationID != nil {
		consultation, err := v.store.ConsultationByID(ctx, *cand.ConsultationID)
		if err != nil {
			return cand, err
		}
		if consultation == nil {
			return cand, invalidReference("consultation_id", fmt.Sprintf("consultation with id %d does not exist", *cand.ConsultationID))
		}

		if consultation.DoctorID != cand.DoctorID {
			return cand, inconsistent("the prescription's doctor must match the consultation's doctor")
		}
		if consultation.PatientID != cand.PatientID {
			return cand, inconsistent("the prescription's patient must match the consultation's patient")
		}
		if dateOnly(cand.Date).Before(dateOnly(consultation.Date)) {
			return cand, inconsistent(fmt.Sprintf("the prescription date (%s) must be on or after the consultation date (%s)",
				cand.Date.Format("2006-01-02"), consultation.Date.Format("2006-01-02")))
		}
	}

	return cand, nil
}
