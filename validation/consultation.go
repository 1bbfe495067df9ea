package validation

import (
	"context"
	"fmt"
	"time"
)

// ConsultationCandidate is a consultation about to be written
type ConsultationCandidate struct {
	DoctorID  int
	PatientID int
	Date      time.Time
	Hour      string
	Reason    *string
}

// Consultation validates a candidate and returns it normalized. Rules run in
// order and the first violation wins: reason normalization, date window,
// doctor and patient existence, then the doctor-scoped slot conflict. On
// update excludeID removes the consultation being updated from the conflict
// search. The conflict rule does not cover patient double-booking.
func (v *Validator) Consultation(ctx context.Context, cand ConsultationCandidate, excludeID *int) (ConsultationCandidate, error) {
	cand.Reason = normalizeOptional(cand.Reason)

	if err := v.checkWindow(cand.Date, "date", "consultation"); err != nil {
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

	busy, err := v.store.HasConflictingConsultation(ctx, cand.DoctorID, cand.Date, cand.Hour, excludeID)
	if err != nil {
		return cand, err
	}
	if busy {
		return cand, conflict(fmt.Sprintf("a consultation already exists for this doctor on %s at %s",
			cand.Date.Format("2006-01-02"), cand.Hour))
	}

	return cand, nil
}
