package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConsultation() ConsultationCandidate {
	return ConsultationCandidate{
		DoctorID:  1,
		PatientID: 1,
		Date:      today.AddDate(0, 0, 7),
		Hour:      "09:00",
		Reason:    strPtr("  annual check  "),
	}
}

func TestConsultationValid(t *testing.T) {
	v := newTestValidator(newFakeStore())

	cand, err := v.Consultation(context.Background(), validConsultation(), nil)
	require.NoError(t, err)
	require.NotNil(t, cand.Reason)
	assert.Equal(t, "annual check", *cand.Reason)
}

func TestConsultationBlankReasonBecomesAbsent(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validConsultation()
	in.Reason = strPtr("   ")
	cand, err := v.Consultation(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Nil(t, cand.Reason)
}

func TestConsultationUnknownDoctor(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validConsultation()
	in.DoctorID = 99
	_, err := v.Consultation(context.Background(), in, nil)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInvalidReference, verr.Kind)
	assert.Equal(t, "doctor_id", verr.Field)
}

func TestConsultationUnknownPatient(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validConsultation()
	in.PatientID = 99
	_, err := v.Consultation(context.Background(), in, nil)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInvalidReference, verr.Kind)
	assert.Equal(t, "patient_id", verr.Field)
}

func TestConsultationDateOutsideWindow(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validConsultation()
	in.Date = today.AddDate(0, 0, 366)
	_, err := v.Consultation(context.Background(), in, nil)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindOutOfRange, verr.Kind)
}

func TestConsultationSlotConflict(t *testing.T) {
	store := newFakeStore()
	store.addConsultation(ConsultationRef{ID: 10, DoctorID: 1, PatientID: 2, Date: today.AddDate(0, 0, 7)}, "09:00")
	v := newTestValidator(store)

	_, err := v.Consultation(context.Background(), validConsultation(), nil)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindConflict, verr.Kind)
}

func TestConsultationSameSlotDifferentDoctor(t *testing.T) {
	store := newFakeStore()
	store.addConsultation(ConsultationRef{ID: 10, DoctorID: 2, PatientID: 2, Date: today.AddDate(0, 0, 7)}, "09:00")
	v := newTestValidator(store)

	_, err := v.Consultation(context.Background(), validConsultation(), nil)
	assert.NoError(t, err)
}

func TestConsultationSameDoctorDifferentHour(t *testing.T) {
	store := newFakeStore()
	store.addConsultation(ConsultationRef{ID: 10, DoctorID: 1, PatientID: 2, Date: today.AddDate(0, 0, 7)}, "10:00")
	v := newTestValidator(store)

	_, err := v.Consultation(context.Background(), validConsultation(), nil)
	assert.NoError(t, err)
}

func TestConsultationUpdateExcludesItself(t *testing.T) {
	store := newFakeStore()
	store.addConsultation(ConsultationRef{ID: 10, DoctorID: 1, PatientID: 1, Date: today.AddDate(0, 0, 7)}, "09:00")
	v := newTestValidator(store)

	// Re-saving consultation 10 on its own slot is not a conflict
	excludeID := 10
	_, err := v.Consultation(context.Background(), validConsultation(), &excludeID)
	assert.NoError(t, err)
}

func TestConsultationUpdateConflictsWithOther(t *testing.T) {
	store := newFakeStore()
	store.addConsultation(ConsultationRef{ID: 10, DoctorID: 1, PatientID: 1, Date: today.AddDate(0, 0, 7)}, "09:00")
	store.addConsultation(ConsultationRef{ID: 11, DoctorID: 1, PatientID: 2, Date: today.AddDate(0, 0, 7)}, "11:00")
	v := newTestValidator(store)

	// Moving consultation 11 onto 10's slot must still conflict
	in := validConsultation()
	excludeID := 11
	_, err := v.Consultation(context.Background(), in, &excludeID)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindConflict, verr.Kind)
}
