package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPrescription() PrescriptionCandidate {
	return PrescriptionCandidate{
		DoctorID:  1,
		PatientID: 1,
		Date:      today,
		Notes:     strPtr(" take with water "),
		Lines: []LineCandidate{
			{MedicationID: 1, Dosage: "500mg", Frequency: "3x daily", Duration: "5 days", Quantity: 15},
		},
	}
}

func TestPrescriptionValid(t *testing.T) {
	v := newTestValidator(newFakeStore())

	cand, err := v.Prescription(context.Background(), validPrescription())
	require.NoError(t, err)
	require.NotNil(t, cand.Notes)
	assert.Equal(t, "take with water", *cand.Notes)
	require.Len(t, cand.Lines, 1)
}

func TestPrescriptionDateOutsideWindow(t *testing.T) {
	v := newTestValidator(newFakeStore())

	// Holds for every operation that rebuilds the aggregate, including
	// unlinking a prescription whose stored date has aged out of the window
	in := validPrescription()
	in.ConsultationID = nil
	in.Date = today.AddDate(0, 0, -400)
	_, err := v.Prescription(context.Background(), in)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindOutOfRange, verr.Kind)
	assert.Equal(t, "date", verr.Field)
}

func TestPrescriptionBatchOfAppendedLines(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validPrescription()
	in.Lines = append(in.Lines,
		LineCandidate{MedicationID: 2, Dosage: " 10mg ", Frequency: "once daily", Duration: "7 days", Quantity: 7, Instructions: strPtr("  ")},
		LineCandidate{MedicationID: 1, Dosage: "200mg", Frequency: "2x daily", Duration: "3 days", Quantity: 6},
	)
	cand, err := v.Prescription(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, cand.Lines, 3)
	assert.Equal(t, "10mg", cand.Lines[1].Dosage)
	assert.Nil(t, cand.Lines[1].Instructions)
}

func TestPrescriptionWithoutLines(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validPrescription()
	in.Lines = nil
	_, err := v.Prescription(context.Background(), in)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInconsistentState, verr.Kind)
}

func TestPrescriptionUnknownMedication(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validPrescription()
	in.Lines[0].MedicationID = 99
	_, err := v.Prescription(context.Background(), in)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInvalidReference, verr.Kind)
	assert.Equal(t, "medication_id", verr.Field)
}

func TestPrescriptionBlankLineFields(t *testing.T) {
	cases := []struct {
		name  string
		field string
		mut   func(*LineCandidate)
	}{
		{"dosage", "dosage", func(l *LineCandidate) { l.Dosage = "  " }},
		{"frequency", "frequency", func(l *LineCandidate) { l.Frequency = "" }},
		{"duration", "duration", func(l *LineCandidate) { l.Duration = " " }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := newTestValidator(newFakeStore())
			in := validPrescription()
			tc.mut(&in.Lines[0])
			_, err := v.Prescription(context.Background(), in)

			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, KindBlankField, verr.Kind)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestPrescriptionNonPositiveQuantity(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validPrescription()
	in.Lines[0].Quantity = 0
	_, err := v.Prescription(context.Background(), in)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindOutOfRange, verr.Kind)
	assert.Equal(t, "quantity", verr.Field)
}

func TestPrescriptionLineNormalization(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validPrescription()
	in.Lines[0].Dosage = "  500mg "
	in.Lines[0].Instructions = strPtr("   ")
	cand, err := v.Prescription(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "500mg", cand.Lines[0].Dosage)
	assert.Nil(t, cand.Lines[0].Instructions)
}

func TestPrescriptionUnknownConsultation(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validPrescription()
	in.ConsultationID = intPtr(99)
	_, err := v.Prescription(context.Background(), in)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInvalidReference, verr.Kind)
	assert.Equal(t, "consultation_id", verr.Field)
}

func TestPrescriptionConsultationDoctorMismatch(t *testing.T) {
	store := newFakeStore()
	store.addConsultation(ConsultationRef{ID: 5, DoctorID: 2, PatientID: 1, Date: today.AddDate(0, 0, -1)}, "09:00")
	v := newTestValidator(store)

	in := validPrescription()
	in.ConsultationID = intPtr(5)
	_, err := v.Prescription(context.Background(), in)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInconsistentState, verr.Kind)
	assert.Contains(t, verr.Message, "doctor")
}

func TestPrescriptionConsultationPatientMismatch(t *testing.T) {
	store := newFakeStore()
	store.addConsultation(ConsultationRef{ID: 5, DoctorID: 1, PatientID: 2, Date: today.AddDate(0, 0, -1)}, "09:00")
	v := newTestValidator(store)

	in := validPrescription()
	in.ConsultationID = intPtr(5)
	_, err := v.Prescription(context.Background(), in)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInconsistentState, verr.Kind)
	assert.Contains(t, verr.Message, "patient")
}

func TestPrescriptionBeforeConsultationDate(t *testing.T) {
	store := newFakeStore()
	store.addConsultation(ConsultationRef{ID: 5, DoctorID: 1, PatientID: 1, Date: today.AddDate(0, 0, 1)}, "09:00")
	v := newTestValidator(store)

	in := validPrescription()
	in.ConsultationID = intPtr(5)
	_, err := v.Prescription(context.Background(), in)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInconsistentState, verr.Kind)
}

func TestPrescriptionSameDayAsConsultation(t *testing.T) {
	store := newFakeStore()
	store.addConsultation(ConsultationRef{ID: 5, DoctorID: 1, PatientID: 1, Date: today}, "09:00")
	v := newTestValidator(store)

	in := validPrescription()
	in.ConsultationID = intPtr(5)
	_, err := v.Prescription(context.Background(), in)
	assert.NoError(t, err)
}

func TestPrescriptionMultipleLinesSecondInvalid(t *testing.T) {
	v := newTestValidator(newFakeStore())

	in := validPrescription()
	in.Lines = append(in.Lines, LineCandidate{
		MedicationID: 2, Dosage: "10mg", Frequency: "once daily", Duration: "7 days", Quantity: -1,
	})
	_, err := v.Prescription(context.Background(), in)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindOutOfRange, verr.Kind)
}

func intPtr(i int) *int {
	return &i
}
