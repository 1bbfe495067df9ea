package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorValid(t *testing.T) {
	v := newTestValidator(newFakeStore())

	cand, err := v.Doctor(context.Background(), DoctorCandidate{
		SpecialtyID: 1,
		LastName:    "  House ",
		FirstName:   " Gregory ",
	})
	require.NoError(t, err)
	assert.Equal(t, "House", cand.LastName)
	assert.Equal(t, "Gregory", cand.FirstName)
}

func TestDoctorBlankNames(t *testing.T) {
	v := newTestValidator(newFakeStore())

	_, err := v.Doctor(context.Background(), DoctorCandidate{SpecialtyID: 1, LastName: "  ", FirstName: "Gregory"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindBlankField, verr.Kind)
	assert.Equal(t, "last_name", verr.Field)

	_, err = v.Doctor(context.Background(), DoctorCandidate{SpecialtyID: 1, LastName: "House", FirstName: ""})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "first_name", verr.Field)
}

func TestDoctorUnknownSpecialty(t *testing.T) {
	v := newTestValidator(newFakeStore())

	_, err := v.Doctor(context.Background(), DoctorCandidate{SpecialtyID: 42, LastName: "House", FirstName: "Gregory"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInvalidReference, verr.Kind)
	assert.Equal(t, "specialty_id", verr.Field)
}

func TestPatientValid(t *testing.T) {
	v := newTestValidator(newFakeStore())

	cand, err := v.Patient(PatientCandidate{
		LastName:  " Martin ",
		FirstName: "Paul",
		BirthDate: today.AddDate(-40, 0, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Martin", cand.LastName)
}

func TestPatientBornToday(t *testing.T) {
	v := newTestValidator(newFakeStore())

	_, err := v.Patient(PatientCandidate{LastName: "Martin", FirstName: "Paul", BirthDate: today})
	assert.NoError(t, err)
}

func TestPatientFutureBirthDate(t *testing.T) {
	v := newTestValidator(newFakeStore())

	_, err := v.Patient(PatientCandidate{
		LastName:  "Martin",
		FirstName: "Paul",
		BirthDate: today.AddDate(0, 0, 1),
	})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindOutOfRange, verr.Kind)
	assert.Equal(t, "birth_date", verr.Field)
}

func TestPatientTooOld(t *testing.T) {
	v := newTestValidator(newFakeStore())

	_, err := v.Patient(PatientCandidate{
		LastName:  "Martin",
		FirstName: "Paul",
		BirthDate: today.AddDate(-150, 0, -1),
	})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindOutOfRange, verr.Kind)
}

func TestMedicationValid(t *testing.T) {
	v := newTestValidator(newFakeStore())

	cand, err := v.Medication(MedicationCandidate{
		Name:       " Paracetamol ",
		DosageForm: "Tablet",
		Strength:   "500mg",
		AtcCode:    strPtr("  N02BE01 "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", cand.Name)
	require.NotNil(t, cand.AtcCode)
	assert.Equal(t, "N02BE01", *cand.AtcCode)
}

func TestMedicationBlankAtcCollapses(t *testing.T) {
	v := newTestValidator(newFakeStore())

	cand, err := v.Medication(MedicationCandidate{
		Name:       "Paracetamol",
		DosageForm: "Tablet",
		Strength:   "500mg",
		AtcCode:    strPtr("   "),
	})
	require.NoError(t, err)
	assert.Nil(t, cand.AtcCode)
}

func TestMedicationBlankFields(t *testing.T) {
	v := newTestValidator(newFakeStore())

	cases := []struct {
		field string
		cand  MedicationCandidate
	}{
		{"name", MedicationCandidate{Name: " ", DosageForm: "Tablet", Strength: "500mg"}},
		{"dosage_form", MedicationCandidate{Name: "Paracetamol", DosageForm: "", Strength: "500mg"}},
		{"strength", MedicationCandidate{Name: "Paracetamol", DosageForm: "Tablet", Strength: "  "}},
	}
	for _, tc := range cases {
		_, err := v.Medication(tc.cand)
		var verr *Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, KindBlankField, verr.Kind)
		assert.Equal(t, tc.field, verr.Field)
	}
}
