package validation

import (
	"context"
	"time"
)

// today anchors every window check in the tests
var today = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

type slot struct {
	id       int
	doctorID int
	date     time.Time
	hour     string
}

// fakeStore is an in-memory Store for exercising the rules without a database
type fakeStore struct {
	doctors       map[int]bool
	patients      map[int]bool
	medications   map[int]bool
	specialties   map[int]bool
	consultations map[int]ConsultationRef
	slots         []slot
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		doctors:       map[int]bool{1: true, 2: true},
		patients:      map[int]bool{1: true, 2: true},
		medications:   map[int]bool{1: true, 2: true},
		specialties:   map[int]bool{1: true},
		consultations: map[int]ConsultationRef{},
	}
}

func (s *fakeStore) addConsultation(ref ConsultationRef, hour string) {
	s.consultations[ref.ID] = ref
	s.slots = append(s.slots, slot{id: ref.ID, doctorID: ref.DoctorID, date: ref.Date, hour: hour})
}

func (s *fakeStore) DoctorExists(_ context.Context, id int) (bool, error) {
	return s.doctors[id], nil
}

func (s *fakeStore) PatientExists(_ context.Context, id int) (bool, error) {
	return s.patients[id], nil
}

func (s *fakeStore) MedicationExists(_ context.Context, id int) (bool, error) {
	return s.medications[id], nil
}

func (s *fakeStore) SpecialtyExists(_ context.Context, id int) (bool, error) {
	return s.specialties[id], nil
}

func (s *fakeStore) ConsultationExists(_ context.Context, id int) (bool, error) {
	_, ok := s.consultations[id]
	return ok, nil
}

func (s *fakeStore) ConsultationByID(_ context.Context, id int) (*ConsultationRef, error) {
	ref, ok := s.consultations[id]
	if !ok {
		return nil, nil
	}
	return &ref, nil
}

func (s *fakeStore) HasConflictingConsultation(_ context.Context, doctorID int, date time.Time, hour string, excludeID *int) (bool, error) {
	for _, sl := range s.slots {
		if excludeID != nil && sl.id == *excludeID {
			continue
		}
		if sl.doctorID == doctorID && sl.date.Equal(date) && sl.hour == hour {
			return true, nil
		}
	}
	return false, nil
}

// newTestValidator returns a validator over the fake store with the clock
// pinned to today
func newTestValidator(store Store) *Validator {
	v := New(store)
	v.now = func() time.Time { return today }
	return v
}

func strPtr(s string) *string {
	return &s
}
