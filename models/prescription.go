package models

// Prescription represents the prescription table in the database. A
// prescription always owns at least one line; the lines live and die with it.
type Prescription struct {
	ID             int                `json:"id" db:"id_prescription"`
	DoctorID       int                `json:"doctor_id" db:"id_doctor"`
	PatientID      int                `json:"patient_id" db:"id_patient"`
	ConsultationID *int               `json:"consultation_id" db:"id_consultation"`
	Date           string             `json:"date" db:"date"`
	Notes          *string            `json:"notes" db:"notes" validate:"max=255"`
	Lines          []PrescriptionLine `json:"lines"`
}

// PrescriptionLine represents the prescription_line table in the database
type PrescriptionLine struct {
	ID             int     `json:"id" db:"id_line"`
	PrescriptionID int     `json:"prescription_id" db:"id_prescription"`
	MedicationID   int     `json:"medication_id" db:"id_medication"`
	Dosage         string  `json:"dosage" db:"dosage" validate:"required,max=50"`
	Frequency      string  `json:"frequency" db:"frequency" validate:"required,max=50"`
	Duration       string  `json:"duration" db:"duration" validate:"required,max=30"`
	Quantity       int     `json:"quantity" db:"quantity" validate:"required,gt=0"`
	Instructions   *string `json:"instructions" db:"instructions" validate:"max=255"`
}

// PrescriptionRequest represents the payload to create or update a prescription
type PrescriptionRequest struct {
	DoctorID       int                       `json:"doctor_id" validate:"required"`
	PatientID      int                       `json:"patient_id" validate:"required"`
	ConsultationID *int                      `json:"consultation_id,omitempty"`
	Date           string                    `json:"date" validate:"required"`
	Notes          *string                   `json:"notes,omitempty" validate:"max=255"`
	Lines          []PrescriptionLineRequest `json:"lines" validate:"required,min=1"`
}

// PrescriptionLineRequest represents one medication line in a prescription payload
type PrescriptionLineRequest struct {
	MedicationID int     `json:"medication_id" validate:"required"`
	Dosage       string  `json:"dosage" validate:"required,max=50"`
	Frequency    string  `json:"frequency" validate:"required,max=50"`
	Duration     string  `json:"duration" validate:"required,max=30"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	Instructions *string `json:"instructions,omitempty" validate:"max=255"`
}
