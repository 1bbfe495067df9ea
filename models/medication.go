package models

// Medication represents the medication table in the database
type Medication struct {
	ID         int     `json:"id" db:"id_medication"`
	Name       string  `json:"name" db:"name" validate:"required,max=100"`
	DosageForm string  `json:"dosage_form" db:"dosage_form" validate:"required,max=30"`
	Strength   string  `json:"strength" db:"strength" validate:"required,max=30"`
	AtcCode    *string `json:"atc_code" db:"atc_code" validate:"max=20"`
}

// MedicationRequest represents the payload to create a medication
type MedicationRequest struct {
	Name       string  `json:"name" validate:"required,max=100"`
	DosageForm string  `json:"dosage_form" validate:"required,max=30"`
	Strength   string  `json:"strength" validate:"required,max=30"`
	AtcCode    *string `json:"atc_code,omitempty" validate:"max=20"`
}
