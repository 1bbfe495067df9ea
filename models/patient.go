package models

// Patient represents the patient table in the database
type Patient struct {
	ID        int    `json:"id" db:"id_patient"`
	LastName  string `json:"last_name" db:"last_name" validate:"required,max=30"`
	FirstName string `json:"first_name" db:"first_name" validate:"required,max=30"`
	BirthDate string `json:"birth_date" db:"birth_date"`
}

// PatientRequest represents the payload to create or update a patient
type PatientRequest struct {
	LastName  string `json:"last_name" validate:"required,max=30"`
	FirstName string `json:"first_name" validate:"required,max=30"`
	BirthDate string `json:"birth_date" validate:"required"`
}
