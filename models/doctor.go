package models

// Doctor represents the doctor table in the database
type Doctor struct {
	ID          int    `json:"id" db:"id_doctor"`
	SpecialtyID int    `json:"specialty_id" db:"id_specialty"`
	LastName    string `json:"last_name" db:"last_name" validate:"required,max=30"`
	FirstName   string `json:"first_name" db:"first_name" validate:"required,max=30"`
}

// DoctorRequest represents the payload to create or update a doctor
type DoctorRequest struct {
	SpecialtyID int    `json:"specialty_id" validate:"required"`
	LastName    string `json:"last_name" validate:"required,max=30"`
	FirstName   string `json:"first_name" validate:"required,max=30"`
}
