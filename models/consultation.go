package models

// Consultation represents the consultation table in the database.
// Date travels as YYYY-MM-DD and hour as HH:MM.
type Consultation struct {
	ID        int     `json:"id" db:"id_consultation"`
	DoctorID  int     `json:"doctor_id" db:"id_doctor"`
	PatientID int     `json:"patient_id" db:"id_patient"`
	Date      string  `json:"date" db:"date"`
	Hour      string  `json:"hour" db:"hour"`
	Reason    *string `json:"reason" db:"reason" validate:"max=100"`
}

// ConsultationRequest represents the payload to create or update a consultation
type ConsultationRequest struct {
	DoctorID  int     `json:"doctor_id" validate:"required"`
	PatientID int     `json:"patient_id" validate:"required"`
	Date      string  `json:"date" validate:"required"`
	Hour      string  `json:"hour" validate:"required"`
	Reason    *string `json:"reason,omitempty" validate:"max=100"`
}
