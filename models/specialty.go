package models

// Specialty represents the specialty table in the database
type Specialty struct {
	ID   int    `json:"id" db:"id_specialty"`
	Name string `json:"name" db:"name" validate:"required,max=30"`
}
