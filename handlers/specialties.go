package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kingdomhospital/hospital-api/database"
	"github.com/kingdomhospital/hospital-api/models"
)

// GetSpecialties lists all medical specialties
func GetSpecialties(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(context.Background(),
		"SELECT id_specialty, name FROM specialty ORDER BY name")
	if err != nil {
		return respondError(c, 500, "F21", "Error fetching specialties")
	}
	defer rows.Close()

	var specialties []models.Specialty
	for rows.Next() {
		var s models.Specialty
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			continue
		}
		specialties = append(specialties, s)
	}

	return respond(c, 200, "S21", fiber.Map{"specialties": specialties, "total": len(specialties)})
}

// GetSpecialtyByID fetches one specialty
func GetSpecialtyByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F21", "Invalid ID")
	}

	var s models.Specialty
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT id_specialty, name FROM specialty WHERE id_specialty = $1", id).Scan(&s.ID, &s.Name)
	if err != nil {
		return respondError(c, 404, "F21", "Specialty not found")
	}

	return respond(c, 200, "S21", fiber.Map{"specialty": s})
}

// GetDoctorsBySpecialty lists the doctors practicing a specialty
func GetDoctorsBySpecialty(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F21", "Invalid ID")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM specialty WHERE id_specialty = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F21", "Specialty not found")
	}

	rows, err := database.GetDB().Query(context.Background(),
		`SELECT d.id_doctor, d.id_specialty, d.last_name, d.first_name
		 FROM doctor d WHERE d.id_specialty = $1 ORDER BY d.last_name`, id)
	if err != nil {
		return respondError(c, 500, "F21", "Error fetching doctors")
	}
	defer rows.Close()

	var doctors []models.Doctor
	for rows.Next() {
		var d models.Doctor
		if err := rows.Scan(&d.ID, &d.SpecialtyID, &d.LastName, &d.FirstName); err != nil {
			continue
		}
		doctors = append(doctors, d)
	}

	return respond(c, 200, "S21", fiber.Map{"doctors": doctors, "total": len(doctors)})
}
