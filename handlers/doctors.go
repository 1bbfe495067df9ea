package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kingdomhospital/hospital-api/database"
	"github.com/kingdomhospital/hospital-api/middleware"
	"github.com/kingdomhospital/hospital-api/models"
	"github.com/kingdomhospital/hospital-api/validation"
)

// DoctorDetail joins the specialty name onto the doctor row
type DoctorDetail struct {
	models.Doctor
	SpecialtyName string `json:"specialty_name"`
}

const doctorSelect = `SELECT d.id_doctor, d.id_specialty, d.last_name, d.first_name, s.name
	FROM doctor d JOIN specialty s ON d.id_specialty = s.id_specialty`

// GetDoctors lists all doctors with their specialty
func GetDoctors(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(context.Background(), doctorSelect+" ORDER BY d.last_name")
	if err != nil {
		return respondError(c, 500, "F31", "Error fetching doctors")
	}
	defer rows.Close()

	var doctors []DoctorDetail
	for rows.Next() {
		var d DoctorDetail
		if err := rows.Scan(&d.ID, &d.SpecialtyID, &d.LastName, &d.FirstName, &d.SpecialtyName); err != nil {
			continue
		}
		doctors = append(doctors, d)
	}

	return respond(c, 200, "S31", fiber.Map{"doctors": doctors, "total": len(doctors)})
}

// GetDoctorByID fetches one doctor with their specialty
func GetDoctorByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F31", "Invalid ID")
	}

	var d DoctorDetail
	err = database.GetDB().QueryRow(context.Background(), doctorSelect+" WHERE d.id_doctor = $1", id).
		Scan(&d.ID, &d.SpecialtyID, &d.LastName, &d.FirstName, &d.SpecialtyName)
	if err != nil {
		return respondError(c, 404, "F31", "Doctor not found")
	}

	return respond(c, 200, "S31", fiber.Map{"doctor": d})
}

// CreateDoctor creates a new doctor
func CreateDoctor(c *fiber.Ctx) error {
	var req models.DoctorRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F30", "Invalid payload")
	}

	cand, err := rules.Doctor(context.Background(), validation.DoctorCandidate{
		SpecialtyID: req.SpecialtyID,
		LastName:    req.LastName,
		FirstName:   req.FirstName,
	})
	if err != nil {
		return respondRuleError(c, "F30", err)
	}

	var newID int
	err = database.GetDB().QueryRow(context.Background(),
		`INSERT INTO doctor (id_specialty, last_name, first_name)
		 VALUES ($1, $2, $3) RETURNING id_doctor`,
		cand.SpecialtyID, cand.LastName, cand.FirstName).Scan(&newID)
	if err != nil {
		return respondError(c, 500, "F30", "Error creating the doctor")
	}

	middleware.LogEvent(models.LogLevelSuccess, "Doctor created", subjectOf(c), map[string]interface{}{
		"doctor_id":    newID,
		"specialty_id": cand.SpecialtyID,
		"action":       "doctor_created",
	})

	return respond(c, 201, "S30", fiber.Map{"message": "Doctor created successfully", "id": newID})
}

// UpdateDoctor updates an existing doctor
func UpdateDoctor(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F32", "Invalid ID")
	}

	var req models.DoctorRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F32", "Invalid payload")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM doctor WHERE id_doctor = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F32", "Doctor not found")
	}

	cand, err := rules.Doctor(context.Background(), validation.DoctorCandidate{
		SpecialtyID: req.SpecialtyID,
		LastName:    req.LastName,
		FirstName:   req.FirstName,
	})
	if err != nil {
		return respondRuleError(c, "F32", err)
	}

	_, err = database.GetDB().Exec(context.Background(),
		"UPDATE doctor SET id_specialty = $1, last_name = $2, first_name = $3 WHERE id_doctor = $4",
		cand.SpecialtyID, cand.LastName, cand.FirstName, id)
	if err != nil {
		return respondError(c, 500, "F32", "Error updating the doctor")
	}

	middleware.LogEvent(models.LogLevelInfo, "Doctor updated", subjectOf(c), map[string]interface{}{
		"doctor_id": id,
		"action":    "doctor_updated",
	})

	return respond(c, 200, "S32", fiber.Map{"message": "Doctor updated successfully"})
}

// GetDoctorSpecialty fetches the specialty of a doctor
func GetDoctorSpecialty(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F31", "Invalid ID")
	}

	var s models.Specialty
	err = database.GetDB().QueryRow(context.Background(),
		`SELECT s.id_specialty, s.name FROM specialty s
		 JOIN doctor d ON d.id_specialty = s.id_specialty WHERE d.id_doctor = $1`, id).
		Scan(&s.ID, &s.Name)
	if err != nil {
		return respondError(c, 404, "F31", "Doctor not found")
	}

	return respond(c, 200, "S31", fiber.Map{"specialty": s})
}

// ReassignDoctorSpecialty moves a doctor to another specialty
func ReassignDoctorSpecialty(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F32", "Invalid ID")
	}
	specialtyID, err := strconv.Atoi(c.Params("specialtyId"))
	if err != nil {
		return respondError(c, 400, "F32", "Invalid specialty ID")
	}

	var d models.Doctor
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT id_doctor, id_specialty, last_name, first_name FROM doctor WHERE id_doctor = $1", id).
		Scan(&d.ID, &d.SpecialtyID, &d.LastName, &d.FirstName)
	if err != nil {
		return respondError(c, 404, "F32", "Doctor not found")
	}

	// Same full rule set as a regular update, with only the specialty changed
	cand, err := rules.Doctor(context.Background(), validation.DoctorCandidate{
		SpecialtyID: specialtyID,
		LastName:    d.LastName,
		FirstName:   d.FirstName,
	})
	if err != nil {
		return respondRuleError(c, "F32", err)
	}

	_, err = database.GetDB().Exec(context.Background(),
		"UPDATE doctor SET id_specialty = $1 WHERE id_doctor = $2", cand.SpecialtyID, id)
	if err != nil {
		return respondError(c, 500, "F32", "Error updating the doctor")
	}

	return respond(c, 200, "S32", fiber.Map{"message": "Specialty reassigned successfully"})
}

// GetDoctorConsultations lists a doctor's consultations, optionally windowed
// by from/to query dates
func GetDoctorConsultations(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F31", "Invalid ID")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM doctor WHERE id_doctor = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F31", "Doctor not found")
	}

	consultations, err := queryConsultations(consultationFilter{DoctorID: &id, From: c.Query("from"), To: c.Query("to")})
	if err != nil {
		return respondError(c, 500, "F31", "Error fetching consultations")
	}

	return respond(c, 200, "S31", fiber.Map{"consultations": consultations, "total": len(consultations)})
}

// GetDoctorPatients lists the distinct patients a doctor has seen
func GetDoctorPatients(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F31", "Invalid ID")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM doctor WHERE id_doctor = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F31", "Doctor not found")
	}

	rows, err := database.GetDB().Query(context.Background(),
		`SELECT DISTINCT p.id_patient, p.last_name, p.first_name, to_char(p.birth_date, 'YYYY-MM-DD')
		 FROM patient p JOIN consultation co ON co.id_patient = p.id_patient
		 WHERE co.id_doctor = $1 ORDER BY p.last_name`, id)
	if err != nil {
		return respondError(c, 500, "F31", "Error fetching patients")
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(&p.ID, &p.LastName, &p.FirstName, &p.BirthDate); err != nil {
			continue
		}
		patients = append(patients, p)
	}

	return respond(c, 200, "S31", fiber.Map{"patients": patients, "total": len(patients)})
}

// GetDoctorPrescriptions lists a doctor's prescriptions, optionally windowed
func GetDoctorPrescriptions(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F31", "Invalid ID")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM doctor WHERE id_doctor = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F31", "Doctor not found")
	}

	prescriptions, err := queryPrescriptions(prescriptionFilter{DoctorID: &id, From: c.Query("from"), To: c.Query("to")})
	if err != nil {
		return respondError(c, 500, "F31", "Error fetching prescriptions")
	}

	return respond(c, 200, "S31", fiber.Map{"prescriptions": prescriptions, "total": len(prescriptions)})
}

// subjectOf returns the authenticated subject for event logging
func subjectOf(c *fiber.Ctx) string {
	if s, ok := c.Locals("subject").(string); ok {
		return s
	}
	return ""
}
