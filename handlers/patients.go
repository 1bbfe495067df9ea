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

const patientSelect = `SELECT id_patient, last_name, first_name, to_char(birth_date, 'YYYY-MM-DD') FROM patient`

// GetPatients lists all patients
func GetPatients(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(context.Background(), patientSelect+" ORDER BY last_name")
	if err != nil {
		return respondError(c, 500, "F41", "Error fetching patients")
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

	return respond(c, 200, "S41", fiber.Map{"patients": patients, "total": len(patients)})
}

// GetPatientByID fetches one patient
func GetPatientByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F41", "Invalid ID")
	}

	var p models.Patient
	err = database.GetDB().QueryRow(context.Background(), patientSelect+" WHERE id_patient = $1", id).
		Scan(&p.ID, &p.LastName, &p.FirstName, &p.BirthDate)
	if err != nil {
		return respondError(c, 404, "F41", "Patient not found")
	}

	return respond(c, 200, "S41", fiber.Map{"patient": p})
}

// CreatePatient creates a new patient
func CreatePatient(c *fiber.Ctx) error {
	var req models.PatientRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F40", "Invalid payload")
	}

	birth, err := parseDate(req.BirthDate)
	if err != nil {
		return respondError(c, 400, "F40", "Invalid birth date, expected YYYY-MM-DD")
	}

	cand, err := rules.Patient(validation.PatientCandidate{
		LastName:  req.LastName,
		FirstName: req.FirstName,
		BirthDate: birth,
	})
	if err != nil {
		return respondRuleError(c, "F40", err)
	}

	var newID int
	err = database.GetDB().QueryRow(context.Background(),
		`INSERT INTO patient (last_name, first_name, birth_date)
		 VALUES ($1, $2, $3) RETURNING id_patient`,
		cand.LastName, cand.FirstName, cand.BirthDate.Format("2006-01-02")).Scan(&newID)
	if err != nil {
		return respondError(c, 500, "F40", "Error creating the patient")
	}

	middleware.LogEvent(models.LogLevelSuccess, "Patient created", subjectOf(c), map[string]interface{}{
		"patient_id": newID,
		"action":     "patient_created",
	})

	return respond(c, 201, "S40", fiber.Map{"message": "Patient created successfully", "id": newID})
}

// UpdatePatient updates an existing patient
func UpdatePatient(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F42", "Invalid ID")
	}

	var req models.PatientRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F42", "Invalid payload")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM patient WHERE id_patient = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F42", "Patient not found")
	}

	birth, err := parseDate(req.BirthDate)
	if err != nil {
		return respondError(c, 400, "F42", "Invalid birth date, expected YYYY-MM-DD")
	}

	cand, err := rules.Patient(validation.PatientCandidate{
		LastName:  req.LastName,
		FirstName: req.FirstName,
		BirthDate: birth,
	})
	if err != nil {
		return respondRuleError(c, "F42", err)
	}

	_, err = database.GetDB().Exec(context.Background(),
		"UPDATE patient SET last_name = $1, first_name = $2, birth_date = $3 WHERE id_patient = $4",
		cand.LastName, cand.FirstName, cand.BirthDate.Format("2006-01-02"), id)
	if err != nil {
		return respondError(c, 500, "F42", "Error updating the patient")
	}

	middleware.LogEvent(models.LogLevelInfo, "Patient updated", subjectOf(c), map[string]interface{}{
		"patient_id": id,
		"action":     "patient_updated",
	})

	return respond(c, 200, "S42", fiber.Map{"message": "Patient updated successfully"})
}

// DeletePatient removes a patient. The store blocks the delete while
// consultations or prescriptions still reference the patient.
func DeletePatient(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F43", "Invalid ID")
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"DELETE FROM patient WHERE id_patient = $1", id)
	if err != nil {
		return respondError(c, 409, "F43", "The patient still has consultations or prescriptions")
	}
	if tag.RowsAffected() == 0 {
		return respondError(c, 404, "F43", "Patient not found")
	}

	middleware.LogEvent(models.LogLevelWarning, "Patient deleted", subjectOf(c), map[string]interface{}{
		"patient_id": id,
		"action":     "patient_deleted",
	})

	return respond(c, 200, "S43", fiber.Map{"message": "Patient deleted successfully"})
}

// GetPatientConsultations lists a patient's consultations
func GetPatientConsultations(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F41", "Invalid ID")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM patient WHERE id_patient = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F41", "Patient not found")
	}

	consultations, err := queryConsultations(consultationFilter{PatientID: &id})
	if err != nil {
		return respondError(c, 500, "F41", "Error fetching consultations")
	}

	return respond(c, 200, "S41", fiber.Map{"consultations": consultations, "total": len(consultations)})
}

// GetPatientPrescriptions lists a patient's prescriptions
func GetPatientPrescriptions(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F41", "Invalid ID")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM patient WHERE id_patient = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F41", "Patient not found")
	}

	prescriptions, err := queryPrescriptions(prescriptionFilter{PatientID: &id})
	if err != nil {
		return respondError(c, 500, "F41", "Error fetching prescriptions")
	}

	return respond(c, 200, "S41", fiber.Map{"prescriptions": prescriptions, "total": len(prescriptions)})
}
