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

const medicationSelect = `SELECT id_medication, name, dosage_form, strength, atc_code FROM medication`

// GetMedications lists all medications
func GetMedications(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(context.Background(), medicationSelect+" ORDER BY name")
	if err != nil {
		return respondError(c, 500, "F51", "Error fetching medications")
	}
	defer rows.Close()

	var medications []models.Medication
	for rows.Next() {
		var m models.Medication
		if err := rows.Scan(&m.ID, &m.Name, &m.DosageForm, &m.Strength, &m.AtcCode); err != nil {
			continue
		}
		medications = append(medications, m)
	}

	return respond(c, 200, "S51", fiber.Map{"medications": medications, "total": len(medications)})
}

// GetMedicationByID fetches one medication
func GetMedicationByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F51", "Invalid ID")
	}

	var m models.Medication
	err = database.GetDB().QueryRow(context.Background(), medicationSelect+" WHERE id_medication = $1", id).
		Scan(&m.ID, &m.Name, &m.DosageForm, &m.Strength, &m.AtcCode)
	if err != nil {
		return respondError(c, 404, "F51", "Medication not found")
	}

	return respond(c, 200, "S51", fiber.Map{"medication": m})
}

// CreateMedication creates a new medication. The name is unique store-wide.
func CreateMedication(c *fiber.Ctx) error {
	var req models.MedicationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F50", "Invalid payload")
	}

	cand, err := rules.Medication(validation.MedicationCandidate{
		Name:       req.Name,
		DosageForm: req.DosageForm,
		Strength:   req.Strength,
		AtcCode:    req.AtcCode,
	})
	if err != nil {
		return respondRuleError(c, "F50", err)
	}

	var newID int
	err = database.GetDB().QueryRow(context.Background(),
		`INSERT INTO medication (name, dosage_form, strength, atc_code)
		 VALUES ($1, $2, $3, $4) RETURNING id_medication`,
		cand.Name, cand.DosageForm, cand.Strength, cand.AtcCode).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return respondError(c, 409, "F50", "A medication with that name already exists")
		}
		return respondError(c, 500, "F50", "Error creating the medication")
	}

	middleware.LogEvent(models.LogLevelSuccess, "Medication created", subjectOf(c), map[string]interface{}{
		"medication_id": newID,
		"name":          cand.Name,
		"action":        "medication_created",
	})

	return respond(c, 201, "S50", fiber.Map{"message": "Medication created successfully", "id": newID})
}

// GetMedicationPrescriptions lists the prescriptions containing a medication
func GetMedicationPrescriptions(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F51", "Invalid ID")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM medication WHERE id_medication = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F51", "Medication not found")
	}

	prescriptions, err := queryPrescriptions(prescriptionFilter{MedicationID: &id})
	if err != nil {
		return respondError(c, 500, "F51", "Error fetching prescriptions")
	}

	return respond(c, 200, "S51", fiber.Map{"prescriptions": prescriptions, "total": len(prescriptions)})
}
