package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kingdomhospital/hospital-api/database"
	"github.com/kingdomhospital/hospital-api/middleware"
	"github.com/kingdomhospital/hospital-api/models"
	"github.com/kingdomhospital/hospital-api/validation"
)

// ConsultationDetail joins the doctor and patient names onto the consultation
type ConsultationDetail struct {
	models.Consultation
	DoctorName  string `json:"doctor_name"`
	PatientName string `json:"patient_name"`
}

type consultationFilter struct {
	DoctorID  *int
	PatientID *int
	From      string
	To        string
}

// queryConsultations runs the consultation list query with optional filters
func queryConsultations(f consultationFilter) ([]ConsultationDetail, error) {
	query := `SELECT c.id_consultation, c.id_doctor, c.id_patient,
		to_char(c.date, 'YYYY-MM-DD'), to_char(c.hour, 'HH24:MI'), c.reason,
		d.first_name || ' ' || d.last_name, p.first_name || ' ' || p.last_name
		FROM consultation c
		JOIN doctor d ON c.id_doctor = d.id_doctor
		JOIN patient p ON c.id_patient = p.id_patient`

	var args []interface{}
	var conds []string
	if f.DoctorID != nil {
		args = append(args, *f.DoctorID)
		conds = append(conds, fmt.Sprintf("c.id_doctor = $%d", len(args)))
	}
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		conds = append(conds, fmt.Sprintf("c.id_patient = $%d", len(args)))
	}
	if f.From != "" {
		if _, err := parseDate(f.From); err != nil {
			return nil, err
		}
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("c.date >= $%d", len(args)))
	}
	if f.To != "" {
		if _, err := parseDate(f.To); err != nil {
			return nil, err
		}
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("c.date <= $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY c.date DESC, c.hour DESC"

	rows, err := database.GetDB().Query(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consultations []ConsultationDetail
	for rows.Next() {
		var co ConsultationDetail
		if err := rows.Scan(&co.ID, &co.DoctorID, &co.PatientID, &co.Date, &co.Hour, &co.Reason,
			&co.DoctorName, &co.PatientName); err != nil {
			continue
		}
		consultations = append(consultations, co)
	}
	return consultations, nil
}

// GetConsultations lists consultations, filtered by doctor_id, patient_id,
// from and to query parameters when present
func GetConsultations(c *fiber.Ctx) error {
	var f consultationFilter
	if v := c.Query("doctor_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return respondError(c, 400, "F61", "Invalid doctor_id filter")
		}
		f.DoctorID = &id
	}
	if v := c.Query("patient_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return respondError(c, 400, "F61", "Invalid patient_id filter")
		}
		f.PatientID = &id
	}
	f.From = c.Query("from")
	f.To = c.Query("to")

	consultations, err := queryConsultations(f)
	if err != nil {
		return respondError(c, 400, "F61", "Error fetching consultations, check the date filters")
	}

	return respond(c, 200, "S61", fiber.Map{"consultations": consultations, "total": len(consultations)})
}

// GetConsultationByID fetches one consultation
func GetConsultationByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F61", "Invalid ID")
	}

	var co ConsultationDetail
	err = database.GetDB().QueryRow(context.Background(),
		`SELECT c.id_consultation, c.id_doctor, c.id_patient,
		 to_char(c.date, 'YYYY-MM-DD'), to_char(c.hour, 'HH24:MI'), c.reason,
		 d.first_name || ' ' || d.last_name, p.first_name || ' ' || p.last_name
		 FROM consultation c
		 JOIN doctor d ON c.id_doctor = d.id_doctor
		 JOIN patient p ON c.id_patient = p.id_patient
		 WHERE c.id_consultation = $1`, id).
		Scan(&co.ID, &co.DoctorID, &co.PatientID, &co.Date, &co.Hour, &co.Reason,
			&co.DoctorName, &co.PatientName)
	if err != nil {
		return respondError(c, 404, "F61", "Consultation not found")
	}

	return respond(c, 200, "S61", fiber.Map{"consultation": co})
}

// consultationCandidate parses and validates a consultation payload through
// the full rule set. excludeID is the consultation being updated, nil on
// create.
func consultationCandidate(req models.ConsultationRequest, excludeID *int) (validation.ConsultationCandidate, string, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return validation.ConsultationCandidate{}, "Invalid date, expected YYYY-MM-DD", err
	}
	hour, err := parseHour(req.Hour)
	if err != nil {
		return validation.ConsultationCandidate{}, "Invalid hour, expected HH:MM", err
	}

	cand, err := rules.Consultation(context.Background(), validation.ConsultationCandidate{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      date,
		Hour:      hour,
		Reason:    req.Reason,
	}, excludeID)
	if err != nil {
		return cand, "", err
	}
	return cand, "", nil
}

// CreateConsultation creates a new consultation after the full rule check.
// The slot constraint in the store backs the conflict rule under concurrency.
func CreateConsultation(c *fiber.Ctx) error {
	var req models.ConsultationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F60", "Invalid payload")
	}

	cand, parseMsg, err := consultationCandidate(req, nil)
	if err != nil {
		if parseMsg != "" {
			return respondError(c, 400, "F60", parseMsg)
		}
		return respondRuleError(c, "F60", err)
	}

	var newID int
	err = database.GetDB().QueryRow(context.Background(),
		`INSERT INTO consultation (id_doctor, id_patient, date, hour, reason)
		 VALUES ($1, $2, $3, $4::time, $5) RETURNING id_consultation`,
		cand.DoctorID, cand.PatientID, cand.Date.Format("2006-01-02"), cand.Hour, cand.Reason).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return respondError(c, 409, "F60", "A consultation already exists for this doctor at that date and hour")
		}
		return respondError(c, 500, "F60", "Error creating the consultation")
	}

	middleware.LogEvent(models.LogLevelSuccess, "Consultation created", subjectOf(c), map[string]interface{}{
		"consultation_id": newID,
		"doctor_id":       cand.DoctorID,
		"patient_id":      cand.PatientID,
		"action":          "consultation_created",
	})

	return respond(c, 201, "S60", fiber.Map{"message": "Consultation created successfully", "id": newID})
}

// UpdateConsultation replaces the mutable fields of a consultation after
// re-running the full rule check, excluding itself from the conflict search
func UpdateConsultation(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F62", "Invalid ID")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM consultation WHERE id_consultation = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F62", "Consultation not found")
	}

	var req models.ConsultationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F62", "Invalid payload")
	}

	cand, parseMsg, err := consultationCandidate(req, &id)
	if err != nil {
		if parseMsg != "" {
			return respondError(c, 400, "F62", parseMsg)
		}
		return respondRuleError(c, "F62", err)
	}

	_, err = database.GetDB().Exec(context.Background(),
		`UPDATE consultation SET id_doctor = $1, id_patient = $2, date = $3, hour = $4::time, reason = $5
		 WHERE id_consultation = $6`,
		cand.DoctorID, cand.PatientID, cand.Date.Format("2006-01-02"), cand.Hour, cand.Reason, id)
	if err != nil {
		if isUniqueViolation(err) {
			return respondError(c, 409, "F62", "A consultation already exists for this doctor at that date and hour")
		}
		return respondError(c, 500, "F62", "Error updating the consultation")
	}

	middleware.LogEvent(models.LogLevelInfo, "Consultation updated", subjectOf(c), map[string]interface{}{
		"consultation_id": id,
		"action":          "consultation_updated",
	})

	return respond(c, 200, "S62", fiber.Map{"message": "Consultation updated successfully"})
}

// DeleteConsultation removes a consultation. Linked prescriptions stay and
// lose the link (the store sets their consultation id to null).
func DeleteConsultation(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F63", "Invalid ID")
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"DELETE FROM consultation WHERE id_consultation = $1", id)
	if err != nil {
		return respondError(c, 500, "F63", "Error deleting the consultation")
	}
	if tag.RowsAffected() == 0 {
		return respondError(c, 404, "F63", "Consultation not found")
	}

	middleware.LogEvent(models.LogLevelWarning, "Consultation deleted", subjectOf(c), map[string]interface{}{
		"consultation_id": id,
		"action":          "consultation_deleted",
	})

	return respond(c, 200, "S63", fiber.Map{"message": "Consultation deleted successfully"})
}

// GetConsultationPrescriptions lists the prescriptions linked to a consultation
func GetConsultationPrescriptions(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F61", "Invalid ID")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM consultation WHERE id_consultation = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F61", "Consultation not found")
	}

	prescriptions, err := queryPrescriptions(prescriptionFilter{ConsultationID: &id})
	if err != nil {
		return respondError(c, 500, "F61", "Error fetching prescriptions")
	}

	return respond(c, 200, "S61", fiber.Map{"prescriptions": prescriptions, "total": len(prescriptions)})
}

// CreateConsultationPrescription creates a prescription bound to the
// consultation in the path, overriding any consultation id in the payload
func CreateConsultationPrescription(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F70", "Invalid ID")
	}

	var exists bool
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM consultation WHERE id_consultation = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F70", "Consultation not found")
	}

	var req models.PrescriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F70", "Invalid payload")
	}
	req.ConsultationID = &id

	return createPrescriptionFromRequest(c, req)
}
