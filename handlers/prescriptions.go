package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kingdomhospital/hospital-api/database"
	"github.com/kingdomhospital/hospital-api/middleware"
	"github.com/kingdomhospital/hospital-api/models"
	"github.com/kingdomhospital/hospital-api/validation"
)

type prescriptionFilter struct {
	DoctorID       *int
	PatientID      *int
	ConsultationID *int
	MedicationID   *int
	From           string
	To             string
}

const prescriptionSelect = `SELECT pr.id_prescription, pr.id_doctor, pr.id_patient, pr.id_consultation,
	to_char(pr.date, 'YYYY-MM-DD'), pr.notes FROM prescription pr`

const lineSelect = `SELECT id_line, id_prescription, id_medication, dosage, frequency, duration, quantity, instructions
	FROM prescription_line WHERE id_prescription = $1 ORDER BY id_line`

// loadLines fetches the line set of one prescription
func loadLines(ctx context.Context, prescriptionID int) ([]models.PrescriptionLine, error) {
	rows, err := database.GetDB().Query(ctx, lineSelect, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.PrescriptionLine
	for rows.Next() {
		var l models.PrescriptionLine
		if err := rows.Scan(&l.ID, &l.PrescriptionID, &l.MedicationID, &l.Dosage, &l.Frequency,
			&l.Duration, &l.Quantity, &l.Instructions); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// queryPrescriptions runs the prescription list query with optional filters
// and loads the line set of every match
func queryPrescriptions(f prescriptionFilter) ([]models.Prescription, error) {
	ctx := context.Background()
	query := prescriptionSelect

	var args []interface{}
	var conds []string
	if f.DoctorID != nil {
		args = append(args, *f.DoctorID)
		conds = append(conds, fmt.Sprintf("pr.id_doctor = $%d", len(args)))
	}
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		conds = append(conds, fmt.Sprintf("pr.id_patient = $%d", len(args)))
	}
	if f.ConsultationID != nil {
		args = append(args, *f.ConsultationID)
		conds = append(conds, fmt.Sprintf("pr.id_consultation = $%d", len(args)))
	}
	if f.MedicationID != nil {
		args = append(args, *f.MedicationID)
		conds = append(conds, fmt.Sprintf(
			"EXISTS(SELECT 1 FROM prescription_line pl WHERE pl.id_prescription = pr.id_prescription AND pl.id_medication = $%d)",
			len(args)))
	}
	if f.From != "" {
		if _, err := parseDate(f.From); err != nil {
			return nil, err
		}
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("pr.date >= $%d", len(args)))
	}
	if f.To != "" {
		if _, err := parseDate(f.To); err != nil {
			return nil, err
		}
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("pr.date <= $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY pr.date DESC, pr.id_prescription DESC"

	rows, err := database.GetDB().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prescriptions []models.Prescription
	for rows.Next() {
		var p models.Prescription
		if err := rows.Scan(&p.ID, &p.DoctorID, &p.PatientID, &p.ConsultationID, &p.Date, &p.Notes); err != nil {
			continue
		}
		prescriptions = append(prescriptions, p)
	}
	rows.Close()

	for i := range prescriptions {
		lines, err := loadLines(ctx, prescriptions[i].ID)
		if err != nil {
			return nil, err
		}
		prescriptions[i].Lines = lines
	}
	return prescriptions, nil
}

// fetchPrescription loads one prescription with its line set. Returns
// pgx.ErrNoRows when the id does not exist.
func fetchPrescription(ctx context.Context, id int) (models.Prescription, error) {
	var p models.Prescription
	err := database.GetDB().QueryRow(ctx, prescriptionSelect+" WHERE pr.id_prescription = $1", id).
		Scan(&p.ID, &p.DoctorID, &p.PatientID, &p.ConsultationID, &p.Date, &p.Notes)
	if err != nil {
		return p, err
	}
	p.Lines, err = loadLines(ctx, id)
	return p, err
}

// candidateFromPrescription rebuilds the full validation candidate from a
// stored prescription, so partial operations revalidate the whole aggregate
func candidateFromPrescription(p models.Prescription) (validation.PrescriptionCandidate, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return validation.PrescriptionCandidate{}, err
	}
	cand := validation.PrescriptionCandidate{
		DoctorID:       p.DoctorID,
		PatientID:      p.PatientID,
		ConsultationID: p.ConsultationID,
		Date:           date,
		Notes:          p.Notes,
	}
	for _, l := range p.Lines {
		cand.Lines = append(cand.Lines, validation.LineCandidate{
			MedicationID: l.MedicationID,
			Dosage:       l.Dosage,
			Frequency:    l.Frequency,
			Duration:     l.Duration,
			Quantity:     l.Quantity,
			Instructions: l.Instructions,
		})
	}
	return cand, nil
}

// writeAggregate persists a validated candidate over an existing prescription
// in one transaction: the root row is updated and the line set replaced
func writeAggregate(ctx context.Context, id int, cand validation.PrescriptionCandidate) error {
	tx, err := database.GetDB().Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE prescription SET id_doctor = $1, id_patient = $2, id_consultation = $3, date = $4, notes = $5
		 WHERE id_prescription = $6`,
		cand.DoctorID, cand.PatientID, cand.ConsultationID, cand.Date.Format("2006-01-02"), cand.Notes, id)
	if err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, "DELETE FROM prescription_line WHERE id_prescription = $1", id); err != nil {
		return err
	}
	for _, line := range cand.Lines {
		_, err = tx.Exec(ctx,
			`INSERT INTO prescription_line (id_prescription, id_medication, dosage, frequency, duration, quantity, instructions)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, line.MedicationID, line.Dosage, line.Frequency, line.Duration, line.Quantity, line.Instructions)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetPrescriptions lists prescriptions, filtered by doctor_id, patient_id,
// consultation_id, medication_id, from and to query parameters when present
func GetPrescriptions(c *fiber.Ctx) error {
	var f prescriptionFilter
	if v := c.Query("doctor_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return respondError(c, 400, "F71", "Invalid doctor_id filter")
		}
		f.DoctorID = &id
	}
	if v := c.Query("patient_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return respondError(c, 400, "F71", "Invalid patient_id filter")
		}
		f.PatientID = &id
	}
	if v := c.Query("consultation_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return respondError(c, 400, "F71", "Invalid consultation_id filter")
		}
		f.ConsultationID = &id
	}
	if v := c.Query("medication_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return respondError(c, 400, "F71", "Invalid medication_id filter")
		}
		f.MedicationID = &id
	}
	f.From = c.Query("from")
	f.To = c.Query("to")

	prescriptions, err := queryPrescriptions(f)
	if err != nil {
		return respondError(c, 400, "F71", "Error fetching prescriptions, check the date filters")
	}

	return respond(c, 200, "S71", fiber.Map{"prescriptions": prescriptions, "total": len(prescriptions)})
}

// GetPrescriptionByID fetches one prescription with its lines
func GetPrescriptionByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F71", "Invalid ID")
	}

	p, err := fetchPrescription(context.Background(), id)
	if err != nil {
		return respondError(c, 404, "F71", "Prescription not found")
	}

	return respond(c, 200, "S71", fiber.Map{"prescription": p})
}

// CreatePrescription creates a new prescription with its full line set
func CreatePrescription(c *fiber.Ctx) error {
	var req models.PrescriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F70", "Invalid payload")
	}
	return createPrescriptionFromRequest(c, req)
}

// createPrescriptionFromRequest validates and persists a prescription payload.
// Shared with the consultation-scoped create route.
func createPrescriptionFromRequest(c *fiber.Ctx, req models.PrescriptionRequest) error {
	ctx := context.Background()

	date, err := parseDate(req.Date)
	if err != nil {
		return respondError(c, 400, "F70", "Invalid date, expected YYYY-MM-DD")
	}

	cand := validation.PrescriptionCandidate{
		DoctorID:       req.DoctorID,
		PatientID:      req.PatientID,
		ConsultationID: req.ConsultationID,
		Date:           date,
		Notes:          req.Notes,
	}
	for _, l := range req.Lines {
		cand.Lines = append(cand.Lines, validation.LineCandidate{
			MedicationID: l.MedicationID,
			Dosage:       l.Dosage,
			Frequency:    l.Frequency,
			Duration:     l.Duration,
			Quantity:     l.Quantity,
			Instructions: l.Instructions,
		})
	}

	cand, err = rules.Prescription(ctx, cand)
	if err != nil {
		return respondRuleError(c, "F70", err)
	}

	tx, err := database.GetDB().Begin(ctx)
	if err != nil {
		return respondError(c, 500, "F70", "Error creating the prescription")
	}
	defer tx.Rollback(ctx)

	var newID int
	err = tx.QueryRow(ctx,
		`INSERT INTO prescription (id_doctor, id_patient, id_consultation, date, notes)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id_prescription`,
		cand.DoctorID, cand.PatientID, cand.ConsultationID, cand.Date.Format("2006-01-02"), cand.Notes).Scan(&newID)
	if err != nil {
		return respondError(c, 500, "F70", "Error creating the prescription")
	}
	for _, line := range cand.Lines {
		_, err = tx.Exec(ctx,
			`INSERT INTO prescription_line (id_prescription, id_medication, dosage, frequency, duration, quantity, instructions)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			newID, line.MedicationID, line.Dosage, line.Frequency, line.Duration, line.Quantity, line.Instructions)
		if err != nil {
			return respondError(c, 500, "F70", "Error creating the prescription lines")
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return respondError(c, 500, "F70", "Error creating the prescription")
	}

	middleware.LogEvent(models.LogLevelSuccess, "Prescription created", subjectOf(c), map[string]interface{}{
		"prescription_id": newID,
		"doctor_id":       cand.DoctorID,
		"patient_id":      cand.PatientID,
		"lines":           len(cand.Lines),
		"action":          "prescription_created",
	})

	return respond(c, 201, "S70", fiber.Map{"message": "Prescription created successfully", "id": newID})
}

// UpdatePrescription replaces a prescription and its full line set after
// revalidating the whole aggregate
func UpdatePrescription(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F72", "Invalid ID")
	}
	ctx := context.Background()

	if _, err := fetchPrescription(ctx, id); err != nil {
		return respondError(c, 404, "F72", "Prescription not found")
	}

	var req models.PrescriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F72", "Invalid payload")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return respondError(c, 400, "F72", "Invalid date, expected YYYY-MM-DD")
	}

	cand := validation.PrescriptionCandidate{
		DoctorID:       req.DoctorID,
		PatientID:      req.PatientID,
		ConsultationID: req.ConsultationID,
		Date:           date,
		Notes:          req.Notes,
	}
	for _, l := range req.Lines {
		cand.Lines = append(cand.Lines, validation.LineCandidate{
			MedicationID: l.MedicationID,
			Dosage:       l.Dosage,
			Frequency:    l.Frequency,
			Duration:     l.Duration,
			Quantity:     l.Quantity,
			Instructions: l.Instructions,
		})
	}

	cand, err = rules.Prescription(ctx, cand)
	if err != nil {
		return respondRuleError(c, "F72", err)
	}

	if err := writeAggregate(ctx, id, cand); err != nil {
		return respondError(c, 500, "F72", "Error updating the prescription")
	}

	middleware.LogEvent(models.LogLevelInfo, "Prescription updated", subjectOf(c), map[string]interface{}{
		"prescription_id": id,
		"action":          "prescription_updated",
	})

	return respond(c, 200, "S72", fiber.Map{"message": "Prescription updated successfully"})
}

// DeletePrescription removes a prescription. The lines go with it.
func DeletePrescription(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F73", "Invalid ID")
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"DELETE FROM prescription WHERE id_prescription = $1", id)
	if err != nil {
		return respondError(c, 500, "F73", "Error deleting the prescription")
	}
	if tag.RowsAffected() == 0 {
		return respondError(c, 404, "F73", "Prescription not found")
	}

	middleware.LogEvent(models.LogLevelWarning, "Prescription deleted", subjectOf(c), map[string]interface{}{
		"prescription_id": id,
		"action":          "prescription_deleted",
	})

	return respond(c, 200, "S73", fiber.Map{"message": "Prescription deleted successfully"})
}

// AttachConsultation links a prescription to a consultation. The whole
// aggregate is revalidated, so the consistency rules run against the new link.
func AttachConsultation(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F72", "Invalid ID")
	}
	consultationID, err := strconv.Atoi(c.Params("consultationId"))
	if err != nil {
		return respondError(c, 400, "F72", "Invalid consultation ID")
	}
	ctx := context.Background()

	p, err := fetchPrescription(ctx, id)
	if err != nil {
		return respondError(c, 404, "F72", "Prescription not found")
	}
	p.ConsultationID = &consultationID

	cand, err := candidateFromPrescription(p)
	if err != nil {
		return respondError(c, 500, "F72", "Error reading the prescription")
	}
	cand, err = rules.Prescription(ctx, cand)
	if err != nil {
		return respondAttachError(c, "F72", err)
	}

	if err := writeAggregate(ctx, id, cand); err != nil {
		return respondError(c, 500, "F72", "Error updating the prescription")
	}

	return respond(c, 200, "S72", fiber.Map{"message": "Consultation attached successfully"})
}

// respondAttachError adjusts the rule mapping for attach: the consultation in
// the path is the target of the operation, so a missing one is 404, not a bad
// reference inside the payload
func respondAttachError(c *fiber.Ctx, intCode string, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) && verr.Kind == validation.KindInvalidReference && verr.Field == "consultation_id" {
		return respondError(c, 404, intCode, verr.Message)
	}
	return respondRuleError(c, intCode, err)
}

// DetachConsultation unlinks a prescription from its consultation. Like every
// other partial operation the unlinked aggregate is revalidated as a whole
// before the write.
func DetachConsultation(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F72", "Invalid ID")
	}
	ctx := context.Background()

	p, err := fetchPrescription(ctx, id)
	if err != nil {
		return respondError(c, 404, "F72", "Prescription not found")
	}
	p.ConsultationID = nil

	cand, err := candidateFromPrescription(p)
	if err != nil {
		return respondError(c, 500, "F72", "Error reading the prescription")
	}
	cand, err = rules.Prescription(ctx, cand)
	if err != nil {
		return respondRuleError(c, "F72", err)
	}

	if err := writeAggregate(ctx, id, cand); err != nil {
		return respondError(c, 500, "F72", "Error updating the prescription")
	}

	return respond(c, 200, "S72", fiber.Map{"message": "Consultation detached successfully"})
}

// GetPrescriptionLines lists the lines of a prescription
func GetPrescriptionLines(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F71", "Invalid ID")
	}
	ctx := context.Background()

	var exists bool
	err = database.GetDB().QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM prescription WHERE id_prescription = $1)", id).Scan(&exists)
	if err != nil || !exists {
		return respondError(c, 404, "F71", "Prescription not found")
	}

	lines, err := loadLines(ctx, id)
	if err != nil {
		return respondError(c, 500, "F71", "Error fetching the prescription lines")
	}

	return respond(c, 200, "S71", fiber.Map{"lines": lines, "total": len(lines)})
}

// GetPrescriptionLine fetches one line of a prescription
func GetPrescriptionLine(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F71", "Invalid ID")
	}
	lineID, err := strconv.Atoi(c.Params("lineId"))
	if err != nil {
		return respondError(c, 400, "F71", "Invalid line ID")
	}

	var l models.PrescriptionLine
	err = database.GetDB().QueryRow(context.Background(),
		`SELECT id_line, id_prescription, id_medication, dosage, frequency, duration, quantity, instructions
		 FROM prescription_line WHERE id_prescription = $1 AND id_line = $2`, id, lineID).
		Scan(&l.ID, &l.PrescriptionID, &l.MedicationID, &l.Dosage, &l.Frequency, &l.Duration, &l.Quantity, &l.Instructions)
	if err != nil {
		return respondError(c, 404, "F71", "Prescription line not found")
	}

	return respond(c, 200, "S71", fiber.Map{"line": l})
}

// AddPrescriptionLines appends a batch of lines to a prescription. The payload
// is an array; the aggregate with every new line is revalidated as a whole
// before anything is written.
func AddPrescriptionLines(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F72", "Invalid ID")
	}
	ctx := context.Background()

	p, err := fetchPrescription(ctx, id)
	if err != nil {
		return respondError(c, 404, "F72", "Prescription not found")
	}

	var reqs []models.PrescriptionLineRequest
	if err := c.BodyParser(&reqs); err != nil {
		return respondError(c, 400, "F72", "Invalid payload, expected an array of lines")
	}
	if len(reqs) == 0 {
		return respondError(c, 400, "F72", "At least one line is required")
	}

	cand, err := candidateFromPrescription(p)
	if err != nil {
		return respondError(c, 500, "F72", "Error reading the prescription")
	}
	for _, req := range reqs {
		cand.Lines = append(cand.Lines, validation.LineCandidate{
			MedicationID: req.MedicationID,
			Dosage:       req.Dosage,
			Frequency:    req.Frequency,
			Duration:     req.Duration,
			Quantity:     req.Quantity,
			Instructions: req.Instructions,
		})
	}

	cand, err = rules.Prescription(ctx, cand)
	if err != nil {
		return respondRuleError(c, "F72", err)
	}

	if err := writeAggregate(ctx, id, cand); err != nil {
		return respondError(c, 500, "F72", "Error updating the prescription")
	}

	middleware.LogEvent(models.LogLevelInfo, "Prescription lines added", subjectOf(c), map[string]interface{}{
		"prescription_id": id,
		"lines":           len(reqs),
		"action":          "prescription_lines_added",
	})

	return respond(c, 201, "S72", fiber.Map{"message": "Lines added successfully"})
}

// UpdatePrescriptionLine replaces one line of a prescription and revalidates
// the whole aggregate
func UpdatePrescriptionLine(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F72", "Invalid ID")
	}
	lineID, err := strconv.Atoi(c.Params("lineId"))
	if err != nil {
		return respondError(c, 400, "F72", "Invalid line ID")
	}
	ctx := context.Background()

	p, err := fetchPrescription(ctx, id)
	if err != nil {
		return respondError(c, 404, "F72", "Prescription not found")
	}

	var req models.PrescriptionLineRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F72", "Invalid payload")
	}

	found := false
	for i := range p.Lines {
		if p.Lines[i].ID == lineID {
			p.Lines[i] = models.PrescriptionLine{
				ID:             lineID,
				PrescriptionID: id,
				MedicationID:   req.MedicationID,
				Dosage:         req.Dosage,
				Frequency:      req.Frequency,
				Duration:       req.Duration,
				Quantity:       req.Quantity,
				Instructions:   req.Instructions,
			}
			found = true
			break
		}
	}
	if !found {
		return respondError(c, 404, "F72", "Prescription line not found")
	}

	cand, err := candidateFromPrescription(p)
	if err != nil {
		return respondError(c, 500, "F72", "Error reading the prescription")
	}
	cand, err = rules.Prescription(ctx, cand)
	if err != nil {
		return respondRuleError(c, "F72", err)
	}

	if err := writeAggregate(ctx, id, cand); err != nil {
		return respondError(c, 500, "F72", "Error updating the prescription")
	}

	return respond(c, 200, "S72", fiber.Map{"message": "Line updated successfully"})
}

// DeletePrescriptionLine removes one line. Removing the last line is rejected,
// a prescription never exists without at least one medication.
func DeletePrescriptionLine(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "F73", "Invalid ID")
	}
	lineID, err := strconv.Atoi(c.Params("lineId"))
	if err != nil {
		return respondError(c, 400, "F73", "Invalid line ID")
	}
	ctx := context.Background()

	p, err := fetchPrescription(ctx, id)
	if err != nil {
		return respondError(c, 404, "F73", "Prescription not found")
	}

	remaining := make([]models.PrescriptionLine, 0, len(p.Lines))
	found := false
	for _, l := range p.Lines {
		if l.ID == lineID {
			found = true
			continue
		}
		remaining = append(remaining, l)
	}
	if !found {
		return respondError(c, 404, "F73", "Prescription line not found")
	}
	// Rejected before revalidation: a prescription never drops to zero lines
	if len(remaining) == 0 {
		return respondError(c, 400, "F73", "a prescription must contain at least one medication line")
	}
	p.Lines = remaining

	cand, err := candidateFromPrescription(p)
	if err != nil {
		return respondError(c, 500, "F73", "Error reading the prescription")
	}
	cand, err = rules.Prescription(ctx, cand)
	if err != nil {
		return respondRuleError(c, "F73", err)
	}

	if err := writeAggregate(ctx, id, cand); err != nil {
		return respondError(c, 500, "F73", "Error updating the prescription")
	}

	middleware.LogEvent(models.LogLevelWarning, "Prescription line deleted", subjectOf(c), map[string]interface{}{
		"prescription_id": id,
		"line_id":         lineID,
		"action":          "prescription_line_deleted",
	})

	return respond(c, 200, "S73", fiber.Map{"message": "Line deleted successfully"})
}
